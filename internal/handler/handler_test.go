package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaharavr/flightscout/internal/dataset"
	"github.com/shaharavr/flightscout/internal/i18n"
	"github.com/shaharavr/flightscout/internal/models"
	"github.com/shaharavr/flightscout/internal/notify"
	"github.com/shaharavr/flightscout/internal/ratelimit"
	"github.com/shaharavr/flightscout/internal/refine"
	"github.com/shaharavr/flightscout/internal/search"
	"github.com/shaharavr/flightscout/internal/store"
)

type testEnv struct {
	e          *echo.Echo
	store      *store.MemoryStore
	dispatcher *notify.Dispatcher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	provider, err := dataset.NewStaticProvider()
	require.NoError(t, err)
	catalog, err := dataset.LoadCatalog()
	require.NoError(t, err)
	translator, err := i18n.New()
	require.NoError(t, err)

	st := store.NewMemoryStore(time.Minute)
	dispatcher := notify.NewDispatcher(
		&notify.LogSink{Recipient: "search-alerts@flightscout.local"},
		notify.Config{Delay: 0, QueueSize: 8, RPS: 1000, Burst: 1000},
	)
	t.Cleanup(dispatcher.Close)
	t.Cleanup(func() { st.Close() })

	svc := search.NewService(provider, st, dispatcher, 0)
	limiter := ratelimit.NewClientLimiter(ratelimit.RateLimitConfig{RequestsPerSecond: 1000, BurstSize: 1000})

	wizardHandler := NewWizardHandler(st, svc)
	searchHandler := NewSearchHandler(svc, st, dispatcher, limiter)
	metaHandler := NewMetaHandler(translator, catalog)

	e := echo.New()
	api := e.Group("/api/v1")
	api.POST("/wizard", wizardHandler.Create)
	api.GET("/wizard/:id", wizardHandler.Get)
	api.PATCH("/wizard/:id", wizardHandler.Patch)
	api.POST("/wizard/:id/next", wizardHandler.Next)
	api.POST("/wizard/:id/prev", wizardHandler.Prev)
	api.POST("/wizard/:id/destination", wizardHandler.PickDestination)
	api.POST("/wizard/:id/submit", wizardHandler.Submit)
	api.POST("/flights/search", searchHandler.Search)
	api.GET("/search/:id", searchHandler.View)
	api.GET("/search/:id/export", searchHandler.Export)
	api.GET("/translations/:locale", metaHandler.Translations)
	api.GET("/catalog", metaHandler.Catalog)
	e.GET("/health", HealthHandler)

	return &testEnv{e: e, store: st, dispatcher: dispatcher}
}

func (env *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

type wizardBody struct {
	ID     string                `json:"id"`
	Step   int                   `json:"step"`
	Draft  models.SearchCriteria `json:"draft"`
	Errors map[string]string     `json:"errors"`
}

func createWizard(t *testing.T, env *testEnv) wizardBody {
	rec := env.do(t, http.MethodPost, "/api/v1/wizard", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	return decode[wizardBody](t, rec)
}

func TestWizardCreate(t *testing.T) {
	env := newTestEnv(t)

	w := createWizard(t, env)
	assert.NotEmpty(t, w.ID)
	assert.Equal(t, 1, w.Step)
	assert.Equal(t, models.TripRoundTrip, w.Draft.TripType)
}

func TestWizardGetUnknownSession(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/wizard/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decode[models.ErrorResponse](t, rec)
	assert.Equal(t, "session_not_found", body.Error)
}

func TestWizardPatchAndNavigation(t *testing.T) {
	env := newTestEnv(t)
	w := createWizard(t, env)

	rec := env.do(t, http.MethodPatch, "/api/v1/wizard/"+w.ID,
		`{"origin":"תל אביב","destination":"ניו יורק"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/wizard/"+w.ID+"/next", "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[wizardBody](t, rec)
	assert.Equal(t, 2, got.Step)
	assert.Equal(t, "תל אביב", got.Draft.Origin)

	rec = env.do(t, http.MethodPost, "/api/v1/wizard/"+w.ID+"/prev", "")
	require.Equal(t, http.StatusOK, rec.Code)
	got = decode[wizardBody](t, rec)
	assert.Equal(t, 1, got.Step)

	// Prev clamps at the first step.
	rec = env.do(t, http.MethodPost, "/api/v1/wizard/"+w.ID+"/prev", "")
	got = decode[wizardBody](t, rec)
	assert.Equal(t, 1, got.Step)
}

func TestWizardPickDestination(t *testing.T) {
	env := newTestEnv(t)
	w := createWizard(t, env)

	rec := env.do(t, http.MethodPost, "/api/v1/wizard/"+w.ID+"/destination",
		`{"destination":"דובאי"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[wizardBody](t, rec)
	assert.Equal(t, "דובאי", got.Draft.Destination)
	assert.Equal(t, 1, got.Step)
}

func TestWizardSubmitBeforeFinalStep(t *testing.T) {
	env := newTestEnv(t)
	w := createWizard(t, env)

	rec := env.do(t, http.MethodPost, "/api/v1/wizard/"+w.ID+"/submit", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestWizardSubmitValidationErrors(t *testing.T) {
	env := newTestEnv(t)
	w := createWizard(t, env)

	for i := 0; i < 3; i++ {
		env.do(t, http.MethodPost, "/api/v1/wizard/"+w.ID+"/next", "")
	}

	rec := env.do(t, http.MethodPost, "/api/v1/wizard/"+w.ID+"/submit", "")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var body struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "validation_error", body.Error)
	assert.Contains(t, body.Fields, "origin")
	assert.Contains(t, body.Fields, "departure_date")

	// The errors stick to the session for the next GET.
	rec = env.do(t, http.MethodGet, "/api/v1/wizard/"+w.ID, "")
	got := decode[wizardBody](t, rec)
	assert.Contains(t, got.Errors, "origin")
}

func TestWizardFullFlow(t *testing.T) {
	env := newTestEnv(t)
	w := createWizard(t, env)

	rec := env.do(t, http.MethodPatch, "/api/v1/wizard/"+w.ID,
		`{"origin":"תל אביב","destination":"ניו יורק","departure_date":"2030-06-15","return_date":"2030-06-22"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	for i := 0; i < 3; i++ {
		rec = env.do(t, http.MethodPost, "/api/v1/wizard/"+w.ID+"/next", "")
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec = env.do(t, http.MethodPost, "/api/v1/wizard/"+w.ID+"/submit", "")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[models.SearchResponse](t, rec)
	assert.NotEmpty(t, resp.SearchID)
	assert.Equal(t, 10, resp.Metadata.CandidateCount)
	assert.Equal(t, len(resp.Flights), resp.Metadata.TotalResults)
	// Every fixture price sits under the default $1000 budget.
	assert.Len(t, resp.Flights, 10)
}

func TestOneShotSearch(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/flights/search",
		`{"origin":"תל אביב","destination":"ניו יורק","trip_type":"one_way","departure_date":"2030-06-15","flight_type":"direct"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[models.SearchResponse](t, rec)
	assert.Len(t, resp.Flights, 3)
	for _, f := range resp.Flights {
		assert.True(t, f.IsDirect)
	}
}

func TestOneShotSearchValidation(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/flights/search", `{}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestSearchRateLimited(t *testing.T) {
	env := newTestEnv(t)

	provider, err := dataset.NewStaticProvider()
	require.NoError(t, err)
	svc := search.NewService(provider, env.store, env.dispatcher, 0)
	limiter := ratelimit.NewClientLimiter(ratelimit.RateLimitConfig{RequestsPerSecond: 0, BurstSize: 1})
	h := NewSearchHandler(svc, env.store, env.dispatcher, limiter)

	e := echo.New()
	e.POST("/api/v1/flights/search", h.Search)

	body := `{"origin":"תל אביב","destination":"ניו יורק","trip_type":"one_way","departure_date":"2030-06-15"}`

	req := httptest.NewRequest(http.MethodPost, "/api/v1/flights/search", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/flights/search", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func runSearch(t *testing.T, env *testEnv) string {
	rec := env.do(t, http.MethodPost, "/api/v1/flights/search",
		`{"origin":"תל אביב","destination":"ניו יורק","trip_type":"one_way","departure_date":"2030-06-15"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	return decode[models.SearchResponse](t, rec).SearchID
}

func TestRefineView(t *testing.T) {
	env := newTestEnv(t)
	searchID := runSearch(t, env)

	rec := env.do(t, http.MethodGet,
		"/api/v1/search/"+searchID+"?airlines=LY&sort_by=price&sort_order=desc", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		SearchID     string             `json:"search_id"`
		Sort         refine.Sort        `json:"sort"`
		Facets       refine.Facets      `json:"facets"`
		TotalResults int                `json:"total_results"`
		Flights      []models.Itinerary `json:"flights"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, searchID, resp.SearchID)
	assert.Equal(t, refine.Descending, resp.Sort.Direction)
	require.Equal(t, 3, resp.TotalResults)
	assert.Equal(t, "9", resp.Flights[0].ID) // $890 first when descending
	// Facets describe the stored set, not the filtered view.
	assert.Contains(t, resp.Facets.Airlines, "TK")
}

func TestRefineViewBadFilter(t *testing.T) {
	env := newTestEnv(t)
	searchID := runSearch(t, env)

	rec := env.do(t, http.MethodGet, "/api/v1/search/"+searchID+"?price_min=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRefineViewUnknownSearch(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/search/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExport(t *testing.T) {
	env := newTestEnv(t)
	searchID := runSearch(t, env)

	rec := env.do(t, http.MethodGet, "/api/v1/search/"+searchID+"/export", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "attachment")
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), searchID)

	var resp struct {
		Payload notify.Payload `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, resp.Payload.TotalResults, len(resp.Payload.Flights))
}

func TestTranslations(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/translations/he", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Locale    string            `json:"locale"`
		Direction string            `json:"direction"`
		Table     map[string]string `json:"table"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "he", resp.Locale)
	assert.Equal(t, "rtl", resp.Direction)
	assert.Equal(t, "חיפוש טיסות", resp.Table["app.title"])

	rec = env.do(t, http.MethodGet, "/api/v1/translations/en", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ltr", resp.Direction)

	rec = env.do(t, http.MethodGet, "/api/v1/translations/fr", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCatalog(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/catalog", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var catalog dataset.Catalog
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &catalog))
	assert.NotEmpty(t, catalog.PopularDestinations)
	assert.NotEmpty(t, catalog.Airlines)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
