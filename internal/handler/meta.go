package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/shaharavr/flightscout/internal/dataset"
	"github.com/shaharavr/flightscout/internal/i18n"
	"github.com/shaharavr/flightscout/internal/models"
)

type MetaHandler struct {
	translator *i18n.Translator
	catalog    *dataset.Catalog
}

func NewMetaHandler(tr *i18n.Translator, catalog *dataset.Catalog) *MetaHandler {
	return &MetaHandler{translator: tr, catalog: catalog}
}

type translationsResponse struct {
	Locale    i18n.Locale       `json:"locale"`
	Direction i18n.Direction    `json:"direction"`
	Table     map[string]string `json:"table"`
}

// Translations returns the full table for one locale together with its
// text direction, so the client can flip layout on locale change.
func (h *MetaHandler) Translations(c echo.Context) error {
	locale := i18n.Locale(c.Param("locale"))
	if !h.translator.Supported(locale) {
		return c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "unknown_locale",
			Message: "Supported locales: he, en",
			Code:    http.StatusNotFound,
		})
	}
	return c.JSON(http.StatusOK, translationsResponse{
		Locale:    locale,
		Direction: i18n.DirectionOf(locale),
		Table:     h.translator.Table(locale),
	})
}

// Catalog serves the static quick-pick destinations and airline list.
func (h *MetaHandler) Catalog(c echo.Context) error {
	return c.JSON(http.StatusOK, h.catalog)
}
