package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslateKnownKey(t *testing.T) {
	tr, err := New()
	require.NoError(t, err)

	assert.Equal(t, "חיפוש טיסות", tr.Translate(Hebrew, "app.title"))
	assert.Equal(t, "Flight Search", tr.Translate(English, "app.title"))
}

func TestTranslateMissingKeyFallsBack(t *testing.T) {
	tr, err := New()
	require.NoError(t, err)

	assert.Equal(t, "no.such.key", tr.Translate(Hebrew, "no.such.key"))
}

func TestTableCoversEveryKey(t *testing.T) {
	tr, err := New()
	require.NoError(t, err)

	he := tr.Table(Hebrew)
	en := tr.Table(English)
	assert.Equal(t, len(he), len(en))
	assert.Equal(t, "ימים חסומים", he["blocked.days"])
	assert.Equal(t, "Blocked Days", en["blocked.days"])
}

func TestSupported(t *testing.T) {
	tr, err := New()
	require.NoError(t, err)

	assert.True(t, tr.Supported(Hebrew))
	assert.True(t, tr.Supported(English))
	assert.False(t, tr.Supported(Locale("fr")))
}

func TestDirectionOf(t *testing.T) {
	assert.Equal(t, RTL, DirectionOf(Hebrew))
	assert.Equal(t, LTR, DirectionOf(English))
	assert.Equal(t, LTR, DirectionOf(Locale("fr")))
}
