// Package i18n is the translation capability. A missing key falls
// back to the key itself with a logged warning; it is never an error
// the caller has to handle.
package i18n

import (
	_ "embed"
	"encoding/json"
	"log"
)

type Locale string

const (
	Hebrew  Locale = "he"
	English Locale = "en"
)

type Direction string

const (
	RTL Direction = "rtl"
	LTR Direction = "ltr"
)

//go:embed translations.json
var translationData []byte

type Translator struct {
	entries map[string]map[Locale]string
}

func New() (*Translator, error) {
	var entries map[string]map[Locale]string
	if err := json.Unmarshal(translationData, &entries); err != nil {
		return nil, err
	}
	return &Translator{entries: entries}, nil
}

func (t *Translator) Supported(loc Locale) bool {
	return loc == Hebrew || loc == English
}

func (t *Translator) Translate(loc Locale, key string) string {
	entry, ok := t.entries[key]
	if !ok {
		log.Printf("translation key not found: %s", key)
		return key
	}
	if s, ok := entry[loc]; ok {
		return s
	}
	log.Printf("translation key %s has no %s entry", key, loc)
	return key
}

// Table returns the full key set for one locale, for clients that
// render text themselves.
func (t *Translator) Table(loc Locale) map[string]string {
	table := make(map[string]string, len(t.entries))
	for key := range t.entries {
		table[key] = t.Translate(loc, key)
	}
	return table
}

// DirectionOf reports the ambient text direction for a locale. Hebrew
// is right-to-left; the presentation layer flips on locale change.
func DirectionOf(loc Locale) Direction {
	if loc == Hebrew {
		return RTL
	}
	return LTR
}
