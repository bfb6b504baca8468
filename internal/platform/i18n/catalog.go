// Package i18n provides the localization string catalog for bot responses.
// Lookups never fail: missing languages fall back to English and missing keys
// fall back to the key itself, so a broken catalog degrades to readable
// (if untranslated) output instead of an error.
package i18n

import (
	"encoding/json"
	"os"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
)

// DefaultLanguage is the fallback language for missing translations.
const DefaultLanguage = "en"

var placeholderPattern = regexp.MustCompile(`\{([a-zA-Z_]+)\}`)

// Catalog holds per-language template strings, read-only after Load.
type Catalog struct {
	languages map[string]map[string]string
}

type catalogFile struct {
	Languages map[string]map[string]string `json:"languages"`
}

// Load reads a languages.json file. A missing or malformed file yields a
// minimal English-only catalog rather than an error.
func Load(path string, logger zerolog.Logger) *Catalog {
	fallback := &Catalog{languages: map[string]map[string]string{
		DefaultLanguage: {"name": "English", "flag": "🇺🇸"},
	}}

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Error().Err(err).Str("path", path).Msg("languages file not found")
		return fallback
	}

	var f catalogFile
	if err := json.Unmarshal(data, &f); err != nil {
		logger.Error().Err(err).Str("path", path).Msg("invalid languages file")
		return fallback
	}
	if f.Languages == nil {
		return fallback
	}
	return &Catalog{languages: f.Languages}
}

// NewCatalog builds a catalog from an in-memory language map. Used by tests
// and by callers that embed their translations.
func NewCatalog(languages map[string]map[string]string) *Catalog {
	if languages == nil {
		languages = map[string]map[string]string{}
	}
	return &Catalog{languages: languages}
}

// Lookup resolves a template by key and language and substitutes
// {placeholder} arguments. If the language or key is unknown it falls back to
// English, then to the raw key. If the template references a placeholder that
// is not supplied, the template is returned unformatted.
func (c *Catalog) Lookup(key, lang string, args map[string]string) string {
	langData := c.languages[lang]
	if _, ok := langData[key]; !ok {
		langData = c.languages[DefaultLanguage]
	}

	text, ok := langData[key]
	if !ok {
		text = key
	}

	if len(args) == 0 {
		return text
	}
	return format(text, args)
}

// Languages returns the display name for every language in the catalog.
func (c *Catalog) Languages() map[string]string {
	names := make(map[string]string, len(c.languages))
	for lang, data := range c.languages {
		if name, ok := data["name"]; ok {
			names[lang] = name
		} else {
			names[lang] = lang
		}
	}
	return names
}

// Has reports whether a language exists in the catalog.
func (c *Catalog) Has(lang string) bool {
	_, ok := c.languages[lang]
	return ok
}

// format substitutes {placeholder} tokens. Substitution is all-or-nothing:
// when any referenced placeholder is missing from args the raw template is
// returned unchanged.
func format(text string, args map[string]string) string {
	for _, m := range placeholderPattern.FindAllStringSubmatch(text, -1) {
		if _, ok := args[m[1]]; !ok {
			return text
		}
	}
	result := text
	for k, v := range args {
		result = strings.ReplaceAll(result, "{"+k+"}", v)
	}
	return result
}
