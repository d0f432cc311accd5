// Package catalog holds the target languages a report can be translated into.
package catalog

import (
	"strings"

	"golang.org/x/text/language"
)

// Language is a supported target language. Name is the English display name
// passed to the analysis prompt; NativeName is shown next to it in the UI.
type Language struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	NativeName string `json:"nativeName"`
}

// Tag returns the BCP 47 tag for the language code.
func (l Language) Tag() language.Tag {
	return language.Make(l.Code)
}

var languages = []Language{
	{Code: "hi", Name: "Hindi", NativeName: "हिन्दी"},
	{Code: "bn", Name: "Bengali", NativeName: "বাংলা"},
	{Code: "te", Name: "Telugu", NativeName: "తెలుగు"},
	{Code: "mr", Name: "Marathi", NativeName: "मराठी"},
	{Code: "ta", Name: "Tamil", NativeName: "தமிழ்"},
	{Code: "ur", Name: "Urdu", NativeName: "اردو"},
	{Code: "gu", Name: "Gujarati", NativeName: "ગુજરાતી"},
	{Code: "kn", Name: "Kannada", NativeName: "ಕನ್ನಡ"},
	{Code: "ml", Name: "Malayalam", NativeName: "മലയാളം"},
	{Code: "pa", Name: "Punjabi", NativeName: "ਪੰਜਾਬੀ"},
	{Code: "or", Name: "Odia", NativeName: "ଓଡ଼ିଆ"},
	{Code: "as", Name: "Assamese", NativeName: "অসমীয়া"},
}

// List returns the supported languages in display order. The returned slice
// is a copy.
func List() []Language {
	out := make([]Language, len(languages))
	copy(out, languages)
	return out
}

// Lookup finds a language by code. Codes are compared by their BCP 47 base
// language, so "HI" and "hi-IN" both resolve to Hindi.
func Lookup(code string) (Language, bool) {
	tag, err := language.Parse(strings.TrimSpace(code))
	if err != nil {
		return Language{}, false
	}
	base, conf := tag.Base()
	if conf == language.No {
		return Language{}, false
	}
	for _, l := range languages {
		if lb, _ := l.Tag().Base(); lb == base {
			return l, true
		}
	}
	return Language{}, false
}
