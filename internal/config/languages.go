package config

// Languages maps supported ISO 639-1 codes to the human-readable name used
// in prompt instructions.
var Languages = map[string]string{
	"en": "English",
	"it": "Italian",
	"fr": "French",
	"de": "German",
	"es": "Spanish",
	"zh": "Chinese",
	"ar": "Arabic",
	"hi": "Hindi",
	"bn": "Bengali",
	"pt": "Portuguese",
	"ru": "Russian",
	"ja": "Japanese",
	"ko": "Korean",
	"tr": "Turkish",
	"vi": "Vietnamese",
}

// KnownLanguage reports whether code is a supported language code.
func KnownLanguage(code string) bool {
	_, ok := Languages[code]
	return ok
}

// LanguageName returns the human-readable name for code, defaulting to
// English for anything unknown.
func LanguageName(code string) string {
	if name, ok := Languages[code]; ok {
		return name
	}
	return "English"
}
