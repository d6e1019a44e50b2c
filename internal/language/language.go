package language

import (
	"strings"

	"golang.org/x/text/language"
)

var displayNames = map[string]string{
	"en": "English",
	"es": "Spanish",
	"fr": "French",
	"de": "German",
	"it": "Italian",
	"pt": "Portuguese",
	"ru": "Russian",
	"ja": "Japanese",
	"ko": "Korean",
	"zh": "Chinese",
	"ar": "Arabic",
	"hi": "Hindi",
	"nl": "Dutch",
	"pl": "Polish",
	"tr": "Turkish",
	"sv": "Swedish",
	"da": "Danish",
	"no": "Norwegian",
	"fi": "Finnish",
}

// Primary normalizes a language code to its lowercase primary subtag.
// Full BCP-47 tags ("pt-BR", "zh-Hans") reduce to their base language.
// Inputs that do not parse as a tag fall back to their first two characters
// so arbitrary user input still yields a usable code.
func Primary(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return ""
	}
	if tag, err := language.Parse(code); err == nil {
		if base, conf := tag.Base(); conf > language.No {
			return base.String()
		}
	}
	code = strings.ToLower(code)
	if len(code) > 2 {
		return code[:2]
	}
	return code
}

// DisplayName returns a human-readable language name for a recognized
// primary subtag, or the uppercased code for unrecognized input.
func DisplayName(code string) string {
	primary := Primary(code)
	if primary == "" {
		return "Unknown"
	}
	if name, ok := displayNames[primary]; ok {
		return name
	}
	return strings.ToUpper(primary)
}
