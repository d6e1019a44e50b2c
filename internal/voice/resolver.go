package voice

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"overdub/internal/language"
	"overdub/internal/services/edgetts"
)

// DefaultVoice is used when no voice matches the target language.
const DefaultVoice = "en-US-AriaNeural"

// knownVoices maps primary language subtags to a known-good neural voice,
// avoiding a catalog fetch for the common cases.
var knownVoices = map[string]string{
	"en": "en-US-AriaNeural",
	"es": "es-ES-ElviraNeural",
	"fr": "fr-FR-DeniseNeural",
	"de": "de-DE-KatjaNeural",
	"it": "it-IT-ElsaNeural",
	"pt": "pt-BR-FranciscaNeural",
	"ru": "ru-RU-SvetlanaNeural",
	"ja": "ja-JP-NanamiNeural",
	"ko": "ko-KR-SunHiNeural",
	"zh": "zh-CN-XiaoxiaoNeural",
	"ar": "ar-SA-ZariyahNeural",
	"hi": "hi-IN-SwaraNeural",
	"nl": "nl-NL-ColetteNeural",
	"pl": "pl-PL-AgnieszkaNeural",
	"tr": "tr-TR-EmelNeural",
}

// Catalog supplies the live voice list for fallback search.
type Catalog interface {
	ListVoices(ctx context.Context) ([]edgetts.Voice, error)
}

// Resolution is the typed outcome of a voice lookup. UsedFallback marks the
// degraded case where no voice matched the target language and the default
// voice is used instead.
type Resolution struct {
	VoiceID      string
	Locale       string
	UsedFallback bool
}

// Resolver maps language codes to synthesis voices.
type Resolver struct {
	catalog      Catalog
	defaultVoice string
}

// NewResolver creates a resolver backed by the given catalog. An empty
// defaultVoice selects DefaultVoice.
func NewResolver(catalog Catalog, defaultVoice string) *Resolver {
	if strings.TrimSpace(defaultVoice) == "" {
		defaultVoice = DefaultVoice
	}
	return &Resolver{catalog: catalog, defaultVoice: defaultVoice}
}

// Resolve picks a voice for the target language. The static table is
// consulted first; on a miss the catalog is fetched once and matches are
// sorted by locale so the pick is reproducible across runs. No match yields
// the default voice with UsedFallback set.
func (r *Resolver) Resolve(ctx context.Context, languageCode string) (Resolution, error) {
	primary := language.Primary(languageCode)
	if primary == "" {
		return Resolution{}, fmt.Errorf("resolve voice: language code required")
	}

	if voiceID, ok := knownVoices[primary]; ok {
		return Resolution{VoiceID: voiceID, Locale: localeOf(voiceID)}, nil
	}

	if r.catalog == nil {
		return Resolution{VoiceID: r.defaultVoice, Locale: localeOf(r.defaultVoice), UsedFallback: true}, nil
	}
	voices, err := r.catalog.ListVoices(ctx)
	if err != nil {
		return Resolution{}, fmt.Errorf("resolve voice: fetch catalog: %w", err)
	}

	matches := make([]edgetts.Voice, 0, 4)
	for _, v := range voices {
		if strings.HasPrefix(strings.ToLower(v.Locale), primary) {
			matches = append(matches, v)
		}
	}
	if len(matches) == 0 {
		return Resolution{VoiceID: r.defaultVoice, Locale: localeOf(r.defaultVoice), UsedFallback: true}, nil
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Locale != matches[j].Locale {
			return matches[i].Locale < matches[j].Locale
		}
		return matches[i].ShortName < matches[j].ShortName
	})
	return Resolution{VoiceID: matches[0].ShortName, Locale: matches[0].Locale}, nil
}

// localeOf derives the locale tag from a voice short name such as
// "en-US-AriaNeural".
func localeOf(voiceID string) string {
	parts := strings.SplitN(voiceID, "-", 3)
	if len(parts) < 2 {
		return ""
	}
	return parts[0] + "-" + parts[1]
}
