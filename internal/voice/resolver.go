// Package voice maps language tags to concrete synthesis voices.
package voice

import (
	"strings"

	"github.com/gospelstack/sermon-audio/domain/repositories"
)

// DefaultLanguage is the fallback for unrecognized tags.
const DefaultLanguage = "en"

// Supported voices keyed by primary language subtag. Voice names follow the
// synthesis provider's addressing scheme.
var voices = map[string]repositories.VoiceConfig{
	"en": {LanguageCode: "en-US", VoiceName: "en-US-Neural2-D"},
	"es": {LanguageCode: "es-ES", VoiceName: "es-ES-Neural2-B"},
	"fr": {LanguageCode: "fr-FR", VoiceName: "fr-FR-Neural2-A"},
	"de": {LanguageCode: "de-DE", VoiceName: "de-DE-Neural2-B"},
	"pt": {LanguageCode: "pt-BR", VoiceName: "pt-BR-Neural2-A"},
	"id": {LanguageCode: "id-ID", VoiceName: "id-ID-Wavenet-A"},
	"zh": {LanguageCode: "cmn-CN", VoiceName: "cmn-CN-Wavenet-A"},
}

// Resolve returns the voice configuration for a language tag. Only the
// primary subtag (before the first "-") is considered; unrecognized tags
// resolve to the English voice. Resolve is pure and never fails.
func Resolve(languageTag string) repositories.VoiceConfig {
	primary := strings.ToLower(languageTag)
	if i := strings.Index(primary, "-"); i >= 0 {
		primary = primary[:i]
	}
	if cfg, ok := voices[primary]; ok {
		return cfg
	}
	return voices[DefaultLanguage]
}
