package voice

import "testing"

func TestResolveKnownLanguages(t *testing.T) {
	tests := []struct {
		tag          string
		wantLanguage string
		wantVoice    string
	}{
		{"en", "en-US", "en-US-Neural2-D"},
		{"en-US", "en-US", "en-US-Neural2-D"},
		{"en-GB", "en-US", "en-US-Neural2-D"},
		{"es", "es-ES", "es-ES-Neural2-B"},
		{"fr-CA", "fr-FR", "fr-FR-Neural2-A"},
		{"zh-TW", "cmn-CN", "cmn-CN-Wavenet-A"},
		{"id-ID", "id-ID", "id-ID-Wavenet-A"},
	}

	for _, tt := range tests {
		cfg := Resolve(tt.tag)
		if cfg.LanguageCode != tt.wantLanguage {
			t.Errorf("Resolve(%q): expected language %s, got %s", tt.tag, tt.wantLanguage, cfg.LanguageCode)
		}
		if cfg.VoiceName != tt.wantVoice {
			t.Errorf("Resolve(%q): expected voice %s, got %s", tt.tag, tt.wantVoice, cfg.VoiceName)
		}
	}
}

func TestResolveUnrecognizedFallsBackToEnglish(t *testing.T) {
	for _, tag := range []string{"xx", "xx-YY", "", "klingon"} {
		cfg := Resolve(tag)
		if cfg.LanguageCode != "en-US" {
			t.Errorf("Resolve(%q): expected en-US fallback, got %s", tag, cfg.LanguageCode)
		}
	}
}

func TestResolveIsCaseInsensitive(t *testing.T) {
	if cfg := Resolve("ES-mx"); cfg.LanguageCode != "es-ES" {
		t.Errorf("Expected es-ES, got %s", cfg.LanguageCode)
	}
}
