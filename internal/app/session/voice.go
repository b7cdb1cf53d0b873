package session

import (
	"strings"

	"github.com/PabloGalante/interviewbuddy/internal/domain"
)

// VoicePreference describes the accent a session would like to hear.
type VoicePreference struct {
	Lang   string   // "en"
	Region string   // "en-IN"
	Hints  []string // name fragments, e.g. "india"
}

// SelectVoice prefers a regionally accented voice, then any voice of the
// language, then nil for the platform default.
func SelectVoice(voices []domain.Voice, pref VoicePreference) *domain.Voice {
	if pref.Region != "" || len(pref.Hints) > 0 {
		for i := range voices {
			if matchesRegion(voices[i], pref) {
				return &voices[i]
			}
		}
	}

	if pref.Lang != "" {
		for i := range voices {
			if strings.HasPrefix(strings.ToLower(voices[i].Lang), strings.ToLower(pref.Lang)) {
				return &voices[i]
			}
		}
	}
	return nil
}

func matchesRegion(v domain.Voice, pref VoicePreference) bool {
	if pref.Region != "" && strings.Contains(strings.ToLower(v.Lang), strings.ToLower(pref.Region)) {
		return true
	}
	name := strings.ToLower(v.Name)
	for _, h := range pref.Hints {
		if h != "" && strings.Contains(name, strings.ToLower(h)) {
			return true
		}
	}
	return false
}
