package domain

// ModerationSettings is the explicit configuration surface of the rule
// engine. One toggle per category; no dynamic key access.
type ModerationSettings struct {
	Enabled                bool `json:"enabled"`
	StrictMode             bool `json:"strict_mode"`
	SpamDetection          bool `json:"spam_detection"`
	HateSpeechDetection    bool `json:"hate_speech_detection"`
	HarassmentDetection    bool `json:"harassment_detection"`
	InappropriateDetection bool `json:"inappropriate_detection"`
	AdvertisingDetection   bool `json:"advertising_detection"`
	ScamDetection          bool `json:"scam_detection"`
}

// DefaultModerationSettings mirrors the shipped defaults: the engine starts
// disabled with only the spam and scam detectors armed.
func DefaultModerationSettings() ModerationSettings {
	return ModerationSettings{
		Enabled:       false,
		SpamDetection: true,
		ScamDetection: true,
	}
}

// AllDetectorsEnabled is the fully armed configuration used by operators
// running the engine in enforcing mode.
func AllDetectorsEnabled() ModerationSettings {
	return ModerationSettings{
		Enabled:                true,
		SpamDetection:          true,
		HateSpeechDetection:    true,
		HarassmentDetection:    true,
		InappropriateDetection: true,
		AdvertisingDetection:   true,
		ScamDetection:          true,
	}
}

// CategoryEnabled reports whether the toggle for the given violation type
// is set.
func (s ModerationSettings) CategoryEnabled(t ViolationType) bool {
	switch t {
	case ViolationSpam:
		return s.SpamDetection
	case ViolationHateSpeech:
		return s.HateSpeechDetection
	case ViolationHarassment:
		return s.HarassmentDetection
	case ViolationInappropriate:
		return s.InappropriateDetection
	case ViolationAdvertising:
		return s.AdvertisingDetection
	case ViolationScam:
		return s.ScamDetection
	default:
		return false
	}
}
