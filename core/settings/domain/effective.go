package domain

import cubeDomain "github.com/AzielCF/az-cube/cube/domain"

// Effective is the derived configuration consumers read at the start of an operation.
type Effective struct {
	Inspection       bool                `json:"inspection"`
	AutoScramble     bool                `json:"auto_scramble"`
	Sound            bool                `json:"sound"`
	HoldToStart      bool                `json:"hold_to_start"`
	RealtimeStats    bool                `json:"realtime_stats"`
	PBNotifications  bool                `json:"pb_notifications"`
	AdvancedAverages bool                `json:"advanced_averages"`
	ScrambleLength   int                 `json:"scramble_length"`
	CubeType         cubeDomain.CubeType `json:"cube_type"`

	// Presentation
	Theme          string   `json:"theme"`
	LargeTimer     bool     `json:"large_timer"`
	HideScramble   bool     `json:"hide_scramble"`
	TimerPrecision int      `json:"timer_precision"`
	BodyClasses    []string `json:"body_classes"`
}

// Reduce derives the effective configuration from a settings mapping. Missing or
// mistyped values fall back to defaults.
func Reduce(values map[string]any) Effective {
	defaults := Defaults()
	boolOf := func(key string) bool {
		if v, ok := values[key].(bool); ok {
			return v
		}
		return defaults[key].(bool)
	}

	length, ok := values[KeyScrambleLength].(int)
	if !ok || length < 1 {
		length = cubeDomain.DefaultScrambleLength
	}
	cubeType, _ := values[KeyCubeType].(string)

	eff := Effective{
		Inspection:       boolOf(KeyInspection),
		AutoScramble:     boolOf(KeyAutoScramble),
		Sound:            boolOf(KeySound),
		HoldToStart:      boolOf(KeyHoldToStart),
		RealtimeStats:    boolOf(KeyRealtimeStats),
		PBNotifications:  boolOf(KeyPBNotifications),
		AdvancedAverages: boolOf(KeyAdvancedAverages),
		ScrambleLength:   length,
		CubeType:         cubeDomain.CubeType(cubeType).OrDefault(),
		LargeTimer:       boolOf(KeyLargeTimer),
		HideScramble:     boolOf(KeyHideScramble),
		Theme:            "light",
		TimerPrecision:   2,
		BodyClasses:      []string{},
	}

	if boolOf(KeyDarkMode) {
		eff.Theme = "dark"
		eff.BodyClasses = append(eff.BodyClasses, "dark-mode")
	}
	if eff.LargeTimer {
		eff.BodyClasses = append(eff.BodyClasses, "large-timer")
	}
	if eff.HideScramble {
		eff.BodyClasses = append(eff.BodyClasses, "hide-scramble")
	}
	if boolOf(KeyMilliseconds) {
		eff.TimerPrecision = 3
	}
	return eff
}
