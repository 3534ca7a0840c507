package service

import "github.com/Harshitk-cp/ideaforge/internal/domain"

// TemperaturePreset names a bundled per-stage temperature policy.
type TemperaturePreset string

const (
	PresetConservative TemperaturePreset = "conservative"
	PresetBalanced     TemperaturePreset = "balanced"
	PresetCreative     TemperaturePreset = "creative"
	PresetWild         TemperaturePreset = "wild"
)

// TemperaturePolicy holds the per-stage temperatures: Generation for idea
// creation, Analytical for critique and scoring, Balanced for advocacy,
// skepticism and improvement.
type TemperaturePolicy struct {
	Generation float64 `json:"generation"`
	Analytical float64 `json:"analytical"`
	Balanced   float64 `json:"balanced"`
}

var presetPolicies = map[TemperaturePreset]TemperaturePolicy{
	PresetConservative: {Generation: 0.5, Analytical: 0.2, Balanced: 0.4},
	PresetBalanced:     {Generation: 0.9, Analytical: 0.3, Balanced: 0.5},
	PresetCreative:     {Generation: 1.1, Analytical: 0.4, Balanced: 0.7},
	PresetWild:         {Generation: 1.3, Analytical: 0.5, Balanced: 0.9},
}

// PolicyForPreset resolves a preset name; unknown or empty presets are a
// configuration error so typos fail before any network call.
func PolicyForPreset(preset TemperaturePreset) (TemperaturePolicy, error) {
	if preset == "" {
		return presetPolicies[PresetBalanced], nil
	}
	policy, ok := presetPolicies[preset]
	if !ok {
		return TemperaturePolicy{}, domain.Configurationf("unknown temperature preset %q", preset)
	}
	return policy, nil
}
