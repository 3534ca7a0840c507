package service

import (
	"testing"

	"github.com/Harshitk-cp/ideaforge/internal/domain"
)

func TestPolicyForPreset(t *testing.T) {
	tests := []struct {
		preset TemperaturePreset
		want   TemperaturePolicy
	}{
		{PresetConservative, TemperaturePolicy{Generation: 0.5, Analytical: 0.2, Balanced: 0.4}},
		{PresetBalanced, TemperaturePolicy{Generation: 0.9, Analytical: 0.3, Balanced: 0.5}},
		{PresetCreative, TemperaturePolicy{Generation: 1.1, Analytical: 0.4, Balanced: 0.7}},
		{PresetWild, TemperaturePolicy{Generation: 1.3, Analytical: 0.5, Balanced: 0.9}},
	}

	for _, tt := range tests {
		t.Run(string(tt.preset), func(t *testing.T) {
			got, err := PolicyForPreset(tt.preset)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("policy = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestPolicyForPresetEmptyDefaultsToBalanced(t *testing.T) {
	got, err := PolicyForPreset("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != presetPolicies[PresetBalanced] {
		t.Errorf("policy = %+v, want balanced", got)
	}
}

func TestPolicyForPresetUnknownIsConfigurationError(t *testing.T) {
	_, err := PolicyForPreset("volcanic")
	if err == nil {
		t.Fatal("expected error")
	}
	if !domain.IsConfiguration(err) {
		t.Errorf("error %v is not a configuration error", err)
	}
}

func TestPresetsOrderedByRisingGenerationTemperature(t *testing.T) {
	order := []TemperaturePreset{PresetConservative, PresetBalanced, PresetCreative, PresetWild}
	for i := 1; i < len(order); i++ {
		prev := presetPolicies[order[i-1]]
		curr := presetPolicies[order[i]]
		if curr.Generation <= prev.Generation {
			t.Errorf("%s generation %v not above %s's %v",
				order[i], curr.Generation, order[i-1], prev.Generation)
		}
	}
}
