package sim

import (
	"testing"
)

func TestConfig_Duration(t *testing.T) {
	tests := []struct {
		cfg      Config
		expected float64
	}{
		{Config{Dt: 0.01, Steps: 300}, 3.0},
		{Config{Dt: 0.5, Steps: 4}, 2.0},
		{Config{Dt: 1, Steps: 0}, 0},
	}

	for _, tt := range tests {
		if got := tt.cfg.Duration(); got != tt.expected {
			t.Errorf("Duration() = %v, want %v", got, tt.expected)
		}
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Dt <= 0 || cfg.Steps <= 0 {
		t.Errorf("default config must be runnable, got %+v", cfg)
	}
	if !cfg.ValidateState {
		t.Error("state validation should default to on")
	}
}

func TestDiscard(t *testing.T) {
	if err := Discard.WriteFrame(&Frame{}); err != nil {
		t.Errorf("WriteFrame: %v", err)
	}
	if err := Discard.WriteSummary(Summary{}); err != nil {
		t.Errorf("WriteSummary: %v", err)
	}
}
