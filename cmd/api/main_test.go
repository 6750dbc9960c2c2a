package main

import (
	"errors"
	"testing"
)

func TestSessionSecret(t *testing.T) {
	randFailed := errors.New("entropy unavailable")
	tests := []struct {
		name       string
		configured string
		generate   func() (string, error)
		want       string
		generated  bool
		wantErr    bool
	}{
		{"configured", "from-config", func() (string, error) { return "unused", nil }, "from-config", false, false},
		{"generated", "", func() (string, error) { return "random", nil }, "random", true, false},
		{"generator fails", "", func() (string, error) { return "", randFailed }, "", false, true},
		{"generator returns nothing", "", func() (string, error) { return "", nil }, "", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, generated, err := sessionSecret(tt.configured, tt.generate)
			if (err != nil) != tt.wantErr {
				t.Fatalf("sessionSecret() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want || generated != tt.generated {
				t.Errorf("sessionSecret() = (%q, %v), want (%q, %v)", got, generated, tt.want, tt.generated)
			}
		})
	}
}
