package gpio

import (
	"strings"
	"testing"
)

func TestDescribe(t *testing.T) {
	tests := []struct {
		kind string
		cfg  PinConfig
		want string
	}{
		{"PIR_DIS", PinConfig{Number: 23}, "PIR_DIS GPIO23"},
		{"PERIPH_VCC", PinConfig{Number: 24, Inverted: true}, "PERIPH_VCC GPIO24 (inverted)"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := Describe(tt.kind, tt.cfg); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open("sysfs", DefaultChip, "PIR_DIS", PinConfig{Number: DefaultPinPIRDis})
	if err == nil {
		t.Fatal("expected error for unknown backend")
	}
	if !strings.Contains(err.Error(), "sysfs") {
		t.Errorf("error should name the backend: %v", err)
	}
}

func TestFakePinSatisfiesOutputPin(t *testing.T) {
	var _ OutputPin = NewFakePin("x")
}
