//go:build linux

package gpio

import (
	"strings"
	"testing"
)

func TestNewChardevPinMissingChip(t *testing.T) {
	p, err := NewChardevPin("athermo-no-such-chip", "PIR_DIS", PinConfig{Number: 23})
	if err == nil {
		p.Close()
		t.Fatal("expected error for missing chip")
	}
	if !strings.Contains(err.Error(), "PIR_DIS") {
		t.Errorf("error should name the pin: %v", err)
	}
}

func TestNewChardevPinNegativeOffset(t *testing.T) {
	if _, err := NewChardevPin("", "PERIPH_VCC", PinConfig{Number: -1}); err == nil {
		t.Fatal("expected error for negative offset")
	}
}

func TestOpenChardevMissingChip(t *testing.T) {
	if _, err := Open(BackendChardev, "athermo-no-such-chip", "PERIPH_VCC", PinConfig{Number: 24}); err == nil {
		t.Fatal("expected Open to fail for missing chip")
	}
}
