package gpio

import "fmt"

// Backend names accepted by Open.
const (
	BackendChardev = "chardev"
	BackendPeriph  = "periph"
)

// Line is an OutputPin whose underlying resource must be released.
type Line interface {
	OutputPin
	Close() error
}

// Open provisions a line on the named backend. The caller owns the result
// and must Close it.
func Open(backend, chip, kind string, cfg PinConfig) (Line, error) {
	switch backend {
	case BackendChardev, "":
		p, err := NewChardevPin(chip, kind, cfg)
		if err != nil {
			return nil, err
		}
		return p, nil
	case BackendPeriph:
		p, err := NewPeriphPin(kind, cfg)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown gpio backend %q", backend)
	}
}
