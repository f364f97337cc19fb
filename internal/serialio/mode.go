package serialio

import (
	"fmt"

	"go.bug.st/serial"

	"github.com/dpetkov/comsniff/internal/model"
)

// BuildMode maps a channel configuration to the go.bug.st/serial Mode
// used at open time. The configuration is assumed validated; unknown
// enum values still return an error rather than a zero Mode, because a
// silently wrong parity corrupts every captured byte.
func BuildMode(cfg *model.ChannelConfig) (*serial.Mode, error) {
	mode := &serial.Mode{
		BaudRate: cfg.BaudRate,
		DataBits: cfg.DataBits,
	}

	switch cfg.Parity {
	case model.ParityNone:
		mode.Parity = serial.NoParity
	case model.ParityEven:
		mode.Parity = serial.EvenParity
	case model.ParityOdd:
		mode.Parity = serial.OddParity
	default:
		return nil, fmt.Errorf("unsupported parity %q", cfg.Parity)
	}

	switch cfg.StopBits {
	case model.StopBitsOne:
		mode.StopBits = serial.OneStopBit
	case model.StopBitsOnePointFive:
		mode.StopBits = serial.OnePointFiveStopBits
	case model.StopBitsTwo:
		mode.StopBits = serial.TwoStopBits
	default:
		return nil, fmt.Errorf("unsupported stop bits %q", cfg.StopBits)
	}

	return mode, nil
}
