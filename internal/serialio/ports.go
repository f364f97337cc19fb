package serialio

import (
	"go.bug.st/serial/enumerator"

	"github.com/dpetkov/comsniff/internal/model"
)

// PortInfo describes one detected serial port.
type PortInfo struct {
	// Name is the device name used to open the port
	// (e.g. "COM3", "/dev/ttyUSB0").
	Name string `json:"name"`

	// Description is the human-readable product description, when the
	// platform provides one.
	Description string `json:"description,omitempty"`

	// IsUSB reports whether the port is a USB adapter.
	IsUSB bool `json:"isUsb"`

	// VID and PID identify the USB vendor/product, empty for non-USB ports.
	VID string `json:"vid,omitempty"`
	PID string `json:"pid,omitempty"`
}

// ListPorts enumerates the serial ports available on this machine.
// An empty (non-nil error) result means enumeration itself failed;
// a machine with no ports yields an empty slice and no error.
func ListPorts() ([]PortInfo, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, model.WrapCLIError(model.ExitSerialError, "failed to enumerate serial ports", err)
	}

	ports := make([]PortInfo, 0, len(details))
	for _, d := range details {
		ports = append(ports, PortInfo{
			Name:        d.Name,
			Description: d.Product,
			IsUSB:       d.IsUSB,
			VID:         d.VID,
			PID:         d.PID,
		})
	}
	return ports, nil
}
