package serialio

import (
	"context"
	"fmt"
	"time"

	"go.bug.st/serial"

	"github.com/dpetkov/comsniff/internal/frame"
	"github.com/dpetkov/comsniff/internal/gilbarco"
	"github.com/dpetkov/comsniff/internal/model"
)

// readPort is the slice of the serial.Port surface the reader needs.
// Narrowing the interface keeps fakes in tests small.
type readPort interface {
	Read(p []byte) (int, error)
	SetReadTimeout(t time.Duration) error
	Close() error
}

// PortOpener opens a named serial port with the given mode. Production
// code uses OpenSerialPort; tests substitute a fake.
type PortOpener func(name string, mode *serial.Mode) (readPort, error)

// OpenSerialPort is the production PortOpener backed by go.bug.st/serial.
func OpenSerialPort(name string, mode *serial.Mode) (readPort, error) {
	return serial.Open(name, mode)
}

// Reader owns one monitored channel: it opens the port, reads chunks,
// frames them into packets, and emits events until its context is
// cancelled.
type Reader struct {
	cfg    model.ChannelConfig
	open   PortOpener
	framer *frame.Framer
}

// NewReader creates a Reader for a validated, normalized channel
// configuration.
func NewReader(cfg model.ChannelConfig) *Reader {
	var framer *frame.Framer
	if cfg.FramingEnabled {
		framer = frame.NewFramer(cfg.StartMarker, cfg.EndMarker)
	} else {
		// Pass-through framer: every chunk is one packet.
		framer = frame.NewFramer("", "")
	}
	return &Reader{cfg: cfg, open: OpenSerialPort, framer: framer}
}

// Run opens the port and reads until ctx is cancelled. Packets go to
// events, lifecycle changes to status. On a cancelled context the framer
// remainder is flushed as a final partial packet and Run returns nil;
// open and read failures return a CLIError with ExitSerialError.
//
// Run blocks and is meant to be launched in a goroutine per channel
// (the session uses an errgroup).
func (r *Reader) Run(ctx context.Context, events chan<- model.PacketEvent, status chan<- model.StatusEvent) error {
	mode, err := BuildMode(&r.cfg)
	if err != nil {
		return model.WrapCLIError(model.ExitSerialError, fmt.Sprintf("%s: invalid configuration", r.cfg.Label), err)
	}

	port, err := r.open(r.cfg.Port, mode)
	if err != nil {
		wrapped := model.WrapCLIError(
			model.ExitSerialError,
			fmt.Sprintf("%s: failed to open %s", r.cfg.Label, r.cfg.Port),
			err,
		)
		r.sendStatus(ctx, status, model.StatusEvent{Channel: r.cfg.Label, Message: "open failed", Err: wrapped})
		return wrapped
	}
	defer func() { _ = port.Close() }()

	// The read timeout doubles as the cancellation latency bound: a
	// reader blocked in Read wakes up at least this often to check ctx.
	if err := port.SetReadTimeout(r.cfg.ReadTimeout); err != nil {
		return model.WrapCLIError(model.ExitSerialError, fmt.Sprintf("%s: failed to set read timeout", r.cfg.Label), err)
	}

	r.sendStatus(ctx, status, model.StatusEvent{
		Channel:   r.cfg.Label,
		Connected: true,
		Message:   fmt.Sprintf("connected: %s @ %d baud", r.cfg.Port, r.cfg.BaudRate),
	})
	defer r.sendStatus(ctx, status, model.StatusEvent{Channel: r.cfg.Label, Message: "disconnected"})

	buf := make([]byte, 4096)
	for {
		select {
		case <-ctx.Done():
			r.flushRemainder(events)
			return nil
		default:
		}

		n, err := port.Read(buf)
		if err != nil {
			// A read error during shutdown is expected (the port may be
			// torn down under the reader); only report it while running.
			if ctx.Err() != nil {
				r.flushRemainder(events)
				return nil
			}
			wrapped := model.WrapCLIError(
				model.ExitSerialError,
				fmt.Sprintf("%s: read failed on %s", r.cfg.Label, r.cfg.Port),
				err,
			)
			r.sendStatus(ctx, status, model.StatusEvent{Channel: r.cfg.Label, Message: "read failed", Err: wrapped})
			return wrapped
		}
		if n == 0 {
			// Timeout tick with no data.
			continue
		}

		ts := time.Now()
		for _, packet := range r.framer.Push(buf[:n]) {
			event := model.PacketEvent{
				Channel:   r.cfg.Label,
				Timestamp: ts,
				Data:      packet,
			}
			if r.cfg.Protocol == model.ProtocolGilbarco {
				event.LRCError = gilbarco.VerifyPacket(packet) != nil
			}
			select {
			case events <- event:
			case <-ctx.Done():
				r.flushRemainder(events)
				return nil
			}
		}
	}
}

// flushRemainder emits buffered bytes that never saw an end marker as a
// final partial packet, so trailing traffic is visible after stop.
func (r *Reader) flushRemainder(events chan<- model.PacketEvent) {
	rest := r.framer.Flush()
	if len(rest) == 0 {
		return
	}
	event := model.PacketEvent{
		Channel:   r.cfg.Label,
		Timestamp: time.Now(),
		Data:      rest,
		Partial:   true,
	}
	// Non-blocking: at shutdown the consumer may already be gone.
	select {
	case events <- event:
	default:
	}
}

// sendStatus delivers a status event without blocking a cancelled session.
func (r *Reader) sendStatus(ctx context.Context, status chan<- model.StatusEvent, ev model.StatusEvent) {
	select {
	case status <- ev:
	case <-ctx.Done():
	}
}
