package monitor

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dpetkov/comsniff/internal/capture"
	"github.com/dpetkov/comsniff/internal/model"
	"github.com/dpetkov/comsniff/internal/serialio"
)

// flushInterval is how often batched capture lines are written to disk.
const flushInterval = 50 * time.Millisecond

// Sink consumes session output. Implementations must be fast or buffer
// internally; Packet is called from the session's consumer goroutine.
type Sink interface {
	// Packet delivers one captured packet (or partial remainder).
	Packet(ev model.PacketEvent)

	// Status delivers a channel lifecycle change.
	Status(ev model.StatusEvent)
}

// ReaderFunc runs one channel reader until ctx is cancelled. It exists
// so tests can substitute scripted readers for real serial ports.
type ReaderFunc func(ctx context.Context, cfg model.ChannelConfig, events chan<- model.PacketEvent, status chan<- model.StatusEvent) error

// defaultReader backs ReaderFunc with the serialio package.
func defaultReader(ctx context.Context, cfg model.ChannelConfig, events chan<- model.PacketEvent, status chan<- model.StatusEvent) error {
	return serialio.NewReader(cfg).Run(ctx, events, status)
}

// Session is one monitoring run over a set of channels.
type Session struct {
	channels []model.ChannelConfig
	sink     Sink

	// writer is the optional capture log; nil disables capture.
	writer *capture.Writer

	// reader is the channel reader implementation (defaultReader in
	// production).
	reader ReaderFunc
}

// NewSession creates a session over the given channels. The channel set
// must already be validated and normalized. writer may be nil to disable
// capture.
func NewSession(channels []model.ChannelConfig, sink Sink, writer *capture.Writer) *Session {
	return &Session{
		channels: channels,
		sink:     sink,
		writer:   writer,
		reader:   defaultReader,
	}
}

// Header returns the capture header lines describing a channel set, one
// line per enabled channel.
func Header(channels []model.ChannelConfig) []string {
	var lines []string
	for i := range channels {
		c := &channels[i]
		if !c.Enabled {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s -> port: %s, baud: %d, bits: %d, parity: %s, stop: %s",
			c.Label, c.Port, c.BaudRate, c.DataBits, c.Parity, c.StopBits))
	}
	return lines
}

// Run executes the session until ctx is cancelled or a reader fails.
// It returns the first reader error, or nil on a clean stop. The capture
// writer (when present) is flushed and closed before returning.
func (s *Session) Run(ctx context.Context) error {
	events := make(chan model.PacketEvent, 256)
	status := make(chan model.StatusEvent, 16)

	g, gctx := errgroup.WithContext(ctx)
	for i := range s.channels {
		cfg := s.channels[i]
		if !cfg.Enabled {
			continue
		}
		g.Go(func() error {
			return s.reader(gctx, cfg, events, status)
		})
	}

	// The consumer drains events until both channels are closed, which
	// happens only after every reader has returned.
	consumerDone := make(chan struct{})
	go s.consume(events, status, consumerDone)

	err := g.Wait()
	close(events)
	close(status)
	<-consumerDone

	if s.writer != nil {
		if closeErr := s.writer.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}
	return err
}

// consume is the single fan-in loop: it forwards events to the sink,
// appends capture lines, and flushes the capture writer on a ticker.
func (s *Session) consume(events <-chan model.PacketEvent, status <-chan model.StatusEvent, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	for events != nil || status != nil {
		select {
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			s.sink.Packet(ev)
			if s.writer != nil {
				s.writer.Append(ev.Line())
			}

		case st, ok := <-status:
			if !ok {
				status = nil
				continue
			}
			s.sink.Status(st)

		case <-ticker.C:
			if s.writer != nil {
				_ = s.writer.Flush()
			}
		}
	}
}
