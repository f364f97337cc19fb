package monitor

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpetkov/comsniff/internal/capture"
	"github.com/dpetkov/comsniff/internal/model"
)

// recordingSink collects everything the session delivers.
type recordingSink struct {
	mu       sync.Mutex
	packets  []model.PacketEvent
	statuses []model.StatusEvent
}

func (r *recordingSink) Packet(ev model.PacketEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.packets = append(r.packets, ev)
}

func (r *recordingSink) Status(ev model.StatusEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, ev)
}

func (r *recordingSink) packetCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.packets)
}

// twoChannels returns an enabled RX1/RX2 pair on distinct fake ports.
func twoChannels() []model.ChannelConfig {
	rx1 := model.DefaultChannelConfig("RX1")
	rx1.Port = "FAKE0"
	rx2 := model.DefaultChannelConfig("RX2")
	rx2.Port = "FAKE1"
	return []model.ChannelConfig{rx1, rx2}
}

// TestSessionRun_FanIn verifies that packets from both channel readers
// reach the sink and that the session stops cleanly on cancellation.
func TestSessionRun_FanIn(t *testing.T) {
	sink := &recordingSink{}
	s := NewSession(twoChannels(), sink, nil)

	// Scripted readers: each emits one packet then waits for cancel.
	s.reader = func(ctx context.Context, cfg model.ChannelConfig, events chan<- model.PacketEvent, status chan<- model.StatusEvent) error {
		status <- model.StatusEvent{Channel: cfg.Label, Connected: true, Message: "connected"}
		events <- model.PacketEvent{Channel: cfg.Label, Timestamp: time.Now(), Data: []byte{0x01}}
		<-ctx.Done()
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool { return sink.packetCount() == 2 },
		2*time.Second, 5*time.Millisecond, "both channels should deliver a packet")

	cancel()
	require.NoError(t, <-done)

	sink.mu.Lock()
	defer sink.mu.Unlock()
	labels := map[string]bool{}
	for _, p := range sink.packets {
		labels[p.Channel] = true
	}
	assert.True(t, labels["RX1"] && labels["RX2"])
	assert.Len(t, sink.statuses, 2)
}

// TestSessionRun_ReaderErrorStopsPeer verifies error propagation: when
// one reader fails, the shared errgroup context cancels the other and
// Run returns the failure.
func TestSessionRun_ReaderErrorStopsPeer(t *testing.T) {
	sink := &recordingSink{}
	s := NewSession(twoChannels(), sink, nil)

	bang := errors.New("device unplugged")
	s.reader = func(ctx context.Context, cfg model.ChannelConfig, events chan<- model.PacketEvent, status chan<- model.StatusEvent) error {
		if cfg.Label == "RX1" {
			return bang
		}
		<-ctx.Done() // RX2 must be cancelled by RX1's failure
		return nil
	}

	err := s.Run(context.Background())
	assert.ErrorIs(t, err, bang)
}

// TestSessionRun_SkipsDisabledChannels verifies that a disabled channel
// never starts a reader.
func TestSessionRun_SkipsDisabledChannels(t *testing.T) {
	channels := twoChannels()
	channels[1].Enabled = false

	sink := &recordingSink{}
	s := NewSession(channels, sink, nil)

	var mu sync.Mutex
	var started []string
	s.reader = func(ctx context.Context, cfg model.ChannelConfig, events chan<- model.PacketEvent, status chan<- model.StatusEvent) error {
		mu.Lock()
		started = append(started, cfg.Label)
		mu.Unlock()
		return nil
	}

	require.NoError(t, s.Run(context.Background()))
	assert.Equal(t, []string{"RX1"}, started)
}

// TestSessionRun_CaptureIntegration verifies that packet lines land in
// the capture file and the file is closed with a footer when the
// session ends.
func TestSessionRun_CaptureIntegration(t *testing.T) {
	channels := twoChannels()
	channels[1].Enabled = false

	w, err := capture.NewWriter(t.TempDir(), Header(channels))
	require.NoError(t, err)
	path := w.Path()

	sink := &recordingSink{}
	s := NewSession(channels, sink, w)
	s.reader = func(ctx context.Context, cfg model.ChannelConfig, events chan<- model.PacketEvent, status chan<- model.StatusEvent) error {
		events <- model.PacketEvent{Channel: cfg.Label, Timestamp: time.Now(), Data: []byte{0x02, 0x41, 0x03}}
		return nil
	}

	require.NoError(t, s.Run(context.Background()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "RX1 -> port: FAKE0, baud: 9600")
	assert.Contains(t, content, "RX1 02 41 03")
	assert.Contains(t, content, "\nend: ")
}

// TestHeader verifies the capture header line format and that disabled
// channels are omitted.
func TestHeader(t *testing.T) {
	channels := twoChannels()
	channels[1].Enabled = false

	lines := Header(channels)
	require.Len(t, lines, 1)
	assert.Equal(t, "RX1 -> port: FAKE0, baud: 9600, bits: 8, parity: none, stop: 1", lines[0])
}
