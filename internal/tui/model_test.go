package tui

import (
	"errors"
	"fmt"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpetkov/comsniff/internal/model"
)

// testChannels returns one enabled and one disabled channel.
func testChannels() []model.ChannelConfig {
	rx1 := model.DefaultChannelConfig("RX1")
	rx1.Port = "/dev/ttyUSB0"
	rx2 := model.DefaultChannelConfig("RX2")
	rx2.Enabled = false
	return []model.ChannelConfig{rx1, rx2}
}

// sized returns a model after the initial window size message.
func sized(t *testing.T, m Model) Model {
	t.Helper()
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return updated.(Model)
}

// packet builds a packetMsg with the given channel and data.
func packet(channel string, data ...byte) packetMsg {
	return packetMsg{ev: model.PacketEvent{
		Channel:   channel,
		Timestamp: time.Date(2024, 3, 1, 13, 45, 7, 42_000_000, time.UTC),
		Data:      data,
	}}
}

// TestModel_OnlyEnabledChannelsShown verifies disabled channels have no
// status entry.
func TestModel_OnlyEnabledChannelsShown(t *testing.T) {
	m := sized(t, NewModel(testChannels()))
	view := m.View()
	assert.Contains(t, view, "RX1")
	assert.NotContains(t, view, "RX2")
}

// TestModel_PacketAppendsLine verifies that a packet shows up in the
// viewport as a formatted hex line.
func TestModel_PacketAppendsLine(t *testing.T) {
	m := sized(t, NewModel(testChannels()))

	updated, _ := m.Update(packet("RX1", 0x02, 0x41, 0x03))
	view := updated.(Model).View()
	assert.Contains(t, view, "[13:45:07.042] RX1 02 41 03")
}

// TestModel_BadLRCMarked verifies that packets flagged with a checksum
// failure carry a visible marker.
func TestModel_BadLRCMarked(t *testing.T) {
	m := sized(t, NewModel(testChannels()))

	msg := packet("RX1", 0x02, 0x31, 0x00, 0x03)
	msg.ev.LRCError = true
	updated, _ := m.Update(msg)
	assert.Contains(t, updated.(Model).View(), "LRC mismatch")
}

// TestModel_PauseAndClear verifies the s and c key bindings.
func TestModel_PauseAndClear(t *testing.T) {
	m := sized(t, NewModel(testChannels()))

	updated, _ := m.Update(packet("RX1", 0xAA))
	m = updated.(Model)
	require.Contains(t, m.View(), "AA")

	// Pause drops incoming packets.
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}})
	m = updated.(Model)
	assert.Contains(t, m.View(), "[PAUSED]")

	updated, _ = m.Update(packet("RX1", 0xBB))
	m = updated.(Model)
	assert.NotContains(t, m.View(), "BB")

	// Clear empties the scrollback.
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'c'}})
	m = updated.(Model)
	assert.NotContains(t, m.View(), "AA")
}

// TestModel_QuitKey verifies q produces a quit command.
func TestModel_QuitKey(t *testing.T) {
	m := sized(t, NewModel(testChannels()))

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

// TestModel_StatusUpdates verifies connection status changes are
// reflected in the status line.
func TestModel_StatusUpdates(t *testing.T) {
	m := sized(t, NewModel(testChannels()))

	updated, _ := m.Update(statusMsg{ev: model.StatusEvent{
		Channel:   "RX1",
		Connected: true,
		Message:   "connected: /dev/ttyUSB0 @ 9600 baud",
	}})
	m = updated.(Model)
	assert.Contains(t, m.View(), "connected: /dev/ttyUSB0 @ 9600 baud")
}

// TestModel_ScrollbackBounded verifies the line buffer never exceeds the
// scrollback cap.
func TestModel_ScrollbackBounded(t *testing.T) {
	m := sized(t, NewModel(testChannels()))

	var current tea.Model = m
	for i := 0; i < maxScrollback+100; i++ {
		current, _ = current.(Model).Update(packet("RX1", byte(i)))
	}
	final := current.(Model)
	assert.Len(t, final.lines, maxScrollback)
}

// TestModel_SessionDoneQuitsWithError verifies the done message stops
// the program and surfaces the session error.
func TestModel_SessionDoneQuitsWithError(t *testing.T) {
	m := sized(t, NewModel(testChannels()))

	bang := errors.New("reader failed")
	updated, cmd := m.Update(sessionDoneMsg{err: bang})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.ErrorIs(t, updated.(Model).Err(), bang)
}

// fakeSender records messages sent through a ProgramSink.
type fakeSender struct {
	msgs []tea.Msg
}

func (f *fakeSender) Send(msg tea.Msg) {
	f.msgs = append(f.msgs, msg)
}

// TestProgramSink verifies the sink translates sink calls into program
// messages.
func TestProgramSink(t *testing.T) {
	f := &fakeSender{}
	s := &ProgramSink{p: f}

	s.Packet(model.PacketEvent{Channel: "RX1", Data: []byte{0x01}})
	s.Status(model.StatusEvent{Channel: "RX2", Connected: true})
	s.Done(fmt.Errorf("over"))

	require.Len(t, f.msgs, 3)
	assert.IsType(t, packetMsg{}, f.msgs[0])
	assert.IsType(t, statusMsg{}, f.msgs[1])
	assert.IsType(t, sessionDoneMsg{}, f.msgs[2])
}
