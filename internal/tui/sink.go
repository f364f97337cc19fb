package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dpetkov/comsniff/internal/model"
)

// sender is the subset of *tea.Program the sink needs.
type sender interface {
	Send(msg tea.Msg)
}

// ProgramSink forwards session events into a running bubbletea program.
type ProgramSink struct {
	p sender
}

// NewProgramSink creates a sink delivering to p.
func NewProgramSink(p *tea.Program) *ProgramSink {
	return &ProgramSink{p: p}
}

// Packet implements monitor.Sink.
func (s *ProgramSink) Packet(ev model.PacketEvent) {
	s.p.Send(packetMsg{ev: ev})
}

// Status implements monitor.Sink.
func (s *ProgramSink) Status(ev model.StatusEvent) {
	s.p.Send(statusMsg{ev: ev})
}

// Done tells the program the session has ended so it can quit, carrying
// the session error into the final model.
func (s *ProgramSink) Done(err error) {
	s.p.Send(sessionDoneMsg{err: err})
}
