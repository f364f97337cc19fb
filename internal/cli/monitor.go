// Package cli — monitor.go implements the "comsniff monitor" command.
//
// The monitor command runs a sniffing session over the configured
// channels. Configuration comes from the YAML profile, with flags
// overriding individual settings; --save persists the effective
// configuration back to the profile. Output goes to stdout by default,
// or to an interactive TUI with --tui. The optional capture log and
// diagnostics log are controlled per session.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dpetkov/comsniff/internal/capture"
	"github.com/dpetkov/comsniff/internal/diag"
	"github.com/dpetkov/comsniff/internal/model"
	"github.com/dpetkov/comsniff/internal/monitor"
	"github.com/dpetkov/comsniff/internal/profile"
	"github.com/dpetkov/comsniff/internal/tui"
)

// monitorFlags holds the flag values for the monitor command.
type monitorFlags struct {
	// profilePath overrides the default profile location.
	profilePath string

	// save writes the effective configuration back to the profile
	// before the session starts.
	save bool

	// useTUI switches from stdout lines to the interactive viewport.
	useTUI bool

	// enableDiag turns on the diagnostics log for this session.
	enableDiag bool

	// Channel overrides. Setting a port enables that channel; the
	// remaining serial settings apply to every enabled channel when
	// their flag is set.
	rx1Port     string
	rx2Port     string
	baud        int
	dataBits    int
	parity      string
	stopBits    string
	timeoutMS   int
	protocol    string
	framing     bool
	startMarker string
	endMarker   string

	// Capture overrides.
	captureOn  bool
	captureDir string
}

// NewMonitorCommand creates the "monitor" cobra command.
func NewMonitorCommand() *cobra.Command {
	cmd, _ := newMonitorCommand()
	return cmd
}

// newMonitorCommand builds the command and returns its flag struct
// alongside, so tests can inspect override handling.
func newMonitorCommand() (*cobra.Command, *monitorFlags) {
	flags := &monitorFlags{}

	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Monitor serial channels and display packets as hex lines",
		Long: `Monitor opens the enabled channels (RX1 and/or RX2) and prints each
assembled packet as a timestamped hex line:

  [13:45:07.042] RX1 02 31 32 03

Configuration is loaded from the profile (~/.config/comsniff/profile.yaml);
flags override individual settings for this run, and --save writes the
result back. Press Ctrl-C to stop.

Examples:
  comsniff monitor --rx1-port /dev/ttyUSB0 --baud 19200
  comsniff monitor --rx1-port COM3 --rx2-port COM4 --protocol gilbarco-2wire
  comsniff monitor --tui --capture
  comsniff monitor --rx1-port /dev/ttyUSB0 --save`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runMonitor(cmd, flags)
		},
	}

	cmd.Flags().StringVar(&flags.profilePath, "profile", "", "Path to the profile file")
	cmd.Flags().BoolVar(&flags.save, "save", false, "Save the effective configuration to the profile")
	cmd.Flags().BoolVar(&flags.useTUI, "tui", false, "Interactive terminal interface")
	cmd.Flags().BoolVar(&flags.enableDiag, "diag", false, "Write a diagnostics log for this session")

	cmd.Flags().StringVar(&flags.rx1Port, "rx1-port", "", "Serial port for RX1 (enables RX1)")
	cmd.Flags().StringVar(&flags.rx2Port, "rx2-port", "", "Serial port for RX2 (enables RX2)")
	cmd.Flags().IntVar(&flags.baud, "baud", 9600, "Baud rate for enabled channels")
	cmd.Flags().IntVar(&flags.dataBits, "data-bits", 8, "Data bits (5-8)")
	cmd.Flags().StringVar(&flags.parity, "parity", "none", "Parity: none, even, odd")
	cmd.Flags().StringVar(&flags.stopBits, "stop-bits", "1", "Stop bits: 1, 1.5, 2")
	cmd.Flags().IntVar(&flags.timeoutMS, "timeout", 10, "Read timeout in milliseconds (1-1000)")
	cmd.Flags().StringVar(&flags.protocol, "protocol", "raw", "Protocol mode: raw, gilbarco-2wire")
	cmd.Flags().BoolVar(&flags.framing, "framing", false, "Enable marker-based packet framing")
	cmd.Flags().StringVar(&flags.startMarker, "start-marker", "", `Packet start marker ("STX", "0x02", a decimal, or a literal)`)
	cmd.Flags().StringVar(&flags.endMarker, "end-marker", "", "Packet end marker, same formats as --start-marker")

	cmd.Flags().BoolVar(&flags.captureOn, "capture", false, "Write packets to a capture log file")
	cmd.Flags().StringVar(&flags.captureDir, "capture-dir", "", "Capture log directory (default: ~/comsniff-logs)")

	return cmd, flags
}

// runMonitor is the main logic function for the monitor command.
func runMonitor(cmd *cobra.Command, flags *monitorFlags) error {
	prof, profPath, err := loadProfile(flags.profilePath)
	if err != nil {
		return err
	}
	applyOverrides(cmd, flags, prof)

	for i := range prof.Channels {
		prof.Channels[i].Normalize()
	}
	if err := model.ValidateChannels(prof.Channels); err != nil {
		return model.WrapCLIError(model.ExitProfileError, "invalid monitor configuration", err)
	}

	if flags.save {
		if err := prof.Save(profPath); err != nil {
			return err
		}
		VerboseLog("Saved profile to %s", profPath)
	}

	// Stop on Ctrl-C / SIGTERM; the readers unwind via context.
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var writer *capture.Writer
	if prof.Capture.Enabled {
		writer, err = capture.NewWriter(prof.Capture.Dir, monitor.Header(prof.Channels))
		if err != nil {
			return model.WrapCLIError(model.ExitGeneralError, "failed to open capture log", err)
		}
		VerboseLog("Capturing to %s", writer.Path())
	}

	// Diagnostics are best-effort: a setup failure is reported but never
	// blocks the session.
	var dl *diag.Logger
	if flags.enableDiag {
		dl, err = diag.New(prof.Capture.Dir, Version)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: diagnostics disabled: %v\n", err)
		} else {
			VerboseLog("Diagnostics log: %s", dl.Path())
			go dl.RunMemorySampler(ctx)
			defer dl.Close()
		}
	}

	if flags.useTUI {
		return runMonitorTUI(ctx, prof, writer, dl)
	}
	return runMonitorHeadless(ctx, prof, writer, dl)
}

// loadProfile resolves the profile path and loads it.
func loadProfile(path string) (*profile.Profile, string, error) {
	if path == "" {
		var err error
		path, err = profile.DefaultPath()
		if err != nil {
			return nil, "", model.WrapCLIError(model.ExitProfileError,
				"failed to resolve profile path", err)
		}
	}
	prof, err := profile.Load(path)
	if err != nil {
		return nil, "", err
	}
	return prof, path, nil
}

// applyOverrides folds the command-line flags into the loaded profile.
// Port flags enable their channel; the shared serial flags apply to all
// enabled channels, but only when explicitly set on the command line.
func applyOverrides(cmd *cobra.Command, flags *monitorFlags, prof *profile.Profile) {
	if flags.rx1Port != "" {
		prof.Channels[0].Enabled = true
		prof.Channels[0].Port = flags.rx1Port
	}
	if flags.rx2Port != "" {
		prof.Channels[1].Enabled = true
		prof.Channels[1].Port = flags.rx2Port
	}

	for i := range prof.Channels {
		c := &prof.Channels[i]
		if cmd.Flags().Changed("baud") {
			c.BaudRate = flags.baud
		}
		if cmd.Flags().Changed("data-bits") {
			c.DataBits = flags.dataBits
		}
		if cmd.Flags().Changed("parity") {
			c.Parity = model.Parity(flags.parity)
		}
		if cmd.Flags().Changed("stop-bits") {
			c.StopBits = model.StopBits(flags.stopBits)
		}
		if cmd.Flags().Changed("timeout") {
			c.ReadTimeout = time.Duration(flags.timeoutMS) * time.Millisecond
		}
		if cmd.Flags().Changed("protocol") {
			c.Protocol = model.ProtocolMode(flags.protocol)
		}
		if cmd.Flags().Changed("framing") {
			c.FramingEnabled = flags.framing
		}
		if cmd.Flags().Changed("start-marker") {
			c.StartMarker = flags.startMarker
		}
		if cmd.Flags().Changed("end-marker") {
			c.EndMarker = flags.endMarker
		}
	}

	if cmd.Flags().Changed("capture") {
		prof.Capture.Enabled = flags.captureOn
	}
	if flags.captureDir != "" {
		prof.Capture.Dir = flags.captureDir
	}
}

// stdoutSink is the headless monitor.Sink: packet lines on stdout,
// status changes on stderr.
type stdoutSink struct {
	dl *diag.Logger
}

func (s *stdoutSink) Packet(ev model.PacketEvent) {
	fmt.Print(ev.Line())
}

func (s *stdoutSink) Status(ev model.StatusEvent) {
	if ev.Err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", ev.Channel, ev.Err)
		s.dl.Error(ev.Channel+" error", ev.Err)
		return
	}
	fmt.Fprintf(os.Stderr, "%s: %s\n", ev.Channel, ev.Message)
	s.dl.Event("channel status",
		zap.String("channel", ev.Channel),
		zap.Bool("connected", ev.Connected),
		zap.String("message", ev.Message))
}

// runMonitorHeadless runs the session printing lines to stdout until the
// context is cancelled or a reader fails.
func runMonitorHeadless(ctx context.Context, prof *profile.Profile, writer *capture.Writer, dl *diag.Logger) error {
	session := monitor.NewSession(prof.Channels, &stdoutSink{dl: dl}, writer)
	return session.Run(ctx)
}

// runMonitorTUI runs the session behind the bubbletea interface. The
// session and the program stop together: quitting the TUI cancels the
// session, and a session failure quits the TUI.
func runMonitorTUI(ctx context.Context, prof *profile.Profile, writer *capture.Writer, dl *diag.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(tui.NewModel(prof.Channels), tea.WithAltScreen(), tea.WithContext(ctx))
	sink := tui.NewProgramSink(p)
	session := monitor.NewSession(prof.Channels, sink, writer)

	sessionErr := make(chan error, 1)
	go func() {
		err := session.Run(ctx)
		sessionErr <- err
		sink.Done(err)
	}()

	finalModel, runErr := p.Run()
	cancel()
	err := <-sessionErr

	if dl != nil {
		dl.Event("session ended")
	}
	if err != nil {
		return err
	}
	if m, ok := finalModel.(tui.Model); ok && m.Err() != nil {
		return m.Err()
	}
	if runErr != nil && ctx.Err() == nil {
		return runErr
	}
	return nil
}
