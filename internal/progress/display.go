package progress

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/briandowns/spinner"
)

// spinnerInterval is how often the spinner frame advances.
const spinnerInterval = 100 * time.Millisecond

// Display shows a spinner while a long step runs. On anything that is not a
// TTY every method is a no-op, so piped output and CI logs stay clean.
type Display struct {
	mu      sync.Mutex
	w       io.Writer
	caps    TerminalCapabilities
	symbols ProgressSymbols
	spinner *spinner.Spinner
}

// NewDisplay creates a Display writing to w with the given capabilities.
func NewDisplay(w io.Writer, caps TerminalCapabilities) *Display {
	return &Display{
		w:       w,
		caps:    caps,
		symbols: SelectSymbols(caps),
	}
}

// Enabled reports whether the display draws anything.
func (d *Display) Enabled() bool {
	return d != nil && d.caps.IsTTY
}

// Start begins spinning with message as the suffix. A running spinner is
// replaced.
func (d *Display) Start(message string) {
	if !d.Enabled() {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.spinner != nil {
		d.spinner.Stop()
	}
	charset, ok := spinner.CharSets[d.symbols.SpinnerSet]
	if !ok {
		charset = spinner.CharSets[9]
	}
	s := spinner.New(charset, spinnerInterval, spinner.WithWriter(d.w))
	s.Suffix = " " + message
	s.Start()
	d.spinner = s
}

// Complete stops the spinner and prints a success line.
func (d *Display) Complete(message string) {
	if !d.Enabled() {
		return
	}
	d.finish(d.symbols.Checkmark, message)
}

// Fail stops the spinner and prints a failure line.
func (d *Display) Fail(message string) {
	if !d.Enabled() {
		return
	}
	d.finish(d.symbols.Failure, message)
}

func (d *Display) finish(symbol, message string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
	fmt.Fprintf(d.w, "%s %s\n", symbol, message)
}

func (d *Display) stopLocked() {
	if d.spinner == nil {
		return
	}
	d.spinner.Stop()
	d.spinner = nil
}
