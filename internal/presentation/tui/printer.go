package tui

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Printer writes one line per event, colored when styled.
type Printer struct {
	out     io.Writer
	profile termenv.Profile
}

// NewPrinter creates a Printer. Without styling it prints plain text.
func NewPrinter(out io.Writer, styled bool) *Printer {
	profile := termenv.Ascii
	if styled {
		profile = termenv.ColorProfile()
	}
	return &Printer{out: out, profile: profile}
}

// Timeout prints a timeout event.
func (p *Printer) Timeout(namespace, key string, at time.Time) {
	label := p.profile.String("timeout").Foreground(p.profile.Color("#a78bfa")).Bold()
	fmt.Fprintf(p.out, "%s %s %s:%s\n", at.Format(time.RFC3339Nano), label, namespace, key)
}

// Error prints an error event.
func (p *Printer) Error(err error) {
	label := p.profile.String("error").Foreground(p.profile.Color("#fb7185")).Bold()
	fmt.Fprintf(p.out, "%s %s %v\n", time.Now().Format(time.RFC3339Nano), label, err)
}

// Status prints a "label: value" line with the value highlighted.
func (p *Printer) Status(label, value string) {
	v := p.profile.String(value).Foreground(p.profile.Color("#818cf8"))
	fmt.Fprintf(p.out, "%s: %s\n", label, v)
}
