package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/go-go-golems/bierguru/pkg/widget"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// Printer is a view set that writes each transcript entry as one `label: text`
// block. It is used for single questions asked from the command line.
type Printer struct {
	out    *termenv.Output
	status io.Writer
	preset widget.Preset
	styled bool

	message string
}

// NewPrinter writes entries to w and the busy status to status. Styling is only
// applied when w is a terminal.
func NewPrinter(w io.Writer, status io.Writer, preset widget.Preset, message string) *Printer {
	styled := false
	if f, ok := w.(*os.File); ok {
		styled = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	var out *termenv.Output
	if styled {
		out = termenv.NewOutput(w)
	} else {
		out = termenv.NewOutput(w, termenv.WithProfile(termenv.Ascii))
	}
	return &Printer{
		out:     out,
		status:  status,
		preset:  preset,
		styled:  styled,
		message: message,
	}
}

func (p *Printer) Views() widget.Views {
	return widget.Views{
		Transcript: p,
		Input:      printerInput{p},
		Send:       printerSend{},
		Status:     printerStatus{p},
	}
}

func (p *Printer) Append(e widget.Entry) {
	label := p.out.String(p.preset.Label(e.Role) + ":").Bold()
	switch e.Role {
	case widget.RoleUser:
		label = label.Foreground(p.out.Color("75"))
	case widget.RoleAssistant:
		label = label.Foreground(p.out.Color("214"))
	case widget.RoleError:
		label = label.Foreground(p.out.Color("196"))
	}
	_, _ = fmt.Fprintf(p.out, "%s %s\n", label, sanitize(e.Text))
}

func (p *Printer) NearBottom(int) bool { return true }

func (p *Printer) ScrollToBottom() {}

type printerInput struct{ p *Printer }

func (i printerInput) Value() string   { return i.p.message }
func (i printerInput) Clear()          { i.p.message = "" }
func (i printerInput) Resize()         {}
func (i printerInput) Focus()          {}
func (i printerInput) SetEnabled(bool) {}

type printerSend struct{}

func (printerSend) SetEnabled(bool) {}

type printerStatus struct{ p *Printer }

func (s printerStatus) Show(text string) {
	if s.p.styled && s.p.status != nil {
		_, _ = fmt.Fprintf(s.p.status, "%s\n", text)
	}
}

func (s printerStatus) Clear() {}
