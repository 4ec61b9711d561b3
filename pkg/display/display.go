// Package display renders relcm's terminal output: transition catalogs,
// ticket listings and diagnostics, in a plain and a pretty (styled)
// variant selected by the `pretty` configuration flag.
package display

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"

	"github.com/relcm/relcm/pkg/jira"
	"github.com/relcm/relcm/pkg/transition"
)

// Printer writes command output
type Printer struct {
	out    io.Writer
	pretty bool
}

// New returns a printer writing to out
func New(out io.Writer, pretty bool) *Printer {
	return &Printer{out: out, pretty: pretty}
}

// IsTerminal reports whether stdout supports styled output
func IsTerminal() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) && termenv.ColorProfile() != termenv.Ascii
}

// Catalog prints the available-transitions view for a ticket's current
// remote state.
func (p *Printer) Catalog(catalog transition.Catalog) {
	fmt.Fprintln(p.out, p.style(headingStyle, "Next transitions available:"))
	if len(catalog) == 0 {
		fmt.Fprintln(p.out, "  (none)")
		return
	}
	for _, id := range catalog.IDs() {
		fmt.Fprintf(p.out, "  %s  %s\n", p.style(idStyle, fmt.Sprintf("%4s", id)), catalog[id])
	}
}

// Ticket prints a single ticket line
func (p *Printer) Ticket(t *jira.Ticket) {
	status := t.StatusName()
	if status == "" {
		status = "-"
	}
	fmt.Fprintf(p.out, "%s  %s  %s\n",
		p.style(keyStyle, t.Key),
		p.style(statusStyle, fmt.Sprintf("%-12s", status)),
		t.Summary())
}

// Tickets prints a ticket listing
func (p *Printer) Tickets(tickets []*jira.Ticket) {
	if len(tickets) == 0 {
		fmt.Fprintln(p.out, "No release tickets found.")
		return
	}
	for _, t := range tickets {
		p.Ticket(t)
	}
}

// Successf prints a confirmation line
func (p *Printer) Successf(format string, args ...interface{}) {
	fmt.Fprintln(p.out, p.style(successStyle, fmt.Sprintf(format, args...)))
}

func (p *Printer) style(s interface{ Render(...string) string }, text string) string {
	if !p.pretty {
		return text
	}
	return s.Render(text)
}

// ErrorLine formats a diagnostic line for stderr, styled when stderr is a
// terminal.
func ErrorLine(msg string) string {
	line := "Error: " + msg
	if isatty.IsTerminal(os.Stderr.Fd()) {
		return errorStyle.Render(line)
	}
	return line
}
