package report

import (
	"fmt"
	"io"

	"wa-bulk-sender/pkg/models"

	"github.com/charmbracelet/lipgloss"
)

var (
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	startStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("201"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	successStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	partialStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
)

// Console prints the human-facing status lines. Diagnostics go to the
// logger, not here.
type Console struct {
	out io.Writer
}

func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

func (c *Console) BatchStarted(s models.BatchSummary) {
	if s.Total == 0 {
		c.println(warnStyle.Render("No valid contacts to send."))
		return
	}
	c.println(startStyle.Render(fmt.Sprintf("Starting bulk send for %d contacts...", s.Total)))
}

func (c *Console) ContactDone(_ models.BatchSummary, p models.ContactProgress) {
	counter := dimStyle.Render(fmt.Sprintf("[%d/%d]", p.Index, p.Total))
	if p.Sent {
		c.println(counter + " " + okStyle.Render(fmt.Sprintf("Sent to %s (%s)", p.Name, p.Phone)))
		return
	}
	c.println(counter + " " + failStyle.Render(fmt.Sprintf("Failed for %s (%s) after %d attempts: %s", p.Name, p.Phone, p.Attempts, p.Error)))
}

func (c *Console) BatchFinished(s models.BatchSummary) {
	if s.Interrupted {
		c.println(warnStyle.Render("Bulk send interrupted by user."))
	}
	if s.Total == 0 {
		return
	}
	line := fmt.Sprintf("Sent %d/%d messages.", s.Succeeded, s.Total)
	if s.Succeeded == s.Total {
		c.println(successStyle.Render(line))
		return
	}
	c.println(partialStyle.Render(line))
}

// Info prints a neutral status line.
func (c *Console) Info(msg string) { c.println(infoStyle.Render(msg)) }

// Fatal prints the one-line reason the run is aborting.
func (c *Console) Fatal(msg string) { c.println(failStyle.Render(msg)) }

// Preview prints the rendered message for one contact in dry-run mode.
func (c *Console) Preview(index, total int, name, phone, text string) {
	counter := dimStyle.Render(fmt.Sprintf("[%d/%d]", index, total))
	c.println(fmt.Sprintf("%s %s (%s)\n%s", counter, name, phone, text))
}

func (c *Console) println(s string) {
	fmt.Fprintln(c.out, s)
}
