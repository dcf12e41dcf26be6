package cli

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/gzhole/llmsec/internal/logger"
)

// palette styles human-facing output. Colors are dropped automatically when
// the writer is not a terminal.
type palette struct {
	title   lipgloss.Style
	section lipgloss.Style
	subtle  lipgloss.Style
	danger  lipgloss.Style
	warn    lipgloss.Style
	ok      lipgloss.Style
}

func newPalette(w io.Writer) palette {
	r := lipgloss.NewRenderer(w)
	return palette{
		title:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("10")),
		section: r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		subtle:  r.NewStyle().Foreground(lipgloss.Color("241")),
		danger:  r.NewStyle().Foreground(lipgloss.Color("9")),
		warn:    r.NewStyle().Foreground(lipgloss.Color("11")),
		ok:      r.NewStyle().Foreground(lipgloss.Color("10")),
	}
}

func (p palette) status(s logger.Status) lipgloss.Style {
	switch s {
	case logger.StatusBlocked, logger.StatusCancelled:
		return p.danger
	case logger.StatusAskDeferred, logger.StatusApproved:
		return p.warn
	default:
		return p.ok
	}
}
