package cmd

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

const rule = "--------------------------------------------------"

type styles struct {
	heading lipgloss.Style
	muted   lipgloss.Style
}

// newStyles detects the color profile of w, so piped output stays plain.
func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		heading: r.NewStyle().Bold(true),
		muted:   r.NewStyle().Foreground(lipgloss.Color("240")),
	}
}
