package main

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

type styles struct {
	title lipgloss.Style
	label lipgloss.Style
	err   lipgloss.Style
	help  lipgloss.Style
	hex   lipgloss.Style
}

// newStyles returns colored styles when w is a terminal and plain ones
// otherwise, so piped output stays free of escape sequences.
func newStyles(w io.Writer) styles {
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return styles{
			title: lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#FAFAFA")).
				Background(lipgloss.Color("#7D56F4")).
				Padding(0, 1),
			label: lipgloss.NewStyle().Foreground(lipgloss.Color("#87CEEB")),
			err:   lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")),
			help:  lipgloss.NewStyle().Foreground(lipgloss.Color("#666666")),
			hex:   lipgloss.NewStyle().Foreground(lipgloss.Color("#98FB98")),
		}
	}
	return plainStyles()
}

func plainStyles() styles {
	s := lipgloss.NewStyle()
	return styles{title: s, label: s, err: s, help: s, hex: s}
}
