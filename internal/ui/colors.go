package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/modsync/internal/models"
)

const (
	colorAccent  = "#7D56F4"
	colorDone    = "#04B575"
	colorFailed  = "#E5484D"
	colorStopped = "#FFA500"
	colorMuted   = "#626262"
)

var styles = newTheme()

// theme colors the screens by the state of a synchronization run.
type theme struct {
	title  lipgloss.Style
	notice lipgloss.Style
	muted  lipgloss.Style
	help   lipgloss.Style
	status map[models.SyncStatus]lipgloss.Style
}

func newTheme() theme {
	working := fg(colorAccent)
	return theme{
		title:  fg(colorAccent).Bold(true).MarginBottom(1),
		notice: fg(colorStopped),
		muted:  fg(colorMuted),
		help:   fg(colorMuted).Italic(true),
		status: map[models.SyncStatus]lipgloss.Style{
			models.StatusFetching:    working,
			models.StatusVerifying:   working,
			models.StatusDownloading: working,
			models.StatusExtracting:  working,
			models.StatusSaving:      working,
			models.StatusCompleted:   fg(colorDone).Bold(true),
			models.StatusCancelled:   fg(colorStopped).Bold(true),
			models.StatusError:       fg(colorFailed).Bold(true),
		},
	}
}

// forStatus returns the style of s, or plain text for an unknown status.
func (t theme) forStatus(s models.SyncStatus) lipgloss.Style {
	if style, ok := t.status[s]; ok {
		return style
	}
	return lipgloss.NewStyle()
}

func fg(color string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}
