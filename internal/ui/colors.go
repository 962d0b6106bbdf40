package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/libmirror/internal/models"
)

var styles = newPalette(theme{
	accent: "#7D56F4",
	ok:     "#04B575",
	bad:    "#FF0000",
	warn:   "#FFA500",
	muted:  "#626262",
})

// theme names the colors every view draws from.
type theme struct {
	accent, ok, bad, warn, muted lipgloss.Color
}

// Palette holds the rendered styles of the views, including one badge per playlist share state.
type Palette struct {
	title  lipgloss.Style
	ok     lipgloss.Style
	err    lipgloss.Style
	warn   lipgloss.Style
	help   lipgloss.Style
	badges map[models.ShareState]lipgloss.Style
}

func newPalette(t theme) Palette {
	fg := func(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }

	return Palette{
		title: fg(t.accent).Bold(true).MarginBottom(1),
		ok:    fg(t.ok).Bold(true),
		err:   fg(t.bad).Bold(true),
		warn:  fg(t.warn),
		help:  fg(t.muted).Italic(true),
		badges: map[models.ShareState]lipgloss.Style{
			models.SharePublic:  fg(t.ok),
			models.SharePrivate: fg(t.muted),
		},
	}
}

// shareBadge renders a playlist's visibility, e.g. "[public]". Shared playlists
// owned by someone else get the warning color.
func (p Palette) shareBadge(pl models.Playlist) string {
	label := "[" + strings.ToLower(shareLabel(pl)) + "]"
	if pl.Type == models.PlaylistShared {
		return p.warn.Render(label)
	}
	style, ok := p.badges[pl.ShareState]
	if !ok {
		style = p.badges[models.SharePrivate]
	}
	return style.Render(label)
}

func shareLabel(pl models.Playlist) string {
	if pl.Type == models.PlaylistShared {
		return "shared"
	}
	if pl.ShareState == "" {
		return string(models.SharePrivate)
	}
	return string(pl.ShareState)
}
