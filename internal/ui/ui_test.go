package ui

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/libmirror/internal/formatter"
	"github.com/desertthunder/libmirror/internal/library"
	"github.com/desertthunder/libmirror/internal/models"
	"github.com/desertthunder/libmirror/internal/tasks"
	tu "github.com/desertthunder/libmirror/internal/testing"
)

func newTestModel(t *testing.T) (*Model, *tu.StubSource) {
	t.Helper()

	src := tu.NewStubSource()
	src.Tracks.SetPages([]models.Track{
		{ID: "lib-a", Title: "Alpha", Artist: "A", DurationMillis: "61000"},
		{ID: "lib-b", Title: "Beta", Artist: "B"},
	})
	src.Playlists.SetPages([]models.Playlist{
		{ID: "p1", Name: "Mix", ShareState: models.SharePrivate},
	})
	src.Entries.SetPages([]models.PlaylistEntry{
		{ID: "e2", PlaylistID: "p1", TrackID: "lib-b", PrecedingID: "e1"},
		{ID: "e1", PlaylistID: "p1", TrackID: "lib-a", FollowingID: "e2"},
	})

	lib := library.NewLibrary(src, nil)
	playlists := library.NewPlaylists(src, nil, nil, nil)
	engine := tasks.NewEngine(lib, playlists, nil, nil)
	opts := tasks.BulkExportOpts{Format: formatter.FormatText, OutputDir: t.TempDir(), RateLimit: 1000}

	return NewModel(context.Background(), playlists, engine, opts), src
}

// run executes cmd and feeds its message back into the model.
func run(t *testing.T, m *Model, cmd tea.Cmd) tea.Cmd {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	_, next := m.Update(cmd())
	return next
}

func TestModel_BrowseAndExport(t *testing.T) {
	m, _ := newTestModel(t)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	run(t, m, m.Init())
	if items := m.playlistList.Items(); len(items) != 1 {
		t.Fatalf("expected 1 playlist, got %d", len(items))
	}
	if !strings.Contains(m.View(), "Mix") {
		t.Errorf("expected playlist name in view")
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	run(t, m, cmd)
	if m.view != TrackListView {
		t.Fatalf("expected track list view, got %d", m.view)
	}
	if m.selected == nil || len(m.selected.Tracks) != 2 || m.selected.Tracks[0].Title != "Alpha" {
		t.Fatalf("unexpected selection: %+v", m.selected)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.view != ConfirmView {
		t.Fatalf("expected confirm view, got %d", m.view)
	}
	if !strings.Contains(m.View(), "Export 'Mix' as txt?") {
		t.Errorf("unexpected confirm view: %s", m.View())
	}
	if !strings.Contains(m.View(), "Mix [private]") {
		t.Errorf("expected share badge in confirm view: %s", m.View())
	}

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")})
	if m.view != ExportView {
		t.Fatalf("expected export view, got %d", m.view)
	}
	for i := 0; cmd != nil && m.view == ExportView; i++ {
		if i > 20 {
			t.Fatal("export did not finish")
		}
		cmd = run(t, m, cmd)
	}

	if m.view != ResultView {
		t.Fatalf("expected result view, got %d", m.view)
	}
	if m.err != nil {
		t.Fatalf("unexpected export error: %v", m.err)
	}
	if m.result.SuccessfulExports != 1 {
		t.Errorf("expected 1 successful export, got %d", m.result.SuccessfulExports)
	}
	tu.AssertFileExists(t, filepath.Join(m.result.OutputDirectory, "p1.txt"))
	if !strings.Contains(m.View(), "Export Complete") {
		t.Errorf("expected completion view, got: %s", m.View())
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	if m.view != PlaylistListView || m.selected != nil {
		t.Error("expected restart to return to the playlist list")
	}
}

func TestModel_ConfirmDecline(t *testing.T) {
	m, _ := newTestModel(t)
	m.view = ConfirmView
	m.selected = &models.PlaylistExport{Playlist: models.Playlist{ID: "p1", Name: "Mix"}}

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})
	if m.view != TrackListView {
		t.Errorf("expected track list view after declining, got %d", m.view)
	}
}

func TestModel_Errors(t *testing.T) {
	t.Run("playlist fetch failure", func(t *testing.T) {
		m, src := newTestModel(t)
		src.Playlists.FailOnce("", errors.New("boom"))

		run(t, m, m.Init())
		if m.err == nil {
			t.Fatal("expected error")
		}
		if !strings.Contains(m.View(), "Error: ") {
			t.Errorf("expected error view, got: %s", m.View())
		}
	})

	t.Run("unknown playlist returns to list", func(t *testing.T) {
		m, _ := newTestModel(t)
		m.view = TrackListView

		run(t, m, m.fetchTracks("missing"))
		if m.view != PlaylistListView || m.err == nil {
			t.Errorf("expected list view with error, got view %d err %v", m.view, m.err)
		}
	})
}

func TestModel_RefreshInvalidatesEntries(t *testing.T) {
	m, src := newTestModel(t)
	run(t, m, m.Init())

	if _, err := m.playlists.Contents(context.Background(), "p1", 0); err != nil {
		t.Fatalf("Contents failed: %v", err)
	}
	before := src.Entries.Calls()

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	run(t, m, cmd)

	if _, err := m.playlists.Contents(context.Background(), "p1", 0); err != nil {
		t.Fatalf("Contents failed: %v", err)
	}
	if src.Entries.Calls() != before+1 {
		t.Errorf("expected entries to be refetched after refresh, got %d calls", src.Entries.Calls())
	}
}

func TestItems(t *testing.T) {
	pl := playlistItem{playlist: models.Playlist{
		Name:        "Shared",
		Type:        models.PlaylistShared,
		ShareState:  models.SharePublic,
		OwnerName:   "someone",
		Description: "desc",
	}}
	if got := pl.Description(); got != "public • by someone • desc" {
		t.Errorf("unexpected playlist description %q", got)
	}

	tr := trackItem{track: models.Track{Title: "T", Artist: "A", Album: "B", DurationMillis: "61000"}}
	if got := tr.Description(); got != "A • B • 1:01" {
		t.Errorf("unexpected track description %q", got)
	}
	if tr.FilterValue() != "T" {
		t.Errorf("unexpected filter value %q", tr.FilterValue())
	}
}

func TestShareBadge(t *testing.T) {
	tests := []struct {
		name     string
		playlist models.Playlist
		want     string
	}{
		{"public", models.Playlist{ShareState: models.SharePublic}, "[public]"},
		{"private", models.Playlist{ShareState: models.SharePrivate}, "[private]"},
		{"unset defaults to private", models.Playlist{}, "[private]"},
		{"shared", models.Playlist{Type: models.PlaylistShared, ShareState: models.SharePublic}, "[shared]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := styles.shareBadge(tt.playlist); !strings.Contains(got, tt.want) {
				t.Errorf("expected %q in badge, got %q", tt.want, got)
			}
		})
	}
}
