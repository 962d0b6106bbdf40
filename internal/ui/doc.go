// Package ui implements an interactive terminal browser using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow over the mirrored library:
//  1. [PlaylistListView] : Browse playlists
//  2. [TrackListView] : Read a playlist's reconstructed contents
//  3. [ConfirmView] : Confirm exporting the playlist
//  4. [ExportView] : Monitor real-time progress updates
//  5. [ResultView] : Display the written files
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the [Msg] union type.
// Progress updates flow through a channel from the [tasks.Engine], providing non-blocking status reporting during exports.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
