// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for profile synchronization:
//  1. [ProfileListView] : Browse and select profiles
//  2. [ModListView] : Preview the profile's tracked mods
//  3. [ConfirmView] : Confirm the sync against the profile's server
//  4. [SyncView] : Monitor live progress, press c to cancel
//  5. [ResultView] : Display counts and the mods that failed
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Progress events flow through a buffered channel from the sync engine, so a slow render never blocks a download.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, c, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
