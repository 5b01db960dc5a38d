package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/modsync/internal/models"
	"github.com/desertthunder/modsync/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgProfilesLoaded MsgKind = iota
	MsgProgressUpdate
	MsgSyncComplete
	MsgFolderOpened
)

type profilesLoaded struct {
	profiles []*models.Profile
	err      error
}

type syncComplete struct {
	result  *tasks.SyncResult
	profile *models.Profile
	err     error
}

// profilesLoadedMsg is the constructor for [MsgProfilesLoaded]
func profilesLoadedMsg(profiles []*models.Profile, err error) Msg {
	return Msg{kind: MsgProfilesLoaded, data: profilesLoaded{profiles, err}}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update models.SyncProgress) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// syncCompleteMsg is the constructor for [MsgSyncComplete]
func syncCompleteMsg(result *tasks.SyncResult, profile *models.Profile, err error) Msg {
	return Msg{kind: MsgSyncComplete, data: syncComplete{result, profile, err}}
}

// folderOpenedMsg is the constructor for [MsgFolderOpened]
func folderOpenedMsg(err error) Msg {
	return Msg{kind: MsgFolderOpened, data: err}
}
