package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/modsync/internal/models"
)

var (
	_ list.Item = profileItem{}
	_ list.Item = modItem{}
)

// profileItem wraps [models.Profile] to implement [list.Item].
type profileItem struct {
	profile *models.Profile
}

func (i profileItem) FilterValue() string { return i.profile.Name }
func (i profileItem) Title() string       { return i.profile.Name }
func (i profileItem) Description() string {
	desc := fmt.Sprintf("%d mods", len(i.profile.Mods))
	if i.profile.ServerSyncURL == "" {
		return desc + " • no server"
	}
	if i.profile.LastSyncDate != nil {
		desc = fmt.Sprintf("%s • synced %s", desc, i.profile.LastSyncDate.Local().Format("2006-01-02 15:04"))
	}
	return desc
}

// modItem wraps [models.ModRecord] to implement [list.Item].
type modItem struct {
	mod models.ModRecord
}

func (i modItem) FilterValue() string { return i.mod.Name + " " + i.mod.FileName }
func (i modItem) Title() string {
	if i.mod.Name == "" {
		return i.mod.FileName
	}
	return i.mod.Name
}
func (i modItem) Description() string {
	desc := i.mod.FileName
	if i.mod.Version != "" {
		desc = fmt.Sprintf("%s • v%s", desc, i.mod.Version)
	}
	if !i.mod.IsActive {
		desc += " • inactive"
	}
	return desc
}
