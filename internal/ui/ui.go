package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/modsync/internal/models"
	"github.com/desertthunder/modsync/internal/shared"
	"github.com/desertthunder/modsync/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	ProfileListView ViewState = iota
	ModListView
	ConfirmView
	SyncView
	ResultView
)

// ProfileLister loads the profiles shown in the picker.
type ProfileLister interface {
	ListProfiles() ([]*models.Profile, error)
}

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	profiles     ProfileLister
	engine       tasks.SyncEngine
	open         func(string) error
	width        int
	height       int
	profileList  list.Model
	modList      list.Model
	selected     *models.Profile
	progressChan chan models.SyncProgress
	doneChan     chan syncComplete
	progress     models.SyncProgress
	overall      progress.Model
	file         progress.Model
	cancelling   bool
	result       *tasks.SyncResult
	notice       string
	err          error
	help         help.Model
	keys         keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, profiles ProfileLister, engine tasks.SyncEngine) *Model {
	return &Model{
		ctx:         ctx,
		view:        ProfileListView,
		profiles:    profiles,
		engine:      engine,
		open:        shared.OpenPath,
		profileList: list.New(nil, list.NewDefaultDelegate(), 0, 0),
		modList:     list.New(nil, list.NewDefaultDelegate(), 0, 0),
		overall:     progress.New(progress.WithGradient(colorAccent, colorDone)),
		file:        progress.New(progress.WithSolidFill(colorAccent)),
		help:        newHelp(),
		keys:        newKeyMap(),
	}
}

func newHelp() help.Model {
	h := help.New()
	h.Styles.ShortDesc = styles.help
	h.Styles.ShortSeparator = styles.muted
	return h
}

// Init loads the profile list.
func (m *Model) Init() tea.Cmd {
	return m.loadProfiles()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.profileList.SetSize(msg.Width-4, msg.Height-8)
		m.modList.SetSize(msg.Width-4, msg.Height-8)
		m.overall.Width = min(msg.Width-4, 80)
		m.file.Width = min(msg.Width-4, 80)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case ProfileListView:
			return m.handleProfileListKeys(msg)
		case ModListView:
			return m.handleModListKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case SyncView:
			return m.handleSyncKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateLists(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgProfilesLoaded:
		data := msg.data.(profilesLoaded)
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		m.err = nil
		items := make([]list.Item, len(data.profiles))
		for i, p := range data.profiles {
			items[i] = profileItem{profile: p}
		}
		m.profileList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.profileList.Title = "Profiles"
		m.profileList.SetSize(m.width-4, m.height-8)
		return m, nil

	case MsgProgressUpdate:
		m.progress = msg.data.(models.SyncProgress)
		return m, m.waitForProgress()

	case MsgSyncComplete:
		data := msg.data.(syncComplete)
		if data.profile != nil {
			m.adoptProfile(data.profile)
		}
		m.result = data.result
		m.err = data.err
		m.view = ResultView
		m.progressChan = nil
		m.doneChan = nil
		m.cancelling = false
		return m, nil

	case MsgFolderOpened:
		if err, _ := msg.data.(error); err != nil {
			m.notice = fmt.Sprintf("Could not open folder: %v", err)
		} else {
			m.notice = ""
		}
		return m, nil
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view == ProfileListView {
		return styles.forStatus(models.StatusError).Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case ProfileListView:
		return m.renderProfileList()
	case ModListView:
		return m.renderModList()
	case ConfirmView:
		return m.renderConfirm()
	case SyncView:
		return m.renderSync()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleProfileListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.profileList.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.profileList, cmd = m.profileList.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.profileList.SelectedItem().(profileItem); ok {
			m.selectProfile(item.profile)
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.profileList, cmd = m.profileList.Update(msg)
	return m, cmd
}

func (m *Model) selectProfile(p *models.Profile) {
	m.selected = p
	m.notice = ""
	m.setModList(p)
	m.view = ModListView
}

// adoptProfile replaces the selected profile with the copy the engine updated.
func (m *Model) adoptProfile(p *models.Profile) {
	m.selected = p
	m.setModList(p)
	for i, item := range m.profileList.Items() {
		if pi, ok := item.(profileItem); ok && pi.profile.ID == p.ID {
			m.profileList.SetItem(i, profileItem{profile: p})
			break
		}
	}
}

func (m *Model) setModList(p *models.Profile) {
	items := make([]list.Item, len(p.Mods))
	for i, mod := range p.Mods {
		items[i] = modItem{mod: mod}
	}
	m.modList = list.New(items, list.NewDefaultDelegate(), 0, 0)
	m.modList.Title = fmt.Sprintf("Mods in '%s'", p.Name)
	m.modList.SetSize(m.width-4, m.height-8)
}

func (m *Model) handleModListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = ProfileListView
		return m, nil
	case key.Matches(msg, m.keys.open):
		return m, m.openFolder()
	case key.Matches(msg, m.keys.sync):
		if m.selected.ServerSyncURL == "" {
			m.notice = "This profile has no server URL. Set one with `modsync profile set-url`."
			return m, nil
		}
		m.view = ConfirmView
		return m, nil
	}

	var cmd tea.Cmd
	m.modList, cmd = m.modList.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.back), key.Matches(msg, m.keys.quit):
		m.view = ModListView
		return m, nil
	case key.Matches(msg, m.keys.yes):
		m.view = SyncView
		return m, m.startSync()
	}
	return m, nil
}

func (m *Model) handleSyncKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.cancel):
		if m.engine.Cancel(m.selected.ID) {
			m.cancelling = true
			m.keys.cancel.SetEnabled(false)
		}
	case msg.String() == "ctrl+c":
		m.engine.Cancel(m.selected.ID)
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.open):
		return m, m.openFolder()
	case key.Matches(msg, m.keys.restart):
		m.view = ProfileListView
		m.selected = nil
		m.result = nil
		m.err = nil
		m.notice = ""
		m.progress = models.SyncProgress{}
		return m, m.loadProfiles()
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case ProfileListView:
		m.profileList, cmd = m.profileList.Update(msg)
	case ModListView:
		m.modList, cmd = m.modList.Update(msg)
	}
	return m, cmd
}

func (m *Model) loadProfiles() tea.Cmd {
	return func() tea.Msg {
		profiles, err := m.profiles.ListProfiles()
		return profilesLoadedMsg(profiles, err)
	}
}

func (m *Model) openFolder() tea.Cmd {
	folder := m.selected.ModFolderPath
	return func() tea.Msg {
		return folderOpenedMsg(m.open(folder))
	}
}

// startSync runs the engine in the background. The progress channel is closed once Run returns
// and the result is waiting on the done channel.
func (m *Model) startSync() tea.Cmd {
	progressChan := make(chan models.SyncProgress, 64)
	doneChan := make(chan syncComplete, 1)
	m.progressChan = progressChan
	m.doneChan = doneChan
	m.progress = models.SyncProgress{Status: models.StatusFetching}
	m.cancelling = false
	m.keys.cancel.SetEnabled(true)

	profile := m.selected.Clone()
	go func() {
		result, err := m.engine.Run(m.ctx, profile, tasks.ChannelProgress(progressChan))
		doneChan <- syncComplete{result: result, profile: profile, err: err}
		close(progressChan)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	progressChan, doneChan := m.progressChan, m.doneChan
	return func() tea.Msg {
		if progressChan == nil {
			return syncCompleteMsg(m.result, nil, m.err)
		}

		update, ok := <-progressChan
		if !ok {
			done := <-doneChan
			return syncCompleteMsg(done.result, done.profile, done.err)
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderProfileList() string {
	helpView := m.help.ShortHelpView(m.keys.profileHelp())
	return fmt.Sprintf("%s\n\n%s", m.profileList.View(), helpView)
}

func (m *Model) renderModList() string {
	helpView := m.help.ShortHelpView(m.keys.modHelp())

	out := m.modList.View()
	if m.notice != "" {
		out += "\n" + styles.notice.Render(m.notice)
	}
	return fmt.Sprintf("%s\n\n%s", out, helpView)
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render(fmt.Sprintf("Synchronize '%s'?", m.selected.Name))
	info := fmt.Sprintf("\nServer: %s\nMod folder: %s\nTracked mods: %d\n",
		m.selected.ServerSyncURL, m.selected.ModFolderPath, len(m.selected.Mods))

	helpView := m.help.ShortHelpView(m.keys.confirmHelp())

	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}

func (m *Model) renderSync() string {
	title := styles.title.Render(fmt.Sprintf("Synchronizing '%s'", m.selected.Name))

	var b strings.Builder
	b.WriteString(styles.forStatus(m.progress.Status).Render(tasks.Message(m.progress)))
	b.WriteString("\n\n")

	overall := 0.0
	if m.progress.TotalMods > 0 {
		overall = float64(m.progress.CompletedMods) / float64(m.progress.TotalMods)
	}
	fmt.Fprintf(&b, "Mods  %s  %d/%d\n", m.overall.ViewAs(overall), m.progress.CompletedMods, m.progress.TotalMods)
	if m.progress.CurrentMod != "" {
		fmt.Fprintf(&b, "File  %s\n", m.file.ViewAs(m.progress.CurrentFileProgress/100))
	}

	if m.cancelling {
		b.WriteString("\n" + styles.forStatus(models.StatusCancelled).Render("Cancelling after the current chunk..."))
	}

	helpView := m.help.ShortHelpView(m.keys.syncHelp())
	return fmt.Sprintf("%s\n%s\n\n%s", title, b.String(), helpView)
}

func (m *Model) renderResult() string {
	helpView := m.help.ShortHelpView(m.keys.resultHelp())

	if m.result == nil {
		msg := "No result available"
		if m.err != nil {
			msg = fmt.Sprintf("Sync could not start: %v", m.err)
		}
		return fmt.Sprintf("%s\n\n%s", styles.forStatus(models.StatusError).Render(msg), helpView)
	}

	var title string
	switch {
	case errors.Is(m.err, shared.ErrCancelled) || m.result.Status == models.StatusCancelled:
		title = styles.forStatus(models.StatusCancelled).Render(fmt.Sprintf("Sync cancelled after %d/%d mods", m.result.Completed, m.result.Total))
	case m.err != nil:
		title = styles.forStatus(models.StatusError).Render(fmt.Sprintf("✗ Sync failed: %v", m.err))
	default:
		title = styles.forStatus(models.StatusCompleted).Render("✓ Sync complete!")
	}

	info := fmt.Sprintf(
		"\nServer mods: %d\nUp to date: %d\nDownloaded: %d\nFailed: %d\nDuration: %s",
		m.result.Total,
		m.result.Skipped,
		m.result.Downloaded,
		len(m.result.FailedMods),
		m.result.FinishedAt.Sub(m.result.StartedAt).Round(time.Millisecond),
	)

	var failed string
	if len(m.result.FailedMods) > 0 {
		failed = fmt.Sprintf("\n\n%s", styles.notice.Render(fmt.Sprintf("Failed to download %d mods:", len(m.result.FailedMods))))
		for _, name := range m.result.FailedMods {
			failed += fmt.Sprintf("\n  • %s", name)
		}
	}

	notice := ""
	if m.notice != "" {
		notice = "\n" + styles.muted.Render(m.notice)
	}

	return fmt.Sprintf("%s\n%s%s%s\n\n%s", title, info, failed, notice, helpView)
}
