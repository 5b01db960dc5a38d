package repositories

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/modsync/internal/models"
	"github.com/desertthunder/modsync/internal/shared"
)

const profileFile = "profile.json"

// ProfileStore keeps each profile in <dir>/<id>/profile.json.
//
// Writes go to a temp file in the same directory and are renamed into place, so a crash never leaves a
// truncated profile behind.
type ProfileStore struct {
	dir    string
	logger *log.Logger
	mu     sync.Mutex
}

// NewProfileStore creates a store rooted at dir (usually [shared.Config.ProfilesDir]).
func NewProfileStore(dir string, logger *log.Logger) *ProfileStore {
	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}
	return &ProfileStore{dir: dir, logger: logger}
}

// Dir returns the root directory of the store.
func (s *ProfileStore) Dir() string {
	return s.dir
}

func (s *ProfileStore) profileDir(id string) string {
	return filepath.Join(s.dir, id)
}

func (s *ProfileStore) profilePath(id string) string {
	return filepath.Join(s.profileDir(id), profileFile)
}

// LoadProfile reads a profile by ID. Fails with [shared.ErrProfileNotFound] when it does not exist.
func (s *ProfileStore) LoadProfile(id string) (*models.Profile, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.profilePath(id))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", shared.ErrProfileNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read profile %s: %w", id, err)
	}

	var p models.Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse profile %s: %w", id, err)
	}
	if p.ID == "" {
		p.ID = id
	}
	if p.Mods == nil {
		p.Mods = []models.ModRecord{}
	}

	return &p, nil
}

// SaveProfile writes the whole profile atomically.
func (s *ProfileStore) SaveProfile(p *models.Profile) error {
	if p == nil {
		return fmt.Errorf("%w: profile is nil", shared.ErrInvalidInput)
	}
	if err := validateID(p.ID); err != nil {
		return err
	}

	data, err := shared.MarshalJSON(p, true)
	if err != nil {
		return fmt.Errorf("failed to encode profile %s: %w", p.ID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := s.profileDir(p.ID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create profile directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, profileFile+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write profile %s: %w", p.ID, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write profile %s: %w", p.ID, err)
	}
	if err := os.Rename(tmpName, s.profilePath(p.ID)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace profile %s: %w", p.ID, err)
	}

	s.logger.Debug("saved profile", "id", p.ID, "mods", len(p.Mods))
	return nil
}

// ListProfiles returns every readable profile sorted by name. Unreadable entries are logged and skipped.
func (s *ProfileStore) ListProfiles() ([]*models.Profile, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []*models.Profile{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read profiles directory: %w", err)
	}

	profiles := []*models.Profile{}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		p, err := s.LoadProfile(entry.Name())
		if errors.Is(err, shared.ErrProfileNotFound) {
			continue
		}
		if err != nil {
			s.logger.Warn("skipping unreadable profile", "dir", entry.Name(), "error", err)
			continue
		}
		profiles = append(profiles, p)
	}

	sort.Slice(profiles, func(i, j int) bool {
		return strings.ToLower(profiles[i].Name) < strings.ToLower(profiles[j].Name)
	})
	return profiles, nil
}

// CreateProfileParams holds the user-supplied fields of a new profile.
type CreateProfileParams struct {
	Name          string
	Description   string
	ModFolderPath string // Default: <dir>/<id>/mods
	ServerSyncURL string
}

// CreateProfile assigns an ID, creates the mod folder and saves the profile.
func (s *ProfileStore) CreateProfile(params CreateProfileParams) (*models.Profile, error) {
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: profile name is required", shared.ErrMissingArgument)
	}

	id := shared.GenerateID()
	folder := strings.TrimSpace(params.ModFolderPath)
	if folder == "" {
		folder = filepath.Join(s.profileDir(id), "mods")
	}

	if err := os.MkdirAll(folder, 0755); err != nil {
		return nil, fmt.Errorf("failed to create mod folder: %w", err)
	}

	p := &models.Profile{
		ID:            id,
		Name:          name,
		Description:   strings.TrimSpace(params.Description),
		ModFolderPath: folder,
		ServerSyncURL: strings.TrimSpace(params.ServerSyncURL),
		Mods:          []models.ModRecord{},
	}
	if err := s.SaveProfile(p); err != nil {
		return nil, err
	}

	s.logger.Info("created profile", "id", id, "name", name)
	return p, nil
}

// DeleteProfile removes the profile directory, including a mod folder stored inside it.
func (s *ProfileStore) DeleteProfile(id string) error {
	if err := validateID(id); err != nil {
		return err
	}

	dir := s.profileDir(id)
	if _, err := os.Stat(s.profilePath(id)); errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", shared.ErrProfileNotFound, id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to delete profile %s: %w", id, err)
	}

	s.logger.Info("deleted profile", "id", id)
	return nil
}

// FindProfile resolves a profile by exact ID, then by case-insensitive name.
func (s *ProfileStore) FindProfile(ref string) (*models.Profile, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("%w: profile ID or name", shared.ErrMissingArgument)
	}

	if validateID(ref) == nil {
		if p, err := s.LoadProfile(ref); err == nil {
			return p, nil
		} else if !errors.Is(err, shared.ErrProfileNotFound) {
			return nil, err
		}
	}

	profiles, err := s.ListProfiles()
	if err != nil {
		return nil, err
	}
	for _, p := range profiles {
		if strings.EqualFold(p.Name, ref) {
			return p, nil
		}
	}

	return nil, fmt.Errorf("%w: %s", shared.ErrProfileNotFound, ref)
}

func validateID(id string) error {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return fmt.Errorf("%w: profile ID %q", shared.ErrInvalidInput, id)
	}
	return nil
}
