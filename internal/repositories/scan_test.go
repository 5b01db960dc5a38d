package repositories

import (
	"errors"
	"path/filepath"
	"slices"
	"testing"

	"github.com/desertthunder/modsync/internal/models"
	tu "github.com/desertthunder/modsync/internal/testing"
)

type mockReader struct {
	descriptors map[string]*models.ModDescriptor
}

func (m *mockReader) ReadDescriptor(path string) (*models.ModDescriptor, error) {
	if d, ok := m.descriptors[filepath.Base(path)]; ok {
		return d, nil
	}
	return nil, errors.New("no modDesc.xml")
}

func TestIsModArchive(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"FS22_Tractor.zip", true},
		{"FS22_Tractor.ZIP", true},
		{"map.ms2", true},
		{"notes.txt", false},
		{"FS22_Tractor.zip.part", false},
		{"zip", false},
	}

	for _, tt := range tests {
		if got := IsModArchive(tt.name); got != tt.want {
			t.Errorf("IsModArchive(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestScan(t *testing.T) {
	setup := func(t *testing.T, files ...string) *models.Profile {
		t.Helper()
		dir := t.TempDir()
		for _, f := range files {
			tu.MustWriteFile(t, filepath.Join(dir, f), []byte("PK"))
		}
		return &models.Profile{ID: "p1", Name: "Farm", ModFolderPath: dir}
	}

	t.Run("Adds Untracked Archives", func(t *testing.T) {
		p := setup(t, "B.zip", "A.zip", "readme.txt")
		reader := &mockReader{descriptors: map[string]*models.ModDescriptor{
			"A.zip": {Title: map[string]string{"en": "Big Tractor", "de": "Großer Traktor"}, Version: "1.2.0.0", Author: "Giants"},
		}}

		report, err := Scan(p, reader, false)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if !slices.Equal(report.Added, []string{"A.zip", "B.zip"}) {
			t.Errorf("expected A.zip and B.zip to be added, got %v", report.Added)
		}
		if !report.Changed() {
			t.Error("expected report to show changes")
		}

		a := p.Mods[p.FindMod("A.zip")]
		if a.Name != "Big Tractor" || a.Version != "1.2.0.0" || a.Author != "Giants" {
			t.Errorf("expected descriptor metadata, got %+v", a)
		}
		if !a.IsActive || a.IsFromServer {
			t.Errorf("expected local active record, got %+v", a)
		}
		if a.FileSize != "2 B" {
			t.Errorf("expected size from stat, got %q", a.FileSize)
		}

		b := p.Mods[p.FindMod("B.zip")]
		if b.Name != "B" || b.Descriptor != nil {
			t.Errorf("expected fallback name from file, got %+v", b)
		}
	})

	t.Run("Fills Missing Descriptors", func(t *testing.T) {
		p := setup(t, "A.zip")
		p.Mods = []models.ModRecord{{Name: "Server Name", FileName: "A.zip", Version: "1.0"}}
		reader := &mockReader{descriptors: map[string]*models.ModDescriptor{"A.zip": {Version: "9.9"}}}

		report, err := Scan(p, reader, false)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !slices.Equal(report.Updated, []string{"A.zip"}) {
			t.Errorf("expected A.zip to be updated, got %v", report.Updated)
		}
		if p.Mods[0].Descriptor == nil || p.Mods[0].Version != "1.0" {
			t.Errorf("expected descriptor without overwriting tracked version, got %+v", p.Mods[0])
		}
	})

	t.Run("Keeps Vanished Without Prune", func(t *testing.T) {
		p := setup(t)
		p.Mods = []models.ModRecord{{FileName: "Gone.zip"}}

		report, _ := Scan(p, nil, false)
		if len(p.Mods) != 1 || report.Changed() {
			t.Errorf("expected profile to be unchanged, got %+v", report)
		}
	})

	t.Run("Prunes Vanished", func(t *testing.T) {
		p := setup(t, "Kept.zip")
		p.Mods = []models.ModRecord{{FileName: "Gone.zip"}, {FileName: "Kept.zip"}}

		report, err := Scan(p, nil, true)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !slices.Equal(report.Removed, []string{"Gone.zip"}) {
			t.Errorf("expected Gone.zip to be removed, got %v", report.Removed)
		}
		if len(p.Mods) != 1 || p.Mods[0].FileName != "Kept.zip" {
			t.Errorf("unexpected mods after prune: %+v", p.Mods)
		}
	})

	t.Run("Missing Folder", func(t *testing.T) {
		p := &models.Profile{ModFolderPath: filepath.Join(t.TempDir(), "none"), Mods: []models.ModRecord{{FileName: "A.zip"}}}

		report, err := Scan(p, nil, true)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(report.Removed) != 1 || len(p.Mods) != 0 {
			t.Errorf("expected all records to be pruned, got %+v", p.Mods)
		}
	})
}
