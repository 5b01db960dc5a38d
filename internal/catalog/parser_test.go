package catalog

import (
	"strings"
	"testing"

	tu "github.com/desertthunder/modsync/internal/testing"
)

const base = "http://193.111.249.39:8080/"

func TestParser(t *testing.T) {
	t.Run("Parse", func(t *testing.T) {
		t.Run("Well Formed Entry", func(t *testing.T) {
			doc := tu.CatalogPage(tu.CatalogEntry{
				Name:        "Big Tractor",
				DetailHref:  "mods/details/42",
				Version:     "1.2.0.0",
				Author:      "Giants",
				Filename:    "FS22_BigTrac...",
				Size:        "40.37 MB",
				ModHub:      "yes",
				Active:      "Yes",
				DownloadRef: "mods/FS22_BigTractor.zip",
			})

			mods, err := NewParser(base).Parse(doc)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(mods) != 1 {
				t.Fatalf("expected 1 mod, got %d", len(mods))
			}

			m := mods[0]
			if m.Name != "Big Tractor" {
				t.Errorf("expected name 'Big Tractor', got %q", m.Name)
			}
			if m.Version != "1.2.0.0" {
				t.Errorf("expected version 1.2.0.0, got %q", m.Version)
			}
			if m.Author != "Giants" {
				t.Errorf("expected author Giants, got %q", m.Author)
			}
			if m.FileSize != "40.37 MB" {
				t.Errorf("expected size '40.37 MB', got %q", m.FileSize)
			}
			if m.ModHub != "yes" {
				t.Errorf("expected modhub yes, got %q", m.ModHub)
			}
			if !m.IsActive {
				t.Error("expected active flag from case-insensitive 'Yes'")
			}
			if m.DownloadURL != base+"mods/FS22_BigTractor.zip" {
				t.Errorf("unexpected download URL %q", m.DownloadURL)
			}
			if m.DetailURL != base+"mods/details/42" {
				t.Errorf("unexpected detail URL %q", m.DetailURL)
			}
			if m.FileName != "FS22_BigTractor.zip" {
				t.Errorf("file name should come from the download URL, got %q", m.FileName)
			}
			if !strings.Contains(m.RawHTML, "container-row") {
				t.Error("expected raw markup to be kept for diagnostics")
			}
		})

		t.Run("Entry Without Download Link Is Dropped", func(t *testing.T) {
			doc := tu.CatalogPage(
				tu.CatalogEntry{Name: "A", Filename: "A.zip", DownloadRef: "mods/A.zip"},
				tu.CatalogEntry{Name: "B", Filename: "B.zip"},
			)

			mods, err := NewParser(base).Parse(doc)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(mods) != 1 {
				t.Fatalf("expected exactly 1 mod, got %d", len(mods))
			}
			if mods[0].FileName != "A.zip" {
				t.Errorf("expected A.zip, got %s", mods[0].FileName)
			}
		})

		t.Run("Inactive And Absolute Links", func(t *testing.T) {
			doc := tu.CatalogPage(tu.CatalogEntry{
				Name:        "C",
				Active:      "no",
				DownloadRef: "https://cdn.example.com/files/My%20Mod.zip",
			})

			mods, _ := NewParser(base).Parse(doc)
			if len(mods) != 1 {
				t.Fatalf("expected 1 mod, got %d", len(mods))
			}
			if mods[0].IsActive {
				t.Error("expected inactive mod")
			}
			if mods[0].DownloadURL != "https://cdn.example.com/files/My%20Mod.zip" {
				t.Errorf("absolute links should be kept, got %s", mods[0].DownloadURL)
			}
			if mods[0].FileName != "My Mod.zip" {
				t.Errorf("expected unescaped file name, got %q", mods[0].FileName)
			}
		})

		t.Run("Relative Links Without Base Are Dropped", func(t *testing.T) {
			doc := tu.CatalogPage(tu.CatalogEntry{Name: "A", Filename: "A.zip", DownloadRef: "mods/A.zip"})

			mods, err := NewParser("").Parse(doc)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(mods) != 0 {
				t.Errorf("expected no mods, got %d", len(mods))
			}
		})

		t.Run("Parent Directory Link", func(t *testing.T) {
			doc := tu.CatalogPage(
				tu.CatalogEntry{Name: "A", Filename: "A.zip", DownloadRef: "http://example.com/mods/.."},
				tu.CatalogEntry{Name: "B", DownloadRef: "http://example.com/mods/.."},
			)

			mods, err := NewParser(base).Parse(doc)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(mods) != 1 {
				t.Fatalf("expected the unnamed entry to be dropped, got %d mods", len(mods))
			}
			if mods[0].FileName != "A.zip" {
				t.Errorf("expected display file name, got %q", mods[0].FileName)
			}
		})

		t.Run("Garbage Document", func(t *testing.T) {
			mods, err := NewParser(base).Parse([]byte("<<<not html at all"))
			if err != nil {
				t.Fatalf("malformed markup should not fail, got %v", err)
			}
			if len(mods) != 0 {
				t.Errorf("expected no mods, got %d", len(mods))
			}
		})

		t.Run("Empty Version", func(t *testing.T) {
			doc := tu.CatalogPage(tu.CatalogEntry{Name: "A", DownloadRef: "mods/A.zip"})

			mods, _ := NewParser(base).Parse(doc)
			if len(mods) != 1 || mods[0].Version != "" {
				t.Fatalf("expected one mod with empty version, got %+v", mods)
			}
		})
	})

	t.Run("fileNameFromURL", func(t *testing.T) {
		tc := []struct {
			name     string
			url      string
			fallback string
			want     string
		}{
			{"from path", "http://h/a/b/Mod.zip", "ignored", "Mod.zip"},
			{"query ignored", "http://h/get/Mod.zip?token=1", "", "Mod.zip"},
			{"root path falls back", "http://h/", "Display.zip", "Display.zip"},
			{"bad url falls back", "http://h/%zz", "Display.zip", "Display.zip"},
			{"empty url falls back", "", "dir/Display.zip", "Display.zip"},
			{"traversal rejected", "", "..", ""},
			{"parent segment falls back", "http://h/mods/..", "Display.zip", "Display.zip"},
			{"parent segment without fallback", "http://h/mods/..", "", ""},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				if got := fileNameFromURL(tt.url, tt.fallback); got != tt.want {
					t.Errorf("fileNameFromURL(%q, %q) = %q, want %q", tt.url, tt.fallback, got, tt.want)
				}
			})
		}
	})
}
