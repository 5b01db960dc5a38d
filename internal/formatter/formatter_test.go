package formatter

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/modsync/internal/models"
	"github.com/desertthunder/modsync/internal/shared"
	th "github.com/desertthunder/modsync/internal/testing"
)

func testProfile() *models.Profile {
	synced := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	return &models.Profile{
		ID:            "p-1",
		Name:          "Harvest Server",
		Description:   "Weekend multiplayer",
		ModFolderPath: "/games/mods",
		ServerSyncURL: "http://example.com/mods.html",
		LastSyncDate:  &synced,
		Mods: []models.ModRecord{
			{
				Name:         "Big Tractor",
				Version:      "1.2.0.0",
				Author:       "Farmer Joe",
				FileName:     "FS25_BigTractor.zip",
				FileSize:     "12.4 MB",
				IsActive:     true,
				IsFromServer: true,
				DownloadURL:  "http://example.com/mods/FS25_BigTractor.zip",
			},
			{
				Name:     "Local Map",
				Version:  "0.9",
				FileName: "FS25_LocalMap.zip",
				FileSize: "300 MB",
			},
		},
	}
}

func TestExporters(t *testing.T) {
	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(testProfile())
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "Name,File,Version,Author,Size,Active,Source,Download URL") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, "Big Tractor,FS25_BigTractor.zip,1.2.0.0,Farmer Joe,12.4 MB,true,server,http://example.com/mods/FS25_BigTractor.zip") {
			t.Errorf("CSV missing server mod row, got: %s", output)
		}
		if !strings.Contains(output, "Local Map,FS25_LocalMap.zip,0.9,,300 MB,false,local,") {
			t.Errorf("CSV missing local mod row, got: %s", output)
		}

		lines := strings.Split(strings.TrimSpace(output), "\n")
		if len(lines) != 3 {
			t.Errorf("Expected 3 lines, got %d", len(lines))
		}
	})

	t.Run("ExportToCSV empty profile", func(t *testing.T) {
		data, err := ExportToCSV(&models.Profile{Name: "Empty"})
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}
		if lines := strings.Split(strings.TrimSpace(string(data)), "\n"); len(lines) != 1 {
			t.Errorf("Expected header only, got %d lines", len(lines))
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		data, err := ExportToMarkdown(testProfile())
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}

		output := string(data)
		for _, want := range []string{
			"# Harvest Server",
			"Weekend multiplayer",
			"**Server**: http://example.com/mods.html",
			"**Mods**: 2 (1 active)",
			"## Mods",
			"| Big Tractor |",
			"FS25_LocalMap.zip",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("Markdown missing %q, got:\n%s", want, output)
			}
		}
	})

	t.Run("ExportToMarkdown without mods", func(t *testing.T) {
		data, err := ExportToMarkdown(&models.Profile{Name: "Fresh"})
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "**Last sync**: never") {
			t.Errorf("Expected never synced marker, got:\n%s", output)
		}
		if strings.Contains(output, "## Mods") {
			t.Error("Expected no mod table for empty profile")
		}
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText(testProfile())
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "Profile: Harvest Server") {
			t.Errorf("Text missing profile header, got:\n%s", output)
		}
		if !strings.Contains(output, "Folder: /games/mods") {
			t.Errorf("Text missing folder, got:\n%s", output)
		}
		if !strings.Contains(strings.ToUpper(output), "VERSION") {
			t.Errorf("Text missing table header, got:\n%s", output)
		}
		if !strings.Contains(output, "Farmer Joe") || !strings.Contains(output, "Local Map") {
			t.Errorf("Text missing mod rows, got:\n%s", output)
		}
	})

	t.Run("ExportToJSON", func(t *testing.T) {
		data, err := ExportToJSON(testProfile())
		if err != nil {
			t.Fatalf("ExportToJSON failed: %v", err)
		}

		var decoded models.Profile
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("Failed to parse JSON: %v", err)
		}
		if decoded.ID != "p-1" || len(decoded.Mods) != 2 {
			t.Errorf("Unexpected decoded profile: %+v", decoded)
		}
		if !strings.Contains(string(data), "\"serverSyncUrl\"") {
			t.Error("Expected profile document field names")
		}
	})
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input string
		want  Format
	}{
		{"csv", FormatCSV},
		{"CSV", FormatCSV},
		{"md", FormatMarkdown},
		{"markdown", FormatMarkdown},
		{"txt", FormatText},
		{"", FormatText},
		{" json ", FormatJSON},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if err != nil {
				t.Fatalf("ParseFormat(%q) failed: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}

	t.Run("unknown", func(t *testing.T) {
		_, err := ParseFormat("xml")
		if !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("Expected ErrInvalidFlag, got %v", err)
		}
	})
}

func TestWriteExport(t *testing.T) {
	t.Run("WithDefaultPath", func(t *testing.T) {
		tempDir := t.TempDir()
		originalDir := th.MustGetwd(t)
		th.MustChdir(t, tempDir)
		defer th.MustChdir(t, originalDir)

		path, err := WriteExport(testProfile(), FormatCSV, "")
		if err != nil {
			t.Fatalf("WriteExport failed: %v", err)
		}
		if path != "harvest-server_mods.csv" {
			t.Errorf("Expected 'harvest-server_mods.csv', got '%s'", path)
		}

		th.AssertFileExists(t, path)
		if content := th.MustReadFile(t, path); !strings.Contains(content, "FS25_BigTractor.zip") {
			t.Error("Export file missing mod data")
		}
	})

	t.Run("WithCustomPath", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "mods.md")

		got, err := WriteExport(testProfile(), FormatMarkdown, path)
		if err != nil {
			t.Fatalf("WriteExport failed: %v", err)
		}
		if got != path {
			t.Errorf("Expected %s, got %s", path, got)
		}
		if content := th.MustReadFile(t, path); !strings.HasPrefix(content, "# Harvest Server") {
			t.Errorf("Unexpected markdown content:\n%s", content)
		}
	})

	t.Run("UnwritablePath", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing", "mods.json")
		if _, err := WriteExport(testProfile(), FormatJSON, path); err == nil {
			t.Error("Expected error writing into missing directory")
		}
	})

	t.Run("UnknownFormat", func(t *testing.T) {
		_, err := WriteExport(testProfile(), Format("xml"), filepath.Join(t.TempDir(), "x"))
		if !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("Expected ErrInvalidFlag, got %v", err)
		}
	})
}

func TestRenderers(t *testing.T) {
	t.Run("RenderCatalog", func(t *testing.T) {
		out := RenderCatalog([]models.RemoteModRecord{
			{Name: "Big Tractor", Version: "1.2", FileName: "FS25_BigTractor.zip", FileSize: "12 MB", IsActive: true},
			{Name: "Seeder", Version: "2.0", FileName: "FS25_Seeder.zip"},
		})
		if !strings.Contains(out, "FS25_BigTractor.zip") || !strings.Contains(out, "FS25_Seeder.zip") {
			t.Errorf("Catalog table missing entries:\n%s", out)
		}
		if !strings.Contains(out, "2") {
			t.Errorf("Catalog table missing total:\n%s", out)
		}
	})

	t.Run("RenderRuns", func(t *testing.T) {
		start := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
		run := models.NewSyncRun(models.SyncRunParams{
			ProfileID:      "p-1",
			CatalogURL:     "http://example.com/mods.html",
			Status:         models.StatusCompleted,
			TotalMods:      3,
			CompletedMods:  2,
			DownloadedMods: 1,
			FailedMods:     []string{"FS25_Broken.zip"},
			StartedAt:      start,
			FinishedAt:     start.Add(90 * time.Second),
		})
		run.SetSequence(7)

		out := RenderRuns([]*models.SyncRun{run})
		for _, want := range []string{"7", "completed", "2/3", "1m30s"} {
			if !strings.Contains(out, want) {
				t.Errorf("Runs table missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("RenderProfiles", func(t *testing.T) {
		out := RenderProfiles([]*models.Profile{testProfile(), {ID: "p-2", Name: "Solo"}})
		if !strings.Contains(out, "Harvest Server") || !strings.Contains(out, "never") {
			t.Errorf("Profiles table missing rows:\n%s", out)
		}
	})
}

func TestSlug(t *testing.T) {
	tests := map[string]string{
		"Harvest Server":   "harvest-server",
		"  FS25 -- Mods! ": "fs25-mods",
		"***":              "profile",
		"":                 "profile",
	}
	for in, want := range tests {
		if got := Slug(in); got != want {
			t.Errorf("Slug(%q) = %q, want %q", in, got, want)
		}
	}
}
