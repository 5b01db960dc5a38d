package models

import (
	"testing"
	"time"
)

func TestProfile(t *testing.T) {
	t.Run("FindMod", func(t *testing.T) {
		p := &Profile{Mods: []ModRecord{{FileName: "a.zip"}, {FileName: "b.zip"}}}

		if got := p.FindMod("b.zip"); got != 1 {
			t.Errorf("expected index 1, got %d", got)
		}
		if got := p.FindMod("B.zip"); got != -1 {
			t.Errorf("matching is exact, expected -1, got %d", got)
		}
	})

	t.Run("Clone", func(t *testing.T) {
		now := time.Now()
		mp := true
		desc := &ModDescriptor{Title: map[string]string{"en": "Tractor"}, MultiplayerSupported: &mp}
		p := &Profile{ID: "p1", LastSyncDate: &now, Mods: []ModRecord{
			{FileName: "a.zip", Version: "1.0", Descriptor: desc},
			{FileName: "b.zip"},
		}}
		c := p.Clone()

		c.Mods[0].Version = "2.0"
		c.Mods[0].Descriptor.Title["en"] = "Combine"
		*c.Mods[0].Descriptor.MultiplayerSupported = false
		c.Mods = append(c.Mods, ModRecord{FileName: "c.zip"})
		*c.LastSyncDate = now.Add(time.Hour)

		if len(p.Mods) != 2 {
			t.Errorf("expected original to keep 2 mods, got %d", len(p.Mods))
		}
		if c.Mods[1].Descriptor != nil {
			t.Error("expected nil descriptor to stay nil")
		}
		if desc.Title["en"] != "Tractor" || !*desc.MultiplayerSupported {
			t.Error("clone should not share descriptor data")
		}

		if p.Mods[0].Version != "1.0" {
			t.Error("clone should not share mod slice")
		}
		if !p.LastSyncDate.Equal(now) {
			t.Error("clone should not share last sync date")
		}
	})
}

func TestLocalized(t *testing.T) {
	values := map[string]string{"de": "Traktor", "en": " Tractor "}

	if got := Localized(values, "fr"); got != "Tractor" {
		t.Errorf("expected english fallback, got %q", got)
	}
	if got := Localized(values, "de"); got != "Traktor" {
		t.Errorf("expected german, got %q", got)
	}
	if got := Localized(map[string]string{"pl": "Ciągnik"}, "en"); got != "Ciągnik" {
		t.Errorf("expected any-language fallback, got %q", got)
	}
	if got := Localized(nil, "en"); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}

func TestRemoteModRecord(t *testing.T) {
	remote := RemoteModRecord{
		Name:        "Big Tractor",
		Version:     " 1.1 ",
		Author:      "Giants",
		FileName:    "FS22_BigTractor.zip",
		FileSize:    "40.37 MB",
		DownloadURL: "http://host/mods/FS22_BigTractor.zip",
		DetailURL:   "http://host/mods/1",
		IsActive:    false,
		RawHTML:     "<div>raw</div>",
	}

	t.Run("ToModRecord", func(t *testing.T) {
		m := remote.ToModRecord()

		if !m.IsActive {
			t.Error("new records default to active")
		}
		if !m.IsFromServer {
			t.Error("expected IsFromServer to be set")
		}
		if m.Version != "1.1" {
			t.Errorf("expected trimmed version, got %q", m.Version)
		}
		if m.FileName != remote.FileName {
			t.Errorf("expected file name %s, got %s", remote.FileName, m.FileName)
		}
	})

	t.Run("MergeInto Keeps Active Flag", func(t *testing.T) {
		m := ModRecord{FileName: remote.FileName, Version: "1.0", IsActive: false}

		changed := remote.MergeInto(&m)
		if !changed {
			t.Error("expected change to be reported")
		}
		if m.IsActive {
			t.Error("merge must not re-enable a disabled mod")
		}
		if m.Version != "1.1" {
			t.Errorf("expected version 1.1, got %s", m.Version)
		}
	})

	t.Run("MergeInto No Change", func(t *testing.T) {
		m := remote.ToModRecord()
		if remote.MergeInto(&m) {
			t.Error("merging identical data should report no change")
		}
	})

	t.Run("MergeInto Falls Back To File Name", func(t *testing.T) {
		m := ModRecord{}
		RemoteModRecord{FileName: "x.zip"}.MergeInto(&m)
		if m.Name != "x.zip" {
			t.Errorf("expected name fallback to file name, got %q", m.Name)
		}
	})
}

func TestSyncRun(t *testing.T) {
	start := time.Now()

	t.Run("Validate", func(t *testing.T) {
		tc := []struct {
			name    string
			params  SyncRunParams
			wantErr bool
		}{
			{"valid", SyncRunParams{ProfileID: "p", Status: StatusCompleted, StartedAt: start, FinishedAt: start.Add(time.Second)}, false},
			{"missing profile", SyncRunParams{Status: StatusCompleted, StartedAt: start, FinishedAt: start}, true},
			{"non terminal", SyncRunParams{ProfileID: "p", Status: StatusDownloading, StartedAt: start, FinishedAt: start}, true},
			{"reversed times", SyncRunParams{ProfileID: "p", Status: StatusError, StartedAt: start, FinishedAt: start.Add(-time.Second)}, true},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				err := NewSyncRun(tt.params).Validate()
				if (err != nil) != tt.wantErr {
					t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
				}
			})
		}
	})

	t.Run("FailedMods Copied", func(t *testing.T) {
		failed := []string{"a.zip"}
		run := NewSyncRun(SyncRunParams{ProfileID: "p", Status: StatusCompleted, FailedMods: failed})
		failed[0] = "b.zip"
		if run.FailedMods()[0] != "a.zip" {
			t.Error("run should keep its own copy of failed mods")
		}
	})

	t.Run("Terminal", func(t *testing.T) {
		for _, s := range []SyncStatus{StatusCompleted, StatusError, StatusCancelled} {
			if !s.Terminal() {
				t.Errorf("%s should be terminal", s)
			}
		}
		for _, s := range []SyncStatus{StatusFetching, StatusDownloading, StatusSaving} {
			if s.Terminal() {
				t.Errorf("%s should not be terminal", s)
			}
		}
	})
}
