package models

import "strings"

// RemoteModRecord is one entry extracted from a server catalog page.
//
// It lives only for the duration of a sync pass. RawHTML carries the entry's markup for debug logging and is never merged into a [ModRecord].
type RemoteModRecord struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Author      string `json:"author"`
	FileName    string `json:"fileName"`
	FileSize    string `json:"fileSize"`
	ModHub      string `json:"modHub,omitempty"`
	DownloadURL string `json:"downloadUrl"`
	DetailURL   string `json:"detailUrl,omitempty"`
	IsActive    bool   `json:"isActive"`
	RawHTML     string `json:"-"`
}

// ToModRecord builds a new profile record from the remote entry. New records are active.
func (r RemoteModRecord) ToModRecord() ModRecord {
	m := ModRecord{FileName: r.FileName, IsActive: true}
	r.MergeInto(&m)
	return m
}

// MergeInto copies server-provided metadata onto an existing record and reports whether anything changed.
//
// The active flag and any archive descriptor are owned by the user and left alone.
func (r RemoteModRecord) MergeInto(m *ModRecord) bool {
	before := *m
	if name := strings.TrimSpace(r.Name); name != "" {
		m.Name = name
	} else if m.Name == "" {
		m.Name = r.FileName
	}
	m.Version = strings.TrimSpace(r.Version)
	if r.Author != "" {
		m.Author = r.Author
	}
	if r.FileSize != "" {
		m.FileSize = r.FileSize
	}
	if r.ModHub != "" {
		m.ModHub = r.ModHub
	}
	m.DownloadURL = r.DownloadURL
	if r.DetailURL != "" {
		m.DetailURL = r.DetailURL
	}
	m.IsFromServer = true

	return before.Name != m.Name ||
		before.Version != m.Version ||
		before.Author != m.Author ||
		before.FileSize != m.FileSize ||
		before.ModHub != m.ModHub ||
		before.DownloadURL != m.DownloadURL ||
		before.DetailURL != m.DetailURL ||
		before.IsFromServer != m.IsFromServer
}

// SyncStatus is the status carried by a [SyncProgress] event.
type SyncStatus string

const (
	StatusFetching    SyncStatus = "fetching"
	StatusDownloading SyncStatus = "downloading"
	StatusExtracting  SyncStatus = "extracting"
	StatusVerifying   SyncStatus = "verifying"
	StatusSaving      SyncStatus = "saving"
	StatusCompleted   SyncStatus = "completed"
	StatusError       SyncStatus = "error"
	StatusCancelled   SyncStatus = "cancelled"
)

// Terminal reports whether a run ends in this status.
func (s SyncStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusError || s == StatusCancelled
}

// SyncProgress is a transient progress event.
type SyncProgress struct {
	CurrentMod          string     `json:"currentMod"`
	TotalMods           int        `json:"totalMods"`
	CompletedMods       int        `json:"completedMods"`
	CurrentFileProgress float64    `json:"currentFileProgress"`
	Status              SyncStatus `json:"status"`
	FailedMods          []string   `json:"failedMods,omitempty"`
	Error               string     `json:"error,omitempty"`
}
