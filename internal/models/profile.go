package models

import (
	"maps"
	"strings"
	"time"
)

// Profile pairs a local mod directory with an optional server catalog.
//
// The sync engine is the only writer of Mods and LastSyncDate while a run is active.
type Profile struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Description   string      `json:"description,omitempty"`
	ModFolderPath string      `json:"modFolderPath"`
	ServerSyncURL string      `json:"serverSyncUrl,omitempty"`
	LastSyncDate  *time.Time  `json:"lastSyncDate,omitempty"`
	Mods          []ModRecord `json:"mods"`
}

// ModRecord is one tracked mod archive. FileName is the matching key.
type ModRecord struct {
	Name         string         `json:"name"`
	Version      string         `json:"version,omitempty"`
	Author       string         `json:"author,omitempty"`
	Description  string         `json:"description,omitempty"`
	FileName     string         `json:"fileName"`
	FileSize     string         `json:"fileSize"`
	ModHub       string         `json:"modHub,omitempty"`
	IsActive     bool           `json:"isActive"`
	IsFromServer bool           `json:"isFromServer,omitempty"`
	DownloadURL  string         `json:"downloadUrl,omitempty"`
	DetailURL    string         `json:"detailUrl,omitempty"`
	Descriptor   *ModDescriptor `json:"modDescData,omitempty"`
}

// ModDescriptor is the best-effort metadata read from an archive's modDesc.xml.
type ModDescriptor struct {
	Title                map[string]string `json:"title,omitempty"`
	Description          map[string]string `json:"description,omitempty"`
	Version              string            `json:"version,omitempty"`
	Author               string            `json:"author,omitempty"`
	IconFilename         string            `json:"iconFilename,omitempty"`
	MultiplayerSupported *bool             `json:"multiplayerSupported,omitempty"`
}

// Localized picks the value for lang, then English, then German, then any entry.
func Localized(values map[string]string, lang string) string {
	for _, key := range []string{lang, "en", "de"} {
		if v := strings.TrimSpace(values[key]); v != "" {
			return v
		}
	}
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// FindMod returns the index of the record with the given file name, or -1.
func (p *Profile) FindMod(fileName string) int {
	for i := range p.Mods {
		if p.Mods[i].FileName == fileName {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy safe to hand to another goroutine.
func (p *Profile) Clone() *Profile {
	c := *p
	c.Mods = make([]ModRecord, len(p.Mods))
	for i, m := range p.Mods {
		m.Descriptor = m.Descriptor.Clone()
		c.Mods[i] = m
	}
	if p.LastSyncDate != nil {
		t := *p.LastSyncDate
		c.LastSyncDate = &t
	}
	return &c
}

// Clone copies d, including its maps. A nil descriptor stays nil.
func (d *ModDescriptor) Clone() *ModDescriptor {
	if d == nil {
		return nil
	}
	c := *d
	c.Title = maps.Clone(d.Title)
	c.Description = maps.Clone(d.Description)
	if d.MultiplayerSupported != nil {
		v := *d.MultiplayerSupported
		c.MultiplayerSupported = &v
	}
	return &c
}
