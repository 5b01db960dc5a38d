package repositories

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/desertthunder/modsync/internal/models"
	"github.com/desertthunder/modsync/internal/shared"
)

// modExtensions are the archive types the game loads from a mod folder.
var modExtensions = []string{".zip", ".ms2"}

// DescriptorReader extracts archive metadata. See archive.Reader.
type DescriptorReader interface {
	ReadDescriptor(path string) (*models.ModDescriptor, error)
}

// ScanReport lists what [Scan] changed, by file name.
type ScanReport struct {
	Added   []string
	Updated []string
	Removed []string
}

// Changed reports whether the profile was modified.
func (r *ScanReport) Changed() bool {
	return len(r.Added)+len(r.Updated)+len(r.Removed) > 0
}

// IsModArchive reports whether name has a loadable mod extension.
func IsModArchive(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range modExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Scan reconciles profile with the archives in its mod folder.
//
// Untracked archives are added as active records, named from their descriptor when reader can read one.
// Tracked records without a descriptor get one. With prune, records whose file is gone are removed.
// A missing mod folder is treated as empty. reader may be nil.
func Scan(profile *models.Profile, reader DescriptorReader, prune bool) (*ScanReport, error) {
	report := &ScanReport{}

	entries, err := os.ReadDir(profile.ModFolderPath)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read mod folder: %w", err)
	}

	present := map[string]os.DirEntry{}
	for _, entry := range entries {
		if entry.Type().IsRegular() && IsModArchive(entry.Name()) {
			present[entry.Name()] = entry
		}
	}

	if prune {
		kept := profile.Mods[:0]
		for _, m := range profile.Mods {
			if _, ok := present[m.FileName]; ok {
				kept = append(kept, m)
			} else {
				report.Removed = append(report.Removed, m.FileName)
			}
		}
		profile.Mods = kept
	}

	names := make([]string, 0, len(present))
	for name := range present {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		path := filepath.Join(profile.ModFolderPath, name)
		idx := profile.FindMod(name)

		if idx >= 0 {
			if profile.Mods[idx].Descriptor == nil && reader != nil {
				if desc, err := reader.ReadDescriptor(path); err == nil && desc != nil {
					profile.Mods[idx].Descriptor = desc
					report.Updated = append(report.Updated, name)
				}
			}
			continue
		}

		record := models.ModRecord{
			Name:     strings.TrimSuffix(name, filepath.Ext(name)),
			FileName: name,
			IsActive: true,
		}
		if info, err := present[name].Info(); err == nil {
			record.FileSize = shared.FormatSize(info.Size())
		}
		if reader != nil {
			if desc, err := reader.ReadDescriptor(path); err == nil && desc != nil {
				applyDescriptor(&record, desc)
			}
		}

		profile.Mods = append(profile.Mods, record)
		report.Added = append(report.Added, name)
	}

	return report, nil
}

func applyDescriptor(m *models.ModRecord, d *models.ModDescriptor) {
	m.Descriptor = d
	if title := models.Localized(d.Title, "en"); title != "" {
		m.Name = title
	}
	if d.Version != "" {
		m.Version = d.Version
	}
	if d.Author != "" {
		m.Author = d.Author
	}
	if desc := models.Localized(d.Description, "en"); desc != "" {
		m.Description = desc
	}
}
