// package formatter exports profile mod lists and run history to CSV, Markdown, plain text tables and JSON
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/modsync/internal/models"
	"github.com/desertthunder/modsync/internal/shared"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Format names an export format.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "text"
	FormatJSON     Format = "json"
)

// Extension returns the file extension for f, including the dot.
func (f Format) Extension() string {
	switch f {
	case FormatCSV:
		return ".csv"
	case FormatMarkdown:
		return ".md"
	case FormatJSON:
		return ".json"
	default:
		return ".txt"
	}
}

// ParseFormat accepts a format name or a common alias (md, txt).
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "text", "txt", "":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q (csv, markdown, text, json)", shared.ErrInvalidFlag, s)
	}
}

// Export renders profile in the given format.
func Export(profile *models.Profile, format Format) ([]byte, error) {
	switch format {
	case FormatCSV:
		return ExportToCSV(profile)
	case FormatMarkdown:
		return ExportToMarkdown(profile)
	case FormatJSON:
		return ExportToJSON(profile)
	case FormatText:
		return ExportToText(profile)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, format)
	}
}

// ExportToCSV writes one row per mod: Name, File, Version, Author, Size, Active, Source, Download URL
func ExportToCSV(profile *models.Profile) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Name", "File", "Version", "Author", "Size", "Active", "Source", "Download URL"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, mod := range profile.Mods {
		record := []string{
			mod.Name,
			mod.FileName,
			mod.Version,
			mod.Author,
			mod.FileSize,
			strconv.FormatBool(mod.IsActive),
			source(mod),
			mod.DownloadURL,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown renders the profile header and a mod table.
func ExportToMarkdown(profile *models.Profile) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", profile.Name)

	if profile.Description != "" {
		fmt.Fprintf(&buf, "%s\n\n", profile.Description)
	}
	if profile.ServerSyncURL != "" {
		fmt.Fprintf(&buf, "**Server**: %s\n", profile.ServerSyncURL)
	}
	fmt.Fprintf(&buf, "**Mods**: %d (%d active)\n", len(profile.Mods), activeCount(profile))
	fmt.Fprintf(&buf, "**Last sync**: %s\n\n", lastSync(profile))

	if len(profile.Mods) == 0 {
		return buf.Bytes(), nil
	}

	t := modTable(profile.Mods)
	buf.WriteString("## Mods\n\n")
	buf.WriteString(t.RenderMarkdown())
	buf.WriteString("\n")

	return buf.Bytes(), nil
}

// ExportToText renders the profile as a plain text table.
func ExportToText(profile *models.Profile) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Profile: %s\n", profile.Name)
	if profile.ServerSyncURL != "" {
		fmt.Fprintf(&buf, "Server: %s\n", profile.ServerSyncURL)
	}
	fmt.Fprintf(&buf, "Folder: %s\n", profile.ModFolderPath)
	fmt.Fprintf(&buf, "Last sync: %s\n\n", lastSync(profile))

	t := modTable(profile.Mods)
	t.SetStyle(table.StyleLight)
	buf.WriteString(t.Render())
	buf.WriteString("\n")

	return buf.Bytes(), nil
}

// ExportToJSON returns the profile document as stored on disk.
func ExportToJSON(profile *models.Profile) ([]byte, error) {
	return shared.MarshalJSON(profile, true)
}

// WriteExport writes profile to path, defaulting to "<profile-name>_mods<ext>" in the working directory.
func WriteExport(profile *models.Profile, format Format, path string) (string, error) {
	if path == "" {
		path = Slug(profile.Name) + "_mods" + format.Extension()
	}

	data, err := Export(profile, format)
	if err != nil {
		return "", fmt.Errorf("failed to generate %s export: %w", format, err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}

	return path, nil
}

// RenderCatalog renders parsed catalog entries as a table.
func RenderCatalog(mods []models.RemoteModRecord) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "Name", "Version", "File", "Size", "Active"})
	for i, m := range mods {
		t.AppendRow(table.Row{i + 1, m.Name, m.Version, m.FileName, m.FileSize, yesNo(m.IsActive)})
	}
	t.AppendFooter(table.Row{"", "Total", len(mods)})
	return t.Render()
}

// RenderRuns renders run history newest first.
func RenderRuns(runs []*models.SyncRun) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "Started", "Status", "Mods", "Downloaded", "Failed", "Duration"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
	})
	for _, r := range runs {
		t.AppendRow(table.Row{
			r.Sequence(),
			r.StartedAt().Local().Format("2006-01-02 15:04"),
			string(r.Status()),
			fmt.Sprintf("%d/%d", r.CompletedMods(), r.TotalMods()),
			r.DownloadedMods(),
			len(r.FailedMods()),
			r.Duration().Round(time.Second).String(),
		})
	}
	return t.Render()
}

// RenderProfiles renders a profile overview.
func RenderProfiles(profiles []*models.Profile) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "Name", "Mods", "Server", "Last Sync"})
	for _, p := range profiles {
		t.AppendRow(table.Row{p.ID, p.Name, len(p.Mods), p.ServerSyncURL, lastSync(p)})
	}
	return t.Render()
}

func modTable(mods []models.ModRecord) table.Writer {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Name", "Version", "Author", "File", "Size", "Active", "Source"})
	for _, m := range mods {
		t.AppendRow(table.Row{m.Name, m.Version, m.Author, m.FileName, m.FileSize, yesNo(m.IsActive), source(m)})
	}
	return t
}

func source(m models.ModRecord) string {
	if m.IsFromServer {
		return "server"
	}
	return "local"
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func activeCount(p *models.Profile) int {
	n := 0
	for _, m := range p.Mods {
		if m.IsActive {
			n++
		}
	}
	return n
}

func lastSync(p *models.Profile) string {
	if p.LastSyncDate == nil {
		return "never"
	}
	return p.LastSyncDate.Local().Format("2006-01-02 15:04")
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Slug lowercases name and collapses anything but letters and digits into single dashes.
func Slug(name string) string {
	s := strings.Trim(slugPattern.ReplaceAllString(strings.ToLower(name), "-"), "-")
	if s == "" {
		return "profile"
	}
	return s
}
