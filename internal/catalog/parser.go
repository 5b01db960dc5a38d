// Package catalog turns a server's mod listing page into [models.RemoteModRecord] values.
//
// The page is not under our control, so parsing is defensive: entries missing a file name or a download link are dropped,
// and the parser returns whatever well-formed entries it can find.
package catalog

import (
	"bytes"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/desertthunder/modsync/internal/models"
)

const (
	entrySelector    = ".container-row.grid-row"
	fieldSelector    = "div[title]"
	valueSelector    = ".col-lg-12,.col-xs-9"
	downloadSelector = `a[title^="Download "]`
)

// Parser extracts mod entries from a catalog page.
type Parser struct {
	base *url.URL
}

// NewParser creates a Parser that resolves relative links against baseURL.
//
// An empty or unparseable baseURL means relative links cannot be resolved, which drops entries whose download link is relative.
func NewParser(baseURL string) *Parser {
	p := &Parser{}
	if baseURL == "" {
		return p
	}
	if u, err := url.Parse(baseURL); err == nil && u.IsAbs() {
		p.base = u
	}
	return p
}

// Parse reads every catalog entry block in document.
//
// Only an unreadable document is an error; malformed entries are skipped.
func (p *Parser) Parse(document []byte) ([]models.RemoteModRecord, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(document))
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog markup: %w", err)
	}

	mods := []models.RemoteModRecord{}
	doc.Find(entrySelector).Each(func(_ int, entry *goquery.Selection) {
		if mod, ok := p.parseEntry(entry); ok {
			mods = append(mods, mod)
		}
	})

	return mods, nil
}

func (p *Parser) parseEntry(entry *goquery.Selection) (models.RemoteModRecord, bool) {
	nameField := field(entry, "Name")
	nameLink := nameField.Find("a")

	mod := models.RemoteModRecord{
		Name:     strings.TrimSpace(nameLink.Text()),
		Version:  fieldValue(entry, "Version"),
		Author:   fieldValue(entry, "Author"),
		FileSize: fieldValue(entry, "Size"),
		IsActive: strings.EqualFold(fieldValue(entry, "Active"), "yes"),
	}

	modHub := field(entry, "ModHub")
	if span := modHub.Find("span"); span.Length() > 0 {
		mod.ModHub = strings.TrimSpace(span.Text())
	} else {
		mod.ModHub = strings.TrimSpace(modHub.Find(valueSelector).Text())
	}

	if href, ok := entry.Find(downloadSelector).First().Attr("href"); ok {
		mod.DownloadURL = p.resolve(href)
	}
	if href, ok := nameLink.First().Attr("href"); ok {
		mod.DetailURL = p.resolve(href)
	}

	displayName := strings.TrimSpace(field(entry, "Filename").Find("a").Text())
	mod.FileName = fileNameFromURL(mod.DownloadURL, displayName)

	if mod.FileName == "" || mod.DownloadURL == "" {
		return models.RemoteModRecord{}, false
	}

	if raw, err := goquery.OuterHtml(entry); err == nil {
		mod.RawHTML = raw
	}

	return mod, true
}

// field selects the labeled column whose <b> caption equals label.
func field(entry *goquery.Selection, label string) *goquery.Selection {
	return entry.Find(fieldSelector).FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.TrimSpace(s.Find("b").Text()) == label
	})
}

func fieldValue(entry *goquery.Selection, label string) string {
	return strings.TrimSpace(field(entry, label).Find(valueSelector).Text())
}

// resolve turns href into an absolute URL. Relative links need a base.
func (p *Parser) resolve(href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}

	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if u.IsAbs() {
		return u.String()
	}
	if p.base == nil {
		return ""
	}
	return p.base.ResolveReference(u).String()
}

// fileNameFromURL prefers the last path segment of the download link, since the display column may be truncated.
func fileNameFromURL(downloadURL, fallback string) string {
	if u, err := url.Parse(downloadURL); err == nil && downloadURL != "" {
		if seg := path.Base(u.Path); seg != "." && seg != ".." && seg != "/" && seg != "" {
			return seg
		}
	}
	return sanitizeFileName(fallback)
}

func sanitizeFileName(name string) string {
	name = strings.TrimSpace(strings.ReplaceAll(name, "\\", "/"))
	if name == "" {
		return ""
	}
	base := path.Base(name)
	if base == "." || base == "/" || base == ".." {
		return ""
	}
	return base
}
