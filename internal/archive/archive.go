// package archive reads mod metadata from the modDesc.xml inside a mod archive
package archive

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/desertthunder/modsync/internal/models"
	"github.com/desertthunder/modsync/internal/shared"
	"golang.org/x/net/html/charset"
)

const (
	descriptorName = "moddesc.xml"
	maxDescriptor  = 1 << 20
)

type modDescXML struct {
	XMLName      xml.Name     `xml:"modDesc"`
	Author       string       `xml:"author"`
	Version      string       `xml:"version"`
	Title        localizedXML `xml:"title"`
	Description  localizedXML `xml:"description"`
	IconFilename string       `xml:"iconFilename"`
	Multiplayer  *struct {
		Supported string `xml:"supported,attr"`
	} `xml:"multiplayer"`
}

// localizedXML matches <title><en>..</en><de>..</de></title> as well as plain <title>..</title>.
type localizedXML struct {
	Text    string `xml:",chardata"`
	Entries []struct {
		XMLName xml.Name
		Text    string `xml:",chardata"`
	} `xml:",any"`
}

func (l localizedXML) values() map[string]string {
	out := map[string]string{}
	for _, e := range l.Entries {
		if v := strings.TrimSpace(e.Text); v != "" {
			out[strings.ToLower(e.XMLName.Local)] = v
		}
	}
	if len(out) == 0 {
		if v := strings.TrimSpace(l.Text); v != "" {
			out["en"] = v
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Reader extracts [models.ModDescriptor] values from archives on disk.
type Reader struct{}

func NewReader() *Reader {
	return &Reader{}
}

// ReadDescriptor opens the zip at path and parses its modDesc.xml.
//
// The shallowest modDesc.xml wins when the archive nests several. Fails with [shared.ErrNoDescriptor]
// when there is none.
func (r *Reader) ReadDescriptor(filePath string) (*models.ModDescriptor, error) {
	zr, err := zip.OpenReader(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive %s: %w", path.Base(filePath), err)
	}
	defer zr.Close()

	var found *zip.File
	for _, f := range zr.File {
		if !strings.HasSuffix(strings.ToLower(f.Name), descriptorName) {
			continue
		}
		if found == nil || strings.Count(f.Name, "/") < strings.Count(found.Name, "/") {
			found = f
		}
	}
	if found == nil {
		return nil, fmt.Errorf("%w: %s", shared.ErrNoDescriptor, path.Base(filePath))
	}

	rc, err := found.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", found.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, maxDescriptor))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", found.Name, err)
	}

	return Parse(data)
}

// Parse decodes a modDesc.xml document.
func Parse(data []byte) (*models.ModDescriptor, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = charset.NewReaderLabel
	dec.Strict = false

	var doc modDescXML
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse modDesc.xml: %w", err)
	}

	d := &models.ModDescriptor{
		Title:        doc.Title.values(),
		Description:  doc.Description.values(),
		Version:      strings.TrimSpace(doc.Version),
		Author:       strings.TrimSpace(doc.Author),
		IconFilename: strings.TrimSpace(doc.IconFilename),
	}
	if doc.Multiplayer != nil && doc.Multiplayer.Supported != "" {
		supported := strings.EqualFold(strings.TrimSpace(doc.Multiplayer.Supported), "true")
		d.MultiplayerSupported = &supported
	}

	return d, nil
}
