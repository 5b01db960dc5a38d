package archive

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/desertthunder/modsync/internal/shared"
	tu "github.com/desertthunder/modsync/internal/testing"
)

const sampleModDesc = `<?xml version="1.0" encoding="utf-8" standalone="no" ?>
<modDesc descVersion="72">
    <author>Giants Software</author>
    <version>1.2.0.0</version>
    <title>
        <en>Big Tractor</en>
        <de>Großer Traktor</de>
    </title>
    <description>
        <en><![CDATA[A very big tractor & trailer.]]></en>
    </description>
    <iconFilename>icon_tractor.dds</iconFilename>
    <multiplayer supported="true"/>
</modDesc>
`

func writeZip(t *testing.T, files map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "FS22_Test.zip")

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create zip: %v", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("failed to add %s: %v", name, err)
		}
		w.Write([]byte(content))
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("failed to finish zip: %v", err)
	}
	return path
}

func TestParse(t *testing.T) {
	t.Run("Full Descriptor", func(t *testing.T) {
		d, err := Parse([]byte(sampleModDesc))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if d.Title["en"] != "Big Tractor" || d.Title["de"] != "Großer Traktor" {
			t.Errorf("unexpected titles: %v", d.Title)
		}
		if d.Description["en"] != "A very big tractor & trailer." {
			t.Errorf("unexpected description: %v", d.Description)
		}
		if d.Version != "1.2.0.0" {
			t.Errorf("expected version 1.2.0.0, got %q", d.Version)
		}
		if d.Author != "Giants Software" {
			t.Errorf("unexpected author %q", d.Author)
		}
		if d.IconFilename != "icon_tractor.dds" {
			t.Errorf("unexpected icon %q", d.IconFilename)
		}
		if d.MultiplayerSupported == nil || !*d.MultiplayerSupported {
			t.Error("expected multiplayer support")
		}
	})

	t.Run("Plain Title", func(t *testing.T) {
		d, err := Parse([]byte(`<modDesc><title>Plow</title></modDesc>`))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if d.Title["en"] != "Plow" {
			t.Errorf("expected plain title under en, got %v", d.Title)
		}
		if d.MultiplayerSupported != nil {
			t.Error("expected multiplayer to be unknown")
		}
		if d.Description != nil {
			t.Errorf("expected no description, got %v", d.Description)
		}
	})

	t.Run("Latin1 Encoding", func(t *testing.T) {
		doc := []byte("<?xml version=\"1.0\" encoding=\"iso-8859-1\"?><modDesc><author>M\xfcller</author></modDesc>")
		d, err := Parse(doc)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if d.Author != "Müller" {
			t.Errorf("expected decoded author, got %q", d.Author)
		}
	})

	t.Run("Wrong Root", func(t *testing.T) {
		if _, err := Parse([]byte(`<map><title>x</title></map>`)); err == nil {
			t.Error("expected error for non-modDesc document")
		}
	})

	t.Run("Garbage", func(t *testing.T) {
		if _, err := Parse([]byte("not xml at all")); err == nil {
			t.Error("expected error")
		}
	})
}

func TestReader(t *testing.T) {
	r := NewReader()

	t.Run("Root Descriptor", func(t *testing.T) {
		path := writeZip(t, map[string]string{
			"modDesc.xml":      sampleModDesc,
			"icon_tractor.dds": "DDS",
		})

		d, err := r.ReadDescriptor(path)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if d.Version != "1.2.0.0" {
			t.Errorf("expected version 1.2.0.0, got %q", d.Version)
		}
	})

	t.Run("Shallowest Descriptor Wins", func(t *testing.T) {
		path := writeZip(t, map[string]string{
			"extras/old/modDesc.xml": `<modDesc><version>0.1</version></modDesc>`,
			"Mod/ModDesc.XML":        `<modDesc><version>2.0</version></modDesc>`,
		})

		d, err := r.ReadDescriptor(path)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if d.Version != "2.0" {
			t.Errorf("expected version 2.0, got %q", d.Version)
		}
	})

	t.Run("No Descriptor", func(t *testing.T) {
		path := writeZip(t, map[string]string{"readme.txt": "hi"})
		if _, err := r.ReadDescriptor(path); !errors.Is(err, shared.ErrNoDescriptor) {
			t.Errorf("expected ErrNoDescriptor, got %v", err)
		}
	})

	t.Run("Not A Zip", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "broken.zip")
		tu.MustWriteFile(t, path, []byte("definitely not a zip"))
		if _, err := r.ReadDescriptor(path); err == nil {
			t.Error("expected error")
		}
	})
}
