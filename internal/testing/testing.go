// package testing contains shared testing utilities
package testing

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

// BrokenBody yields Data and then fails with Err, like a connection reset mid-transfer.
type BrokenBody struct {
	Data []byte
	Err  error
	off  int
}

func (b *BrokenBody) Read(p []byte) (int, error) {
	if b.off >= len(b.Data) {
		return 0, b.Err
	}
	n := copy(p, b.Data[b.off:])
	b.off += n
	return n, nil
}

func (b *BrokenBody) Close() error { return nil }

// CatalogEntry describes one mod block rendered by [CatalogPage].
type CatalogEntry struct {
	Name        string
	DetailHref  string
	Version     string
	Author      string
	Filename    string
	Size        string
	ModHub      string
	Active      string
	DownloadRef string
}

// CatalogPage renders entries the way the dedicated-server mod listing does.
func CatalogPage(entries ...CatalogEntry) []byte {
	var b strings.Builder
	b.WriteString("<html><body><div class=\"container\">\n")
	for _, e := range entries {
		b.WriteString(`<div class="container-row grid-row">` + "\n")
		fmt.Fprintf(&b, `<div title="Name"><div class="col-xs-3"><b>Name</b></div><div class="col-lg-12 col-xs-9"><a href="%s">%s</a></div></div>`+"\n", e.DetailHref, e.Name)
		fmt.Fprintf(&b, `<div title="Version"><div class="col-xs-3"><b>Version</b></div><div class="col-lg-12 col-xs-9">%s</div></div>`+"\n", e.Version)
		fmt.Fprintf(&b, `<div title="Author"><div class="col-xs-3"><b>Author</b></div><div class="col-lg-12 col-xs-9">%s</div></div>`+"\n", e.Author)
		fmt.Fprintf(&b, `<div title="Filename"><div class="col-xs-3"><b>Filename</b></div><div class="col-lg-12 col-xs-9"><a>%s</a></div></div>`+"\n", e.Filename)
		fmt.Fprintf(&b, `<div title="Size"><div class="col-xs-3"><b>Size</b></div><div class="col-lg-12 col-xs-9">%s</div></div>`+"\n", e.Size)
		fmt.Fprintf(&b, `<div title="ModHub"><div class="col-xs-3"><b>ModHub</b></div><div class="col-lg-12 col-xs-9"><span>%s</span></div></div>`+"\n", e.ModHub)
		fmt.Fprintf(&b, `<div title="Active"><div class="col-xs-3"><b>Active</b></div><div class="col-lg-12 col-xs-9">%s</div></div>`+"\n", e.Active)
		if e.DownloadRef != "" {
			fmt.Fprintf(&b, `<div class="col-xs-12"><a title="Download %s" href="%s">Download</a></div>`+"\n", e.Filename, e.DownloadRef)
		}
		b.WriteString("</div>\n")
	}
	b.WriteString("</div></body></html>\n")
	return []byte(b.String())
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertFileNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Errorf("File should not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

// MustWriteFile writes data to path, creating parent directories.
func MustWriteFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create directory for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("Failed to write file %s: %v", path, err)
	}
}
