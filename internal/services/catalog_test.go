package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/desertthunder/modsync/internal/shared"
	tu "github.com/desertthunder/modsync/internal/testing"
)

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"http", "http://example.com/mods", false},
		{"https with port", "https://example.com:8443/index.html?lang=en", false},
		{"uppercase scheme", "HTTP://example.com", false},
		{"surrounding whitespace", "  http://example.com  ", false},
		{"empty", "", true},
		{"ftp", "ftp://example.com/mods", true},
		{"no scheme", "example.com/mods", true},
		{"no host", "http:///mods", true},
		{"bad escape", "http://example.com/%zz", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateURL(tt.raw)
			if tt.wantErr {
				if !errors.Is(err, shared.ErrInvalidURL) {
					t.Errorf("expected ErrInvalidURL, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("expected no error, got %v", err)
			}
		})
	}
}

func TestCatalogService(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		t.Run("Defaults", func(t *testing.T) {
			svc := NewCatalogService(CatalogOpts{})

			if svc.httpClient != http.DefaultClient {
				t.Error("expected http.DefaultClient to be used")
			}
			if svc.timeout != 30*time.Second {
				t.Errorf("expected 30s timeout, got %v", svc.timeout)
			}
			if svc.userAgent != defaultUserAgent {
				t.Errorf("expected default user agent, got %q", svc.userAgent)
			}
		})

		t.Run("Custom Options", func(t *testing.T) {
			client := &http.Client{}
			svc := NewCatalogService(CatalogOpts{HTTPClient: client, Timeout: time.Second, UserAgent: "test/1"})

			if svc.httpClient != client {
				t.Error("expected custom client to be used")
			}
			if svc.timeout != time.Second {
				t.Errorf("expected 1s timeout, got %v", svc.timeout)
			}
		})
	})

	t.Run("Fetch", func(t *testing.T) {
		t.Run("Successful Request", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodGet {
					t.Errorf("expected GET method, got %s", r.Method)
				}
				if ua := r.Header.Get("User-Agent"); ua != "test/1" {
					t.Errorf("expected user agent 'test/1', got %q", ua)
				}
				w.Write([]byte("<html></html>"))
			}))
			defer server.Close()

			svc := NewCatalogService(CatalogOpts{UserAgent: "test/1"})
			body, err := svc.Fetch(context.Background(), server.URL)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if string(body) != "<html></html>" {
				t.Errorf("unexpected body %q", body)
			}
		})

		t.Run("Invalid URL", func(t *testing.T) {
			svc := NewCatalogService(CatalogOpts{})
			_, err := svc.Fetch(context.Background(), "file:///etc/passwd")
			if !errors.Is(err, shared.ErrInvalidURL) {
				t.Errorf("expected ErrInvalidURL, got %v", err)
			}
		})

		t.Run("Status Error", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "gone", http.StatusNotFound)
			}))
			defer server.Close()

			svc := NewCatalogService(CatalogOpts{})
			_, err := svc.Fetch(context.Background(), server.URL)
			if code := shared.StatusCode(err); code != http.StatusNotFound {
				t.Errorf("expected status 404, got %d (%v)", code, err)
			}
		})

		t.Run("Whitespace Body", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(" \n\t "))
			}))
			defer server.Close()

			svc := NewCatalogService(CatalogOpts{})
			_, err := svc.Fetch(context.Background(), server.URL)
			if !errors.Is(err, shared.ErrEmptyResponse) {
				t.Errorf("expected ErrEmptyResponse, got %v", err)
			}
		})

		t.Run("Timeout", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-r.Context().Done():
				case <-time.After(2 * time.Second):
				}
			}))
			defer server.Close()

			svc := NewCatalogService(CatalogOpts{Timeout: 20 * time.Millisecond})
			_, err := svc.Fetch(context.Background(), server.URL)
			if !errors.Is(err, shared.ErrTimeout) {
				t.Errorf("expected ErrTimeout, got %v", err)
			}
		})

		t.Run("Cancelled", func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			svc := NewCatalogService(CatalogOpts{})
			_, err := svc.Fetch(ctx, "http://example.com")
			if !errors.Is(err, shared.ErrCancelled) {
				t.Errorf("expected ErrCancelled, got %v", err)
			}
		})

		t.Run("Network Failure", func(t *testing.T) {
			client := &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("connection refused"))}

			svc := NewCatalogService(CatalogOpts{HTTPClient: client})
			_, err := svc.Fetch(context.Background(), "http://example.com")
			if !errors.Is(err, shared.ErrNetwork) {
				t.Errorf("expected ErrNetwork, got %v", err)
			}
			if !shared.IsTransient(err) {
				t.Error("expected network failure to be transient")
			}
		})

		t.Run("Body Read Failure", func(t *testing.T) {
			client := &http.Client{Transport: tu.NewMockRoundTripper(&http.Response{
				StatusCode: http.StatusOK,
				Body:       &tu.FCloser{},
			}, nil)}

			svc := NewCatalogService(CatalogOpts{HTTPClient: client})
			_, err := svc.Fetch(context.Background(), "http://example.com")
			if !errors.Is(err, shared.ErrNetwork) {
				t.Errorf("expected ErrNetwork, got %v", err)
			}
		})
	})

	t.Run("FetchCatalog", func(t *testing.T) {
		page := tu.CatalogPage(
			tu.CatalogEntry{Name: "Tractor", Version: "1.0.0.0", Filename: "FS22_Tractor.zip", Active: "Yes", DownloadRef: "mods/FS22_Tractor.zip"},
			tu.CatalogEntry{Name: "Plow", Version: "2.1.0.0", Filename: "FS22_Plow.zip", Active: "No", DownloadRef: "mods/FS22_Plow.zip"},
		)

		t.Run("Resolves Against Catalog URL", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write(page)
			}))
			defer server.Close()

			svc := NewCatalogService(CatalogOpts{})
			mods, err := svc.FetchCatalog(context.Background(), server.URL+"/index.html")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(mods) != 2 {
				t.Fatalf("expected 2 mods, got %d", len(mods))
			}
			if want := server.URL + "/mods/FS22_Tractor.zip"; mods[0].DownloadURL != want {
				t.Errorf("expected download URL %q, got %q", want, mods[0].DownloadURL)
			}
			if mods[1].IsActive {
				t.Error("expected second mod to be inactive")
			}
		})

		t.Run("Configured Base URL", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write(page)
			}))
			defer server.Close()

			svc := NewCatalogService(CatalogOpts{BaseURL: "http://files.example.com/"})
			mods, err := svc.FetchCatalog(context.Background(), server.URL)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if want := "http://files.example.com/mods/FS22_Plow.zip"; mods[1].DownloadURL != want {
				t.Errorf("expected download URL %q, got %q", want, mods[1].DownloadURL)
			}
		})

		t.Run("Propagates Fetch Errors", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
			}))
			defer server.Close()

			svc := NewCatalogService(CatalogOpts{})
			mods, err := svc.FetchCatalog(context.Background(), server.URL)
			if err == nil {
				t.Fatal("expected error")
			}
			if mods != nil {
				t.Errorf("expected no partial catalog, got %v", mods)
			}
		})
	})
}
