package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/modsync/internal/catalog"
	"github.com/desertthunder/modsync/internal/models"
	"github.com/desertthunder/modsync/internal/shared"
)

// CatalogService fetches and parses a server's mod listing page.
type CatalogService struct {
	httpClient *http.Client
	timeout    time.Duration
	userAgent  string
	baseURL    string
	logger     *log.Logger
}

// CatalogOpts configures a [CatalogService].
type CatalogOpts struct {
	HTTPClient *http.Client
	Timeout    time.Duration // Default: 30s
	UserAgent  string
	BaseURL    string // Base for relative links; empty resolves against the catalog URL
	Logger     *log.Logger
}

// NewCatalogService creates a new CatalogService, filling unset options with defaults.
func NewCatalogService(opts CatalogOpts) *CatalogService {
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(io.Discard)
	}

	return &CatalogService{
		httpClient: opts.HTTPClient,
		timeout:    opts.Timeout,
		userAgent:  opts.UserAgent,
		baseURL:    opts.BaseURL,
		logger:     opts.Logger,
	}
}

// Fetch retrieves the raw catalog document.
//
// Errors: [shared.ErrInvalidURL], [shared.ErrNetwork], [shared.ErrTimeout], [shared.ErrCancelled],
// [shared.ErrEmptyResponse] and [*shared.HTTPStatusError] for status codes >= 400.
func (c *CatalogService) Fetch(ctx context.Context, catalogURL string) ([]byte, error) {
	u, err := ValidateURL(catalogURL)
	if err != nil {
		return nil, err
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", shared.ErrInvalidURL, err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyError(ctx, "catalog request failed", err)
	}
	defer resp.Body.Close()

	c.logger.Debug("catalog response", "status", resp.StatusCode, "content_length", resp.ContentLength, "url", u.String())

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, &shared.HTTPStatusError{Code: resp.StatusCode, Status: resp.Status, URL: u.String()}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyError(ctx, "failed to read catalog", err)
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return nil, fmt.Errorf("%w: %s", shared.ErrEmptyResponse, u.String())
	}

	return body, nil
}

// FetchCatalog fetches the catalog and parses it into remote mod records.
//
// An unreadable document fails with [shared.ErrCatalogFormat]; no partial catalog is returned.
func (c *CatalogService) FetchCatalog(ctx context.Context, catalogURL string) ([]models.RemoteModRecord, error) {
	body, err := c.Fetch(ctx, catalogURL)
	if err != nil {
		return nil, err
	}

	base := c.baseURL
	if base == "" {
		base = catalogURL
	}

	mods, err := catalog.NewParser(base).Parse(body)
	if err != nil {
		c.logger.Error("catalog parse error", "error", err, "bytes", len(body))
		return nil, fmt.Errorf("%w: %v", shared.ErrCatalogFormat, err)
	}

	c.logger.Debug("parsed catalog", "mods", len(mods), "url", catalogURL)
	return mods, nil
}
