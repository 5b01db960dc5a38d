package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/modsync/internal/models"
	"github.com/desertthunder/modsync/internal/shared"
	"github.com/shirou/gopsutil/v3/disk"
)

const (
	defaultChunkSize = 32 * 1024
	partSuffix       = ".part"
)

// DownloadService writes mod archives into a profile's mod folder.
type DownloadService struct {
	httpClient     *http.Client
	timeout        time.Duration
	userAgent      string
	chunkSize      int
	checkDiskSpace bool
	logger         *log.Logger
	freeSpace      func(ctx context.Context, dir string) (uint64, error)
}

// DownloadOpts configures a [DownloadService].
type DownloadOpts struct {
	HTTPClient     *http.Client
	Timeout        time.Duration // Default: 2m
	UserAgent      string
	ChunkSize      int // Default: 32KiB
	CheckDiskSpace bool
	Logger         *log.Logger
}

// NewDownloadService creates a new DownloadService, filling unset options with defaults.
func NewDownloadService(opts DownloadOpts) *DownloadService {
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 2 * time.Minute
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = defaultChunkSize
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(io.Discard)
	}

	return &DownloadService{
		httpClient:     opts.HTTPClient,
		timeout:        opts.Timeout,
		userAgent:      opts.UserAgent,
		chunkSize:      opts.ChunkSize,
		checkDiskSpace: opts.CheckDiskSpace,
		logger:         opts.Logger,
		freeSpace:      diskFree,
	}
}

func diskFree(ctx context.Context, dir string) (uint64, error) {
	usage, err := disk.UsageWithContext(ctx, dir)
	if err != nil {
		return 0, err
	}
	return usage.Free, nil
}

// Download fetches remote.DownloadURL into destDir/remote.FileName.
//
// onProgress receives a percentage in [0, 100] after every chunk when the server announces a length.
// A status >= 400 fails before anything is written. When the transfer breaks, a file that existed
// before the call is left untouched; otherwise a short partial file is removed. A transfer that
// already received every announced byte is kept even if the connection errors afterwards.
func (d *DownloadService) Download(ctx context.Context, remote models.RemoteModRecord, destDir string, onProgress func(percent float64)) error {
	fileName := filepath.Base(strings.TrimSpace(remote.FileName))
	if fileName == "" || fileName == "." || fileName == ".." || fileName == string(filepath.Separator) {
		return fmt.Errorf("%w: mod %q has no file name", shared.ErrInvalidInput, remote.Name)
	}

	u, err := ValidateURL(remote.DownloadURL)
	if err != nil {
		return err
	}

	if ctx.Err() != nil {
		return fmt.Errorf("download %s: %w", fileName, shared.ErrCancelled)
	}

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("failed to create mod folder: %w", err)
	}

	dest := filepath.Join(destDir, fileName)
	_, statErr := os.Stat(dest)
	existed := statErr == nil

	reqCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", shared.ErrInvalidURL, err)
	}
	req.Header.Set("User-Agent", d.userAgent)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return classifyError(ctx, "download "+fileName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return &shared.HTTPStatusError{Code: resp.StatusCode, Status: resp.Status, URL: u.String()}
	}

	expected := max(resp.ContentLength, 0)
	if d.checkDiskSpace && expected > 0 {
		if err := d.ensureSpace(ctx, destDir, uint64(expected)); err != nil {
			return err
		}
	}

	part := dest + partSuffix
	f, err := os.Create(part)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", part, err)
	}

	written, copyErr := d.copyChunks(reqCtx, f, resp.Body, expected, onProgress)
	if err := f.Close(); err != nil && copyErr == nil {
		copyErr = fmt.Errorf("failed to close %s: %w", part, err)
	}

	cancelled := ctx.Err() != nil
	complete := expected > 0 && written >= expected

	if copyErr == nil || (complete && !cancelled) {
		if copyErr != nil {
			d.logger.Warn("connection error after full transfer", "file", fileName, "bytes", written, "error", copyErr)
		}
		if err := os.Rename(part, dest); err != nil {
			_ = os.Remove(part)
			return fmt.Errorf("failed to move %s into place: %w", fileName, err)
		}
		d.logger.Debug("downloaded", "file", fileName, "size", shared.FormatSize(written))
		return nil
	}

	d.discardPartial(part, dest, existed, written, expected)

	if cancelled {
		return fmt.Errorf("download %s: %w", fileName, shared.ErrCancelled)
	}
	return classifyError(ctx, "download "+fileName, copyErr)
}

// discardPartial applies the cleanup policy for a broken transfer.
func (d *DownloadService) discardPartial(part, dest string, existed bool, written, expected int64) {
	switch {
	case existed:
		_ = os.Remove(part)
	case expected > 0 && written < expected:
		_ = os.Remove(part)
		d.logger.Debug("removed partial download", "file", filepath.Base(dest), "bytes", written, "expected", expected)
	default:
		if err := os.Rename(part, dest); err != nil {
			_ = os.Remove(part)
		}
	}
}

func (d *DownloadService) copyChunks(ctx context.Context, w io.Writer, r io.Reader, expected int64, onProgress func(float64)) (int64, error) {
	buf := make([]byte, d.chunkSize)
	var written int64

	for {
		if err := ctx.Err(); err != nil {
			return written, err
		}

		n, rerr := r.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				return written, fmt.Errorf("failed to write file: %w", werr)
			}
			written += int64(n)

			if onProgress != nil && expected > 0 {
				onProgress(min(float64(written)/float64(expected)*100, 100))
			}
		}

		if errors.Is(rerr, io.EOF) {
			return written, nil
		}
		if rerr != nil {
			return written, rerr
		}
	}
}

func (d *DownloadService) ensureSpace(ctx context.Context, dir string, need uint64) error {
	free, err := d.freeSpace(ctx, dir)
	if err != nil {
		d.logger.Debug("disk usage unavailable", "dir", dir, "error", err)
		return nil
	}

	if free < need {
		return fmt.Errorf("%w: need %s, %s free in %s",
			shared.ErrInsufficientSpace, shared.FormatSize(int64(need)), shared.FormatSize(int64(free)), dir)
	}
	return nil
}
