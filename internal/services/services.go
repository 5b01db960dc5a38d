// package services contains the HTTP clients used by a sync run
package services

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/desertthunder/modsync/internal/shared"
)

const defaultUserAgent = "modsync/0.1"

// ValidateURL accepts only absolute http and https URLs.
func ValidateURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: no URL configured", shared.ErrInvalidURL)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidURL, err)
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return nil, fmt.Errorf("%w: %q must start with http:// or https://", shared.ErrInvalidURL, raw)
	}

	if u.Host == "" {
		return nil, fmt.Errorf("%w: %q has no host", shared.ErrInvalidURL, raw)
	}

	return u, nil
}

// classifyError maps a transport failure onto the shared taxonomy.
//
// parent is the caller's context: its cancellation means the run was aborted, while a deadline on the derived
// request context means the fixed timeout elapsed.
func classifyError(parent context.Context, op string, err error) error {
	if parent.Err() != nil {
		return fmt.Errorf("%s: %w", op, shared.ErrCancelled)
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %s: %w", shared.ErrTimeout, op, err)
	}

	return fmt.Errorf("%w: %s: %w", shared.ErrNetwork, op, err)
}
