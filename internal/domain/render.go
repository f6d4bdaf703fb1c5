package domain

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Sentinel errors for render operations. Handlers map these onto HTTP
// statuses; ErrConnectionLost additionally forces a browser teardown.
var (
	ErrInvalidRequest     = errors.New("invalid render request")
	ErrBrowserLaunch      = errors.New("browser launch failed")
	ErrBrowserUnavailable = errors.New("browser unavailable")
	ErrNavigation         = errors.New("page navigation failed")
	ErrConnectionLost     = errors.New("browser connection lost")
	ErrRasterization      = errors.New("pdf rasterization failed")
)

// RenderRequest is one unit of work: a resume preview URL plus the opaque
// session token the target page expects in its auth cookie.
type RenderRequest struct {
	TargetURL    string `json:"url"`
	SessionToken string `json:"token"`
}

// Validate rejects requests before any browser work happens.
func (r RenderRequest) Validate() error {
	if r.TargetURL == "" {
		return fmt.Errorf("%w: missing url parameter", ErrInvalidRequest)
	}
	if strings.TrimSpace(r.SessionToken) == "" {
		return fmt.Errorf("%w: missing or blank token parameter", ErrInvalidRequest)
	}
	return nil
}

// CookieHost extracts the host the session cookie must be scoped to.
func (r RenderRequest) CookieHost() (string, error) {
	u, err := url.Parse(r.TargetURL)
	if err != nil {
		return "", fmt.Errorf("%w: unparseable url %q: %v", ErrInvalidRequest, r.TargetURL, err)
	}
	if u.Hostname() == "" {
		return "", fmt.Errorf("%w: url %q has no host", ErrInvalidRequest, r.TargetURL)
	}
	return u.Hostname(), nil
}

// connectionSignatures are substrings that mark an error as coming from the
// browser process itself rather than the page being rendered. Matching one
// means the shared instance is unhealthy and must be replaced.
var connectionSignatures = []string{
	"ECONNRESET",
	"Target closed",
	"Session closed",
	"connection reset",
	"websocket: close",
}

// IsConnectionError reports whether err carries a connection-level
// signature anywhere in its chain.
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, sig := range connectionSignatures {
		if strings.Contains(msg, sig) {
			return true
		}
	}
	return false
}

// RenderRecord is the persisted outcome of one render attempt.
type RenderRecord struct {
	ID        uuid.UUID     `json:"id"`
	TargetURL string        `json:"target_url"`
	Status    string        `json:"status"`
	Error     string        `json:"error,omitempty"`
	Duration  time.Duration `json:"duration"`
	PDFBytes  int           `json:"pdf_bytes"`
	CreatedAt time.Time     `json:"created_at"`
}

// Render record statuses.
const (
	RenderSucceeded = "succeeded"
	RenderFailed    = "failed"
)

// NewRenderRecord builds a record for a finished attempt.
func NewRenderRecord(req RenderRequest, pdfBytes int, duration time.Duration, err error) *RenderRecord {
	rec := &RenderRecord{
		ID:        uuid.New(),
		TargetURL: req.TargetURL,
		Status:    RenderSucceeded,
		Duration:  duration,
		PDFBytes:  pdfBytes,
		CreatedAt: time.Now(),
	}
	if err != nil {
		rec.Status = RenderFailed
		rec.Error = err.Error()
	}
	return rec
}
