// Package resolver turns product URLs, including shortened ones, into
// canonical 10-character product ids.
package resolver

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/dealscout/dealscout/internal/patterns"
)

// IDMatcher is the slice of the pattern library the resolver needs.
type IDMatcher interface {
	ProductID(path string) (string, bool)
	IsShortLink(host string) bool
}

const defaultTimeout = 5 * time.Second

type Resolver struct {
	matcher IDMatcher
	client  *http.Client
	timeout time.Duration
}

func New(matcher IDMatcher) *Resolver {
	return &Resolver{
		matcher: matcher,
		client:  &http.Client{Timeout: defaultTimeout},
		timeout: defaultTimeout,
	}
}

// Resolve extracts the canonical product id from rawURL. Short links are
// expanded first with a single bounded redirect-follow. Malformed ids,
// unexpandable links and timeouts are all expected and yield ok=false;
// nothing here is an error the caller should propagate.
func (r *Resolver) Resolve(ctx context.Context, rawURL string) (id string, ok bool) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}

	if r.matcher.IsShortLink(parsed.Hostname()) {
		expanded, ok := r.expand(ctx, rawURL)
		if !ok {
			return "", false
		}
		parsed, err = url.Parse(expanded)
		if err != nil {
			return "", false
		}
	}

	// Query string and fragment never carry the id and may confuse the
	// bare-segment matcher, so match against the path alone.
	token, found := r.matcher.ProductID(parsed.Path)
	if !found || !patterns.ValidID(token) {
		return "", false
	}
	return token, true
}

// expand follows the short link's redirect chain with one HEAD request and
// returns the final URL. Failure to expand drops the message, not the batch.
func (r *Resolver) expand(ctx context.Context, shortURL string) (string, bool) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, shortURL, nil)
	if err != nil {
		return "", false
	}

	resp, err := r.client.Do(req)
	if err != nil {
		slog.Debug("Short link expansion failed", "url", shortURL, "error", err)
		return "", false
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		slog.Debug("Short link expansion rejected", "url", shortURL, "status", resp.StatusCode)
		return "", false
	}
	return resp.Request.URL.String(), true
}
