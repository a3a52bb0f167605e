// Package affiliate rewrites the monetization tag on product URLs.
package affiliate

import (
	"net/url"
)

// Rewrite replaces or injects the tag query parameter on rawURL, leaving the
// path and every other query parameter intact. Applying it twice with the
// same tag yields the same URL as applying it once.
func Rewrite(rawURL, tag string) (string, bool) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL, false
	}

	query := parsed.Query()
	if query.Get("tag") == tag {
		return parsed.String(), true
	}
	query.Del("tag")
	query.Set("tag", tag)
	parsed.RawQuery = query.Encode()
	return parsed.String(), true
}
