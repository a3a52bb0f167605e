// Package extractor turns one raw message into a deal candidate. All parsing
// is deterministic string work; the only side effect is the resolver's
// short-link lookup.
package extractor

import (
	"context"
	"log/slog"
	"math"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/dealscout/dealscout/internal/affiliate"
	"github.com/dealscout/dealscout/internal/models"
	"github.com/dealscout/dealscout/internal/patterns"
)

const (
	placeholderTitle = "Amazon Deal"
	maxTitleRunes    = 200
	minFallbackRunes = 10
)

// IDResolver abstracts the identifier resolver so tests can avoid network.
type IDResolver interface {
	Resolve(ctx context.Context, rawURL string) (string, bool)
}

type Extractor struct {
	lib           *patterns.Library
	resolver      IDResolver
	affiliateTag  string
	country       string
	currency      string
	primaryDomain string
}

func New(lib *patterns.Library, res IDResolver, affiliateTag, country, currency, primaryDomain string) *Extractor {
	return &Extractor{
		lib:           lib,
		resolver:      res,
		affiliateTag:  affiliateTag,
		country:       country,
		currency:      currency,
		primaryDomain: primaryDomain,
	}
}

// Extract builds a candidate from msg. ok is false for every expected NoDeal
// outcome (no link, no price, unresolvable id); those are normal filtering
// results, logged at debug level only.
func (e *Extractor) Extract(ctx context.Context, msg models.RawMessage) (models.DealCandidate, bool) {
	text := msg.Text
	if strings.TrimSpace(text) == "" {
		return models.DealCandidate{}, false
	}

	sourceURL, found := e.lib.FindURL(text)
	if !found {
		return models.DealCandidate{}, false
	}

	id, found := e.resolver.Resolve(ctx, sourceURL)
	if !found {
		slog.Debug("No product id resolved", "url", sourceURL, "message_id", msg.MessageID)
		return models.DealCandidate{}, false
	}

	current, list, found := e.prices(text)
	if !found {
		slog.Debug("No price found", "id", id, "message_id", msg.MessageID)
		return models.DealCandidate{}, false
	}

	discount := e.discount(text, current, list)

	candidate := models.DealCandidate{
		ProductID:         id,
		Title:             e.title(text, sourceURL),
		CurrentPriceMinor: current,
		ListPriceMinor:    list,
		DiscountPercent:   discount,
		SourceURL:         sourceURL,
		AffiliateURL:      e.affiliateURL(sourceURL, id),
		Country:           e.country,
		PhotoRef:          msg.PhotoRef,
		MessageID:         msg.MessageID,
		ChannelID:         msg.ChannelID,
		ExtractedAt:       time.Now(),
	}
	return candidate, true
}

// prices collects every monetary value in the text, dedupes and sorts them.
// One value is the current price; with two or more, the lowest is current
// and the highest is the list price, whatever order the message printed
// them in.
func (e *Extractor) prices(text string) (current, list int64, ok bool) {
	signals := e.lib.Prices(text)
	if len(signals) == 0 {
		return 0, 0, false
	}

	seen := make(map[int64]bool, len(signals))
	values := make([]int64, 0, len(signals))
	for _, s := range signals {
		if !seen[s.Minor] {
			seen[s.Minor] = true
			values = append(values, s.Minor)
		}
	}
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })

	current = values[0]
	list = values[len(values)-1]
	return current, list, true
}

// discount prefers an explicitly stated percentage; otherwise it is
// reconstructed from the two prices, clamped to [0,100]; otherwise 0.
func (e *Extractor) discount(text string, current, list int64) int {
	if d, found := e.lib.Discount(text); found {
		return d
	}
	if list > current && list > 0 {
		d := int(math.Round(float64(list-current) / float64(list) * 100))
		if d < 0 {
			d = 0
		}
		if d > 100 {
			d = 100
		}
		return d
	}
	return 0
}

// title picks the nearest qualifying line above the line holding the product
// URL, then falls back to the first qualifying line of at least
// minFallbackRunes anywhere in the message, then to a fixed placeholder.
func (e *Extractor) title(text, sourceURL string) string {
	lines := strings.Split(text, "\n")

	urlLine := -1
	for i, line := range lines {
		if strings.Contains(line, sourceURL) {
			urlLine = i
			break
		}
	}

	for i := urlLine - 1; i >= 0; i-- {
		if candidate := strings.TrimSpace(lines[i]); candidate != "" && e.qualifies(candidate) {
			return e.finishTitle(candidate)
		}
	}

	for _, line := range lines {
		candidate := strings.TrimSpace(line)
		if e.qualifies(candidate) && len([]rune(candidate)) >= minFallbackRunes {
			return e.finishTitle(candidate)
		}
	}

	return placeholderTitle
}

// qualifies rejects lines that are prices, discounts or boilerplate rather
// than a product name.
func (e *Extractor) qualifies(line string) bool {
	if line == "" {
		return false
	}
	if strings.Contains(line, e.currency) || strings.Contains(line, "%") {
		return false
	}
	if strings.Contains(line, "http://") || strings.Contains(line, "https://") {
		return false
	}
	if strings.HasPrefix(line, "#") {
		return false
	}
	lower := strings.ToLower(line)
	for _, token := range []string{"affiliate", "sponsored", "as an amazon associate"} {
		if strings.Contains(lower, token) {
			return false
		}
	}
	return true
}

func (e *Extractor) finishTitle(title string) string {
	// Trailing hashtags and disclosure text are noise, not product name.
	if idx := strings.Index(title, "#"); idx > 0 {
		title = title[:idx]
	}
	title = strings.TrimSpace(strings.Trim(title, "-–|• "))
	if title == "" {
		return placeholderTitle
	}

	runes := []rune(title)
	if len(runes) > maxTitleRunes {
		title = string(runes[:maxTitleRunes-3]) + "..."
	}
	return title
}

// affiliateURL rewrites the monetization tag. Short links cannot carry a tag
// directly, so they become a canonical product URL on the primary domain.
func (e *Extractor) affiliateURL(sourceURL, id string) string {
	if parsed, err := url.Parse(sourceURL); err == nil && e.lib.IsShortLink(parsed.Hostname()) {
		canonical := "https://" + e.primaryDomain + "/dp/" + id
		rewritten, _ := affiliate.Rewrite(canonical, e.affiliateTag)
		return rewritten
	}
	rewritten, _ := affiliate.Rewrite(sourceURL, e.affiliateTag)
	return rewritten
}
