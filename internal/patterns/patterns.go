// Package patterns holds the ordered matcher sets used to pull prices,
// discounts and product ids out of raw promotional text. A Library is built
// from locale configuration so that country differences (currency symbol,
// decimal separator, store domains) never fork the matching code.
package patterns

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/dealscout/dealscout/internal/models"
)

var idTokenRegex = regexp.MustCompile(`^[A-Z0-9]{10}$`)

// ValidID reports whether s is a well-formed 10-character product id.
func ValidID(s string) bool {
	return idTokenRegex.MatchString(s)
}

type Library struct {
	price    []*regexp.Regexp
	discount []*regexp.Regexp
	id       []*regexp.Regexp
	url      *regexp.Regexp
	short    map[string]bool
}

// New builds a Library for one locale. currencySymbol and decimalSep come
// straight from config; domains are the hosts accepted as product links and
// shortDomains the hosts that need redirect expansion first.
func New(currencySymbol, decimalSep string, domains, shortDomains []string) *Library {
	sym := regexp.QuoteMeta(currencySymbol)
	sep := regexp.QuoteMeta(decimalSep)

	price := []*regexp.Regexp{
		regexp.MustCompile(sym + `\s?(\d+)` + sep + `(\d{2})`),
		regexp.MustCompile(`(\d+)` + sep + `(\d{2})\s*` + sym),
		regexp.MustCompile(`(?i)(?:price|now|deal|was|save|prezzo|ora|solo)[:\s]\s*` + sym + `?\s?(\d+)[.,](\d{2})`),
		regexp.MustCompile(sym + `\s?(\d+)[.,](\d{2})`),
	}

	// Every matcher requires discount context around the percentage. A bare
	// "N%" is not a discount claim: product text like "100% cotton" must fall
	// through to the price-derived computation instead.
	discount := []*regexp.Regexp{
		regexp.MustCompile(`(?i)(\d{1,3})\s*%\s*(?:off|discount|sconto)`),
		regexp.MustCompile(`(?i)(?:save|sconto del?)\s*(\d{1,3})\s*%`),
		regexp.MustCompile(`(?i)(\d{1,3})\s*%\s*price\s*drop`),
		regexp.MustCompile(`-\s?(\d{1,3})\s*%`),
	}

	id := []*regexp.Regexp{
		regexp.MustCompile(`/dp/([A-Z0-9]{10})(?:[/?]|$)`),
		regexp.MustCompile(`/gp/product/([A-Z0-9]{10})(?:[/?]|$)`),
		regexp.MustCompile(`/([A-Z0-9]{10})(?:[/?]|$)`),
	}

	all := make([]string, 0, len(domains)+len(shortDomains))
	for _, d := range append(append([]string{}, domains...), shortDomains...) {
		all = append(all, regexp.QuoteMeta(d))
	}
	url := regexp.MustCompile(`https?://(?:` + strings.Join(all, "|") + `)/[^\s]+`)

	short := make(map[string]bool, len(shortDomains))
	for _, d := range shortDomains {
		short[d] = true
	}

	return &Library{price: price, discount: discount, id: id, url: url, short: short}
}

// FindURL returns the first product or short link embedded in text.
func (l *Library) FindURL(text string) (string, bool) {
	m := l.url.FindString(text)
	if m == "" {
		return "", false
	}
	return m, true
}

// IsShortLink reports whether host is one of the configured short-link hosts.
func (l *Library) IsShortLink(host string) bool {
	return l.short[host]
}

// Prices runs every price matcher over the whole text and returns all
// monetary values found, in minor units. Every matcher contributes; later
// matchers are not skipped when earlier ones hit, because a message that
// prints both the current and the original price usually needs two different
// patterns to surface both.
func (l *Library) Prices(text string) []models.PriceSignal {
	var signals []models.PriceSignal
	for _, re := range l.price {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			major, err1 := strconv.ParseInt(m[1], 10, 64)
			minor, err2 := strconv.ParseInt(m[2], 10, 64)
			if err1 != nil || err2 != nil {
				continue
			}
			signals = append(signals, models.PriceSignal{
				Minor:      major*100 + minor,
				Confidence: models.PriceInferred,
			})
		}
	}
	return signals
}

// Discount returns the first explicitly stated discount percentage in text.
// Matchers run in declared order; the first valid hit wins.
func (l *Library) Discount(text string) (int, bool) {
	for _, re := range l.discount {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		d, err := strconv.Atoi(m[1])
		if err != nil || d <= 0 || d > 100 {
			continue
		}
		return d, true
	}
	return 0, false
}

// ProductID extracts a candidate id token from a URL path. Matchers run in
// declared order; the first hit wins. The token is not validated here.
func (l *Library) ProductID(path string) (string, bool) {
	for _, re := range l.id {
		if m := re.FindStringSubmatch(path); m != nil {
			return m[1], true
		}
	}
	return "", false
}
