package models

import (
	"time"
)

// RawMessage is one message pulled from a source channel. It lives for a
// single extraction cycle.
type RawMessage struct {
	Text      string
	PhotoRef  string // file reference of the largest attached photo, if any
	MessageID int
	ChannelID int64
}

// PriceConfidence tags how a price signal was obtained.
type PriceConfidence int

const (
	PriceExplicitCurrent PriceConfidence = iota
	PriceExplicitList
	PriceInferred
)

// PriceSignal is a monetary amount in minor currency units (pence, cents).
type PriceSignal struct {
	Minor      int64
	Confidence PriceConfidence
}

// DealCandidate is built incrementally during extraction. Fields stay zero
// until the corresponding stage fills them in.
type DealCandidate struct {
	ProductID         string
	Title             string
	CurrentPriceMinor int64
	ListPriceMinor    int64
	DiscountPercent   int
	SourceURL         string
	AffiliateURL      string
	Country           string
	PhotoRef          string
	MessageID         int
	ChannelID         int64
	ExtractedAt       time.Time
}

// Deal is an accepted, validated candidate. Immutable once emitted.
type Deal struct {
	ProductID         string    `json:"asin" firestore:"asin" validate:"required,len=10"`
	Title             string    `json:"title" firestore:"title" validate:"required,min=3"`
	CurrentPriceMinor int64     `json:"current_price_minor" firestore:"currentPriceMinor" validate:"gt=0"`
	ListPriceMinor    int64     `json:"list_price_minor" firestore:"listPriceMinor" validate:"gtecsfield=CurrentPriceMinor"`
	DiscountPercent   int       `json:"discount_pct" firestore:"discountPercent" validate:"gte=0,lte=100"`
	SourceURL         string    `json:"source_url" firestore:"sourceURL" validate:"required,url"`
	AffiliateURL      string    `json:"affiliate_url" firestore:"affiliateURL" validate:"required,url"`
	Country           string    `json:"country" firestore:"country"`
	PhotoRef          string    `json:"photo_ref,omitempty" firestore:"photoRef,omitempty"`
	ExtractedAt       time.Time `json:"scraped_at" firestore:"extractedAt"`
}

// FromCandidate freezes a candidate into an immutable Deal.
func FromCandidate(c DealCandidate) Deal {
	return Deal{
		ProductID:         c.ProductID,
		Title:             c.Title,
		CurrentPriceMinor: c.CurrentPriceMinor,
		ListPriceMinor:    c.ListPriceMinor,
		DiscountPercent:   c.DiscountPercent,
		SourceURL:         c.SourceURL,
		AffiliateURL:      c.AffiliateURL,
		Country:           c.Country,
		PhotoRef:          c.PhotoRef,
		ExtractedAt:       c.ExtractedAt,
	}
}
