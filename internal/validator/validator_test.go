package validator

import (
	"testing"
	"time"

	"github.com/dealscout/dealscout/internal/models"
)

func goodCandidate() models.DealCandidate {
	return models.DealCandidate{
		ProductID:         "B0DS63GM2Z",
		Title:             "Kettle Deluxe 1.7L",
		CurrentPriceMinor: 999,
		ListPriceMinor:    1999,
		DiscountPercent:   50,
		SourceURL:         "https://www.amazon.co.uk/dp/B0DS63GM2Z",
		AffiliateURL:      "https://www.amazon.co.uk/dp/B0DS63GM2Z?tag=deals-21",
		Country:           "UK",
		ExtractedAt:       time.Now(),
	}
}

func TestCheck(t *testing.T) {
	v := New(10, 10000000)

	tests := []struct {
		name     string
		mutate   func(*models.DealCandidate)
		wantOK   bool
		wantWhy  Reason
	}{
		{
			name:   "valid candidate",
			mutate: func(*models.DealCandidate) {},
			wantOK: true,
		},
		{
			name:    "missing id",
			mutate:  func(c *models.DealCandidate) { c.ProductID = "" },
			wantWhy: ReasonMissingField,
		},
		{
			name:    "missing title",
			mutate:  func(c *models.DealCandidate) { c.Title = "   " },
			wantWhy: ReasonMissingField,
		},
		{
			name:    "missing price",
			mutate:  func(c *models.DealCandidate) { c.CurrentPriceMinor = 0 },
			wantWhy: ReasonMissingField,
		},
		{
			name:    "malformed id",
			mutate:  func(c *models.DealCandidate) { c.ProductID = "b0ds63gm2z" },
			wantWhy: ReasonInvalidID,
		},
		{
			name:    "id too short",
			mutate:  func(c *models.DealCandidate) { c.ProductID = "B0DS63" },
			wantWhy: ReasonInvalidID,
		},
		{
			name:    "price above ceiling",
			mutate:  func(c *models.DealCandidate) { c.CurrentPriceMinor = 10000001 },
			wantWhy: ReasonPriceOutOfRange,
		},
		{
			name:    "discount below threshold",
			mutate:  func(c *models.DealCandidate) { c.DiscountPercent = 9 },
			wantWhy: ReasonDiscountTooLow,
		},
		{
			name:    "title too short",
			mutate:  func(c *models.DealCandidate) { c.Title = "ab" },
			wantWhy: ReasonTitleTooShort,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := goodCandidate()
			tt.mutate(&c)
			reason, ok := v.Check(c)
			if ok != tt.wantOK {
				t.Fatalf("Check() ok = %v, want %v (reason %q)", ok, tt.wantOK, reason)
			}
			if !ok && reason != tt.wantWhy {
				t.Errorf("Check() reason = %q, want %q", reason, tt.wantWhy)
			}
		})
	}
}

func TestCheckZeroDiscountAllowed(t *testing.T) {
	v := New(0, 10000000)
	c := goodCandidate()
	c.DiscountPercent = 0
	if reason, ok := v.Check(c); !ok {
		t.Errorf("Check() rejected %q with min discount 0", reason)
	}
}

func TestValidateDeal(t *testing.T) {
	v := New(10, 10000000)

	deal := models.FromCandidate(goodCandidate())
	if err := v.ValidateDeal(deal); err != nil {
		t.Errorf("ValidateDeal(valid) = %v, want nil", err)
	}

	inverted := deal
	inverted.ListPriceMinor = deal.CurrentPriceMinor - 1
	if err := v.ValidateDeal(inverted); err == nil {
		t.Error("ValidateDeal accepted list price below current price")
	}

	noURL := deal
	noURL.AffiliateURL = "not a url"
	if err := v.ValidateDeal(noURL); err == nil {
		t.Error("ValidateDeal accepted malformed affiliate URL")
	}
}
