// Package validator enforces the structural and business rules a candidate
// must satisfy before it becomes an emitted deal.
package validator

import (
	"fmt"
	"strings"

	playground "github.com/go-playground/validator/v10"

	"github.com/dealscout/dealscout/internal/models"
	"github.com/dealscout/dealscout/internal/patterns"
)

// Reason classifies why a candidate was rejected. Reasons are for logging;
// rejected candidates are dropped silently, never surfaced as errors.
type Reason string

const (
	ReasonMissingField    Reason = "MissingField"
	ReasonInvalidID       Reason = "InvalidId"
	ReasonPriceOutOfRange Reason = "PriceOutOfRange"
	ReasonDiscountTooLow  Reason = "DiscountTooLow"
	ReasonTitleTooShort   Reason = "TitleTooShort"
)

type Validator struct {
	validate      *playground.Validate
	minDiscount   int
	maxPriceMinor int64
}

func New(minDiscount int, maxPriceMinor int64) *Validator {
	return &Validator{
		validate:      playground.New(),
		minDiscount:   minDiscount,
		maxPriceMinor: maxPriceMinor,
	}
}

// Check applies the business rules to a candidate. The first failing rule
// wins; accept is true only when none apply.
func (v *Validator) Check(c models.DealCandidate) (Reason, bool) {
	if c.ProductID == "" || strings.TrimSpace(c.Title) == "" || c.CurrentPriceMinor == 0 {
		return ReasonMissingField, false
	}
	if !patterns.ValidID(c.ProductID) {
		return ReasonInvalidID, false
	}
	if c.CurrentPriceMinor <= 0 || c.CurrentPriceMinor > v.maxPriceMinor {
		return ReasonPriceOutOfRange, false
	}
	if c.DiscountPercent < v.minDiscount {
		return ReasonDiscountTooLow, false
	}
	if len([]rune(strings.TrimSpace(c.Title))) < 3 {
		return ReasonTitleTooShort, false
	}
	return "", true
}

// ValidateDeal runs the struct-tag validation on a frozen deal as a final
// guard before it is emitted.
func (v *Validator) ValidateDeal(d models.Deal) error {
	if err := v.validate.Struct(d); err != nil {
		return fmt.Errorf("deal validation failed: %w", err)
	}
	return nil
}
