package promo

import (
	"context"
	"fmt"
	"time"

	"compucar-promo/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// engine implements Validator against a promo Store.
//
// Validation is optimistic and read-only: limit checks read current counters
// without locking anything. The authoritative re-check happens at apply time
// inside the redemption transaction.
type engine struct {
	store  Store
	logger zerolog.Logger
	now    func() time.Time
}

// NewValidator creates a new promo code validator.
func NewValidator(store Store, logger zerolog.Logger) Validator {
	return &engine{
		store:  store,
		logger: logger.With().Str("component", "promo-validator").Logger(),
		now:    time.Now,
	}
}

// Validate checks the code against the cart snapshot and subtotal.
// Checks run in a fixed order and the first failure short-circuits with its
// reason, so callers always see the most specific rejection.
func (e *engine) Validate(ctx context.Context, code, userID string, items []model.CartItem, subtotal decimal.Decimal) (model.ValidationResult, error) {
	if err := checkInput(code, userID, items, subtotal); err != nil {
		return model.ValidationResult{}, err
	}

	normalized := NormalizeCode(code)

	p, err := e.store.GetByCode(ctx, normalized)
	if err != nil {
		return model.ValidationResult{}, fmt.Errorf("failed to load promo code: %w", err)
	}
	if p == nil {
		e.logger.Debug().Str("code", normalized).Msg("promo code not found")
		return model.InvalidResult(model.ReasonNotFound), nil
	}

	if !p.IsActive {
		return model.InvalidResult(model.ReasonInactive), nil
	}

	now := e.now()
	if p.StartsAt != nil && now.Before(*p.StartsAt) {
		return model.InvalidResult(model.ReasonNotYetValid), nil
	}
	if p.ExpiresAt != nil && now.After(*p.ExpiresAt) {
		return model.InvalidResult(model.ReasonExpired), nil
	}

	if p.MinimumSubtotal != nil && subtotal.LessThan(*p.MinimumSubtotal) {
		e.logger.Debug().
			Str("code", normalized).
			Str("subtotal", subtotal.String()).
			Str("minimum", p.MinimumSubtotal.String()).
			Msg("subtotal below minimum")
		return model.InvalidResult(model.ReasonBelowMinimum), nil
	}

	if p.Restricted() && !anyItemMatches(p, items) {
		return model.InvalidResult(model.ReasonNotApplicable), nil
	}

	if p.MaxRedemptions != nil && p.RedemptionCount >= *p.MaxRedemptions {
		return model.InvalidResult(model.ReasonGlobalLimit), nil
	}

	// Per-user limit is checked last so the unlimited common case skips the
	// extra redemptions read.
	if p.PerUserLimit != nil {
		used, err := e.store.CountUserRedemptions(ctx, p.ID, userID)
		if err != nil {
			return model.ValidationResult{}, fmt.Errorf("failed to count user redemptions: %w", err)
		}
		if used >= *p.PerUserLimit {
			return model.InvalidResult(model.ReasonUserLimit), nil
		}
	}

	discount := Discount(p, subtotal)

	e.logger.Debug().
		Str("code", normalized).
		Str("discount", discount.String()).
		Msg("promo code validated")

	return model.ValidResult(normalized, discount), nil
}

// Discount computes the discount a code yields on a subtotal. The result is
// rounded to cents and clamped to [0, subtotal].
func Discount(p *model.PromoCode, subtotal decimal.Decimal) decimal.Decimal {
	var discount decimal.Decimal
	switch p.DiscountType {
	case model.DiscountPercentage:
		discount = subtotal.Mul(p.DiscountValue).Div(oneHundred).Round(2)
	case model.DiscountFixed:
		discount = p.DiscountValue
	default:
		return decimal.Zero
	}

	if discount.IsNegative() {
		return decimal.Zero
	}
	if discount.GreaterThan(subtotal) {
		return subtotal
	}
	return discount
}

// checkInput guards the validation contract: non-empty code and cart,
// positive amounts, and a subtotal the cart items can actually support.
func checkInput(code, userID string, items []model.CartItem, subtotal decimal.Decimal) error {
	if NormalizeCode(code) == "" || userID == "" || len(items) == 0 || !subtotal.IsPositive() {
		return model.ErrInvalidInput
	}

	itemsTotal := decimal.Zero
	for _, item := range items {
		if item.ProductID == "" || item.Quantity <= 0 || !item.Price.IsPositive() {
			return model.ErrInvalidInput
		}
		itemsTotal = itemsTotal.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	// The caller-supplied subtotal is the discount base. A subtotal larger
	// than the cart itself cannot be honest, so it is rejected instead of
	// trusted.
	if itemsTotal.LessThan(subtotal) {
		return model.ErrInvalidInput
	}

	return nil
}

// anyItemMatches reports whether at least one cart item falls inside the
// code's product or category restriction lists.
func anyItemMatches(p *model.PromoCode, items []model.CartItem) bool {
	products := make(map[string]bool, len(p.ProductIDs))
	for _, id := range p.ProductIDs {
		products[id] = true
	}
	categories := make(map[string]bool, len(p.CategoryIDs))
	for _, id := range p.CategoryIDs {
		categories[id] = true
	}

	for _, item := range items {
		if products[item.ProductID] || categories[item.CategoryID] {
			return true
		}
	}
	return false
}
