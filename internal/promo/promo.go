package promo

import (
	"context"
	"strings"

	"compucar-promo/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Validator determines whether a promo code applies to a cart and computes
// the discount amount.
type Validator interface {
	// Validate checks the code against the cart snapshot and subtotal.
	// Business rejections come back inside the ValidationResult; the error
	// return carries only storage failures and malformed input.
	Validate(ctx context.Context, code, userID string, items []model.CartItem, subtotal decimal.Decimal) (model.ValidationResult, error)
}

// Store is the read-only promo state the validator needs.
type Store interface {
	// GetByCode retrieves a promo code by its normalized code string,
	// nil when absent.
	GetByCode(ctx context.Context, code string) (*model.PromoCode, error)

	// CountUserRedemptions counts committed redemptions of a code by one user.
	CountUserRedemptions(ctx context.Context, codeID uuid.UUID, userID string) (int, error)
}

// NormalizeCode maps a user-supplied code to its canonical stored form.
// Lookups are case-insensitive.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
