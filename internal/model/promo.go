package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func init() {
	// Money fields are plain JSON numbers on the wire, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// DiscountType determines how a promo code's value is applied to a subtotal.
type DiscountType string

const (
	DiscountPercentage DiscountType = "PERCENTAGE"
	DiscountFixed      DiscountType = "FIXED_AMOUNT"
)

// Valid reports whether the discount type is one of the known kinds.
func (t DiscountType) Valid() bool {
	return t == DiscountPercentage || t == DiscountFixed
}

// PromoCode represents a promotional code record.
//
// Optional constraints are pointers: nil means unbounded. Codes are stored
// with the code string uppercased and are soft-deleted via IsActive so that
// historical orders keep a valid reference.
type PromoCode struct {
	ID              uuid.UUID        `json:"id" db:"id"`
	Code            string           `json:"code" db:"code"`
	DiscountType    DiscountType     `json:"discountType" db:"discount_type"`
	DiscountValue   decimal.Decimal  `json:"discountValue" db:"discount_value"`
	MinimumSubtotal *decimal.Decimal `json:"minimumSubtotal,omitempty" db:"minimum_subtotal"`
	ProductIDs      []string         `json:"productIds,omitempty" db:"product_ids"`
	CategoryIDs     []string         `json:"categoryIds,omitempty" db:"category_ids"`
	MaxRedemptions  *int             `json:"maxRedemptions,omitempty" db:"max_redemptions"`
	PerUserLimit    *int             `json:"perUserLimit,omitempty" db:"per_user_limit"`
	IsActive        bool             `json:"isActive" db:"is_active"`
	StartsAt        *time.Time       `json:"startsAt,omitempty" db:"starts_at"`
	ExpiresAt       *time.Time       `json:"expiresAt,omitempty" db:"expires_at"`
	RedemptionCount int              `json:"redemptionCount" db:"redemption_count"`
	CreatedAt       time.Time        `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time        `json:"updatedAt" db:"updated_at"`
}

// Restricted reports whether the code is limited to specific products or
// categories.
func (p *PromoCode) Restricted() bool {
	return len(p.ProductIDs) > 0 || len(p.CategoryIDs) > 0
}

// Redemption records one successful application of a promo code to an order.
type Redemption struct {
	CodeID         uuid.UUID       `json:"codeId" db:"code_id"`
	OrderID        uuid.UUID       `json:"orderId" db:"order_id"`
	UserID         string          `json:"userId" db:"user_id"`
	DiscountAmount decimal.Decimal `json:"discountAmount" db:"discount_amount"`
	RedeemedAt     time.Time       `json:"redeemedAt" db:"redeemed_at"`
}
