package model

import "github.com/shopspring/decimal"

// InvalidReason is a human-readable reason a code was rejected during
// validation. Reasons are returned to the client verbatim.
type InvalidReason string

const (
	ReasonNotFound      InvalidReason = "code not found"
	ReasonInactive      InvalidReason = "code inactive"
	ReasonNotYetValid   InvalidReason = "not yet valid"
	ReasonExpired       InvalidReason = "expired"
	ReasonBelowMinimum  InvalidReason = "minimum not met"
	ReasonNotApplicable InvalidReason = "not applicable to cart contents"
	ReasonGlobalLimit   InvalidReason = "redemption limit reached"
	ReasonUserLimit     InvalidReason = "already used by this user"
)

// ValidationResult is the tagged outcome of validating a promo code against
// a cart. Every business rejection is a value carrying its reason; errors are
// reserved for storage and transport failures.
type ValidationResult struct {
	Valid          bool            `json:"valid"`
	Code           string          `json:"code,omitempty"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	Reason         InvalidReason   `json:"reason,omitempty"`
}

// ValidResult builds a successful result for the normalized code.
func ValidResult(code string, discount decimal.Decimal) ValidationResult {
	return ValidationResult{Valid: true, Code: code, DiscountAmount: discount}
}

// InvalidResult builds a rejection carrying its reason.
func InvalidResult(reason InvalidReason) ValidationResult {
	return ValidationResult{Valid: false, Reason: reason}
}
