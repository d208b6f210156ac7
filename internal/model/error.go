package model

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON    = "INVALID_JSON"
	ErrCodeInvalidInput   = "INVALID_INPUT"
	ErrCodePromoNotFound  = "PROMO_CODE_NOT_FOUND"
	ErrCodeDuplicateCode  = "DUPLICATE_PROMO_CODE"
	ErrCodeLimitRace      = "REDEMPTION_LIMIT_EXCEEDED"
	ErrCodeDuplicateOrder = "ORDER_ALREADY_REDEEMED"
	ErrCodeUnauthorised   = "UNAUTHORIZED"
	ErrCodeInternalError  = "INTERNAL_ERROR"
)

// DomainError is a business error with a stable code.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	// ErrInvalidInput covers malformed validation input: empty code, empty
	// cart, non-positive amounts, or a subtotal the cart cannot support.
	ErrInvalidInput = NewDomainError(ErrCodeInvalidInput, "Invalid validation input")

	// ErrPromoNotFound is returned by apply-time lookups; validation-time
	// misses are a ValidationResult, not an error.
	ErrPromoNotFound = NewDomainError(ErrCodePromoNotFound, "Promo code not found")

	// ErrDuplicateCode is returned when creating a code that already exists.
	ErrDuplicateCode = NewDomainError(ErrCodeDuplicateCode, "Promo code already exists")

	// ErrRedemptionLimitRace is returned when the commit-time re-check finds
	// a redemption limit exceeded: the optimistic validation lost a race
	// against concurrent redemptions and the discount must not be applied.
	ErrRedemptionLimitRace = NewDomainError(ErrCodeLimitRace, "Redemption limit exceeded")

	// ErrDuplicateRedemption is returned when the order already has a
	// redemption recorded for this code.
	ErrDuplicateRedemption = NewDomainError(ErrCodeDuplicateOrder, "Order already redeemed this code")
)
