package model

import "github.com/shopspring/decimal"

// CartItem is a snapshot of a single cart line supplied by the caller.
// It is used only for eligibility checks; the promo service does not own
// cart state.
type CartItem struct {
	ProductID  string          `json:"productId"`
	CategoryID string          `json:"categoryId"`
	Price      decimal.Decimal `json:"price"`
	Quantity   int             `json:"quantity"`
}

// ValidateRequest is the payload for a promo code validation call.
type ValidateRequest struct {
	Code      string          `json:"code"`
	CartItems []CartItem      `json:"cartItems"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}
