package service

import (
	"context"

	"compucar-promo/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PromoService defines operations for promo code management and redemption.
type PromoService interface {
	// Validate checks a promo code against a cart for a user. Business
	// rejections are returned inside the ValidationResult.
	Validate(ctx context.Context, userID string, req *model.ValidateRequest) (model.ValidationResult, error)

	// Apply atomically redeems a code against a finalized order. Returns
	// model.ErrRedemptionLimitRace when a limit was exceeded between
	// validation and application; the caller decides whether the order
	// proceeds without the discount.
	Apply(ctx context.Context, code, userID string, orderID uuid.UUID, discountAmount decimal.Decimal) (*model.Redemption, error)

	// Create registers a new promo code.
	Create(ctx context.Context, promo *model.PromoCode) (*model.PromoCode, error)

	// GetByCode retrieves a promo code, nil when absent.
	GetByCode(ctx context.Context, code string) (*model.PromoCode, error)

	// List retrieves promo codes with pagination.
	List(ctx context.Context, limit, offset int) ([]model.PromoCode, error)

	// Deactivate soft-deletes a code. Historical redemptions keep
	// referencing it.
	Deactivate(ctx context.Context, code string) error
}

// Publisher receives redemption events after they commit. Implementations
// must tolerate being called concurrently.
type Publisher interface {
	RedemptionApplied(ctx context.Context, code string, redemption *model.Redemption) error
}

// NopPublisher discards redemption events. Used when Kafka is disabled.
type NopPublisher struct{}

func (NopPublisher) RedemptionApplied(ctx context.Context, code string, redemption *model.Redemption) error {
	return nil
}
