package repository

import (
	"context"

	"compucar-promo/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// PromoRepository defines the interface for promo code data access operations.
type PromoRepository interface {
	// GetByCode retrieves a promo code by its normalized (uppercase) code
	// string. Returns nil without error when no such code exists.
	GetByCode(ctx context.Context, code string) (*model.PromoCode, error)

	// Create inserts a new promo code. Returns model.ErrDuplicateCode when
	// the code string is already taken.
	Create(ctx context.Context, promo *model.PromoCode) error

	// List retrieves promo codes with pagination support, newest first.
	List(ctx context.Context, limit, offset int) ([]model.PromoCode, error)

	// SetActive flips the active flag. Returns false when the code does
	// not exist. Codes are never physically deleted.
	SetActive(ctx context.Context, code string, active bool) (bool, error)

	// CountUserRedemptions counts committed redemptions of a code by one user.
	CountUserRedemptions(ctx context.Context, codeID uuid.UUID, userID string) (int, error)
}

// RedemptionRepository defines the interface for redemption data access
// operations. Apply-time writes run inside a caller-managed transaction so
// the counter increment and the redemption row commit together.
type RedemptionRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// IncrementIfBelowLimit bumps the code's redemption counter only while
	// it is below max_redemptions. Returns false when the limit is already
	// reached; the row lock it takes serializes concurrent redemptions of
	// the same code for the rest of the transaction.
	IncrementIfBelowLimit(ctx context.Context, tx pgx.Tx, codeID uuid.UUID) (bool, error)

	// CountUserRedemptions counts a user's redemptions of a code within the
	// provided transaction.
	CountUserRedemptions(ctx context.Context, tx pgx.Tx, codeID uuid.UUID, userID string) (int, error)

	// Insert records a redemption within the provided transaction. Returns
	// model.ErrDuplicateRedemption when the order already redeemed the code.
	Insert(ctx context.Context, tx pgx.Tx, redemption *model.Redemption) error
}
