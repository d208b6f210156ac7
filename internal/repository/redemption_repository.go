package repository

import (
	"context"
	"errors"
	"fmt"

	"compucar-promo/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// redemptionRepository implements the RedemptionRepository interface using
// PostgreSQL.
type redemptionRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewRedemptionRepository creates a new PostgreSQL-backed redemption repository.
func NewRedemptionRepository(pool *pgxpool.Pool, logger zerolog.Logger) RedemptionRepository {
	return &redemptionRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "redemption").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *redemptionRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// IncrementIfBelowLimit bumps the redemption counter with a conditional
// update. A counter at its limit matches no row, so a lost race can never
// over-redeem regardless of how many validations passed optimistically.
func (r *redemptionRepository) IncrementIfBelowLimit(ctx context.Context, tx pgx.Tx, codeID uuid.UUID) (bool, error) {
	query := `
		UPDATE promotional_codes
		SET redemption_count = redemption_count + 1, updated_at = NOW()
		WHERE id = $1
		  AND (max_redemptions IS NULL OR redemption_count < max_redemptions)
	`

	tag, err := tx.Exec(ctx, query, codeID)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("code_id", codeID.String()).
			Msg("failed to increment redemption count")
		return false, fmt.Errorf("failed to increment redemption count: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// CountUserRedemptions counts a user's redemptions of a code within the
// provided transaction.
func (r *redemptionRepository) CountUserRedemptions(ctx context.Context, tx pgx.Tx, codeID uuid.UUID, userID string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM redemptions
		WHERE code_id = $1 AND user_id = $2
	`

	var count int
	if err := tx.QueryRow(ctx, query, codeID, userID).Scan(&count); err != nil {
		r.logger.Error().
			Err(err).
			Str("code_id", codeID.String()).
			Str("user_id", userID).
			Msg("failed to count user redemptions")
		return 0, fmt.Errorf("failed to count user redemptions: %w", err)
	}

	return count, nil
}

// Insert records a redemption within the provided transaction.
func (r *redemptionRepository) Insert(ctx context.Context, tx pgx.Tx, redemption *model.Redemption) error {
	query := `
		INSERT INTO redemptions (code_id, order_id, user_id, discount_amount, redeemed_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := tx.Exec(ctx, query,
		redemption.CodeID,
		redemption.OrderID,
		redemption.UserID,
		redemption.DiscountAmount,
		redemption.RedeemedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			r.logger.Debug().
				Str("code_id", redemption.CodeID.String()).
				Str("order_id", redemption.OrderID.String()).
				Msg("order already redeemed this code")
			return model.ErrDuplicateRedemption
		}
		r.logger.Error().
			Err(err).
			Str("code_id", redemption.CodeID.String()).
			Str("order_id", redemption.OrderID.String()).
			Msg("failed to insert redemption")
		return fmt.Errorf("failed to insert redemption: %w", err)
	}

	r.logger.Debug().
		Str("code_id", redemption.CodeID.String()).
		Str("order_id", redemption.OrderID.String()).
		Msg("redemption recorded")

	return nil
}
