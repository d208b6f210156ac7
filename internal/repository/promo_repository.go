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

const uniqueViolation = "23505"

// promoRepository implements the PromoRepository interface using PostgreSQL.
type promoRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewPromoRepository creates a new PostgreSQL-backed promo code repository.
func NewPromoRepository(pool *pgxpool.Pool, logger zerolog.Logger) PromoRepository {
	return &promoRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "promo").Logger(),
	}
}

const promoColumns = `
	id, code, discount_type, discount_value, minimum_subtotal,
	product_ids, category_ids, max_redemptions, per_user_limit,
	is_active, starts_at, expires_at, redemption_count, created_at, updated_at
`

func scanPromo(row pgx.Row) (*model.PromoCode, error) {
	var p model.PromoCode
	err := row.Scan(
		&p.ID,
		&p.Code,
		&p.DiscountType,
		&p.DiscountValue,
		&p.MinimumSubtotal,
		&p.ProductIDs,
		&p.CategoryIDs,
		&p.MaxRedemptions,
		&p.PerUserLimit,
		&p.IsActive,
		&p.StartsAt,
		&p.ExpiresAt,
		&p.RedemptionCount,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByCode retrieves a promo code by its normalized code string.
func (r *promoRepository) GetByCode(ctx context.Context, code string) (*model.PromoCode, error) {
	query := `
		SELECT ` + promoColumns + `
		FROM promotional_codes
		WHERE code = $1
	`

	promo, err := scanPromo(r.pool.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("code", code).Msg("promo code not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("code", code).Msg("failed to query promo code")
		return nil, fmt.Errorf("failed to query promo code: %w", err)
	}

	return promo, nil
}

// Create inserts a new promo code.
func (r *promoRepository) Create(ctx context.Context, promo *model.PromoCode) error {
	query := `
		INSERT INTO promotional_codes (
			id, code, discount_type, discount_value, minimum_subtotal,
			product_ids, category_ids, max_redemptions, per_user_limit,
			is_active, starts_at, expires_at, redemption_count, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	// Restriction columns are NOT NULL arrays; nil means unrestricted.
	productIDs := promo.ProductIDs
	if productIDs == nil {
		productIDs = []string{}
	}
	categoryIDs := promo.CategoryIDs
	if categoryIDs == nil {
		categoryIDs = []string{}
	}

	_, err := r.pool.Exec(ctx, query,
		promo.ID,
		promo.Code,
		promo.DiscountType,
		promo.DiscountValue,
		promo.MinimumSubtotal,
		productIDs,
		categoryIDs,
		promo.MaxRedemptions,
		promo.PerUserLimit,
		promo.IsActive,
		promo.StartsAt,
		promo.ExpiresAt,
		promo.RedemptionCount,
		promo.CreatedAt,
		promo.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			r.logger.Debug().Str("code", promo.Code).Msg("duplicate promo code")
			return model.ErrDuplicateCode
		}
		r.logger.Error().Err(err).Str("code", promo.Code).Msg("failed to create promo code")
		return fmt.Errorf("failed to create promo code: %w", err)
	}

	r.logger.Debug().Str("code", promo.Code).Msg("promo code created")

	return nil
}

// List retrieves promo codes with pagination support.
func (r *promoRepository) List(ctx context.Context, limit, offset int) ([]model.PromoCode, error) {
	query := `
		SELECT ` + promoColumns + `
		FROM promotional_codes
		ORDER BY created_at DESC, code
		LIMIT $1 OFFSET $2
	`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query promo codes")
		return nil, fmt.Errorf("failed to query promo codes: %w", err)
	}
	defer rows.Close()

	var promos []model.PromoCode
	for rows.Next() {
		promo, err := scanPromo(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan promo code row")
			return nil, fmt.Errorf("failed to scan promo code: %w", err)
		}
		promos = append(promos, *promo)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating promo code rows")
		return nil, fmt.Errorf("error iterating promo codes: %w", err)
	}

	return promos, nil
}

// SetActive flips the active flag on a promo code.
func (r *promoRepository) SetActive(ctx context.Context, code string, active bool) (bool, error) {
	query := `
		UPDATE promotional_codes
		SET is_active = $2, updated_at = NOW()
		WHERE code = $1
	`

	tag, err := r.pool.Exec(ctx, query, code, active)
	if err != nil {
		r.logger.Error().Err(err).Str("code", code).Msg("failed to update active flag")
		return false, fmt.Errorf("failed to update active flag: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// CountUserRedemptions counts committed redemptions of a code by one user.
func (r *promoRepository) CountUserRedemptions(ctx context.Context, codeID uuid.UUID, userID string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM redemptions
		WHERE code_id = $1 AND user_id = $2
	`

	var count int
	if err := r.pool.QueryRow(ctx, query, codeID, userID).Scan(&count); err != nil {
		r.logger.Error().
			Err(err).
			Str("code_id", codeID.String()).
			Str("user_id", userID).
			Msg("failed to count user redemptions")
		return 0, fmt.Errorf("failed to count user redemptions: %w", err)
	}

	return count, nil
}
