package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"compucar-promo/internal/model"
	"compucar-promo/internal/promo"
	"compucar-promo/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// promoService implements PromoService.
type promoService struct {
	validator      promo.Validator
	promoRepo      repository.PromoRepository
	redemptionRepo repository.RedemptionRepository
	publisher      Publisher
	logger         zerolog.Logger
}

// NewPromoService creates a new promo service.
func NewPromoService(
	validator promo.Validator,
	promoRepo repository.PromoRepository,
	redemptionRepo repository.RedemptionRepository,
	publisher Publisher,
	logger zerolog.Logger,
) PromoService {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	return &promoService{
		validator:      validator,
		promoRepo:      promoRepo,
		redemptionRepo: redemptionRepo,
		publisher:      publisher,
		logger:         logger.With().Str("service", "promo").Logger(),
	}
}

// Validate checks a promo code against a cart for a user.
func (s *promoService) Validate(ctx context.Context, userID string, req *model.ValidateRequest) (model.ValidationResult, error) {
	if req == nil {
		return model.ValidationResult{}, model.ErrInvalidInput
	}

	result, err := s.validator.Validate(ctx, req.Code, userID, req.CartItems, req.Subtotal)
	if err != nil {
		return model.ValidationResult{}, err
	}

	if !result.Valid {
		s.logger.Debug().
			Str("code", req.Code).
			Str("reason", string(result.Reason)).
			Msg("promo code rejected")
	}

	return result, nil
}

// Apply atomically redeems a code against a finalized order.
//
// Validation and application are separated in time, so limits are re-checked
// here under the redemption transaction: the conditional counter increment
// rejects a code at its global limit, and its row lock serializes same-code
// redemptions so the per-user re-check cannot race either.
func (s *promoService) Apply(ctx context.Context, code, userID string, orderID uuid.UUID, discountAmount decimal.Decimal) (*model.Redemption, error) {
	if userID == "" || orderID == uuid.Nil || discountAmount.IsNegative() {
		return nil, model.ErrInvalidInput
	}

	normalized := promo.NormalizeCode(code)
	if normalized == "" {
		return nil, model.ErrInvalidInput
	}

	p, err := s.promoRepo.GetByCode(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to load promo code: %w", err)
	}
	if p == nil {
		return nil, model.ErrPromoNotFound
	}

	tx, err := s.redemptionRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to apply promo code: %w", err)
	}

	// Ensure transaction is rolled back on error
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, context.Canceled) {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	var incremented bool
	if incremented, err = s.redemptionRepo.IncrementIfBelowLimit(ctx, tx, p.ID); err != nil {
		return nil, fmt.Errorf("failed to apply promo code: %w", err)
	}
	if !incremented {
		s.logger.Warn().
			Str("code", normalized).
			Str("order_id", orderID.String()).
			Msg("redemption limit reached at commit time")
		err = model.ErrRedemptionLimitRace
		return nil, err
	}

	if p.PerUserLimit != nil {
		var used int
		if used, err = s.redemptionRepo.CountUserRedemptions(ctx, tx, p.ID, userID); err != nil {
			return nil, fmt.Errorf("failed to apply promo code: %w", err)
		}
		if used >= *p.PerUserLimit {
			s.logger.Warn().
				Str("code", normalized).
				Str("user_id", userID).
				Msg("per-user limit reached at commit time")
			err = model.ErrRedemptionLimitRace
			return nil, err
		}
	}

	redemption := &model.Redemption{
		CodeID:         p.ID,
		OrderID:        orderID,
		UserID:         userID,
		DiscountAmount: discountAmount,
		RedeemedAt:     time.Now(),
	}

	if err = s.redemptionRepo.Insert(ctx, tx, redemption); err != nil {
		if errors.Is(err, model.ErrDuplicateRedemption) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to record redemption: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("code", normalized).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to apply promo code: %w", err)
	}

	s.logger.Info().
		Str("code", normalized).
		Str("order_id", orderID.String()).
		Str("discount", discountAmount.String()).
		Msg("promo code applied to order")

	// Event delivery is best effort; the redemption is already committed.
	if pubErr := s.publisher.RedemptionApplied(ctx, normalized, redemption); pubErr != nil {
		s.logger.Error().Err(pubErr).Str("code", normalized).Msg("failed to publish redemption event")
	}

	return redemption, nil
}

// Create registers a new promo code.
func (s *promoService) Create(ctx context.Context, p *model.PromoCode) (*model.PromoCode, error) {
	if p == nil {
		return nil, model.ErrInvalidInput
	}

	normalized := promo.NormalizeCode(p.Code)
	if normalized == "" || !p.DiscountType.Valid() || p.DiscountValue.IsNegative() {
		return nil, model.ErrInvalidInput
	}
	if p.MinimumSubtotal != nil && p.MinimumSubtotal.IsNegative() {
		return nil, model.ErrInvalidInput
	}
	if p.MaxRedemptions != nil && *p.MaxRedemptions <= 0 {
		return nil, model.ErrInvalidInput
	}
	if p.PerUserLimit != nil && *p.PerUserLimit <= 0 {
		return nil, model.ErrInvalidInput
	}
	if p.StartsAt != nil && p.ExpiresAt != nil && p.ExpiresAt.Before(*p.StartsAt) {
		return nil, model.ErrInvalidInput
	}

	now := time.Now()
	created := *p
	created.ID = uuid.New()
	created.Code = normalized
	created.IsActive = true
	created.RedemptionCount = 0
	created.CreatedAt = now
	created.UpdatedAt = now

	if err := s.promoRepo.Create(ctx, &created); err != nil {
		if errors.Is(err, model.ErrDuplicateCode) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create promo code: %w", err)
	}

	s.logger.Info().Str("code", created.Code).Msg("promo code created")

	return &created, nil
}

// GetByCode retrieves a promo code.
func (s *promoService) GetByCode(ctx context.Context, code string) (*model.PromoCode, error) {
	normalized := promo.NormalizeCode(code)
	if normalized == "" {
		return nil, model.ErrInvalidInput
	}
	return s.promoRepo.GetByCode(ctx, normalized)
}

// List retrieves promo codes with pagination.
func (s *promoService) List(ctx context.Context, limit, offset int) ([]model.PromoCode, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.promoRepo.List(ctx, limit, offset)
}

// Deactivate soft-deletes a promo code.
func (s *promoService) Deactivate(ctx context.Context, code string) error {
	normalized := promo.NormalizeCode(code)
	if normalized == "" {
		return model.ErrInvalidInput
	}

	found, err := s.promoRepo.SetActive(ctx, normalized, false)
	if err != nil {
		return fmt.Errorf("failed to deactivate promo code: %w", err)
	}
	if !found {
		return model.ErrPromoNotFound
	}

	s.logger.Info().Str("code", normalized).Msg("promo code deactivated")

	return nil
}
