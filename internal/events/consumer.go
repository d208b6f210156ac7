package events

import (
	"context"
	"encoding/json"
	"errors"

	"compucar-promo/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/twmb/franz-go/pkg/kgo"
)

// Applier applies a validated promo code to a finalized order.
type Applier interface {
	Apply(ctx context.Context, code, userID string, orderID uuid.UUID, discountAmount decimal.Decimal) (*model.Redemption, error)
}

// Consumer applies promo codes carried by order-finalization events.
type Consumer struct {
	client  *kgo.Client
	applier Applier
	logger  zerolog.Logger
}

// NewConsumer creates a new order-finalization consumer.
func NewConsumer(client *kgo.Client, applier Applier, logger zerolog.Logger) *Consumer {
	return &Consumer{
		client:  client,
		applier: applier,
		logger:  logger.With().Str("component", "order-consumer").Logger(),
	}
}

// Start polls for order-finalization events until the context is cancelled
// or the client is closed.
func (c *Consumer) Start(ctx context.Context) {
	for {
		fetches := c.client.PollFetches(ctx)
		if fetches.IsClientClosed() || ctx.Err() != nil {
			return
		}
		if errs := fetches.Errors(); len(errs) > 0 {
			for _, fetchErr := range errs {
				c.logger.Error().
					Err(fetchErr.Err).
					Str("topic", fetchErr.Topic).
					Msg("consumer poll error")
			}
		}

		iter := fetches.RecordIter()
		for !iter.Done() {
			c.processRecord(ctx, iter.Next())
		}

		if err := c.client.CommitRecords(ctx, fetches.Records()...); err != nil {
			c.logger.Error().Err(err).Msg("failed to commit records")
		}
	}
}

func (c *Consumer) processRecord(ctx context.Context, record *kgo.Record) {
	var event OrderFinalized
	if err := json.Unmarshal(record.Value, &event); err != nil {
		c.logger.Error().Err(err).Msg("malformed order-finalization event")
		return
	}

	// Orders without a promo code pass through untouched.
	if event.Code == "" {
		return
	}

	_, err := c.applier.Apply(ctx, event.Code, event.UserID, event.OrderID, event.DiscountAmount)
	switch {
	case err == nil:
	case errors.Is(err, model.ErrRedemptionLimitRace):
		// Validation lost a race against concurrent checkouts. The order
		// proceeds without the discount.
		c.logger.Warn().
			Str("code", event.Code).
			Str("order_id", event.OrderID.String()).
			Msg("redemption limit exceeded, order proceeds undiscounted")
	case errors.Is(err, model.ErrDuplicateRedemption):
		// Redelivery of an already-processed event.
		c.logger.Debug().
			Str("code", event.Code).
			Str("order_id", event.OrderID.String()).
			Msg("redemption already recorded")
	case errors.Is(err, model.ErrPromoNotFound), errors.Is(err, model.ErrInvalidInput):
		c.logger.Error().
			Err(err).
			Str("code", event.Code).
			Str("order_id", event.OrderID.String()).
			Msg("unprocessable order-finalization event")
	default:
		c.logger.Error().
			Err(err).
			Str("code", event.Code).
			Str("order_id", event.OrderID.String()).
			Msg("failed to apply promo code to order")
	}
}
