package events

import (
	"context"
	"encoding/json"
	"fmt"

	"compucar-promo/internal/model"

	"github.com/rs/zerolog"
	"github.com/twmb/franz-go/pkg/kgo"
)

// Publisher emits redemption events to Kafka. It satisfies the promo
// service's Publisher interface.
type Publisher struct {
	client *kgo.Client
	logger zerolog.Logger
}

// NewPublisher creates a Kafka-backed redemption event publisher.
func NewPublisher(client *kgo.Client, logger zerolog.Logger) *Publisher {
	return &Publisher{
		client: client,
		logger: logger.With().Str("component", "event-publisher").Logger(),
	}
}

// RedemptionApplied publishes a PromoRedeemed event. Records are keyed by
// code so per-code ordering is preserved.
func (p *Publisher) RedemptionApplied(ctx context.Context, code string, redemption *model.Redemption) error {
	event := PromoRedeemed{
		Code:           code,
		OrderID:        redemption.OrderID,
		UserID:         redemption.UserID,
		DiscountAmount: redemption.DiscountAmount,
		RedeemedAt:     redemption.RedeemedAt,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal redemption event: %w", err)
	}

	record := &kgo.Record{
		Topic: TopicPromoRedeemed,
		Key:   []byte(code),
		Value: payload,
	}

	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("failed to publish redemption event: %w", err)
	}

	p.logger.Debug().
		Str("code", code).
		Str("order_id", redemption.OrderID.String()).
		Msg("redemption event published")

	return nil
}
