package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/twmb/franz-go/pkg/kgo"
)

// Topics shared with the rest of the platform.
const (
	// TopicOrderFinalized carries order-finalization events produced by the
	// checkout service. Orders that carry a promo code get it applied here.
	TopicOrderFinalized = "orders.finalized"

	// TopicPromoRedeemed carries redemption events for downstream analytics.
	TopicPromoRedeemed = "promos.redeemed"
)

// OrderFinalized is the payload of an order-finalization event.
type OrderFinalized struct {
	OrderID        uuid.UUID       `json:"orderId"`
	UserID         string          `json:"userId"`
	Code           string          `json:"code"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
}

// PromoRedeemed is the payload published after a redemption commits.
type PromoRedeemed struct {
	Code           string          `json:"code"`
	OrderID        uuid.UUID       `json:"orderId"`
	UserID         string          `json:"userId"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	RedeemedAt     time.Time       `json:"redeemedAt"`
}

// NewProducerClient creates a Kafka client for publishing redemption events.
func NewProducerClient(brokers []string, clientID string) (*kgo.Client, error) {
	return kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ClientID(clientID),
	)
}

// NewConsumerClient creates a Kafka client subscribed to order-finalization
// events. Commits are explicit so records are only acknowledged after
// processing.
func NewConsumerClient(brokers []string, clientID, groupID string) (*kgo.Client, error) {
	return kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ClientID(clientID),
		kgo.ConsumerGroup(groupID),
		kgo.ConsumeTopics(TopicOrderFinalized),
		kgo.DisableAutoCommit(),
	)
}
