// Package events publishes ledger activity to Kafka for downstream consumers
// (receipts, reconciliation). Publishing is best-effort: a broker failure is
// logged and never fails the ledger operation that produced the event.
package events

import (
	"context"
	"encoding/json"
	"math/big"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"blockpay/internal/domain"
)

const (
	TypePaymentReceived     = "payment.received"
	TypeWithdrawalCompleted = "withdrawal.completed"
)

const publishTimeout = 5 * time.Second

type envelope struct {
	Type       string `json:"type"`
	PlanID     string `json:"plan_id,omitempty"`
	PaymentID  string `json:"payment_id,omitempty"`
	Address    string `json:"address"`
	Amount     string `json:"amount"`
	OccurredAt string `json:"occurred_at"`
}

// Publisher writes ledger events to a single topic, keyed by the address the
// event concerns. A nil *Publisher is valid and publishes nothing.
type Publisher struct {
	writer *kafka.Writer
	logger zerolog.Logger
}

func NewPublisher(brokers []string, topic string, logger zerolog.Logger) *Publisher {
	if len(brokers) == 0 {
		return nil
	}
	return &Publisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
		logger: logger,
	}
}

// PaymentReceived announces a recorded fulfilment, keyed by the creator whose
// balance it credited.
func (p *Publisher) PaymentReceived(ctx context.Context, payment *domain.Payment, creator string) {
	if p == nil {
		return
	}
	p.publish(ctx, creator, envelope{
		Type:       TypePaymentReceived,
		PlanID:     payment.PlanID,
		PaymentID:  payment.ID,
		Address:    creator,
		Amount:     payment.AmountPaid.String(),
		OccurredAt: payment.CreatedAt.Format(time.RFC3339Nano),
	})
}

// WithdrawalCompleted announces a settled withdrawal.
func (p *Publisher) WithdrawalCompleted(ctx context.Context, address string, amount *big.Int) {
	if p == nil {
		return
	}
	p.publish(ctx, address, envelope{
		Type:       TypeWithdrawalCompleted,
		Address:    address,
		Amount:     amount.String(),
		OccurredAt: time.Now().UTC().Format(time.RFC3339Nano),
	})
}

func (p *Publisher) publish(ctx context.Context, key string, evt envelope) {
	payload, err := json.Marshal(evt)
	if err != nil {
		p.logger.Error().Err(err).Str("type", evt.Type).Msg("marshal event")
		return
	}
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := p.writer.WriteMessages(ctx, kafka.Message{Key: []byte(key), Value: payload}); err != nil {
		p.logger.Error().Err(err).Str("type", evt.Type).Msg("publish event")
	}
}

func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	return p.writer.Close()
}
