package kafka

import (
	"context"

	"marketplace-settlement/config"
	"marketplace-settlement/internal/core/domain"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog"
)

// Publisher implements ports.EventPublisher on Kafka.
type Publisher struct {
	sellerCredited  Producer[*domain.SellerCreditedEvent]
	payoutRequested Producer[*domain.PayoutRequestedEvent]
	producer        sarama.SyncProducer
}

// NewPublisher wires one producer per topic over a shared connection.
func NewPublisher(producer sarama.SyncProducer, cfg config.KafkaConfig, log zerolog.Logger) *Publisher {
	return &Publisher{
		sellerCredited: Producer[*domain.SellerCreditedEvent]{
			Producer: producer,
			Topic:    cfg.SellerCreditedTopic,
			Log:      log,
		},
		payoutRequested: Producer[*domain.PayoutRequestedEvent]{
			Producer: producer,
			Topic:    cfg.PayoutRequestedTopic,
			Log:      log,
		},
		producer: producer,
	}
}

func (p *Publisher) PublishSellerCredited(_ context.Context, event *domain.SellerCreditedEvent) error {
	return p.sellerCredited.Send(event)
}

func (p *Publisher) PublishPayoutRequested(_ context.Context, event *domain.PayoutRequestedEvent) error {
	return p.payoutRequested.Send(event)
}

// Close flushes and closes the underlying producer.
func (p *Publisher) Close() error {
	return p.producer.Close()
}

// LogPublisher implements ports.EventPublisher when Kafka is disabled. Events
// are written to the log only.
type LogPublisher struct {
	log zerolog.Logger
}

func NewLogPublisher(log zerolog.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) PublishSellerCredited(_ context.Context, event *domain.SellerCreditedEvent) error {
	p.log.Info().
		Str("event_id", event.ID).
		Str("seller_id", event.SellerID.String()).
		Str("order_id", event.OrderID.String()).
		Int64("net", event.Net).
		Msg("seller credited")
	return nil
}

func (p *LogPublisher) PublishPayoutRequested(_ context.Context, event *domain.PayoutRequestedEvent) error {
	p.log.Info().
		Str("event_id", event.ID).
		Str("payout_id", event.PayoutID.String()).
		Str("seller_id", event.SellerID.String()).
		Int64("amount", event.Amount).
		Msg("payout requested")
	return nil
}

func (p *LogPublisher) Close() error {
	return nil
}
