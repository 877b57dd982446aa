package kafka

import (
	"encoding/json"
	"fmt"

	"marketplace-settlement/config"
	"marketplace-settlement/internal/core/domain"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog"
)

// NewSyncProducer connects a synchronous producer that waits for all in-sync replicas.
func NewSyncProducer(cfg config.KafkaConfig) (sarama.SyncProducer, error) {
	sc := sarama.NewConfig()
	sc.ClientID = cfg.ClientID
	sc.Producer.RequiredAcks = sarama.WaitForAll
	sc.Producer.Return.Successes = true
	sc.Producer.Retry.Max = 3
	sc.Producer.Idempotent = true
	sc.Net.MaxOpenRequests = 1

	producer, err := sarama.NewSyncProducer(cfg.Brokers, sc)
	if err != nil {
		return nil, fmt.Errorf("creating kafka producer: %w", err)
	}
	return producer, nil
}

// Producer publishes one event type to one topic. Values are JSON and the
// event id is the message key.
type Producer[T domain.Event] struct {
	Producer sarama.SyncProducer
	Topic    string
	Log      zerolog.Logger
}

// Send publishes event and blocks until the broker acknowledges it.
func (p *Producer[T]) Send(event T) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	partition, offset, err := p.Producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.Topic,
		Key:   sarama.StringEncoder(event.GetID()),
		Value: sarama.ByteEncoder(value),
	})
	if err != nil {
		return fmt.Errorf("send to %s: %w", p.Topic, err)
	}

	p.Log.Debug().
		Str("topic", p.Topic).
		Str("event_id", event.GetID()).
		Int32("partition", partition).
		Int64("offset", offset).
		Msg("event published")
	return nil
}
