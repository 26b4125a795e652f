package kafka

import (
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog/log"

	"github.com/drakos74/tradescore/internal/model"
	"github.com/drakos74/tradescore/internal/storage"
)

// DefaultTopic is the topic the decisions are published to.
const DefaultTopic = "trading.decisions"

// Producer publishes the backtest outputs to kafka.
// Decisions are sent one by one keyed by instrument, any other value as a single message keyed by the storage key.
type Producer struct {
	producer sarama.SyncProducer
	topic    string
}

// NewConfig returns the producer configuration.
func NewConfig() *sarama.Config {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Return.Successes = true
	config.Producer.Retry.Max = 3
	config.Version = sarama.V2_8_0_0
	return config
}

// NewProducer connects a new producer to the given brokers.
func NewProducer(brokers []string, topic string) (*Producer, error) {
	producer, err := sarama.NewSyncProducer(brokers, NewConfig())
	if err != nil {
		return nil, fmt.Errorf("could not create kafka producer for %v: %w", brokers, err)
	}
	log.Info().Strs("brokers", brokers).Str("topic", topic).Msg("kafka producer connected")
	return New(producer, topic), nil
}

// New wraps an existing sync producer.
func New(producer sarama.SyncProducer, topic string) *Producer {
	if topic == "" {
		topic = DefaultTopic
	}
	return &Producer{
		producer: producer,
		topic:    topic,
	}
}

// Store publishes the value.
func (p *Producer) Store(k storage.Key, value interface{}) error {
	switch v := value.(type) {
	case []model.Decision:
		messages := make([]*sarama.ProducerMessage, 0, len(v))
		for _, d := range v {
			msg, err := p.message(string(d.Instrument), k, d)
			if err != nil {
				return err
			}
			messages = append(messages, msg)
		}
		if len(messages) == 0 {
			return nil
		}
		if err := p.producer.SendMessages(messages); err != nil {
			return fmt.Errorf("could not publish %d decisions to '%s': %w", len(messages), p.topic, err)
		}
		log.Debug().Int("count", len(messages)).Str("topic", p.topic).Msg("published decisions")
		return nil
	case model.Decision:
		return p.send(string(v.Instrument), k, v)
	}
	return p.send(k.Path(), k, value)
}

func (p *Producer) send(key string, k storage.Key, value interface{}) error {
	msg, err := p.message(key, k, value)
	if err != nil {
		return err
	}
	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("could not publish '%s' to '%s': %w", key, p.topic, err)
	}
	log.Debug().
		Str("key", key).
		Int32("partition", partition).
		Int64("offset", offset).
		Msg("published")
	return nil
}

func (p *Producer) message(key string, k storage.Key, value interface{}) (*sarama.ProducerMessage, error) {
	b, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("could not encode '%s': %w", key, err)
	}
	return &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(b),
		Headers: []sarama.RecordHeader{
			{Key: []byte("run"), Value: []byte(k.Run)},
			{Key: []byte("kind"), Value: []byte(k.Kind)},
		},
	}, nil
}

// Load is not supported, the producer is write only.
func (p *Producer) Load(k storage.Key, value interface{}) error {
	return fmt.Errorf("kafka producer cannot load '%v': %w", k, storage.NotFoundErr)
}

// Close closes the underlying producer.
func (p *Producer) Close() error {
	return p.producer.Close()
}
