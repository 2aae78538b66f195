package kafka

import (
	"context"
	"fmt"

	"log/slog"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
)

// Producer реализация Kafka producer
type Producer struct {
	producer sarama.SyncProducer
	cfg      *Config
	log      *slog.Logger
}

// NewProducer создаёт новый Kafka producer
func NewProducer(cfg *Config, log *slog.Logger) (*Producer, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5

	// Настройка безопасности (если указано)
	if cfg.SecurityProtocol == "SASL_SSL" || cfg.SecurityProtocol == "SASL_PLAINTEXT" {
		config.Net.SASL.Enable = true
		config.Net.SASL.Mechanism = sarama.SASLTypePlaintext
		if cfg.SASLMechanism == "SCRAM-SHA-256" {
			config.Net.SASL.Mechanism = sarama.SASLTypeSCRAMSHA256
		}
		config.Net.SASL.User = cfg.SASLUsername
		config.Net.SASL.Password = cfg.SASLPassword
		// TLS только для SASL_SSL
		if cfg.SecurityProtocol == "SASL_SSL" {
			config.Net.TLS.Enable = true
		}
	}

	producer, err := sarama.NewSyncProducer(cfg.GetBrokers(), config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	log.Info("kafka producer created",
		"brokers", cfg.Brokers,
		"topic", cfg.Topic,
	)

	return &Producer{
		producer: producer,
		cfg:      cfg,
		log:      log,
	}, nil
}

// SendTransitComputed публикует событие о рассчитанном персональном транзите.
// В value уходит сам транзит (raw JSON), идентификаторы - в headers
func (p *Producer) SendTransitComputed(ctx context.Context, requestID uuid.UUID, userID int64, transit []byte) error {
	headers := []sarama.RecordHeader{
		{
			Key:   []byte("request_id"),
			Value: []byte(requestID.String()),
		},
		{
			Key:   []byte("user_id"),
			Value: []byte(fmt.Sprintf("%d", userID)),
		},
		{
			Key:   []byte("action"),
			Value: []byte("transit_computed"),
		},
	}

	msg := &sarama.ProducerMessage{
		Topic:   p.cfg.Topic,
		Key:     sarama.StringEncoder(requestID.String()),
		Value:   sarama.ByteEncoder(transit),
		Headers: headers,
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		p.log.Debug("kafka send transit computed failed",
			"error", err,
			"topic", p.cfg.Topic,
			"key", requestID.String(),
			"user_id", userID,
		)
		return fmt.Errorf("kafka send transit computed failed [topic=%s, key=%s]: %w",
			p.cfg.Topic, requestID.String(), err)
	}

	p.log.Debug("transit computed event sent to kafka",
		"topic", p.cfg.Topic,
		"partition", partition,
		"offset", offset,
		"key", requestID.String(),
		"user_id", userID,
	)

	return nil
}

// Close закрывает producer
func (p *Producer) Close() error {
	if err := p.producer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka producer: %w", err)
	}
	p.log.Info("kafka producer closed")
	return nil
}
