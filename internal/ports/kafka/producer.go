package kafka

import (
	"context"

	"github.com/google/uuid"
)

// IKafkaProducer интерфейс для отправки сообщений в Kafka
type IKafkaProducer interface {
	// SendTransitComputed публикует результат расчёта транзитов для
	// downstream-пайплайна интерпретаций
	SendTransitComputed(ctx context.Context, requestID uuid.UUID, userID int64, transit []byte) error
	// Close закрывает producer
	Close() error
}
