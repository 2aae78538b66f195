package storage

import (
	"context"
	"time"
)

// IS3Client интерфейс для работы с S3-совместимым хранилищем (MinIO).
// Используется для хранения отрендеренных изображений карт
type IS3Client interface {
	SaveFile(ctx context.Context, path string, data []byte, contentType string) error
	GetFile(ctx context.Context, path string) ([]byte, error)
	GetPresignedURL(ctx context.Context, path string, expires time.Duration) (string, error)
}
