package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"log/slog"

	"github.com/eaprelsky/nocturna-tg/internal/ports/storage"
)

// Client обёртка над minio.Client для работы с S3
type Client struct {
	client *minio.Client
	bucket string
	log    *slog.Logger
}

// NewClient создаёт новый S3 клиент
func NewClient(client *minio.Client, bucket string, log *slog.Logger) storage.IS3Client {
	return &Client{
		client: client,
		bucket: bucket,
		log:    log,
	}
}

// SaveFile сохраняет файл по пути
func (c *Client) SaveFile(ctx context.Context, path string, data []byte, contentType string) error {
	_, err := c.client.PutObject(ctx, c.bucket, path, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to put object %s: %w", path, err)
	}

	c.log.Debug("file saved to s3", "path", path, "size", len(data))
	return nil
}

// GetFile получает файл по пути
func (c *Client) GetFile(ctx context.Context, path string) ([]byte, error) {
	object, err := c.client.GetObject(ctx, c.bucket, path, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object %s: %w", path, err)
	}
	defer object.Close()

	data, err := io.ReadAll(object)
	if err != nil {
		return nil, fmt.Errorf("failed to read object %s: %w", path, err)
	}

	return data, nil
}

// GetPresignedURL генерирует presigned URL для файла
func (c *Client) GetPresignedURL(ctx context.Context, path string, expires time.Duration) (string, error) {
	if expires <= 0 {
		expires = 5 * time.Minute // дефолтный TTL
	}

	url, err := c.client.PresignedGetObject(ctx, c.bucket, path, expires, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL for %s: %w", path, err)
	}

	return url.String(), nil
}
