package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

// ChatMessage сообщение чат-диалога
type ChatMessage struct {
	Role    string `json:"role"` // system | user | assistant
	Content string `json:"content"`
}

// Client - клиент OpenRouter для генерации текста.
// Генерация дорогая и нестрогая по времени, поэтому запросы не ретраятся:
// повтор решает вызывающий
type Client struct {
	cfg        *Config
	httpClient *http.Client
	log        *slog.Logger
}

// NewClient создаёт новый клиент OpenRouter
func NewClient(cfg *Config, log *slog.Logger) *Client {
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout(),
		},
		log: log,
	}
}

type completionRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type completionResponse struct {
	Choices []struct {
		Message ChatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Code    any    `json:"code"`
	} `json:"error"`
}

// GenerateCompletion генерирует ответ модели на диалог
func (c *Client) GenerateCompletion(ctx context.Context, messages []ChatMessage, temperature float64, maxTokens int) (string, error) {
	payload := completionRequest{
		Model:       c.cfg.Model,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("ошибка сериализации запроса: %w", err)
	}

	url := strings.TrimSuffix(c.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("ошибка создания запроса: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("ошибка запроса к OpenRouter: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("ошибка чтения ответа OpenRouter: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("OpenRouter вернул статус %d: %s", resp.StatusCode, string(raw))
	}

	var parsed completionResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("ошибка разбора ответа OpenRouter: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("ошибка OpenRouter: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("пустой ответ OpenRouter")
	}

	return parsed.Choices[0].Message.Content, nil
}
