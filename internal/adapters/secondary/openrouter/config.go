package openrouter

import "time"

// Config - конфигурация клиента OpenRouter
type Config struct {
	APIKey  string `envconfig:"API_KEY"`
	Model   string `envconfig:"MODEL" default:"anthropic/claude-3.5-sonnet"`
	BaseURL string `envconfig:"BASE_URL" default:"https://openrouter.ai/api/v1"`
	Timeout int    `envconfig:"TIMEOUT" default:"120"` // в секундах
}

// RequestTimeout возвращает таймаут запроса
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}
