package chartrender

import "time"

// Config - конфигурация клиента сервиса отрисовки карт
type Config struct {
	BaseURL    string `envconfig:"BASE_URL" default:"http://localhost:3000"`
	APIKey     string `envconfig:"API_KEY"`
	Timeout    int    `envconfig:"TIMEOUT" default:"60"`    // в секундах
	MaxRetries int    `envconfig:"MAX_RETRIES" default:"3"` // полное число попыток
}

// RequestTimeout возвращает таймаут запроса
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}
