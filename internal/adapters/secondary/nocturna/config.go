package nocturna

import "time"

// Config параметры подключения к API астрологических расчётов
type Config struct {
	BaseURL      string `envconfig:"BASE_URL" default:"http://localhost:8000/api"`
	ServiceToken string `envconfig:"SERVICE_TOKEN"`
	Timeout      int    `envconfig:"TIMEOUT" default:"30"`     // в секундах
	MaxRetries   int    `envconfig:"MAX_RETRIES" default:"3"`  // повторов сверх первой попытки
	SkipSSL      string `envconfig:"SKIP_SSL"`                 // Railway требует строки вместо bool
}

func (c *Config) ShouldSkipSSL() bool {
	return c.SkipSSL == "true" || c.SkipSSL == "1" || c.SkipSSL == "True"
}

func (c *Config) RequestTimeout() time.Duration {
	if c.Timeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Timeout) * time.Second
}
