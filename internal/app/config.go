package app

import (
	"fmt"

	server "github.com/eaprelsky/nocturna-tg/internal/adapters/primary/http"
	"github.com/eaprelsky/nocturna-tg/internal/adapters/secondary/chartrender"
	kafkaAdapter "github.com/eaprelsky/nocturna-tg/internal/adapters/secondary/kafka"
	"github.com/eaprelsky/nocturna-tg/internal/adapters/secondary/nocturna"
	"github.com/eaprelsky/nocturna-tg/internal/adapters/secondary/openrouter"
	"github.com/eaprelsky/nocturna-tg/internal/adapters/secondary/storage/pg"
	redisAdapter "github.com/eaprelsky/nocturna-tg/internal/adapters/secondary/storage/redis"
	s3Adapter "github.com/eaprelsky/nocturna-tg/internal/adapters/secondary/storage/s3"
	"github.com/eaprelsky/nocturna-tg/internal/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Postgres    *pg.Config           `envconfig:"POSTGRES"`
	Log         *logger.Config       `envconfig:"LOG"`
	Server      *server.Config       `envconfig:"APISERVER"`
	Nocturna    *nocturna.Config     `envconfig:"NOCTURNA"`
	ChartRender *chartrender.Config  `envconfig:"CHART_SERVICE"`
	OpenRouter  *openrouter.Config   `envconfig:"OPENROUTER"`
	Redis       *redisAdapter.Config `envconfig:"REDIS"`
	S3          *s3Adapter.Config    `envconfig:"S3"`
	Kafka       *kafkaAdapter.Config `envconfig:"KAFKA"`
	Timezone    string               `envconfig:"TIMEZONE" default:"Europe/Moscow"`
}

func NewEnvConfig(envPrefix string) (*Config, error) {
	cfg := &Config{}

	_ = godotenv.Load("deployments/local/.env")

	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return nil, err
	}

	// envconfig оставляет вложенный указатель nil, если ни одна переменная
	// с его префиксом не задана. Nocturna API, HTTP сервер и Postgres
	// обязательны, поэтому для них дозаполняем конфигурацию дефолтами.
	if cfg.Nocturna == nil {
		cfg.Nocturna = &nocturna.Config{}
		if err := envconfig.Process(fmt.Sprintf("%s_NOCTURNA", envPrefix), cfg.Nocturna); err != nil {
			return nil, fmt.Errorf("failed to load nocturna config: %w", err)
		}
	}

	if cfg.Server == nil {
		cfg.Server = &server.Config{}
		if err := envconfig.Process(fmt.Sprintf("%s_APISERVER", envPrefix), cfg.Server); err != nil {
			return nil, fmt.Errorf("failed to load server config: %w", err)
		}
	}

	if cfg.Postgres == nil {
		cfg.Postgres = &pg.Config{}
		if err := envconfig.Process(fmt.Sprintf("%s_POSTGRES", envPrefix), cfg.Postgres); err != nil {
			return nil, fmt.Errorf("failed to load postgres config: %w", err)
		}
	}

	return cfg, nil
}
