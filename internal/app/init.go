package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	server "github.com/eaprelsky/nocturna-tg/internal/adapters/primary/http"
	healthcheckController "github.com/eaprelsky/nocturna-tg/internal/adapters/primary/http/controllers/healthcheck"
	transitController "github.com/eaprelsky/nocturna-tg/internal/adapters/primary/http/controllers/transit"
	usersController "github.com/eaprelsky/nocturna-tg/internal/adapters/primary/http/controllers/users"
	"github.com/eaprelsky/nocturna-tg/internal/adapters/secondary/chartrender"
	kafkaAdapter "github.com/eaprelsky/nocturna-tg/internal/adapters/secondary/kafka"
	"github.com/eaprelsky/nocturna-tg/internal/adapters/secondary/nocturna"
	"github.com/eaprelsky/nocturna-tg/internal/adapters/secondary/openrouter"
	"github.com/eaprelsky/nocturna-tg/internal/adapters/secondary/storage/pg"
	redisAdapter "github.com/eaprelsky/nocturna-tg/internal/adapters/secondary/storage/redis"
	s3Adapter "github.com/eaprelsky/nocturna-tg/internal/adapters/secondary/storage/s3"
	"github.com/eaprelsky/nocturna-tg/internal/ports/cache"
	"github.com/eaprelsky/nocturna-tg/internal/ports/kafka"
	"github.com/eaprelsky/nocturna-tg/internal/ports/service"
	"github.com/eaprelsky/nocturna-tg/internal/ports/storage"
	userRepo "github.com/eaprelsky/nocturna-tg/internal/repository/user"
	chartService "github.com/eaprelsky/nocturna-tg/internal/services/chart"
	interpretationService "github.com/eaprelsky/nocturna-tg/internal/services/interpretation"
	jobScheduler "github.com/eaprelsky/nocturna-tg/internal/services/jobs"
	transitService "github.com/eaprelsky/nocturna-tg/internal/services/transit"
	astroUsecase "github.com/eaprelsky/nocturna-tg/internal/usecases/astro"
	"github.com/jmoiron/sqlx"
)

type Dependencies struct {
	DB            *sqlx.DB
	HTTPServer    *http.Server
	KafkaProducer *kafkaAdapter.Producer
	Cache         cache.Cache
	JobScheduler  *jobScheduler.Scheduler
}

// initDependencies инициализирует все зависимости приложения
func (a *App) initDependencies(_ context.Context) (*Dependencies, error) {
	db, err := a.initPostgres()
	if err != nil {
		return nil, fmt.Errorf("failed to init postgres: %w", err)
	}

	location := a.initLocation()
	external := a.initExternalServices()

	nocturnaClient := nocturna.NewClient(a.Cfg.Nocturna, a.Log)
	transits := transitService.New(nocturnaClient, location, a.Log)

	astroService := astroUsecase.New(
		userRepo.New(pg.NewDB(db), a.Log),
		transits,
		a.initChartService(nocturnaClient, external, location),
		external.Interpretation,
		nocturnaClient,
		external.Producer, // может быть nil
		external.Cache,    // может быть nil
		a.Log,
	)

	httpServer := a.initHTTP(db, astroService)
	scheduler := a.initJobScheduler(astroService, external.Cache)

	return &Dependencies{
		DB:            db,
		HTTPServer:    httpServer,
		KafkaProducer: external.rawProducer,
		Cache:         external.Cache,
		JobScheduler:  scheduler,
	}, nil
}

// externalServices содержит опциональные внешние сервисы
type externalServices struct {
	Cache          cache.Cache
	S3             storage.IS3Client
	Renderer       *chartrender.Client
	Interpretation service.IInterpretationService
	Producer       kafka.IKafkaProducer
	rawProducer    *kafkaAdapter.Producer
}

// initExternalServices инициализирует опциональные внешние сервисы (Redis,
// S3, рендерер карт, OpenRouter, Kafka). Отсутствие любого из них не мешает
// приложению работать: расчёты транзитов остаются доступны.
func (a *App) initExternalServices() *externalServices {
	services := &externalServices{}

	// Redis Cache - опциональный
	if a.Cfg.Redis != nil {
		redisClient, err := a.Cfg.Redis.NewConnection()
		if err != nil {
			a.Log.Warn("failed to init redis cache, continuing without cache", "error", err)
		} else {
			services.Cache = redisAdapter.NewClient(redisClient)
			a.Log.Info("redis cache connected successfully")
		}
	}

	// S3 - опциональный, нужен для хранения отрендеренных карт
	if a.Cfg.S3 != nil {
		minioClient, err := a.Cfg.S3.NewClient()
		if err != nil {
			a.Log.Warn("failed to init s3 client, continuing without chart storage", "error", err)
		} else {
			services.S3 = s3Adapter.NewClient(minioClient, a.Cfg.S3.Bucket, a.Log)
			a.Log.Info("s3 storage connected successfully")
		}
	}

	// Рендерер карт - опциональный
	if a.Cfg.ChartRender != nil {
		services.Renderer = chartrender.NewClient(a.Cfg.ChartRender, a.Log)
	}

	// OpenRouter - опциональный, нужен для интерпретаций
	if a.Cfg.OpenRouter != nil && a.Cfg.OpenRouter.APIKey != "" {
		openRouterClient := openrouter.NewClient(a.Cfg.OpenRouter, a.Log)
		services.Interpretation = interpretationService.New(openRouterClient, a.Log)
	}

	// Kafka producer - опциональный
	if a.Cfg.Kafka != nil && a.Cfg.Kafka.Topic != "" {
		producer, err := kafkaAdapter.NewProducer(a.Cfg.Kafka, a.Log)
		if err != nil {
			a.Log.Warn("failed to create kafka producer, continuing without events", "error", err)
		} else {
			services.Producer = producer
			services.rawProducer = producer
		}
	}

	return services
}

// initChartService собирает сервис построения карт. Без рендерера и S3
// сервис не создаётся и отчёты отдаются без изображений.
func (a *App) initChartService(
	api service.INocturnaAPI,
	external *externalServices,
	location *time.Location,
) service.IChartService {
	if external.Renderer == nil || external.S3 == nil {
		a.Log.Info("chart rendering disabled", "renderer", external.Renderer != nil, "s3", external.S3 != nil)
		return nil
	}
	return chartService.New(api, external.Renderer, external.S3, location, a.Log)
}

// initHTTP инициализирует HTTP сервер и контроллеры
func (a *App) initHTTP(db *sqlx.DB, astroService *astroUsecase.Service) *http.Server {
	controllers := []server.Controller{
		healthcheckController.New(db, a.Log),
		transitController.New(astroService, a.Log),
		usersController.New(astroService, a.Log),
	}

	return server.NewHTTPServer(a.Cfg.Server, a.Log, controllers...)
}

// initJobScheduler инициализирует планировщик джоб
func (a *App) initJobScheduler(astroService *astroUsecase.Service, cacheClient cache.Cache) *jobScheduler.Scheduler {
	scheduler := jobScheduler.NewScheduler(a.Log)

	// Джоба обновления позиций планет имеет смысл только при включённом кеше
	if cacheClient != nil {
		positionsUpdater := jobScheduler.NewPositionsUpdater(astroService, a.Log)
		scheduler.Register(positionsUpdater)
		a.Log.Info("positions updater job registered")
	}

	return scheduler
}

// initLocation загружает таймзону по умолчанию для расчётов
func (a *App) initLocation() *time.Location {
	location, err := time.LoadLocation(a.Cfg.Timezone)
	if err != nil {
		a.Log.Warn("failed to load timezone, falling back to UTC", "error", err, "timezone", a.Cfg.Timezone)
		return time.UTC
	}
	return location
}
