package astro

import (
	"log/slog"

	"github.com/eaprelsky/nocturna-tg/internal/ports/cache"
	"github.com/eaprelsky/nocturna-tg/internal/ports/kafka"
	"github.com/eaprelsky/nocturna-tg/internal/ports/repository"
	"github.com/eaprelsky/nocturna-tg/internal/ports/service"
)

// Service бизнес-логика транзитного бота.
// Cache, Producer, ChartService и Interpretation опциональны: без них
// сервис работает, но без кэша, событий, картинок и интерпретаций
type Service struct {
	UserRepo       repository.IUserRepo
	TransitService service.ITransitService
	ChartService   service.IChartService
	Interpretation service.IInterpretationService
	API            service.INocturnaAPI
	Producer       kafka.IKafkaProducer
	Cache          cache.Cache
	Log            *slog.Logger
}

// New создаёт новый сервис бизнес-логики транзитного бота
func New(
	userRepo repository.IUserRepo,
	transitService service.ITransitService,
	chartService service.IChartService,
	interpretation service.IInterpretationService,
	api service.INocturnaAPI,
	producer kafka.IKafkaProducer,
	cacheClient cache.Cache,
	log *slog.Logger,
) *Service {
	return &Service{
		UserRepo:       userRepo,
		TransitService: transitService,
		ChartService:   chartService,
		Interpretation: interpretation,
		API:            api,
		Producer:       producer,
		Cache:          cacheClient,
		Log:            log,
	}
}
