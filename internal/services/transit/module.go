package transit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/eaprelsky/nocturna-tg/internal/domain"
	"github.com/eaprelsky/nocturna-tg/internal/ports/service"
)

const cleanupTimeout = 10 * time.Second

// Service реализует ITransitService поверх API расчётов.
// Персональный транзит собирается из двух эфемерных карт на сервере,
// которые сервис обязан удалить после себя при любом исходе
type Service struct {
	api service.INocturnaAPI
	log *slog.Logger

	// location зона, в которой трактуется "сейчас" при пустом моменте транзита
	location *time.Location
	// now подменяется в тестах
	now func() time.Time
}

// New создаёт новый сервис транзитных расчётов
func New(api service.INocturnaAPI, location *time.Location, log *slog.Logger) *Service {
	if location == nil {
		location = time.UTC
	}
	return &Service{
		api:      api,
		log:      log,
		location: location,
		now:      time.Now,
	}
}

// ComputePersonal рассчитывает персональные транзиты к натальной карте.
// Последовательность фиксированная: натальная карта, её позиции и дома,
// транзитная карта, её позиции и дома, затем синастрия между картами.
// Первый сбой прерывает расчёт, обе созданные карты удаляются в любом случае
func (s *Service) ComputePersonal(ctx context.Context, natal, transit domain.Moment, orbMultiplier float64) (*domain.PersonalTransit, error) {
	if !natal.HasDateTime() {
		return nil, fmt.Errorf("натальный момент не задан: %w", domain.ErrNoBirthData)
	}
	if orbMultiplier <= 0 {
		orbMultiplier = 1.0
	}
	transit = s.resolveTransitMoment(transit)

	var natalID, transitID domain.ChartID
	defer func() {
		s.cleanup(ctx, natalID, transitID)
	}()

	natalID, err := s.api.CreateChart(ctx, natal)
	if err != nil {
		return nil, domain.WrapStepError(domain.StepNatalChartCreate, err)
	}

	natalPositions, err := s.api.CalculatePositions(ctx, natal)
	if err != nil {
		return nil, domain.WrapStepError(domain.StepNatalPositions, err)
	}

	natalHouses, err := s.api.CalculateHouses(ctx, natal)
	if err != nil {
		return nil, domain.WrapStepError(domain.StepNatalHouses, err)
	}

	transitID, err = s.api.CreateChart(ctx, transit)
	if err != nil {
		return nil, domain.WrapStepError(domain.StepTransitChartCreate, err)
	}

	transitPositions, err := s.api.CalculatePositions(ctx, transit)
	if err != nil {
		return nil, domain.WrapStepError(domain.StepTransitPositions, err)
	}

	transitHouses, err := s.api.CalculateHouses(ctx, transit)
	if err != nil {
		return nil, domain.WrapStepError(domain.StepTransitHouses, err)
	}

	// натальная карта - референсная сторона синастрии,
	// аспекты всегда ограничены мажорным набором
	aspects, err := s.api.CalculateSynastry(ctx, natalID, transitID, domain.MajorAspects, orbMultiplier)
	if err != nil {
		return nil, domain.WrapStepError(domain.StepSynastry, err)
	}

	return &domain.PersonalTransit{
		TransitDate:      transit.Date,
		TransitTime:      transit.Time,
		TransitPositions: transitPositions,
		TransitHouses:    transitHouses,
		NatalPositions:   natalPositions,
		NatalHouses:      natalHouses,
		Aspects:          aspects,
		CalculatedAt:     s.now().UTC(),
	}, nil
}

// resolveTransitMoment подставляет текущий момент вместо пустых полей
func (s *Service) resolveTransitMoment(m domain.Moment) domain.Moment {
	if m.Date != "" && m.Time != "" {
		return m
	}

	now := s.now().In(s.location)
	if m.Date == "" {
		m.Date = now.Format("2006-01-02")
	}
	if m.Time == "" {
		m.Time = now.Format("15:04:05")
	}
	if m.Timezone == "" {
		m.Timezone = s.location.String()
	}
	return m
}

// cleanup удаляет созданные карты. Выполняется даже при отменённом контексте,
// но с собственным таймаутом. Сбои удаления только логируются
func (s *Service) cleanup(ctx context.Context, ids ...domain.ChartID) {
	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer cancel()

	for _, id := range ids {
		if id == "" {
			continue
		}
		if err := s.api.DeleteChart(cleanupCtx, id); err != nil {
			s.log.Warn("failed to delete chart during cleanup",
				"chart_id", string(id),
				"error", err,
			)
		}
	}
}
