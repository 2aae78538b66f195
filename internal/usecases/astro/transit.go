package astro

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/eaprelsky/nocturna-tg/internal/domain"
	"github.com/eaprelsky/nocturna-tg/internal/ports/cache"
	"github.com/eaprelsky/nocturna-tg/internal/usecases/astro/texts"
)

const (
	currentTransitCacheKey = "nocturna:transit:current"
	currentTransitCacheTTL = 15 * time.Minute
	positionsCacheKey      = "nocturna:positions:current"
	positionsCacheTTL      = 25 * time.Hour

	maxReportAspects = 10

	// defaultLatitude/defaultLongitude точка наблюдения по умолчанию (Москва)
	defaultLatitude  = 55.7558
	defaultLongitude = 37.6173
)

// TransitReport готовый к отправке пользователю результат расчёта
type TransitReport struct {
	Text           string `json:"text"`
	ChartURL       string `json:"chart_url,omitempty"`
	Interpretation string `json:"interpretation,omitempty"`
}

// PersonalTransitReport рассчитывает персональные транзиты пользователя
// и собирает текстовый отчёт. Картинка и событие в Kafka - best-effort
func (s *Service) PersonalTransitReport(ctx context.Context, telegramID int64, orbMultiplier float64) (*TransitReport, error) {
	birth, err := s.UserRepo.GetBirthData(ctx, telegramID)
	if err != nil {
		if errors.Is(err, domain.ErrNoBirthData) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load birth data: %w", err)
	}

	transit, err := s.TransitService.ComputePersonal(ctx, birth.BirthMoment(), domain.Moment{
		Latitude:  birth.Latitude,
		Longitude: birth.Longitude,
		Timezone:  birth.Timezone,
	}, orbMultiplier)
	if err != nil {
		s.Log.Error("personal transit computation failed",
			"error", err,
			"telegram_id", telegramID,
			"step", domain.FailedStep(err),
		)
		return nil, err
	}

	report := &TransitReport{
		Text: texts.FormatPersonalTransitReport(transit, maxReportAspects),
	}

	if s.ChartService != nil {
		url, chartErr := s.ChartService.GenerateTransitChart(ctx, transit)
		if chartErr != nil {
			s.Log.Warn("transit chart generation failed",
				"error", chartErr,
				"telegram_id", telegramID,
			)
		} else {
			report.ChartURL = url
		}
	}

	s.publishTransitComputed(ctx, telegramID, transit)

	return report, nil
}

// publishTransitComputed отправляет событие о рассчитанном транзите.
// Сбой публикации не влияет на ответ пользователю
func (s *Service) publishTransitComputed(ctx context.Context, telegramID int64, transit *domain.PersonalTransit) {
	if s.Producer == nil {
		return
	}

	payload, err := json.Marshal(transit)
	if err != nil {
		s.Log.Error("failed to marshal transit for kafka", "error", err)
		return
	}

	if err := s.Producer.SendTransitComputed(ctx, uuid.New(), telegramID, payload); err != nil {
		s.Log.Warn("failed to publish transit computed event",
			"error", err,
			"telegram_id", telegramID,
		)
	}
}

// CurrentTransitReport возвращает отчёт о текущем транзите с опциональной
// интерпретацией. Результат кэшируется: позиции планет меняются медленно
func (s *Service) CurrentTransitReport(ctx context.Context, latitude, longitude float64, withInterpretation bool) (*TransitReport, error) {
	if latitude == 0 && longitude == 0 {
		latitude, longitude = defaultLatitude, defaultLongitude
	}

	transit, err := s.currentTransit(ctx, latitude, longitude)
	if err != nil {
		return nil, err
	}

	report := &TransitReport{
		Text: texts.FormatCurrentTransitReport(transit),
	}

	if withInterpretation && s.Interpretation != nil {
		interpretation, interpErr := s.Interpretation.InterpretTransit(ctx, transit.Positions, transit.Aspects)
		if interpErr != nil {
			s.Log.Warn("interpretation generation failed", "error", interpErr)
			report.Interpretation = texts.InterpretationFailed
		} else {
			report.Interpretation = interpretation
		}
	}

	if s.ChartService != nil {
		url, chartErr := s.ChartService.GenerateCurrentChart(ctx, latitude, longitude)
		if chartErr != nil {
			s.Log.Warn("current chart generation failed", "error", chartErr)
		} else {
			report.ChartURL = url
		}
	}

	return report, nil
}

// currentTransit достаёт текущий транзит из кэша или считает заново
func (s *Service) currentTransit(ctx context.Context, latitude, longitude float64) (*domain.CurrentTransit, error) {
	key := fmt.Sprintf("%s:%.4f:%.4f", currentTransitCacheKey, latitude, longitude)

	if s.Cache != nil {
		cached, err := s.Cache.Get(ctx, key)
		if err == nil {
			var transit domain.CurrentTransit
			if jsonErr := json.Unmarshal([]byte(cached), &transit); jsonErr == nil {
				s.Log.Debug("current transit served from cache", "key", key)
				return &transit, nil
			}
		} else if !errors.Is(err, cache.ErrNotFound) {
			s.Log.Warn("cache read failed", "error", err, "key", key)
		}
	}

	transit, err := s.TransitService.Current(ctx, latitude, longitude)
	if err != nil {
		return nil, fmt.Errorf("failed to compute current transit: %w", err)
	}

	if s.Cache != nil {
		payload, jsonErr := json.Marshal(transit)
		if jsonErr == nil {
			if cacheErr := s.Cache.Set(ctx, key, string(payload), currentTransitCacheTTL); cacheErr != nil {
				s.Log.Warn("cache write failed", "error", cacheErr, "key", key)
			}
		}
	}

	return transit, nil
}

// UpdateCachedPositions обновляет актуальные позиции планет в кэше.
// Вызывается планировщиком раз в сутки
func (s *Service) UpdateCachedPositions(ctx context.Context) error {
	if s.Cache == nil {
		s.Log.Warn("cache is not configured, skipping positions update")
		return nil
	}

	transit, err := s.TransitService.Current(ctx, defaultLatitude, defaultLongitude)
	if err != nil {
		return fmt.Errorf("failed to get current positions: %w", err)
	}

	payload, err := json.Marshal(transit.Positions)
	if err != nil {
		return fmt.Errorf("failed to marshal positions: %w", err)
	}

	if err := s.Cache.Set(ctx, positionsCacheKey, string(payload), positionsCacheTTL); err != nil {
		return fmt.Errorf("failed to cache positions: %w", err)
	}

	s.Log.Info("cached planetary positions updated", "count", len(transit.Positions))
	return nil
}
