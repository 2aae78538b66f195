package chart

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/eaprelsky/nocturna-tg/internal/adapters/secondary/chartrender"
	"github.com/eaprelsky/nocturna-tg/internal/domain"
	"github.com/eaprelsky/nocturna-tg/internal/ports/service"
	"github.com/eaprelsky/nocturna-tg/internal/ports/storage"
)

const (
	chartURLTTL = 24 * time.Hour
	minHouses   = 12
)

// planetMapping API расчётов отдаёт имена планет в верхнем регистре,
// сервис отрисовки ждёт их в нижнем
var planetMapping = map[string]string{
	"SUN":     "sun",
	"MOON":    "moon",
	"MERCURY": "mercury",
	"VENUS":   "venus",
	"MARS":    "mars",
	"JUPITER": "jupiter",
	"SATURN":  "saturn",
	"URANUS":  "uranus",
	"NEPTUNE": "neptune",
	"PLUTO":   "pluto",
}

// Service реализует IChartService: считает позиции через API расчётов,
// рендерит изображение и складывает его в S3
type Service struct {
	api      service.INocturnaAPI
	renderer *chartrender.Client
	s3       storage.IS3Client
	log      *slog.Logger
	location *time.Location

	now func() time.Time
}

// New создаёт новый сервис генерации изображений карт
func New(api service.INocturnaAPI, renderer *chartrender.Client, s3 storage.IS3Client, location *time.Location, log *slog.Logger) *Service {
	if location == nil {
		location = time.UTC
	}
	return &Service{
		api:      api,
		renderer: renderer,
		s3:       s3,
		log:      log,
		location: location,
		now:      time.Now,
	}
}

// GenerateCurrentChart рендерит колесо текущего транзита и возвращает
// presigned URL изображения
func (s *Service) GenerateCurrentChart(ctx context.Context, latitude, longitude float64) (string, error) {
	now := s.now().In(s.location)
	m := domain.Moment{
		Date:      now.Format("2006-01-02"),
		Time:      now.Format("15:04:05"),
		Latitude:  latitude,
		Longitude: longitude,
		Timezone:  s.location.String(),
	}

	positions, err := s.api.CalculatePositions(ctx, m)
	if err != nil {
		return "", fmt.Errorf("ошибка расчёта позиций для карты: %w", err)
	}
	if len(positions) == 0 {
		return "", fmt.Errorf("API расчётов не вернул позиции планет")
	}

	houses, err := s.api.CalculateHouses(ctx, m)
	if err != nil {
		return "", fmt.Errorf("ошибка расчёта домов для карты: %w", err)
	}
	if len(houses) < minHouses {
		return "", fmt.Errorf("API расчётов вернул %d домов, ожидалось %d", len(houses), minHouses)
	}

	image, err := s.renderer.RenderChart(ctx, convertPlanets(positions), convertHouses(houses))
	if err != nil {
		return "", fmt.Errorf("ошибка отрисовки карты: %w", err)
	}

	return s.store(ctx, "current", image)
}

// GenerateTransitChart рендерит биколесо по уже рассчитанному транзиту
func (s *Service) GenerateTransitChart(ctx context.Context, transit *domain.PersonalTransit) (string, error) {
	if len(transit.NatalPositions) == 0 || len(transit.TransitPositions) == 0 {
		return "", fmt.Errorf("транзит не содержит позиций планет")
	}
	if len(transit.NatalHouses) < minHouses {
		return "", fmt.Errorf("транзит содержит %d натальных домов, ожидалось %d", len(transit.NatalHouses), minHouses)
	}

	image, err := s.renderer.RenderTransitChart(ctx,
		convertPlanets(transit.NatalPositions),
		convertHouses(transit.NatalHouses),
		convertPlanets(transit.TransitPositions),
		transit.TransitDate+"T"+transit.TransitTime,
	)
	if err != nil {
		return "", fmt.Errorf("ошибка отрисовки транзитной карты: %w", err)
	}

	return s.store(ctx, "transit", image)
}

// store сохраняет изображение в S3 и возвращает presigned URL
func (s *Service) store(ctx context.Context, kind string, image []byte) (string, error) {
	path := fmt.Sprintf("charts/%s/%s.png", kind, uuid.New().String())

	if err := s.s3.SaveFile(ctx, path, image, "image/png"); err != nil {
		return "", fmt.Errorf("ошибка сохранения изображения: %w", err)
	}

	url, err := s.s3.GetPresignedURL(ctx, path, chartURLTTL)
	if err != nil {
		return "", fmt.Errorf("ошибка генерации ссылки на изображение: %w", err)
	}

	s.log.Info("chart image stored", "path", path, "size", len(image))
	return url, nil
}

// convertPlanets переводит позиции в формат сервиса отрисовки.
// Неизвестные рендереру тела пропускаются
func convertPlanets(positions []domain.PlanetPosition) map[string]chartrender.PlanetPoint {
	planets := make(map[string]chartrender.PlanetPoint, len(positions))
	for _, pos := range positions {
		name, ok := planetMapping[strings.ToUpper(pos.Planet)]
		if !ok {
			continue
		}
		planets[name] = chartrender.PlanetPoint{
			Lon:        pos.Longitude,
			Lat:        pos.Latitude,
			Retrograde: pos.IsRetrograde,
		}
	}
	return planets
}

// convertHouses сортирует куспиды по номеру дома
func convertHouses(houses []domain.HouseCusp) []chartrender.HousePoint {
	sorted := make([]domain.HouseCusp, len(houses))
	copy(sorted, houses)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Number < sorted[j].Number
	})

	points := make([]chartrender.HousePoint, 0, len(sorted))
	for _, house := range sorted {
		points = append(points, chartrender.HousePoint{Lon: house.Longitude})
	}
	return points
}
