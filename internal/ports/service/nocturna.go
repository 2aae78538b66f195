package service

import (
	"context"
	"encoding/json"

	"github.com/eaprelsky/nocturna-tg/internal/domain"
)

// INocturnaAPI интерфейс клиента API астрологических расчётов.
// Карты (charts) - эфемерные ресурсы на стороне сервиса: создаются явно,
// читаются, удаляются явно или истекают сами
type INocturnaAPI interface {
	// CreateChart создаёт карту и возвращает её идентификатор
	CreateChart(ctx context.Context, m domain.Moment) (domain.ChartID, error)
	// GetChart возвращает сырые данные карты по идентификатору
	GetChart(ctx context.Context, id domain.ChartID) (json.RawMessage, error)
	// DeleteChart удаляет карту. Вызывается best-effort при очистке
	DeleteChart(ctx context.Context, id domain.ChartID) error
	// CalculatePositions прямой расчёт позиций планет (без карты)
	CalculatePositions(ctx context.Context, m domain.Moment) ([]domain.PlanetPosition, error)
	// CalculateHouses прямой расчёт куспидов домов (без карты)
	CalculateHouses(ctx context.Context, m domain.Moment) ([]domain.HouseCusp, error)
	// CalculateAspects прямой расчёт аспектов между планетами (без карты)
	CalculateAspects(ctx context.Context, m domain.Moment, orbMultiplier float64) ([]domain.Aspect, error)
	// CalculateSynastry аспекты между двумя картами; id - референсная сторона
	CalculateSynastry(ctx context.Context, id, target domain.ChartID, aspects []string, orbMultiplier float64) ([]domain.Aspect, error)
}
