package transit

import (
	"context"
	"fmt"

	"github.com/eaprelsky/nocturna-tg/internal/domain"
)

// Current рассчитывает текущие позиции планет и аспекты между ними
// для точки наблюдения. Карты не создаются, расчёты прямые
func (s *Service) Current(ctx context.Context, latitude, longitude float64) (*domain.CurrentTransit, error) {
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
		return nil, fmt.Errorf("ошибка расчёта текущих позиций: %w", err)
	}

	aspects, err := s.api.CalculateAspects(ctx, m, 1.0)
	if err != nil {
		return nil, fmt.Errorf("ошибка расчёта текущих аспектов: %w", err)
	}

	return &domain.CurrentTransit{
		Date:      m.Date,
		Time:      m.Time,
		Positions: positions,
		Aspects:   aspects,
	}, nil
}
