package service

import (
	"context"

	"github.com/eaprelsky/nocturna-tg/internal/domain"
)

// IChartService интерфейс генерации изображений карт
type IChartService interface {
	// GenerateCurrentChart рендерит колесо текущего транзита и возвращает URL изображения
	GenerateCurrentChart(ctx context.Context, latitude, longitude float64) (string, error)
	// GenerateTransitChart рендерит биколесо (натал внутри, транзит снаружи)
	GenerateTransitChart(ctx context.Context, transit *domain.PersonalTransit) (string, error)
}
