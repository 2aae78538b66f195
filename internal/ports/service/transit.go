package service

import (
	"context"

	"github.com/eaprelsky/nocturna-tg/internal/domain"
)

// ITransitService интерфейс оркестратора транзитных расчётов
type ITransitService interface {
	// ComputePersonal рассчитывает персональные транзиты к натальной карте.
	// Пустые дата/время транзита означают "сейчас"
	ComputePersonal(ctx context.Context, natal, transit domain.Moment, orbMultiplier float64) (*domain.PersonalTransit, error)
	// Current текущие позиции и аспекты планет для точки наблюдения
	Current(ctx context.Context, latitude, longitude float64) (*domain.CurrentTransit, error)
}
