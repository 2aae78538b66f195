package repository

import (
	"context"

	"github.com/eaprelsky/nocturna-tg/internal/domain"
)

// IUserRepo интерфейс репозитория пользователей и их данных рождения
type IUserRepo interface {
	// Upsert создаёт пользователя или обновляет username/updated_at
	Upsert(ctx context.Context, user *domain.User) error
	// GetByTelegramID возвращает пользователя или nil, если не найден
	GetByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error)
	// SetBirthData сохраняет (или заменяет) данные рождения пользователя
	SetBirthData(ctx context.Context, data *domain.UserBirthData) error
	// GetBirthData возвращает данные рождения или domain.ErrNoBirthData
	GetBirthData(ctx context.Context, telegramID int64) (*domain.UserBirthData, error)
	// SetChartID сохраняет идентификатор натальной карты из API расчётов
	SetChartID(ctx context.Context, telegramID int64, chartID string) error
	// DeleteBirthData удаляет данные рождения пользователя
	DeleteBirthData(ctx context.Context, telegramID int64) error
}
