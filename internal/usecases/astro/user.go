package astro

import (
	"context"
	"fmt"
	"time"

	"github.com/eaprelsky/nocturna-tg/internal/domain"
)

// RegisterUser регистрирует пользователя или обновляет его username
func (s *Service) RegisterUser(ctx context.Context, telegramID int64, username *string) error {
	if err := s.UserRepo.Upsert(ctx, &domain.User{
		TelegramID: telegramID,
		Username:   username,
	}); err != nil {
		return fmt.Errorf("failed to register user: %w", err)
	}

	s.Log.Info("user registered", "telegram_id", telegramID)
	return nil
}

// SetBirthData сохраняет данные рождения и создаёт натальную карту
// в API расчётов. Сбой создания карты не откатывает сохранение:
// карта будет создана при первом расчёте транзитов
func (s *Service) SetBirthData(ctx context.Context, data *domain.UserBirthData) error {
	if err := validateBirthData(data); err != nil {
		return err
	}

	if err := s.UserRepo.SetBirthData(ctx, data); err != nil {
		return fmt.Errorf("failed to save birth data: %w", err)
	}

	chartID, err := s.API.CreateChart(ctx, data.BirthMoment())
	if err != nil {
		s.Log.Warn("natal chart creation failed, will retry on first transit",
			"error", err,
			"telegram_id", data.UserID,
		)
		return nil
	}

	if err := s.UserRepo.SetChartID(ctx, data.UserID, string(chartID)); err != nil {
		s.Log.Error("failed to persist chart id",
			"error", err,
			"telegram_id", data.UserID,
			"chart_id", string(chartID),
		)
		return nil
	}

	s.Log.Info("birth data saved with natal chart",
		"telegram_id", data.UserID,
		"chart_id", string(chartID),
	)
	return nil
}

// GetUser возвращает пользователя или nil, если он не зарегистрирован
func (s *Service) GetUser(ctx context.Context, telegramID int64) (*domain.User, error) {
	return s.UserRepo.GetByTelegramID(ctx, telegramID)
}

// GetBirthData возвращает данные рождения пользователя
func (s *Service) GetBirthData(ctx context.Context, telegramID int64) (*domain.UserBirthData, error) {
	return s.UserRepo.GetBirthData(ctx, telegramID)
}

// DeleteBirthData удаляет данные рождения пользователя
func (s *Service) DeleteBirthData(ctx context.Context, telegramID int64) error {
	return s.UserRepo.DeleteBirthData(ctx, telegramID)
}

// validateBirthData проверяет форматы даты, времени и координаты
func validateBirthData(data *domain.UserBirthData) error {
	if _, err := time.Parse("2006-01-02", data.BirthDate); err != nil {
		return domain.WrapBusinessError(fmt.Errorf("неверный формат даты рождения, ожидается YYYY-MM-DD: %s", data.BirthDate))
	}
	if _, err := time.Parse("15:04:05", data.BirthTime); err != nil {
		return domain.WrapBusinessError(fmt.Errorf("неверный формат времени рождения, ожидается HH:MM:SS: %s", data.BirthTime))
	}
	if _, err := time.LoadLocation(data.Timezone); err != nil {
		return domain.WrapBusinessError(fmt.Errorf("неизвестная временная зона: %s", data.Timezone))
	}
	if data.Latitude < -90 || data.Latitude > 90 {
		return domain.WrapBusinessError(fmt.Errorf("широта вне диапазона: %f", data.Latitude))
	}
	if data.Longitude < -180 || data.Longitude > 180 {
		return domain.WrapBusinessError(fmt.Errorf("долгота вне диапазона: %f", data.Longitude))
	}
	return nil
}
