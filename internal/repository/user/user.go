package userRepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"log/slog"

	"github.com/eaprelsky/nocturna-tg/internal/domain"
	"github.com/eaprelsky/nocturna-tg/internal/ports/persistence"
	ports "github.com/eaprelsky/nocturna-tg/internal/ports/repository"
)

type userColumns struct {
	TableName  string
	TelegramID string
	Username   string
	CreatedAt  string
	UpdatedAt  string
}

type birthDataColumns struct {
	TableName       string
	ID              string
	UserID          string
	ChartID         string
	BirthDate       string
	BirthTime       string
	Timezone        string
	LocationName    string
	Latitude        string
	Longitude       string
	NatalChartCache string
	Preferences     string
	CreatedAt       string
	UpdatedAt       string
}

type Repository struct {
	db    persistence.TxPersistence
	Log   *slog.Logger
	users userColumns
	birth birthDataColumns
}

// New создаёт новый репозиторий для работы с пользователями
func New(db persistence.TxPersistence, log *slog.Logger) ports.IUserRepo {
	return &Repository{
		db:  db,
		Log: log,
		users: userColumns{
			TableName:  "users",
			TelegramID: "telegram_id",
			Username:   "username",
			CreatedAt:  "created_at",
			UpdatedAt:  "updated_at",
		},
		birth: birthDataColumns{
			TableName:       "birth_data",
			ID:              "id",
			UserID:          "user_id",
			ChartID:         "chart_id",
			BirthDate:       "birth_date",
			BirthTime:       "birth_time",
			Timezone:        "timezone",
			LocationName:    "location_name",
			Latitude:        "latitude",
			Longitude:       "longitude",
			NatalChartCache: "natal_chart_cache",
			Preferences:     "preferences",
			CreatedAt:       "created_at",
			UpdatedAt:       "updated_at",
		},
	}
}

// birthColumns возвращает строку со всеми колонками birth_data (13 колонок)
func (r *Repository) birthColumns() string {
	return fmt.Sprintf("%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s",
		r.birth.ID,
		r.birth.UserID,
		r.birth.ChartID,
		r.birth.BirthDate,
		r.birth.BirthTime,
		r.birth.Timezone,
		r.birth.LocationName,
		r.birth.Latitude,
		r.birth.Longitude,
		r.birth.NatalChartCache,
		r.birth.Preferences,
		r.birth.CreatedAt,
		r.birth.UpdatedAt)
}

// Upsert создаёт пользователя или обновляет username
func (r *Repository) Upsert(ctx context.Context, user *domain.User) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s, %s, %s, %s)
		VALUES ($1, $2, NOW(), NOW())
		ON CONFLICT (%s) DO UPDATE SET %s = $2, %s = NOW()`,
		r.users.TableName,
		r.users.TelegramID,
		r.users.Username,
		r.users.CreatedAt,
		r.users.UpdatedAt,
		r.users.TelegramID,
		r.users.Username,
		r.users.UpdatedAt)
	err := r.db.Exec(ctx, query, user.TelegramID, user.Username)
	if err != nil {
		r.Log.Error("failed to upsert user",
			"error", err,
			"telegram_id", user.TelegramID)
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	r.Log.Debug("user upserted successfully", "telegram_id", user.TelegramID)
	return nil
}

// GetByTelegramID получает пользователя по Telegram ID.
// Возвращает nil без ошибки, если пользователь не найден
func (r *Repository) GetByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error) {
	var user domain.User
	query := fmt.Sprintf(`SELECT %s, %s, %s, %s FROM %s WHERE %s = $1`,
		r.users.TelegramID,
		r.users.Username,
		r.users.CreatedAt,
		r.users.UpdatedAt,
		r.users.TableName,
		r.users.TelegramID)
	err := r.db.Get(ctx, &user, query, telegramID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.Log.Error("failed to get user by telegram id",
			"error", err,
			"telegram_id", telegramID)
		return nil, fmt.Errorf("failed to get user by telegram id: %w", err)
	}
	return &user, nil
}

// SetBirthData сохраняет данные рождения пользователя.
// Повторное сохранение заменяет прежние данные и сбрасывает chart_id и кэш:
// от старой карты после смены момента рождения пользы нет.
// Выполняется в транзакции вместе с созданием строки пользователя,
// чтобы внешний ключ не падал при сохранении до явной регистрации
func (r *Repository) SetBirthData(ctx context.Context, data *domain.UserBirthData) error {
	userQuery := fmt.Sprintf(`INSERT INTO %s (%s, %s, %s)
		VALUES ($1, NOW(), NOW())
		ON CONFLICT (%s) DO NOTHING`,
		r.users.TableName,
		r.users.TelegramID,
		r.users.CreatedAt,
		r.users.UpdatedAt,
		r.users.TelegramID)
	query := fmt.Sprintf(`INSERT INTO %s
		(%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		ON CONFLICT (%s) DO UPDATE SET
			%s = $2, %s = $3, %s = $4, %s = $5, %s = $6, %s = $7, %s = $8,
			%s = NULL, %s = NULL, %s = NOW()`,
		r.birth.TableName,
		r.birth.UserID,
		r.birth.BirthDate,
		r.birth.BirthTime,
		r.birth.Timezone,
		r.birth.LocationName,
		r.birth.Latitude,
		r.birth.Longitude,
		r.birth.Preferences,
		r.birth.ChartID,
		r.birth.CreatedAt,
		r.birth.UpdatedAt,
		r.birth.UserID,
		r.birth.BirthDate,
		r.birth.BirthTime,
		r.birth.Timezone,
		r.birth.LocationName,
		r.birth.Latitude,
		r.birth.Longitude,
		r.birth.Preferences,
		r.birth.ChartID,
		r.birth.NatalChartCache,
		r.birth.UpdatedAt)
	err := r.db.WithTransaction(ctx, func(ctx context.Context, tx persistence.Transaction) error {
		if err := tx.Exec(ctx, userQuery, data.UserID); err != nil {
			return fmt.Errorf("failed to ensure user row: %w", err)
		}
		return tx.Exec(ctx, query,
			data.UserID,
			data.BirthDate,
			data.BirthTime,
			data.Timezone,
			data.LocationName,
			data.Latitude,
			data.Longitude,
			data.Preferences,
			data.ChartID)
	})
	if err != nil {
		r.Log.Error("failed to set birth data",
			"error", err,
			"user_id", data.UserID)
		return fmt.Errorf("failed to set birth data: %w", err)
	}
	r.Log.Debug("birth data saved successfully", "user_id", data.UserID)
	return nil
}

// GetBirthData получает данные рождения пользователя
func (r *Repository) GetBirthData(ctx context.Context, telegramID int64) (*domain.UserBirthData, error) {
	var data domain.UserBirthData
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		r.birthColumns(),
		r.birth.TableName,
		r.birth.UserID)
	err := r.db.Get(ctx, &data, query, telegramID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNoBirthData
		}
		r.Log.Error("failed to get birth data",
			"error", err,
			"user_id", telegramID)
		return nil, fmt.Errorf("failed to get birth data: %w", err)
	}
	return &data, nil
}

// SetChartID сохраняет идентификатор натальной карты из API расчётов
func (r *Repository) SetChartID(ctx context.Context, telegramID int64, chartID string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = NOW() WHERE %s = $1`,
		r.birth.TableName,
		r.birth.ChartID,
		r.birth.UpdatedAt,
		r.birth.UserID)
	rowsAffected, err := r.db.ExecWithResult(ctx, query, telegramID, chartID)
	if err != nil {
		r.Log.Error("failed to set chart id",
			"error", err,
			"user_id", telegramID,
			"chart_id", chartID)
		return fmt.Errorf("failed to set chart id: %w", err)
	}
	if rowsAffected == 0 {
		return domain.ErrNoBirthData
	}
	r.Log.Debug("chart id saved successfully", "user_id", telegramID, "chart_id", chartID)
	return nil
}

// DeleteBirthData удаляет данные рождения пользователя
func (r *Repository) DeleteBirthData(ctx context.Context, telegramID int64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`,
		r.birth.TableName,
		r.birth.UserID)
	rowsAffected, err := r.db.ExecWithResult(ctx, query, telegramID)
	if err != nil {
		r.Log.Error("failed to delete birth data",
			"error", err,
			"user_id", telegramID)
		return fmt.Errorf("failed to delete birth data: %w", err)
	}
	if rowsAffected == 0 {
		return domain.ErrNoBirthData
	}
	r.Log.Debug("birth data deleted", "user_id", telegramID)
	return nil
}
