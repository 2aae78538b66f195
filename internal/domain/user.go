package domain

import (
	"encoding/json"
	"time"
)

// User пользователь бота. Храним минимум данных - только telegram_id
// обязателен для идентификации
type User struct {
	TelegramID int64     `json:"telegram_id" db:"telegram_id"`
	Username   *string   `json:"username,omitempty" db:"username"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// UserBirthData данные рождения пользователя для расчёта натальной карты.
// ChartID - идентификатор карты в API расчётов; карта там живёт недолго,
// поэтому перед расчётом транзитов она пересоздаётся заново
type UserBirthData struct {
	ID              int64           `json:"id" db:"id"`
	UserID          int64           `json:"user_id" db:"user_id"`
	ChartID         *string         `json:"chart_id,omitempty" db:"chart_id"`
	BirthDate       string          `json:"birth_date" db:"birth_date"` // YYYY-MM-DD
	BirthTime       string          `json:"birth_time" db:"birth_time"` // HH:MM:SS
	Timezone        string          `json:"timezone" db:"timezone"`
	LocationName    *string         `json:"location_name,omitempty" db:"location_name"`
	Latitude        float64         `json:"latitude" db:"latitude"`
	Longitude       float64         `json:"longitude" db:"longitude"`
	NatalChartCache json.RawMessage `json:"natal_chart_cache,omitempty" db:"natal_chart_cache"` // JSONB
	Preferences     json.RawMessage `json:"preferences,omitempty" db:"preferences"`             // JSONB
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
}

// BirthMoment собирает Moment из сохранённых данных рождения
func (b *UserBirthData) BirthMoment() Moment {
	return Moment{
		Date:      b.BirthDate,
		Time:      b.BirthTime,
		Latitude:  b.Latitude,
		Longitude: b.Longitude,
		Timezone:  b.Timezone,
	}
}
