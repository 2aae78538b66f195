package domain

import "time"

// ChartID идентификатор эфемерной карты на стороне API расчётов.
// Карта живёт только внутри одного вызова оркестратора и не переиспользуется
type ChartID string

// MajorAspects пять мажорных аспектов. Синастрия транзитов всегда
// ограничивается этим набором
var MajorAspects = []string{
	"CONJUNCTION", "OPPOSITION", "TRINE", "SQUARE", "SEXTILE",
}

// Moment дата/время и географическая точка для расчётов.
// Используется и для данных рождения, и для момента транзита
type Moment struct {
	Date      string  `json:"date"`      // YYYY-MM-DD
	Time      string  `json:"time"`      // HH:MM:SS
	Latitude  float64 `json:"latitude"`  // градусы
	Longitude float64 `json:"longitude"` // градусы
	Timezone  string  `json:"timezone"`  // "Europe/Moscow"
}

// HasDateTime проверяет, задан ли момент явно (иначе берётся "сейчас")
func (m Moment) HasDateTime() bool {
	return m.Date != "" && m.Time != ""
}

// PlanetPosition позиция планеты в эклиптических координатах
type PlanetPosition struct {
	Planet       string   `json:"planet"`
	Longitude    float64  `json:"longitude"`
	Latitude     float64  `json:"latitude"`
	Sign         string   `json:"sign"`
	Degree       float64  `json:"degree"`
	Minute       float64  `json:"minute"`
	IsRetrograde bool     `json:"is_retrograde"`
	Speed        *float64 `json:"speed,omitempty"`
}

// HouseCusp куспид дома (1-12)
type HouseCusp struct {
	Number    int     `json:"number"`
	Longitude float64 `json:"longitude"`
	Sign      string  `json:"sign"`
	Degree    float64 `json:"degree"`
	Minute    float64 `json:"minute"`
}

// Aspect угловой аспект между двумя планетами.
// В персональных транзитах Planet1 всегда натальная планета, Planet2 - транзитная
// (натальная карта является референсной стороной синастрии)
type Aspect struct {
	Planet1    string  `json:"planet1"`
	Planet2    string  `json:"planet2"`
	AspectType string  `json:"aspect_type"`
	Orb        float64 `json:"orb"`
	Applying   *bool   `json:"applying,omitempty"` // nil - API не смог определить
}

// PersonalTransit результат расчёта персональных транзитов к натальной карте
type PersonalTransit struct {
	TransitDate      string           `json:"transit_date"`
	TransitTime      string           `json:"transit_time"`
	TransitPositions []PlanetPosition `json:"transit_positions"`
	TransitHouses    []HouseCusp      `json:"transit_houses"`
	NatalPositions   []PlanetPosition `json:"natal_positions"`
	NatalHouses      []HouseCusp      `json:"natal_houses"`
	Aspects          []Aspect         `json:"transit_aspects"`
	CalculatedAt     time.Time        `json:"calculated_at"`
}

// CurrentTransit снимок текущего положения планет (без привязки к наталу)
type CurrentTransit struct {
	Date      string           `json:"date"`
	Time      string           `json:"time"`
	Positions []PlanetPosition `json:"positions"`
	Aspects   []Aspect         `json:"aspects"`
}
