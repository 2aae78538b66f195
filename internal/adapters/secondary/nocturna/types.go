package nocturna

import (
	"encoding/json"

	"github.com/eaprelsky/nocturna-tg/internal/domain"
)

// defaultPlanets планеты, запрашиваемые во всех расчётах позиций
var defaultPlanets = []string{
	"SUN", "MOON", "MERCURY", "VENUS", "MARS",
	"JUPITER", "SATURN", "URANUS", "NEPTUNE", "PLUTO",
}

// defaultAspects мажорные аспекты
var defaultAspects = domain.MajorAspects

// defaultOrbs орбисы по умолчанию для мажорных аспектов
var defaultOrbs = map[string]int{
	"CONJUNCTION": 8,
	"OPPOSITION":  8,
	"TRINE":       6,
	"SQUARE":      6,
	"SEXTILE":     4,
}

const defaultHouseSystem = "placidus"

type chartConfig struct {
	HouseSystem string         `json:"house_system"`
	Aspects     []string       `json:"aspects"`
	Orbs        map[string]int `json:"orbs"`
}

type createChartRequest struct {
	Date      string      `json:"date"` // ISO: дата + "T" + время
	Latitude  float64     `json:"latitude"`
	Longitude float64     `json:"longitude"`
	Timezone  string      `json:"timezone"`
	Config    chartConfig `json:"config"`
}

type chartResponse struct {
	ID string `json:"id"`
}

// momentPayload общая часть запросов расчётов по моменту времени
type momentPayload struct {
	Date      string  `json:"date"`
	Time      string  `json:"time"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timezone  string  `json:"timezone"`
}

type positionsRequest struct {
	momentPayload
	Planets           []string `json:"planets"`
	IncludeRetrograde bool     `json:"include_retrograde"`
	IncludeSpeed      bool     `json:"include_speed"`
}

type positionsResponse struct {
	Positions []domain.PlanetPosition `json:"positions"`
}

type housesRequest struct {
	momentPayload
	HouseSystem   string `json:"house_system"`
	IncludeAngles bool   `json:"include_angles"`
}

type housesResponse struct {
	Houses []domain.HouseCusp `json:"houses"`
}

type aspectsRequest struct {
	momentPayload
	Planets       []string `json:"planets"`
	Aspects       []string `json:"aspects"`
	OrbMultiplier float64  `json:"orb_multiplier"`
}

type aspectsResponse struct {
	Aspects []domain.Aspect `json:"aspects"`
}

type synastryRequest struct {
	TargetChartID string   `json:"target_chart_id"`
	OrbMultiplier float64  `json:"orb_multiplier"`
	Aspects       []string `json:"aspects,omitempty"`
}

type synastryResponse struct {
	Aspects []domain.Aspect `json:"aspects"`
}

func newMomentPayload(m domain.Moment) momentPayload {
	return momentPayload{
		Date:      m.Date,
		Time:      m.Time,
		Latitude:  m.Latitude,
		Longitude: m.Longitude,
		Timezone:  m.Timezone,
	}
}

func decode[T any](raw json.RawMessage) (T, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, &APIError{
			Kind:    KindApplication,
			Message: "unexpected response shape",
			Body:    truncateString(string(raw), 500),
			Err:     err,
		}
	}
	return v, nil
}
