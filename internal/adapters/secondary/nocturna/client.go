package nocturna

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/eaprelsky/nocturna-tg/internal/domain"
)

// CreateChart создаёт карту на сервере расчётов и возвращает её идентификатор
func (c *Client) CreateChart(ctx context.Context, m domain.Moment) (domain.ChartID, error) {
	payload := createChartRequest{
		Date:      m.Date + "T" + m.Time,
		Latitude:  m.Latitude,
		Longitude: m.Longitude,
		Timezone:  m.Timezone,
		Config: chartConfig{
			HouseSystem: defaultHouseSystem,
			Aspects:     defaultAspects,
			Orbs:        defaultOrbs,
		},
	}

	raw, err := c.execute(ctx, request{
		method:   http.MethodPost,
		endpoint: "/charts",
		payload:  payload,
	})
	if err != nil {
		return "", fmt.Errorf("ошибка создания карты: %w", err)
	}

	resp, err := decode[chartResponse](raw)
	if err != nil {
		return "", fmt.Errorf("ошибка создания карты: %w", err)
	}
	if resp.ID == "" {
		return "", fmt.Errorf("ошибка создания карты: %w", &APIError{
			Kind:    KindApplication,
			Message: "chart id missing in response",
			Body:    truncateString(string(raw), 500),
		})
	}

	return domain.ChartID(resp.ID), nil
}

// GetChart возвращает сохранённую карту как есть
func (c *Client) GetChart(ctx context.Context, id domain.ChartID) (json.RawMessage, error) {
	raw, err := c.execute(ctx, request{
		method:   http.MethodGet,
		endpoint: "/charts/" + string(id),
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка получения карты %s: %w", id, err)
	}
	return raw, nil
}

// DeleteChart удаляет карту с сервера расчётов
func (c *Client) DeleteChart(ctx context.Context, id domain.ChartID) error {
	_, err := c.execute(ctx, request{
		method:   http.MethodDelete,
		endpoint: "/charts/" + string(id),
	})
	if err != nil {
		return fmt.Errorf("ошибка удаления карты %s: %w", id, err)
	}
	return nil
}

// CalculatePositions рассчитывает позиции планет на заданный момент
func (c *Client) CalculatePositions(ctx context.Context, m domain.Moment) ([]domain.PlanetPosition, error) {
	payload := positionsRequest{
		momentPayload:     newMomentPayload(m),
		Planets:           defaultPlanets,
		IncludeRetrograde: true,
		IncludeSpeed:      true,
	}

	raw, err := c.execute(ctx, request{
		method:   http.MethodPost,
		endpoint: "/calculations/planetary-positions",
		payload:  payload,
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка расчёта позиций планет: %w", err)
	}

	resp, err := decode[positionsResponse](raw)
	if err != nil {
		return nil, fmt.Errorf("ошибка расчёта позиций планет: %w", err)
	}
	return resp.Positions, nil
}

// CalculateHouses рассчитывает куспиды домов на заданный момент
func (c *Client) CalculateHouses(ctx context.Context, m domain.Moment) ([]domain.HouseCusp, error) {
	payload := housesRequest{
		momentPayload: newMomentPayload(m),
		HouseSystem:   defaultHouseSystem,
		IncludeAngles: true,
	}

	raw, err := c.execute(ctx, request{
		method:   http.MethodPost,
		endpoint: "/calculations/houses",
		payload:  payload,
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка расчёта домов: %w", err)
	}

	resp, err := decode[housesResponse](raw)
	if err != nil {
		return nil, fmt.Errorf("ошибка расчёта домов: %w", err)
	}
	return resp.Houses, nil
}

// CalculateAspects рассчитывает аспекты между планетами на заданный момент
func (c *Client) CalculateAspects(ctx context.Context, m domain.Moment, orbMultiplier float64) ([]domain.Aspect, error) {
	if orbMultiplier <= 0 {
		orbMultiplier = 1.0
	}

	payload := aspectsRequest{
		momentPayload: newMomentPayload(m),
		Planets:       defaultPlanets,
		Aspects:       defaultAspects,
		OrbMultiplier: orbMultiplier,
	}

	raw, err := c.execute(ctx, request{
		method:   http.MethodPost,
		endpoint: "/calculations/aspects",
		payload:  payload,
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка расчёта аспектов: %w", err)
	}

	resp, err := decode[aspectsResponse](raw)
	if err != nil {
		return nil, fmt.Errorf("ошибка расчёта аспектов: %w", err)
	}
	return resp.Aspects, nil
}

// CalculateSynastry рассчитывает межкартные аспекты между двумя картами.
// Карта id выступает опорной, target сравнивается с ней
func (c *Client) CalculateSynastry(ctx context.Context, id, target domain.ChartID, aspects []string, orbMultiplier float64) ([]domain.Aspect, error) {
	if orbMultiplier <= 0 {
		orbMultiplier = 1.0
	}

	payload := synastryRequest{
		TargetChartID: string(target),
		OrbMultiplier: orbMultiplier,
		Aspects:       aspects,
	}

	raw, err := c.execute(ctx, request{
		method:   http.MethodPost,
		endpoint: "/charts/" + string(id) + "/synastry",
		payload:  payload,
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка расчёта синастрии: %w", err)
	}

	resp, err := decode[synastryResponse](raw)
	if err != nil {
		return nil, fmt.Errorf("ошибка расчёта синастрии: %w", err)
	}
	return resp.Aspects, nil
}
