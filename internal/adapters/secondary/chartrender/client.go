package chartrender

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"
)

// Client - клиент сервиса отрисовки астрологических карт.
// Ретраятся только таймауты и сбои соединения; любой HTTP-статус,
// включая 429, возвращается ошибкой сразу
type Client struct {
	cfg        *Config
	httpClient *http.Client
	log        *slog.Logger

	backoffUnit time.Duration
	sleep       func(ctx context.Context, d time.Duration) error
}

// RenderError ошибка сервиса отрисовки.
// RetryAfter заполняется из одноимённого заголовка при 429,
// чтобы вызывающий код мог отложить следующую попытку
type RenderError struct {
	Message    string
	Code       string
	StatusCode int
	RetryAfter string
	Err        error
}

func (e *RenderError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("chart render: %s (code=%s)", e.Message, e.Code)
	}
	return "chart render: " + e.Message
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// NewClient создаёт новый клиент сервиса отрисовки
func NewClient(cfg *Config, log *slog.Logger) *Client {
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout(),
		},
		log:         log,
		backoffUnit: time.Second,
		sleep: func(ctx context.Context, d time.Duration) error {
			timer := time.NewTimer(d)
			defer timer.Stop()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-timer.C:
				return nil
			}
		},
	}
}

// RenderChart отрисовывает одиночную карту и возвращает байты изображения
func (c *Client) RenderChart(ctx context.Context, planets map[string]PlanetPoint, houses []HousePoint) ([]byte, error) {
	payload := renderChartRequest{
		Planets: planets,
		Houses:  houses,
		AspectSettings: aspectSettings{
			Enabled: true,
			Orb:     6,
			Types:   majorAspectTypes(),
		},
		RenderOptions: renderOptions{
			Format:  "png",
			Width:   800,
			Height:  800,
			Quality: 90,
			Theme:   "light",
		},
	}

	return c.render(ctx, "/api/v1/chart/render", payload)
}

// RenderTransitChart отрисовывает бивил: натальная карта внутри,
// транзитные планеты снаружи, аспекты только между колёсами
func (c *Client) RenderTransitChart(ctx context.Context, natalPlanets map[string]PlanetPoint, natalHouses []HousePoint, transitPlanets map[string]PlanetPoint, transitDatetime string) ([]byte, error) {
	payload := renderTransitRequest{
		Natal: wheelData{
			Planets: natalPlanets,
			Houses:  natalHouses,
		},
		Transit: wheelData{
			Planets:  transitPlanets,
			Datetime: transitDatetime,
		},
		AspectSettings: transitAspectSettings{
			Natal:   aspectSettings{Enabled: false, Orb: 6},
			Transit: aspectSettings{Enabled: false, Orb: 6},
			NatalToTransit: aspectSettings{
				Enabled: true,
				Orb:     3,
				Types:   majorAspectTypes(),
			},
		},
		RenderOptions: renderOptions{
			Format:  "png",
			Width:   1000,
			Height:  1000,
			Quality: 90,
			Theme:   "light",
		},
	}

	return c.render(ctx, "/api/v1/chart/render/transit", payload)
}

func (c *Client) render(ctx context.Context, endpoint string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("ошибка сериализации запроса отрисовки: %w", err)
	}

	url := strings.TrimSuffix(c.cfg.BaseURL, "/") + endpoint

	var lastErr error
	for attempt := 0; attempt < c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(1<<(attempt-1)) * c.backoffUnit
			c.log.Warn("retrying chart render", "attempt", attempt, "delay", delay)
			if err := c.sleep(ctx, delay); err != nil {
				return nil, fmt.Errorf("отрисовка отменена: %w", err)
			}
		}

		image, retryable, err := c.attempt(ctx, url, body)
		if err == nil {
			return image, nil
		}
		if !retryable {
			return nil, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("render retries exhausted: %w", lastErr)
}

// attempt одна попытка отрисовки. retryable=true только для
// транспортных сбоев
func (c *Client) attempt(ctx context.Context, url string, body []byte) (image []byte, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, false, &RenderError{Message: "ошибка создания запроса", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, false, &RenderError{Message: "request cancelled", Err: ctx.Err()}
		}
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return nil, true, &RenderError{Message: "service timeout", Code: "TIMEOUT", Err: err}
		}
		return nil, true, &RenderError{Message: "service unavailable", Code: "CONNECTION_ERROR", Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, &RenderError{Message: "ошибка чтения ответа", Err: err}
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, false, &RenderError{
			Message:    "rate limit exceeded",
			Code:       "RATE_LIMIT_EXCEEDED",
			StatusCode: resp.StatusCode,
			RetryAfter: resp.Header.Get("Retry-After"),
		}
	}

	if resp.StatusCode >= 400 {
		renderErr := &RenderError{
			Message:    fmt.Sprintf("service error: %d", resp.StatusCode),
			Code:       "HTTP_ERROR",
			StatusCode: resp.StatusCode,
		}
		var parsed renderResponse
		if jsonErr := json.Unmarshal(raw, &parsed); jsonErr == nil && parsed.Error.Message != "" {
			renderErr.Message = parsed.Error.Message
			renderErr.Code = parsed.Error.Code
		}
		return nil, false, renderErr
	}

	var parsed renderResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, false, &RenderError{Message: "invalid response body", Err: err}
	}

	imageBytes, err := base64.StdEncoding.DecodeString(parsed.Data.Image)
	if err != nil {
		return nil, false, &RenderError{Message: "invalid image encoding", Err: err}
	}

	c.log.Info("chart rendered",
		"size", len(imageBytes),
		"render_time_ms", parsed.Meta.RenderTime,
	)

	return imageBytes, false, nil
}
