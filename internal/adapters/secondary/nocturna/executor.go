package nocturna

import (
	"bytes"
	"context"
	"crypto/tls"
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

// truncateString обрезает строку до указанной длины
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// Client - клиент для работы с API астрологических расчётов.
// Все операции проходят через единый цикл ретраев с экспоненциальным backoff,
// вместо копий цикла в каждом методе
type Client struct {
	cfg        *Config
	httpClient *http.Client
	log        *slog.Logger

	// backoffUnit единица backoff: пауза перед повтором i равна 2^i единиц
	backoffUnit time.Duration
	// sleep подменяется в тестах, чтобы не ждать реальные секунды
	sleep func(ctx context.Context, d time.Duration) error
}

// NewClient создаёт новый клиент API расчётов
func NewClient(cfg *Config, log *slog.Logger) *Client {
	transport := &http.Transport{}

	if cfg.ShouldSkipSSL() {
		transport.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: true,
		}
	}

	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   cfg.RequestTimeout(),
		},
		log:         log,
		backoffUnit: time.Second,
		sleep:       sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// request один логический запрос к API. Неизменяем на протяжении всех попыток
type request struct {
	method   string
	endpoint string
	payload  any
	noAuth   bool
}

// envelope обёрнутый формат ответа API. Отсутствие поля success означает
// прямой формат - тело возвращается как есть
type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   json.RawMessage `json:"error"`
}

// apiErrorBody error может приходить и объектом, и просто строкой
type apiErrorBody struct {
	Message string          `json:"message"`
	Code    json.RawMessage `json:"code"`
	Details json.RawMessage `json:"details"`
}

func (c *Client) buildURL(endpoint string) string {
	return strings.TrimSuffix(c.cfg.BaseURL, "/") + endpoint
}

func (c *Client) setHeaders(req *http.Request, noAuth bool) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "nocturna-tg/1.0")
	if !noAuth && c.cfg.ServiceToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.ServiceToken)
	}
}

// execute выполняет запрос с ретраями: до MaxRetries повторов сверх первой
// попытки, пауза перед повтором i (с нуля) равна 2^i единиц backoff.
// 4xx и ошибки приложения не ретраятся, отмена контекста прерывает цикл сразу
func (c *Client) execute(ctx context.Context, req request) (json.RawMessage, error) {
	var body []byte
	if req.payload != nil {
		var err error
		body, err = json.Marshal(req.payload)
		if err != nil {
			return nil, fmt.Errorf("ошибка сериализации запроса: %w", err)
		}
	}

	url := c.buildURL(req.endpoint)

	var lastErr *APIError
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(1<<(attempt-1)) * c.backoffUnit
			c.log.Warn("retrying nocturna request",
				"endpoint", req.endpoint,
				"attempt", attempt,
				"delay", delay,
				"kind", lastErr.Kind,
			)
			if err := c.sleep(ctx, delay); err != nil {
				return nil, &APIError{Kind: KindCancelled, Message: "request cancelled during backoff", Err: err}
			}
		}

		if err := ctx.Err(); err != nil {
			return nil, &APIError{Kind: KindCancelled, Message: "request cancelled", Err: err}
		}

		data, apiErr := c.attempt(ctx, req.method, url, body, req.noAuth)
		if apiErr == nil {
			return data, nil
		}
		if !apiErr.Kind.retryable() {
			return nil, apiErr
		}
		lastErr = apiErr
	}

	return nil, lastErr
}

// attempt одна HTTP-попытка с классификацией результата
func (c *Client) attempt(ctx context.Context, method, url string, body []byte, noAuth bool) (json.RawMessage, *APIError) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, &APIError{Kind: KindClient, Message: "ошибка создания запроса", Err: err}
	}
	c.setHeaders(httpReq, noAuth)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, c.classifyTransport(ctx, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &APIError{Kind: KindUnavailable, Message: "ошибка чтения ответа", Err: err}
	}

	switch {
	case resp.StatusCode >= 500:
		return nil, &APIError{
			Kind:       KindServer,
			StatusCode: resp.StatusCode,
			Message:    "server error",
			Body:       truncateString(string(raw), 500),
		}

	case resp.StatusCode >= 400:
		apiErr := &APIError{
			Kind:       KindClient,
			StatusCode: resp.StatusCode,
			Body:       truncateString(string(raw), 500),
		}
		// тело 4xx может быть обёрнутым конвертом с error, иначе сырой текст
		if msg, code, details, ok := parseErrorBody(raw); ok {
			apiErr.Message, apiErr.Code, apiErr.Details = msg, code, details
		} else {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		c.log.Debug("nocturna API client error",
			"status_code", resp.StatusCode,
			"body_preview", truncateString(string(raw), 200),
		)
		return nil, apiErr
	}

	return c.normalize(raw)
}

// classifyTransport различает отмену вызывающего, таймаут и недоступность
func (c *Client) classifyTransport(ctx context.Context, err error) *APIError {
	if ctx.Err() != nil {
		return &APIError{Kind: KindCancelled, Message: "request cancelled", Err: ctx.Err()}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &APIError{Kind: KindTimeout, Message: "request timeout", Err: err}
	}

	return &APIError{Kind: KindUnavailable, Message: "service unavailable", Err: err}
}

// normalize приводит оба формата ответа к одному: из обёрнутого конверта
// достаётся data, прямой формат возвращается как есть
func (c *Client) normalize(raw []byte) (json.RawMessage, *APIError) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		c.log.Debug("failed to unmarshal nocturna response",
			"error", err,
			"body_preview", truncateString(string(raw), 200),
		)
		return nil, &APIError{
			Kind:    KindApplication,
			Message: "invalid response body",
			Body:    truncateString(string(raw), 500),
			Err:     err,
		}
	}

	if env.Success == nil {
		// прямой формат
		return json.RawMessage(raw), nil
	}

	if *env.Success {
		if env.Data == nil {
			return json.RawMessage("{}"), nil
		}
		return env.Data, nil
	}

	msg, code, details := parseErrorSlot(env.Error)
	return nil, &APIError{
		Kind:    KindApplication,
		Message: msg,
		Code:    code,
		Details: details,
	}
}

// parseErrorBody пытается достать структурированную ошибку из тела 4xx
func parseErrorBody(raw []byte) (msg, code string, details json.RawMessage, ok bool) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil || len(env.Error) == 0 {
		return "", "", nil, false
	}
	msg, code, details = parseErrorSlot(env.Error)
	return msg, code, details, true
}

// parseErrorSlot поле error приходит объектом {message, code, details}
// или просто строкой - оба варианта надо принимать
func parseErrorSlot(raw json.RawMessage) (msg, code string, details json.RawMessage) {
	if len(raw) == 0 {
		return "Unknown error", "", nil
	}

	var body apiErrorBody
	if err := json.Unmarshal(raw, &body); err == nil && body.Message != "" {
		return body.Message, strings.Trim(string(body.Code), `"`), body.Details
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil && s != "" {
		return s, "", nil
	}

	return "Unknown error", "", nil
}
