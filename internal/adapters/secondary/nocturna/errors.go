package nocturna

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrorKind классификация ошибок обращения к API расчётов
type ErrorKind string

const (
	// KindTimeout нет ответа в пределах таймаута (ретраится)
	KindTimeout ErrorKind = "timeout"
	// KindUnavailable отказ соединения, сброс, ошибка DNS (ретраится)
	KindUnavailable ErrorKind = "unavailable"
	// KindServer HTTP 5xx (ретраится)
	KindServer ErrorKind = "server_error"
	// KindClient HTTP 4xx (не ретраится)
	KindClient ErrorKind = "client_error"
	// KindApplication 2xx с success:false в конверте (не ретраится)
	KindApplication ErrorKind = "application_error"
	// KindCancelled отмена или дедлайн вызывающего (прерывает ретраи сразу)
	KindCancelled ErrorKind = "cancelled"
)

// retryable ретраятся только транспортные сбои и 5xx
func (k ErrorKind) retryable() bool {
	return k == KindTimeout || k == KindUnavailable || k == KindServer
}

// APIError типизированная ошибка API расчётов.
// Kind определяет поведение ретраев и то, как ошибка показывается пользователю
type APIError struct {
	Kind       ErrorKind
	StatusCode int             // для KindServer/KindClient
	Message    string
	Code       string          // код ошибки приложения, если API его вернул
	Details    json.RawMessage // детали ошибки приложения, если есть
	Body       string          // усечённое тело ответа для диагностики
	Err        error           // исходная транспортная ошибка
}

func (e *APIError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "nocturna API error [%s", e.Kind)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, ", status=%d", e.StatusCode)
	}
	if e.Code != "" {
		fmt.Fprintf(&b, ", code=%s", e.Code)
	}
	b.WriteString("]")
	if e.Message != "" {
		fmt.Fprintf(&b, ": %s", e.Message)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// KindOf возвращает Kind ошибки или пустую строку, если это не APIError
func KindOf(err error) ErrorKind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return ""
}

// IsKind проверяет классификацию ошибки
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
