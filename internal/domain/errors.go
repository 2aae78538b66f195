package domain

import (
	"errors"
	"fmt"
)

// BusinessError ошибка бизнес-логики, которая уже залогирована в UseCase
type BusinessError struct {
	Err error
}

func (e *BusinessError) Error() string {
	return e.Err.Error()
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func WrapBusinessError(err error) error {
	if err == nil {
		return nil
	}
	return &BusinessError{Err: err}
}

func IsBusinessError(err error) bool {
	var businessErr *BusinessError
	return errors.As(err, &businessErr)
}

// ErrNoBirthData пользователь ещё не указал данные рождения
var ErrNoBirthData = errors.New("birth data is not set")

// Шаги оркестратора транзитов (теги для StepError)
const (
	StepNatalChartCreate   = "natal-chart-create"
	StepNatalPositions     = "natal-positions"
	StepNatalHouses        = "natal-houses"
	StepTransitChartCreate = "transit-chart-create"
	StepTransitPositions   = "transit-positions"
	StepTransitHouses      = "transit-houses"
	StepSynastry           = "synastry"
)

// StepError ошибка конкретного шага оркестратора транзитов.
// Позволяет вызывающему различать проблемы по под-ресурсам API
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

func WrapStepError(step string, err error) error {
	if err == nil {
		return nil
	}
	return &StepError{Step: step, Err: err}
}

// FailedStep возвращает тег упавшего шага или пустую строку
func FailedStep(err error) string {
	var stepErr *StepError
	if errors.As(err, &stepErr) {
		return stepErr.Step
	}
	return ""
}
