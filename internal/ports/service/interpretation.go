package service

import (
	"context"

	"github.com/eaprelsky/nocturna-tg/internal/domain"
)

// IInterpretationService интерфейс генерации текстовых интерпретаций (LLM)
type IInterpretationService interface {
	InterpretTransit(ctx context.Context, positions []domain.PlanetPosition, aspects []domain.Aspect) (string, error)
}
