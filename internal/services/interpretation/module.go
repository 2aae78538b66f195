package interpretation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/eaprelsky/nocturna-tg/internal/adapters/secondary/openrouter"
	"github.com/eaprelsky/nocturna-tg/internal/domain"
	"github.com/eaprelsky/nocturna-tg/internal/ports/service"
)

const systemPrompt = `Ты — опытный астролог с глубокими знаниями западной астрологии.
Твоя задача — дать краткую, но содержательную интерпретацию текущего транзита планет, ориентированную на повседневную жизнь людей.

Это анализ энергий дня, он не учитывает влияние на конкретного человека, поэтому избегай использования личных местоимений. Говори об энергиях дня в целом.

Твой анализ должен:
- Быть написан на русском языке.
- Быть понятным для обычного человека (избегай сложной терминологии).
- Фокусироваться на практических аспектах и влиянии на повседневную жизнь.
- Быть позитивным, но реалистичным.
- Быть кратким (максимум 400-500 слов).
- Выделять наиболее важные влияния.
- НЕ ИСПОЛЬЗОВАТЬ ЗАГОЛОВКИ ИЛИ MARKDOWN форматирование (например, #, ##, ***, ---). Используй только абзацы и обычный текст.

Структура ответа:
1. Общая энергия дня (1-2 предложения, ключевая тема).
2. Влияние на отношения и общение (как планетарные энергии могут отразиться на взаимодействии с окружающими).
3. Влияние на работу, карьеру и финансы (какие возможности или вызовы могут возникнуть в этих сферах).
4. Влияние на эмоциональное состояние и внутренний мир (как текущие транзиты сказываются на чувствах и самочувствии).
5. Практические рекомендации (что благоприятно делать, чего стоит избегать, на что обратить внимание).
6. Совет дня (краткое вдохновляющее заключение).

Используй эмодзи для визуального акцента (но умеренно и только в начале абзацев).`

// Service реализует IInterpretationService поверх OpenRouter
type Service struct {
	client *openrouter.Client
	log    *slog.Logger
}

// New создаёт новый сервис интерпретаций
func New(client *openrouter.Client, log *slog.Logger) service.IInterpretationService {
	return &Service{
		client: client,
		log:    log,
	}
}

// InterpretTransit генерирует интерпретацию текущего транзита на русском
func (s *Service) InterpretTransit(ctx context.Context, positions []domain.PlanetPosition, aspects []domain.Aspect) (string, error) {
	userPrompt := fmt.Sprintf(`Проанализируй следующую астрологическую картину дня:

Текущие позиции планет:
%s

Текущие аспекты:
%s

На основе этих данных, пожалуйста, предоставь краткую интерпретацию, следуя указанной выше структуре и правилам форматирования.`,
		formatPositions(positions),
		formatAspects(aspects))

	messages := []openrouter.ChatMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: userPrompt},
	}

	interpretation, err := s.client.GenerateCompletion(ctx, messages, 0.7, 1500)
	if err != nil {
		s.log.Error("failed to generate interpretation", "error", err)
		return "", fmt.Errorf("ошибка генерации интерпретации: %w", err)
	}

	return interpretation, nil
}

func formatPositions(positions []domain.PlanetPosition) string {
	var lines []string
	for _, pos := range positions {
		retrograde := ""
		if pos.IsRetrograde {
			retrograde = " (ретроградный)"
		}
		lines = append(lines, fmt.Sprintf("- %s в %s %d°%02d'%s",
			pos.Planet, pos.Sign, int(pos.Degree), int(pos.Minute), retrograde))
	}
	return strings.Join(lines, "\n")
}

func formatAspects(aspects []domain.Aspect) string {
	if len(aspects) == 0 {
		return "Нет значимых аспектов."
	}

	var lines []string
	for _, asp := range aspects {
		applying := ""
		if asp.Applying != nil {
			if *asp.Applying {
				applying = " (сходящийся)"
			} else {
				applying = " (расходящийся)"
			}
		}
		lines = append(lines, fmt.Sprintf("- %s %s %s (орб %.1f°)%s",
			asp.Planet1, asp.AspectType, asp.Planet2, asp.Orb, applying))
	}
	return strings.Join(lines, "\n")
}
