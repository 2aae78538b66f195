package texts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/eaprelsky/nocturna-tg/internal/domain"
)

func boolPtr(v bool) *bool { return &v }

func TestFormatPosition(t *testing.T) {
	pos := domain.PlanetPosition{
		Planet: "SUN", Sign: "TAURUS", Degree: 24, Minute: 5, IsRetrograde: false,
	}
	assert.Equal(t, "Солнце в Телец 24°05'", FormatPosition(pos))

	pos.Planet = "MERCURY"
	pos.IsRetrograde = true
	assert.Equal(t, "Меркурий в Телец 24°05' ℞", FormatPosition(pos))
}

func TestFormatPosition_UnknownNamesPassThrough(t *testing.T) {
	pos := domain.PlanetPosition{Planet: "CHIRON", Sign: "OPHIUCHUS"}
	got := FormatPosition(pos)
	assert.Contains(t, got, "CHIRON")
	assert.Contains(t, got, "OPHIUCHUS")
}

func TestFormatAspect(t *testing.T) {
	aspect := domain.Aspect{
		Planet1: "SUN", Planet2: "MOON", AspectType: "TRINE", Orb: 2.14,
	}
	assert.Equal(t, "Солнце △ Луна (Трин, орб 2.1°)", FormatAspect(aspect))

	aspect.Applying = boolPtr(true)
	assert.Equal(t, "Солнце △ Луна (Трин, орб 2.1°) (сходящийся)", FormatAspect(aspect))

	aspect.Applying = boolPtr(false)
	assert.Equal(t, "Солнце △ Луна (Трин, орб 2.1°) (расходящийся)", FormatAspect(aspect))
}

func TestFormatPersonalTransitReport(t *testing.T) {
	transit := &domain.PersonalTransit{
		TransitDate: "2024-06-01",
		TransitTime: "12:00:00",
		Aspects: []domain.Aspect{
			{Planet1: "SUN", Planet2: "SATURN", AspectType: "SQUARE", Orb: 0.8, Applying: boolPtr(true)},
			{Planet1: "MOON", Planet2: "JUPITER", AspectType: "TRINE", Orb: 3.2, Applying: boolPtr(false)},
		},
	}

	report := FormatPersonalTransitReport(transit, 10)
	assert.Contains(t, report, "2024-06-01")
	// в синастрии planet2 - транзитная планета
	assert.Contains(t, report, "<b>Сатурн</b> (транзит) Квадрат натальный <b>Солнце</b>")
	assert.Contains(t, report, "▶️")
	assert.Contains(t, report, "◀️")
	assert.Contains(t, report, "аспект формируется")
}

func TestFormatPersonalTransitReport_NoAspects(t *testing.T) {
	transit := &domain.PersonalTransit{TransitDate: "2024-06-01", TransitTime: "12:00:00"}

	report := FormatPersonalTransitReport(transit, 10)
	assert.Contains(t, report, "нет значимых транзитных аспектов")
	assert.NotContains(t, report, "Орб")
}

func TestFormatPersonalTransitReport_LimitsAspects(t *testing.T) {
	transit := &domain.PersonalTransit{TransitDate: "2024-06-01", TransitTime: "12:00:00"}
	for i := 0; i < 15; i++ {
		transit.Aspects = append(transit.Aspects, domain.Aspect{
			Planet1: "SUN", Planet2: "MOON", AspectType: "SEXTILE", Orb: 1.0,
		})
	}

	report := FormatPersonalTransitReport(transit, 10)
	assert.Equal(t, 10, strings.Count(report, "Орб:"))
	assert.Contains(t, report, "и еще 5 аспектов")
}

func TestFormatCurrentTransitReport(t *testing.T) {
	transit := &domain.CurrentTransit{
		Positions: []domain.PlanetPosition{
			{Planet: "SUN", Sign: "GEMINI", Degree: 10, Minute: 30},
		},
		Aspects: []domain.Aspect{
			{Planet1: "SUN", Planet2: "MOON", AspectType: "CONJUNCTION", Orb: 1.2},
		},
	}

	report := FormatCurrentTransitReport(transit)
	assert.Contains(t, report, "Позиции планет")
	assert.Contains(t, report, "Солнце в Близнецы 10°30'")
	assert.Contains(t, report, "Солнце ☌ Луна (Соединение, орб 1.2°)")
}

func TestFormatCurrentTransitReport_Empty(t *testing.T) {
	report := FormatCurrentTransitReport(&domain.CurrentTransit{})
	assert.Contains(t, report, CurrentNoPositions)
	assert.Contains(t, report, CurrentNoAspects)
}
