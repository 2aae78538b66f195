package texts

import (
	"fmt"
	"strings"

	"github.com/eaprelsky/nocturna-tg/internal/domain"
)

// PlanetName возвращает русское название планеты
func PlanetName(planet string) string {
	if name, ok := Planets[strings.ToUpper(planet)]; ok {
		return name
	}
	return planet
}

// SignName возвращает русское название знака зодиака
func SignName(sign string) string {
	if name, ok := Signs[strings.ToUpper(sign)]; ok {
		return name
	}
	return sign
}

// AspectName возвращает русское название аспекта
func AspectName(aspect string) string {
	if name, ok := Aspects[strings.ToUpper(aspect)]; ok {
		return name
	}
	return aspect
}

// AspectSymbol возвращает символ аспекта
func AspectSymbol(aspect string) string {
	return AspectSymbols[strings.ToUpper(aspect)]
}

// FormatPosition форматирует позицию планеты: "Солнце в Тельце 24°30' ℞"
func FormatPosition(pos domain.PlanetPosition) string {
	retrograde := ""
	if pos.IsRetrograde {
		retrograde = " ℞"
	}
	return fmt.Sprintf("%s в %s %d°%02d'%s",
		PlanetName(pos.Planet),
		SignName(pos.Sign),
		int(pos.Degree),
		int(pos.Minute),
		retrograde)
}

// FormatAspect форматирует аспект между планетами
func FormatAspect(aspect domain.Aspect) string {
	applying := ""
	if aspect.Applying != nil {
		if *aspect.Applying {
			applying = " (сходящийся)"
		} else {
			applying = " (расходящийся)"
		}
	}
	return fmt.Sprintf("%s %s %s (%s, орб %.1f°)%s",
		PlanetName(aspect.Planet1),
		AspectSymbol(aspect.AspectType),
		PlanetName(aspect.Planet2),
		AspectName(aspect.AspectType),
		aspect.Orb,
		applying)
}

// FormatCurrentTransitReport форматирует отчёт о текущем транзите
func FormatCurrentTransitReport(transit *domain.CurrentTransit) string {
	var report strings.Builder

	if len(transit.Positions) == 0 {
		report.WriteString(CurrentNoPositions)
	} else {
		report.WriteString(CurrentPositionsHeader)
		for _, pos := range transit.Positions {
			report.WriteString(FormatPosition(pos))
			report.WriteString("\n")
		}
	}

	report.WriteString(CurrentAspectsHeader)
	if len(transit.Aspects) == 0 {
		report.WriteString(CurrentNoAspects)
	} else {
		for _, asp := range transit.Aspects {
			report.WriteString(FormatAspect(asp))
			report.WriteString("\n")
		}
	}

	return report.String()
}

// FormatPersonalTransitReport форматирует отчёт о персональных транзитах.
// В синастрии planet1 - натальная планета, planet2 - транзитная
func FormatPersonalTransitReport(transit *domain.PersonalTransit, maxAspects int) string {
	var report strings.Builder

	report.WriteString(PersonalTransitHeader)
	report.WriteString(fmt.Sprintf("📅 <b>Дата:</b> %s\n", transit.TransitDate))
	report.WriteString(fmt.Sprintf("🕐 <b>Время:</b> %s\n\n", transit.TransitTime))

	if len(transit.Aspects) == 0 {
		report.WriteString(PersonalTransitNoAspects)
		return report.String()
	}

	report.WriteString(PersonalTransitAspectsHeader)

	shown := transit.Aspects
	if maxAspects > 0 && len(shown) > maxAspects {
		shown = shown[:maxAspects]
	}

	hasApplying := false
	for _, aspect := range shown {
		status := ""
		if aspect.Applying != nil {
			if *aspect.Applying {
				status = "▶️ "
			} else {
				status = "◀️ "
			}
		}
		report.WriteString(fmt.Sprintf("  %s<b>%s</b> (транзит) %s натальный <b>%s</b>\n",
			status,
			PlanetName(aspect.Planet2),
			AspectName(aspect.AspectType),
			PlanetName(aspect.Planet1)))
		report.WriteString(fmt.Sprintf("      Орб: %.1f°\n\n", aspect.Orb))
	}

	if len(transit.Aspects) > len(shown) {
		report.WriteString(fmt.Sprintf("\n<i>... и еще %d аспектов</i>\n", len(transit.Aspects)-len(shown)))
	}

	for _, aspect := range transit.Aspects {
		if aspect.Applying != nil {
			hasApplying = true
			break
		}
	}
	if hasApplying {
		report.WriteString(PersonalTransitLegend)
	}

	return report.String()
}
