package texts

// Переводы астрологических терминов и шаблоны сообщений бота.
// Имена планет, знаков и аспектов приходят из API в верхнем регистре

// Planets русские названия планет
var Planets = map[string]string{
	"SUN":     "Солнце",
	"MOON":    "Луна",
	"MERCURY": "Меркурий",
	"VENUS":   "Венера",
	"MARS":    "Марс",
	"JUPITER": "Юпитер",
	"SATURN":  "Сатурн",
	"URANUS":  "Уран",
	"NEPTUNE": "Нептун",
	"PLUTO":   "Плутон",
}

// Signs русские названия знаков зодиака
var Signs = map[string]string{
	"ARIES":       "Овен",
	"TAURUS":      "Телец",
	"GEMINI":      "Близнецы",
	"CANCER":      "Рак",
	"LEO":         "Лев",
	"VIRGO":       "Дева",
	"LIBRA":       "Весы",
	"SCORPIO":     "Скорпион",
	"SAGITTARIUS": "Стрелец",
	"CAPRICORN":   "Козерог",
	"AQUARIUS":    "Водолей",
	"PISCES":      "Рыбы",
}

// Aspects русские названия аспектов
var Aspects = map[string]string{
	"CONJUNCTION": "Соединение",
	"OPPOSITION":  "Оппозиция",
	"TRINE":       "Трин",
	"SQUARE":      "Квадрат",
	"SEXTILE":     "Секстиль",
	"QUINCUNX":    "Квинконс",
	"QUINTILE":    "Квинтиль",
}

// AspectSymbols астрологические символы аспектов
var AspectSymbols = map[string]string{
	"CONJUNCTION": "☌",
	"OPPOSITION":  "☍",
	"TRINE":       "△",
	"SQUARE":      "□",
	"SEXTILE":     "⚹",
	"QUINCUNX":    "⚻",
	"QUINTILE":    "Q",
}

const (
	PersonalTransitHeader = "🌟 <b>Персональные транзиты</b>\n\n"

	PersonalTransitNoAspects = "ℹ️ Сейчас нет значимых транзитных аспектов к вашей натальной карте.\n"

	PersonalTransitAspectsHeader = "🔮 <b>Транзитные аспекты к натальной карте:</b>\n\n"

	PersonalTransitLegend = "\n💡 <i>▶️ - аспект формируется, ◀️ - аспект расходится</i>"

	CurrentPositionsHeader = "🌟 *Позиции планет:*\n"

	CurrentAspectsHeader = "\n🔮 *Аспекты:*\n"

	CurrentNoAspects = "Нет значимых аспектов."

	CurrentNoPositions = "Нет данных о позициях планет."

	InterpretationFailed = "⚠️ К сожалению, не удалось сгенерировать интерпретацию. " +
		"Пожалуйста, попробуйте позже."

	BirthDataMissing = "ℹ️ Сначала укажите данные рождения: дату, время и место."
)
