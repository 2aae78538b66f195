package transit

// PersonalTransitRequest запрос персональных транзитов пользователя
type PersonalTransitRequest struct {
	TelegramID    int64   `json:"telegram_id" binding:"required"`
	OrbMultiplier float64 `json:"orb_multiplier"` // 0 означает 1.0
}

// CurrentTransitRequest запрос текущего транзита
type CurrentTransitRequest struct {
	Latitude          float64 `json:"latitude"`  // 0,0 означает точку по умолчанию
	Longitude         float64 `json:"longitude"`
	WithInterpretation bool   `json:"with_interpretation"`
}

// TransitResponse ответ с отчётом о транзите
type TransitResponse struct {
	Success        bool   `json:"success"`
	Text           string `json:"text,omitempty"`
	ChartURL       string `json:"chart_url,omitempty"`
	Interpretation string `json:"interpretation,omitempty"`
	FailedStep     string `json:"failed_step,omitempty"`
	ErrorMessage   string `json:"error_message,omitempty"`
}
