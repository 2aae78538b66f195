package chartrender

// PlanetPoint позиция планеты в формате сервиса отрисовки
type PlanetPoint struct {
	Lon        float64 `json:"lon"`
	Lat        float64 `json:"lat"`
	Retrograde bool    `json:"retrograde"`
}

// HousePoint куспид дома в формате сервиса отрисовки
type HousePoint struct {
	Lon float64 `json:"lon"`
}

type aspectTypeToggle struct {
	Enabled bool `json:"enabled"`
}

// majorAspectTypes все мажорные аспекты включены в отрисовку
func majorAspectTypes() map[string]aspectTypeToggle {
	return map[string]aspectTypeToggle{
		"conjunction": {Enabled: true},
		"opposition":  {Enabled: true},
		"trine":       {Enabled: true},
		"square":      {Enabled: true},
		"sextile":     {Enabled: true},
	}
}

type aspectSettings struct {
	Enabled bool                        `json:"enabled"`
	Orb     int                         `json:"orb"`
	Types   map[string]aspectTypeToggle `json:"types,omitempty"`
}

type renderOptions struct {
	Format  string `json:"format"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Quality int    `json:"quality"`
	Theme   string `json:"theme"`
}

type renderChartRequest struct {
	Planets        map[string]PlanetPoint `json:"planets"`
	Houses         []HousePoint           `json:"houses"`
	AspectSettings aspectSettings         `json:"aspectSettings"`
	RenderOptions  renderOptions          `json:"renderOptions"`
}

type wheelData struct {
	Planets map[string]PlanetPoint `json:"planets"`
	Houses  []HousePoint           `json:"houses,omitempty"`
	// Datetime момент внешнего колеса в ISO-формате
	Datetime string `json:"datetime,omitempty"`
}

type transitAspectSettings struct {
	Natal          aspectSettings `json:"natal"`
	Transit        aspectSettings `json:"transit"`
	NatalToTransit aspectSettings `json:"natalToTransit"`
}

type renderTransitRequest struct {
	Natal          wheelData             `json:"natal"`
	Transit        wheelData             `json:"transit"`
	AspectSettings transitAspectSettings `json:"aspectSettings"`
	RenderOptions  renderOptions         `json:"renderOptions"`
}

type renderResponse struct {
	Data struct {
		Image string `json:"image"` // base64
		Size  int    `json:"size"`
	} `json:"data"`
	Meta struct {
		RenderTime int `json:"renderTime"` // миллисекунды
	} `json:"meta"`
	Error struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"error"`
}
