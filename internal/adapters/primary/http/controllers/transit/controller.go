package transit

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eaprelsky/nocturna-tg/internal/adapters/secondary/nocturna"
	"github.com/eaprelsky/nocturna-tg/internal/domain"
	astroUsecase "github.com/eaprelsky/nocturna-tg/internal/usecases/astro"
)

type Controller struct {
	AstroService *astroUsecase.Service
	Log          *slog.Logger
}

func New(
	astroService *astroUsecase.Service,
	log *slog.Logger,
) *Controller {
	return &Controller{
		AstroService: astroService,
		Log:          log,
	}
}

func (c *Controller) RegisterRoutes(router *gin.Engine) {
	transits := router.Group("/transits")
	{
		transits.POST("/personal", c.personalTransit)
		transits.POST("/current", c.currentTransit)
	}
}

// personalTransit рассчитывает персональные транзиты пользователя
func (c *Controller) personalTransit(ctx *gin.Context) {
	var req PersonalTransitRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.Log.Warn("failed to bind personal transit request", "error", err)
		ctx.JSON(http.StatusBadRequest, TransitResponse{
			Success:      false,
			ErrorMessage: fmt.Sprintf("Invalid request: %v", err),
		})
		return
	}

	report, err := c.AstroService.PersonalTransitReport(ctx.Request.Context(), req.TelegramID, req.OrbMultiplier)
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, TransitResponse{
		Success:  true,
		Text:     report.Text,
		ChartURL: report.ChartURL,
	})
}

// currentTransit рассчитывает текущий транзит для точки наблюдения
func (c *Controller) currentTransit(ctx *gin.Context) {
	var req CurrentTransitRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.Log.Warn("failed to bind current transit request", "error", err)
		ctx.JSON(http.StatusBadRequest, TransitResponse{
			Success:      false,
			ErrorMessage: fmt.Sprintf("Invalid request: %v", err),
		})
		return
	}

	report, err := c.AstroService.CurrentTransitReport(ctx.Request.Context(), req.Latitude, req.Longitude, req.WithInterpretation)
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, TransitResponse{
		Success:        true,
		Text:           report.Text,
		ChartURL:       report.ChartURL,
		Interpretation: report.Interpretation,
	})
}

// respondError переводит доменные ошибки в HTTP-статусы
func (c *Controller) respondError(ctx *gin.Context, err error) {
	resp := TransitResponse{
		Success:      false,
		ErrorMessage: err.Error(),
		FailedStep:   domain.FailedStep(err),
	}

	switch {
	case errors.Is(err, domain.ErrNoBirthData):
		resp.ErrorMessage = "birth data is not set"
		ctx.JSON(http.StatusNotFound, resp)
	case nocturna.IsKind(err, nocturna.KindClient), nocturna.IsKind(err, nocturna.KindApplication):
		ctx.JSON(http.StatusUnprocessableEntity, resp)
	case nocturna.IsKind(err, nocturna.KindTimeout), nocturna.IsKind(err, nocturna.KindUnavailable):
		ctx.JSON(http.StatusBadGateway, resp)
	default:
		c.Log.Error("transit request failed", "error", err, "step", resp.FailedStep)
		ctx.JSON(http.StatusInternalServerError, resp)
	}
}
