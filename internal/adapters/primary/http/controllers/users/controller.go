package users

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

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
	users := router.Group("/users")
	{
		users.POST("", c.registerUser)
		users.GET("/:telegram_id", c.getUser)
		users.PUT("/:telegram_id/birth-data", c.setBirthData)
		users.GET("/:telegram_id/birth-data", c.getBirthData)
		users.DELETE("/:telegram_id/birth-data", c.deleteBirthData)
	}
}

// RegisterUserRequest запрос регистрации пользователя
type RegisterUserRequest struct {
	TelegramID int64   `json:"telegram_id" binding:"required"`
	Username   *string `json:"username,omitempty"`
}

// BirthDataRequest данные рождения пользователя
type BirthDataRequest struct {
	BirthDate    string  `json:"birth_date" binding:"required"` // YYYY-MM-DD
	BirthTime    string  `json:"birth_time" binding:"required"` // HH:MM:SS
	Timezone     string  `json:"timezone" binding:"required"`   // Europe/Moscow
	LocationName *string `json:"location_name,omitempty"`
	Latitude     float64 `json:"latitude" binding:"min=-90,max=90"`
	Longitude    float64 `json:"longitude" binding:"min=-180,max=180"`
}

type statusResponse struct {
	Success      bool   `json:"success"`
	ErrorMessage string `json:"error_message,omitempty"`
}

func (c *Controller) registerUser(ctx *gin.Context) {
	var req RegisterUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, statusResponse{
			Success:      false,
			ErrorMessage: fmt.Sprintf("Invalid request: %v", err),
		})
		return
	}

	if err := c.AstroService.RegisterUser(ctx.Request.Context(), req.TelegramID, req.Username); err != nil {
		c.Log.Error("failed to register user", "error", err, "telegram_id", req.TelegramID)
		ctx.JSON(http.StatusInternalServerError, statusResponse{
			Success:      false,
			ErrorMessage: err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, statusResponse{Success: true})
}

func (c *Controller) getUser(ctx *gin.Context) {
	telegramID, ok := c.telegramIDParam(ctx)
	if !ok {
		return
	}

	user, err := c.AstroService.GetUser(ctx.Request.Context(), telegramID)
	if err != nil {
		c.Log.Error("failed to get user", "error", err, "telegram_id", telegramID)
		ctx.JSON(http.StatusInternalServerError, statusResponse{
			Success:      false,
			ErrorMessage: err.Error(),
		})
		return
	}
	if user == nil {
		ctx.JSON(http.StatusNotFound, statusResponse{
			Success:      false,
			ErrorMessage: "user is not registered",
		})
		return
	}

	ctx.JSON(http.StatusOK, user)
}

func (c *Controller) setBirthData(ctx *gin.Context) {
	telegramID, ok := c.telegramIDParam(ctx)
	if !ok {
		return
	}

	var req BirthDataRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, statusResponse{
			Success:      false,
			ErrorMessage: fmt.Sprintf("Invalid request: %v", err),
		})
		return
	}

	err := c.AstroService.SetBirthData(ctx.Request.Context(), &domain.UserBirthData{
		UserID:       telegramID,
		BirthDate:    req.BirthDate,
		BirthTime:    req.BirthTime,
		Timezone:     req.Timezone,
		LocationName: req.LocationName,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
	})
	if err != nil {
		if domain.IsBusinessError(err) {
			ctx.JSON(http.StatusUnprocessableEntity, statusResponse{
				Success:      false,
				ErrorMessage: err.Error(),
			})
			return
		}
		c.Log.Error("failed to set birth data", "error", err, "telegram_id", telegramID)
		ctx.JSON(http.StatusInternalServerError, statusResponse{
			Success:      false,
			ErrorMessage: err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, statusResponse{Success: true})
}

func (c *Controller) getBirthData(ctx *gin.Context) {
	telegramID, ok := c.telegramIDParam(ctx)
	if !ok {
		return
	}

	data, err := c.AstroService.GetBirthData(ctx.Request.Context(), telegramID)
	if err != nil {
		if errors.Is(err, domain.ErrNoBirthData) {
			ctx.JSON(http.StatusNotFound, statusResponse{
				Success:      false,
				ErrorMessage: "birth data is not set",
			})
			return
		}
		c.Log.Error("failed to get birth data", "error", err, "telegram_id", telegramID)
		ctx.JSON(http.StatusInternalServerError, statusResponse{
			Success:      false,
			ErrorMessage: err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, data)
}

func (c *Controller) deleteBirthData(ctx *gin.Context) {
	telegramID, ok := c.telegramIDParam(ctx)
	if !ok {
		return
	}

	if err := c.AstroService.DeleteBirthData(ctx.Request.Context(), telegramID); err != nil {
		if errors.Is(err, domain.ErrNoBirthData) {
			ctx.JSON(http.StatusNotFound, statusResponse{
				Success:      false,
				ErrorMessage: "birth data is not set",
			})
			return
		}
		c.Log.Error("failed to delete birth data", "error", err, "telegram_id", telegramID)
		ctx.JSON(http.StatusInternalServerError, statusResponse{
			Success:      false,
			ErrorMessage: err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, statusResponse{Success: true})
}

func (c *Controller) telegramIDParam(ctx *gin.Context) (int64, bool) {
	telegramID, err := strconv.ParseInt(ctx.Param("telegram_id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, statusResponse{
			Success:      false,
			ErrorMessage: "invalid telegram_id",
		})
		return 0, false
	}
	return telegramID, true
}
