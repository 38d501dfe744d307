package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/gospelstack/sermon-audio/domain/repositories"
	"github.com/gospelstack/sermon-audio/internal/auth"
	"github.com/gospelstack/sermon-audio/internal/websocket"
	"github.com/gospelstack/sermon-audio/usecase"
)

// InitRoutes initializes all API routes
func InitRoutes(e *echo.Echo, generation *usecase.GenerationService, hub *websocket.Hub, logger *zap.Logger) {
	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"service": "sermon-audio",
		})
	})

	// API v1 routes
	v1 := e.Group("/api/v1")

	sermons := v1.Group("/sermons", auth.Middleware())
	sermons.POST("/:id/audio", func(c echo.Context) error {
		return generateAudio(c, generation, logger)
	})
	sermons.GET("/:id/audio", func(c echo.Context) error {
		return checkAudioStatus(c, generation, logger)
	})

	// Generation progress stream
	e.GET("/ws/sermons/:id/progress", hub.HandleProgress)
}

func generateAudio(c echo.Context, generation *usecase.GenerationService, logger *zap.Logger) error {
	sermonID := c.Param("id")

	var req GenerateAudioRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Failed to bind generate audio request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request format",
		})
	}
	if req.Language == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "missing_fields",
			Message: "Language is required",
		})
	}

	userID := ""
	if claims := auth.ClaimsFrom(c); claims != nil {
		userID = claims.UserID
	}

	result, err := generation.GenerateAudio(c.Request().Context(), sermonID, req.Language, req.VoiceName, userID)
	if err != nil {
		return generationError(c, sermonID, err, logger)
	}

	return c.JSON(http.StatusOK, result)
}

func checkAudioStatus(c echo.Context, generation *usecase.GenerationService, logger *zap.Logger) error {
	sermonID := c.Param("id")
	language := c.QueryParam("language")
	if language == "" {
		language = "en"
	}

	status, err := generation.CheckAudioStatus(c.Request().Context(), sermonID, language)
	if err != nil {
		return generationError(c, sermonID, err, logger)
	}

	return c.JSON(http.StatusOK, status)
}

func generationError(c echo.Context, sermonID string, err error, logger *zap.Logger) error {
	var synthErr *repositories.SynthesisError

	switch {
	case errors.Is(err, usecase.ErrSermonNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "sermon_not_found",
			Message: "Sermon does not exist",
		})
	case errors.Is(err, usecase.ErrNoSourceText):
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "no_source_text",
			Message: "Sermon has no text to synthesize",
		})
	case errors.Is(err, repositories.ErrGenerationInProgress):
		return c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "generation_in_progress",
			Message: "Audio generation is already running for this sermon and language",
		})
	case errors.As(err, &synthErr):
		logger.Error("Synthesis provider failure",
			zap.String("sermon_id", sermonID),
			zap.Error(err))
		return c.JSON(http.StatusBadGateway, ErrorResponse{
			Error:   "synthesis_failed",
			Message: "Speech synthesis provider rejected the request",
		})
	default:
		logger.Error("Audio generation failed",
			zap.String("sermon_id", sermonID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "generation_failed",
			Message: "Audio generation failed",
		})
	}
}
