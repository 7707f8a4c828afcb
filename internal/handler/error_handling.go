package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"kidtales-server/internal/models"
)

// handleServiceError мапит ошибки сервисного слоя в HTTP статусы.
// Внутренние детали (payload провайдера, цепочки ошибок) наружу не
// отдаются - только generic сообщение; оригинал логируется на сервере.
func handleServiceError(c *gin.Context, err error) {
	var statusCode int
	var message string

	switch {
	case errors.Is(err, models.ErrInvalidRequest):
		statusCode = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, models.ErrCharacterValidation):
		statusCode = http.StatusBadRequest
		message = "Character name must be between 1 and 50 characters"
	case errors.Is(err, models.ErrMissingCharacterData):
		statusCode = http.StatusBadRequest
		message = "Story has no character data to keep consistent"
	case errors.Is(err, models.ErrStoryNotFound):
		statusCode = http.StatusNotFound
		message = "Story not found"
	case errors.Is(err, models.ErrNotFound):
		statusCode = http.StatusNotFound
		message = "Not found"
	case errors.Is(err, models.ErrRestyleInProgress):
		statusCode = http.StatusConflict
		message = "A restyle of this story is already in progress"
	case errors.Is(err, models.ErrDuplicateWord):
		statusCode = http.StatusConflict
		message = "Word is already saved"
	default:
		zap.L().Error("Unhandled internal error in handleServiceError", zap.Error(err))
		statusCode = http.StatusInternalServerError
		message = "An unexpected internal error occurred"
	}

	c.AbortWithStatusJSON(statusCode, models.ErrorResponse{Success: false, Error: message})
}
