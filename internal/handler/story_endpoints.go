package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"kidtales-server/internal/models"
)

// restyleStory перегенерирует все иллюстрации истории в новом стиле.
// POST /api/restyle-story
func (h *Handler) restyleStory(c *gin.Context) {
	var req models.RestyleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   "Invalid request data: " + err.Error(),
		})
		return
	}

	resp, err := h.restyleService.RestyleStory(c.Request.Context(), req.StoryID, req.NewStyle)
	if err != nil {
		restylesTotal.WithLabelValues("error").Inc()
		h.logger.Error("Restyle request failed",
			zap.String("story_id", req.StoryID),
			zap.String("new_style", req.NewStyle),
			zap.Error(err))
		handleServiceError(c, err)
		return
	}

	restylesTotal.WithLabelValues("success").Inc()
	c.JSON(http.StatusOK, resp)
}

// generateImage - одиночная генерация изображения.
// POST /api/generate-image
func (h *Handler) generateImage(c *gin.Context) {
	var req models.GenerateImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   "Invalid request data: " + err.Error(),
		})
		return
	}

	resp, err := h.imageService.GenerateImage(c.Request.Context(), req)
	if err != nil {
		h.logger.Error("Image generation request failed", zap.Error(err))
		handleServiceError(c, err)
		return
	}

	imagesGeneratedTotal.Inc()
	c.JSON(http.StatusOK, resp)
}

// createStory генерирует новую историю с иллюстрациями.
// POST /api/stories
func (h *Handler) createStory(c *gin.Context) {
	var req models.CreateStoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   "Invalid request data: " + err.Error(),
		})
		return
	}

	story, err := h.storyService.CreateStory(c.Request.Context(), req)
	if err != nil {
		h.logger.Error("Story creation failed",
			zap.String("user_email", req.UserEmail),
			zap.Error(err))
		handleServiceError(c, err)
		return
	}

	storiesCreatedTotal.Inc()
	c.JSON(http.StatusCreated, gin.H{"success": true, "story": story})
}

// getStory возвращает историю по storyId.
// GET /api/stories/:storyId
func (h *Handler) getStory(c *gin.Context) {
	story, err := h.storyService.GetStory(c.Request.Context(), c.Param("storyId"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "story": story})
}
