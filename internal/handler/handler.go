package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"kidtales-server/internal/service"
)

// Handler handles HTTP requests of the story pipeline.
type Handler struct {
	storyService      service.StoryService
	restyleService    service.RestyleService
	imageService      service.ImageService
	vocabularyService service.VocabularyService
	logger            *zap.Logger
}

func NewHandler(
	storyService service.StoryService,
	restyleService service.RestyleService,
	imageService service.ImageService,
	vocabularyService service.VocabularyService,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		storyService:      storyService,
		restyleService:    restyleService,
		imageService:      imageService,
		vocabularyService: vocabularyService,
		logger:            logger.Named("Handler"),
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api")
	{
		apiGroup.POST("/restyle-story", h.restyleStory)
		apiGroup.POST("/generate-image", h.generateImage)

		apiGroup.POST("/stories", h.createStory)
		apiGroup.GET("/stories/:storyId", h.getStory)

		apiGroup.POST("/vocabulary-words", h.saveVocabularyWord)
		apiGroup.GET("/vocabulary-words", h.listVocabularyWords)
		apiGroup.DELETE("/vocabulary-words/:id", h.deleteVocabularyWord)
	}
}
