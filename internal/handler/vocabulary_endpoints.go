package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"kidtales-server/internal/models"
)

type saveWordRequest struct {
	UserID int64   `json:"userId"`
	Word   string  `json:"word"`
	Note   *string `json:"note,omitempty"`
}

// saveVocabularyWord сохраняет слово пользователя.
// POST /api/vocabulary-words
func (h *Handler) saveVocabularyWord(c *gin.Context) {
	var req saveWordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   "Invalid request data: " + err.Error(),
		})
		return
	}

	word, err := h.vocabularyService.SaveWord(c.Request.Context(), req.UserID, req.Word, req.Note)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "word": word})
}

// listVocabularyWords возвращает словарь пользователя.
// GET /api/vocabulary-words?userId=N
func (h *Handler) listVocabularyWords(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Query("userId"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   "Invalid userId query parameter",
		})
		return
	}

	words, err := h.vocabularyService.ListWords(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "words": words})
}

// deleteVocabularyWord удаляет слово по id.
// DELETE /api/vocabulary-words/:id
func (h *Handler) deleteVocabularyWord(c *gin.Context) {
	wordID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   "Invalid word id",
		})
		return
	}

	if err := h.vocabularyService.DeleteWord(c.Request.Context(), wordID); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
