package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"kidtales-server/internal/models"
	servicemocks "kidtales-server/internal/service/mocks"
)

type handlerFixture struct {
	storySvc   *servicemocks.StoryService
	restyleSvc *servicemocks.RestyleService
	imageSvc   *servicemocks.ImageService
	vocabSvc   *servicemocks.VocabularyService
	router     *gin.Engine
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := &handlerFixture{
		storySvc:   new(servicemocks.StoryService),
		restyleSvc: new(servicemocks.RestyleService),
		imageSvc:   new(servicemocks.ImageService),
		vocabSvc:   new(servicemocks.VocabularyService),
		router:     gin.New(),
	}
	h := NewHandler(f.storySvc, f.restyleSvc, f.imageSvc, f.vocabSvc, zap.NewNop())
	h.RegisterRoutes(f.router)
	return f
}

func (f *handlerFixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestRestyleStory_OK(t *testing.T) {
	f := newHandlerFixture(t)

	f.restyleSvc.On("RestyleStory", mock.Anything, "story-42", "pixel").Return(&models.RestyleResponse{
		Success:  true,
		Message:  "Story restyled to pixel (3 pages)",
		NewStyle: "pixel",
		RestyledPages: []models.RestyledPage{
			{PageIndex: 0, OldImage: "old", NewImage: "new"},
		},
		UpdatedGenerations: []models.GenerationUpdate{
			{PageIndex: 0, NewImage: "new", NewSeed: "123"},
		},
	}, nil).Once()

	w := f.do(t, http.MethodPost, "/api/restyle-story", models.RestyleRequest{
		StoryID: "story-42", NewStyle: "pixel",
	})

	require.Equal(t, http.StatusOK, w.Code)
	var resp models.RestyleResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "pixel", resp.NewStyle)
	require.Len(t, resp.RestyledPages, 1)
	assert.Equal(t, "123", resp.UpdatedGenerations[0].NewSeed)
	f.restyleSvc.AssertExpectations(t)
}

func TestRestyleStory_ErrorMapping(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"validation", models.ErrInvalidRequest, http.StatusBadRequest},
		{"missing character", models.ErrMissingCharacterData, http.StatusBadRequest},
		{"not found", models.ErrStoryNotFound, http.StatusNotFound},
		{"in progress", models.ErrRestyleInProgress, http.StatusConflict},
		{"restyle failed", models.ErrRestyleFailed, http.StatusInternalServerError},
		{"generation timeout", models.ErrGenerationTimeout, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newHandlerFixture(t)
			f.restyleSvc.On("RestyleStory", mock.Anything, "story-42", "pixel").Return(nil, tc.err).Once()

			w := f.do(t, http.MethodPost, "/api/restyle-story", models.RestyleRequest{
				StoryID: "story-42", NewStyle: "pixel",
			})

			require.Equal(t, tc.wantCode, w.Code)
			var resp models.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			assert.NotEmpty(t, resp.Error)
			if tc.wantCode == http.StatusInternalServerError {
				// Внутренние детали не утекают наружу
				assert.Equal(t, "An unexpected internal error occurred", resp.Error)
			}
		})
	}
}

func TestRestyleStory_MalformedBody(t *testing.T) {
	f := newHandlerFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/restyle-story", bytes.NewReader([]byte("{not json")))
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	f.restyleSvc.AssertNotCalled(t, "RestyleStory", mock.Anything, mock.Anything, mock.Anything)
}

func TestGenerateImage_OK(t *testing.T) {
	f := newHandlerFixture(t)

	neg := "blurry, low quality, distorted, ugly, deformed"
	f.imageSvc.On("GenerateImage", mock.Anything, mock.AnythingOfType("models.GenerateImageRequest")).
		Return(&models.GenerateImageResponse{
			Success:            true,
			ImageURL:           "https://durable/img.png",
			Prompt:             "final prompt",
			NegativePrompt:     &neg,
			EnforceConsistency: true,
		}, nil).Once()

	w := f.do(t, http.MethodPost, "/api/generate-image", models.GenerateImageRequest{
		Prompt:             "a castle",
		EnforceConsistency: true,
		CharacterData:      &models.CharacterPromptData{Name: "Luna"},
	})

	require.Equal(t, http.StatusOK, w.Code)
	var resp models.GenerateImageResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "https://durable/img.png", resp.ImageURL)
	require.NotNil(t, resp.NegativePrompt)
	assert.Equal(t, neg, *resp.NegativePrompt)
}

func TestGenerateImage_CharacterValidation(t *testing.T) {
	f := newHandlerFixture(t)

	f.imageSvc.On("GenerateImage", mock.Anything, mock.Anything).
		Return(nil, models.ErrCharacterValidation).Once()

	w := f.do(t, http.MethodPost, "/api/generate-image", models.GenerateImageRequest{Prompt: "x"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateStory_OK(t *testing.T) {
	f := newHandlerFixture(t)

	f.storySvc.On("CreateStory", mock.Anything, mock.AnythingOfType("models.CreateStoryRequest")).
		Return(&models.StoryData{StoryID: "story-42", ImageStyle: "watercolor"}, nil).Once()

	w := f.do(t, http.MethodPost, "/api/stories", models.CreateStoryRequest{
		StorySubject: "a fox", AgeGroup: "4-6", ImageStyle: "watercolor", UserEmail: "p@example.com",
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	f.storySvc.AssertExpectations(t)
}

func TestGetStory_NotFound(t *testing.T) {
	f := newHandlerFixture(t)

	f.storySvc.On("GetStory", mock.Anything, "missing").Return(nil, models.ErrStoryNotFound).Once()

	w := f.do(t, http.MethodGet, "/api/stories/missing", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestVocabularyEndpoints(t *testing.T) {
	f := newHandlerFixture(t)

	f.vocabSvc.On("SaveWord", mock.Anything, int64(3), "burrow", (*string)(nil)).
		Return(&models.VocabularyWord{ID: 11, UserID: 3, Word: "burrow"}, nil).Once()
	w := f.do(t, http.MethodPost, "/api/vocabulary-words", saveWordRequest{UserID: 3, Word: "burrow"})
	assert.Equal(t, http.StatusCreated, w.Code)

	f.vocabSvc.On("SaveWord", mock.Anything, int64(3), "burrow", (*string)(nil)).
		Return(nil, models.ErrDuplicateWord).Once()
	w = f.do(t, http.MethodPost, "/api/vocabulary-words", saveWordRequest{UserID: 3, Word: "burrow"})
	assert.Equal(t, http.StatusConflict, w.Code)

	f.vocabSvc.On("ListWords", mock.Anything, int64(3)).
		Return([]models.VocabularyWord{{ID: 11, Word: "burrow"}}, nil).Once()
	w = f.do(t, http.MethodGet, "/api/vocabulary-words?userId=3", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodGet, "/api/vocabulary-words?userId=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	f.vocabSvc.On("DeleteWord", mock.Anything, int64(11)).Return(nil).Once()
	w = f.do(t, http.MethodDelete, "/api/vocabulary-words/11", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	f.vocabSvc.AssertExpectations(t)
}

func TestHealth(t *testing.T) {
	f := newHandlerFixture(t)

	w := f.do(t, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
}
