package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"kidtales-server/internal/models"
	repomocks "kidtales-server/internal/repository/mocks"
)

func TestSaveWord_NormalizesAndSaves(t *testing.T) {
	repo := new(repomocks.VocabularyRepository)
	svc := NewVocabularyService(repo, zap.NewNop())

	repo.On("ListByUserID", mock.Anything, int64(3)).Return([]models.VocabularyWord{}, nil).Once()
	repo.On("Create", mock.Anything, mock.MatchedBy(func(w *models.VocabularyWord) bool {
		return w.UserID == 3 && w.Word == "burrow"
	})).Return(&models.VocabularyWord{ID: 11, UserID: 3, Word: "burrow"}, nil).Once()

	created, err := svc.SaveWord(context.Background(), 3, "  Burrow ", nil)

	require.NoError(t, err)
	assert.Equal(t, int64(11), created.ID)
	assert.Equal(t, "burrow", created.Word)
	repo.AssertExpectations(t)
}

func TestSaveWord_Duplicate(t *testing.T) {
	repo := new(repomocks.VocabularyRepository)
	svc := NewVocabularyService(repo, zap.NewNop())

	repo.On("ListByUserID", mock.Anything, int64(3)).Return([]models.VocabularyWord{
		{ID: 1, UserID: 3, Word: "burrow"},
	}, nil).Once()

	_, err := svc.SaveWord(context.Background(), 3, "BURROW", nil)

	assert.ErrorIs(t, err, models.ErrDuplicateWord)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSaveWord_Validation(t *testing.T) {
	svc := NewVocabularyService(new(repomocks.VocabularyRepository), zap.NewNop())

	_, err := svc.SaveWord(context.Background(), 3, "   ", nil)
	assert.ErrorIs(t, err, models.ErrInvalidRequest)

	_, err = svc.SaveWord(context.Background(), 0, "burrow", nil)
	assert.ErrorIs(t, err, models.ErrInvalidRequest)
}

func TestDeleteWord(t *testing.T) {
	repo := new(repomocks.VocabularyRepository)
	svc := NewVocabularyService(repo, zap.NewNop())

	repo.On("Delete", mock.Anything, int64(11)).Return(nil).Once()
	require.NoError(t, svc.DeleteWord(context.Background(), 11))

	repo.On("Delete", mock.Anything, int64(12)).Return(models.ErrNotFound).Once()
	assert.ErrorIs(t, svc.DeleteWord(context.Background(), 12), models.ErrNotFound)

	assert.ErrorIs(t, svc.DeleteWord(context.Background(), 0), models.ErrInvalidRequest)
	repo.AssertExpectations(t)
}
