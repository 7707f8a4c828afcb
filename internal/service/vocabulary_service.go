package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"kidtales-server/internal/models"
	"kidtales-server/internal/repository"
)

// VocabularyService - сохраненные пользователем слова из текста историй.
type VocabularyService interface {
	SaveWord(ctx context.Context, userID int64, word string, note *string) (*models.VocabularyWord, error)
	ListWords(ctx context.Context, userID int64) ([]models.VocabularyWord, error)
	DeleteWord(ctx context.Context, wordID int64) error
}

type vocabularyServiceImpl struct {
	repo   repository.VocabularyRepository
	logger *zap.Logger
}

var _ VocabularyService = (*vocabularyServiceImpl)(nil)

// NewVocabularyService создает сервис словаря.
func NewVocabularyService(repo repository.VocabularyRepository, logger *zap.Logger) VocabularyService {
	return &vocabularyServiceImpl{
		repo:   repo,
		logger: logger.Named("VocabularyService"),
	}
}

func (s *vocabularyServiceImpl) SaveWord(ctx context.Context, userID int64, word string, note *string) (*models.VocabularyWord, error) {
	normalized := strings.ToLower(strings.TrimSpace(word))
	if normalized == "" {
		return nil, fmt.Errorf("%w: слово не может быть пустым", models.ErrInvalidRequest)
	}
	if userID <= 0 {
		return nil, fmt.Errorf("%w: некорректный userId", models.ErrInvalidRequest)
	}

	// Дедупликация по нормализованной форме слова.
	existing, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, w := range existing {
		if w.Word == normalized {
			return nil, fmt.Errorf("%w: %q", models.ErrDuplicateWord, normalized)
		}
	}

	created, err := s.repo.Create(ctx, &models.VocabularyWord{
		UserID: userID,
		Word:   normalized,
		Note:   note,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Слово сохранено", zap.Int64("user_id", userID), zap.String("word", normalized))
	return created, nil
}

func (s *vocabularyServiceImpl) ListWords(ctx context.Context, userID int64) ([]models.VocabularyWord, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("%w: некорректный userId", models.ErrInvalidRequest)
	}
	return s.repo.ListByUserID(ctx, userID)
}

func (s *vocabularyServiceImpl) DeleteWord(ctx context.Context, wordID int64) error {
	if wordID <= 0 {
		return fmt.Errorf("%w: некорректный id слова", models.ErrInvalidRequest)
	}
	return s.repo.Delete(ctx, wordID)
}
