package repository

import (
	"context"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"
	"go.uber.org/zap"

	"kidtales-server/internal/models"
)

const (
	createVocabularyWordQuery = `
        INSERT INTO vocabulary_words (user_id, word, note)
        VALUES ($1, $2, $3)
        RETURNING id, user_id, word, note, created_at
    `
	listVocabularyWordsByUserQuery = `
        SELECT id, user_id, word, note, created_at
        FROM vocabulary_words
        WHERE user_id = $1
        ORDER BY created_at DESC
    `
	deleteVocabularyWordQuery = `DELETE FROM vocabulary_words WHERE id = $1`
)

var _ VocabularyRepository = (*pgVocabularyRepository)(nil)

type pgVocabularyRepository struct {
	db     DBTX
	logger *zap.Logger
}

// NewPgVocabularyRepository создает новый экземпляр репозитория словаря.
func NewPgVocabularyRepository(db DBTX, logger *zap.Logger) VocabularyRepository {
	return &pgVocabularyRepository{
		db:     db,
		logger: logger.Named("PgVocabularyRepo"),
	}
}

func (r *pgVocabularyRepository) Create(ctx context.Context, word *models.VocabularyWord) (*models.VocabularyWord, error) {
	var created models.VocabularyWord
	err := pgxscan.Get(ctx, r.db, &created, createVocabularyWordQuery, word.UserID, word.Word, word.Note)
	if err != nil {
		r.logger.Error("Error creating vocabulary word",
			zap.Int64("user_id", word.UserID),
			zap.String("word", word.Word),
			zap.Error(err))
		return nil, fmt.Errorf("failed to save word %q: %w", word.Word, err)
	}
	return &created, nil
}

func (r *pgVocabularyRepository) ListByUserID(ctx context.Context, userID int64) ([]models.VocabularyWord, error) {
	var words []models.VocabularyWord
	err := pgxscan.Select(ctx, r.db, &words, listVocabularyWordsByUserQuery, userID)
	if err != nil {
		r.logger.Error("Error listing vocabulary words", zap.Int64("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("failed to list words for user %d: %w", userID, err)
	}
	return words, nil
}

func (r *pgVocabularyRepository) Delete(ctx context.Context, wordID int64) error {
	cmdTag, err := r.db.Exec(ctx, deleteVocabularyWordQuery, wordID)
	if err != nil {
		r.logger.Error("Error deleting vocabulary word", zap.Int64("word_id", wordID), zap.Error(err))
		return fmt.Errorf("failed to delete word %d: %w", wordID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
