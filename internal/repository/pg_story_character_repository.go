package repository

import (
	"context"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"
	"go.uber.org/zap"

	"kidtales-server/internal/models"
)

const (
	createStoryCharacterQuery = `
        INSERT INTO story_characters
            (story_id, character_id, role, style_token, seed)
        VALUES
            ($1, $2, $3, $4, $5)
        RETURNING id, created_at
    `
	// Уникальность (story_id, character_id) намеренно не навязывается:
	// несколько ролей одного персонажа в истории допустимы.
	listStoryCharactersByStoryIDQuery = `
        SELECT id, story_id, character_id, role, style_token, seed, created_at
        FROM story_characters
        WHERE story_id = $1
        ORDER BY id
    `
)

var _ StoryCharacterRepository = (*pgStoryCharacterRepository)(nil)

type pgStoryCharacterRepository struct {
	db     DBTX
	logger *zap.Logger
}

// NewPgStoryCharacterRepository создает новый экземпляр репозитория связок.
func NewPgStoryCharacterRepository(db DBTX, logger *zap.Logger) StoryCharacterRepository {
	return &pgStoryCharacterRepository{
		db:     db,
		logger: logger.Named("PgStoryCharacterRepo"),
	}
}

func (r *pgStoryCharacterRepository) Create(ctx context.Context, link *models.StoryCharacter) error {
	err := r.db.QueryRow(ctx, createStoryCharacterQuery,
		link.StoryID,
		link.CharacterID,
		link.Role,
		link.StyleToken,
		link.Seed,
	).Scan(&link.ID, &link.CreatedAt)
	if err != nil {
		r.logger.Error("Error creating story character link",
			zap.String("story_id", link.StoryID),
			zap.Int64("character_id", link.CharacterID),
			zap.Error(err))
		return fmt.Errorf("failed to link character %d to story %s: %w", link.CharacterID, link.StoryID, err)
	}
	return nil
}

func (r *pgStoryCharacterRepository) ListByStoryID(ctx context.Context, storyID string) ([]models.StoryCharacter, error) {
	var links []models.StoryCharacter
	err := pgxscan.Select(ctx, r.db, &links, listStoryCharactersByStoryIDQuery, storyID)
	if err != nil {
		r.logger.Error("Error listing story characters", zap.String("story_id", storyID), zap.Error(err))
		return nil, fmt.Errorf("failed to list characters for story %s: %w", storyID, err)
	}
	return links, nil
}
