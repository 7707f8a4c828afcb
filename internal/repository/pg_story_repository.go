package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"kidtales-server/internal/models"
)

const (
	createStoryQuery = `
        INSERT INTO story_data
            (story_id, story_subject, story_type, age_group, image_style, output, cover_image, user_email, user_name, user_image)
        VALUES
            ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING id, created_at
    `
	getStoryByStoryIDQuery = `
        SELECT id, story_id, story_subject, story_type, age_group, image_style, output, cover_image, user_email, user_name, user_image, created_at
        FROM story_data
        WHERE story_id = $1
    `
	updateStoryCoverImageQuery = `UPDATE story_data SET cover_image = $2 WHERE story_id = $1`
	updateStoryImageStyleQuery = `UPDATE story_data SET image_style = $2 WHERE story_id = $1`
)

// Compile-time check
var _ StoryRepository = (*pgStoryRepository)(nil)

type pgStoryRepository struct {
	db     DBTX
	logger *zap.Logger
}

// NewPgStoryRepository создает новый экземпляр репозитория историй.
func NewPgStoryRepository(db DBTX, logger *zap.Logger) StoryRepository {
	return &pgStoryRepository{
		db:     db,
		logger: logger.Named("PgStoryRepo"),
	}
}

func (r *pgStoryRepository) Create(ctx context.Context, story *models.StoryData) error {
	err := r.db.QueryRow(ctx, createStoryQuery,
		story.StoryID,
		story.StorySubject,
		story.StoryType,
		story.AgeGroup,
		story.ImageStyle,
		story.Output,
		story.CoverImage,
		story.UserEmail,
		story.UserName,
		story.UserImage,
	).Scan(&story.ID, &story.CreatedAt)
	if err != nil {
		r.logger.Error("Error creating story", zap.String("story_id", story.StoryID), zap.Error(err))
		return fmt.Errorf("failed to create story %s: %w", story.StoryID, err)
	}
	r.logger.Debug("Story created", zap.String("story_id", story.StoryID), zap.Int64("id", story.ID))
	return nil
}

func (r *pgStoryRepository) GetByStoryID(ctx context.Context, storyID string) (*models.StoryData, error) {
	var story models.StoryData
	err := pgxscan.Get(ctx, r.db, &story, getStoryByStoryIDQuery, storyID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug("Story not found", zap.String("story_id", storyID))
			return nil, models.ErrStoryNotFound
		}
		r.logger.Error("Error getting story by story_id", zap.String("story_id", storyID), zap.Error(err))
		return nil, fmt.Errorf("failed to get story %s: %w", storyID, err)
	}
	return &story, nil
}

func (r *pgStoryRepository) UpdateCoverImage(ctx context.Context, storyID, coverImageURL string) error {
	cmdTag, err := r.db.Exec(ctx, updateStoryCoverImageQuery, storyID, coverImageURL)
	if err != nil {
		r.logger.Error("Error updating story cover image", zap.String("story_id", storyID), zap.Error(err))
		return fmt.Errorf("failed to update cover image for story %s: %w", storyID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return models.ErrStoryNotFound
	}
	return nil
}

func (r *pgStoryRepository) UpdateImageStyle(ctx context.Context, storyID, imageStyle string) error {
	cmdTag, err := r.db.Exec(ctx, updateStoryImageStyleQuery, storyID, imageStyle)
	if err != nil {
		r.logger.Error("Error updating story image style", zap.String("story_id", storyID), zap.Error(err))
		return fmt.Errorf("failed to update image style for story %s: %w", storyID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return models.ErrStoryNotFound
	}
	return nil
}
