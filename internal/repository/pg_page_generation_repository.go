package repository

import (
	"context"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"
	"go.uber.org/zap"

	"kidtales-server/internal/models"
)

const (
	// Upsert по составному ключу (story_id, page_index): первая генерация
	// страницы вставляет строку, каждый последующий рестайл обновляет ее
	// на месте. Снапшот контекста персонажа не затирается NULL-ом.
	upsertPageGenerationQuery = `
        INSERT INTO page_generations
            (story_id, page_index, image_url, seed, negative_prompt, character_prompt_ctx, style)
        VALUES
            ($1, $2, $3, $4, $5, $6, $7)
        ON CONFLICT (story_id, page_index) DO UPDATE SET
            image_url = EXCLUDED.image_url,
            seed = EXCLUDED.seed,
            negative_prompt = EXCLUDED.negative_prompt,
            character_prompt_ctx = COALESCE(EXCLUDED.character_prompt_ctx, page_generations.character_prompt_ctx),
            style = EXCLUDED.style,
            updated_at = NOW()
        RETURNING id, created_at, updated_at
    `
	listPageGenerationsByStoryIDQuery = `
        SELECT id, story_id, page_index, image_url, seed, negative_prompt, character_prompt_ctx, style, created_at, updated_at
        FROM page_generations
        WHERE story_id = $1
        ORDER BY page_index
    `
)

var _ PageGenerationRepository = (*pgPageGenerationRepository)(nil)

type pgPageGenerationRepository struct {
	db     DBTX
	logger *zap.Logger
}

// NewPgPageGenerationRepository создает новый экземпляр репозитория генераций страниц.
func NewPgPageGenerationRepository(db DBTX, logger *zap.Logger) PageGenerationRepository {
	return &pgPageGenerationRepository{
		db:     db,
		logger: logger.Named("PgPageGenerationRepo"),
	}
}

func (r *pgPageGenerationRepository) Upsert(ctx context.Context, gen *models.PageGeneration) error {
	err := r.db.QueryRow(ctx, upsertPageGenerationQuery,
		gen.StoryID,
		gen.PageIndex,
		gen.ImageURL,
		gen.Seed,
		gen.NegativePrompt,
		gen.CharacterPromptCtx,
		gen.Style,
	).Scan(&gen.ID, &gen.CreatedAt, &gen.UpdatedAt)
	if err != nil {
		r.logger.Error("Error upserting page generation",
			zap.String("story_id", gen.StoryID),
			zap.Int("page_index", gen.PageIndex),
			zap.Error(err))
		return fmt.Errorf("failed to upsert page generation (%s, %d): %w", gen.StoryID, gen.PageIndex, err)
	}
	r.logger.Debug("Page generation upserted",
		zap.String("story_id", gen.StoryID),
		zap.Int("page_index", gen.PageIndex),
		zap.String("seed", gen.Seed))
	return nil
}

func (r *pgPageGenerationRepository) ListByStoryID(ctx context.Context, storyID string) ([]models.PageGeneration, error) {
	var gens []models.PageGeneration
	err := pgxscan.Select(ctx, r.db, &gens, listPageGenerationsByStoryIDQuery, storyID)
	if err != nil {
		r.logger.Error("Error listing page generations", zap.String("story_id", storyID), zap.Error(err))
		return nil, fmt.Errorf("failed to list page generations for story %s: %w", storyID, err)
	}
	return gens, nil
}
