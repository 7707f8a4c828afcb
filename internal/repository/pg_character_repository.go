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
	createCharacterQuery = `
        INSERT INTO characters
            (user_email, name, descriptors, primary_color, outfit, reference_images)
        VALUES
            ($1, $2, $3, $4, $5, $6)
        RETURNING id
    `
	getCharacterByIDQuery = `
        SELECT id, user_email, name, descriptors, primary_color, outfit, reference_images, created_at
        FROM characters
        WHERE id = $1
    `
	findCharacterByUserAndNameQuery = `
        SELECT id, user_email, name, descriptors, primary_color, outfit, reference_images, created_at
        FROM characters
        WHERE user_email = $1 AND name = $2
        ORDER BY created_at DESC
        LIMIT 1
    `
)

var _ CharacterRepository = (*pgCharacterRepository)(nil)

type pgCharacterRepository struct {
	db     DBTX
	logger *zap.Logger
}

// NewPgCharacterRepository создает новый экземпляр репозитория персонажей.
func NewPgCharacterRepository(db DBTX, logger *zap.Logger) CharacterRepository {
	return &pgCharacterRepository{
		db:     db,
		logger: logger.Named("PgCharacterRepo"),
	}
}

func (r *pgCharacterRepository) Create(ctx context.Context, character *models.Character) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, createCharacterQuery,
		character.UserEmail,
		character.Name,
		character.Descriptors,
		character.PrimaryColor,
		character.Outfit,
		character.ReferenceImages,
	).Scan(&id)
	if err != nil {
		r.logger.Error("Error creating character", zap.String("name", character.Name), zap.Error(err))
		return 0, fmt.Errorf("failed to create character %q: %w", character.Name, err)
	}
	character.ID = id
	r.logger.Debug("Character created", zap.Int64("id", id), zap.String("name", character.Name))
	return id, nil
}

func (r *pgCharacterRepository) GetByID(ctx context.Context, id int64) (*models.Character, error) {
	var character models.Character
	err := pgxscan.Get(ctx, r.db, &character, getCharacterByIDQuery, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		r.logger.Error("Error getting character by id", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get character %d: %w", id, err)
	}
	return &character, nil
}

func (r *pgCharacterRepository) FindByUserAndName(ctx context.Context, userEmail, name string) (*models.Character, error) {
	var character models.Character
	err := pgxscan.Get(ctx, r.db, &character, findCharacterByUserAndNameQuery, userEmail, name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		r.logger.Error("Error finding character", zap.String("user_email", userEmail), zap.String("name", name), zap.Error(err))
		return nil, fmt.Errorf("failed to find character %q: %w", name, err)
	}
	return &character, nil
}
