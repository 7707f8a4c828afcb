package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"kidtales-server/internal/models"
)

// DBTX - абстракция над *pgxpool.Pool или pgx.Tx, чтобы репозитории
// могли работать и в транзакции, и вне ее.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// StoryRepository определяет доступ к записям историй.
//
//go:generate mockery --name StoryRepository --output ./mocks --outpkg mocks --case=underscore
type StoryRepository interface {
	// Create сохраняет новую историю.
	Create(ctx context.Context, story *models.StoryData) error
	// GetByStoryID возвращает историю по ее строковому storyId.
	// Возвращает models.ErrStoryNotFound, если записи нет.
	GetByStoryID(ctx context.Context, storyID string) (*models.StoryData, error)
	// UpdateCoverImage обновляет URL обложки на месте.
	UpdateCoverImage(ctx context.Context, storyID, coverImageURL string) error
	// UpdateImageStyle обновляет метку арт-стиля на месте.
	UpdateImageStyle(ctx context.Context, storyID, imageStyle string) error
}

// CharacterRepository определяет доступ к записям персонажей.
// Пайплайн рестайла читает персонажей, но никогда их не изменяет.
type CharacterRepository interface {
	Create(ctx context.Context, character *models.Character) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Character, error)
	// FindByUserAndName ищет существующего персонажа пользователя для
	// переиспользования между историями. Возвращает models.ErrNotFound.
	FindByUserAndName(ctx context.Context, userEmail, name string) (*models.Character, error)
}

// StoryCharacterRepository определяет доступ к связкам история-персонаж.
type StoryCharacterRepository interface {
	Create(ctx context.Context, link *models.StoryCharacter) error
	// ListByStoryID возвращает связки истории в порядке создания.
	// Первая запись используется как канонический источник consistency.
	ListByStoryID(ctx context.Context, storyID string) ([]models.StoryCharacter, error)
}

// PageGenerationRepository определяет доступ к записям генераций страниц.
type PageGenerationRepository interface {
	// Upsert вставляет запись для (story_id, page_index) либо обновляет
	// существующую на месте. Дубликаты не создаются.
	Upsert(ctx context.Context, gen *models.PageGeneration) error
	// ListByStoryID возвращает записи истории по возрастанию page_index.
	ListByStoryID(ctx context.Context, storyID string) ([]models.PageGeneration, error)
}

// VocabularyRepository определяет доступ к словарю пользователя.
type VocabularyRepository interface {
	Create(ctx context.Context, word *models.VocabularyWord) (*models.VocabularyWord, error)
	ListByUserID(ctx context.Context, userID int64) ([]models.VocabularyWord, error)
	Delete(ctx context.Context, wordID int64) error
}

// StoryLockRepository - advisory-блокировка истории на время рестайла.
// Две конкурентные попытки рестайла одной истории не должны чередовать
// записи; вторая получает отказ в захвате лизы.
type StoryLockRepository interface {
	// AcquireRestyleLock пытается захватить лизу. false без ошибки
	// означает, что лиза уже у другого запроса.
	AcquireRestyleLock(ctx context.Context, storyID string, ttl time.Duration) (bool, error)
	ReleaseRestyleLock(ctx context.Context, storyID string) error
}
