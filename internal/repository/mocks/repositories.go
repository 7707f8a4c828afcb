package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"kidtales-server/internal/models"
)

// Mock StoryRepository
type StoryRepository struct {
	mock.Mock
}

func (m *StoryRepository) Create(ctx context.Context, story *models.StoryData) error {
	args := m.Called(ctx, story)
	return args.Error(0)
}

func (m *StoryRepository) GetByStoryID(ctx context.Context, storyID string) (*models.StoryData, error) {
	args := m.Called(ctx, storyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StoryData), args.Error(1)
}

func (m *StoryRepository) UpdateCoverImage(ctx context.Context, storyID, coverImageURL string) error {
	args := m.Called(ctx, storyID, coverImageURL)
	return args.Error(0)
}

func (m *StoryRepository) UpdateImageStyle(ctx context.Context, storyID, imageStyle string) error {
	args := m.Called(ctx, storyID, imageStyle)
	return args.Error(0)
}

// Mock CharacterRepository
type CharacterRepository struct {
	mock.Mock
}

func (m *CharacterRepository) Create(ctx context.Context, character *models.Character) (int64, error) {
	args := m.Called(ctx, character)
	return args.Get(0).(int64), args.Error(1)
}

func (m *CharacterRepository) GetByID(ctx context.Context, id int64) (*models.Character, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Character), args.Error(1)
}

func (m *CharacterRepository) FindByUserAndName(ctx context.Context, userEmail, name string) (*models.Character, error) {
	args := m.Called(ctx, userEmail, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Character), args.Error(1)
}

// Mock StoryCharacterRepository
type StoryCharacterRepository struct {
	mock.Mock
}

func (m *StoryCharacterRepository) Create(ctx context.Context, link *models.StoryCharacter) error {
	args := m.Called(ctx, link)
	return args.Error(0)
}

func (m *StoryCharacterRepository) ListByStoryID(ctx context.Context, storyID string) ([]models.StoryCharacter, error) {
	args := m.Called(ctx, storyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.StoryCharacter), args.Error(1)
}

// Mock PageGenerationRepository
type PageGenerationRepository struct {
	mock.Mock
}

func (m *PageGenerationRepository) Upsert(ctx context.Context, gen *models.PageGeneration) error {
	args := m.Called(ctx, gen)
	return args.Error(0)
}

func (m *PageGenerationRepository) ListByStoryID(ctx context.Context, storyID string) ([]models.PageGeneration, error) {
	args := m.Called(ctx, storyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PageGeneration), args.Error(1)
}

// Mock VocabularyRepository
type VocabularyRepository struct {
	mock.Mock
}

func (m *VocabularyRepository) Create(ctx context.Context, word *models.VocabularyWord) (*models.VocabularyWord, error) {
	args := m.Called(ctx, word)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.VocabularyWord), args.Error(1)
}

func (m *VocabularyRepository) ListByUserID(ctx context.Context, userID int64) ([]models.VocabularyWord, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.VocabularyWord), args.Error(1)
}

func (m *VocabularyRepository) Delete(ctx context.Context, wordID int64) error {
	args := m.Called(ctx, wordID)
	return args.Error(0)
}

// Mock StoryLockRepository
type StoryLockRepository struct {
	mock.Mock
}

func (m *StoryLockRepository) AcquireRestyleLock(ctx context.Context, storyID string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, storyID, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *StoryLockRepository) ReleaseRestyleLock(ctx context.Context, storyID string) error {
	args := m.Called(ctx, storyID)
	return args.Error(0)
}
