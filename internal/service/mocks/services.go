package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"kidtales-server/internal/models"
)

// Mock RestyleService
type RestyleService struct {
	mock.Mock
}

func (m *RestyleService) RestyleStory(ctx context.Context, storyID, newStyle string) (*models.RestyleResponse, error) {
	args := m.Called(ctx, storyID, newStyle)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RestyleResponse), args.Error(1)
}

// Mock ImageService
type ImageService struct {
	mock.Mock
}

func (m *ImageService) GenerateImage(ctx context.Context, req models.GenerateImageRequest) (*models.GenerateImageResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GenerateImageResponse), args.Error(1)
}

// Mock StoryService
type StoryService struct {
	mock.Mock
}

func (m *StoryService) CreateStory(ctx context.Context, req models.CreateStoryRequest) (*models.StoryData, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StoryData), args.Error(1)
}

func (m *StoryService) GetStory(ctx context.Context, storyID string) (*models.StoryData, error) {
	args := m.Called(ctx, storyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StoryData), args.Error(1)
}

// Mock VocabularyService
type VocabularyService struct {
	mock.Mock
}

func (m *VocabularyService) SaveWord(ctx context.Context, userID int64, word string, note *string) (*models.VocabularyWord, error) {
	args := m.Called(ctx, userID, word, note)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.VocabularyWord), args.Error(1)
}

func (m *VocabularyService) ListWords(ctx context.Context, userID int64) ([]models.VocabularyWord, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.VocabularyWord), args.Error(1)
}

func (m *VocabularyService) DeleteWord(ctx context.Context, wordID int64) error {
	args := m.Called(ctx, wordID)
	return args.Error(0)
}
