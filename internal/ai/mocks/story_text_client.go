package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"kidtales-server/internal/ai"
	"kidtales-server/internal/models"
)

// StoryTextClient - мок генератора текста сказки.
type StoryTextClient struct {
	mock.Mock
}

func (m *StoryTextClient) GenerateStory(ctx context.Context, req models.CreateStoryRequest) (*models.StoryOutput, ai.UsageInfo, error) {
	args := m.Called(ctx, req)
	var out *models.StoryOutput
	if args.Get(0) != nil {
		out = args.Get(0).(*models.StoryOutput)
	}
	return out, args.Get(1).(ai.UsageInfo), args.Error(2)
}
