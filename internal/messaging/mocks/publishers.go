package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"kidtales-server/internal/messaging"
)

// StoryEventPublisher - мок паблишера событий жизненного цикла истории.
type StoryEventPublisher struct {
	mock.Mock
}

func (m *StoryEventPublisher) PublishStoryEvent(ctx context.Context, event messaging.StoryEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
