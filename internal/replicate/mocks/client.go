package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// Client - мок адаптера провайдера генерации изображений.
type Client struct {
	mock.Mock
}

func (m *Client) SubmitAndAwaitImage(ctx context.Context, prompt, negativePrompt string) (string, error) {
	args := m.Called(ctx, prompt, negativePrompt)
	return args.String(0), args.Error(1)
}
