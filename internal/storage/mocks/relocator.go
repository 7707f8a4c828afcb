package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// Relocator - мок переноса объектов в durable-хранилище.
type Relocator struct {
	mock.Mock
}

func (m *Relocator) Relocate(ctx context.Context, sourceURL string) (string, error) {
	args := m.Called(ctx, sourceURL)
	return args.String(0), args.Error(1)
}
