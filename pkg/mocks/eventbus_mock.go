package mocks

import (
	"context"

	"github.com/almflow/workflows/pkg/eventbus"
	"github.com/almflow/workflows/pkg/events"
	"github.com/stretchr/testify/mock"
)

var _ eventbus.EventBus = (*MockEventBus)(nil)

// MockEventBus records published workflow events. Handler registration is recorded too,
// but handlers are never invoked.
type MockEventBus struct {
	mock.Mock
}

func (m *MockEventBus) Publish(ctx context.Context, key string, event eventbus.Event) error {
	args := m.Called(ctx, key, event)

	return args.Error(0)
}

func (m *MockEventBus) Handle(eventType events.EventType, _ eventbus.EventHandler) {
	m.Called(eventType)
}

func (m *MockEventBus) HandleAll(eventbus.EventHandler) {
	m.Called()
}

func (m *MockEventBus) Subscribe(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockEventBus) Close() error {
	return m.Called().Error(0)
}
