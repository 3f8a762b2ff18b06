package mocks

import (
	"context"
	"errors"
	"sync"

	sharedDomain "github.com/davicafu/secopviewer/internal/shared/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockOutboxRepository simula la tabla outbox para el worker.
type MockOutboxRepository struct {
	mock.Mock
}

func (m *MockOutboxRepository) FetchPendingOutbox(ctx context.Context, limit int) ([]sharedDomain.OutboxEvent, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]sharedDomain.OutboxEvent), args.Error(1)
}

func (m *MockOutboxRepository) MarkOutboxProcessed(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockPublisher simula un EventBus.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, event interface{}) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// InMemoryOutbox guarda los eventos escritos; Err fuerza un fallo.
type InMemoryOutbox struct {
	Events []sharedDomain.OutboxEvent
	Err    error
	mu     sync.Mutex
}

var ErrOutboxDown = errors.New("outbox unavailable")

func (o *InMemoryOutbox) SaveOutbox(ctx context.Context, evt sharedDomain.OutboxEvent) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.Err != nil {
		return o.Err
	}
	o.Events = append(o.Events, evt)
	return nil
}

func (o *InMemoryOutbox) Saved() []sharedDomain.OutboxEvent {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]sharedDomain.OutboxEvent(nil), o.Events...)
}
