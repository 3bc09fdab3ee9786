package agent

import (
	"context"
	"fmt"

	"github.com/Rrens/chat-to-task/internal/domain"
	"github.com/Rrens/chat-to-task/internal/llm"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockTaskRepository mocks the TaskRepository interface
type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) Create(ctx context.Context, task *domain.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockTaskRepository) Get(ctx context.Context, userID uuid.UUID, taskID int64) (*domain.Task, error) {
	args := m.Called(ctx, userID, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Task), args.Error(1)
}

func (m *MockTaskRepository) List(ctx context.Context, userID uuid.UUID, filter domain.TaskFilter) ([]domain.Task, error) {
	args := m.Called(ctx, userID, filter)
	return args.Get(0).([]domain.Task), args.Error(1)
}

func (m *MockTaskRepository) Update(ctx context.Context, task *domain.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockTaskRepository) Delete(ctx context.Context, userID uuid.UUID, taskID int64) (bool, error) {
	args := m.Called(ctx, userID, taskID)
	return args.Bool(0), args.Error(1)
}

func (m *MockTaskRepository) Stats(ctx context.Context, userID uuid.UUID) (*domain.TaskStats, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TaskStats), args.Error(1)
}

// scriptedProvider plays back a fixed sequence of completions, recording
// every request it receives.
type scriptedProvider struct {
	completions []*llm.Completion
	requests    []llm.Request
	calls       int
}

func (p *scriptedProvider) Name() string              { return "scripted" }
func (p *scriptedProvider) AvailableModels() []string { return []string{"scripted-1"} }
func (p *scriptedProvider) DefaultModel() string      { return "scripted-1" }
func (p *scriptedProvider) IsConfigured() bool        { return true }

func (p *scriptedProvider) Complete(ctx context.Context, req llm.Request, model string) (*llm.Completion, error) {
	p.requests = append(p.requests, req)
	if p.calls >= len(p.completions) {
		return nil, fmt.Errorf("scripted provider exhausted after %d calls", p.calls)
	}
	c := p.completions[p.calls]
	p.calls++
	return c, nil
}

func newScriptedRouter(p llm.Provider) *llm.Router {
	router := llm.NewRouter(p.Name())
	router.RegisterProvider(p)
	return router
}
