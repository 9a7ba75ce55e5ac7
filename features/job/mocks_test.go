package job_test

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"jobportal/features/job"
	"jobportal/internal/audit"
)

// MockRepo implements job.Repository
type MockRepo struct {
	mock.Mock
}

func (m *MockRepo) Save(ctx context.Context, j *job.JobPosting) error {
	args := m.Called(ctx, j)
	return args.Error(0)
}

func (m *MockRepo) List(ctx context.Context) ([]job.JobPosting, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]job.JobPosting), args.Error(1)
}

func (m *MockRepo) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// MockCompleter implements job.Completer
type MockCompleter struct {
	mock.Mock
}

func (m *MockCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func (m *MockCompleter) Model() string {
	return "test/model"
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(topic string, body []byte) error {
	args := m.Called(topic, body)
	return args.Error(0)
}

type recordingAudit struct {
	mu      sync.Mutex
	entries []audit.Entry
}

func (r *recordingAudit) Log(e audit.Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
}

func (r *recordingAudit) last() audit.Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.entries[len(r.entries)-1]
}
