package job

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"jobportal/internal/apperr"
	"jobportal/internal/audit"
	"jobportal/internal/config"
	"jobportal/internal/llm"
	"jobportal/internal/middleware"
	"jobportal/internal/schema"
)

// Completer sends one prompt to a chat-completion provider and returns the
// assistant text. Implementations classify failures as UpstreamError or
// NetworkError.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Model() string
}

type EventPublisher interface {
	Publish(topic string, body []byte) error
}

type AuditLogger interface {
	Log(entry audit.Entry)
}

type Service struct {
	repo      Repository
	completer Completer
	schema    *schema.Descriptor
	pub       EventPublisher
	audit     AuditLogger
	now       func() time.Time
}

// NewService wires the processing pipeline. pub and auditLog may be nil.
func NewService(repo Repository, completer Completer, desc *schema.Descriptor, pub EventPublisher, auditLog AuditLogger) *Service {
	if desc == nil {
		desc = schema.Default()
	}
	return &Service{
		repo:      repo,
		completer: completer,
		schema:    desc,
		pub:       pub,
		audit:     auditLog,
		now:       time.Now,
	}
}

// SetClock replaces the clock used for slug dates and the prompt.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Process turns free-text job details into a stored posting. Each stage
// either advances or fails the request; nothing is retried or rolled back.
func (s *Service) Process(ctx context.Context, details string) (job *JobPosting, err error) {
	start := time.Now()
	entry := audit.Entry{
		CorrelationID: middleware.GetCorrelationID(ctx),
		DetailsChars:  len(details),
	}
	defer func() {
		entry.Duration = time.Since(start)
		entry.Outcome = audit.OutcomeSuccess
		if err != nil {
			entry.Outcome = string(apperr.KindOf(err))
		}
		if job != nil {
			entry.JobID = job.ID
			entry.Slug = job.Slug
		}
		if s.audit != nil {
			s.audit.Log(entry)
		}
	}()

	if strings.TrimSpace(details) == "" {
		return nil, apperr.InvalidInput("Job details are required")
	}

	now := s.now()
	prompt := llm.BuildJobPrompt(s.schema.Template(), details, now)

	entry.Model = s.completer.Model()
	raw, err := s.completer.Complete(ctx, prompt)
	if err != nil {
		if apperr.KindOf(err) == "" {
			return nil, apperr.Upstream("completion failed", err)
		}
		return nil, err
	}
	entry.ResponseChars = len(raw)

	record, err := llm.ExtractJSON(raw)
	if err != nil {
		return nil, err
	}

	stripManaged(record)
	if dropped := s.schema.Prune(record); len(dropped) > 0 {
		slog.WarnContext(ctx, "dropped undeclared fields from completion", "fields", dropped)
	}
	if err := EnsureSlug(record, now); err != nil {
		return nil, err
	}
	if err := s.schema.Validate(record); err != nil {
		return nil, err
	}

	job = FromRecord(record)
	if err := s.repo.Save(ctx, job); err != nil {
		if apperr.KindOf(err) == "" {
			return nil, apperr.Storage("failed to save job posting", err)
		}
		return nil, err
	}

	s.publishCreated(ctx, job)
	return job, nil
}

func (s *Service) publishCreated(ctx context.Context, job *JobPosting) {
	if s.pub == nil {
		return
	}
	body, err := json.Marshal(job)
	if err != nil {
		slog.ErrorContext(ctx, "failed to encode job event", "error", err, "id", job.ID)
		return
	}
	if err := s.pub.Publish(config.TopicJobCreated, body); err != nil {
		slog.WarnContext(ctx, "failed to publish job event", "topic", config.TopicJobCreated, "error", err, "id", job.ID)
		return
	}
	slog.InfoContext(ctx, "published job event", "topic", config.TopicJobCreated, "id", job.ID, "slug", job.Slug)
}

func (s *Service) List(ctx context.Context) ([]JobPosting, error) {
	return s.repo.List(ctx)
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}
