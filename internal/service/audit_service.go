package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/school-portal-api/internal/models"
	"github.com/noah-isme/school-portal-api/pkg/jobs"
)

type auditWriter interface {
	Create(ctx context.Context, entry *models.AuditLog) error
}

// AuditConfig sizes the asynchronous audit writer.
type AuditConfig struct {
	Workers    int
	BufferSize int
}

// AuditService persists audit entries off the request path.
type AuditService struct {
	queue  *jobs.Queue[*models.AuditLog]
	logger *zap.Logger
}

// NewAuditService constructs the service. Start must be called before entries are accepted.
func NewAuditService(writer auditWriter, logger *zap.Logger, cfg AuditConfig) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	persist := func(ctx context.Context, entry *models.AuditLog) error {
		writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		return writer.Create(writeCtx, entry)
	}
	return &AuditService{
		queue: jobs.NewQueue[*models.AuditLog]("audit", persist, jobs.QueueConfig{
			Workers:    cfg.Workers,
			BufferSize: cfg.BufferSize,
			MaxRetries: 2,
			RetryDelay: 500 * time.Millisecond,
			Logger:     logger,
		}),
		logger: logger,
	}
}

// Start launches the background writers.
func (s *AuditService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop flushes buffered entries and waits for the writers.
func (s *AuditService) Stop() {
	s.queue.Stop()
}

// Record hands the entry to the writers. A full buffer drops the entry.
func (s *AuditService) Record(entry *models.AuditLog) {
	if s == nil || entry == nil {
		return
	}
	if err := s.queue.TryEnqueue(entry); err != nil {
		s.logger.Warn("audit entry dropped",
			zap.String("action", entry.Action),
			zap.String("resource", entry.Resource),
			zap.Error(err),
		)
	}
}
