package workflow

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"scribe/internal/config"
	"scribe/internal/logging"
	"scribe/internal/queue"
	"scribe/internal/services"
)

// Processor drives one claimed job to a terminal state.
type Processor interface {
	Process(ctx context.Context, job *queue.Job) error
}

// Manager coordinates queue processing across a worker pool.
type Manager struct {
	cfg          *config.Config
	store        *queue.Store
	processor    Processor
	logger       *slog.Logger
	workers      int
	pollInterval time.Duration

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// ManagerOption configures optional Manager behavior.
type ManagerOption func(*Manager)

// WithPollInterval overrides how long idle workers wait between queue checks.
func WithPollInterval(interval time.Duration) ManagerOption {
	return func(m *Manager) {
		if interval > 0 {
			m.pollInterval = interval
		}
	}
}

// NewManager constructs a workflow manager.
func NewManager(cfg *config.Config, store *queue.Store, processor Processor, logger *slog.Logger, opts ...ManagerOption) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	workers := cfg.Workflow.Workers
	if workers < 1 {
		workers = 1
	}
	m := &Manager{
		cfg:          cfg,
		store:        store,
		processor:    processor,
		logger:       logger,
		workers:      workers,
		pollInterval: time.Duration(cfg.Workflow.QueuePollInterval) * time.Second,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.pollInterval <= 0 {
		m.pollInterval = time.Second
	}
	return m
}

// Start begins background processing. Jobs stranded in the running state by
// a previous crash are requeued first.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return errors.New("workflow already running")
	}

	requeued, err := m.store.ResetStuckRunning(ctx)
	if err != nil {
		return err
	}
	if requeued > 0 {
		m.logger.Info("requeued stranded jobs", logging.Int64("count", requeued))
	}

	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true
	m.wg.Add(m.workers)
	for i := 0; i < m.workers; i++ {
		go m.runWorker(runCtx, i)
	}
	return nil
}

// Stop terminates background processing and waits for in-flight jobs.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.running = false
	m.cancel = nil
	m.mu.Unlock()

	cancel()
	m.wg.Wait()
}

func (m *Manager) runWorker(ctx context.Context, index int) {
	defer m.wg.Done()
	logger := m.logger.With(logging.Int("worker", index))

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		job, err := m.store.ClaimNext(ctx)
		if err != nil {
			logger.Error("failed to claim next job", logging.Error(err))
			m.waitOrShutdown(ctx)
			continue
		}
		if job == nil {
			m.waitOrShutdown(ctx)
			continue
		}

		m.processJob(ctx, logger, job)
	}
}

func (m *Manager) processJob(ctx context.Context, logger *slog.Logger, job *queue.Job) {
	// One correlation id per processing attempt; a requeued job gets a fresh
	// one so its attempts can be told apart in the logs.
	ctx = services.WithRequestID(ctx, uuid.NewString())
	jobLogger := logging.WithContext(ctx, logger.With(logging.String(logging.FieldJobID, job.ID)))
	jobLogger.Info("job started",
		logging.String("source_type", string(job.SourceType)),
		logging.Bool("diarize", job.Options.Diarize),
	)

	err := m.processor.Process(ctx, job)
	if err == nil {
		return
	}
	if errors.Is(err, context.Canceled) {
		// Shutdown mid-job: leave it running so the next start requeues it.
		jobLogger.Warn("job interrupted by shutdown")
		return
	}

	jobLogger.Error("job failed", logging.Error(err))
	if markErr := m.store.MarkFailed(context.WithoutCancel(ctx), job.ID, err.Error()); markErr != nil {
		jobLogger.Error("failed to record job failure", logging.Error(markErr))
	}
}

func (m *Manager) waitOrShutdown(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(m.pollInterval):
	}
}
