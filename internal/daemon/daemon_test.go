package daemon_test

import (
	"context"
	"testing"
	"time"

	"scribe/internal/daemon"
	"scribe/internal/logging"
	"scribe/internal/queue"
	"scribe/internal/testsupport"
	"scribe/internal/workflow"
)

type nopProcessor struct{}

func (nopProcessor) Process(ctx context.Context, job *queue.Job) error {
	return nil
}

func TestDaemonSingleInstanceLock(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	newDaemon := func() *daemon.Daemon {
		manager := workflow.NewManager(cfg, store, nopProcessor{}, logging.NewNop(),
			workflow.WithPollInterval(20*time.Millisecond))
		d, err := daemon.New(cfg, store, logging.NewNop(), manager)
		if err != nil {
			t.Fatalf("daemon.New: %v", err)
		}
		return d
	}

	first := newDaemon()
	if err := first.Start(context.Background()); err != nil {
		t.Fatalf("first Start failed: %v", err)
	}
	defer first.Stop()
	if !first.Running() {
		t.Fatal("first daemon should be running")
	}

	second := newDaemon()
	if err := second.Start(context.Background()); err == nil {
		second.Stop()
		t.Fatal("second daemon should fail to acquire the lock")
	}

	first.Stop()
	if first.Running() {
		t.Fatal("first daemon should have stopped")
	}

	// Lock released: a new instance can start.
	third := newDaemon()
	if err := third.Start(context.Background()); err != nil {
		t.Fatalf("third Start failed after release: %v", err)
	}
	third.Stop()
}

func TestDaemonRequiresDependencies(t *testing.T) {
	if _, err := daemon.New(nil, nil, nil, nil); err == nil {
		t.Fatal("expected error for missing dependencies")
	}
}
