package graceful

import (
	"context"
	"errors"
	"syscall"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
)

func TestGracefulContext(t *testing.T) {
	logger, hook := test.NewNullLogger()
	ctx, cancel := Context(context.Background(), logger)
	defer cancel()

	go func() {
		time.Sleep(100 * time.Millisecond) // Give the signal handler time to get ready
		if err := syscall.Kill(syscall.Getpid(), syscall.SIGINT); err != nil {
			t.Errorf("Failed to send SIGINT: %v", err)
		}
	}()

	select {
	case <-ctx.Done():
		if !errors.Is(ctx.Err(), context.Canceled) {
			t.Errorf("Expected context.Canceled error, got %v", ctx.Err())
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Test timed out waiting for context to be canceled.")
	}

	// the log entry is written just before cancel
	if entry := hook.LastEntry(); entry == nil || entry.Data["signal"] != "interrupt" {
		t.Errorf("expected the signal to be logged, got %+v", entry)
	}
}

func TestGracefulContext_ParentCancel(t *testing.T) {
	logger, hook := test.NewNullLogger()
	parent, cancelParent := context.WithCancel(context.Background())
	ctx, cancel := Context(parent, logger)
	defer cancel()

	cancelParent()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("child context not canceled with its parent")
	}
	if len(hook.AllEntries()) != 0 {
		t.Error("no signal should have been logged")
	}
}
