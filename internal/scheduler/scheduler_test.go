package scheduler

import (
	"context"
	"errors"
	"testing"
)

func TestAddJobValidation(t *testing.T) {
	svc, err := New()
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	t.Cleanup(func() { _ = svc.Stop() })

	noop := func(context.Context) error { return nil }

	if _, err := svc.AddJob("  ", "0 * * * *", noop); !errors.Is(err, ErrEmptyJobName) {
		t.Fatalf("expected ErrEmptyJobName, got %v", err)
	}
	if _, err := svc.AddJob("digest", "", noop); !errors.Is(err, ErrEmptyCronExpr) {
		t.Fatalf("expected ErrEmptyCronExpr, got %v", err)
	}
	if _, err := svc.AddJob("digest", "not a cron", noop); err == nil {
		t.Fatalf("expected error for malformed cron expression")
	}
	if _, err := svc.AddJob("digest", "0 6 * * 1", noop); err != nil {
		t.Fatalf("register job: %v", err)
	}
}

func TestNilServiceIsNotInitialized(t *testing.T) {
	var svc *Service
	if _, err := svc.AddJob("digest", "0 6 * * 1", nil); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}
	if err := svc.Stop(); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized from Stop, got %v", err)
	}
}

func TestRunTaskPassesDeadlineAndLogger(t *testing.T) {
	var sawDeadline bool
	runTask("probe", func(ctx context.Context) error {
		_, sawDeadline = ctx.Deadline()
		return errors.New("boom")
	})
	if !sawDeadline {
		t.Fatalf("expected task context to carry a deadline")
	}
}

func TestRegisterJobsRequireServices(t *testing.T) {
	if err := RegisterComplianceDigest("0 6 * * 1", nil); err == nil {
		t.Fatalf("expected error without compliance service")
	}
	if err := RegisterStandingsRefresh("*/15 * * * *", nil); err == nil {
		t.Fatalf("expected error without tournament service")
	}
}
