package cron

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Ch-Lokesh-21/truestyle-backend/pkg/logger"
)

type fakePendingReaper struct {
	expireCutoff time.Time
	purgeCutoff  time.Time
	expireErr    error
	purgeErr     error
	expired      int64
	purged       int64
}

func (f *fakePendingReaper) ExpireBefore(_ context.Context, cutoff time.Time) (int64, error) {
	f.expireCutoff = cutoff
	return f.expired, f.expireErr
}

func (f *fakePendingReaper) PurgeBefore(_ context.Context, cutoff time.Time) (int64, error) {
	f.purgeCutoff = cutoff
	return f.purged, f.purgeErr
}

func newGatewayExpiryJobTest(t *testing.T, reaper *fakePendingReaper) *gatewayExpiryJob {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "cron-test"})
	job, err := NewGatewayExpiryJob(GatewayExpiryJobParams{
		Logger:  logg,
		Pending: reaper,
	})
	if err != nil {
		t.Fatalf("NewGatewayExpiryJob: %v", err)
	}
	return job.(*gatewayExpiryJob)
}

func TestGatewayExpiryJob_cutoffs(t *testing.T) {
	now := time.Date(2026, 2, 12, 9, 30, 0, 0, time.UTC)
	reaper := &fakePendingReaper{expired: 3, purged: 1}
	job := newGatewayExpiryJobTest(t, reaper)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !reaper.expireCutoff.Equal(now) {
		t.Fatalf("expire cutoff = %s, want %s", reaper.expireCutoff, now)
	}
	wantPurge := now.Add(-defaultPurgeRetention)
	if !reaper.purgeCutoff.Equal(wantPurge) {
		t.Fatalf("purge cutoff = %s, want %s", reaper.purgeCutoff, wantPurge)
	}
}

func TestGatewayExpiryJob_purgeRunsAfterExpireFailure(t *testing.T) {
	reaper := &fakePendingReaper{expireErr: errors.New("db down")}
	job := newGatewayExpiryJobTest(t, reaper)

	err := job.Run(context.Background())
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "expire pending gateway orders") {
		t.Fatalf("unexpected error: %v", err)
	}
	if reaper.purgeCutoff.IsZero() {
		t.Fatal("purge phase should still run when expiry fails")
	}
}

func TestGatewayExpiryJob_combinesPhaseErrors(t *testing.T) {
	reaper := &fakePendingReaper{
		expireErr: errors.New("expire boom"),
		purgeErr:  errors.New("purge boom"),
	}
	job := newGatewayExpiryJobTest(t, reaper)

	err := job.Run(context.Background())
	if err == nil {
		t.Fatal("expected an error")
	}
	for _, want := range []string{"expire boom", "purge boom"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error %q missing %q", err, want)
		}
	}
}

func TestGatewayExpiryJob_requiresDeps(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "cron-test"})
	if _, err := NewGatewayExpiryJob(GatewayExpiryJobParams{Pending: &fakePendingReaper{}}); err == nil {
		t.Fatal("expected error without logger")
	}
	if _, err := NewGatewayExpiryJob(GatewayExpiryJobParams{Logger: logg}); err == nil {
		t.Fatal("expected error without repository")
	}
}
