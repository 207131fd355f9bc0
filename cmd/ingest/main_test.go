package main

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/kailas-cloud/docsearch/internal/config"
)

func TestRunPeriodically_Once(t *testing.T) {
	boom := errors.New("boom")
	var calls int
	err := runPeriodically(context.Background(), 0, func(context.Context) error {
		calls++
		return boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("expected run error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRunPeriodically_RepeatsUntilCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls atomic.Int64

	done := make(chan error, 1)
	go func() {
		done <- runPeriodically(ctx, 10*time.Millisecond, func(context.Context) error {
			if calls.Add(1) >= 3 {
				cancel()
			}
			return errors.New("transient")
		})
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("cancellation should end the loop cleanly, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop after cancel")
	}
	if calls.Load() < 3 {
		t.Errorf("calls = %d, want at least 3", calls.Load())
	}
}

func TestApplyFlags(t *testing.T) {
	var got config.IngestConfig
	app := newApp()
	app.Action = func(c *cli.Context) error {
		got = config.IngestConfig{Feed: "from-config.yaml", Workers: 4, RatePerSec: 5}
		applyFlags(c, &got)
		return nil
	}

	if err := app.Run([]string{"ingest", "--feed", "feed.json", "--interval", "90s", "--rate", "2"}); err != nil {
		t.Fatalf("run: %v", err)
	}
	if got.Feed != "feed.json" {
		t.Errorf("Feed = %q", got.Feed)
	}
	if got.IntervalSec != 90 {
		t.Errorf("IntervalSec = %d, want 90", got.IntervalSec)
	}
	if got.RatePerSec != 2 {
		t.Errorf("RatePerSec = %v, want 2", got.RatePerSec)
	}
	if got.Workers != 4 {
		t.Errorf("unset flag must keep config value, got Workers = %d", got.Workers)
	}
}
