package client

import (
	"context"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func Test_Poller_Fetches_Immediately_Then_On_Interval(t *testing.T) {
	req := require.New(t)

	var calls atomic.Int32
	p := NewPoller(20*time.Millisecond, func(ctx context.Context) error {
		calls.Add(1)
		return nil
	}, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = p.Run(ctx)
		close(done)
	}()

	req.Eventually(func() bool { return calls.Load() >= 1 }, time.Second, time.Millisecond,
		"first fetch should not wait for the interval")
	req.Eventually(func() bool { return calls.Load() >= 3 }, time.Second, time.Millisecond)

	cancel()
	<-done
}

func Test_Poller_Skips_Ticks_While_Fetch_Outstanding(t *testing.T) {
	req := require.New(t)

	release := make(chan struct{})
	var calls atomic.Int32
	p := NewPoller(10*time.Millisecond, func(ctx context.Context) error {
		calls.Add(1)
		select {
		case <-release:
		case <-ctx.Done():
		}
		return nil
	}, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = p.Run(ctx)
		close(done)
	}()

	// The first fetch blocks; several intervals pass and every one of those
	// ticks must be dropped, not queued.
	req.Eventually(func() bool { return p.SkippedTicks() >= 3 }, time.Second, time.Millisecond)
	req.Equal(int32(1), calls.Load())

	close(release)
	req.Eventually(func() bool { return calls.Load() >= 2 }, time.Second, time.Millisecond,
		"polling resumes once the slow fetch returns")

	cancel()
	<-done
}

func Test_Poller_Stops_On_Context_Cancel(t *testing.T) {
	req := require.New(t)

	p := NewPoller(5*time.Millisecond, func(ctx context.Context) error { return nil }, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = p.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		req.FailNow("poller did not stop after cancellation")
	}
}
