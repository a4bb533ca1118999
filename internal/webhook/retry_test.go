package webhook

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetrySucceedsFirstTry(t *testing.T) {
	calls := 0
	err := retryWithBackoff(context.Background(), fastRetry(3), func() error {
		calls++
		return nil
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestRetryRetriesUntilSuccess(t *testing.T) {
	calls := 0
	retries := 0
	err := retryWithBackoff(context.Background(), fastRetry(4), func() error {
		calls++
		if calls < 3 {
			return errors.New("endpoint returned 503")
		}
		return nil
	}, func(attempt int, err error) {
		retries++
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
	if retries != 2 {
		t.Fatalf("onRetry fired %d times, want 2", retries)
	}
}

func TestRetryReturnsLastErrorWhenExhausted(t *testing.T) {
	wantErr := errors.New("connection refused")
	calls := 0
	err := retryWithBackoff(context.Background(), fastRetry(3), func() error {
		calls++
		return wantErr
	}, nil)
	if !errors.Is(err, wantErr) {
		t.Fatalf("error = %v, want %v", err, wantErr)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
}

func TestRetryStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	cfg := RetryConfig{
		MaxAttempts:  10,
		InitialDelay: time.Hour,
		MaxDelay:     time.Hour,
		Multiplier:   2.0,
	}
	calls := 0
	done := make(chan error, 1)
	go func() {
		done <- retryWithBackoff(ctx, cfg, func() error {
			calls++
			return errors.New("still failing")
		}, nil)
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("retry did not stop on cancel")
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestApplyJitterStaysWithinBounds(t *testing.T) {
	base := 100 * time.Millisecond
	for i := 0; i < 100; i++ {
		d := applyJitter(base)
		if d < 75*time.Millisecond || d >= 125*time.Millisecond {
			t.Fatalf("jittered duration %v outside [75ms, 125ms)", d)
		}
	}
}
