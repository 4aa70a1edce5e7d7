package utils

import (
	"errors"
	"testing"
	"time"
)

func TestRetrySucceedsAfterFailures(t *testing.T) {
	r := &RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   time.Millisecond,
		Logger:      NewLogger(),
	}

	attempts := 0
	err := r.Do("flaky-op", func() error {
		attempts++
		if attempts < 3 {
			return errors.New("transient failure")
		}
		return nil
	})

	if err != nil {
		t.Errorf("expected success on third attempt, got %v", err)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}

func TestRetryExhaustsAttempts(t *testing.T) {
	r := &RetryConfig{
		MaxAttempts: 2,
		BaseDelay:   time.Millisecond,
		Logger:      NewLogger(),
	}

	baseErr := errors.New("permanent failure")
	attempts := 0
	err := r.Do("doomed-op", func() error {
		attempts++
		return baseErr
	})

	if err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", attempts)
	}
	if !errors.Is(err, baseErr) {
		t.Errorf("final error should wrap the last failure, got %v", err)
	}
}

func TestRetryFirstTrySuccess(t *testing.T) {
	r := &RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   time.Second, // would be noticeable if a retry happened
		Logger:      NewLogger(),
	}

	start := time.Now()
	if err := r.Do("quick-op", func() error { return nil }); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if time.Since(start) > 100*time.Millisecond {
		t.Error("first-try success should not sleep")
	}
}
