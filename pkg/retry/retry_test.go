package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fastConfig(maxRetries int) *Config {
	return &Config{
		MaxRetries:      maxRetries,
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
		Multiplier:      2.0,
	}
}

func TestDo_SucceedsFirstTry(t *testing.T) {
	calls := 0
	err := New(fastConfig(3)).Do(context.Background(), func(context.Context) error {
		calls++
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_RetriesTransientThenSucceeds(t *testing.T) {
	calls := 0
	err := New(fastConfig(3)).Do(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_ExhaustsBudget(t *testing.T) {
	transient := errors.New("still down")
	calls := 0
	err := New(fastConfig(2)).Do(context.Background(), func(context.Context) error {
		calls++
		return transient
	})
	assert.ErrorIs(t, err, ErrMaxAttemptsExceeded)
	assert.ErrorIs(t, err, transient)
	assert.Equal(t, 3, calls)
}

func TestDo_PermanentStopsImmediately(t *testing.T) {
	rejected := errors.New("401 rejected")
	calls := 0
	err := New(fastConfig(5)).Do(context.Background(), func(context.Context) error {
		calls++
		return Permanent(rejected)
	})
	assert.ErrorIs(t, err, rejected)
	assert.NotErrorIs(t, err, ErrMaxAttemptsExceeded)
	assert.Equal(t, 1, calls)
}

func TestDo_ContextCancelStopsWaiting(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	config := &Config{MaxRetries: 5, InitialInterval: time.Hour, MaxInterval: time.Hour, Multiplier: 1}

	calls := 0
	done := make(chan error, 1)
	go func() {
		done <- New(config).Do(ctx, func(context.Context) error {
			calls++
			return errors.New("transient")
		})
	}()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, calls)
	case <-time.After(time.Second):
		t.Fatal("retrier did not honor context cancellation")
	}
}

func TestIntervalFor_CappedAndNonNegative(t *testing.T) {
	r := New(&Config{
		MaxRetries:      10,
		InitialInterval: 10 * time.Millisecond,
		MaxInterval:     40 * time.Millisecond,
		Multiplier:      2.0,
		JitterFactor:    0.5,
	})

	for attempt := 1; attempt <= 10; attempt++ {
		interval := r.intervalFor(attempt)
		assert.GreaterOrEqual(t, interval, time.Duration(0))
		assert.LessOrEqual(t, interval, 60*time.Millisecond)
	}
}
