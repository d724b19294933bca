package retry

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var errBusy = errors.New("busy")

func TestConstant_SuccessImmediate(t *testing.T) {
	var calls int
	err := Constant(func() error { calls++; return nil }, Config{Attempts: 3, Interval: time.Millisecond})
	assert.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestConstant_RetryThenSuccess(t *testing.T) {
	var calls, notified int
	err := Constant(func() error {
		calls++
		if calls < 3 {
			return errBusy
		}
		return nil
	}, Config{
		Attempts: 5,
		Interval: time.Millisecond,
		OnRetry: func(err error, next time.Duration) {
			notified++
			assert.ErrorIs(t, err, errBusy)
		},
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 2, notified)
}

func TestConstant_ExhaustsAttempts(t *testing.T) {
	var calls int
	err := Constant(func() error { calls++; return errBusy }, Config{Attempts: 3, Interval: time.Millisecond})
	assert.ErrorIs(t, err, errBusy)
	assert.Equal(t, 3, calls)
}

func TestConstant_DefaultsToSingleAttempt(t *testing.T) {
	var calls int
	err := Constant(func() error { calls++; return errBusy }, Config{})
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestConstant_PermanentErrorStops(t *testing.T) {
	var calls int
	fatal := errors.New("not a store")
	err := Constant(func() error { calls++; return fatal }, Config{
		Attempts:  5,
		Interval:  time.Millisecond,
		Retryable: func(err error) bool { return errors.Is(err, errBusy) },
	})
	assert.Equal(t, fatal, err)
	assert.Equal(t, 1, calls)
}
