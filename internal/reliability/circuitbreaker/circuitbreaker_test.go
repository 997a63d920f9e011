package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var errDown = errors.New("backend down")

func failing() error { return errDown }
func healthy() error { return nil }

func TestTripsAfterThreshold(t *testing.T) {
	cb := NewCircuitBreaker(2, 1, time.Hour)

	assert.ErrorIs(t, cb.Execute(failing, nil), errDown)
	assert.Equal(t, StateClosed, cb.GetState())
	assert.ErrorIs(t, cb.Execute(failing, nil), errDown)
	assert.Equal(t, StateOpen, cb.GetState())

	called := false
	err := cb.Execute(func() error { called = true; return nil }, nil)
	assert.ErrorIs(t, err, ErrOpen)
	assert.False(t, called)
}

func TestSuccessResetsFailureCount(t *testing.T) {
	cb := NewCircuitBreaker(2, 1, time.Hour)

	_ = cb.Execute(failing, nil)
	_ = cb.Execute(healthy, nil)
	_ = cb.Execute(failing, nil)

	assert.Equal(t, StateClosed, cb.GetState())
}

func TestHalfOpenRecovers(t *testing.T) {
	cb := NewCircuitBreaker(1, 1, 10*time.Millisecond)

	var transitions []string
	cb.SetStateChangeCallback(func(from, to State) {
		transitions = append(transitions, from.String()+"->"+to.String())
	})

	_ = cb.Execute(failing, nil)
	assert.Equal(t, StateOpen, cb.GetState())

	time.Sleep(20 * time.Millisecond)
	assert.NoError(t, cb.Execute(healthy, nil))
	assert.Equal(t, StateClosed, cb.GetState())
	assert.Equal(t, []string{"closed->open", "open->half_open", "half_open->closed"}, transitions)
}

func TestIgnoredErrorsDoNotTrip(t *testing.T) {
	cb := NewCircuitBreaker(1, 1, time.Hour)
	notFailure := func(err error) bool { return !errors.Is(err, context.Canceled) }

	err := cb.Execute(func() error { return context.Canceled }, notFailure)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateClosed, cb.GetState())
}
