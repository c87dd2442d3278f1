package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHappyPathTransitions(t *testing.T) {
	path := []Status{StatusPending, StatusConfirmed, StatusProcessing, StatusShipped, StatusDelivered}
	for i := 0; i < len(path)-1; i++ {
		assert.True(t, path[i].CanTransition(path[i+1]),
			"%s -> %s must be allowed", path[i], path[i+1])
	}
}

func TestNoSkippingSteps(t *testing.T) {
	assert.False(t, StatusPending.CanTransition(StatusShipped))
	assert.False(t, StatusConfirmed.CanTransition(StatusDelivered))
	assert.False(t, StatusShipped.CanTransition(StatusPending), "no going backwards")
}

func TestCancelledExitFromNonTerminal(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusConfirmed, StatusProcessing, StatusShipped} {
		assert.True(t, s.CanTransition(StatusCancelled), "%s must be cancellable", s)
	}
}

func TestTerminalStatesAreFinal(t *testing.T) {
	for _, s := range []Status{StatusDelivered, StatusCancelled} {
		for _, next := range []Status{StatusPending, StatusConfirmed, StatusProcessing,
			StatusShipped, StatusDelivered, StatusCancelled} {
			assert.False(t, s.CanTransition(next), "%s -> %s must be rejected", s, next)
		}
	}
}

func TestStatusValid(t *testing.T) {
	assert.True(t, StatusPending.Valid())
	assert.False(t, Status("REFUNDED").Valid())
}
