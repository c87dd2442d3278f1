package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront-go/storefront/pkg/logger"
)

func TestRunSagaCompensatesInReverse(t *testing.T) {
	var trace []string
	mk := func(name string, fail bool) sagaStep {
		return sagaStep{
			name: name,
			run: func(context.Context) error {
				if fail {
					return errors.New(name + " failed")
				}
				trace = append(trace, "run:"+name)
				return nil
			},
			compensate: func(context.Context) error {
				trace = append(trace, "undo:"+name)
				return nil
			},
		}
	}

	err := runSaga(context.Background(), logger.Discard(), []sagaStep{
		mk("a", false), mk("b", false), mk("c", true), mk("d", false),
	})
	require.Error(t, err)

	assert.Equal(t, []string{"run:a", "run:b", "undo:b", "undo:a"}, trace,
		"completed steps are undone in reverse, later steps never run")
}

func TestRunSagaNilCompensationIsSkipped(t *testing.T) {
	ran := false
	err := runSaga(context.Background(), logger.Discard(), []sagaStep{
		{name: "first", run: func(context.Context) error { ran = true; return nil }},
		{name: "second", run: func(context.Context) error { return errors.New("boom") }},
	})
	require.Error(t, err)
	assert.True(t, ran)
}
