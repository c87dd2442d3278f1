package app

import (
	"context"
	"log/slog"
)

// sagaStep is one write in the checkout commit with the action that
// undoes it. Steps run in order; when one fails, the compensations of
// every completed step run in reverse.
type sagaStep struct {
	name       string
	run        func(ctx context.Context) error
	compensate func(ctx context.Context) error // nil when nothing to undo
}

// runSaga executes steps all-or-nothing. Compensation failures cannot
// be recovered here, so they are logged and the original error is
// still returned.
func runSaga(ctx context.Context, log *slog.Logger, steps []sagaStep) error {
	done := 0
	for _, st := range steps {
		if err := st.run(ctx); err != nil {
			log.Warn("checkout step failed, compensating",
				slog.String("step", st.name),
				slog.Any("err", err),
				slog.Int("completedSteps", done))
			for i := done - 1; i >= 0; i-- {
				comp := steps[i].compensate
				if comp == nil {
					continue
				}
				if cerr := comp(ctx); cerr != nil {
					log.Error("compensation failed",
						slog.String("step", steps[i].name),
						slog.Any("err", cerr))
				}
			}
			return err
		}
		done++
	}
	return nil
}
