package engine

import (
	"mattress_money/internal/errs" // Error taxonomy

	"github.com/sirupsen/logrus" // Logging library
)

// step is one unit of a multi-document write sequence: a forward action and
// the compensation that undoes it. compensate may be nil when a step has
// nothing to undo.
type step struct {
	name       string
	forward    func() error
	compensate func() error
}

// runSaga executes steps in order. On a forward failure, the compensations
// of every completed step run in reverse order. There is no store-level
// multi-document transaction behind this; compensation is best effort, and a
// compensation failure is reported as a PartialFailureError because the
// stores may now disagree with each other.
func runSaga(steps []step) error {
	for i := range steps {
		err := steps[i].forward()
		if err == nil {
			continue
		}

		logrus.WithFields(logrus.Fields{
			"step":  steps[i].name,
			"error": err.Error(),
		}).Error("Ledger step failed, compensating")

		for j := i - 1; j >= 0; j-- {
			if steps[j].compensate == nil {
				continue
			}
			if cerr := steps[j].compensate(); cerr != nil {
				logrus.WithFields(logrus.Fields{
					"step":  steps[j].name,
					"error": cerr.Error(),
				}).Error("Compensation failed, stores may be inconsistent")
				return &errs.PartialFailureError{
					Step:         steps[j].name,
					Cause:        err,
					Compensation: cerr,
				}
			}
		}
		return err
	}
	return nil
}
