package runtime

import "github.com/sirupsen/logrus"

// Log is the package-wide logger for interpreter-internal conditions:
// resource-budget exhaustion and Internal-exit diagnostics. It is never
// on the Return/Exception hot path. cmd/monty uses fmt for the
// program's own print()/stdout and logrus only for Internal exits.
var Log = logrus.New()

func init() {
	Log.SetLevel(logrus.WarnLevel)
}

// logAllocBudget records a ResourceTracker refusal at the point the
// heap turns it into a MemoryError, so an embedder running with
// logrus's JSON formatter can alert on budget exhaustion without
// parsing program output.
func logAllocBudget(runID string) {
	Log.WithField("run_id", runID).Warn("monty: allocation budget exhausted, raising MemoryError")
}

// logInternal records an InternalError right before Executor.Run
// surfaces Exit.Internal, carrying the run correlation id.
func logInternal(runID string, err *InternalError) {
	Log.WithFields(logrus.Fields{
		"run_id": runID,
		"reason": err.Reason,
	}).Error("monty: internal error")
}

// LogInternal is logInternal exposed for pkg/monty, which stamps the
// run id after the Evaluator returns from outside this package.
func LogInternal(runID string, err *InternalError) { logInternal(runID, err) }
