package recorder

import "TranchePlanner/internal/model"

// Source values for PlanRun.
const (
	SourceCLI       = "CLI"
	SourceCommand   = "COMMAND"
	SourceBroadcast = "BROADCAST"
)

// PlanRun is one plan produced by the shell, with where it was requested from.
type PlanRun struct {
	Source string
	Plan   *model.Plan
}

// RunRecord is a stored plan run header.
type RunRecord struct {
	ID             int64
	Timestamp      int64
	Source         string
	StartingPrice  float64
	Variant        string
	RowCount       int
	BreakEven      float64
	FloatingPnL    float64
	CumulativeLots float64
}

// Recorder persists the history of produced plans.
type Recorder interface {
	RecordPlan(run *PlanRun) (int64, error)
	RecentRuns(limit int) ([]RunRecord, error)
	Close() error
}
