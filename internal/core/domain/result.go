package domain

import (
	"fmt"
	"strings"
)

// TransformOutcome is the normalized oracle output for one block.
type TransformOutcome struct {
	Text string
	// Unresolved is set when the output still holds an L# placeholder.
	Unresolved bool
}

// RecordStatus is the terminal state of a record within one run.
type RecordStatus string

const (
	RecordSkipped   RecordStatus = "skipped"
	RecordNoMarkup  RecordStatus = "no_markup"
	RecordUpdated   RecordStatus = "updated"
	RecordPreviewed RecordStatus = "previewed"
	RecordFailed    RecordStatus = "failed"
)

// RecordResult is the outcome of driving a single record through the pipeline.
type RecordResult struct {
	ID        int64
	Status    RecordStatus
	Reason    string
	Languages []string
	Output    map[string]string
	// Rows is the number of rows the store reported as written.
	Rows int64
	Err  error
}

// BatchResult aggregates record results for a run.
type BatchResult struct {
	RunID     string
	Processed int
	Updated   int
	Skipped   int
	NoMarkup  int
	Previewed int
	Failed    int
	DryRun    bool
	// LastID is the highest record id attempted in the run (0 if none).
	LastID int64
}

// Add folds a record result into the aggregate. Every result counts as processed.
func (b *BatchResult) Add(r RecordResult) {
	b.Processed++
	if r.ID > b.LastID {
		b.LastID = r.ID
	}
	switch r.Status {
	case RecordSkipped:
		b.Skipped++
	case RecordNoMarkup:
		b.NoMarkup++
	case RecordPreviewed:
		b.Previewed++
	case RecordUpdated:
		b.Updated += int(r.Rows)
	case RecordFailed:
		b.Failed++
	}
}

// String renders the run summary line.
func (b BatchResult) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "processed %d — updated %d", b.Processed, b.Updated)
	if b.Failed > 0 {
		fmt.Fprintf(&sb, " — failed %d", b.Failed)
	}
	if b.DryRun {
		sb.WriteString(" (DRY-RUN)")
	}
	return sb.String()
}
