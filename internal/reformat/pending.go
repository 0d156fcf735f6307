package reformat

import (
	"context"
	"fmt"

	"github.com/vietddude/mdreformat/internal/core/domain"
	"github.com/vietddude/mdreformat/internal/infra/storage"
)

// PendingReport counts active routes whose description carries markup.
type PendingReport struct {
	Total     int
	Treated   int
	Untreated []int64
}

// Pending scans every active route of an allowed activity and splits those
// with markup into treated and untreated.
func Pending(ctx context.Context, store storage.RouteRepository, activities []string, order []string) (PendingReport, error) {
	var report PendingReport

	records, err := store.Snapshot(ctx, storage.SnapshotQuery{Status: domain.StatusActive, FromID: 1})
	if err != nil {
		return report, fmt.Errorf("failed to read snapshot: %w", err)
	}

	filter := NewFilter(1, false, activities)
	for _, rec := range records {
		if !filter.IsEligible(rec) || len(EligibleBlocks(rec, order)) == 0 {
			continue
		}
		report.Total++
		if rec.Reformatted.IsDone() {
			report.Treated++
		} else {
			report.Untreated = append(report.Untreated, rec.ID)
		}
	}
	return report, nil
}
