package reformat

import (
	"strings"

	"github.com/vietddude/mdreformat/internal/core/domain"
	"github.com/vietddude/mdreformat/internal/markup"
)

// DefaultActivities is the activity allow-list used when none is configured.
var DefaultActivities = []string{
	"bouldering",
	"via_ferrata",
	"rock_climbing",
	"ice_climbing",
	"mountain_climbing",
	"snow_ice_mixed",
}

// Skip reasons reported by Filter.Reason.
const (
	ReasonInactive     = "inactive"
	ReasonBeforeResume = "before resume offset"
	ReasonActivity     = "activity not allowed"
	ReasonDone         = "already reformatted"
)

// Filter decides which records a run should work on.
type Filter struct {
	ResumeFrom int64
	SkipDone   bool
	// Activities is the allow-list. Empty means any activity.
	Activities map[string]bool
}

// NewFilter builds a filter. Activity names are compared case-insensitively.
func NewFilter(resumeFrom int64, skipDone bool, activities []string) Filter {
	f := Filter{ResumeFrom: resumeFrom, SkipDone: skipDone}
	if len(activities) > 0 {
		f.Activities = make(map[string]bool, len(activities))
		for _, a := range activities {
			if a = strings.ToLower(strings.TrimSpace(a)); a != "" {
				f.Activities[a] = true
			}
		}
	}
	return f
}

// IsEligible reports whether rec should be driven through the pipeline.
func (f Filter) IsEligible(rec *domain.Record) bool {
	return f.Reason(rec) == ""
}

// Reason returns why rec is not eligible, or "" when it is.
func (f Filter) Reason(rec *domain.Record) string {
	switch {
	case !rec.IsActive():
		return ReasonInactive
	case !IsResumable(rec, f.ResumeFrom):
		return ReasonBeforeResume
	case !f.allowsActivity(rec.Activities):
		return ReasonActivity
	case f.SkipDone && rec.Reformatted.IsDone():
		return ReasonDone
	}
	return ""
}

func (f Filter) allowsActivity(activities []string) bool {
	if len(f.Activities) == 0 {
		return true
	}
	for _, a := range activities {
		if f.Activities[strings.ToLower(strings.TrimSpace(a))] {
			return true
		}
	}
	return false
}

// IsResumable reports whether rec lies at or after the resume offset.
func IsResumable(rec *domain.Record, startID int64) bool {
	return rec.ID >= startID
}

// EligibleBlocks returns the language blocks worth sending to the oracle:
// non-empty text that already carries markup. Text is trimmed.
func EligibleBlocks(rec *domain.Record, order []string) []domain.LanguageBlock {
	var out []domain.LanguageBlock
	for _, b := range rec.Blocks(order) {
		text := strings.TrimSpace(b.Text)
		if markup.Normalize(text) == "" || !markup.HasMarkup(text) {
			continue
		}
		out = append(out, domain.LanguageBlock{Lang: b.Lang, Text: text})
	}
	return out
}
