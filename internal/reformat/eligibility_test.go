package reformat

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vietddude/mdreformat/internal/core/domain"
)

func TestFilter_Reason(t *testing.T) {
	done := domain.NewBlob(map[string]string{"fr": "## ok"})

	tests := []struct {
		name   string
		filter Filter
		rec    domain.Record
		want   string
	}{
		{
			name:   "eligible",
			filter: NewFilter(1, true, DefaultActivities),
			rec:    domain.Record{ID: 5, Status: "1", Activities: []string{"Rock_Climbing"}},
			want:   "",
		},
		{
			name:   "inactive",
			filter: NewFilter(1, true, nil),
			rec:    domain.Record{ID: 5, Status: "0"},
			want:   ReasonInactive,
		},
		{
			name:   "before resume offset",
			filter: NewFilter(10, true, nil),
			rec:    domain.Record{ID: 5, Status: "1"},
			want:   ReasonBeforeResume,
		},
		{
			name:   "activity not allowed",
			filter: NewFilter(1, true, DefaultActivities),
			rec:    domain.Record{ID: 5, Status: "1", Activities: []string{"hiking"}},
			want:   ReasonActivity,
		},
		{
			name:   "empty allow-list accepts any activity",
			filter: NewFilter(1, true, nil),
			rec:    domain.Record{ID: 5, Status: "1", Activities: []string{"hiking"}},
			want:   "",
		},
		{
			name:   "already done with skip",
			filter: NewFilter(1, true, nil),
			rec:    domain.Record{ID: 5, Status: "1", Reformatted: done},
			want:   ReasonDone,
		},
		{
			name:   "already done without skip",
			filter: NewFilter(1, false, nil),
			rec:    domain.Record{ID: 5, Status: "1", Reformatted: done},
			want:   "",
		},
		{
			name:   "empty blob is not done",
			filter: NewFilter(1, true, nil),
			rec:    domain.Record{ID: 5, Status: "1", Reformatted: domain.DecodeBlob([]byte(`{}`))},
			want:   "",
		},
		{
			name:   "malformed blob is not done",
			filter: NewFilter(1, true, nil),
			rec:    domain.Record{ID: 5, Status: "1", Reformatted: domain.DecodeBlob([]byte(`[1,2`))},
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Reason(&tt.rec))
			assert.Equal(t, tt.want == "", tt.filter.IsEligible(&tt.rec))
		})
	}
}

func TestIsResumable(t *testing.T) {
	rec := &domain.Record{ID: 7}
	assert.True(t, IsResumable(rec, 7))
	assert.True(t, IsResumable(rec, 1))
	assert.False(t, IsResumable(rec, 8))
}

func TestEligibleBlocks(t *testing.T) {
	rec := route(1, map[string]string{
		"en": "plain sentence",
		"fr": "  ## Voie\n| L# | 6a |  ",
		"it": "   ",
		"zz": "**bold**",
	})

	blocks := EligibleBlocks(rec, domain.DefaultLangOrder)
	assert.Equal(t, []domain.LanguageBlock{
		{Lang: "fr", Text: "## Voie\n| L# | 6a |"},
		{Lang: "zz", Text: "**bold**"},
	}, blocks)
}

func TestEligibleBlocks_UnparsedDescription(t *testing.T) {
	rec := &domain.Record{ID: 1, Status: "1", Description: domain.DecodeBlob([]byte(`not json`))}
	assert.Empty(t, EligibleBlocks(rec, domain.DefaultLangOrder))
}
