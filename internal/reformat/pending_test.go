package reformat

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietddude/mdreformat/internal/core/domain"
	"github.com/vietddude/mdreformat/internal/infra/storage/memory"
)

func TestPending(t *testing.T) {
	recs := markupRoutes(1, 2, 3, 4)
	recs[0].Reformatted = domain.NewBlob(map[string]string{"fr": "done"})
	recs[2].Activities = []string{"hiking"}
	recs[3].Status = "0"
	plain := route(5, map[string]string{"fr": "plain"})
	repo := memory.NewRouteRepo(memory.NewMemoryStorage(append(recs, plain)...))

	report, err := Pending(context.Background(), repo, DefaultActivities, domain.DefaultLangOrder)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Total)
	assert.Equal(t, 1, report.Treated)
	assert.Equal(t, []int64{2}, report.Untreated)

	report, err = Pending(context.Background(), repo, nil, domain.DefaultLangOrder)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Total)
	assert.Equal(t, []int64{2, 3}, report.Untreated)
}
