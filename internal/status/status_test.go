package status

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/labelgraph/internal/graph"
)

func TestSummarize(t *testing.T) {
	ctx := context.Background()
	store := graph.NewMemStore()
	svc := graph.NewService(store)
	for _, name := range []string{"tech", "backend", "php", "ops"} {
		_, err := svc.CreateLabel(ctx, graph.LabelInput{Name: name})
		require.NoError(t, err)
	}
	_, err := svc.CreateRelationship(ctx, "tech", "backend")
	require.NoError(t, err)
	_, err = svc.CreateRelationship(ctx, "backend", "php")
	require.NoError(t, err)
	_, err = svc.Attach(ctx, "tech.backend.php", "post", "1")
	require.NoError(t, err)
	_, err = svc.Attach(ctx, "tech.backend.php", "post", "2")
	require.NoError(t, err)
	_, err = svc.Attach(ctx, "ops", "post", "1")
	require.NoError(t, err)

	sum, err := Summarize(ctx, store)
	require.NoError(t, err)

	assert.Equal(t, "memory", sum.Driver)
	assert.Equal(t, graph.GraphStats{LabelCount: 4, RelationshipCount: 2, RouteCount: 7, AttachmentCount: 3}, sum.Stats)
	assert.Equal(t, []string{"ops", "tech"}, sum.Roots)
	assert.Equal(t, []string{"ops", "php"}, sum.Leaves)
	assert.Equal(t, []DepthCount{{0, 4}, {1, 2}, {2, 1}}, sum.Depths)
	assert.Equal(t, 2, sum.MaxDepth())
	assert.Equal(t, []RouteUsage{{"ops", 1}, {"tech.backend.php", 2}}, sum.Used)
}

func TestSummarize_Empty(t *testing.T) {
	sum, err := Summarize(context.Background(), graph.NewMemStore())
	require.NoError(t, err)
	assert.Empty(t, sum.Roots)
	assert.Empty(t, sum.Used)
	assert.Equal(t, -1, sum.MaxDepth())
}
