package export

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/labelgraph/internal/graph"
)

// newTechStore returns a store holding tech -> backend -> php, an isolated
// "Ops" label and one attachment on tech.backend.
func newTechStore(t *testing.T) graph.Store {
	t.Helper()
	ctx := context.Background()
	store := graph.NewMemStore()
	svc := graph.NewService(store)
	for _, name := range []string{"Tech", "Backend", "PHP", `Ops "Team"`} {
		_, err := svc.CreateLabel(ctx, graph.LabelInput{Name: name})
		require.NoError(t, err)
	}
	_, err := svc.CreateRelationship(ctx, "tech", "backend")
	require.NoError(t, err)
	_, err = svc.CreateRelationship(ctx, "backend", "php")
	require.NoError(t, err)
	_, err = svc.Attach(ctx, "tech.backend", "post", "42")
	require.NoError(t, err)
	return store
}

func TestExportTaxonomy(t *testing.T) {
	store := newTechStore(t)

	exp, err := ExportTaxonomy(context.Background(), store)
	require.NoError(t, err)

	assert.Equal(t, "memory", exp.Driver)
	assert.NotEmpty(t, exp.ExportedAt)
	assert.Len(t, exp.Labels, 4)

	var edges []string
	for _, r := range exp.Relationships {
		edges = append(edges, r.Parent+"->"+r.Child)
	}
	assert.ElementsMatch(t, []string{"tech->backend", "backend->php"}, edges)

	require.Len(t, exp.Routes, 7)
	for _, r := range exp.Routes {
		if r.Path == "tech.backend" {
			assert.Equal(t, 1, r.Depth)
			assert.Equal(t, []EntityRef{{Type: "post", ID: "42"}}, r.Attachments)
		} else {
			assert.Empty(t, r.Attachments, r.Path)
		}
	}

	data, err := json.Marshal(exp)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"path":"tech.backend.php"`)
	assert.Contains(t, string(data), `"attachments":[{"type":"post","id":"42"}]`)
}

func TestGenerateMermaid(t *testing.T) {
	store := newTechStore(t)

	out, err := GenerateMermaid(context.Background(), store)
	require.NoError(t, err)

	// Labels are ordered by slug: backend, ops-team, php, tech.
	nodes := `graph TD
  N0["Backend"]
  N1["Ops #quot;Team#quot;"]
  N2["PHP"]
  N3["Tech"]
`
	assert.True(t, strings.HasPrefix(out, nodes), out)
	assert.Contains(t, out, "  N3 --> N0\n")
	assert.Contains(t, out, "  N0 --> N2\n")
}

func TestGenerateMermaid_Empty(t *testing.T) {
	out, err := GenerateMermaid(context.Background(), graph.NewMemStore())
	require.NoError(t, err)
	assert.Equal(t, "graph TD\n", out)
}
