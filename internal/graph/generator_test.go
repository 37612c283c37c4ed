package graph

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seqIDs returns a deterministic id source: prefix-1, prefix-2, ...
func seqIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

// seedGraph writes the tech -> backend -> php labels and edges without
// materializing any routes.
func seedGraph(t *testing.T, store Store) {
	t.Helper()
	labels, rels := techGraph()
	ctx := context.Background()
	require.NoError(t, store.Update(ctx, func(tx Tx) error {
		for _, l := range labels {
			l.Name = l.Slug
			if err := tx.AddLabel(ctx, l); err != nil {
				return err
			}
		}
		for _, r := range rels {
			if err := tx.AddRelationship(ctx, r); err != nil {
				return err
			}
		}
		return nil
	}))
}

func TestGenerator_RegenerateAll(t *testing.T) {
	ctx := context.Background()
	store := newTestMemStore(t)
	seedGraph(t, store)

	var buf bytes.Buffer
	gen := NewGenerator(
		WithRouteIDs(seqIDs("route")),
		WithGeneratorLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))),
	)

	var res *RegenerateResult
	require.NoError(t, store.Update(ctx, func(tx Tx) error {
		var err error
		res, err = gen.RegenerateAll(ctx, tx)
		return err
	}))

	assert.Len(t, res.Inserted, 6)
	assert.Empty(t, res.Deleted)
	assert.Equal(t, 6, res.Total)
	assert.Equal(t, "route-1", res.Inserted[0].ID)
	assert.Contains(t, buf.String(), "routes regenerated")
	assert.Contains(t, buf.String(), "inserted=6")

	// A second run over the same graph is a no-op.
	require.NoError(t, store.Update(ctx, func(tx Tx) error {
		var err error
		res, err = gen.RegenerateAll(ctx, tx)
		return err
	}))
	assert.Empty(t, res.Inserted)
	assert.Empty(t, res.Deleted)
}

func TestGenerator_RemovesStaleRoutes(t *testing.T) {
	ctx := context.Background()
	store := newTestMemStore(t)
	seedGraph(t, store)
	gen := NewGenerator()

	require.NoError(t, store.Update(ctx, func(tx Tx) error {
		if err := tx.InsertRoutes(ctx, []Route{newRoute("stale", "legacy.route")}); err != nil {
			return err
		}
		res, err := gen.RegenerateAll(ctx, tx)
		if err != nil {
			return err
		}
		assert.Equal(t, []string{"legacy.route"}, routePaths(res.Deleted))
		return nil
	}))
}

func TestGenerator_Affected(t *testing.T) {
	ctx := context.Background()
	store := newTestMemStore(t)
	seedGraph(t, store)
	gen := NewGenerator()

	require.NoError(t, store.Update(ctx, func(tx Tx) error {
		if _, err := gen.RegenerateAll(ctx, tx); err != nil {
			return err
		}

		affected, err := gen.AffectedByRemoval(ctx, tx, Relationship{ParentID: "l-tech", ChildID: "l-backend"})
		require.NoError(t, err)
		assert.Equal(t, []string{"tech.backend", "tech.backend.php"}, routePaths(affected))

		affected, err = gen.AffectedByLabelRemoval(ctx, tx, "l-backend")
		require.NoError(t, err)
		assert.Equal(t, []string{"backend", "backend.php", "tech.backend", "tech.backend.php"}, routePaths(affected))

		desired, err := gen.Desired(ctx, tx)
		require.NoError(t, err)
		assert.Len(t, desired, 6)
		return nil
	}))
}

func TestNewID_TimeOrdered(t *testing.T) {
	a, b := newID(), newID()
	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
	assert.LessOrEqual(t, a, b)
}
