package graph

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/labelgraph/internal/query"
)

// seedTx inserts labels a and b, an a -> b edge and routes for both.
func seedTx(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, store.Update(ctx, func(tx Tx) error {
		if err := tx.AddLabel(ctx, Label{ID: "la", Name: "A", Slug: "a"}); err != nil {
			return err
		}
		if err := tx.AddLabel(ctx, Label{ID: "lb", Name: "B", Slug: "b"}); err != nil {
			return err
		}
		if err := tx.AddRelationship(ctx, Relationship{ID: "r1", ParentID: "la", ChildID: "lb"}); err != nil {
			return err
		}
		return tx.InsertRoutes(ctx, []Route{newRoute("ra", "a"), newRoute("rab", "a.b"), newRoute("rb", "b")})
	}))
}

func TestStore_LabelLookups(t *testing.T) {
	forEachStore(t, func(t *testing.T, store Store) {
		ctx := context.Background()
		seedTx(t, store)

		require.NoError(t, store.View(ctx, func(tx Tx) error {
			l, err := tx.GetLabel(ctx, "la")
			require.NoError(t, err)
			require.NotNil(t, l)
			assert.Equal(t, "a", l.Slug)

			l, err = tx.GetLabelBySlug(ctx, "b")
			require.NoError(t, err)
			require.NotNil(t, l)
			assert.Equal(t, "lb", l.ID)

			l, err = tx.GetLabel(ctx, "missing")
			require.NoError(t, err)
			assert.Nil(t, l, "not found returns (nil, nil)")

			labels, err := tx.Labels(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"a", "b"}, []string{labels[0].Slug, labels[1].Slug})
			return nil
		}))
	})
}

func TestStore_DuplicateSlug(t *testing.T) {
	forEachStore(t, func(t *testing.T, store Store) {
		ctx := context.Background()
		seedTx(t, store)

		err := store.Update(ctx, func(tx Tx) error {
			return tx.AddLabel(ctx, Label{ID: "lx", Name: "A again", Slug: "a"})
		})
		assert.ErrorIs(t, err, ErrDuplicateSlug)
	})
}

func TestStore_ViewIsReadOnly(t *testing.T) {
	forEachStore(t, func(t *testing.T, store Store) {
		ctx := context.Background()
		err := store.View(ctx, func(tx Tx) error {
			return tx.AddLabel(ctx, Label{ID: "x", Name: "X", Slug: "x"})
		})
		assert.ErrorIs(t, err, ErrReadOnly)
	})
}

func TestStore_UpdateRollsBack(t *testing.T) {
	forEachStore(t, func(t *testing.T, store Store) {
		ctx := context.Background()
		seedTx(t, store)
		boom := errors.New("boom")

		err := store.Update(ctx, func(tx Tx) error {
			if err := tx.AddLabel(ctx, Label{ID: "lc", Name: "C", Slug: "c"}); err != nil {
				return err
			}
			if err := tx.DeleteRoutes(ctx, []string{"rab"}); err != nil {
				return err
			}
			return boom
		})
		require.ErrorIs(t, err, boom)

		paths, err := store.AllPaths(ctx)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"a", "a.b", "b"}, paths)

		require.NoError(t, store.View(ctx, func(tx Tx) error {
			l, err := tx.GetLabelBySlug(ctx, "c")
			assert.Nil(t, l)
			return err
		}))
	})
}

func TestStore_DeleteLabelRemovesEdges(t *testing.T) {
	forEachStore(t, func(t *testing.T, store Store) {
		ctx := context.Background()
		seedTx(t, store)

		require.NoError(t, store.Update(ctx, func(tx Tx) error {
			return tx.DeleteLabel(ctx, "lb")
		}))
		require.NoError(t, store.View(ctx, func(tx Tx) error {
			rels, err := tx.Relationships(ctx)
			require.NoError(t, err)
			assert.Empty(t, rels)
			return nil
		}))
	})
}

func TestStore_RelationshipChecks(t *testing.T) {
	forEachStore(t, func(t *testing.T, store Store) {
		ctx := context.Background()
		seedTx(t, store)

		err := store.Update(ctx, func(tx Tx) error {
			return tx.AddRelationship(ctx, Relationship{ID: "r2", ParentID: "la", ChildID: "lb"})
		})
		assert.ErrorIs(t, err, ErrDuplicateRelationship)

		err = store.Update(ctx, func(tx Tx) error {
			return tx.AddRelationship(ctx, Relationship{ID: "r3", ParentID: "la", ChildID: "ghost"})
		})
		assert.ErrorIs(t, err, ErrUnknownLabel)

		require.NoError(t, store.View(ctx, func(tx Tx) error {
			rel, err := tx.FindRelationship(ctx, "la", "lb")
			require.NoError(t, err)
			require.NotNil(t, rel)
			assert.Equal(t, "r1", rel.ID)

			rel, err = tx.FindRelationship(ctx, "lb", "la")
			require.NoError(t, err)
			assert.Nil(t, rel)
			return nil
		}))
	})
}

func TestStore_AttachmentLifecycle(t *testing.T) {
	forEachStore(t, func(t *testing.T, store Store) {
		ctx := context.Background()
		seedTx(t, store)

		require.NoError(t, store.Update(ctx, func(tx Tx) error {
			if err := tx.AddAttachment(ctx, Attachment{ID: "at1", RouteID: "rab", EntityType: "post", EntityID: "1"}); err != nil {
				return err
			}
			return tx.AddAttachment(ctx, Attachment{ID: "at2", RouteID: "rab", EntityType: "post", EntityID: "2"})
		}))

		require.NoError(t, store.Update(ctx, func(tx Tx) error {
			n, err := tx.CountAttachments(ctx, []string{"ra", "rab"})
			require.NoError(t, err)
			assert.Equal(t, 2, n)

			require.NoError(t, tx.MoveAttachments(ctx, []string{"at1"}, "ra"))
			on, err := tx.AttachmentsOn(ctx, []string{"ra"})
			require.NoError(t, err)
			require.Len(t, on, 1)
			assert.Equal(t, "at1", on[0].ID)

			of, err := tx.AttachmentsOf(ctx, "post", "2")
			require.NoError(t, err)
			require.Len(t, of, 1)
			assert.Equal(t, "rab", of[0].RouteID)

			// Deleting a route takes its attachments with it.
			require.NoError(t, tx.DeleteRoutes(ctx, []string{"rab"}))
			stats, err := tx.Stats(ctx)
			require.NoError(t, err)
			assert.Equal(t, GraphStats{LabelCount: 2, RelationshipCount: 1, RouteCount: 2, AttachmentCount: 1}, *stats)
			return nil
		}))
	})
}

func TestStore_FindRoutesFilters(t *testing.T) {
	forEachStore(t, func(t *testing.T, store Store) {
		ctx := context.Background()
		seedTx(t, store)
		a := store.Adapter()

		routes, err := store.FindRoutes(ctx, a.Depth(0))
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, routePaths(routes))

		routes, err = store.FindRoutes(ctx, a.ExactPath("a.b"))
		require.NoError(t, err)
		assert.Equal(t, []string{"a.b"}, routePaths(routes))

		routes, err = store.FindRoutes(ctx, a.PathLike("a%"))
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "a.b"}, routePaths(routes))

		routes, err = store.FindRoutes(ctx, a.PathLike("A._"))
		require.NoError(t, err)
		assert.Equal(t, []string{"a.b"}, routePaths(routes), "LIKE ignores case on every store")

		routes, err = store.FindRoutes(ctx, query.None())
		require.NoError(t, err)
		assert.Empty(t, routes)
	})
}

func TestMemStore_RejectsNativeFilter(t *testing.T) {
	s := newTestMemStore(t)
	_, err := s.FindRoutes(context.Background(), query.Filter{SQL: "path::ltree ~ ?::lquery", Args: []any{"a.*"}})
	assert.ErrorIs(t, err, query.ErrNativeFilter)
}

func TestMemStore_CancelledContext(t *testing.T) {
	s := newTestMemStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := s.Update(ctx, func(Tx) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}
