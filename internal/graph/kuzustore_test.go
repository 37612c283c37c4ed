//go:build cgo

package graph

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/labelgraph/internal/query"
)

func init() {
	testStores = append(testStores, storeFactory{"kuzu", func(t *testing.T) Store { return newTestKuzuStore(t) }})
}

// newTestKuzuStore creates a fresh in-memory KuzuStore with an initialized
// schema. It registers a cleanup function to close the store when the test
// finishes.
func newTestKuzuStore(t *testing.T) *KuzuStore {
	t.Helper()
	s, err := NewKuzuStore()
	require.NoError(t, err, "NewKuzuStore should not fail")
	t.Cleanup(func() { _ = s.Close() })

	ctx := context.Background()
	require.NoError(t, s.InitSchema(ctx), "InitSchema should not fail")
	return s
}

func TestKuzuStore_InitSchema(t *testing.T) {
	s, err := NewKuzuStore()
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	ctx := context.Background()

	// First call creates the tables.
	require.NoError(t, s.InitSchema(ctx))

	// Second call should be idempotent (IF NOT EXISTS).
	require.NoError(t, s.InitSchema(ctx))
}

func TestKuzuStore_Driver(t *testing.T) {
	s := newTestKuzuStore(t)
	assert.Equal(t, query.DriverKuzu, s.Driver())
	assert.False(t, s.Adapter().SupportsArrayOperators(context.Background()))
}

func TestKuzuStore_FileRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "nested", "graph.kuzu")

	s, err := NewKuzuFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, s.InitSchema(ctx))
	newTechService(t, s)
	require.NoError(t, s.Close())

	reopened, err := NewKuzuFileStore(dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	paths, err := reopened.AllPaths(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		"backend", "backend.php", "php", "tech", "tech.backend", "tech.backend.php",
	}, paths)
}

func TestKuzuStore_MoveAttachmentReplacesEdge(t *testing.T) {
	ctx := context.Background()
	s := newTestKuzuStore(t)
	seedTx(t, s)

	require.NoError(t, s.Update(ctx, func(tx Tx) error {
		if err := tx.AddAttachment(ctx, Attachment{ID: "at1", RouteID: "rab", EntityType: "post", EntityID: "1"}); err != nil {
			return err
		}
		return tx.MoveAttachments(ctx, []string{"at1"}, "rb")
	}))

	require.NoError(t, s.View(ctx, func(tx Tx) error {
		atts, err := tx.AttachmentsOf(ctx, "post", "1")
		require.NoError(t, err)
		require.Len(t, atts, 1, "the old ATTACHED_TO edge must be gone")
		assert.Equal(t, "rb", atts[0].RouteID)
		return nil
	}))
}

func TestToInt(t *testing.T) {
	assert.Equal(t, 3, toInt(int64(3)))
	assert.Equal(t, 3, toInt(int32(3)))
	assert.Equal(t, 3, toInt(float64(3)))
	assert.Equal(t, 0, toInt("3"))
	assert.Equal(t, "", toString(nil))
	assert.Equal(t, "7", toString(int64(7)))
}
