package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/labelgraph/internal/graph"
	"github.com/dusk-indust/labelgraph/internal/query"
)

// cli runs commands against one SQLite file in a temp directory.
type cli struct {
	t   *testing.T
	dir string
	dsn string
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	dir := t.TempDir()
	return &cli{t: t, dir: dir, dsn: filepath.Join(dir, "labelgraph.db")}
}

func (c *cli) run(args ...string) (string, error) {
	c.t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs(append([]string{"-C", c.dir, "--driver", "sqlite", "--dsn", c.dsn}, args...))
	err := cmd.ExecuteContext(c.t.Context())
	return out.String(), err
}

func (c *cli) mustRun(args ...string) string {
	c.t.Helper()
	out, err := c.run(args...)
	require.NoError(c.t, err, "labelgraph %v", args)
	return out
}

func seedCLI(t *testing.T) *cli {
	t.Helper()
	c := newCLI(t)
	assert.Contains(t, c.mustRun("label", "create", "Tech"), "created label tech (")
	c.mustRun("label", "create", "Backend")
	c.mustRun("label", "create", "PHP")
	assert.Contains(t, c.mustRun("relationship", "create", "tech", "backend"), "created relationship tech -> backend")
	c.mustRun("rel", "create", "backend", "php")
	return c
}

func TestCLI_LabelsAndRoutes(t *testing.T) {
	c := seedCLI(t)

	labels := c.mustRun("label", "list")
	assert.Contains(t, labels, "backend")
	assert.Contains(t, labels, "PHP")

	routes := c.mustRun("route", "list")
	for _, line := range []string{
		"  0  backend\n",
		"  1  backend.php\n",
		"  0  php\n",
		"  0  tech\n",
		"  1  tech.backend\n",
		"  2  tech.backend.php\n",
	} {
		assert.Contains(t, routes, line)
	}

	matched := c.mustRun("route", "match", "tech.**")
	assert.Contains(t, matched, "  2  tech.backend.php\n")
	assert.NotContains(t, matched, "  0  php\n")

	children := c.mustRun("route", "query", "--children-of", "tech")
	assert.Equal(t, "  1  tech.backend\n", children)

	text := c.mustRun("route", "query", "--text", "backend & !php")
	assert.Contains(t, text, "  1  tech.backend\n")
	assert.NotContains(t, text, "php")

	assert.Contains(t, c.mustRun("route", "regenerate"), "routes: 6 total, 0 inserted, 0 deleted")
}

func TestCLI_ArrayOperatorsUnsupportedOnSQLite(t *testing.T) {
	c := seedCLI(t)
	_, err := c.run("route", "query", "--has-ancestor-in", "tech")
	require.ErrorIs(t, err, query.ErrUnsupportedCapability)
}

func TestCLI_DeleteRelationshipGuard(t *testing.T) {
	c := seedCLI(t)
	assert.Contains(t, c.mustRun("attach", "tech.backend.php", "post", "1"), "attached post/1 to tech.backend.php")

	_, err := c.run("rel", "delete", "backend", "php")
	require.ErrorIs(t, err, graph.ErrRoutesInUse)

	dry := c.mustRun("rel", "delete", "backend", "php", "--dry-run")
	assert.Contains(t, dry, "2 routes would be removed, 1 attachments on them")
	assert.Contains(t, dry, "  tech.backend.php\n")

	out := c.mustRun("rel", "delete", "backend", "php", "--replace", "php")
	assert.Contains(t, out, "deleted relationship backend -> php (replace)")
	assert.Contains(t, out, "attachments moved:   1")

	assert.Equal(t, "  0  php\n", c.mustRun("route", "for", "post", "1"))
	assert.Contains(t, c.mustRun("route", "attachments", "php"), "  post/1\n")
}

func TestCLI_SyncAndEntities(t *testing.T) {
	c := seedCLI(t)
	c.mustRun("attach", "tech", "ticket", "1")

	out := c.mustRun("sync", "ticket", "1", "tech.backend", "tech.backend.php")
	assert.Equal(t, "synced ticket/1: 2 attached, 1 detached\n", out)
	c.mustRun("attach", "backend", "ticket", "2")

	assert.Equal(t, "  ticket/1\n", c.mustRun("entities", "--descendant-of", "tech"))
	assert.Equal(t, "  ticket/1\n  ticket/2\n", c.mustRun("entities", "--match", "*.backend"))
	assert.Equal(t, "  ticket/2\n", c.mustRun("entities", "--text", "backend & !tech"))
	assert.Equal(t, "No entities found.\n", c.mustRun("entities", "--ancestor-of", "tech"))
}

func TestCLI_DeleteModeFlags(t *testing.T) {
	c := seedCLI(t)
	_, err := c.run("label", "delete", "php", "--mode", "replace")
	require.Error(t, err)

	_, err = c.run("label", "delete", "php", "--mode", "bogus")
	require.Error(t, err)

	out := c.mustRun("label", "delete", "php", "--mode", "cascade")
	assert.Contains(t, out, "deleted label php (cascade)")
	assert.Contains(t, out, "routes removed:      3")
}

func TestCLI_Status(t *testing.T) {
	c := newCLI(t)
	assert.Contains(t, c.mustRun("status"), "No labels found.")

	c = seedCLI(t)
	out := c.mustRun("status")
	assert.Contains(t, out, "Driver: sqlite")
	assert.Contains(t, out, "Labels:        3")
	assert.Contains(t, out, "Routes:        6")
	assert.Contains(t, out, "Roots:  tech\n")
	assert.Contains(t, out, "Leaves: php\n")
}

func TestCLI_ExportAndDiagram(t *testing.T) {
	c := seedCLI(t)
	assert.Contains(t, c.mustRun("export"), `"path": "tech.backend.php"`)
	assert.Contains(t, c.mustRun("diagram"), "graph TD\n")
}

func TestCLI_PatternWithoutStore(t *testing.T) {
	run := func(args ...string) (string, error) {
		var out bytes.Buffer
		cmd := newRootCmd(&out, &bytes.Buffer{})
		// An unknown driver would fail if the store were opened.
		cmd.SetArgs(append([]string{"--driver", "nope"}, args...))
		err := cmd.ExecuteContext(t.Context())
		return out.String(), err
	}

	out, err := run("pattern", "validate", "backend & !php")
	require.NoError(t, err)
	assert.Equal(t, "valid\n", out)

	_, err = run("pattern", "validate", "backend &")
	require.Error(t, err)

	out, err = run("pattern", "native", "a@*  |  b")
	require.NoError(t, err)
	assert.Equal(t, "a*@ | b\n", out)

	out, err = run("pattern", "test", "backend & !php", "tech.backend", "tech.backend.php")
	require.NoError(t, err)
	assert.Equal(t, "  yes  tech.backend\n  no   tech.backend.php\n", out)

	out, err = run("pattern", "test", "--glob", "tech.*{1}", "tech.backend", "tech.backend.php")
	require.NoError(t, err)
	assert.Equal(t, "  yes  tech.backend\n  no   tech.backend.php\n", out)
}
