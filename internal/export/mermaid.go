package export

import (
	"context"
	"fmt"
	"strings"

	"github.com/dusk-indust/labelgraph/internal/graph"
)

// GenerateMermaid produces a Mermaid graph TD diagram of the label graph.
// Labels become nodes titled by name; relationships become parent --> child
// arrows. Labels with no edges are still drawn.
func GenerateMermaid(ctx context.Context, store graph.Store) (string, error) {
	var (
		labels []graph.Label
		rels   []graph.Relationship
	)
	err := store.View(ctx, func(tx graph.Tx) error {
		var err error
		if labels, err = tx.Labels(ctx); err != nil {
			return fmt.Errorf("get labels: %w", err)
		}
		if rels, err = tx.Relationships(ctx); err != nil {
			return fmt.Errorf("get relationships: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	// Build label → ID mapping for Mermaid (alphanumeric only).
	nodeIDs := make(map[string]string, len(labels))
	for i, l := range labels {
		nodeIDs[l.ID] = fmt.Sprintf("N%d", i)
	}

	var sb strings.Builder
	sb.WriteString("graph TD\n")
	for _, l := range labels {
		sb.WriteString(fmt.Sprintf("  %s[\"%s\"]\n", nodeIDs[l.ID], escapeLabel(l.Name)))
	}
	for _, r := range rels {
		src, ok1 := nodeIDs[r.ParentID]
		tgt, ok2 := nodeIDs[r.ChildID]
		if !ok1 || !ok2 {
			continue
		}
		sb.WriteString(fmt.Sprintf("  %s --> %s\n", src, tgt))
	}
	return sb.String(), nil
}

// escapeLabel makes a name safe inside a quoted Mermaid node label.
func escapeLabel(s string) string {
	return strings.ReplaceAll(s, `"`, "#quot;")
}
