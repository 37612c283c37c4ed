package graph

import (
	"context"
	"fmt"
)

// CheckRelationship enforces the write-time invariants for a proposed
// parent -> child edge: no self-loop, and the child must not already reach
// the parent.
func CheckRelationship(adj Adjacency, parentID, childID string) error {
	if parentID == childID {
		return ErrSelfReference
	}
	if adj.Reachable(childID, parentID) {
		return ErrCycleDetected
	}
	return nil
}

// DeleteMode selects how a deletion treats attachments on the routes it
// would orphan.
type DeleteMode int

const (
	// DeleteSafe refuses when any orphaned route has attachments.
	DeleteSafe DeleteMode = iota
	// DeleteCascade removes attachments on orphaned routes.
	DeleteCascade
	// DeleteReplace re-points attachments on orphaned routes to a target route.
	DeleteReplace
	// DeleteForce skips the attachment check.
	DeleteForce
)

func (m DeleteMode) String() string {
	switch m {
	case DeleteSafe:
		return "safe"
	case DeleteCascade:
		return "cascade"
	case DeleteReplace:
		return "replace"
	case DeleteForce:
		return "force"
	default:
		return fmt.Sprintf("DeleteMode(%d)", int(m))
	}
}

// ParseDeleteMode maps a mode name to a DeleteMode.
func ParseDeleteMode(s string) (DeleteMode, error) {
	switch s {
	case "", "safe":
		return DeleteSafe, nil
	case "cascade":
		return DeleteCascade, nil
	case "replace":
		return DeleteReplace, nil
	case "force":
		return DeleteForce, nil
	default:
		return 0, fmt.Errorf("unknown delete mode %q", s)
	}
}

// DeleteOptions configures relationship and label deletion.
// The zero value is a safe delete.
type DeleteOptions struct {
	Mode DeleteMode
	// Replacement is the target route path for DeleteReplace.
	Replacement string
}

// Safe, Cascade, Replace and Force build DeleteOptions for each mode.
func Safe() DeleteOptions               { return DeleteOptions{Mode: DeleteSafe} }
func Cascade() DeleteOptions            { return DeleteOptions{Mode: DeleteCascade} }
func Replace(path string) DeleteOptions { return DeleteOptions{Mode: DeleteReplace, Replacement: path} }
func Force() DeleteOptions              { return DeleteOptions{Mode: DeleteForce} }

// DeleteResult reports the effect of a committed deletion.
type DeleteResult struct {
	Mode               DeleteMode        `json:"-"`
	Affected           []Route           `json:"affected"`
	AttachmentsDeleted int               `json:"attachmentsDeleted"`
	AttachmentsMoved   int               `json:"attachmentsMoved"`
	Regenerated        *RegenerateResult `json:"regenerated"`
}

// settleAttachments applies opts to the attachments on the routes a deletion
// would orphan. It runs before the structural delete inside the same
// transaction.
func settleAttachments(ctx context.Context, tx Tx, affected []Route, opts DeleteOptions, res *DeleteResult) error {
	var target *Route
	if opts.Mode == DeleteReplace {
		t, err := tx.GetRoute(ctx, opts.Replacement)
		if err != nil {
			return err
		}
		if t == nil {
			return fmt.Errorf("%w: replacement route not found: %s", ErrInvalidRoute, opts.Replacement)
		}
		for _, r := range affected {
			if r.ID == t.ID {
				return fmt.Errorf("%w: replacement route %s would be removed by this deletion", ErrInvalidRoute, t.Path)
			}
		}
		target = t
	}
	if len(affected) == 0 || opts.Mode == DeleteForce {
		return nil
	}

	ids := routeIDs(affected)
	atts, err := tx.AttachmentsOn(ctx, ids)
	if err != nil {
		return err
	}
	if len(atts) == 0 {
		return nil
	}

	switch opts.Mode {
	case DeleteSafe:
		return &RoutesInUseError{Count: len(atts), Paths: routePaths(affected)}

	case DeleteCascade:
		if err := tx.DeleteAttachments(ctx, attachmentIDs(atts)); err != nil {
			return err
		}
		res.AttachmentsDeleted = len(atts)

	case DeleteReplace:
		move, drop, err := planMove(ctx, tx, atts, target.ID)
		if err != nil {
			return err
		}
		if len(drop) > 0 {
			if err := tx.DeleteAttachments(ctx, drop); err != nil {
				return err
			}
		}
		if len(move) > 0 {
			if err := tx.MoveAttachments(ctx, move, target.ID); err != nil {
				return err
			}
		}
		res.AttachmentsMoved = len(move)
		res.AttachmentsDeleted = len(drop)
	}
	return nil
}

// planMove splits atts into those to re-point at routeID and those to drop
// because the same entity is already attached there.
func planMove(ctx context.Context, tx Tx, atts []Attachment, routeID string) (move, drop []string, err error) {
	existing, err := tx.AttachmentsOn(ctx, []string{routeID})
	if err != nil {
		return nil, nil, err
	}
	type entity struct{ typ, id string }
	taken := make(map[entity]bool, len(existing))
	for _, a := range existing {
		taken[entity{a.EntityType, a.EntityID}] = true
	}
	for _, a := range atts {
		key := entity{a.EntityType, a.EntityID}
		if taken[key] {
			drop = append(drop, a.ID)
			continue
		}
		taken[key] = true
		move = append(move, a.ID)
	}
	return move, drop, nil
}

func attachmentIDs(atts []Attachment) []string {
	ids := make([]string, len(atts))
	for i, a := range atts {
		ids[i] = a.ID
	}
	return ids
}
