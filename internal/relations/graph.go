// Package relations maintains the directed, typed association edges between
// sibling categories: stage chains, parallel tracks and prerequisites.
package relations

import (
	"context"
	"errors"
	"fmt"

	"github.com/contesthub/contesthub/internal/models"
	"github.com/contesthub/contesthub/internal/repo"
)

// Association violations. Callers match these by message, so the literals
// are part of the contract.
var (
	// ErrSelfReference rejects an edge from a category to itself.
	ErrSelfReference = errors.New("cannot create a self-referencing relation")
	// ErrDuplicate rejects a second edge between the same pair, regardless
	// of relation type.
	ErrDuplicate = errors.New("relation between these categories already exists")
	// ErrCircular rejects an edge that would close a same-type cycle.
	ErrCircular = errors.New("circular relation detected")
	// ErrUnknownRelationType rejects relation types outside the vocabulary.
	ErrUnknownRelationType = errors.New("unknown relation type")
)

// Graph validates and stores association edges.
type Graph struct {
	stores *repo.Stores
}

// NewGraph constructs a Graph over the given stores.
func NewGraph(stores *repo.Stores) *Graph {
	return &Graph{stores: stores}
}

// AddEdge validates and creates a typed edge from source to target.
// Self-references are rejected, as is any edge between a pair that is
// already connected, even by a different relation type. Stage and
// prerequisite edges are additionally cycle-checked; track edges are not.
func (g *Graph) AddEdge(ctx context.Context, sourceID, targetID uint64, relationType string, stageOrder *int) (*models.AssociationEdge, error) {
	switch relationType {
	case models.RelationStage, models.RelationTrack, models.RelationPrerequisite:
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownRelationType, relationType)
	}

	if sourceID == targetID {
		return nil, ErrSelfReference
	}

	exists, errExists := g.stores.Edges.PairExists(ctx, sourceID, targetID)
	if errExists != nil {
		return nil, errExists
	}
	if exists {
		return nil, ErrDuplicate
	}

	if relationType == models.RelationStage || relationType == models.RelationPrerequisite {
		cyclic, errCycle := g.HasCycle(ctx, sourceID, targetID, relationType)
		if errCycle != nil {
			return nil, errCycle
		}
		if cyclic {
			return nil, ErrCircular
		}
	}

	edge := &models.AssociationEdge{
		SourceID:     sourceID,
		TargetID:     targetID,
		RelationType: relationType,
		StageOrder:   stageOrder,
	}
	if errCreate := g.stores.Edges.Create(ctx, edge); errCreate != nil {
		return nil, errCreate
	}
	return edge, nil
}

// HasCycle reports whether adding an edge from sourceID to targetID would
// close a cycle of the given relation type. It walks the existing graph
// iteratively from the target, following only same-type outgoing edges; the
// candidate edge closes a cycle exactly when the source is reachable. The
// graph is re-scanned on every call; no state is kept between insertions.
func (g *Graph) HasCycle(ctx context.Context, sourceID, targetID uint64, relationType string) (bool, error) {
	visited := map[uint64]struct{}{}
	stack := []uint64{targetID}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if current == sourceID {
			return true, nil
		}
		if _, seen := visited[current]; seen {
			continue
		}
		visited[current] = struct{}{}

		outgoing, errOutgoing := g.stores.Edges.Outgoing(ctx, current, relationType)
		if errOutgoing != nil {
			return false, errOutgoing
		}
		for _, edge := range outgoing {
			stack = append(stack, edge.TargetID)
		}
	}
	return false, nil
}

// ListEdges returns the edges leaving a category with the given relation
// type. Stage edges come back ordered by stage_order ascending with nulls
// last; other relation types have no defined ordering.
func (g *Graph) ListEdges(ctx context.Context, sourceID uint64, relationType string) ([]models.AssociationEdge, error) {
	return g.stores.Edges.List(ctx, sourceID, relationType)
}
