// Package interactions manages the polymorphic interaction bindings and the
// denormalized cache fields derived from them.
package interactions

import (
	"context"
	"fmt"
	"math"

	"github.com/contesthub/contesthub/internal/models"
	"github.com/contesthub/contesthub/internal/repo"
)

// Recompute is one cache recomputation command: re-aggregate every derived
// field of the named target. Commands are explicit values so that callers,
// the cascade orchestrator above all, can deduplicate them and inspect what
// a deletion touched.
type Recompute struct {
	TargetType string // post, user or category.
	TargetID   uint64 // Target entity ID.
}

// Recomputer applies Recompute commands. Caches are always rebuilt by full
// re-aggregation of the source rows, never patched incrementally.
type Recomputer struct {
	stores *repo.Stores
}

// NewRecomputer constructs a Recomputer over the given stores.
func NewRecomputer(stores *repo.Stores) *Recomputer {
	return &Recomputer{stores: stores}
}

// Apply executes one recompute command.
func (r *Recomputer) Apply(ctx context.Context, cmd Recompute) error {
	switch cmd.TargetType {
	case models.TargetPost:
		return r.recomputePost(ctx, cmd.TargetID)
	case models.TargetUser:
		return r.recomputeUser(ctx, cmd.TargetID)
	case models.TargetCategory:
		return r.recomputeCategory(ctx, cmd.TargetID)
	default:
		return fmt.Errorf("interactions: recompute: unknown target type %q", cmd.TargetType)
	}
}

// ApplyAll executes a batch of commands, once per distinct target.
func (r *Recomputer) ApplyAll(ctx context.Context, cmds []Recompute) error {
	for _, cmd := range Dedupe(cmds) {
		if errApply := r.Apply(ctx, cmd); errApply != nil {
			return errApply
		}
	}
	return nil
}

// Dedupe collapses a command list to one command per distinct target,
// keeping first-occurrence order.
func Dedupe(cmds []Recompute) []Recompute {
	seen := make(map[Recompute]struct{}, len(cmds))
	deduped := make([]Recompute, 0, len(cmds))
	for _, cmd := range cmds {
		if _, ok := seen[cmd]; ok {
			continue
		}
		seen[cmd] = struct{}{}
		deduped = append(deduped, cmd)
	}
	return deduped
}

func (r *Recomputer) recomputePost(ctx context.Context, postID uint64) error {
	likes, errLikes := r.stores.Interactions.CountByTarget(ctx, models.TargetPost, postID, models.InteractionLike)
	if errLikes != nil {
		return errLikes
	}
	comments, errComments := r.stores.Interactions.CountByTarget(ctx, models.TargetPost, postID, models.InteractionComment)
	if errComments != nil {
		return errComments
	}
	ratings, errRatings := r.stores.Interactions.ListByTarget(ctx, models.TargetPost, postID, models.InteractionRating)
	if errRatings != nil {
		return errRatings
	}
	return r.stores.Posts.SetInteractionCaches(ctx, postID, likes, comments, AverageRating(ratings))
}

func (r *Recomputer) recomputeUser(ctx context.Context, userID uint64) error {
	followers, following, errCounts := r.stores.Relations.FollowCounts(ctx, userID)
	if errCounts != nil {
		return errCounts
	}
	return r.stores.Users.SetFollowCounts(ctx, userID, followers, following)
}

func (r *Recomputer) recomputeCategory(ctx context.Context, categoryID uint64) error {
	count, errCount := r.stores.Relations.CountGroupsByCategory(ctx, categoryID)
	if errCount != nil {
		return errCount
	}
	return r.stores.Categories.SetParticipantCount(ctx, categoryID, count)
}

// AverageRating computes the cached rating for a set of rating interactions:
// each rating contributes the simple mean of its own per-dimension scores,
// those per-rating means are averaged, and the result is rounded to two
// decimals. No ratings yields nil, not zero.
func AverageRating(ratings []models.Interaction) *float64 {
	var means []float64
	for i := range ratings {
		scores := ratings[i].RatingScores()
		if len(scores) == 0 {
			continue
		}
		sum := 0.0
		for _, score := range scores {
			sum += score
		}
		means = append(means, sum/float64(len(scores)))
	}
	if len(means) == 0 {
		return nil
	}

	total := 0.0
	for _, mean := range means {
		total += mean
	}
	rounded := math.Round(total/float64(len(means))*100) / 100
	return &rounded
}
