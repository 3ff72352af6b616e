// Package cascade implements ordered cascade deletion: relation rows first,
// then interaction bindings with orphan cleanup and cache recomputation, then
// the soft delete of the entity itself.
package cascade

import (
	"context"

	"github.com/contesthub/contesthub/internal/interactions"
	"github.com/contesthub/contesthub/internal/models"
	"github.com/contesthub/contesthub/internal/repo"
	"gorm.io/gorm"
)

// Orchestrator runs each cascade inside one transaction. Every Delete method
// returns the cache recompute commands it executed, deduplicated to one per
// affected target, so callers can see exactly what a deletion touched.
type Orchestrator struct {
	conn *gorm.DB
}

// New constructs an Orchestrator on the given connection.
func New(conn *gorm.DB) *Orchestrator {
	return &Orchestrator{conn: conn}
}

// DeletePost removes every relation row referencing the post in either
// direction, unbinds and hard-deletes the interactions whose only binding
// was the post, recomputes caches once per affected target and finally
// soft-deletes the post.
func (o *Orchestrator) DeletePost(ctx context.Context, id uint64) ([]interactions.Recompute, error) {
	var executed []interactions.Recompute
	errTx := o.conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stores := repo.NewStores(tx)

		if errRelations := stores.Relations.DeleteByPost(ctx, id); errRelations != nil {
			return errRelations
		}

		affected, errBindings := removeBindingsToTarget(ctx, stores, models.TargetPost, id)
		if errBindings != nil {
			return errBindings
		}

		recomputer := interactions.NewRecomputer(stores)
		executed = interactions.Dedupe(affected)
		if errApply := recomputer.ApplyAll(ctx, executed); errApply != nil {
			return errApply
		}

		return stores.Posts.SoftDelete(ctx, id)
	})
	if errTx != nil {
		return nil, errTx
	}
	return executed, nil
}

// DeleteCategory removes the category's rule links, post and group relation
// rows and association edges on both sides, cleans up interactions bound to
// the category and soft-deletes it.
func (o *Orchestrator) DeleteCategory(ctx context.Context, id uint64) ([]interactions.Recompute, error) {
	var executed []interactions.Recompute
	errTx := o.conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stores := repo.NewStores(tx)

		if errLinks := stores.Rules.DeleteLinksByCategory(ctx, id); errLinks != nil {
			return errLinks
		}
		if errRelations := stores.Relations.DeleteByCategory(ctx, id); errRelations != nil {
			return errRelations
		}
		if errEdges := stores.Edges.DeleteByCategory(ctx, id); errEdges != nil {
			return errEdges
		}

		affected, errBindings := removeBindingsToTarget(ctx, stores, models.TargetCategory, id)
		if errBindings != nil {
			return errBindings
		}

		recomputer := interactions.NewRecomputer(stores)
		executed = interactions.Dedupe(affected)
		if errApply := recomputer.ApplyAll(ctx, executed); errApply != nil {
			return errApply
		}

		return stores.Categories.SoftDelete(ctx, id)
	})
	if errTx != nil {
		return nil, errTx
	}
	return executed, nil
}

// DeleteGroup removes the group's category registrations and memberships,
// recomputes the participant caches of the categories it was registered in
// and soft-deletes the group.
func (o *Orchestrator) DeleteGroup(ctx context.Context, id uint64) ([]interactions.Recompute, error) {
	var executed []interactions.Recompute
	errTx := o.conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stores := repo.NewStores(tx)

		categoryIDs, errRelations := stores.Relations.DeleteByGroup(ctx, id)
		if errRelations != nil {
			return errRelations
		}
		if errMembers := stores.Groups.DeleteMembersByGroup(ctx, id); errMembers != nil {
			return errMembers
		}

		var affected []interactions.Recompute
		for _, categoryID := range categoryIDs {
			affected = append(affected, interactions.Recompute{TargetType: models.TargetCategory, TargetID: categoryID})
		}

		recomputer := interactions.NewRecomputer(stores)
		executed = interactions.Dedupe(affected)
		if errApply := recomputer.ApplyAll(ctx, executed); errApply != nil {
			return errApply
		}

		return stores.Groups.SoftDelete(ctx, id)
	})
	if errTx != nil {
		return nil, errTx
	}
	return executed, nil
}

// DeleteUser removes every interaction the user authored together with the
// reply subtrees hanging off their comments, unbinds the interactions other
// users aimed at the user's profile, removes the user's follow rows on both
// sides, recomputes every touched cache and soft-deletes the user.
func (o *Orchestrator) DeleteUser(ctx context.Context, id uint64) ([]interactions.Recompute, error) {
	var executed []interactions.Recompute
	errTx := o.conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stores := repo.NewStores(tx)

		authored, errAuthored := stores.Interactions.ListByAuthor(ctx, id)
		if errAuthored != nil {
			return errAuthored
		}
		rootIDs := make([]uint64, 0, len(authored))
		for _, interaction := range authored {
			rootIDs = append(rootIDs, interaction.ID)
		}
		subtreeIDs, errSubtree := expandReplySubtrees(ctx, stores, rootIDs)
		if errSubtree != nil {
			return errSubtree
		}
		affected, errRemove := removeInteractions(ctx, stores, subtreeIDs)
		if errRemove != nil {
			return errRemove
		}

		targeted, errBindings := removeBindingsToTarget(ctx, stores, models.TargetUser, id)
		if errBindings != nil {
			return errBindings
		}
		affected = append(affected, targeted...)

		followAffected, errFollows := stores.Relations.DeleteFollowsByUser(ctx, id)
		if errFollows != nil {
			return errFollows
		}
		for _, userID := range followAffected {
			affected = append(affected, interactions.Recompute{TargetType: models.TargetUser, TargetID: userID})
		}

		recomputer := interactions.NewRecomputer(stores)
		executed = interactions.Dedupe(affected)
		if errApply := recomputer.ApplyAll(ctx, executed); errApply != nil {
			return errApply
		}

		return stores.Users.SoftDelete(ctx, id)
	})
	if errTx != nil {
		return nil, errTx
	}
	return executed, nil
}

// DeleteInteraction hard-deletes an interaction and, for threaded comments,
// its full descendant reply subtree, removing every binding and recomputing
// caches once per distinct affected target.
func (o *Orchestrator) DeleteInteraction(ctx context.Context, id uint64) ([]interactions.Recompute, error) {
	var executed []interactions.Recompute
	errTx := o.conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stores := repo.NewStores(tx)

		subtreeIDs, errSubtree := expandReplySubtrees(ctx, stores, []uint64{id})
		if errSubtree != nil {
			return errSubtree
		}
		affected, errRemove := removeInteractions(ctx, stores, subtreeIDs)
		if errRemove != nil {
			return errRemove
		}

		recomputer := interactions.NewRecomputer(stores)
		executed = interactions.Dedupe(affected)
		return recomputer.ApplyAll(ctx, executed)
	})
	if errTx != nil {
		return nil, errTx
	}
	return executed, nil
}

// DeleteRule removes the rule's category links and soft-deletes the rule.
func (o *Orchestrator) DeleteRule(ctx context.Context, id uint64) error {
	return o.conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stores := repo.NewStores(tx)
		if errLinks := stores.Rules.DeleteLinksByRule(ctx, id); errLinks != nil {
			return errLinks
		}
		return stores.Rules.SoftDelete(ctx, id)
	})
}

// expandReplySubtrees walks parent_id references iteratively and returns the
// given interactions plus every descendant reply, deduplicated.
func expandReplySubtrees(ctx context.Context, stores *repo.Stores, rootIDs []uint64) ([]uint64, error) {
	seen := make(map[uint64]struct{}, len(rootIDs))
	ordered := make([]uint64, 0, len(rootIDs))
	stack := make([]uint64, 0, len(rootIDs))
	for _, id := range rootIDs {
		stack = append(stack, id)
	}

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, done := seen[current]; done {
			continue
		}
		seen[current] = struct{}{}
		ordered = append(ordered, current)

		children, errChildren := stores.Interactions.ListChildren(ctx, current)
		if errChildren != nil {
			return nil, errChildren
		}
		for _, child := range children {
			stack = append(stack, child.ID)
		}
	}
	return ordered, nil
}

// removeInteractions deletes the bindings and rows of the given interactions
// and returns one recompute command per binding target.
func removeInteractions(ctx context.Context, stores *repo.Stores, ids []uint64) ([]interactions.Recompute, error) {
	var affected []interactions.Recompute
	var bindingIDs []uint64
	for _, id := range ids {
		bindings, errBindings := stores.Interactions.ListBindingsByInteraction(ctx, id)
		if errBindings != nil {
			return nil, errBindings
		}
		for _, binding := range bindings {
			bindingIDs = append(bindingIDs, binding.ID)
			affected = append(affected, interactions.Recompute{
				TargetType: binding.TargetType,
				TargetID:   binding.TargetID,
			})
		}
	}
	if errDelete := stores.Interactions.DeleteBindings(ctx, bindingIDs); errDelete != nil {
		return nil, errDelete
	}
	if errDelete := stores.Interactions.DeleteHard(ctx, ids); errDelete != nil {
		return nil, errDelete
	}
	return affected, nil
}

// removeBindingsToTarget removes every binding aimed at the target and
// hard-deletes interactions left without any binding. The returned commands
// name the target once per removed binding; callers deduplicate.
func removeBindingsToTarget(ctx context.Context, stores *repo.Stores, targetType string, targetID uint64) ([]interactions.Recompute, error) {
	bindings, errBindings := stores.Interactions.ListBindingsByTarget(ctx, targetType, targetID)
	if errBindings != nil {
		return nil, errBindings
	}
	if len(bindings) == 0 {
		return nil, nil
	}

	bindingIDs := make([]uint64, 0, len(bindings))
	interactionIDs := make([]uint64, 0, len(bindings))
	for _, binding := range bindings {
		bindingIDs = append(bindingIDs, binding.ID)
		interactionIDs = append(interactionIDs, binding.InteractionID)
	}
	if errDelete := stores.Interactions.DeleteBindings(ctx, bindingIDs); errDelete != nil {
		return nil, errDelete
	}

	var orphaned []uint64
	for _, interactionID := range interactionIDs {
		remaining, errCount := stores.Interactions.CountBindings(ctx, interactionID)
		if errCount != nil {
			return nil, errCount
		}
		if remaining == 0 {
			orphaned = append(orphaned, interactionID)
		}
	}
	if errDelete := stores.Interactions.DeleteHard(ctx, orphaned); errDelete != nil {
		return nil, errDelete
	}

	return []interactions.Recompute{{TargetType: targetType, TargetID: targetID}}, nil
}
