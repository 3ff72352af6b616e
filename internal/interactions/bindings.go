package interactions

import (
	"context"
	"fmt"

	"github.com/contesthub/contesthub/internal/models"
	"github.com/contesthub/contesthub/internal/repo"
)

// Binder creates and removes interaction bindings and keeps the affected
// caches current.
type Binder struct {
	stores     *repo.Stores
	recomputer *Recomputer
}

// NewBinder constructs a Binder over the given stores.
func NewBinder(stores *repo.Stores) *Binder {
	return &Binder{stores: stores, recomputer: NewRecomputer(stores)}
}

// Bind persists the interaction, binds it to the target and recomputes the
// target's caches. The (target_type, target_id, interaction_id) triple is
// unique; rebinding the same interaction to the same target fails on the
// storage constraint.
func (b *Binder) Bind(ctx context.Context, interaction *models.Interaction, targetType string, targetID uint64) (Recompute, error) {
	cmd := Recompute{TargetType: targetType, TargetID: targetID}
	if interaction.ID == 0 {
		if errCreate := b.stores.Interactions.Create(ctx, interaction); errCreate != nil {
			return cmd, errCreate
		}
	}
	if errBind := b.stores.Interactions.CreateBinding(ctx, &models.InteractionBinding{
		TargetType:    targetType,
		TargetID:      targetID,
		InteractionID: interaction.ID,
	}); errBind != nil {
		return cmd, errBind
	}
	if errRecompute := b.recomputer.Apply(ctx, cmd); errRecompute != nil {
		return cmd, errRecompute
	}
	return cmd, nil
}

// Unbind removes the binding between an interaction and a target, deletes
// the interaction when that was its last binding, and recomputes the
// target's caches.
func (b *Binder) Unbind(ctx context.Context, interactionID uint64, targetType string, targetID uint64) (Recompute, error) {
	cmd := Recompute{TargetType: targetType, TargetID: targetID}

	bindings, errList := b.stores.Interactions.ListBindingsByInteraction(ctx, interactionID)
	if errList != nil {
		return cmd, errList
	}
	var bindingIDs []uint64
	remaining := 0
	for _, binding := range bindings {
		if binding.TargetType == targetType && binding.TargetID == targetID {
			bindingIDs = append(bindingIDs, binding.ID)
			continue
		}
		remaining++
	}
	if len(bindingIDs) == 0 {
		return cmd, fmt.Errorf("interactions: interaction %d is not bound to %s %d", interactionID, targetType, targetID)
	}

	if errDelete := b.stores.Interactions.DeleteBindings(ctx, bindingIDs); errDelete != nil {
		return cmd, errDelete
	}
	if remaining == 0 {
		if errDelete := b.stores.Interactions.DeleteHard(ctx, []uint64{interactionID}); errDelete != nil {
			return cmd, errDelete
		}
	}
	if errRecompute := b.recomputer.Apply(ctx, cmd); errRecompute != nil {
		return cmd, errRecompute
	}
	return cmd, nil
}
