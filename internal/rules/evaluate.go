package rules

import (
	"context"
	"strings"

	"github.com/contesthub/contesthub/internal/models"
	"github.com/contesthub/contesthub/internal/repo"
	log "github.com/sirupsen/logrus"
)

// Evaluator resolves conditions against the stores. Evaluation is pure with
// respect to the stores: it only reads.
//
// Unknown condition kinds, entities and scopes evaluate to pass. Rule
// vocabulary is fail-open so that rules authored against a newer engine
// degrade to no-ops instead of breaking every guarded mutation.
type Evaluator struct {
	stores *repo.Stores
}

// NewEvaluator constructs an Evaluator over the given stores.
func NewEvaluator(stores *repo.Stores) *Evaluator {
	return &Evaluator{stores: stores}
}

// Evaluate resolves one condition. The boolean is the predicate outcome; a
// non-nil error means the outcome could not be determined (store failure or
// unresolvable threshold) and is the caller's to handle.
func (e *Evaluator) Evaluate(ctx context.Context, cond Condition, env Env) (bool, error) {
	switch c := cond.(type) {
	case TimeWindow:
		return e.evalTimeWindow(c, env), nil
	case Count:
		return e.evalCount(ctx, c, env)
	case Exists:
		return e.evalExists(ctx, c, env)
	case FieldMatch:
		return e.evalFieldMatch(ctx, c, env)
	case ResourceFormat:
		return e.evalResourceFormat(ctx, c, env)
	case ResourceRequired:
		return e.evalResourceRequired(ctx, c, env)
	case Aggregate:
		return e.evalAggregate(ctx, c, env)
	default:
		log.WithField("condition", cond.Kind()).Debug("unrecognized condition type, passing")
		return true, nil
	}
}

func (e *Evaluator) evalTimeWindow(cond TimeWindow, env Env) bool {
	now := env.now()
	if cond.Start != nil && now.Before(*cond.Start) {
		return false
	}
	if cond.End != nil && now.After(*cond.End) {
		return false
	}
	return true
}

func (e *Evaluator) evalCount(ctx context.Context, cond Count, env Env) (bool, error) {
	count, known, errResolve := e.resolveCount(ctx, cond.Entity, cond.Scope, cond.Filter, env)
	if errResolve != nil {
		return false, errResolve
	}
	if !known {
		log.WithFields(log.Fields{"entity": cond.Entity, "scope": cond.Scope}).
			Debug("unrecognized count scope, passing")
		return true, nil
	}
	threshold, errThreshold := resolveThreshold(cond.Value, env.Rule)
	if errThreshold != nil {
		return false, errThreshold
	}
	return compareInts(cond.Op, count, threshold)
}

func (e *Evaluator) evalExists(ctx context.Context, cond Exists, env Env) (bool, error) {
	count, known, errResolve := e.resolveCount(ctx, cond.Entity, cond.Scope, cond.Filter, env)
	if errResolve != nil {
		return false, errResolve
	}
	if !known {
		log.WithFields(log.Fields{"entity": cond.Entity, "scope": cond.Scope}).
			Debug("unrecognized exists scope, passing")
		return true, nil
	}
	if cond.Require {
		return count > 0, nil
	}
	return count == 0, nil
}

// resolveCount maps (entity, scope, filter) onto a store query. The second
// return value is false when the pair is not part of the engine vocabulary.
func (e *Evaluator) resolveCount(ctx context.Context, entity, scope string, filter map[string]any, env Env) (int64, bool, error) {
	status, _ := filter["status"].(string)

	switch entity {
	case "post":
		switch scope {
		case "category_user":
			count, errCount := e.stores.Posts.CountByCategoryAndAuthor(ctx, env.CategoryID, env.ActorID)
			return count, true, errCount
		case "category":
			posts, errList := e.stores.Posts.ListByCategory(ctx, env.CategoryID)
			if errList != nil {
				return 0, true, errList
			}
			count := int64(0)
			for _, post := range posts {
				if status != "" && post.Status != status {
					continue
				}
				count++
			}
			return count, true, nil
		}
	case "group_member":
		statuses := []string{models.MemberStatusAccepted}
		if status != "" {
			statuses = []string{status}
		}
		switch scope {
		case "group", "group_accepted":
			count, errCount := e.stores.Groups.CountMembers(ctx, env.GroupID, statuses...)
			return count, true, errCount
		case "group_user":
			exists, errExists := e.stores.Groups.MemberExists(ctx, env.GroupID, env.ActorID, statuses...)
			if errExists != nil {
				return 0, true, errExists
			}
			if exists {
				return 1, true, nil
			}
			return 0, true, nil
		}
	case "resource":
		if scope == "" || scope == "post" {
			resources, errList := e.stores.Resources.ListByPost(ctx, env.PostID)
			if errList != nil {
				return 0, true, errList
			}
			return int64(len(resources)), true, nil
		}
	case "group":
		if scope == "" || scope == "category" {
			count, errCount := e.stores.Relations.CountGroupsByCategory(ctx, env.CategoryID)
			return count, true, errCount
		}
	}
	return 0, false, nil
}

func (e *Evaluator) evalFieldMatch(ctx context.Context, cond FieldMatch, env Env) (bool, error) {
	value, known, errLoad := e.resolveField(ctx, cond.Entity, cond.Field, env)
	if errLoad != nil {
		return false, errLoad
	}
	if !known {
		log.WithFields(log.Fields{"entity": cond.Entity, "field": cond.Field}).
			Debug("unrecognized field_match target, passing")
		return true, nil
	}
	return compareValues(cond.Op, value, cond.Value)
}

// resolveField loads the subject entity and reads the named field. The second
// return value is false for entities or fields outside the engine vocabulary.
func (e *Evaluator) resolveField(ctx context.Context, entity, field string, env Env) (any, bool, error) {
	switch entity {
	case "category":
		category, errGet := e.stores.Categories.Get(ctx, env.CategoryID)
		if errGet != nil {
			return nil, true, errGet
		}
		switch field {
		case "status":
			return category.Status, true, nil
		case "kind":
			return category.Kind, true, nil
		case "participant_count":
			return category.ParticipantCount, true, nil
		}
	case "post":
		post, errGet := e.stores.Posts.Get(ctx, env.PostID)
		if errGet != nil {
			return nil, true, errGet
		}
		switch field {
		case "status":
			return post.Status, true, nil
		case "kind":
			return post.Kind, true, nil
		case "review_status":
			return post.ReviewStatus, true, nil
		case "author_id":
			return post.AuthorID, true, nil
		}
	case "group":
		group, errGet := e.stores.Groups.Get(ctx, env.GroupID)
		if errGet != nil {
			return nil, true, errGet
		}
		switch field {
		case "name":
			return group.Name, true, nil
		case "leader_id":
			return group.LeaderID, true, nil
		}
	case "user":
		user, errGet := e.stores.Users.Get(ctx, env.ActorID)
		if errGet != nil {
			return nil, true, errGet
		}
		switch field {
		case "username":
			return user.Username, true, nil
		case "nickname":
			return user.Nickname, true, nil
		}
	}
	return nil, false, nil
}

func (e *Evaluator) evalResourceFormat(ctx context.Context, cond ResourceFormat, env Env) (bool, error) {
	resources, errList := e.stores.Resources.ListByPost(ctx, env.PostID)
	if errList != nil {
		return false, errList
	}
	allowed := normalizeFormats(cond.Formats)
	if len(allowed) == 0 {
		return true, nil
	}

	anyMatch := false
	for _, resource := range resources {
		if formatAllowed(resource.Format, allowed) {
			anyMatch = true
			continue
		}
		if !cond.RequireAny {
			return false, nil
		}
	}
	if cond.RequireAny {
		return anyMatch || len(resources) == 0, nil
	}
	return true, nil
}

func (e *Evaluator) evalResourceRequired(ctx context.Context, cond ResourceRequired, env Env) (bool, error) {
	resources, errList := e.stores.Resources.ListByPost(ctx, env.PostID)
	if errList != nil {
		return false, errList
	}
	allowed := normalizeFormats(cond.Formats)
	count := 0
	for _, resource := range resources {
		if len(allowed) > 0 && !formatAllowed(resource.Format, allowed) {
			continue
		}
		count++
	}
	minCount := cond.MinCount
	if minCount <= 0 {
		minCount = 1
	}
	return count >= minCount, nil
}

func (e *Evaluator) evalAggregate(ctx context.Context, cond Aggregate, env Env) (bool, error) {
	if cond.Scope != "each_group_in_category" {
		log.WithField("scope", cond.Scope).Debug("unrecognized aggregate scope, passing")
		return true, nil
	}

	groups, errList := e.stores.Groups.ListByCategory(ctx, env.CategoryID)
	if errList != nil {
		return false, errList
	}
	threshold, errThreshold := resolveThreshold(cond.Value, env.Rule)
	if errThreshold != nil {
		return false, errThreshold
	}

	for _, group := range groups {
		groupEnv := env
		groupEnv.GroupID = group.ID
		count, known, errResolve := e.resolveCount(ctx, cond.Entity, "group", cond.Filter, groupEnv)
		if errResolve != nil {
			return false, errResolve
		}
		if !known {
			log.WithField("entity", cond.Entity).Debug("unrecognized aggregate entity, passing")
			return true, nil
		}
		ok, errCompare := compareInts(cond.Op, count, threshold)
		if errCompare != nil {
			return false, errCompare
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// normalizeFormats lowercases extensions and strips a leading dot.
func normalizeFormats(formats []string) map[string]struct{} {
	if len(formats) == 0 {
		return nil
	}
	normalized := make(map[string]struct{}, len(formats))
	for _, format := range formats {
		cleaned := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(format), "."))
		if cleaned == "" {
			continue
		}
		normalized[cleaned] = struct{}{}
	}
	return normalized
}

// formatAllowed reports whether the resource extension is in the allow-list.
func formatAllowed(format string, allowed map[string]struct{}) bool {
	cleaned := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(format), "."))
	_, ok := allowed[cleaned]
	return ok
}
