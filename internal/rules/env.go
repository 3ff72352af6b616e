package rules

import (
	"fmt"
	"strings"
	"time"

	"github.com/contesthub/contesthub/internal/models"
)

// Env carries the caller-supplied context of one engine invocation: the
// acting user, the subject entity and any secondary IDs the conditions may
// scope over. Zero IDs mean "not applicable to this call".
type Env struct {
	Now        time.Time // Evaluation instant; zero means time.Now.
	ActorID    uint64    // Acting user.
	CategoryID uint64    // Subject or enclosing category.
	PostID     uint64    // Subject post, when the trigger concerns one.
	GroupID    uint64    // Subject group, when the trigger concerns one.

	// Rule is set by the runner while evaluating that rule's checks; it
	// resolves "$rule.<field>" threshold references.
	Rule *models.Rule
}

// now returns the evaluation instant.
func (e Env) now() time.Time {
	if e.Now.IsZero() {
		return time.Now()
	}
	return e.Now
}

// rulePlaceholderPrefix marks threshold values resolved from the active rule.
const rulePlaceholderPrefix = "$rule."

// resolveThreshold turns a condition threshold into an integer. String values
// of the form "$rule.<field>" read the named fixed field of the active rule.
func resolveThreshold(value any, rule *models.Rule) (int64, error) {
	switch v := value.(type) {
	case float64:
		return int64(v), nil
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case string:
		if !strings.HasPrefix(v, rulePlaceholderPrefix) {
			return 0, fmt.Errorf("rules: non-numeric threshold %q", v)
		}
		return resolveRuleField(rule, strings.TrimPrefix(v, rulePlaceholderPrefix))
	default:
		return 0, fmt.Errorf("rules: unsupported threshold %T", value)
	}
}

// resolveRuleField reads a numeric fixed field of the rule by its wire name.
func resolveRuleField(rule *models.Rule, field string) (int64, error) {
	if rule == nil {
		return 0, fmt.Errorf("rules: $rule.%s without an active rule", field)
	}
	switch field {
	case "max_submissions":
		if rule.MaxSubmissions == nil {
			return 0, fmt.Errorf("rules: rule %d has no max_submissions", rule.ID)
		}
		return int64(*rule.MaxSubmissions), nil
	case "min_team_size":
		if rule.MinTeamSize == nil {
			return 0, fmt.Errorf("rules: rule %d has no min_team_size", rule.ID)
		}
		return int64(*rule.MinTeamSize), nil
	case "max_team_size":
		if rule.MaxTeamSize == nil {
			return 0, fmt.Errorf("rules: rule %d has no max_team_size", rule.ID)
		}
		return int64(*rule.MaxTeamSize), nil
	default:
		return 0, fmt.Errorf("rules: unknown rule field %q", field)
	}
}

// compareInts applies a comparison operator to two integers.
func compareInts(op string, left, right int64) (bool, error) {
	switch op {
	case "<":
		return left < right, nil
	case "<=":
		return left <= right, nil
	case "==":
		return left == right, nil
	case ">=":
		return left >= right, nil
	case ">":
		return left > right, nil
	case "!=":
		return left != right, nil
	default:
		return false, fmt.Errorf("rules: unknown comparison op %q", op)
	}
}

// compareValues applies an equality or membership operator to loosely typed
// values. Numbers compare numerically; everything else compares by string
// form.
func compareValues(op string, left any, right any) (bool, error) {
	switch op {
	case "in", "not_in":
		items, ok := right.([]any)
		if !ok {
			return false, fmt.Errorf("rules: op %q needs a list value", op)
		}
		found := false
		for _, item := range items {
			if looseEqual(left, item) {
				found = true
				break
			}
		}
		if op == "in" {
			return found, nil
		}
		return !found, nil
	case "==":
		return looseEqual(left, right), nil
	case "!=":
		return !looseEqual(left, right), nil
	case "<", "<=", ">", ">=":
		leftNum, okLeft := toFloat(left)
		rightNum, okRight := toFloat(right)
		if !okLeft || !okRight {
			return false, fmt.Errorf("rules: op %q needs numeric operands", op)
		}
		switch op {
		case "<":
			return leftNum < rightNum, nil
		case "<=":
			return leftNum <= rightNum, nil
		case ">":
			return leftNum > rightNum, nil
		default:
			return leftNum >= rightNum, nil
		}
	default:
		return false, fmt.Errorf("rules: unknown comparison op %q", op)
	}
}

// looseEqual compares two loosely typed values, preferring numeric equality.
func looseEqual(left, right any) bool {
	if leftNum, ok := toFloat(left); ok {
		if rightNum, okRight := toFloat(right); okRight {
			return leftNum == rightNum
		}
	}
	return fmt.Sprintf("%v", left) == fmt.Sprintf("%v", right)
}

// toFloat coerces JSON-decoded numbers to float64.
func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint64:
		return float64(v), true
	default:
		return 0, false
	}
}
