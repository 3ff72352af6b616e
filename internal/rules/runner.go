package rules

import (
	"context"
	"fmt"

	"github.com/contesthub/contesthub/internal/repo"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Warning is a non-blocking pre-check finding returned to the caller.
type Warning struct {
	RuleID  uint64 // Rule the failing check belongs to.
	Trigger string // Trigger the check fired on.
	Message string // Rule-authored message.
}

// DenyError aborts a guarded mutation. It carries the rule-authored message
// of the first failing deny check; remaining checks are not evaluated.
type DenyError struct {
	RuleID  uint64
	Message string
}

// Error returns the rule-authored message.
func (e *DenyError) Error() string { return e.Message }

// Engine runs pre-phase gates and post-phase workflow hooks for the rules
// linked to a category.
type Engine struct {
	stores *repo.Stores
	eval   *Evaluator
}

// NewEngine constructs an Engine over the given stores.
func NewEngine(stores *repo.Stores) *Engine {
	return &Engine{stores: stores, eval: NewEvaluator(stores)}
}

// RunPreChecks evaluates every pre-phase check matching the trigger across
// the rules linked to env.CategoryID, in link-priority order. It must run
// inside the same transaction as the guarded write, before it: a deny aborts
// with no partial state.
//
// Deny checks short-circuit: the first failure returns a *DenyError and no
// further checks run. Warn and flag checks append a Warning and continue;
// flag persists nothing at this layer. Pre-phase checks without a condition
// are skipped.
func (g *Engine) RunPreChecks(ctx context.Context, trigger string, env Env) ([]Warning, error) {
	linked, errRules := g.stores.Rules.LinkedRules(ctx, env.CategoryID)
	if errRules != nil {
		return nil, fmt.Errorf("rules: load rules: %w", errRules)
	}

	var warnings []Warning
	for i := range linked {
		rule := linked[i]
		checks, _, errChecks := RuleChecks(&rule)
		if errChecks != nil {
			return nil, errChecks
		}

		ruleEnv := env
		ruleEnv.Rule = &rule
		for _, check := range checks {
			if check.Trigger != trigger || check.Phase != PhasePre {
				continue
			}
			if check.Condition == nil {
				continue
			}

			passed, errEval := g.eval.Evaluate(ctx, check.Condition, ruleEnv)
			if errEval != nil {
				return nil, fmt.Errorf("rules: evaluate check of rule %d: %w", rule.ID, errEval)
			}
			if passed {
				continue
			}

			message := check.Message
			if message == "" {
				message = "operation not allowed"
			}
			switch check.OnFail {
			case OnFailWarn, OnFailFlag:
				warnings = append(warnings, Warning{RuleID: rule.ID, Trigger: trigger, Message: message})
			default:
				return nil, &DenyError{RuleID: rule.ID, Message: message}
			}
		}
	}
	return warnings, nil
}

// RunPostHooks executes every post-phase action matching the trigger across
// the rules linked to env.CategoryID. It runs after the triggering write
// committed: nothing here blocks or rolls back that write. Every failure,
// including a panicking action, is caught, logged and returned as a log
// string.
//
// A post-phase check without a condition always runs its action; with a
// condition, the action runs only when the condition passes.
func (g *Engine) RunPostHooks(ctx context.Context, trigger string, env Env) []string {
	runID := uuid.NewString()
	logger := log.WithFields(log.Fields{"run_id": runID, "trigger": trigger})

	linked, errRules := g.stores.Rules.LinkedRules(ctx, env.CategoryID)
	if errRules != nil {
		logger.WithError(errRules).Error("post hooks: load rules")
		return []string{fmt.Sprintf("load rules: %v", errRules)}
	}

	var results []string
	for i := range linked {
		rule := linked[i]
		checks, _, errChecks := RuleChecks(&rule)
		if errChecks != nil {
			logger.WithError(errChecks).WithField("rule_id", rule.ID).Error("post hooks: decode checks")
			results = append(results, fmt.Sprintf("rule %d: decode checks: %v", rule.ID, errChecks))
			continue
		}

		ruleEnv := env
		ruleEnv.Rule = &rule
		for _, check := range checks {
			if check.Trigger != trigger || check.Phase != PhasePost {
				continue
			}

			if check.Condition != nil {
				passed, errEval := g.eval.Evaluate(ctx, check.Condition, ruleEnv)
				if errEval != nil {
					logger.WithError(errEval).WithField("rule_id", rule.ID).Error("post hooks: evaluate condition")
					results = append(results, fmt.Sprintf("rule %d: evaluate condition: %v", rule.ID, errEval))
					continue
				}
				if !passed {
					continue
				}
			}

			outcome := g.runAction(ctx, rule.ID, check, ruleEnv, logger)
			results = append(results, outcome)
		}
	}
	return results
}

// runAction executes one post-phase action, containing panics and errors.
func (g *Engine) runAction(ctx context.Context, ruleID uint64, check CheckDefinition, env Env, logger *log.Entry) (outcome string) {
	defer func() {
		if recovered := recover(); recovered != nil {
			logger.WithFields(log.Fields{"rule_id": ruleID, "action": check.Action}).
				Errorf("post hooks: action panicked: %v", recovered)
			outcome = fmt.Sprintf("rule %d: %s: panic: %v", ruleID, check.Action, recovered)
		}
	}()

	var errRun error
	switch check.Action {
	case ActionComputeRanking:
		errRun = g.computeRanking(ctx, env, check.ActionParams)
	case ActionFlagDisqualified:
		errRun = g.flagDisqualified(ctx, env, check.ActionParams)
	case ActionAwardCertificate:
		errRun = g.awardCertificate(ctx, env, check.ActionParams)
	case "":
		return fmt.Sprintf("rule %d: no action", ruleID)
	default:
		// Unknown actions are no-ops; lint reports them at authoring time.
		logger.WithFields(log.Fields{"rule_id": ruleID, "action": check.Action}).
			Debug("post hooks: unknown action skipped")
		return fmt.Sprintf("rule %d: %s: skipped (unknown action)", ruleID, check.Action)
	}

	if errRun != nil {
		logger.WithError(errRun).WithFields(log.Fields{"rule_id": ruleID, "action": check.Action}).
			Error("post hooks: action failed")
		return fmt.Sprintf("rule %d: %s: %v", ruleID, check.Action, errRun)
	}
	return fmt.Sprintf("rule %d: %s: ok", ruleID, check.Action)
}
