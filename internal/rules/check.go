package rules

import (
	"encoding/json"
	"fmt"

	"github.com/contesthub/contesthub/internal/models"
)

// Trigger keys identifying the lifecycle points checks fire on. Callers must
// use the exact literal; unmatched keys are silent no-ops.
const (
	// TriggerSubmissionCreate fires when a post is linked into a category.
	TriggerSubmissionCreate = "create_relation(category_post)"
	// TriggerMembershipCreate fires when a user asks to join a group.
	TriggerMembershipCreate = "create_relation(group_user)"
	// TriggerRegistrationCreate fires when a group registers into a category.
	TriggerRegistrationCreate = "create_relation(category_group)"
	// TriggerPostStatusUpdate fires when a post's lifecycle status changes.
	TriggerPostStatusUpdate = "update_content(post.status)"
	// TriggerCategoryStatusUpdate fires when a category's status changes,
	// e.g. a competition closing.
	TriggerCategoryStatusUpdate = "update_content(category.status)"
)

// Check phases.
const (
	// PhasePre gates the mutation and may deny it.
	PhasePre = "pre"
	// PhasePost runs after the mutation committed and never blocks it.
	PhasePost = "post"
)

// Failure modes of pre-phase checks.
const (
	// OnFailDeny aborts the mutation with the check's message.
	OnFailDeny = "deny"
	// OnFailWarn records a warning and continues.
	OnFailWarn = "warn"
	// OnFailFlag behaves exactly like warn at the pre-check layer. It does
	// not persist a tag; persistent tagging is the post-phase
	// flag_disqualified action, which shares the name but not the behavior.
	OnFailFlag = "flag"
)

// Post-phase action names.
const (
	// ActionComputeRanking ranks the category's entries by a named metric.
	ActionComputeRanking = "compute_ranking"
	// ActionFlagDisqualified tags entries that violate team or attachment
	// requirements.
	ActionFlagDisqualified = "flag_disqualified"
	// ActionAwardCertificate issues certificate posts for ranked entries.
	ActionAwardCertificate = "award_certificate"
)

// CheckDefinition is one decoded check of a rule: a trigger point, a phase,
// an optional condition and either a failure mode (pre) or an action (post).
// A pre-phase check without a condition is skipped entirely; a post-phase
// check without a condition always runs its action.
type CheckDefinition struct {
	Trigger      string
	Phase        string
	Condition    Condition
	OnFail       string
	Action       string
	ActionParams map[string]any
	Message      string
}

// rawCheck is the JSON shape of a check definition.
type rawCheck struct {
	Trigger      string          `json:"trigger"`
	Phase        string          `json:"phase"`
	Condition    json.RawMessage `json:"condition,omitempty"`
	OnFail       string          `json:"on_fail,omitempty"`
	Action       string          `json:"action,omitempty"`
	ActionParams map[string]any  `json:"action_params,omitempty"`
	Message      string          `json:"message,omitempty"`
}

// rawCondition carries the kind tag of a condition payload.
type rawCondition struct {
	Type string `json:"type"`
}

// LintWarning is an authoring-time finding about a rule's check list. The
// engine stays fail-open at runtime; lint is where unknown vocabulary and
// ordering hazards become visible.
type LintWarning struct {
	RuleID  uint64 // Rule the finding belongs to.
	Index   int    // Check index within the rule, -1 for rule-level findings.
	Message string // Human-readable finding.
}

// DecodeCondition decodes one tagged condition payload. Unrecognized kinds
// decode into Unknown, which always evaluates to pass.
func DecodeCondition(raw json.RawMessage) (Condition, error) {
	var tag rawCondition
	if errDecode := json.Unmarshal(raw, &tag); errDecode != nil {
		return nil, fmt.Errorf("rules: decode condition tag: %w", errDecode)
	}

	switch tag.Type {
	case KindTimeWindow:
		var cond TimeWindow
		if errDecode := json.Unmarshal(raw, &cond); errDecode != nil {
			return nil, fmt.Errorf("rules: decode time_window: %w", errDecode)
		}
		return cond, nil
	case KindCount:
		var cond Count
		if errDecode := json.Unmarshal(raw, &cond); errDecode != nil {
			return nil, fmt.Errorf("rules: decode count: %w", errDecode)
		}
		return cond, nil
	case KindExists:
		cond := Exists{Require: true}
		if errDecode := json.Unmarshal(raw, &cond); errDecode != nil {
			return nil, fmt.Errorf("rules: decode exists: %w", errDecode)
		}
		return cond, nil
	case KindFieldMatch:
		var cond FieldMatch
		if errDecode := json.Unmarshal(raw, &cond); errDecode != nil {
			return nil, fmt.Errorf("rules: decode field_match: %w", errDecode)
		}
		return cond, nil
	case KindResourceFormat:
		var cond ResourceFormat
		if errDecode := json.Unmarshal(raw, &cond); errDecode != nil {
			return nil, fmt.Errorf("rules: decode resource_format: %w", errDecode)
		}
		return cond, nil
	case KindResourceRequired:
		var cond ResourceRequired
		if errDecode := json.Unmarshal(raw, &cond); errDecode != nil {
			return nil, fmt.Errorf("rules: decode resource_required: %w", errDecode)
		}
		return cond, nil
	case KindAggregate:
		var cond Aggregate
		if errDecode := json.Unmarshal(raw, &cond); errDecode != nil {
			return nil, fmt.Errorf("rules: decode aggregate: %w", errDecode)
		}
		return cond, nil
	default:
		return Unknown{Type: tag.Type, Raw: raw}, nil
	}
}

// DecodeChecks decodes a rule's custom check list and reports authoring
// warnings. A malformed list is an error; individual unknown condition kinds
// and actions are warnings only.
func DecodeChecks(rule *models.Rule) ([]CheckDefinition, []LintWarning, error) {
	if rule == nil || len(rule.Checks) == 0 {
		return nil, nil, nil
	}

	var raws []rawCheck
	if errDecode := json.Unmarshal(rule.Checks, &raws); errDecode != nil {
		return nil, nil, fmt.Errorf("rules: decode checks of rule %d: %w", rule.ID, errDecode)
	}

	checks := make([]CheckDefinition, 0, len(raws))
	var warnings []LintWarning
	rankingSeen := map[string]bool{}
	for i, raw := range raws {
		check := CheckDefinition{
			Trigger:      raw.Trigger,
			Phase:        raw.Phase,
			OnFail:       raw.OnFail,
			Action:       raw.Action,
			ActionParams: raw.ActionParams,
			Message:      raw.Message,
		}
		if check.Phase == PhasePre && check.OnFail == "" {
			check.OnFail = OnFailDeny
		}

		if len(raw.Condition) > 0 {
			cond, errCond := DecodeCondition(raw.Condition)
			if errCond != nil {
				return nil, nil, errCond
			}
			if unknown, ok := cond.(Unknown); ok {
				warnings = append(warnings, LintWarning{
					RuleID:  rule.ID,
					Index:   i,
					Message: fmt.Sprintf("unknown condition type %q always passes", unknown.Type),
				})
			}
			check.Condition = cond
		}

		if check.Phase == PhasePost {
			switch check.Action {
			case ActionComputeRanking:
				rankingSeen[check.Trigger] = true
			case ActionFlagDisqualified:
			case ActionAwardCertificate:
				if !rankingSeen[check.Trigger] {
					warnings = append(warnings, LintWarning{
						RuleID:  rule.ID,
						Index:   i,
						Message: "no compute_ranking precedes this award_certificate on its trigger; ranks may be stale or missing",
					})
				}
			case "":
				warnings = append(warnings, LintWarning{
					RuleID:  rule.ID,
					Index:   i,
					Message: "post-phase check has no action and does nothing",
				})
			default:
				warnings = append(warnings, LintWarning{
					RuleID:  rule.ID,
					Index:   i,
					Message: fmt.Sprintf("unknown action %q is ignored at runtime", check.Action),
				})
			}
		}

		checks = append(checks, check)
	}
	return checks, warnings, nil
}
