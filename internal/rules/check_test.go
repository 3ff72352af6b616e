package rules

import (
	"strings"
	"testing"

	"github.com/contesthub/contesthub/internal/models"
)

func TestDecodeChecksUnknownConditionWarns(t *testing.T) {
	rule := &models.Rule{
		ID: 7,
		Checks: checksJSON(t, []map[string]any{
			{
				"trigger":   TriggerSubmissionCreate,
				"phase":     PhasePre,
				"on_fail":   OnFailWarn,
				"condition": map[string]any{"type": "sentiment_score", "op": ">", "value": 0.5},
			},
		}),
	}

	checks, warnings, errDecode := DecodeChecks(rule)
	if errDecode != nil {
		t.Fatalf("decode: %v", errDecode)
	}
	if len(checks) != 1 {
		t.Fatalf("expected 1 check, got %d", len(checks))
	}
	unknown, ok := checks[0].Condition.(Unknown)
	if !ok {
		t.Fatalf("condition is %T, want Unknown", checks[0].Condition)
	}
	if unknown.Type != "sentiment_score" {
		t.Fatalf("unknown type %q", unknown.Type)
	}
	if len(warnings) != 1 {
		t.Fatalf("expected 1 warning, got %d: %v", len(warnings), warnings)
	}
	if warnings[0].RuleID != 7 || warnings[0].Index != 0 {
		t.Fatalf("warning location %+v", warnings[0])
	}
	if !strings.Contains(warnings[0].Message, "sentiment_score") {
		t.Fatalf("warning message %q", warnings[0].Message)
	}
}

func TestDecodeChecksUnknownActionWarns(t *testing.T) {
	rule := &models.Rule{
		ID: 3,
		Checks: checksJSON(t, []map[string]any{
			{"trigger": TriggerCategoryStatusUpdate, "phase": PhasePost, "action": "send_newsletter"},
		}),
	}

	_, warnings, errDecode := DecodeChecks(rule)
	if errDecode != nil {
		t.Fatalf("decode: %v", errDecode)
	}
	if len(warnings) != 1 {
		t.Fatalf("expected 1 warning, got %d: %v", len(warnings), warnings)
	}
	if !strings.Contains(warnings[0].Message, "send_newsletter") {
		t.Fatalf("warning message %q", warnings[0].Message)
	}
}

func TestDecodeChecksAwardBeforeRankingWarns(t *testing.T) {
	rule := &models.Rule{
		ID: 9,
		Checks: checksJSON(t, []map[string]any{
			{
				"trigger":       TriggerCategoryStatusUpdate,
				"phase":         PhasePost,
				"action":        ActionAwardCertificate,
				"action_params": map[string]any{"awards": []map[string]any{{"rank_range": 1, "title": "Gold"}}},
			},
			{
				"trigger":       TriggerCategoryStatusUpdate,
				"phase":         PhasePost,
				"action":        ActionComputeRanking,
				"action_params": map[string]any{"metric": "score"},
			},
		}),
	}

	_, warnings, errDecode := DecodeChecks(rule)
	if errDecode != nil {
		t.Fatalf("decode: %v", errDecode)
	}
	if len(warnings) != 1 {
		t.Fatalf("expected 1 warning, got %d: %v", len(warnings), warnings)
	}
	if warnings[0].Index != 0 {
		t.Fatalf("warning index %d, want 0", warnings[0].Index)
	}

	// Ranking first suppresses the ordering warning.
	ordered := &models.Rule{
		ID: 10,
		Checks: checksJSON(t, []map[string]any{
			{"trigger": TriggerCategoryStatusUpdate, "phase": PhasePost, "action": ActionComputeRanking},
			{"trigger": TriggerCategoryStatusUpdate, "phase": PhasePost, "action": ActionAwardCertificate},
		}),
	}
	_, warnings, errDecode = DecodeChecks(ordered)
	if errDecode != nil {
		t.Fatalf("decode ordered: %v", errDecode)
	}
	if len(warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", warnings)
	}
}

func TestDecodeChecksAwardWarningIsPerTrigger(t *testing.T) {
	// A ranking on one trigger does not clear awards firing on another: the
	// award's own trigger must carry a preceding compute_ranking.
	rule := &models.Rule{
		ID: 11,
		Checks: checksJSON(t, []map[string]any{
			{"trigger": TriggerPostStatusUpdate, "phase": PhasePost, "action": ActionComputeRanking},
			{"trigger": TriggerCategoryStatusUpdate, "phase": PhasePost, "action": ActionAwardCertificate},
		}),
	}

	_, warnings, errDecode := DecodeChecks(rule)
	if errDecode != nil {
		t.Fatalf("decode: %v", errDecode)
	}
	if len(warnings) != 1 {
		t.Fatalf("expected 1 warning, got %d: %v", len(warnings), warnings)
	}
	if warnings[0].Index != 1 {
		t.Fatalf("warning index %d, want 1", warnings[0].Index)
	}
}

func TestDecodeConditionExistsRequireDefault(t *testing.T) {
	cond, errDecode := DecodeCondition([]byte(`{"type":"exists","entity":"resource","scope":"post"}`))
	if errDecode != nil {
		t.Fatalf("decode: %v", errDecode)
	}
	exists, ok := cond.(Exists)
	if !ok {
		t.Fatalf("condition is %T, want Exists", cond)
	}
	if !exists.Require {
		t.Fatalf("require must default to true")
	}

	cond, errDecode = DecodeCondition([]byte(`{"type":"exists","entity":"resource","scope":"post","require":false}`))
	if errDecode != nil {
		t.Fatalf("decode explicit: %v", errDecode)
	}
	if cond.(Exists).Require {
		t.Fatalf("explicit require=false must stick")
	}
}

func TestDecodeChecksPreDefaultsToDeny(t *testing.T) {
	rule := &models.Rule{
		Checks: checksJSON(t, []map[string]any{
			{
				"trigger":   TriggerSubmissionCreate,
				"phase":     PhasePre,
				"condition": map[string]any{"type": KindResourceRequired, "min_count": 1},
			},
		}),
	}

	checks, _, errDecode := DecodeChecks(rule)
	if errDecode != nil {
		t.Fatalf("decode: %v", errDecode)
	}
	if checks[0].OnFail != OnFailDeny {
		t.Fatalf("on_fail %q, want deny", checks[0].OnFail)
	}
}

func TestDecodeChecksMalformedListErrors(t *testing.T) {
	rule := &models.Rule{ID: 12, Checks: []byte(`{"not":"a list"}`)}
	if _, _, errDecode := DecodeChecks(rule); errDecode == nil {
		t.Fatalf("expected error for malformed check list")
	}
}
