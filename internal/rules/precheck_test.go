package rules

import (
	"errors"
	"testing"

	"github.com/contesthub/contesthub/internal/models"
)

func TestPreChecksMinTeamSizeDeniesSubmission(t *testing.T) {
	conn, stores := newTestStores(t)
	engine := NewEngine(stores)

	category := createCategory(t, conn, models.CategoryStatusOpen)
	leader := createUser(t, conn, "lead")
	mate := createUser(t, conn, "mate")
	group := createGroup(t, conn, category.ID, leader.ID, leader.ID, mate.ID)
	linkRule(t, conn, category.ID, &models.Rule{
		Name:               "team floor",
		MinTeamSize:        intPtr(3),
		AllowDirectPublish: true,
	}, 1)

	env := Env{ActorID: leader.ID, CategoryID: category.ID, GroupID: group.ID}
	_, errRun := engine.RunPreChecks(testCtx, TriggerSubmissionCreate, env)
	var deny *DenyError
	if !errors.As(errRun, &deny) {
		t.Fatalf("expected DenyError, got %v", errRun)
	}
	if deny.Message != "team does not meet the minimum size" {
		t.Fatalf("deny message %q", deny.Message)
	}

	// A third accepted member clears the gate.
	third := createUser(t, conn, "third")
	if errMember := conn.Create(&models.GroupMember{
		GroupID: group.ID, UserID: third.ID, Status: models.MemberStatusAccepted,
	}).Error; errMember != nil {
		t.Fatalf("add member: %v", errMember)
	}
	warnings, errRun := engine.RunPreChecks(testCtx, TriggerSubmissionCreate, env)
	if errRun != nil {
		t.Fatalf("expected pass, got %v", errRun)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
}

func TestPreChecksMaxTeamSizeDeniesJoinAtCap(t *testing.T) {
	conn, stores := newTestStores(t)
	engine := NewEngine(stores)

	category := createCategory(t, conn, models.CategoryStatusOpen)
	leader := createUser(t, conn, "lead")
	mate := createUser(t, conn, "mate")
	joiner := createUser(t, conn, "joiner")
	group := createGroup(t, conn, category.ID, leader.ID, leader.ID)
	linkRule(t, conn, category.ID, &models.Rule{
		Name:               "team cap",
		MaxTeamSize:        intPtr(2),
		AllowDirectPublish: true,
	}, 1)

	// One accepted member out of two allowed: the join passes.
	env := Env{ActorID: joiner.ID, CategoryID: category.ID, GroupID: group.ID}
	if _, errRun := engine.RunPreChecks(testCtx, TriggerMembershipCreate, env); errRun != nil {
		t.Fatalf("join below cap: %v", errRun)
	}

	if errMember := conn.Create(&models.GroupMember{
		GroupID: group.ID, UserID: mate.ID, Status: models.MemberStatusAccepted,
	}).Error; errMember != nil {
		t.Fatalf("fill group: %v", errMember)
	}

	_, errRun := engine.RunPreChecks(testCtx, TriggerMembershipCreate, env)
	var deny *DenyError
	if !errors.As(errRun, &deny) {
		t.Fatalf("expected DenyError at cap, got %v", errRun)
	}
	if deny.Message != "team is full" {
		t.Fatalf("deny message %q", deny.Message)
	}
}

func TestPreChecksWarnAndFlagAccumulate(t *testing.T) {
	conn, stores := newTestStores(t)
	engine := NewEngine(stores)

	category := createCategory(t, conn, models.CategoryStatusOpen)
	author := createUser(t, conn, "author")
	post := createEntry(t, conn, category.ID, author.ID, nil)
	linkRule(t, conn, category.ID, &models.Rule{
		Name:               "soft gates",
		AllowDirectPublish: true,
		Checks: checksJSON(t, []map[string]any{
			{
				"trigger":   TriggerSubmissionCreate,
				"phase":     PhasePre,
				"on_fail":   OnFailWarn,
				"condition": map[string]any{"type": KindResourceRequired, "min_count": 1},
				"message":   "an attachment is recommended",
			},
			{
				"trigger":   TriggerSubmissionCreate,
				"phase":     PhasePre,
				"on_fail":   OnFailFlag,
				"condition": map[string]any{"type": KindResourceRequired, "min_count": 2},
				"message":   "two attachments are recommended",
			},
		}),
	}, 1)

	env := Env{ActorID: author.ID, CategoryID: category.ID, PostID: post.ID}
	warnings, errRun := engine.RunPreChecks(testCtx, TriggerSubmissionCreate, env)
	if errRun != nil {
		t.Fatalf("warn checks must not deny: %v", errRun)
	}
	if len(warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %d: %v", len(warnings), warnings)
	}
	if warnings[0].Message != "an attachment is recommended" || warnings[1].Message != "two attachments are recommended" {
		t.Fatalf("warning messages %v", warnings)
	}
}

func TestPreChecksDenyShortCircuits(t *testing.T) {
	conn, stores := newTestStores(t)
	engine := NewEngine(stores)

	category := createCategory(t, conn, models.CategoryStatusOpen)
	author := createUser(t, conn, "author")
	post := createEntry(t, conn, category.ID, author.ID, nil)

	// Two failing deny checks on distinct rules; link priority decides which
	// message surfaces.
	linkRule(t, conn, category.ID, &models.Rule{
		Name:               "second",
		AllowDirectPublish: true,
		Checks: checksJSON(t, []map[string]any{
			{
				"trigger":   TriggerSubmissionCreate,
				"phase":     PhasePre,
				"on_fail":   OnFailDeny,
				"condition": map[string]any{"type": KindResourceRequired, "min_count": 1},
				"message":   "second gate",
			},
		}),
	}, 5)
	linkRule(t, conn, category.ID, &models.Rule{
		Name:               "first",
		AllowDirectPublish: true,
		Checks: checksJSON(t, []map[string]any{
			{
				"trigger":   TriggerSubmissionCreate,
				"phase":     PhasePre,
				"on_fail":   OnFailDeny,
				"condition": map[string]any{"type": KindResourceRequired, "min_count": 1},
				"message":   "first gate",
			},
		}),
	}, 1)

	env := Env{ActorID: author.ID, CategoryID: category.ID, PostID: post.ID}
	warnings, errRun := engine.RunPreChecks(testCtx, TriggerSubmissionCreate, env)
	var deny *DenyError
	if !errors.As(errRun, &deny) {
		t.Fatalf("expected DenyError, got %v", errRun)
	}
	if deny.Message != "first gate" {
		t.Fatalf("deny message %q, want first gate", deny.Message)
	}
	if warnings != nil {
		t.Fatalf("deny must not return warnings, got %v", warnings)
	}
}

func TestPreChecksSkipConditionlessAndOtherTriggers(t *testing.T) {
	conn, stores := newTestStores(t)
	engine := NewEngine(stores)

	category := createCategory(t, conn, models.CategoryStatusOpen)
	author := createUser(t, conn, "author")
	linkRule(t, conn, category.ID, &models.Rule{
		Name:               "noise",
		AllowDirectPublish: true,
		Checks: checksJSON(t, []map[string]any{
			// No condition: skipped outright.
			{"trigger": TriggerSubmissionCreate, "phase": PhasePre, "on_fail": OnFailDeny, "message": "never fires"},
			// Different trigger: not evaluated here.
			{
				"trigger":   TriggerRegistrationCreate,
				"phase":     PhasePre,
				"on_fail":   OnFailDeny,
				"condition": map[string]any{"type": KindResourceRequired, "min_count": 1},
				"message":   "wrong trigger",
			},
		}),
	}, 1)

	env := Env{ActorID: author.ID, CategoryID: category.ID}
	warnings, errRun := engine.RunPreChecks(testCtx, TriggerSubmissionCreate, env)
	if errRun != nil {
		t.Fatalf("expected pass, got %v", errRun)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
}
