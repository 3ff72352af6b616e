package rules

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/contesthub/contesthub/internal/models"
)

func TestUnknownConditionTypeAlwaysPasses(t *testing.T) {
	_, stores := newTestStores(t)
	eval := NewEvaluator(stores)

	cond, errDecode := DecodeCondition(json.RawMessage(`{"type":"sentiment_score","threshold":0.9}`))
	if errDecode != nil {
		t.Fatalf("decode: %v", errDecode)
	}
	if _, ok := cond.(Unknown); !ok {
		t.Fatalf("expected Unknown, got %T", cond)
	}

	for _, env := range []Env{
		{},
		{ActorID: 42, CategoryID: 7, PostID: 3, GroupID: 9},
	} {
		passed, errEval := eval.Evaluate(testCtx, cond, env)
		if errEval != nil {
			t.Fatalf("evaluate: %v", errEval)
		}
		if !passed {
			t.Fatalf("unknown condition must pass for env %+v", env)
		}
	}
}

func TestTimeWindowBounds(t *testing.T) {
	_, stores := newTestStores(t)
	eval := NewEvaluator(stores)

	now := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
	before := now.Add(-time.Hour)
	after := now.Add(time.Hour)

	cases := []struct {
		name string
		cond TimeWindow
		want bool
	}{
		{"inside", TimeWindow{Start: &before, End: &after}, true},
		{"before start", TimeWindow{Start: &after}, false},
		{"after end", TimeWindow{End: &before}, false},
		{"inclusive start", TimeWindow{Start: &now}, true},
		{"inclusive end", TimeWindow{End: &now}, true},
		{"unbounded", TimeWindow{}, true},
	}
	for _, tc := range cases {
		passed, errEval := eval.Evaluate(testCtx, tc.cond, Env{Now: now})
		if errEval != nil {
			t.Fatalf("%s: %v", tc.name, errEval)
		}
		if passed != tc.want {
			t.Fatalf("%s: got %v want %v", tc.name, passed, tc.want)
		}
	}
}

func TestCountWithRuleFieldReference(t *testing.T) {
	conn, stores := newTestStores(t)
	eval := NewEvaluator(stores)

	category := createCategory(t, conn, models.CategoryStatusOpen)
	author := createUser(t, conn, "ada")
	createEntry(t, conn, category.ID, author.ID, nil)
	createEntry(t, conn, category.ID, author.ID, nil)

	rule := &models.Rule{Name: "cap", MaxSubmissions: intPtr(2)}
	cond := Count{Entity: "post", Scope: "category_user", Op: "<", Value: "$rule.max_submissions"}
	env := Env{ActorID: author.ID, CategoryID: category.ID, Rule: rule}

	passed, errEval := eval.Evaluate(testCtx, cond, env)
	if errEval != nil {
		t.Fatalf("evaluate: %v", errEval)
	}
	if passed {
		t.Fatalf("2 submissions must not satisfy count < 2")
	}

	*rule.MaxSubmissions = 3
	passed, errEval = eval.Evaluate(testCtx, cond, env)
	if errEval != nil {
		t.Fatalf("evaluate: %v", errEval)
	}
	if !passed {
		t.Fatalf("2 submissions must satisfy count < 3")
	}
}

func TestResourceFormatAllAndAny(t *testing.T) {
	conn, stores := newTestStores(t)
	eval := NewEvaluator(stores)

	category := createCategory(t, conn, models.CategoryStatusOpen)
	author := createUser(t, conn, "bea")
	post := createEntry(t, conn, category.ID, author.ID, nil)
	attachResource(t, conn, post.ID, "pdf")
	attachResource(t, conn, post.ID, "zip")

	env := Env{ActorID: author.ID, CategoryID: category.ID, PostID: post.ID}

	passed, errEval := eval.Evaluate(testCtx, ResourceFormat{Formats: []string{"pdf"}}, env)
	if errEval != nil {
		t.Fatalf("evaluate all: %v", errEval)
	}
	if passed {
		t.Fatalf("zip attachment must fail the all-match allow-list")
	}

	passed, errEval = eval.Evaluate(testCtx, ResourceFormat{Formats: []string{"pdf"}, RequireAny: true}, env)
	if errEval != nil {
		t.Fatalf("evaluate any: %v", errEval)
	}
	if !passed {
		t.Fatalf("one pdf attachment must satisfy require_any")
	}
}

func TestResourceRequiredMinCount(t *testing.T) {
	conn, stores := newTestStores(t)
	eval := NewEvaluator(stores)

	category := createCategory(t, conn, models.CategoryStatusOpen)
	author := createUser(t, conn, "cal")
	post := createEntry(t, conn, category.ID, author.ID, nil)
	attachResource(t, conn, post.ID, "pdf")

	env := Env{CategoryID: category.ID, PostID: post.ID}

	passed, errEval := eval.Evaluate(testCtx, ResourceRequired{MinCount: 1}, env)
	if errEval != nil {
		t.Fatalf("evaluate: %v", errEval)
	}
	if !passed {
		t.Fatalf("one attachment must satisfy min_count 1")
	}

	passed, errEval = eval.Evaluate(testCtx, ResourceRequired{MinCount: 2}, env)
	if errEval != nil {
		t.Fatalf("evaluate: %v", errEval)
	}
	if passed {
		t.Fatalf("one attachment must not satisfy min_count 2")
	}

	passed, errEval = eval.Evaluate(testCtx, ResourceRequired{MinCount: 1, Formats: []string{"zip"}}, env)
	if errEval != nil {
		t.Fatalf("evaluate: %v", errEval)
	}
	if passed {
		t.Fatalf("pdf attachment must not satisfy a zip-only requirement")
	}
}

func TestFieldMatchOnCategoryStatus(t *testing.T) {
	conn, stores := newTestStores(t)
	eval := NewEvaluator(stores)

	category := createCategory(t, conn, models.CategoryStatusClosed)
	env := Env{CategoryID: category.ID}

	passed, errEval := eval.Evaluate(testCtx, FieldMatch{Entity: "category", Field: "status", Op: "==", Value: "open"}, env)
	if errEval != nil {
		t.Fatalf("evaluate: %v", errEval)
	}
	if passed {
		t.Fatalf("closed category must not match status == open")
	}

	passed, errEval = eval.Evaluate(testCtx, FieldMatch{Entity: "category", Field: "status", Op: "in", Value: []any{"open", "closed"}}, env)
	if errEval != nil {
		t.Fatalf("evaluate in: %v", errEval)
	}
	if !passed {
		t.Fatalf("closed category must match status in [open, closed]")
	}
}

func TestAggregateEachGroupInCategory(t *testing.T) {
	conn, stores := newTestStores(t)
	eval := NewEvaluator(stores)

	category := createCategory(t, conn, models.CategoryStatusOpen)
	alice := createUser(t, conn, "alice")
	bob := createUser(t, conn, "bob")
	carol := createUser(t, conn, "carol")
	createGroup(t, conn, category.ID, alice.ID, alice.ID, bob.ID)
	small := createGroup(t, conn, category.ID, carol.ID, carol.ID)

	cond := Aggregate{Entity: "group_member", Scope: "each_group_in_category", Op: ">=", Value: 2.0}
	env := Env{CategoryID: category.ID}

	passed, errEval := eval.Evaluate(testCtx, cond, env)
	if errEval != nil {
		t.Fatalf("evaluate: %v", errEval)
	}
	if passed {
		t.Fatalf("a one-member group must fail the every-group size condition")
	}

	member := &models.GroupMember{GroupID: small.ID, UserID: bob.ID, Status: models.MemberStatusAccepted}
	if errCreate := conn.Create(member).Error; errCreate != nil {
		t.Fatalf("grow group: %v", errCreate)
	}
	passed, errEval = eval.Evaluate(testCtx, cond, env)
	if errEval != nil {
		t.Fatalf("evaluate: %v", errEval)
	}
	if !passed {
		t.Fatalf("all groups at two members must pass")
	}
}
