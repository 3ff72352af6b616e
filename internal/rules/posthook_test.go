package rules

import (
	"strings"
	"testing"

	"github.com/contesthub/contesthub/internal/models"
)

func TestPostHooksComputeRankingOrdersByMetric(t *testing.T) {
	conn, stores := newTestStores(t)
	engine := NewEngine(stores)

	category := createCategory(t, conn, models.CategoryStatusClosed)
	author := createUser(t, conn, "solo")
	first := createEntry(t, conn, category.ID, author.ID, map[string]any{"score": 90.2})
	second := createEntry(t, conn, category.ID, author.ID, map[string]any{"score": 85.5})
	third := createEntry(t, conn, category.ID, author.ID, map[string]any{"score": 78.0})
	linkRule(t, conn, category.ID, &models.Rule{
		Name:               "final ranking",
		AllowDirectPublish: true,
		Checks: checksJSON(t, []map[string]any{
			{
				"trigger":       TriggerCategoryStatusUpdate,
				"phase":         PhasePost,
				"action":        ActionComputeRanking,
				"action_params": map[string]any{"field": "score"},
			},
		}),
	}, 1)

	env := Env{CategoryID: category.ID}
	results := engine.RunPostHooks(testCtx, TriggerCategoryStatusUpdate, env)
	if len(results) != 1 || !strings.HasSuffix(results[0], "ok") {
		t.Fatalf("hook results %v", results)
	}

	for i, id := range []uint64{first.ID, second.ID, third.ID} {
		post := reloadPost(t, conn, id)
		tag, hasRank := post.RankTagValue()
		if !hasRank {
			t.Fatalf("entry %d has no rank tag", id)
		}
		if want := models.RankTag(i + 1); tag != want {
			t.Fatalf("entry %d rank %s, want %s", id, tag, want)
		}
	}
}

func TestPostHooksComputeRankingTiesSkipRanks(t *testing.T) {
	conn, stores := newTestStores(t)
	engine := NewEngine(stores)

	category := createCategory(t, conn, models.CategoryStatusClosed)
	author := createUser(t, conn, "solo")
	tiedA := createEntry(t, conn, category.ID, author.ID, map[string]any{"score": 90.0})
	tiedB := createEntry(t, conn, category.ID, author.ID, map[string]any{"score": 90.0})
	trailing := createEntry(t, conn, category.ID, author.ID, map[string]any{"score": 80.0})
	unmeasured := createEntry(t, conn, category.ID, author.ID, nil)
	disqualified := createEntry(t, conn, category.ID, author.ID, map[string]any{"score": 95.0})
	if errTag := conn.Model(&models.Post{}).Where("id = ?", disqualified.ID).
		Update("tags", models.EncodeTags([]string{models.TagDisqualified})).Error; errTag != nil {
		t.Fatalf("tag post: %v", errTag)
	}
	linkRule(t, conn, category.ID, &models.Rule{
		Name:               "final ranking",
		AllowDirectPublish: true,
		Checks: checksJSON(t, []map[string]any{
			{
				"trigger":       TriggerCategoryStatusUpdate,
				"phase":         PhasePost,
				"action":        ActionComputeRanking,
				"action_params": map[string]any{"field": "score"},
			},
		}),
	}, 1)

	engine.RunPostHooks(testCtx, TriggerCategoryStatusUpdate, Env{CategoryID: category.ID})

	for id, want := range map[uint64]string{
		tiedA.ID:    models.RankTag(1),
		tiedB.ID:    models.RankTag(1),
		trailing.ID: models.RankTag(3),
	} {
		tag, hasRank := reloadPost(t, conn, id).RankTagValue()
		if !hasRank || tag != want {
			t.Fatalf("entry %d rank %q, want %s", id, tag, want)
		}
	}

	if _, hasRank := reloadPost(t, conn, unmeasured.ID).RankTagValue(); hasRank {
		t.Fatalf("entry without the metric must not be ranked")
	}
	dq := reloadPost(t, conn, disqualified.ID)
	if _, hasRank := dq.RankTagValue(); hasRank {
		t.Fatalf("disqualified entry must not be ranked")
	}
	if !dq.HasTag(models.TagDisqualified) {
		t.Fatalf("disqualification tag must survive ranking")
	}
}

func TestPostHooksFlagDisqualifiedTagsUndersizedTeams(t *testing.T) {
	conn, stores := newTestStores(t)
	engine := NewEngine(stores)

	category := createCategory(t, conn, models.CategoryStatusClosed)
	solo := createUser(t, conn, "solo")
	lead := createUser(t, conn, "lead")
	mate := createUser(t, conn, "mate")
	createGroup(t, conn, category.ID, solo.ID, solo.ID)
	createGroup(t, conn, category.ID, lead.ID, lead.ID, mate.ID)
	soloEntry := createEntry(t, conn, category.ID, solo.ID, nil)
	teamEntry := createEntry(t, conn, category.ID, lead.ID, nil)
	linkRule(t, conn, category.ID, &models.Rule{
		Name:               "closing sweep",
		MinTeamSize:        intPtr(2),
		AllowDirectPublish: true,
		Checks: checksJSON(t, []map[string]any{
			{
				"trigger":       TriggerCategoryStatusUpdate,
				"phase":         PhasePost,
				"action":        ActionFlagDisqualified,
				"action_params": map[string]any{"target": "group"},
			},
		}),
	}, 1)

	results := engine.RunPostHooks(testCtx, TriggerCategoryStatusUpdate, Env{CategoryID: category.ID})
	if len(results) != 1 || !strings.HasSuffix(results[0], "ok") {
		t.Fatalf("hook results %v", results)
	}

	if !reloadPost(t, conn, soloEntry.ID).HasTag(models.TagTeamTooSmall) {
		t.Fatalf("undersized team's entry must be tagged")
	}
	if reloadPost(t, conn, teamEntry.ID).HasAnyTag(models.DisqualificationTags...) {
		t.Fatalf("full team's entry must not be tagged")
	}
}

func TestPostHooksAwardCertificate(t *testing.T) {
	conn, stores := newTestStores(t)
	engine := NewEngine(stores)

	category := createCategory(t, conn, models.CategoryStatusClosed)
	author := createUser(t, conn, "winner")
	runnerUp := createUser(t, conn, "runner-up")
	winning := createEntry(t, conn, category.ID, author.ID, map[string]any{"score": 99.0})
	losing := createEntry(t, conn, category.ID, runnerUp.ID, map[string]any{"score": 40.0})
	linkRule(t, conn, category.ID, &models.Rule{
		Name:               "prizes",
		AllowDirectPublish: true,
		Checks: checksJSON(t, []map[string]any{
			{
				"trigger":       TriggerCategoryStatusUpdate,
				"phase":         PhasePost,
				"action":        ActionComputeRanking,
				"action_params": map[string]any{"field": "score"},
			},
			{
				"trigger": TriggerCategoryStatusUpdate,
				"phase":   PhasePost,
				"action":  ActionAwardCertificate,
				"action_params": map[string]any{
					"awards": []map[string]any{{"rank_range": 1, "title": "Gold Award"}},
				},
			},
		}),
	}, 1)

	results := engine.RunPostHooks(testCtx, TriggerCategoryStatusUpdate, Env{CategoryID: category.ID})
	if len(results) != 2 {
		t.Fatalf("hook results %v", results)
	}

	var certificates []models.Post
	if errFind := conn.Where("kind = ?", models.PostKindCertificate).Find(&certificates).Error; errFind != nil {
		t.Fatalf("find certificates: %v", errFind)
	}
	if len(certificates) != 1 {
		t.Fatalf("expected 1 certificate, got %d", len(certificates))
	}
	certificate := certificates[0]
	if certificate.Title != "Gold Award" || certificate.Status != models.PostStatusPublished {
		t.Fatalf("certificate %+v", certificate)
	}
	if certificate.AuthorID != author.ID {
		t.Fatalf("certificate author %d, want %d", certificate.AuthorID, author.ID)
	}

	var link models.PostPost
	if errLink := conn.Where("source_id = ? AND target_id = ?", certificate.ID, winning.ID).
		First(&link).Error; errLink != nil {
		t.Fatalf("certificate reference: %v", errLink)
	}
	if link.Kind != models.PostRelationReference {
		t.Fatalf("reference kind %q", link.Kind)
	}

	var count int64
	if errCount := conn.Model(&models.PostPost{}).Where("target_id = ?", losing.ID).
		Count(&count).Error; errCount != nil {
		t.Fatalf("count references: %v", errCount)
	}
	if count != 0 {
		t.Fatalf("unranked-for-award entry must get no certificate")
	}
}

func TestPostHooksActionFailureNeverRaises(t *testing.T) {
	conn, stores := newTestStores(t)
	engine := NewEngine(stores)

	category := createCategory(t, conn, models.CategoryStatusClosed)
	linkRule(t, conn, category.ID, &models.Rule{
		Name:               "broken",
		AllowDirectPublish: true,
		Checks: checksJSON(t, []map[string]any{
			{
				"trigger":       TriggerCategoryStatusUpdate,
				"phase":         PhasePost,
				"action":        ActionFlagDisqualified,
				"action_params": map[string]any{"target": "nonsense"},
			},
			{"trigger": TriggerCategoryStatusUpdate, "phase": PhasePost, "action": "send_newsletter"},
		}),
	}, 1)

	results := engine.RunPostHooks(testCtx, TriggerCategoryStatusUpdate, Env{CategoryID: category.ID})
	if len(results) != 2 {
		t.Fatalf("hook results %v", results)
	}
	if !strings.Contains(results[0], "unknown target") {
		t.Fatalf("failure outcome %q", results[0])
	}
	if !strings.Contains(results[1], "skipped") {
		t.Fatalf("unknown action outcome %q", results[1])
	}
}
