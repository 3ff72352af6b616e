package rules

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/contesthub/contesthub/internal/models"
	"github.com/google/uuid"
)

// computeRanking assigns rank_N tags to the category's entries ordered by a
// named numeric metric. Ties share one rank and the following distinct rank
// skips by the tie-group size; entries without the metric or carrying a
// disqualification tag get no rank tag. Stale rank tags are cleared first.
func (g *Engine) computeRanking(ctx context.Context, env Env, params map[string]any) error {
	field := paramString(params, "field", "score")
	descending := strings.ToLower(paramString(params, "order", "desc")) != "asc"

	posts, errList := g.stores.Posts.ListByCategory(ctx, env.CategoryID)
	if errList != nil {
		return errList
	}

	type ranked struct {
		post  models.Post
		value float64
	}
	var eligible []ranked
	for _, post := range posts {
		if post.Kind != models.PostKindEntry {
			continue
		}
		if _, hadRank := post.RankTagValue(); hadRank {
			if errClear := g.stores.Posts.SetTags(ctx, post.ID, withoutRankTags(post.TagList())); errClear != nil {
				return errClear
			}
		}
		if post.HasAnyTag(models.DisqualificationTags...) {
			continue
		}
		value, ok := post.Metric(field)
		if !ok {
			continue
		}
		eligible = append(eligible, ranked{post: post, value: value})
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		if eligible[i].value == eligible[j].value {
			return eligible[i].post.ID < eligible[j].post.ID
		}
		if descending {
			return eligible[i].value > eligible[j].value
		}
		return eligible[i].value < eligible[j].value
	})

	currentRank := 0
	for i, entry := range eligible {
		if i == 0 || entry.value != eligible[i-1].value {
			currentRank = i + 1
		}
		tags := append(withoutRankTags(entry.post.TagList()), models.RankTag(currentRank))
		if errSet := g.stores.Posts.SetTags(ctx, entry.post.ID, tags); errSet != nil {
			return errSet
		}
	}
	return nil
}

// flagDisqualified tags rule violations onto entries. With target "group" it
// tags every entry authored by a member of a team below the rule's minimum
// size; with target "post" it tags entries lacking a required attachment.
func (g *Engine) flagDisqualified(ctx context.Context, env Env, params map[string]any) error {
	switch paramString(params, "target", "group") {
	case "group":
		return g.flagUndersizedTeams(ctx, env)
	case "post":
		return g.flagMissingAttachments(ctx, env, params)
	default:
		return fmt.Errorf("rules: flag_disqualified: unknown target %q", paramString(params, "target", ""))
	}
}

func (g *Engine) flagUndersizedTeams(ctx context.Context, env Env) error {
	if env.Rule == nil || env.Rule.MinTeamSize == nil {
		return nil
	}
	minSize := int64(*env.Rule.MinTeamSize)

	groups, errGroups := g.stores.Groups.ListByCategory(ctx, env.CategoryID)
	if errGroups != nil {
		return errGroups
	}
	undersizedAuthors := map[uint64]struct{}{}
	for _, group := range groups {
		count, errCount := g.stores.Groups.CountMembers(ctx, group.ID, models.MemberStatusAccepted)
		if errCount != nil {
			return errCount
		}
		if count >= minSize {
			continue
		}
		members, errMembers := g.stores.Groups.ListMembers(ctx, group.ID, models.MemberStatusAccepted)
		if errMembers != nil {
			return errMembers
		}
		for _, member := range members {
			undersizedAuthors[member.UserID] = struct{}{}
		}
	}
	if len(undersizedAuthors) == 0 {
		return nil
	}

	posts, errPosts := g.stores.Posts.ListByCategory(ctx, env.CategoryID)
	if errPosts != nil {
		return errPosts
	}
	for _, post := range posts {
		if post.Kind != models.PostKindEntry {
			continue
		}
		if _, undersized := undersizedAuthors[post.AuthorID]; !undersized {
			continue
		}
		if post.HasTag(models.TagTeamTooSmall) {
			continue
		}
		tags := append(post.TagList(), models.TagTeamTooSmall)
		if errSet := g.stores.Posts.SetTags(ctx, post.ID, tags); errSet != nil {
			return errSet
		}
	}
	return nil
}

func (g *Engine) flagMissingAttachments(ctx context.Context, env Env, params map[string]any) error {
	minCount := paramInt(params, "min_count", 1)
	allowed := normalizeFormats(paramStrings(params, "formats"))

	posts, errPosts := g.stores.Posts.ListByCategory(ctx, env.CategoryID)
	if errPosts != nil {
		return errPosts
	}
	for _, post := range posts {
		if post.Kind != models.PostKindEntry {
			continue
		}
		resources, errResources := g.stores.Resources.ListByPost(ctx, post.ID)
		if errResources != nil {
			return errResources
		}
		count := 0
		for _, resource := range resources {
			if len(allowed) > 0 && !formatAllowed(resource.Format, allowed) {
				continue
			}
			count++
		}
		if count >= minCount {
			continue
		}
		if post.HasTag(models.TagMissingAttachment) {
			continue
		}
		tags := append(post.TagList(), models.TagMissingAttachment)
		if errSet := g.stores.Posts.SetTags(ctx, post.ID, tags); errSet != nil {
			return errSet
		}
	}
	return nil
}

// award is one decoded entry of the award_certificate action parameters.
type award struct {
	low   int
	high  int
	title string
}

// awardCertificate issues a published certificate post for every ranked
// entry whose rank falls into an award range. Awards are matched in list
// order and the first match wins. The certificate links back to the entry
// with a reference relation. Ranks must already be present: the action reads
// rank_N tags and does not trigger ranking itself.
func (g *Engine) awardCertificate(ctx context.Context, env Env, params map[string]any) error {
	awards, errAwards := decodeAwards(params)
	if errAwards != nil {
		return errAwards
	}
	if len(awards) == 0 {
		return nil
	}

	posts, errPosts := g.stores.Posts.ListByCategory(ctx, env.CategoryID)
	if errPosts != nil {
		return errPosts
	}
	for _, post := range posts {
		if post.Kind != models.PostKindEntry {
			continue
		}
		rankTag, hasRank := post.RankTagValue()
		if !hasRank {
			continue
		}
		rank, errRank := strconv.Atoi(strings.TrimPrefix(rankTag, models.TagRankPrefix))
		if errRank != nil {
			continue
		}

		var matched *award
		for i := range awards {
			if rank >= awards[i].low && rank <= awards[i].high {
				matched = &awards[i]
				break
			}
		}
		if matched == nil {
			continue
		}

		certificate := models.Post{
			AuthorID: post.AuthorID,
			Kind:     models.PostKindCertificate,
			Status:   models.PostStatusPublished,
			Title:    matched.title,
			Body:     fmt.Sprintf("Awarded for %q (%s). Serial %s.", post.Title, rankTag, uuid.NewString()),
		}
		if errCreate := g.stores.Posts.Create(ctx, &certificate); errCreate != nil {
			return errCreate
		}
		if errLink := g.stores.Relations.CreatePostRelation(ctx, &models.PostPost{
			SourceID: certificate.ID,
			TargetID: post.ID,
			Kind:     models.PostRelationReference,
		}); errLink != nil {
			return errLink
		}
	}
	return nil
}

// decodeAwards reads the awards list out of action parameters. Each entry is
// {rank_range: N | [low, high], title: string}.
func decodeAwards(params map[string]any) ([]award, error) {
	raw, ok := params["awards"].([]any)
	if !ok {
		return nil, nil
	}
	awards := make([]award, 0, len(raw))
	for _, item := range raw {
		entry, okEntry := item.(map[string]any)
		if !okEntry {
			return nil, fmt.Errorf("rules: award entry is not an object")
		}
		title, _ := entry["title"].(string)
		decoded := award{title: title}
		switch rng := entry["rank_range"].(type) {
		case float64:
			decoded.low, decoded.high = int(rng), int(rng)
		case []any:
			if len(rng) != 2 {
				return nil, fmt.Errorf("rules: rank_range needs two bounds")
			}
			low, okLow := toFloat(rng[0])
			high, okHigh := toFloat(rng[1])
			if !okLow || !okHigh {
				return nil, fmt.Errorf("rules: rank_range bounds must be numeric")
			}
			decoded.low, decoded.high = int(low), int(high)
		default:
			return nil, fmt.Errorf("rules: award entry has no rank_range")
		}
		awards = append(awards, decoded)
	}
	return awards, nil
}

// withoutRankTags strips rank_N tags from a tag list.
func withoutRankTags(tags []string) []string {
	kept := make([]string, 0, len(tags))
	for _, tag := range tags {
		if models.IsRankTag(tag) {
			continue
		}
		kept = append(kept, tag)
	}
	return kept
}

// paramString reads a string action parameter with a default.
func paramString(params map[string]any, key, fallback string) string {
	if value, ok := params[key].(string); ok && value != "" {
		return value
	}
	return fallback
}

// paramInt reads an integer action parameter with a default.
func paramInt(params map[string]any, key string, fallback int) int {
	if value, ok := toFloat(params[key]); ok {
		return int(value)
	}
	return fallback
}

// paramStrings reads a string-list action parameter.
func paramStrings(params map[string]any, key string) []string {
	raw, ok := params[key].([]any)
	if !ok {
		return nil
	}
	values := make([]string, 0, len(raw))
	for _, item := range raw {
		if value, okItem := item.(string); okItem {
			values = append(values, value)
		}
	}
	return values
}
