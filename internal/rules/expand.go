package rules

import "github.com/contesthub/contesthub/internal/models"

// ExpandFixedChecks maps each populated fixed field of a rule to exactly one
// implicit deny check. The mapping is:
//
//	submission window  -> create_relation(category_post)  time_window
//	max_submissions    -> create_relation(category_post)  count(posts by user) < N
//	submission_formats -> create_relation(category_post)  resource_format
//	min_team_size      -> create_relation(category_post)  count(accepted members) >= N
//	max_team_size      -> create_relation(group_user)     count(accepted members) < N
//	require_review /   -> update_content(post.status)     field_match(review_status)
//	!allow_direct_publish
//
// Note that max_team_size fires on membership creation, not on submission
// creation like its sibling fields: the cap is enforced when a user joins,
// while the floor is enforced when the team submits. Expanded checks are
// evaluated before the rule's custom checks.
func ExpandFixedChecks(rule *models.Rule) []CheckDefinition {
	if rule == nil {
		return nil
	}
	var checks []CheckDefinition

	if rule.SubmissionStart != nil || rule.SubmissionEnd != nil {
		checks = append(checks, CheckDefinition{
			Trigger:   TriggerSubmissionCreate,
			Phase:     PhasePre,
			OnFail:    OnFailDeny,
			Condition: TimeWindow{Start: rule.SubmissionStart, End: rule.SubmissionEnd},
			Message:   "submissions are not open",
		})
	}

	if rule.MaxSubmissions != nil {
		checks = append(checks, CheckDefinition{
			Trigger: TriggerSubmissionCreate,
			Phase:   PhasePre,
			OnFail:  OnFailDeny,
			Condition: Count{
				Entity: "post",
				Scope:  "category_user",
				Op:     "<",
				Value:  "$rule.max_submissions",
			},
			Message: "submission limit reached",
		})
	}

	if formats := rule.FormatList(); len(formats) > 0 {
		checks = append(checks, CheckDefinition{
			Trigger:   TriggerSubmissionCreate,
			Phase:     PhasePre,
			OnFail:    OnFailDeny,
			Condition: ResourceFormat{Formats: formats},
			Message:   "attachment format is not allowed",
		})
	}

	if rule.MinTeamSize != nil {
		checks = append(checks, CheckDefinition{
			Trigger: TriggerSubmissionCreate,
			Phase:   PhasePre,
			OnFail:  OnFailDeny,
			Condition: Count{
				Entity: "group_member",
				Scope:  "group_accepted",
				Op:     ">=",
				Value:  "$rule.min_team_size",
			},
			Message: "team does not meet the minimum size",
		})
	}

	if rule.MaxTeamSize != nil {
		checks = append(checks, CheckDefinition{
			Trigger: TriggerMembershipCreate,
			Phase:   PhasePre,
			OnFail:  OnFailDeny,
			Condition: Count{
				Entity: "group_member",
				Scope:  "group_accepted",
				Op:     "<",
				Value:  "$rule.max_team_size",
			},
			Message: "team is full",
		})
	}

	if rule.RequireReview || !rule.AllowDirectPublish {
		checks = append(checks, CheckDefinition{
			Trigger: TriggerPostStatusUpdate,
			Phase:   PhasePre,
			OnFail:  OnFailDeny,
			Condition: FieldMatch{
				Entity: "post",
				Field:  "review_status",
				Op:     "==",
				Value:  models.ReviewApproved,
			},
			Message: "post must pass review before publication",
		})
	}

	return checks
}

// RuleChecks returns a rule's full check list: the expanded fixed-field
// checks followed by the decoded custom checks, plus any authoring warnings.
func RuleChecks(rule *models.Rule) ([]CheckDefinition, []LintWarning, error) {
	custom, warnings, errDecode := DecodeChecks(rule)
	if errDecode != nil {
		return nil, nil, errDecode
	}
	return append(ExpandFixedChecks(rule), custom...), warnings, nil
}
