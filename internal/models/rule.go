package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Rule is a declarative admission-control and workflow policy. Fixed fields
// cover the common gates (submission window, caps, team-size bounds, allowed
// formats); Checks holds the rule author's custom check definitions. Rules
// attach to categories through RuleLink rows.
type Rule struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Name        string `gorm:"type:varchar(255);not null"` // Display name.
	Description string `gorm:"type:text"`                  // Free-form description.

	SubmissionStart *time.Time `gorm:""` // Submission window opening, nil = unbounded.
	SubmissionEnd   *time.Time `gorm:""` // Submission window closing, nil = unbounded.

	MaxSubmissions *int `gorm:""` // Per-user submission cap.
	MinTeamSize    *int `gorm:""` // Minimum accepted members to submit.
	MaxTeamSize    *int `gorm:""` // Maximum accepted members, gates joining.

	SubmissionFormats datatypes.JSON `gorm:"type:jsonb"` // JSON array of allowed file extensions.

	AllowDirectPublish bool `gorm:"not null;default:true"`  // Entries may publish without review.
	RequireReview      bool `gorm:"not null;default:false"` // Entries must pass review first.

	Checks datatypes.JSON `gorm:"type:jsonb"` // JSON array of custom check definitions.

	CreatedAt time.Time      `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime"` // Last update timestamp.
	DeletedAt gorm.DeletedAt `gorm:"index"`                   // Soft delete marker.
}

// FormatList decodes the allowed-extension array. Missing or malformed
// columns yield an empty list, which means no format restriction.
func (r *Rule) FormatList() []string {
	if len(r.SubmissionFormats) == 0 {
		return nil
	}
	var formats []string
	if errDecode := json.Unmarshal(r.SubmissionFormats, &formats); errDecode != nil {
		return nil
	}
	return formats
}

// RuleLink attaches a rule to a category. Links are read ordered by Priority
// ascending; evaluation order between equal priorities is unspecified.
type RuleLink struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	CategoryID uint64 `gorm:"not null;uniqueIndex:idx_rule_links_pair,priority:1"` // Linked category ID.
	RuleID     uint64 `gorm:"not null;uniqueIndex:idx_rule_links_pair,priority:2"` // Linked rule ID.
	Priority   int    `gorm:"not null;default:0"`                                  // Evaluation priority, ascending.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
}
