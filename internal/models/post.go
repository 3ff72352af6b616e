package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Post kinds.
const (
	// PostKindEntry is a competition submission.
	PostKindEntry = "entry"
	// PostKindArticle is a plain content post.
	PostKindArticle = "article"
	// PostKindCertificate is an award certificate generated for a ranked entry.
	PostKindCertificate = "certificate"
)

// Post lifecycle states.
const (
	// PostStatusDraft marks an unpublished post.
	PostStatusDraft = "draft"
	// PostStatusPending marks a post waiting for review.
	PostStatusPending = "pending"
	// PostStatusPublished marks a publicly visible post.
	PostStatusPublished = "published"
)

// Review outcomes recorded on posts that passed through review.
const (
	// ReviewApproved marks a post cleared for publication.
	ReviewApproved = "approved"
	// ReviewRejected marks a post declined by review.
	ReviewRejected = "rejected"
)

// Workflow tags stamped onto posts by post-phase actions.
const (
	// TagRankPrefix prefixes competition ranking tags, e.g. rank_1.
	TagRankPrefix = "rank_"
	// TagTeamTooSmall disqualifies entries from undersized teams.
	TagTeamTooSmall = "team_too_small"
	// TagMissingAttachment disqualifies entries lacking a required attachment.
	TagMissingAttachment = "missing_attachment"
	// TagDisqualified is the manual disqualification tag.
	TagDisqualified = "disqualified"
)

// DisqualificationTags lists the tags that exclude an entry from ranking.
var DisqualificationTags = []string{TagTeamTooSmall, TagMissingAttachment, TagDisqualified}

// RankTag formats the ranking tag for a 1-based rank.
func RankTag(rank int) string {
	return fmt.Sprintf("%s%d", TagRankPrefix, rank)
}

// IsRankTag reports whether tag is a ranking tag.
func IsRankTag(tag string) bool {
	return strings.HasPrefix(tag, TagRankPrefix)
}

// Post is a content item: a competition entry, an article, a certificate.
// Comments are separate Interaction records bound to the post.
type Post struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	AuthorID uint64 `gorm:"not null;index"`                          // Authoring user ID.
	Kind     string `gorm:"type:varchar(32);not null;default:entry"` // Content kind.
	Status   string `gorm:"type:varchar(32);not null;default:draft"` // Lifecycle status.

	Title string `gorm:"type:varchar(255);not null"` // Display title.
	Body  string `gorm:"type:text"`                  // Content body.

	ReviewStatus string `gorm:"type:varchar(32);not null;default:''"` // Review outcome, empty until reviewed.

	Metrics datatypes.JSONMap `gorm:"type:jsonb"` // Named numeric scores used for ranking.
	Tags    datatypes.JSON    `gorm:"type:jsonb"` // JSON array of workflow tags.

	LikeCount     int64    `gorm:"not null;default:0"`    // Cached like total.
	CommentCount  int64    `gorm:"not null;default:0"`    // Cached comment total.
	AverageRating *float64 `gorm:"type:decimal(10,2)"`    // Cached mean rating, nil when unrated.

	CreatedAt time.Time      `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime"` // Last update timestamp.
	DeletedAt gorm.DeletedAt `gorm:"index"`                   // Soft delete marker.
}

// TagList decodes the post's tag array. A missing or malformed column yields
// an empty list.
func (p *Post) TagList() []string {
	if len(p.Tags) == 0 {
		return nil
	}
	var tags []string
	if errDecode := json.Unmarshal(p.Tags, &tags); errDecode != nil {
		return nil
	}
	return tags
}

// HasTag reports whether the post carries the given workflow tag.
func (p *Post) HasTag(tag string) bool {
	for _, existing := range p.TagList() {
		if existing == tag {
			return true
		}
	}
	return false
}

// HasAnyTag reports whether the post carries at least one of the given tags.
func (p *Post) HasAnyTag(tags ...string) bool {
	for _, tag := range tags {
		if p.HasTag(tag) {
			return true
		}
	}
	return false
}

// RankTagValue returns the post's ranking tag and true when one is present.
func (p *Post) RankTagValue() (string, bool) {
	for _, tag := range p.TagList() {
		if IsRankTag(tag) {
			return tag, true
		}
	}
	return "", false
}

// Metric returns the named numeric metric and true when present and numeric.
func (p *Post) Metric(field string) (float64, bool) {
	if p.Metrics == nil {
		return 0, false
	}
	raw, ok := p.Metrics[field]
	if !ok || raw == nil {
		return 0, false
	}
	switch value := raw.(type) {
	case float64:
		return value, true
	case int64:
		return float64(value), true
	case json.Number:
		parsed, errParse := value.Float64()
		if errParse != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

// EncodeTags marshals a tag list into the JSON column representation.
func EncodeTags(tags []string) datatypes.JSON {
	if tags == nil {
		tags = []string{}
	}
	encoded, errEncode := json.Marshal(tags)
	if errEncode != nil {
		return datatypes.JSON([]byte("[]"))
	}
	return datatypes.JSON(encoded)
}
