// Package rules implements the declarative admission-control and workflow
// engine: typed conditions, fixed-field check expansion, pre-phase gating and
// post-phase workflow actions.
package rules

import (
	"encoding/json"
	"time"
)

// Condition kind identifiers as they appear in rule JSON.
const (
	KindTimeWindow       = "time_window"
	KindCount            = "count"
	KindExists           = "exists"
	KindFieldMatch       = "field_match"
	KindResourceFormat   = "resource_format"
	KindResourceRequired = "resource_required"
	KindAggregate        = "aggregate"
)

// Condition is one decoded predicate of the rule language. Each variant is
// evaluated against a call environment by the Evaluator.
type Condition interface {
	// Kind returns the condition kind identifier.
	Kind() string
}

// TimeWindow passes while the current time lies within both optional bounds,
// inclusive. An absent bound leaves that side unconstrained.
type TimeWindow struct {
	Start *time.Time `json:"start,omitempty"`
	End   *time.Time `json:"end,omitempty"`
}

// Kind returns the condition kind identifier.
func (TimeWindow) Kind() string { return KindTimeWindow }

// Count resolves an entity-scoped integer and compares it against a
// threshold. The threshold may reference a fixed rule field as
// "$rule.<field>".
type Count struct {
	Entity string         `json:"entity"`
	Scope  string         `json:"scope,omitempty"`
	Filter map[string]any `json:"filter,omitempty"`
	Op     string         `json:"op"`
	Value  any            `json:"value"`
}

// Kind returns the condition kind identifier.
func (Count) Kind() string { return KindCount }

// Exists checks presence of a filtered row set. Require=false inverts it
// into an absence check.
type Exists struct {
	Entity  string         `json:"entity"`
	Scope   string         `json:"scope,omitempty"`
	Filter  map[string]any `json:"filter,omitempty"`
	Require bool           `json:"require"`
}

// Kind returns the condition kind identifier.
func (Exists) Kind() string { return KindExists }

// FieldMatch compares a field of the subject entity against a value. Ops
// include the comparison set plus in and not_in.
type FieldMatch struct {
	Entity string `json:"entity"`
	Field  string `json:"field"`
	Op     string `json:"op"`
	Value  any    `json:"value"`
}

// Kind returns the condition kind identifier.
func (FieldMatch) Kind() string { return KindFieldMatch }

// ResourceFormat checks the file extension of the subject post's attached
// resources against an allow-list: every attachment must match unless
// RequireAny is set, in which case one match suffices.
type ResourceFormat struct {
	Formats    []string `json:"formats"`
	RequireAny bool     `json:"require_any,omitempty"`
}

// Kind returns the condition kind identifier.
func (ResourceFormat) Kind() string { return KindResourceFormat }

// ResourceRequired checks a minimum number of attachments on the subject
// post, optionally restricted to the listed formats.
type ResourceRequired struct {
	MinCount int      `json:"min_count"`
	Formats  []string `json:"formats,omitempty"`
}

// Kind returns the condition kind identifier.
func (ResourceRequired) Kind() string { return KindResourceRequired }

// Aggregate evaluates a count comparison across a collection scope. With
// scope "each_group_in_category" the comparison must hold for every group
// registered in the category.
type Aggregate struct {
	Entity string         `json:"entity"`
	Scope  string         `json:"scope"`
	Filter map[string]any `json:"filter,omitempty"`
	Op     string         `json:"op"`
	Value  any            `json:"value"`
}

// Kind returns the condition kind identifier.
func (Aggregate) Kind() string { return KindAggregate }

// Unknown preserves a condition whose kind the engine does not recognize.
// It always evaluates to pass so that newer rule vocabulary degrades to a
// no-op on older engines; decoding surfaces it as an authoring warning.
type Unknown struct {
	Type string
	Raw  json.RawMessage
}

// Kind returns the raw condition kind identifier.
func (u Unknown) Kind() string { return u.Type }
