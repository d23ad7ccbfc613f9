// Package filter holds the canonical filter set produced by criteria
// normalization and consumed by the catalog query layer.
package filter

import "fmt"

// MaxConditionsPerGroup caps each boolean group. Exclusion sets can grow large,
// so must-not gets a separate, higher cap.
const (
	MaxConditionsPerGroup = 32
	MaxExclusions         = 4096
)

// Expression is a conjunctive filter with must/any-of/must-not semantics.
// Must conditions AND together, AnyOf conditions OR within the group (body
// types), MustNot conditions exclude (hidden vehicle IDs).
type Expression struct {
	must    []Condition
	anyOf   []Condition
	mustNot []Condition
}

// NewExpression validates and creates an Expression.
func NewExpression(must, anyOf, mustNot []Condition) (Expression, error) {
	if len(must) > MaxConditionsPerGroup {
		return Expression{}, fmt.Errorf("too many must conditions (max %d)", MaxConditionsPerGroup)
	}
	if len(anyOf) > MaxConditionsPerGroup {
		return Expression{}, fmt.Errorf("too many any-of conditions (max %d)", MaxConditionsPerGroup)
	}
	if len(mustNot) > MaxExclusions {
		return Expression{}, fmt.Errorf("too many must-not conditions (max %d)", MaxExclusions)
	}
	return Expression{must: must, anyOf: anyOf, mustNot: mustNot}, nil
}

// Must returns the must conditions.
func (e Expression) Must() []Condition { return e.must }

// AnyOf returns the any-of (OR group) conditions.
func (e Expression) AnyOf() []Condition { return e.anyOf }

// MustNot returns the must-not conditions.
func (e Expression) MustNot() []Condition { return e.mustNot }

// IsEmpty reports whether the expression has no conditions.
func (e Expression) IsEmpty() bool {
	return len(e.must) == 0 && len(e.anyOf) == 0 && len(e.mustNot) == 0
}

// WithExclusions returns a copy of e with must-not ID matches appended for
// every excluded vehicle identifier. The must-not group is capped at
// MaxExclusions; IDs beyond the cap are dropped.
func (e Expression) WithExclusions(ids []string) Expression {
	if len(ids) == 0 {
		return e
	}
	mustNot := make([]Condition, 0, len(e.mustNot)+len(ids))
	mustNot = append(mustNot, e.mustNot...)
	for _, id := range ids {
		if id == "" {
			continue
		}
		if len(mustNot) >= MaxExclusions {
			break
		}
		mustNot = append(mustNot, Condition{key: FieldID, match: id})
	}
	return Expression{must: e.must, anyOf: e.anyOf, mustNot: mustNot}
}

// Catalog field names conditions may reference.
const (
	FieldID       = "id"
	FieldMake     = "make"
	FieldModel    = "model"
	FieldBodyType = "body_type"
	FieldPrice    = "price"
	FieldYear     = "year"
)

// Condition is a single clause: either a case-insensitive tag match or a
// numeric range.
type Condition struct {
	key       string
	match     string
	rangeExpr *Range
}

// NewMatch creates an exact (case-insensitive) match condition.
func NewMatch(key, match string) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	if match == "" {
		return Condition{}, fmt.Errorf("match value is required for key %q", key)
	}
	return Condition{key: key, match: match}, nil
}

// NewRange creates a numeric range condition.
func NewRange(key string, r Range) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	return Condition{key: key, rangeExpr: &r}, nil
}

// Key returns the field name.
func (c Condition) Key() string { return c.key }

// Match returns the match value.
func (c Condition) Match() string { return c.match }

// Range returns the numeric range expression.
func (c Condition) Range() *Range { return c.rangeExpr }

// IsMatch reports whether this is a match condition.
func (c Condition) IsMatch() bool { return c.match != "" }

// IsRange reports whether this is a range condition.
func (c Condition) IsRange() bool { return c.rangeExpr != nil }

// Range is a numeric range with inclusive boundaries.
type Range struct {
	gte *float64
	lte *float64
}

// AtMost creates a <= bound.
func AtMost(v float64) Range { return Range{lte: &v} }

// AtLeast creates a >= bound.
func AtLeast(v float64) Range { return Range{gte: &v} }

// GTE returns the lower inclusive bound.
func (r Range) GTE() *float64 { return r.gte }

// LTE returns the upper inclusive bound.
func (r Range) LTE() *float64 { return r.lte }
