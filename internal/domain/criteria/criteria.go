// Package criteria normalizes saved interest criteria into the canonical
// filter set.
//
// Criteria objects arrive in two historical naming conventions (the profile
// form writes snake_case, older API clients wrote camelCase). When a criteria
// object carries both variants of a field, both are honored as independent
// additive constraints. That duplication is a documented legacy quirk relied on
// by compatibility tests; do not merge or deduplicate the pair.
package criteria

import (
	"strconv"

	"github.com/lotscout/lotscout/internal/domain/filter"
)

// Raw is a criteria object as stored on an interest profile, prior to
// normalization. Field types are whatever the writer serialized, so every
// accessor here coerces leniently and treats malformed values as absent.
type Raw map[string]any

// Sentinel values meaning "no constraint". Normalized to absence, never to an
// empty-string match.
var sentinels = map[string]struct{}{
	"":          {},
	"Any Make":  {},
	"Any Model": {},
	"Any":       {},
}

// aliasKind selects how a criteria key compiles into the filter set.
type aliasKind int

const (
	kindMatch    aliasKind = iota // string equality on a tag field
	kindMax                       // numeric <= on a range field
	kindMin                       // numeric >= on a range field
	kindAnyMatch                  // string array, OR group on a tag field
)

// aliasTable is the explicit normalization table: every accepted criteria key
// maps to a canonical catalog field. Both spellings of a field appear as
// separate rows, which is what makes duplicated variants additive.
var aliasTable = []struct {
	key   string
	field string
	kind  aliasKind
}{
	{"make", filter.FieldMake, kindMatch},
	{"model", filter.FieldModel, kindMatch},
	{"max_price", filter.FieldPrice, kindMax},
	{"maxPrice", filter.FieldPrice, kindMax},
	{"min_year", filter.FieldYear, kindMin},
	{"minYear", filter.FieldYear, kindMin},
	{"body_types", filter.FieldBodyType, kindAnyMatch},
	{"bodyType", filter.FieldBodyType, kindMatch},
}

// Normalize compiles a raw criteria object into the canonical filter set.
// Absent, sentinel, and malformed fields produce no constraint: an empty
// criteria object matches everything. Normalize never fails.
//
// min_price and non_negotiables are stored on profiles but deliberately
// produce no constraint; the scoreboard has never filtered on them.
func Normalize(raw Raw) filter.Expression {
	var must, anyOf []filter.Condition

	for _, row := range aliasTable {
		val, ok := raw[row.key]
		if !ok || val == nil {
			continue
		}

		switch row.kind {
		case kindMatch:
			if s, ok := asString(val); ok {
				if c, err := filter.NewMatch(row.field, s); err == nil {
					must = append(must, c)
				}
			}
		case kindMax:
			if n, ok := asNumber(val); ok {
				if c, err := filter.NewRange(row.field, filter.AtMost(n)); err == nil {
					must = append(must, c)
				}
			}
		case kindMin:
			if n, ok := asNumber(val); ok {
				if c, err := filter.NewRange(row.field, filter.AtLeast(n)); err == nil {
					must = append(must, c)
				}
			}
		case kindAnyMatch:
			for _, item := range asStrings(val) {
				if c, err := filter.NewMatch(row.field, item); err == nil {
					anyOf = append(anyOf, c)
				}
			}
		}
	}

	must = clamp(must, filter.MaxConditionsPerGroup)
	anyOf = clamp(anyOf, filter.MaxConditionsPerGroup)

	expr, err := filter.NewExpression(must, anyOf, nil)
	if err != nil {
		// Unreachable after clamping, but normalization must not fail.
		return filter.Expression{}
	}
	return expr
}

func clamp(conds []filter.Condition, limit int) []filter.Condition {
	if len(conds) > limit {
		return conds[:limit]
	}
	return conds
}

// asString returns a usable match value, filtering out sentinels.
func asString(v any) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	if _, sentinel := sentinels[s]; sentinel {
		return "", false
	}
	return s, true
}

// asNumber coerces JSON numbers and numeric strings. Anything else is absent.
func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// asStrings coerces a JSON array of strings, skipping sentinel and non-string
// entries.
func asStrings(v any) []string {
	items, ok := v.([]any)
	if !ok {
		// Tolerate an already-typed slice from in-process callers.
		if typed, ok := v.([]string); ok {
			out := make([]string, 0, len(typed))
			for _, s := range typed {
				if _, sentinel := sentinels[s]; !sentinel {
					out = append(out, s)
				}
			}
			return out
		}
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := asString(item); ok {
			out = append(out, s)
		}
	}
	return out
}
