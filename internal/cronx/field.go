package cronx

import (
	"sort"
	"strconv"
	"strings"
)

// FieldSet is the normalized, set-based representation of a single cron
// field (minute, hour, day-of-month, month, or day-of-week): a sorted,
// deduplicated list of values within [Min, Max], plus whether the user
// wrote anything other than "*" for this field.
//
// Specified is tracked explicitly at parse time instead of inferred from
// the set's size, so an explicit full-range list like "1-31" is correctly
// reported as specified even though its values match the wildcard's.
type FieldSet struct {
	Values    []int
	Min, Max  int
	Specified bool
	raw       string
}

// Contains reports whether v is in the field's value set.
func (f FieldSet) Contains(v int) bool {
	i := sort.SearchInts(f.Values, v)
	return i < len(f.Values) && f.Values[i] == v
}

// Raw returns the original field expression as written.
func (f FieldSet) Raw() string { return f.raw }

// IsEvery reports whether the field was the wildcard "*".
func (f FieldSet) IsEvery() bool { return !f.Specified }

// IsSingle reports whether the field resolved to exactly one value.
func (f FieldSet) IsSingle() bool { return len(f.Values) == 1 }

// Value returns the sole value of a single-value field (0 otherwise).
func (f FieldSet) Value() int {
	if !f.IsSingle() {
		return 0
	}
	return f.Values[0]
}

// step returns the constant stride between consecutive values, or 0 if
// the set has fewer than two values or the stride isn't uniform.
func (f FieldSet) step() int {
	if len(f.Values) < 2 {
		return 0
	}
	stride := f.Values[1] - f.Values[0]
	for i := 2; i < len(f.Values); i++ {
		if f.Values[i]-f.Values[i-1] != stride {
			return 0
		}
	}
	return stride
}

// isCommaList reports whether the field was written as a comma-separated
// list, which always classifies it as a list.
func (f FieldSet) isCommaList() bool { return strings.Contains(f.raw, ",") }

// IsRange reports whether the field is a contiguous run of consecutive
// values (stride 1), derived from the sorted set rather than stored
// separately. A comma-separated field is never a range.
func (f FieldSet) IsRange() bool { return f.Specified && !f.isCommaList() && f.step() == 1 }

// RangeStart returns the first value of a contiguous range (0 if the
// field isn't a range).
func (f FieldSet) RangeStart() int {
	if !f.IsRange() {
		return 0
	}
	return f.Values[0]
}

// RangeEnd returns the last value of a contiguous range (0 if the field
// isn't a range).
func (f FieldSet) RangeEnd() int {
	if !f.IsRange() {
		return 0
	}
	return f.Values[len(f.Values)-1]
}

// IsStep reports whether the field's values form a uniform stride
// greater than 1 (e.g. "*/15" or "0-30/10"). A comma-separated field is
// never a step.
func (f FieldSet) IsStep() bool { return f.Specified && !f.isCommaList() && f.step() > 1 }

// Step returns the stride for a step field (0 if not a step field).
func (f FieldSet) Step() int {
	if !f.IsStep() {
		return 0
	}
	return f.step()
}

// IsList reports whether the field is a set of values with no uniform
// stride (e.g. "1,15,30") or was written as a comma-separated list
// (e.g. "0,12").
func (f FieldSet) IsList() bool {
	return f.Specified && len(f.Values) > 1 && (f.isCommaList() || f.step() == 0)
}

// ListValues returns the field's values in ascending order.
func (f FieldSet) ListValues() []int { return f.Values }

// parseField parses a comma-separated field expression into a FieldSet.
// Each comma-separated term is one of: "*", a bare value/name, a range
// "a-b", or a step "base/step" where base is "*", a value, or a range.
func parseField(fieldName, raw string, min, max int, registry SymbolRegistry) (FieldSet, error) {
	fs := FieldSet{Min: min, Max: max, raw: raw}

	if raw == "" {
		return fs, &ParseError{Field: fieldName, Token: raw, Reason: "empty field"}
	}
	if raw != "*" {
		fs.Specified = true
	}

	seen := make(map[int]bool)
	for _, term := range strings.Split(raw, ",") {
		if term == "" {
			return fs, &ParseError{Field: fieldName, Token: raw, Reason: "empty term in list"}
		}
		values, err := parseTerm(fieldName, term, min, max, registry)
		if err != nil {
			return fs, err
		}
		for _, v := range values {
			seen[v] = true
		}
	}

	values := make([]int, 0, len(seen))
	for v := range seen {
		values = append(values, v)
	}
	sort.Ints(values)
	if len(values) == 0 {
		return fs, &ParseError{Field: fieldName, Token: raw, Reason: "no values produced"}
	}

	fs.Values = values
	return fs, nil
}

func parseTerm(fieldName, term string, min, max int, registry SymbolRegistry) ([]int, error) {
	if idx := strings.Index(term, "/"); idx != -1 {
		base, stepStr := term[:idx], term[idx+1:]
		if base == "" {
			return nil, &ParseError{Field: fieldName, Token: term, Reason: "missing step base"}
		}
		step, err := strconv.Atoi(stepStr)
		if err != nil || step <= 0 {
			return nil, &ParseError{Field: fieldName, Token: term, Reason: "step must be a positive integer"}
		}

		var start, end int
		switch {
		case base == "*":
			start, end = min, max
		case strings.Contains(base, "-"):
			s, e, err := parseRange(fieldName, base, min, max, registry)
			if err != nil {
				return nil, err
			}
			start, end = s, e
		default:
			v, err := parseValue(fieldName, base, min, max, registry)
			if err != nil {
				return nil, err
			}
			start, end = v, max
		}

		values := make([]int, 0, (end-start)/step+1)
		for v := start; v <= end; v += step {
			values = append(values, v)
		}
		return values, nil
	}

	if term == "*" {
		values := make([]int, 0, max-min+1)
		for v := min; v <= max; v++ {
			values = append(values, v)
		}
		return values, nil
	}

	if strings.Contains(term, "-") {
		start, end, err := parseRange(fieldName, term, min, max, registry)
		if err != nil {
			return nil, err
		}
		values := make([]int, 0, end-start+1)
		for v := start; v <= end; v++ {
			values = append(values, v)
		}
		return values, nil
	}

	v, err := parseValue(fieldName, term, min, max, registry)
	if err != nil {
		return nil, err
	}
	return []int{v}, nil
}

func parseRange(fieldName, term string, min, max int, registry SymbolRegistry) (int, int, error) {
	dash := strings.Index(term, "-")
	startStr, endStr := term[:dash], term[dash+1:]
	if startStr == "" || endStr == "" {
		return 0, 0, &ParseError{Field: fieldName, Token: term, Reason: "range endpoint missing"}
	}
	start, err := parseValue(fieldName, startStr, min, max, registry)
	if err != nil {
		return 0, 0, err
	}
	end, err := parseValue(fieldName, endStr, min, max, registry)
	if err != nil {
		return 0, 0, err
	}
	if start > end {
		return 0, 0, &ParseError{Field: fieldName, Token: term, Reason: "range start greater than end"}
	}
	return start, end, nil
}

// parseValue converts a string to an in-range integer, resolving named
// symbols (month/weekday names) case-insensitively. A numeric
// day-of-week 7 is folded to 0 (Sunday) here, before the range check.
func parseValue(fieldName, s string, min, max int, registry SymbolRegistry) (int, error) {
	if v, err := strconv.Atoi(s); err == nil {
		if fieldName == "day-of-week" && v == 7 {
			v = 0
		}
		if v < min || v > max {
			return 0, &ParseError{Field: fieldName, Token: s, Reason: "value out of range"}
		}
		return v, nil
	}

	if registry != nil {
		if v, ok := registry.ParseSymbol(s); ok {
			if v < min || v > max {
				return 0, &ParseError{Field: fieldName, Token: s, Reason: "value out of range"}
			}
			return v, nil
		}
	}

	return 0, &ParseError{Field: fieldName, Token: s, Reason: "unknown name or non-integer value"}
}
