package cronx

import (
	"fmt"
	"strings"
	"sync"

	"github.com/robfig/cron/v3"
)

// Schedule is an alias for Fields kept for the packages (check, human,
// stats, doc, budget) that were written against the field-by-field
// parsed-schedule shape before the set-based rewrite.
type Schedule = Fields

// Field is an alias for FieldSet, retaining the shape-query accessors
// (IsEvery, IsRange, IsStep, ...) as derived views over the canonical
// sorted value set.
type Field = FieldSet

// Fields is the fully parsed, set-based representation of a 5-field cron
// expression.
type Fields struct {
	Original         string
	Minute           FieldSet
	Hour             FieldSet
	DayOfMonth       FieldSet
	Month            FieldSet
	DayOfWeek        FieldSet
	IsLastDayOfMonth bool // day-of-month field was "L"
}

// ParseError reports which field and token of a cron expression failed
// to parse, and why.
type ParseError struct {
	Field  string
	Token  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cronx: invalid %s field (token %q): %s", e.Field, e.Token, e.Reason)
}

// Parser parses 5-field cron expressions (and @-aliases) into Fields.
type Parser interface {
	Parse(expression string) (*Fields, error)
}

// parser implements Parser. robfig/cron is used only to pre-validate
// expression syntax; it never computes Next() occurrences (see
// scheduler.go's NextAfter, the single authority for that).
type parser struct {
	cronParser cron.Parser
	symbols    SymbolRegistry
	cache      map[string]*Fields
	cacheMu    sync.RWMutex
}

// NewParser creates a cron expression parser with English locale (default).
func NewParser() Parser {
	return NewParserWithLocale("en")
}

// NewParserWithLocale creates a cron expression parser for a specific locale.
func NewParserWithLocale(locale string) Parser {
	symbols, _ := GetSymbolRegistry(locale)
	return &parser{
		cronParser: cron.NewParser(
			cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
		),
		symbols: symbols,
		cache:   make(map[string]*Fields),
	}
}

// Parse parses a cron expression (5-field format or @alias). Results are
// cached since the same expression is typically re-parsed on every
// registry lookup.
func (p *parser) Parse(expression string) (*Fields, error) {
	if expression == "" {
		return nil, &ParseError{Field: "expression", Token: "", Reason: "empty expression"}
	}

	p.cacheMu.RLock()
	if cached, ok := p.cache[expression]; ok {
		p.cacheMu.RUnlock()
		return cached, nil
	}
	p.cacheMu.RUnlock()

	original := expression
	normalized := expression
	if !strings.HasPrefix(expression, "@") {
		normalized = strings.ToUpper(expression)
	}

	// BOUNDARY: robfig/cron is used here only to catch malformed syntax
	// early with its battle-tested messages. Its own Schedule.Next() is
	// never called; NextAfter below is the sole occurrence-computation
	// authority, since it must track which fields were explicitly
	// specified and support "L" — neither of which robfig/cron exposes.
	// robfig's parser doesn't know "L" (day-of-month) or the "7" Sunday
	// alias (day-of-week), so both are normalized to forms it accepts
	// before validation; the unmodified fields are still what gets parsed
	// below.
	validated := normalized
	if !strings.HasPrefix(expression, "@") {
		if parts := strings.Fields(normalized); len(parts) == 5 {
			if parts[2] == "L" {
				parts[2] = "1"
			}
			parts[4] = normalizeDowSevenForValidation(parts[4])
			validated = strings.Join(parts, " ")
		}
	}

	if _, err := p.cronParser.Parse(validated); err != nil {
		errStr := err.Error()
		switch {
		case strings.Contains(errStr, "expected exactly 5 fields"):
			return nil, &ParseError{Field: "expression", Token: expression, Reason: "expected 5 fields"}
		case strings.Contains(errStr, "above maximum") || strings.Contains(errStr, "below minimum"):
			return nil, &ParseError{Field: "expression", Token: expression, Reason: "value out of range"}
		default:
			return nil, fmt.Errorf("cronx: %w", err)
		}
	}

	var rawFields []string
	if strings.HasPrefix(expression, "@") {
		rawFields = aliasToFields(expression)
	} else {
		rawFields = strings.Fields(normalized)
		if len(rawFields) != 5 {
			return nil, &ParseError{Field: "expression", Token: expression, Reason: fmt.Sprintf("expected 5 fields, got %d", len(rawFields))}
		}
	}

	dayOfMonthRaw := rawFields[2]
	isLast := dayOfMonthRaw == "L"
	if isLast {
		dayOfMonthRaw = "1" // placeholder set, never consulted when IsLastDayOfMonth is true
	}

	minute, err := parseField("minute", rawFields[0], MinMinute, MaxMinute, p.symbols)
	if err != nil {
		return nil, err
	}
	hour, err := parseField("hour", rawFields[1], MinHour, MaxHour, p.symbols)
	if err != nil {
		return nil, err
	}
	dayOfMonth, err := parseField("day-of-month", dayOfMonthRaw, MinDayOfMonth, MaxDayOfMonth, p.symbols)
	if err != nil {
		return nil, err
	}
	if isLast {
		dayOfMonth.Specified = true
	}
	month, err := parseField("month", rawFields[3], MinMonth, MaxMonth, p.symbols)
	if err != nil {
		return nil, err
	}
	dayOfWeek, err := parseField("day-of-week", rawFields[4], MinDayOfWeek, MaxDayOfWeek, p.symbols)
	if err != nil {
		return nil, err
	}

	fields := &Fields{
		Original:         original,
		Minute:           minute,
		Hour:             hour,
		DayOfMonth:       dayOfMonth,
		Month:            month,
		DayOfWeek:        dayOfWeek,
		IsLastDayOfMonth: isLast,
	}

	p.cacheMu.Lock()
	p.cache[expression] = fields
	p.cacheMu.Unlock()

	return fields, nil
}

// normalizeDowSevenForValidation rewrites the day-of-week alias "7"
// (Sunday) to "0" within a comma/range/step field expression, mirroring
// the folding parseValue performs later, so robfig/cron's bounds check
// doesn't reject it first.
func normalizeDowSevenForValidation(field string) string {
	terms := strings.Split(field, ",")
	for i, term := range terms {
		base, step, hasStep := term, "", false
		if idx := strings.Index(term, "/"); idx != -1 {
			base, step, hasStep = term[:idx], term[idx+1:], true
		}
		switch {
		case base == "7":
			base = "0"
		case strings.Contains(base, "-"):
			bounds := strings.SplitN(base, "-", 2)
			for j, b := range bounds {
				if b == "7" {
					bounds[j] = "0"
				}
			}
			base = strings.Join(bounds, "-")
		}
		if hasStep {
			terms[i] = base + "/" + step
		} else {
			terms[i] = base
		}
	}
	return strings.Join(terms, ",")
}

func aliasToFields(alias string) []string {
	switch strings.ToLower(alias) {
	case "@yearly", "@annually":
		return []string{"0", "0", "1", "1", "*"}
	case "@monthly":
		return []string{"0", "0", "1", "*", "*"}
	case "@weekly":
		return []string{"0", "0", "*", "*", "0"}
	case "@daily", "@midnight":
		return []string{"0", "0", "*", "*", "*"}
	case "@hourly":
		return []string{"0", "*", "*", "*", "*"}
	default:
		return []string{"*", "*", "*", "*", "*"}
	}
}
