// Package validation implements the declarative per-field rule sets evaluated
// before every mutation. A ruleset maps field names to rule chains; a payload
// either passes as a whole, yielding coerced values, or fails with a
// field -> messages breakdown. There is no partial success.
package validation

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

const DateFormat = "2006-01-02"

// Errors maps field names to the messages produced for that field.
type Errors map[string][]string

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(e))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%v: %v", field, strings.Join(e[field], "; ")))
	}
	return strings.Join(parts, ", ")
}

// Rule checks one value and returns the coerced form. Rules receive the whole
// payload so cross-field rules (date ordering) can see their counterpart.
type Rule func(field string, value any, payload map[string]any) (any, error)

// Chain is the rule chain for a single field.
type Chain struct {
	required bool
	rules    []Rule
}

func Required(rules ...Rule) Chain {
	return Chain{required: true, rules: rules}
}

func Optional(rules ...Rule) Chain {
	return Chain{required: false, rules: rules}
}

type RuleSet map[string]Chain

// Validate evaluates a payload against a ruleset. Fields absent from the
// ruleset are dropped (never passed through to storage). The returned map
// holds coerced values for every present field.
func Validate(payload map[string]any, rules RuleSet) (map[string]any, Errors) {
	return validate(payload, rules, false)
}

// ValidatePartial applies update semantics: every chain is treated as
// optional, so absent fields are skipped rather than rejected.
func ValidatePartial(payload map[string]any, rules RuleSet) (map[string]any, Errors) {
	return validate(payload, rules, true)
}

func validate(payload map[string]any, rules RuleSet, partial bool) (map[string]any, Errors) {
	coerced := make(map[string]any, len(payload))
	errs := Errors{}

	fields := make([]string, 0, len(rules))
	for field := range rules {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	for _, field := range fields {
		chain := rules[field]
		value, present := payload[field]

		if !present || value == nil {
			if chain.required && !partial {
				errs[field] = append(errs[field], fmt.Sprintf("the %v field is required", field))
			}
			continue
		}

		failed := false
		for _, rule := range chain.rules {
			next, err := rule(field, value, payload)
			if err != nil {
				errs[field] = append(errs[field], err.Error())
				failed = true
				break
			}
			value = next
		}
		if !failed {
			coerced[field] = value
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return coerced, nil
}

// Integer requires an integral numeric value within [min, max]. JSON numbers
// arrive as float64; the coerced value is an int.
func Integer(min, max int) Rule {
	return func(field string, value any, _ map[string]any) (any, error) {
		f, ok := toFloat(value)
		if !ok || f != math.Trunc(f) {
			return nil, fmt.Errorf("the %v field must be an integer", field)
		}
		n := int(f)
		if n < min || n > max {
			return nil, fmt.Errorf("the %v field must be between %v and %v", field, min, max)
		}
		return n, nil
	}
}

// Number requires a numeric value within [min, max].
func Number(min, max float64) Rule {
	return func(field string, value any, _ map[string]any) (any, error) {
		f, ok := toFloat(value)
		if !ok {
			return nil, fmt.Errorf("the %v field must be a number", field)
		}
		if f < min || f > max {
			return nil, fmt.Errorf("the %v field must be between %v and %v", field, min, max)
		}
		return f, nil
	}
}

// String requires a non-empty string of at most max bytes.
func String(max int) Rule {
	return func(field string, value any, _ map[string]any) (any, error) {
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("the %v field must be a string", field)
		}
		if strings.TrimSpace(s) == "" {
			return nil, fmt.Errorf("the %v field is required", field)
		}
		if len(s) > max {
			return nil, fmt.Errorf("the %v field may not be longer than %v characters", field, max)
		}
		return s, nil
	}
}

// Date requires a YYYY-MM-DD date string; the coerced value is normalized.
func Date() Rule {
	return func(field string, value any, _ map[string]any) (any, error) {
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("the %v field must be a date", field)
		}
		t, err := time.Parse(DateFormat, s)
		if err != nil {
			return nil, fmt.Errorf("the %v field must be a valid date (%v)", field, DateFormat)
		}
		return t.Format(DateFormat), nil
	}
}

// Enum requires the value to be one of the allowed strings.
func Enum(allowed ...string) Rule {
	return func(field string, value any, _ map[string]any) (any, error) {
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("the %v field must be a string", field)
		}
		for _, a := range allowed {
			if s == a {
				return s, nil
			}
		}
		return nil, fmt.Errorf("the selected %v is invalid, must be one of: %v", field, strings.Join(allowed, ", "))
	}
}

// AfterOrEqual requires the field's date to be >= the other field's date.
// If the other field is absent from the payload the rule passes; callers
// validating partial updates must supply the stored counterpart themselves.
func AfterOrEqual(other string) Rule {
	return func(field string, value any, payload map[string]any) (any, error) {
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("the %v field must be a date", field)
		}
		t, err := time.Parse(DateFormat, s)
		if err != nil {
			return nil, fmt.Errorf("the %v field must be a valid date (%v)", field, DateFormat)
		}

		otherRaw, present := payload[other]
		if !present || otherRaw == nil {
			return s, nil
		}
		otherStr, ok := otherRaw.(string)
		if !ok {
			return s, nil
		}
		otherT, err := time.Parse(DateFormat, otherStr)
		if err != nil {
			return s, nil
		}

		if t.Before(otherT) {
			return nil, fmt.Errorf("the %v field must be a date after or equal to %v", field, other)
		}
		return s, nil
	}
}

// ExistsFunc probes storage for a referenced row.
type ExistsFunc func(value any) (bool, error)

// Exists requires the value to reference an existing row of the named entity.
func Exists(entity string, probe ExistsFunc) Rule {
	return func(field string, value any, _ map[string]any) (any, error) {
		found, err := probe(value)
		if err != nil {
			return nil, fmt.Errorf("unable to verify the %v field", field)
		}
		if !found {
			return nil, fmt.Errorf("the selected %v does not reference an existing %v", field, entity)
		}
		return value, nil
	}
}

// UniqueFunc probes storage for a conflicting row. On updates the probe is
// built to exclude the row being updated.
type UniqueFunc func(value any) (bool, error)

// Unique requires that no other row already holds this value.
func Unique(what string, probe UniqueFunc) Rule {
	return func(field string, value any, _ map[string]any) (any, error) {
		taken, err := probe(value)
		if err != nil {
			return nil, fmt.Errorf("unable to verify the %v field", field)
		}
		if taken {
			return nil, fmt.Errorf("the %v has already been taken", what)
		}
		return value, nil
	}
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	}
	return 0, false
}
