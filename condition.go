package autoflow

import (
	"fmt"
	"reflect"
)

// Condition is a small closed expression evaluated against the execution
// context to decide whether a step runs. Exactly one clause must be set:
//
//	condition:
//	  exists: input.ticket
//
//	condition:
//	  equals: { path: review.approved, value: true }
//
//	condition:
//	  not: { exists: build.error }
//
// A step whose condition evaluates false is recorded skipped; it never
// counts as a failure and never triggers continue-on-error handling.
type Condition struct {
	Exists string        `yaml:"exists,omitempty" json:"exists,omitempty"`
	Equals *EqualsClause `yaml:"equals,omitempty" json:"equals,omitempty"`
	Not    *Condition    `yaml:"not,omitempty" json:"not,omitempty"`
}

// EqualsClause compares the value at Path to Value.
type EqualsClause struct {
	Path  string `yaml:"path" json:"path"`
	Value any    `yaml:"value" json:"value"`
}

// ConditionExists builds an existence check.
func ConditionExists(path string) *Condition {
	return &Condition{Exists: path}
}

// ConditionEquals builds an equality check.
func ConditionEquals(path string, value any) *Condition {
	return &Condition{Equals: &EqualsClause{Path: path, Value: value}}
}

// ConditionNot negates another condition.
func ConditionNot(c *Condition) *Condition {
	return &Condition{Not: c}
}

// Validate reports structural problems: zero or multiple clauses set, or
// empty paths.
func (c *Condition) Validate() []string {
	var issues []string
	set := 0
	if c.Exists != "" {
		set++
	}
	if c.Equals != nil {
		set++
		if c.Equals.Path == "" {
			issues = append(issues, "equals clause requires a path")
		}
	}
	if c.Not != nil {
		set++
		issues = append(issues, c.Not.Validate()...)
	}
	if set != 1 {
		issues = append(issues, "condition must set exactly one of exists, equals, not")
	}
	return issues
}

// Eval evaluates the condition against the execution context. A missing
// path makes exists false and equals false; it is not an error.
func (c *Condition) Eval(ec *ExecutionContext) bool {
	switch {
	case c.Exists != "":
		_, ok := ec.Get(c.Exists)
		return ok
	case c.Equals != nil:
		value, ok := ec.Get(c.Equals.Path)
		if !ok {
			return false
		}
		return looseEqual(value, c.Equals.Value)
	case c.Not != nil:
		return !c.Not.Eval(ec)
	default:
		return false
	}
}

func (c *Condition) String() string {
	switch {
	case c.Exists != "":
		return fmt.Sprintf("exists(%s)", c.Exists)
	case c.Equals != nil:
		return fmt.Sprintf("equals(%s, %v)", c.Equals.Path, c.Equals.Value)
	case c.Not != nil:
		return fmt.Sprintf("not(%s)", c.Not)
	default:
		return "invalid"
	}
}

// looseEqual compares values with numeric normalization: YAML decodes
// integers as int while JSON decodes them as float64, and a condition
// should not care which decoder produced the context value.
func looseEqual(a, b any) bool {
	if af, aok := asFloat(a); aok {
		if bf, bok := asFloat(b); bok {
			return af == bf
		}
		return false
	}
	return reflect.DeepEqual(a, b)
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
