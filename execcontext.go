package autoflow

import (
	"fmt"
	"regexp"
	"strings"
)

// refPattern matches ${path} variable references in step parameters.
var refPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// ExecutionContext is the mutable variable store a workflow run executes
// against. It is seeded with the caller's initial values under "input" and
// extended by each step's assigned output. Steps cannot reference values
// that have not been written yet, so there are no forward references.
//
// Paths are dot-separated: "input.ticket", "build.artifact.url". The
// sequencer owns the context for the duration of a run; it is not safe for
// concurrent mutation.
type ExecutionContext struct {
	values map[string]any
}

// NewExecutionContext creates a context seeded with the initial values
// under the "input" path. A nil map seeds an empty input.
func NewExecutionContext(initial map[string]any) *ExecutionContext {
	input := make(map[string]any, len(initial))
	for k, v := range initial {
		input[k] = v
	}
	return &ExecutionContext{values: map[string]any{"input": input}}
}

// Get resolves a dot-separated path. The second return is false when any
// segment is missing or a non-map value is traversed.
func (ec *ExecutionContext) Get(path string) (any, bool) {
	segments := strings.Split(path, ".")
	var current any = ec.values
	for _, seg := range segments {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[seg]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// Set writes a value at a dot-separated path, creating intermediate maps
// as needed. Writing through an existing non-map value is an error.
func (ec *ExecutionContext) Set(path string, value any) error {
	if path == "" {
		return &ValidationError{Subject: "context path", Issues: []string{"path is empty"}}
	}
	segments := strings.Split(path, ".")
	current := ec.values
	for _, seg := range segments[:len(segments)-1] {
		next, ok := current[seg]
		if !ok {
			child := make(map[string]any)
			current[seg] = child
			current = child
			continue
		}
		child, ok := next.(map[string]any)
		if !ok {
			return &ValidationError{
				Subject: "context path",
				Issues:  []string{fmt.Sprintf("segment %q of %q is not a map", seg, path)},
			}
		}
		current = child
	}
	current[segments[len(segments)-1]] = value
	return nil
}

// Snapshot returns a deep copy of the context values for result records.
func (ec *ExecutionContext) Snapshot() map[string]any {
	return copyValue(ec.values).(map[string]any)
}

func copyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = copyValue(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = copyValue(item)
		}
		return out
	default:
		return v
	}
}

// ResolveParams substitutes every ${path} reference in params against the
// context. A parameter that is exactly one reference resolves to the raw
// value, preserving its type; references embedded in larger strings are
// interpolated as text. A missing path returns a PathError; references
// are never silently defaulted.
func (ec *ExecutionContext) ResolveParams(params map[string]any) (map[string]any, error) {
	if params == nil {
		return nil, nil
	}
	resolved := make(map[string]any, len(params))
	for key, value := range params {
		out, err := ec.resolveValue(value)
		if err != nil {
			return nil, err
		}
		resolved[key] = out
	}
	return resolved, nil
}

func (ec *ExecutionContext) resolveValue(value any) (any, error) {
	switch val := value.(type) {
	case string:
		return ec.resolveString(val)
	case map[string]any:
		return ec.ResolveParams(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			resolved, err := ec.resolveValue(item)
			if err != nil {
				return nil, err
			}
			out[i] = resolved
		}
		return out, nil
	default:
		return value, nil
	}
}

func (ec *ExecutionContext) resolveString(s string) (any, error) {
	// Whole-string reference: keep the referenced value's type.
	if m := refPattern.FindStringSubmatch(s); m != nil && m[0] == s {
		value, ok := ec.Get(m[1])
		if !ok {
			return nil, &PathError{Path: m[1]}
		}
		return value, nil
	}

	var missing *PathError
	result := refPattern.ReplaceAllStringFunc(s, func(ref string) string {
		path := refPattern.FindStringSubmatch(ref)[1]
		value, ok := ec.Get(path)
		if !ok {
			if missing == nil {
				missing = &PathError{Path: path}
			}
			return ref
		}
		return fmt.Sprint(value)
	})
	if missing != nil {
		return nil, missing
	}
	return result, nil
}
