package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// expandMarker is the suffix that turns a segment into a sequence expansion.
const expandMarker = "[]"

// StepKind distinguishes the instructions of a parsed include path.
type StepKind int

const (
	// StepField descends into, or on the final step resolves, a named field.
	StepField StepKind = iota

	// StepExpand applies the remaining steps to every element of a sequence.
	StepExpand
)

// Step is one traversal instruction of an include path.
type Step struct {
	Kind StepKind

	// Field is the field name for StepField; empty for StepExpand.
	Field string
}

// IncludePath is a parsed include path such as "Lines[].Product".
// A field reached by the final step holds a reference id that is replaced
// by the referenced document when it is present in the Includes.
type IncludePath struct {
	raw   string
	steps []Step
}

// ParseIncludePath parses an include path expression.
//
// Segments are separated by '.', and any segment may end in one or more "[]"
// markers, each of which becomes a StepExpand after the field step.
// Empty segments are ignored. A path without any step is invalid.
func ParseIncludePath(s string) (IncludePath, error) {
	var steps []Step
	for _, token := range strings.Split(s, ".") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}

		expands := 0
		for strings.HasSuffix(token, expandMarker) {
			token = strings.TrimSuffix(token, expandMarker)
			expands++
		}
		if strings.ContainsAny(token, "[]") {
			return IncludePath{}, fmt.Errorf("%w: %q: misplaced brackets", ErrInvalidIncludePath, s)
		}

		if token != "" {
			steps = append(steps, Step{Kind: StepField, Field: token})
		}
		for i := 0; i < expands; i++ {
			steps = append(steps, Step{Kind: StepExpand})
		}
	}

	if len(steps) == 0 {
		return IncludePath{}, fmt.Errorf("%w: %q: no segments", ErrInvalidIncludePath, s)
	}
	return IncludePath{raw: s, steps: steps}, nil
}

// String returns the expression the path was parsed from.
func (p IncludePath) String() string {
	return p.raw
}

// Steps returns a copy of the parsed traversal instructions.
func (p IncludePath) Steps() []Step {
	out := make([]Step, len(p.steps))
	copy(out, p.steps)
	return out
}

// Resolve replaces every reference id reachable by the path in doc with the
// matching document from includes. Missing fields, non-matching values and
// values that were already resolved are left untouched.
func (p IncludePath) Resolve(doc Document, includes Includes) {
	if len(p.steps) == 0 || len(includes) == 0 || doc == nil {
		return
	}
	resolve(p.steps, doc, includes)
}

func resolve(steps []Step, current any, includes Includes) {
	step, rest := steps[0], steps[1:]

	if step.Kind == StepExpand {
		resolveElements(rest, current, includes)
		return
	}

	fields, ok := asMap(current)
	if !ok {
		return
	}

	if len(rest) == 0 {
		if included, ok := lookupInclude(fields[step.Field], includes); ok {
			fields[step.Field] = included
		}
		return
	}

	next, ok := fields[step.Field]
	if !ok || next == nil {
		return
	}
	resolve(rest, next, includes)
}

// resolveElements applies rest to each element of a sequence.
// With no steps left the elements themselves are treated as reference ids.
func resolveElements(rest []Step, current any, includes Includes) {
	switch elems := current.(type) {
	case []any:
		for i := range elems {
			if len(rest) == 0 {
				if included, ok := lookupInclude(elems[i], includes); ok {
					elems[i] = included
				}
				continue
			}
			resolve(rest, elems[i], includes)
		}
	case []map[string]any:
		if len(rest) == 0 {
			return
		}
		for _, elem := range elems {
			resolve(rest, elem, includes)
		}
	case []Document:
		if len(rest) == 0 {
			return
		}
		for _, elem := range elems {
			resolve(rest, elem, includes)
		}
	case Batch:
		if len(rest) == 0 {
			return
		}
		for _, elem := range elems {
			resolve(rest, elem, includes)
		}
	}
}

// lookupInclude returns the included document referenced by v.
// References are matched by their text: strings as-is, and integer
// numbers by their decimal form, so {"Product": 7} finds includes["7"].
func lookupInclude(v any, includes Includes) (Document, bool) {
	id, ok := referenceKey(v)
	if !ok || id == "" {
		return nil, false
	}
	doc, ok := includes[id]
	return doc, ok && doc != nil
}

// referenceKey returns the include map key a reference value stands for.
func referenceKey(v any) (string, bool) {
	switch id := v.(type) {
	case string:
		return id, true
	case json.Number:
		return id.String(), true
	case int:
		return strconv.Itoa(id), true
	case int64:
		return strconv.FormatInt(id, 10), true
	case float64:
		if id != math.Trunc(id) || math.IsInf(id, 0) {
			return "", false
		}
		return strconv.FormatFloat(id, 'f', -1, 64), true
	default:
		return "", false
	}
}
