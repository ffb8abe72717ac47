// Package mergetags resolves {{expression}} placeholders against a trigger
// context. Expressions are JMESPath queries, e.g. {{post.title}}.
package mergetags

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	jmespath "github.com/jmespath-community/go-jmespath"
)

var ErrInvalidExpression = errors.New("invalid merge tag expression")

var placeholder = regexp.MustCompile(`\{\{\s*(.+?)\s*\}\}`)

var compiled sync.Map

func compile(expr string) (jmespath.JMESPath, error) {
	if cached, ok := compiled.Load(expr); ok {
		return cached.(jmespath.JMESPath), nil
	}

	query, err := jmespath.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrInvalidExpression, expr, err)
	}

	compiled.Store(expr, query)

	return query, nil
}

// NeedsResolving reports whether s contains at least one placeholder.
func NeedsResolving(s string) bool {
	return placeholder.MatchString(s)
}

// Expressions returns the expressions used in a template, in order of appearance.
func Expressions(template string) []string {
	matches := placeholder.FindAllStringSubmatch(template, -1)

	exprs := make([]string, 0, len(matches))
	for _, m := range matches {
		exprs = append(exprs, m[1])
	}

	return exprs
}

// Validate checks that every expression of the template compiles.
func Validate(template string) error {
	for _, expr := range Expressions(template) {
		_, err := compile(expr)
		if err != nil {
			return err
		}
	}

	return nil
}

// ValidateMap validates every string found in settings, recursively.
func ValidateMap(settings map[string]any) error {
	for key, value := range settings {
		err := validateValue(value)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}

	return nil
}

func validateValue(value any) error {
	switch v := value.(type) {
	case string:
		return Validate(v)
	case map[string]any:
		return ValidateMap(v)
	case []any:
		for i, item := range v {
			err := validateValue(item)
			if err != nil {
				return fmt.Errorf("[%d]: %w", i, err)
			}
		}
	}

	return nil
}

// Resolve replaces every placeholder with the value it selects from data.
// Missing values become the empty string; placeholders whose expression does
// not compile are left untouched.
func Resolve(template string, data map[string]any) string {
	if !NeedsResolving(template) {
		return template
	}

	return placeholder.ReplaceAllStringFunc(template, func(match string) string {
		expr := placeholder.FindStringSubmatch(match)[1]

		query, err := compile(expr)
		if err != nil {
			return match
		}

		value, err := query.Search(data)
		if err != nil {
			return ""
		}

		return format(value)
	})
}

// ResolveMap returns a copy of settings with every string resolved,
// descending into nested maps and slices.
func ResolveMap(settings map[string]any, data map[string]any) map[string]any {
	if settings == nil {
		return nil
	}

	out := make(map[string]any, len(settings))
	for key, value := range settings {
		out[key] = resolveValue(value, data)
	}

	return out
}

func resolveValue(value any, data map[string]any) any {
	switch v := value.(type) {
	case string:
		return Resolve(v, data)
	case map[string]any:
		return ResolveMap(v, data)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = resolveValue(item, data)
		}

		return out
	default:
		return value
	}
}

func format(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case map[string]any, []any:
		b, err := json.Marshal(v)
		if err != nil {
			return ""
		}

		return string(b)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}
