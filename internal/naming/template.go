package naming

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// formatPattern matches {name} or {name:02} style placeholders.
var formatPattern = regexp.MustCompile(`\{(\w+)(?::(\d+))?\}`)

// optionalPattern matches <...> sections, which are dropped entirely when
// any placeholder inside them renders empty.
var optionalPattern = regexp.MustCompile(`<([^<>]*)>`)

// applyTemplate substitutes variables into a template string.
// Supports {name} for simple substitution, {name:02} for zero-padded
// integers and <...> for optional sections.
func applyTemplate(template string, vars map[string]any) string {
	template = optionalPattern.ReplaceAllStringFunc(template, func(section string) string {
		inner := section[1 : len(section)-1]
		for _, m := range formatPattern.FindAllStringSubmatch(inner, -1) {
			if isEmpty(vars[m[1]]) {
				return ""
			}
		}
		return inner
	})

	return formatPattern.ReplaceAllStringFunc(template, func(match string) string {
		parts := formatPattern.FindStringSubmatch(match)
		name := parts[1]
		val, ok := vars[name]
		if !ok {
			return match
		}

		if parts[2] != "" {
			if width, err := strconv.Atoi(parts[2]); err == nil {
				switch v := val.(type) {
				case int:
					return fmt.Sprintf("%0*d", width, v)
				case int64:
					return fmt.Sprintf("%0*d", width, v)
				}
			}
		}
		return fmt.Sprintf("%v", val)
	})
}

func isEmpty(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	case int:
		return x == 0
	default:
		return false
	}
}

// validateTemplate rejects templates that reference unknown variables or
// cannot tell episodes apart.
func validateTemplate(template string) error {
	hasEpisode := false
	for _, m := range formatPattern.FindAllStringSubmatch(template, -1) {
		switch m[1] {
		case "episode":
			hasEpisode = true
		case "title", "season", "resolution", "group", "source", "year":
		default:
			return fmt.Errorf("template %q: unknown variable {%s}", template, m[1])
		}
	}
	if !hasEpisode {
		return fmt.Errorf("template %q: missing {episode}", template)
	}
	return nil
}
