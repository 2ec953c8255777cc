package execution

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// placeholderRegex matches {{ dotted.path }} markers inside configuration
// strings. Whitespace around the path is tolerated.
var placeholderRegex = regexp.MustCompile(`\{\{\s*([^{}]+?)\s*\}\}`)

// ResolveVariables substitutes every {{path}} placeholder in text against the
// current run state. Supported roots, in precedence order:
//
//	input.<field>          — the run's initial payload
//	nodes.<id>.<sub.path>  — a completed node's recorded output
//	variables.<name>       — explicitly set variables
//
// Dotted sub-paths walk nested maps and numeric slice indices. A placeholder
// that cannot be resolved becomes an empty string; the miss is logged at
// warn level so configuration mistakes stay visible.
func (c *Context) ResolveVariables(text string) string {
	if !strings.Contains(text, "{{") {
		return text
	}
	return placeholderRegex.ReplaceAllStringFunc(text, func(match string) string {
		path := strings.TrimSpace(placeholderRegex.FindStringSubmatch(match)[1])
		value, ok := c.LookupPath(path)
		if !ok {
			c.AddLog(LogWarn, fmt.Sprintf("unresolved placeholder %q, substituting empty string", path), "", nil)
			return ""
		}
		return renderValue(value)
	})
}

// ResolveConfig deep-copies a node configuration, resolving templated string
// fields. A string that is exactly one placeholder yields the referenced
// value with its original type, so numbers and objects survive data
// propagation; strings with surrounding text resolve via ResolveVariables.
func (c *Context) ResolveConfig(config map[string]any) map[string]any {
	out := make(map[string]any, len(config))
	for k, v := range config {
		out[k] = c.resolveAny(v)
	}
	return out
}

func (c *Context) resolveAny(v any) any {
	switch tv := v.(type) {
	case string:
		if path, sole := solePlaceholder(tv); sole {
			if value, ok := c.LookupPath(path); ok {
				return value
			}
			c.AddLog(LogWarn, fmt.Sprintf("unresolved placeholder %q, substituting empty string", path), "", nil)
			return ""
		}
		return c.ResolveVariables(tv)
	case map[string]any:
		return c.ResolveConfig(tv)
	case []any:
		out := make([]any, len(tv))
		for i, item := range tv {
			out[i] = c.resolveAny(item)
		}
		return out
	default:
		return v
	}
}

// LookupPath resolves one dotted path against run state without any string
// rendering. The boolean reports whether the full path resolved.
func (c *Context) LookupPath(path string) (any, bool) {
	root, rest, _ := strings.Cut(path, ".")

	switch root {
	case "input":
		return walkPath(c.Input(), rest)
	case "nodes":
		nodeID, sub, _ := strings.Cut(rest, ".")
		if nodeID == "" {
			return nil, false
		}
		c.mu.Lock()
		output, ok := c.nodeOutputs[nodeID]
		c.mu.Unlock()
		if !ok {
			return nil, false
		}
		if sub == "" {
			return output, true
		}
		return walkPath(output, sub)
	case "variables":
		if rest == "" {
			return nil, false
		}
		name, sub, _ := strings.Cut(rest, ".")
		c.mu.Lock()
		value, ok := c.variables[name]
		c.mu.Unlock()
		if !ok {
			return nil, false
		}
		if sub == "" {
			return value, true
		}
		return walkPath(value, sub)
	}
	return nil, false
}

// solePlaceholder reports whether s consists of exactly one {{path}} marker
// and returns the inner path.
func solePlaceholder(s string) (string, bool) {
	trimmed := strings.TrimSpace(s)
	loc := placeholderRegex.FindStringSubmatchIndex(trimmed)
	if loc == nil || loc[0] != 0 || loc[1] != len(trimmed) {
		return "", false
	}
	return strings.TrimSpace(trimmed[loc[2]:loc[3]]), true
}

// walkPath follows dotted keys through nested maps and numeric indices
// through slices.
func walkPath(value any, path string) (any, bool) {
	if path == "" {
		return value, true
	}
	current := value
	for _, seg := range strings.Split(path, ".") {
		switch cv := current.(type) {
		case map[string]any:
			next, ok := cv[seg]
			if !ok {
				return nil, false
			}
			current = next
		case []any:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= len(cv) {
				return nil, false
			}
			current = cv[idx]
		default:
			return nil, false
		}
	}
	return current, true
}

// renderValue turns a resolved value into its inline string form. Composite
// values render as JSON so they stay machine-readable inside prompts.
func renderValue(v any) string {
	switch tv := v.(type) {
	case nil:
		return ""
	case string:
		return tv
	case map[string]any, []any:
		b, err := json.Marshal(tv)
		if err != nil {
			return fmt.Sprintf("%v", tv)
		}
		return string(b)
	case float64:
		// JSON numbers decode as float64; render integral values without
		// a trailing ".0" so templated ids and counts read naturally.
		if tv == float64(int64(tv)) {
			return strconv.FormatInt(int64(tv), 10)
		}
		return strconv.FormatFloat(tv, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", tv)
	}
}
