package logtail

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Entry is one parsed diagnostics line.
type Entry struct {
	Time    string
	Level   string
	Message string
	Fields  []string
	Raw     string
}

var reservedKeys = map[string]struct{}{
	"ts": {}, "level": {}, "msg": {}, "caller": {}, "logger": {}, "stacktrace": {},
}

// Parse decodes a JSON diagnostics line. Lines that are not JSON objects
// come back with only Raw set.
func Parse(line string) Entry {
	entry := Entry{Raw: line}
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "{") {
		return entry
	}
	var fields map[string]any
	if err := json.Unmarshal([]byte(trimmed), &fields); err != nil {
		return entry
	}
	entry.Time = stringField(fields, "ts")
	entry.Level = strings.ToUpper(stringField(fields, "level"))
	entry.Message = stringField(fields, "msg")

	keys := make([]string, 0, len(fields))
	for k := range fields {
		if _, skip := reservedKeys[k]; skip {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		entry.Fields = append(entry.Fields, fmt.Sprintf("%s=%v", k, fields[k]))
	}
	return entry
}

// Format renders a diagnostics line as "time LEVEL message key=value ...".
func Format(line string) string {
	e := Parse(line)
	if e.Level == "" && e.Message == "" {
		return e.Raw
	}
	parts := make([]string, 0, 3+len(e.Fields))
	if e.Time != "" {
		parts = append(parts, e.Time)
	}
	if e.Level != "" {
		parts = append(parts, e.Level)
	}
	if e.Message != "" {
		parts = append(parts, e.Message)
	}
	parts = append(parts, e.Fields...)
	return strings.Join(parts, " ")
}

// FormatLines applies Format to every line.
func FormatLines(lines []string) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = Format(line)
	}
	return out
}

func stringField(fields map[string]any, key string) string {
	v, ok := fields[key]
	if !ok {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
