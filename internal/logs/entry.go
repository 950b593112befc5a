package logs

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"scenepack/internal/logging"
)

// Entry is one parsed JSON log line.
type Entry struct {
	Time      time.Time
	Level     string
	Message   string
	Component string
	Movie     string
	Stage     string
	RunID     string
	EventType string
	Source    string
	// Fields holds the remaining attributes.
	Fields map[string]any
	Raw    string
}

// ParseEntry decodes a JSON log line. Lines that are not JSON objects
// report false.
func ParseEntry(line string) (Entry, bool) {
	var fields map[string]any
	if err := json.Unmarshal([]byte(line), &fields); err != nil {
		return Entry{}, false
	}
	entry := Entry{Raw: line}
	take := func(key string) string {
		v, ok := fields[key]
		if !ok {
			return ""
		}
		delete(fields, key)
		if s, ok := v.(string); ok {
			return s
		}
		return fmt.Sprint(v)
	}
	if ts := take("ts"); ts != "" {
		entry.Time, _ = time.Parse(time.RFC3339Nano, ts)
	}
	entry.Level = take("level")
	entry.Message = take("msg")
	entry.Component = take(logging.FieldComponent)
	entry.Movie = take(logging.FieldMovie)
	entry.Stage = take(logging.FieldStage)
	entry.RunID = take(logging.FieldRunID)
	entry.EventType = take(logging.FieldEventType)
	entry.Source = take("source")
	entry.Fields = fields
	return entry, true
}

// Filter selects entries. Empty fields match everything; RunID matches by
// prefix so short ids from `scenepack status` work.
type Filter struct {
	RunID     string
	Movie     string
	Stage     string
	EventType string
	// MinLevel drops entries below debug, info, warn or error.
	MinLevel string
}

var levelRank = map[string]int{"debug": 0, "info": 1, "warn": 2, "warning": 2, "error": 3}

// Match reports whether e passes the filter.
func (f Filter) Match(e Entry) bool {
	if f.RunID != "" && !strings.HasPrefix(e.RunID, f.RunID) {
		return false
	}
	if f.Movie != "" && !strings.EqualFold(e.Movie, f.Movie) {
		return false
	}
	if f.Stage != "" && e.Stage != f.Stage {
		return false
	}
	if f.EventType != "" && e.EventType != f.EventType {
		return false
	}
	if f.MinLevel != "" {
		floor, ok := levelRank[strings.ToLower(f.MinLevel)]
		if ok && levelRank[strings.ToLower(e.Level)] < floor {
			return false
		}
	}
	return true
}

// Select parses lines and keeps the entries f matches. Unparseable lines
// are dropped.
func Select(lines []string, f Filter) []Entry {
	var out []Entry
	for _, line := range lines {
		entry, ok := ParseEntry(line)
		if !ok || !f.Match(entry) {
			continue
		}
		out = append(out, entry)
	}
	return out
}

// Format renders e as a single console line.
func (e Entry) Format() string {
	var b strings.Builder
	if !e.Time.IsZero() {
		b.WriteString(e.Time.Local().Format("2006-01-02 15:04:05"))
		b.WriteByte(' ')
	}
	b.WriteString(strings.ToUpper(e.Level))
	if e.Component != "" {
		fmt.Fprintf(&b, " [%s]", e.Component)
	}
	switch {
	case e.Movie != "" && e.Stage != "":
		fmt.Fprintf(&b, " %s (%s)", e.Movie, e.Stage)
	case e.Movie != "":
		b.WriteString(" " + e.Movie)
	case e.Stage != "":
		fmt.Fprintf(&b, " (%s)", e.Stage)
	}
	b.WriteString(": " + e.Message)

	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, e.Fields[k])
	}
	return b.String()
}
