// Package stacktrace flattens Sentry event payloads into a single list of
// exceptions and a single list of stack frames.
package stacktrace

import (
	"encoding/json"

	"github.com/danielolaszy/sentry-relay/pkg/models"
)

// Defaults used when an event omits a field.
const (
	UnknownValue  = "Unknown"
	UnknownLineNo = "?"
)

const exceptionEntry = "exception"

// Flatten walks event.entries[].data.values[] and returns every exception
// and every frame in source order. Frames are not grouped by exception.
//
// Flatten never fails: missing or mistyped fields fall back to defaults and
// an event without entries yields an empty result.
func Flatten(event map[string]any) models.Stacktrace {
	st := models.Stacktrace{
		Exceptions: []models.ExceptionSummary{},
		Frames:     []models.FrameSummary{},
	}

	for _, entry := range list(event, "entries") {
		e, ok := entry.(map[string]any)
		if !ok || str(e, "type", "") != exceptionEntry {
			continue
		}

		data, _ := e["data"].(map[string]any)
		for _, value := range list(data, "values") {
			exc, _ := value.(map[string]any)

			st.Exceptions = append(st.Exceptions, models.ExceptionSummary{
				Type:   str(exc, "type", UnknownValue),
				Value:  str(exc, "value", ""),
				Module: str(exc, "module", UnknownValue),
			})

			trace, ok := exc["stacktrace"].(map[string]any)
			if !ok {
				continue
			}
			for _, frame := range list(trace, "frames") {
				f, _ := frame.(map[string]any)
				st.Frames = append(st.Frames, flattenFrame(f))
			}
		}
	}

	return st
}

// FlattenJSON decodes raw as an event and flattens it. Undecodable input
// yields an empty result.
func FlattenJSON(raw []byte) models.Stacktrace {
	var event map[string]any
	if err := json.Unmarshal(raw, &event); err != nil {
		event = nil
	}
	return Flatten(event)
}

// flattenFrame maps the event's lineNo and vars keys onto lineno and
// variables.
func flattenFrame(f map[string]any) models.FrameSummary {
	var lineNo any = UnknownLineNo
	if v, ok := f["lineNo"]; ok && v != nil {
		lineNo = v
	}

	lines := list(f, "context")
	if lines == nil {
		lines = []any{}
	}

	vars, ok := f["vars"].(map[string]any)
	if !ok {
		vars = map[string]any{}
	}

	return models.FrameSummary{
		Filename:  str(f, "filename", UnknownValue),
		Function:  str(f, "function", UnknownValue),
		LineNo:    lineNo,
		Context:   lines,
		Variables: vars,
	}
}

// str returns m[key] when it is a string, def otherwise. A nil map is safe.
func str(m map[string]any, key, def string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return def
}

// list returns m[key] when it is a JSON array, nil otherwise.
func list(m map[string]any, key string) []any {
	l, _ := m[key].([]any)
	return l
}
