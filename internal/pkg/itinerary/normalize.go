package itinerary

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
)

// NormalizePlan coerces a model-generated plan payload into a Document.
// Generated JSON arrives in one of three shapes: a bare array of days, an
// object wrapping an array under some property, or a single day object.
// Field values that arrive as nested objects or numbers are flattened to
// text rather than rejected.
func NormalizePlan(raw []byte) (Document, error) {
	var v any
	if err := sonic.Unmarshal(raw, &v); err != nil {
		return Document{}, fmt.Errorf("plan is not valid JSON: %w", err)
	}

	entries, err := planEntries(v)
	if err != nil {
		return Document{}, err
	}
	if len(entries) == 0 {
		return Document{}, fmt.Errorf("plan contains no days")
	}

	doc := Document{Days: make([]Day, 0, len(entries))}
	for _, e := range entries {
		m, ok := e.(map[string]any)
		if !ok {
			return Document{}, fmt.Errorf("plan day is %T, want object", e)
		}
		doc.Days = append(doc.Days, coerceDay(m))
	}
	doc.Renumber()
	return doc, nil
}

func planEntries(v any) ([]any, error) {
	switch t := v.(type) {
	case []any:
		return t, nil
	case map[string]any:
		// An object wrapping the day list under some property, e.g.
		// {"days": [...]} or {"itinerary": [...]}. Scan keys in stable
		// order and take the first array value.
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if arr, ok := t[k].([]any); ok {
				return arr, nil
			}
		}
		// No array property: treat the object itself as a single day.
		return []any{v}, nil
	default:
		return nil, fmt.Errorf("plan is %T, want array or object", v)
	}
}

func coerceDay(m map[string]any) Day {
	d := newDay()
	if id := coerceString(m["id"]); id != "" {
		d.ID = id
	} else {
		d.ID = uuid.NewString()
	}
	d.Accommodation = coerceString(m["accommodation"])
	d.Transportation = coerceString(m["transportation"])
	d.Budget = coerceString(m["budget"])
	d.Activities = coerceActivities(m["activities"])
	if meals, ok := m["meals"].(map[string]any); ok {
		d.Meals = Meals{
			Breakfast: coerceString(meals["breakfast"]),
			Lunch:     coerceString(meals["lunch"]),
			Dinner:    coerceString(meals["dinner"]),
		}
	}
	return d
}

func coerceActivities(v any) []string {
	switch t := v.(type) {
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s := coerceString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		if t == "" {
			return []string{}
		}
		return []string{t}
	default:
		return []string{}
	}
}

// coerceString flattens any scalar or nested value to display text.
func coerceString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			if s := coerceString(t[k]); s != "" {
				parts = append(parts, fmt.Sprintf("%s: %s", k, s))
			}
		}
		return strings.Join(parts, "; ")
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			if s := coerceString(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprintf("%v", t)
	}
}
