package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Form is the editable state of one admin entity, keyed by wire field name.
type Form map[string]any

func (f Form) String(k string) string {
	switch v := f[k].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func (f Form) Strings(k string) []string {
	switch v := f[k].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, x := range v {
			if s, ok := x.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func (f Form) Float(k string) (float64, bool) {
	switch v := f[k].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		x, err := v.Float64()
		return x, err == nil
	case string:
		x, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return x, err == nil
	}
	return 0, false
}

func (f Form) Bool(k string) bool {
	b, _ := f[k].(bool)
	return b
}

func (f Form) Localized(attr string) Localized {
	var v Localized
	for _, l := range Locales {
		v.Set(l, f.String(l.Field(attr)))
	}
	return v
}

func (f Form) SetLocalized(attr string, v Localized) {
	for _, l := range Locales {
		f[l.Field(attr)] = v.Get(l)
	}
}

// LocalePresence reports which locales of attr carry content.
func (f Form) LocalePresence(attr string) []Locale { return f.Localized(attr).Present() }

// ID extracts the entity id as a path segment.
func (f Form) ID() string { return f.String("id") }

// MediaID reads the id of an embedded media reference such as {"media": {"id": "..."}}.
func (f Form) MediaID(k string) string {
	switch v := f[k].(type) {
	case map[string]any:
		return Form(v).String("id")
	case []any:
		if len(v) > 0 {
			if m, ok := v[0].(map[string]any); ok {
				return Form(m).String("id")
			}
		}
	}
	return ""
}

// MediaIDs reads every id of a media list such as {"images": [{"id": ...}]}.
func (f Form) MediaIDs(k string) []string {
	list, _ := f[k].([]any)
	out := make([]string, 0, len(list))
	for _, x := range list {
		if m, ok := x.(map[string]any); ok {
			if id := Form(m).String("id"); id != "" {
				out = append(out, id)
			}
		}
	}
	return out
}

func (f Form) Clone() Form {
	out := make(Form, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}
