package domain

import "strings"

type Locale string

const (
	LocaleUZ   Locale = "uz"
	LocaleRU   Locale = "ru"
	LocaleEN   Locale = "en"
	LocaleTurk Locale = "turk"
)

// Locales is the canonical order, which is also the fallback order.
var Locales = []Locale{LocaleUZ, LocaleRU, LocaleEN, LocaleTurk}

// ParseLocale accepts the wire suffixes plus "tr" for Turkish.
// Unknown values yield uz and false.
func ParseLocale(s string) (Locale, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "uz":
		return LocaleUZ, true
	case "ru":
		return LocaleRU, true
	case "en":
		return LocaleEN, true
	case "turk", "tr":
		return LocaleTurk, true
	}
	return LocaleUZ, false
}

// Field returns the wire name of attr for this locale, e.g. title_ru.
func (l Locale) Field(attr string) string { return attr + "_" + string(l) }

// Localized holds the four variants of one translatable attribute.
type Localized struct {
	UZ   string `json:"uz,omitempty"`
	RU   string `json:"ru,omitempty"`
	EN   string `json:"en,omitempty"`
	Turk string `json:"turk,omitempty"`
}

func (v Localized) Get(l Locale) string {
	switch l {
	case LocaleUZ:
		return v.UZ
	case LocaleRU:
		return v.RU
	case LocaleEN:
		return v.EN
	case LocaleTurk:
		return v.Turk
	}
	return ""
}

func (v *Localized) Set(l Locale, s string) {
	switch l {
	case LocaleUZ:
		v.UZ = s
	case LocaleRU:
		v.RU = s
	case LocaleEN:
		v.EN = s
	case LocaleTurk:
		v.Turk = s
	}
}

// Resolve returns the active locale's text, else the first non-empty
// variant in uz, ru, en, turk order, else placeholder.
func (v Localized) Resolve(l Locale, placeholder string) string {
	if s := v.Get(l); strings.TrimSpace(s) != "" {
		return s
	}
	for _, fb := range Locales {
		if s := v.Get(fb); strings.TrimSpace(s) != "" {
			return s
		}
	}
	return placeholder
}

// Present lists the locales with non-empty content.
func (v Localized) Present() []Locale {
	out := make([]Locale, 0, len(Locales))
	for _, l := range Locales {
		if strings.TrimSpace(v.Get(l)) != "" {
			out = append(out, l)
		}
	}
	return out
}

func (v Localized) Empty() bool { return len(v.Present()) == 0 }

// LocalizedList is the list-valued counterpart used for tour cities.
type LocalizedList struct {
	UZ   []string `json:"uz,omitempty"`
	RU   []string `json:"ru,omitempty"`
	EN   []string `json:"en,omitempty"`
	Turk []string `json:"turk,omitempty"`
}

func (v LocalizedList) Get(l Locale) []string {
	switch l {
	case LocaleUZ:
		return v.UZ
	case LocaleRU:
		return v.RU
	case LocaleEN:
		return v.EN
	case LocaleTurk:
		return v.Turk
	}
	return nil
}

func (v LocalizedList) Resolve(l Locale) []string {
	if s := v.Get(l); len(s) > 0 {
		return s
	}
	for _, fb := range Locales {
		if s := v.Get(fb); len(s) > 0 {
			return s
		}
	}
	return nil
}
