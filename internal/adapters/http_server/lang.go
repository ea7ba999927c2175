package httpserver

import (
	"net/http"

	"golang.org/x/text/language"

	"hotel_agency/internal/domain"
)

const langCookie = "app_lang"

// supported is index-aligned with domain.Locales.
var supported = []language.Tag{language.Uzbek, language.Russian, language.English, language.Turkish}

var matcher = language.NewMatcher(supported)

// resolveLocale picks the response locale: ?lang (remembered in a cookie),
// then the cookie, then Accept-Language, then def.
func resolveLocale(w http.ResponseWriter, r *http.Request, def domain.Locale) domain.Locale {
	l := pickLocale(w, r, def)
	noteOf(r).setLocale(l)
	return l
}

func pickLocale(w http.ResponseWriter, r *http.Request, def domain.Locale) domain.Locale {
	if q := r.URL.Query().Get("lang"); q != "" {
		if l, ok := domain.ParseLocale(q); ok {
			http.SetCookie(w, &http.Cookie{
				Name: langCookie, Value: string(l), Path: "/",
				MaxAge: 365 * 24 * 3600, SameSite: http.SameSiteLaxMode,
			})
			return l
		}
	}
	if c, err := r.Cookie(langCookie); err == nil {
		if l, ok := domain.ParseLocale(c.Value); ok {
			return l
		}
	}
	if al := r.Header.Get("Accept-Language"); al != "" {
		if tags, _, err := language.ParseAcceptLanguage(al); err == nil && len(tags) > 0 {
			if _, idx, conf := matcher.Match(tags...); conf != language.No {
				return domain.Locales[idx]
			}
		}
	}
	return def
}

// contentLanguage is the BCP 47 form of l.
func contentLanguage(l domain.Locale) string {
	for i, x := range domain.Locales {
		if x == l {
			return supported[i].String()
		}
	}
	return string(l)
}
