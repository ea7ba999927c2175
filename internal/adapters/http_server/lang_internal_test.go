package httpserver

import (
	"net/http/httptest"
	"testing"

	"hotel_agency/internal/domain"
)

func TestResolveLocale(t *testing.T) {
	cases := []struct {
		name, query, cookie, accept string
		want                        domain.Locale
	}{
		{"default", "", "", "", domain.LocaleEN},
		{"query", "?lang=tr", "", "ru", domain.LocaleTurk},
		{"bad query falls through", "?lang=de", "ru", "", domain.LocaleRU},
		{"cookie", "", "uz", "en", domain.LocaleUZ},
		{"accept-language", "", "", "ru-RU,en;q=0.5", domain.LocaleRU},
		{"accept-language regional", "", "", "uz-Latn-UZ", domain.LocaleUZ},
		{"unsupported accept-language", "", "", "ja", domain.LocaleEN},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/v1/carousel"+tc.query, nil)
			if tc.cookie != "" {
				r.Header.Set("Cookie", langCookie+"="+tc.cookie)
			}
			if tc.accept != "" {
				r.Header.Set("Accept-Language", tc.accept)
			}
			w := httptest.NewRecorder()
			if got := resolveLocale(w, r, domain.LocaleEN); got != tc.want {
				t.Fatalf("got %s, want %s", got, tc.want)
			}
		})
	}
}

func TestContentLanguage(t *testing.T) {
	if contentLanguage(domain.LocaleTurk) != "tr" || contentLanguage(domain.LocaleUZ) != "uz" {
		t.Fatalf("content language tags")
	}
}
