package middleware

import (
	"context"
	"net/http"
	"strings"

	"golang.org/x/text/language"
)

type localeContextKey struct{}

var LocaleKey = localeContextKey{}

// I18N resolves the response locale from X-Locale, then Accept-Language,
// matched against the supported tags. The first supported tag is the
// fallback when nothing matches.
func I18N(defaultLocale string, supported []language.Tag) func(http.Handler) http.Handler {
	if len(supported) == 0 {
		supported = []language.Tag{language.English}
	}
	fallback := normalizeDefault(defaultLocale, supported)
	matcher := language.NewMatcher(supported)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			locale := detectLocale(r, matcher, supported, fallback)
			w.Header().Set("Content-Language", locale)
			ctx := context.WithValue(r.Context(), LocaleKey, locale)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func detectLocale(r *http.Request, matcher language.Matcher, supported []language.Tag, fallback string) string {
	if v := strings.TrimSpace(r.Header.Get("X-Locale")); v != "" {
		if locale, ok := match(matcher, supported, v); ok {
			return locale
		}
	}
	if v := strings.TrimSpace(r.Header.Get("Accept-Language")); v != "" {
		tags, _, err := language.ParseAcceptLanguage(v)
		if err == nil && len(tags) > 0 {
			if _, idx, conf := matcher.Match(tags...); conf != language.No {
				return base(supported[idx])
			}
		}
	}
	return fallback
}

func match(matcher language.Matcher, supported []language.Tag, raw string) (string, bool) {
	tag, err := language.Parse(raw)
	if err != nil {
		return "", false
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return "", false
	}
	return base(supported[idx]), true
}

func normalizeDefault(locale string, supported []language.Tag) string {
	if locale != "" {
		if tag, err := language.Parse(locale); err == nil {
			for _, s := range supported {
				if base(s) == base(tag) {
					return base(s)
				}
			}
		}
	}
	return base(supported[0])
}

func base(tag language.Tag) string {
	b, _ := tag.Base()
	return b.String()
}

func LocaleFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(LocaleKey).(string); ok {
		return v
	}
	return "en"
}
