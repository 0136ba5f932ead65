package session

import (
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/net/publicsuffix"
)

// NewJar returns an empty cookie jar that honours the public suffix list.
func NewJar() (*cookiejar.Jar, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, errors.Wrap(err, "could not create cookie jar")
	}
	return jar, nil
}

// ReadToken returns the decoded value of the named cookie as seen by u, or "".
func ReadToken(jar http.CookieJar, u *url.URL, name string) string {
	if jar == nil || u == nil {
		return ""
	}
	for _, c := range jar.Cookies(u) {
		if c.Name == name {
			return decodeComponent(c.Value)
		}
	}
	return ""
}

// ParseCookieHeader looks up name in a `document.cookie` style string.
func ParseCookieHeader(header, name string) string {
	prefix := name + "="
	for _, part := range strings.Split(header, ";") {
		part = strings.TrimSpace(part)
		if strings.HasPrefix(part, prefix) {
			return decodeComponent(part[len(prefix):])
		}
	}
	return ""
}

// SeedCookies stores every `name=value` pair of header in jar for u.
func SeedCookies(jar http.CookieJar, u *url.URL, header string) int {
	var cookies []*http.Cookie
	for _, part := range strings.Split(header, ";") {
		part = strings.TrimSpace(part)
		name, value, ok := strings.Cut(part, "=")
		if !ok || strings.TrimSpace(name) == "" {
			continue
		}
		cookies = append(cookies, &http.Cookie{
			Name:  strings.TrimSpace(name),
			Value: value,
			Path:  "/",
		})
	}
	if len(cookies) > 0 {
		jar.SetCookies(u, cookies)
	}
	return len(cookies)
}

// decodeComponent leaves '+' alone and returns the raw value when it is not
// valid percent-encoding.
func decodeComponent(v string) string {
	decoded, err := url.PathUnescape(v)
	if err != nil {
		return v
	}
	return decoded
}
