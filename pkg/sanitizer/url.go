package sanitizer

import (
	"net/url"
	"strings"
)

// NormalizeURL forces https, lowercases the host, drops a leading "www." and
// any trailing slash. Paths and query strings keep their case. Input that
// does not parse to a URL with a host yields "".
func NormalizeURL(input string) string {
	s := strings.TrimSpace(input)
	if s == "" {
		return ""
	}

	lower := strings.ToLower(s)
	switch {
	case strings.HasPrefix(lower, "https://"):
		s = s[len("https://"):]
	case strings.HasPrefix(lower, "http://"):
		s = s[len("http://"):]
	}

	u, err := url.Parse("https://" + s)
	if err != nil || u.Host == "" || strings.ContainsAny(u.Host, " \t") {
		return ""
	}

	u.Host = strings.ToLower(u.Host)
	if after, ok := strings.CutPrefix(u.Host, "www."); ok {
		u.Host = after
	}
	u.Path = strings.TrimSuffix(u.Path, "/")

	return u.String()
}
