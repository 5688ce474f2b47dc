package source

import (
	"regexp"
	"strings"
)

// BuildPattern returns a URL regexp for domain and path: the scheme is
// optional and any number of subdomains may precede the domain. path is a
// regexp fragment and may use named groups.
func BuildPattern(domain, path string) *regexp.Regexp {
	domain = strings.TrimSuffix(regexp.QuoteMeta(domain), "/")
	sep := "/"
	if strings.HasPrefix(path, "/") {
		sep = ""
	}
	return regexp.MustCompile(`^(?:https?://)?(?:[a-zA-Z0-9-]+\.)*` + domain + sep + path)
}

// Group returns the named capture group of re in s, or "" when re does not
// match or has no such group.
func Group(re *regexp.Regexp, s, name string) string {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	i := re.SubexpIndex(name)
	if i < 0 {
		return ""
	}
	return m[i]
}
