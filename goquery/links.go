package goquery

import (
	"net/url"
	"strings"
)

// resolveURL resolves a relative URL against a base URL.
// Returns empty string if the href cannot be parsed.
// Fragments are stripped from the resolved URL for deduplication purposes.
func resolveURL(base *url.URL, href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	return stripFragment(base.ResolveReference(ref)).String()
}

// stripFragment returns a copy of u without its fragment.
func stripFragment(u *url.URL) *url.URL {
	c := *u
	c.Fragment = ""
	c.RawFragment = ""
	return &c
}

// isSameHost checks if the resolved URL has the same host as the base URL.
// This uses exact host matching - subdomains are considered different hosts.
func isSameHost(base *url.URL, resolved string) bool {
	u, err := url.Parse(resolved)
	if err != nil {
		return false
	}
	return u.Host == base.Host
}

// isNonHTTPLink checks if a href is a non-HTTP link that should be skipped.
func isNonHTTPLink(href string) bool {
	href = strings.ToLower(strings.TrimSpace(href))
	return strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:")
}

// isPDF reports whether the URL path points at a PDF document.
func isPDF(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return strings.HasSuffix(strings.ToLower(u.Path), ".pdf")
}

// lastSegment returns the last non-empty path segment of href.
func lastSegment(href string) string {
	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	segments := pathSegments(u.Path)
	if len(segments) == 0 {
		return ""
	}
	return segments[len(segments)-1]
}

// questionRef extracts the session and question ids from a question link.
func questionRef(href string) (sessionID, questionID string) {
	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", ""
	}
	segments := pathSegments(u.Path)

	if u.Fragment != "" && len(segments) >= 2 {
		sessionID = segments[len(segments)-1]
		questionID = u.Fragment
	} else if len(segments) >= 3 {
		sessionID = segments[1]
		questionID = segments[len(segments)-1]
	} else {
		return "", ""
	}

	// Anchors may carry the full pair id ("16.3").
	if i := strings.LastIndex(questionID, "."); i >= 0 {
		questionID = questionID[i+1:]
	}
	return sessionID, questionID
}

func pathSegments(path string) []string {
	var segments []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}
