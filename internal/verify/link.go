package verify

import (
	"net/url"
	"strings"
)

// SplitLink extracts a tweet id from a status link such as
// https://x.com/alice/status/12345?s=20. Without a "status" segment the last
// non-empty path segment is returned. Malformed input falls back to plain splitting.
func SplitLink(link string) string {
	link = strings.TrimSpace(link)
	if link == "" {
		return ""
	}

	u, err := url.Parse(link)
	if err != nil {
		return naiveSplit(link)
	}
	return fromSegments(strings.Split(u.Path, "/"))
}

func naiveSplit(link string) string {
	if i := strings.IndexAny(link, "?#"); i >= 0 {
		link = link[:i]
	}
	return fromSegments(strings.Split(link, "/"))
}

func fromSegments(segments []string) string {
	for i, s := range segments {
		if s == "status" && i+1 < len(segments) && segments[i+1] != "" {
			return stripQuery(segments[i+1])
		}
	}
	for i := len(segments) - 1; i >= 0; i-- {
		if segments[i] != "" {
			return stripQuery(segments[i])
		}
	}
	return ""
}

func stripQuery(s string) string {
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		return s[:i]
	}
	return s
}
