// Package urlutil implements the three pure URL predicates/operations the
// crawler relies on: classifying absolute vs. relative URLs and resolving a
// relative URL against a base. Deliberately does not handle
// protocol-relative URLs, fragments, or query-string merging — it resolves
// only origin-anchored paths.
package urlutil

import (
	"net/url"
	"regexp"
	"strings"
)

// IsHTTPURL reports whether s begins with "http://" or "https://".
func IsHTTPURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// IsRelativeURL reports whether s is non-empty and begins with '/'.
func IsRelativeURL(s string) bool {
	return len(s) > 0 && s[0] == '/'
}

var originRe = regexp.MustCompile(`^(https?://[^/]+)`)

// Resolve joins relative against the origin of base. If base doesn't match
// `^(https?://[^/]+)`, relative is simply appended to base as-is — this is
// the literal, non-robust behavior the spec calls for, not RFC 3986
// resolution.
func Resolve(base, relative string) string {
	if m := originRe.FindString(base); m != "" {
		return m + relative
	}
	return base + relative
}

// Canonicalize produces a deterministic normal form of a URL used only as
// the frontier's visited-set dedup key: scheme and host lowercased, default
// ports dropped, trailing slash stripped (except root), fragment and query
// removed. It does not change what resolve() or a fetch target looks like —
// only what two spellings are considered "the same" URL.
func Canonicalize(u url.URL) url.URL {
	out := u
	out.Scheme = strings.ToLower(out.Scheme)
	out.Host = strings.ToLower(out.Host)

	if host, port := out.Hostname(), out.Port(); port != "" {
		if (out.Scheme == "http" && port == "80") || (out.Scheme == "https" && port == "443") {
			out.Host = host
		}
	}

	if len(out.Path) > 1 {
		out.Path = strings.TrimRight(out.Path, "/")
		if out.Path == "" {
			out.Path = "/"
		}
	}

	out.Fragment = ""
	out.RawFragment = ""
	out.RawQuery = ""
	out.ForceQuery = false

	return out
}
