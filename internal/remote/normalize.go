package remote

import (
	"regexp"
	"strings"
	"unicode"
)

// Users paste backend URLs from emails, chat messages and the provider's
// management console, so the raw input arrives in several shapes:
//
//	https://abcdefghijklmnopqrst.supabase.co        (canonical)
//	https://supabase.com/dashboard/project/<ref>/.. (console URL)
//	abcdefghijklmnopqrst                            (bare project ref)
//	abcdefghijklmnopqrst.supabase.co                (missing scheme)
//	https://https://abcdefghijklmnopqrst.supabase.co (double-pasted scheme)
//
// NormalizeURL rewrites all of them into the canonical https form. The
// transform is idempotent: normalizing an already-normalized URL is a no-op.

var (
	dashboardRe  = regexp.MustCompile(`(?i)supabase\.com/dashboard/project/([a-z0-9-]+)`)
	projectRefRe = regexp.MustCompile(`^[a-z0-9]{16,}$`)
)

// NormalizeURL canonicalizes a user-supplied backend URL.
func NormalizeURL(raw string) string {
	url := stripInvisible(raw)
	if url == "" {
		return ""
	}

	// Direct-connection DSNs bypass the rewrites below.
	if strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://") {
		return strings.TrimSuffix(url, "/")
	}

	// Collapse an accidentally doubled protocol, keeping the innermost one.
	url = collapseScheme(url)

	// Management-console URL containing the project ref segment.
	if m := dashboardRe.FindStringSubmatch(url); m != nil {
		return "https://" + m[1] + ".supabase.co"
	}

	// Bare project ref.
	if projectRefRe.MatchString(url) {
		return "https://" + url + ".supabase.co"
	}

	// Missing scheme.
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = "https://" + url
	}

	return strings.TrimSuffix(url, "/")
}

// collapseScheme removes repeated leading schemes, keeping the innermost.
// An explicit single scheme (http or https) is left alone: only the pasted
// forms without a usable scheme are canonicalized to https elsewhere.
func collapseScheme(url string) string {
	for {
		rest, ok := trimScheme(url)
		if !ok {
			return url
		}
		if _, ok2 := trimScheme(rest); ok2 {
			// Two schemes in a row: drop the outer one.
			url = rest
			continue
		}
		return url
	}
}

func trimScheme(url string) (string, bool) {
	if strings.HasPrefix(url, "https://") {
		return url[len("https://"):], true
	}
	if strings.HasPrefix(url, "http://") {
		return url[len("http://"):], true
	}
	return url, false
}

// stripInvisible removes whitespace and non-printable/invisible characters
// (zero-width spaces, BOMs, direction marks) that ride along with
// copy-pasted text.
func stripInvisible(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || !unicode.IsPrint(r) {
			return -1
		}
		switch r {
		case '\u200b', '\u200c', '\u200d', '\u2060', '\ufeff':
			return -1
		}
		return r
	}, s)
}
