package parsing

import (
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// ParseHTTPURL parses raw and returns it only if it is an absolute http(s) URL with a host.
func ParseHTTPURL(raw string) (*url.URL, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, false
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return nil, false
	}
	if u.Hostname() == "" {
		return nil, false
	}
	return u, true
}

// Hostname returns the lowercased hostname of raw, or "" if it is not a parsable URL with a host.
func Hostname(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

// PolicyDomain returns the domain used by blocklist/allowlist checks.
//
// The referrer's hostname wins when the referrer is a URL with a host,
// otherwise the download URL's hostname is used.
func PolicyDomain(referrer, downloadURL string) string {
	if referrer != "" {
		if h := Hostname(referrer); h != "" {
			return h
		}
	}
	return Hostname(downloadURL)
}

// BaseDomain extracts the eTLD+1 (effective top-level domain + 1 label).
//
// e.g., m.google.com -> google.com, www.bbc.co.uk -> bbc.co.uk.
func BaseDomain(rawDomain string) string {
	if domain, err := publicsuffix.EffectiveTLDPlusOne(rawDomain); err == nil {
		return strings.ToLower(domain)
	}
	return strings.ToLower(rawDomain)
}

// NormalizeDomain trims and lowercases a domain list entry.
//
// Entries pasted as URLs are reduced to their hostname.
func NormalizeDomain(entry string) string {
	entry = strings.ToLower(strings.TrimSpace(entry))
	if strings.Contains(entry, "://") {
		if h := Hostname(entry); h != "" {
			return h
		}
	}
	return strings.TrimSuffix(entry, ".")
}

// Basename strips any path prefix from a platform filename, honouring both / and \ separators.
func Basename(filename string) string {
	if i := strings.LastIndexAny(filename, `/\`); i != -1 {
		return filename[i+1:]
	}
	return filename
}

// Extension returns the lowercased, dot-prefixed extension of filename's basename, or "" if it has none.
func Extension(filename string) string {
	base := strings.ToLower(Basename(filename))
	i := strings.LastIndex(base, ".")
	if i == -1 || i == len(base)-1 {
		return ""
	}
	return base[i:]
}

// NormalizeExtension lowercases an extension and ensures the leading dot.
func NormalizeExtension(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
