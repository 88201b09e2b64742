package session

import (
	"context"
	"fmt"
	"strings"
	"variaredirect/internal/domain/logger"
	"variaredirect/internal/parsing"

	"github.com/browserutils/kooky"
	// Use all browsers for Kooky:
	_ "github.com/browserutils/kooky/browser/all"
)

// CookieSource reads cookies for a domain from somewhere outside the daemon.
type CookieSource interface {
	CookiesFor(ctx context.Context, domain string) ([]*kooky.Cookie, error)
}

// BrowserCookies reads cookies from every local browser profile kooky can find.
type BrowserCookies struct{}

// CookiesFor reads valid cookies matching domain from all cookie stores.
func (BrowserCookies) CookiesFor(ctx context.Context, domain string) ([]*kooky.Cookie, error) {
	stores := kooky.FindAllCookieStores()
	defer func() {
		for _, store := range stores {
			if err := store.Close(); err != nil {
				logger.Pl.D(3, "Could not close cookie store for %s: %v", store.Browser(), err)
			}
		}
	}()

	var out []*kooky.Cookie
	for _, store := range stores {
		if err := ctx.Err(); err != nil {
			return out, err
		}

		browserName := store.Browser()
		logger.Pl.D(2, "Attempting to read cookies from %s", browserName)

		cookies, err := store.ReadCookies(kooky.Valid, kooky.Domain(domain))
		if err != nil {
			logger.Pl.D(2, "Failed to read cookies from %s: %v", browserName, err)
			continue
		}
		if len(cookies) > 0 {
			logger.Pl.I("Read %d cookies from %s for domain %s", len(cookies), browserName, domain)
			out = append(out, cookies...)
		}
	}
	return out, nil
}

// ImportCookie reads browser cookies for pageURL, renders them as a Cookie header
// value and stores it as the session's temporary cookie.
func (s *Store) ImportCookie(ctx context.Context, src CookieSource, pageURL string) (string, error) {
	u, ok := parsing.ParseHTTPURL(pageURL)
	if !ok {
		return "", fmt.Errorf("cannot import cookies for %q: not an http(s) URL", pageURL)
	}
	host := parsing.NormalizeDomain(u.Hostname())
	domain := parsing.BaseDomain(host)

	cookies, err := src.CookiesFor(ctx, domain)
	if err != nil {
		return "", fmt.Errorf("failed reading cookies for %q: %w", domain, err)
	}

	header := CookieHeader(cookies, host)
	if header == "" {
		return "", fmt.Errorf("no cookies found for %q", host)
	}
	s.SetTempCookie(header)
	s.SetCurrentTabDomain(host)
	return header, nil
}

// CookieHeader renders "name=value; ..." for cookies that apply to host.
// Later duplicates of a name are dropped.
func CookieHeader(cookies []*kooky.Cookie, host string) string {
	seen := make(map[string]bool, len(cookies))
	parts := make([]string, 0, len(cookies))
	for _, c := range cookies {
		if c == nil || c.Name == "" || seen[c.Name] {
			continue
		}
		if !domainMatches(host, c.Domain) {
			continue
		}
		seen[c.Name] = true
		parts = append(parts, c.Name+"="+c.Value)
	}
	return strings.Join(parts, "; ")
}

// domainMatches reports whether a cookie domain applies to host.
func domainMatches(host, cookieDomain string) bool {
	d := strings.TrimPrefix(strings.ToLower(cookieDomain), ".")
	if d == "" {
		return true
	}
	return host == d || strings.HasSuffix(host, "."+d)
}
