// Package filtering holds the built-in rule stages evaluated against each download event.
package filtering

import (
	"fmt"
	"strings"
	"variaredirect/internal/domain/consts"
	"variaredirect/internal/domain/errs"
	"variaredirect/internal/domain/logger"
	"variaredirect/internal/models"
	"variaredirect/internal/parsing"

	"github.com/samber/lo"
)

// Stage names a built-in rule.
type Stage string

// Stages, in evaluation order.
const (
	StageEnabled   Stage = "enabled"
	StageURL       Stage = "url"
	StageDomain    Stage = "domain"
	StageExtension Stage = "extension"
	StageSize      Stage = "size"
)

// Verdict is the outcome of the filter chain.
type Verdict struct {
	Proceed bool
	Stage   Stage  // Stage that rejected, empty on proceed.
	Reason  string // Human readable rejection reason.
	Err     error  // Wraps errs.ErrInvalidURL or errs.ErrPolicyRejected.
}

// stageFunc returns a non-nil verdict to reject.
type stageFunc func(ev *models.DownloadEvent, s *models.Settings) *Verdict

var stages = []struct {
	name Stage
	fn   stageFunc
}{
	{StageEnabled, checkEnabled},
	{StageURL, checkURL},
	{StageDomain, checkDomain},
	{StageExtension, checkExtension},
	{StageSize, checkSize},
}

// Evaluate runs the stages in order, stopping at the first rejection.
//
// Neither the event nor the settings are modified.
func Evaluate(ev models.DownloadEvent, s models.Settings) Verdict {
	for _, st := range stages {
		if v := st.fn(&ev, &s); v != nil {
			v.Stage = st.name
			logger.Pl.D(2, "Download %q rejected at stage %q: %s", ev.ID, st.name, v.Reason)
			return *v
		}
	}
	return Verdict{Proceed: true}
}

// ******************************** Stages ***************************************************************************************

func checkEnabled(_ *models.DownloadEvent, s *models.Settings) *Verdict {
	if !s.Enabled {
		return reject(errs.ErrPolicyRejected, "redirection is disabled")
	}
	return nil
}

func checkURL(ev *models.DownloadEvent, _ *models.Settings) *Verdict {
	if _, ok := parsing.ParseHTTPURL(ev.URL); !ok {
		return reject(errs.ErrInvalidURL, fmt.Sprintf("%q is not an http(s) URL", ev.URL))
	}
	return nil
}

func checkDomain(ev *models.DownloadEvent, s *models.Settings) *Verdict {
	domain := parsing.PolicyDomain(ev.Referrer, ev.URL)

	switch s.FilterMode {
	case models.FilterModeAllowlist:
		if !DomainListed(domain, s.AllowList, s.MatchSubdomains) {
			return reject(errs.ErrPolicyRejected, fmt.Sprintf("domain %q is not in the allow list", domain))
		}
	default:
		if DomainListed(domain, s.BlockList, s.MatchSubdomains) {
			return reject(errs.ErrPolicyRejected, fmt.Sprintf("domain %q is in the block list", domain))
		}
	}
	return nil
}

func checkExtension(ev *models.DownloadEvent, s *models.Settings) *Verdict {
	ext := parsing.Extension(ev.Filename)
	if ext == "" {
		return nil
	}
	if ExtensionListed(ext, s.DisallowedExtensions) {
		return reject(errs.ErrPolicyRejected, fmt.Sprintf("extension %q is disallowed", ext))
	}
	return nil
}

func checkSize(ev *models.DownloadEvent, s *models.Settings) *Verdict {
	if ev.TotalBytes <= 0 || s.MinDownloadSize <= 0 {
		return nil
	}
	minBytes := s.MinDownloadSize * consts.MiB
	if float64(ev.TotalBytes) < minBytes {
		return reject(errs.ErrPolicyRejected, fmt.Sprintf("size %d bytes is below the %.2f MiB minimum", ev.TotalBytes, s.MinDownloadSize))
	}
	return nil
}

// ******************************** Helpers ***************************************************************************************

// DomainListed reports whether domain is in list.
//
// With matchSubdomains, the registrable domain (eTLD+1) is checked as well.
func DomainListed(domain string, list []string, matchSubdomains bool) bool {
	domain = strings.ToLower(domain)
	if domain == "" {
		return false
	}
	normalized := lo.Map(list, func(d string, _ int) string { return parsing.NormalizeDomain(d) })

	if lo.Contains(normalized, domain) {
		return true
	}
	if !matchSubdomains {
		return false
	}
	base := parsing.BaseDomain(domain)
	return base != domain && lo.Contains(normalized, base)
}

// ExtensionListed reports whether the dot-prefixed ext is in list, ignoring case.
func ExtensionListed(ext string, list []string) bool {
	ext = parsing.NormalizeExtension(ext)
	return lo.SomeBy(list, func(e string) bool {
		return parsing.NormalizeExtension(e) == ext
	})
}

func reject(kind error, reason string) *Verdict {
	return &Verdict{
		Reason: reason,
		Err:    fmt.Errorf("%w: %s", kind, reason),
	}
}
