package downloads

import (
	"strings"
	"variaredirect/internal/domain/consts"
	"variaredirect/internal/models"

	"github.com/samber/lo"
)

// BuildHeaders renders the header list sent with a redirect.
//
// Order is fixed: persistent headers as configured, then Referer, then Cookie.
// Empty referrer or cookie values are not sent.
func BuildHeaders(persistent []models.HeaderItem, referrer, cookie string) []string {
	kept := lo.Filter(persistent, func(h models.HeaderItem, _ int) bool {
		return strings.TrimSpace(h.Key) != ""
	})
	headers := lo.Map(kept, func(h models.HeaderItem, _ int) string {
		return renderHeader(h.Key, h.Value)
	})

	if referrer != "" {
		headers = append(headers, renderHeader(consts.HeaderReferer, referrer))
	}
	if cookie != "" {
		headers = append(headers, renderHeader(consts.HeaderCookie, cookie))
	}
	return headers
}

func renderHeader(key, value string) string {
	return key + ": " + value
}
