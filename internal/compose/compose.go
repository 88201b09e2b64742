// Package compose builds the aria2 output options for a redirected download.
package compose

import (
	"strings"
	"time"
	"variaredirect/internal/models"
	"variaredirect/internal/parsing"
)

// Compose builds the addUri options for ev.
//
// The directory base is the script override, else the configured download
// directory. Date and domain subfolders are appended with forward slashes.
// Headers are left empty for the dispatcher to fill. The result depends only
// on its arguments.
func Compose(ev models.DownloadEvent, s models.Settings, override *models.FilterResult, now time.Time) models.Params {
	return models.Params{
		Out:    Filename(ev, override),
		Header: []string{},
		Dir:    Dir(ev, s, override, now),
	}
}

// Dir computes the final output directory, or "" for the manager default.
func Dir(ev models.DownloadEvent, s models.Settings, override *models.FilterResult, now time.Time) string {
	dir := s.DownloadDirectory
	if d := override.DirOverride(); d != "" {
		dir = d
	}

	if s.OrganizeByDate {
		dir = join(dir, parsing.DateFolder(now))
	}
	if s.OrganizeByDomain {
		dir = join(dir, parsing.Hostname(ev.URL))
	}
	return dir
}

// Filename returns the override filename, else the platform filename without any path prefix.
func Filename(ev models.DownloadEvent, override *models.FilterResult) string {
	if f := override.FilenameOverride(); f != "" {
		return f
	}
	return parsing.Basename(ev.Filename)
}

// join appends sub to base with a single forward slash. An empty side is dropped.
func join(base, sub string) string {
	switch {
	case sub == "":
		return base
	case base == "":
		return sub
	case strings.HasSuffix(base, "/"):
		return base + sub
	default:
		return base + "/" + sub
	}
}
