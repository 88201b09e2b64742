package parsing

import (
	"fmt"
	"time"

	"github.com/araddon/dateparse"
)

// DateFolderLayout is the layout used for date subfolders.
const DateFolderLayout = "2006-01-02"

// DateFolder returns the zero-padded YYYY-MM-DD folder name for t.
func DateFolder(t time.Time) string {
	return t.Format(DateFolderLayout)
}

// ParseDate parses a user supplied date in any common format (e.g. "March 5 2024", "2024-03-05").
func ParseDate(dateString string) (time.Time, error) {
	t, err := dateparse.ParseLocal(dateString)
	if err != nil {
		return time.Time{}, fmt.Errorf("unable to parse date %q: %w", dateString, err)
	}
	return t, nil
}
