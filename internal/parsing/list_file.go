package parsing

import (
	"bufio"
	"os"
	"strings"
	"sync"
	"variaredirect/internal/domain/logger"
)

// ListFileParser parses list settings (domains, extensions) from a file.
type ListFileParser struct {
	Filepath string
	mu       sync.RWMutex
}

// NewListFileParser returns an instance of a ListFileParser.
func NewListFileParser(fpath string) *ListFileParser {
	return &ListFileParser{
		Filepath: fpath,
	}
}

// ParseEntries returns the deduplicated entries of the file in order of appearance.
//
// Users should put a single entry on each line in the file.
// Hashtags exclude lines (i.e. '# Comment').
func (lp *ListFileParser) ParseEntries(normalize func(string) string) ([]string, error) {
	lp.mu.RLock()
	defer lp.mu.RUnlock()

	f, err := os.Open(lp.Filepath)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := f.Close(); err != nil {
			logger.Pl.E("Failed to close file %q: %v", lp.Filepath, err)
		}
	}()

	seen := make(map[string]struct{})
	result := make([]string, 0)
	scanner := bufio.NewScanner(f)

	for scanner.Scan() {
		e := strings.TrimSpace(scanner.Text())
		if e == "" || strings.HasPrefix(e, "#") {
			continue
		}
		if normalize != nil {
			e = normalize(e)
		}
		if e == "" {
			continue
		}
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		result = append(result, e)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
