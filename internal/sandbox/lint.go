package sandbox

import (
	"regexp"
	"strings"
)

var filterDeclRgx = regexp.MustCompile(`function\s+filter\s*\(\s*\w+\s*\)`)

// Lint runs quick static checks on a filter script and returns any problems found.
//
// An empty script has no problems. Lint does not execute the script.
func Lint(script string) []string {
	script = strings.TrimSpace(script)
	if script == "" {
		return nil
	}

	if !strings.Contains(script, "function filter") {
		return []string{`Script must contain a function named "filter"`}
	}

	var problems []string
	switch {
	case strings.Count(script, "{") != strings.Count(script, "}"):
		problems = append(problems, "Mismatched curly braces { }")
	case strings.Count(script, "(") != strings.Count(script, ")"):
		problems = append(problems, "Mismatched parentheses ( )")
	case !filterDeclRgx.MatchString(script):
		problems = append(problems, `Function must be declared as "function filter(download)"`)
	case !strings.Contains(script, "return"):
		problems = append(problems, "Function must contain a return statement")
	}
	return problems
}
