package cfg

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"
	"variaredirect/internal/models"
	"variaredirect/internal/probe"

	"github.com/pterm/pterm"
)

// printJSON writes v as indented JSON to stdout.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printDocument renders a settings document as a key/value table.
func printDocument(doc map[string]any) {
	pterm.DefaultTable.WithHasHeader().WithData(documentRows(doc)).Render()
}

// documentRows returns table rows for doc in settings key order.
func documentRows(doc map[string]any) pterm.TableData {
	rows := pterm.TableData{{"Key", "Value"}}
	for _, k := range models.SettingsKeys {
		v, ok := doc[k]
		if !ok {
			continue
		}
		rows = append(rows, []string{k, displayValue(v)})
	}

	// Keys outside the known set are listed last.
	var extra []string
	for k := range doc {
		if !slices.Contains(models.SettingsKeys, k) {
			extra = append(extra, k)
		}
	}
	slices.Sort(extra)
	for _, k := range extra {
		rows = append(rows, []string{k, displayValue(doc[k])})
	}
	return rows
}

// displayValue renders a document value for a table cell.
func displayValue(v any) string {
	switch t := v.(type) {
	case string:
		if t == "" {
			return "-"
		}
		if strings.Contains(t, "\n") {
			return fmt.Sprintf("(%d lines)", strings.Count(t, "\n")+1)
		}
		return t
	case nil:
		return "-"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

// printStatus renders a connectivity check.
func printStatus(st probe.Status) {
	rows := pterm.TableData{{"Property", "Value"}}
	rows = append(rows, []string{"RPC URL", orDash(st.RPCURL)})
	rows = append(rows, []string{"Connected", fmt.Sprint(st.Connected)})
	rows = append(rows, []string{"Version", orDash(st.Version)})
	rows = append(rows, []string{"Error", orDash(st.Error)})
	if !st.CheckedAt.IsZero() {
		rows = append(rows, []string{"Checked At", st.CheckedAt.Format(time.RFC3339)})
	}
	pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
}

// printOutcome renders the result of handling one download.
func printOutcome(out models.Outcome) {
	switch out.Action {
	case models.ActionRedirected:
		pterm.Success.Printfln("Redirected to Aria2 (gid %s)", out.GID)
	case models.ActionSkipped:
		pterm.Info.Printfln("Skipped: %s", orDash(out.Reason))
	default:
		pterm.Error.Printfln("Failed (%s): %s", orDash(out.Kind), out.Reason)
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
