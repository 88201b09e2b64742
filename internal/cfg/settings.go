package cfg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"variaredirect/internal/contracts"
	"variaredirect/internal/models"
	"variaredirect/internal/parsing"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// settingsCmds is the entrypoint for initializing settings commands.
func settingsCmds(ctx context.Context, s contracts.Store) *cobra.Command {
	settingsCmd := &cobra.Command{
		Use:   "settings",
		Short: "Settings commands",
		Long:  "Show and edit the stored settings document.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return errors.New("please specify a subcommand. Use --help to see available subcommands")
		},
	}

	settingsCmd.AddCommand(showSettingsCmd(ctx, s))
	settingsCmd.AddCommand(setSettingCmd(ctx, s))
	settingsCmd.AddCommand(resetSettingsCmd(ctx, s))
	settingsCmd.AddCommand(loadSettingsCmd(ctx, s))
	settingsCmd.AddCommand(addListItemCmd(ctx, s))
	settingsCmd.AddCommand(removeListItemCmd(ctx, s))
	settingsCmd.AddCommand(importListCmd(ctx, s))

	return settingsCmd
}

// showSettingsCmd prints the settings document, optionally restricted to some keys.
func showSettingsCmd(ctx context.Context, s contracts.Store) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show [keys...]",
		Short: "Show settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := s.SettingsStore().GetDocument(ctx, args...)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(doc)
			}
			printDocument(doc)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the document as JSON")
	return cmd
}

// setSettingCmd sets a single settings key.
func setSettingCmd(ctx context.Context, s contracts.Store) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a setting",
		Long:  "Set one key. Values are read as JSON when possible (true, 2.5, [\"a\"]), otherwise as text.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp(ctx, s, true)
			after, err := a.pipeline.SetValue(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			doc, err := after.Document()
			if err != nil {
				return err
			}
			pterm.Success.Printfln("Set %s = %s", args[0], displayValue(doc[args[0]]))
			return nil
		},
	}
}

// resetSettingsCmd restores the default settings.
func resetSettingsCmd(ctx context.Context, s contracts.Store) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Restore default settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp(ctx, s, true)
			if _, err := a.pipeline.ResetSettings(ctx); err != nil {
				return err
			}
			pterm.Success.Println("Settings restored to defaults")
			return nil
		},
	}
}

// loadSettingsCmd replaces the document from a JSON file.
func loadSettingsCmd(ctx context.Context, s contracts.Store) *cobra.Command {
	return &cobra.Command{
		Use:   "load <file.json>",
		Short: "Replace settings from a JSON document",
		Long:  "Replace the whole settings document. Missing or mistyped fields take their defaults.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var doc map[string]any
			if err := json.Unmarshal(b, &doc); err != nil {
				return fmt.Errorf("settings file %q is not a JSON object: %w", args[0], err)
			}

			a := newApp(ctx, s, true)
			after, err := a.pipeline.ReplaceSettings(ctx, doc)
			if err != nil {
				return err
			}
			out, err := after.Document()
			if err != nil {
				return err
			}
			printDocument(out)
			return nil
		},
	}
}

// addListItemCmd adds an entry to a list setting.
func addListItemCmd(ctx context.Context, s contracts.Store) *cobra.Command {
	return &cobra.Command{
		Use:   "add <list> <item>",
		Short: "Add a list entry",
		Long:  "Add an entry to blockList, allowList, disallowedExtensions, or a \"Key: Value\" entry to persistentHeaders.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp(ctx, s, true)
			list, item := args[0], args[1]

			if list == models.SetPersistentHeaders {
				h, err := parseHeaderArg(item)
				if err != nil {
					return err
				}
				if _, err := a.pipeline.AddHeader(ctx, h); err != nil {
					return err
				}
				pterm.Success.Printfln("Header %q set", h.Key)
				return nil
			}

			if _, err := a.pipeline.AddListItem(ctx, list, item); err != nil {
				return err
			}
			pterm.Success.Printfln("Added %q to %s", item, list)
			return nil
		},
	}
}

// removeListItemCmd removes an entry from a list setting.
func removeListItemCmd(ctx context.Context, s contracts.Store) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <list> <item>",
		Short: "Remove a list entry",
		Long:  "Remove an entry from a list setting. For persistentHeaders give the header key.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp(ctx, s, true)
			list, item := args[0], args[1]

			var err error
			if list == models.SetPersistentHeaders {
				_, err = a.pipeline.RemoveHeader(ctx, item)
			} else {
				_, err = a.pipeline.RemoveListItem(ctx, list, item)
			}
			if err != nil {
				return err
			}
			pterm.Success.Printfln("Removed %q from %s", item, list)
			return nil
		},
	}
}

// importListCmd adds every entry of a list file to a list setting.
func importListCmd(ctx context.Context, s contracts.Store) *cobra.Command {
	return &cobra.Command{
		Use:   "import <list> <file>",
		Short: "Import list entries from a file",
		Long:  "Import one entry per line into blockList, allowList or disallowedExtensions. Lines starting with '#' are ignored.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, file := args[0], args[1]

			normalize, err := listNormalizer(list)
			if err != nil {
				return err
			}
			entries, err := parsing.NewListFileParser(file).ParseEntries(normalize)
			if err != nil {
				return fmt.Errorf("failed to read list file %q: %w", file, err)
			}
			if len(entries) == 0 {
				pterm.Warning.Printfln("No entries found in %q", file)
				return nil
			}

			a := newApp(ctx, s, true)
			_, err = a.pipeline.UpdateSettings(ctx, func(st *models.Settings) error {
				for _, e := range entries {
					if err := st.AddToList(list, e); err != nil {
						return err
					}
				}
				return nil
			})
			if err != nil {
				return err
			}
			pterm.Success.Printfln("Imported %d entries into %s", len(entries), list)
			return nil
		},
	}
}

// listNormalizer returns the entry normalization for a string list setting.
func listNormalizer(list string) (func(string) string, error) {
	switch list {
	case models.SetBlockList, models.SetAllowList:
		return parsing.NormalizeDomain, nil
	case models.SetDisallowedExtensions:
		return parsing.NormalizeExtension, nil
	}
	return nil, fmt.Errorf("%q is not an importable list (use %s, %s or %s)",
		list, models.SetBlockList, models.SetAllowList, models.SetDisallowedExtensions)
}

// parseHeaderArg parses "Key: Value".
func parseHeaderArg(arg string) (models.HeaderItem, error) {
	key, value, ok := strings.Cut(arg, ":")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return models.HeaderItem{}, fmt.Errorf("header %q should look like 'Key: Value'", arg)
	}
	return models.HeaderItem{Key: key, Value: strings.TrimSpace(value)}, nil
}
