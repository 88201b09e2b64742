package cfg

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"variaredirect/internal/contracts"
	"variaredirect/internal/domain/consts"
	"variaredirect/internal/models"
	"variaredirect/internal/sandbox"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// filterCmds is the entrypoint for initializing custom filter commands.
func filterCmds(ctx context.Context, s contracts.Store) *cobra.Command {
	filterCmd := &cobra.Command{
		Use:   "filter",
		Short: "Custom filter commands",
		Long:  "Test, check and browse custom filter scripts.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return errors.New("please specify a subcommand. Use --help to see available subcommands")
		},
	}

	filterCmd.AddCommand(testFilterCmd(ctx, s))
	filterCmd.AddCommand(lintFilterCmd(ctx, s))
	filterCmd.AddCommand(examplesCmd())

	return filterCmd
}

// scriptSource resolves a script from --file, --script, or the stored setting.
func scriptSource(ctx context.Context, s contracts.Store, file, script string) (string, error) {
	switch {
	case file != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return "", err
		}
		return string(b), nil
	case script != "":
		return script, nil
	}
	st, err := s.SettingsStore().GetSettings(ctx)
	if err != nil {
		return "", err
	}
	return st.CustomFilterScript, nil
}

// testFilterCmd runs a script against sample download data.
func testFilterCmd(ctx context.Context, s contracts.Store) *cobra.Command {
	var (
		file, script string
		view         = models.SampleFilterView
	)

	cmd := &cobra.Command{
		Use:   "test",
		Short: "Run a filter script against sample data",
		Long:  "Run a filter script (from --file, --script or the stored setting) against sample download data.",
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := scriptSource(ctx, s, file, script)
			if err != nil {
				return err
			}

			a := newApp(ctx, s, true)
			res := a.pipeline.TestCustomFilter(ctx, models.FilterTestRequest{
				Type:     consts.MsgTestCustomFilter,
				Script:   src,
				TestData: &view,
			})
			if !res.Success {
				pterm.Error.Println(res.Error)
				return fmt.Errorf("filter test failed")
			}
			printFilterResult(res.Result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Script file")
	cmd.Flags().StringVar(&script, "script", "", "Script source")
	cmd.Flags().StringVar(&view.URL, "url", view.URL, "Sample download URL")
	cmd.Flags().StringVar(&view.Filename, "filename", view.Filename, "Sample filename")
	cmd.Flags().Int64Var(&view.FileSize, "size", view.FileSize, "Sample size in bytes")
	cmd.Flags().StringVar(&view.Mime, "mime", view.Mime, "Sample MIME type")
	cmd.Flags().StringVar(&view.Referrer, "referrer", view.Referrer, "Sample referrer")
	return cmd
}

// lintFilterCmd reports common mistakes in a script without running it.
func lintFilterCmd(ctx context.Context, s contracts.Store) *cobra.Command {
	var file, script string

	cmd := &cobra.Command{
		Use:   "lint",
		Short: "Check a filter script for common mistakes",
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := scriptSource(ctx, s, file, script)
			if err != nil {
				return err
			}
			problems := sandbox.Lint(src)
			if len(problems) == 0 {
				pterm.Success.Println("No problems found")
				return nil
			}
			for _, p := range problems {
				pterm.Warning.Println(p)
			}
			return fmt.Errorf("%d problem(s) found", len(problems))
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Script file")
	cmd.Flags().StringVar(&script, "script", "", "Script source")
	return cmd
}

// examplesCmd lists the bundled example scripts, or prints one.
func examplesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "examples [number]",
		Short: "List example filter scripts",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n < 1 || n > len(sandbox.Examples) {
					return fmt.Errorf("example number must be between 1 and %d", len(sandbox.Examples))
				}
				fmt.Println(sandbox.Examples[n-1].Code)
				return nil
			}

			rows := pterm.TableData{{"#", "Title", "Description"}}
			for i, ex := range sandbox.Examples {
				rows = append(rows, []string{strconv.Itoa(i + 1), ex.Title, ex.Description})
			}
			return pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
		},
	}
}

// printFilterResult renders a filter result.
func printFilterResult(res *models.FilterResult) {
	rows := pterm.TableData{{"Field", "Value"}}
	rows = append(rows, []string{"skip", strconv.FormatBool(res.Skip)})
	if res.Dir != nil {
		rows = append(rows, []string{"dir", *res.Dir})
	}
	if res.Filename != nil {
		rows = append(rows, []string{"filename", *res.Filename})
	}
	pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
}
