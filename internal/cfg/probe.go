package cfg

import (
	"context"
	"errors"
	"variaredirect/internal/contracts"

	"github.com/spf13/cobra"
)

// probeCmd checks Aria2 connectivity once.
func probeCmd(ctx context.Context, s contracts.Store) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Check the connection to Aria2",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp(ctx, s, true)
			st := a.probe.Check(ctx)
			if asJSON {
				if err := printJSON(st); err != nil {
					return err
				}
			} else {
				printStatus(st)
			}
			if !st.Connected {
				return errors.New("aria2 is not reachable")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	return cmd
}
