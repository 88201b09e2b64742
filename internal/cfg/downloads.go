package cfg

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"
	"variaredirect/internal/contracts"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// downloadsCmds inspects the download history.
func downloadsCmds(ctx context.Context, s contracts.Store) *cobra.Command {
	downloadsCmd := &cobra.Command{
		Use:   "downloads",
		Short: "Download history commands",
		RunE: func(cmd *cobra.Command, args []string) error {
			return errors.New("please specify a subcommand. Use --help to see available subcommands")
		},
	}

	downloadsCmd.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Show a download record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, found, err := s.DownloadStore().GetRecord(ctx, args[0])
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("no download with id %q (redirected downloads are erased)", args[0])
			}

			rows := pterm.TableData{{"Property", "Value"}}
			rows = append(rows, []string{"ID", rec.ID})
			rows = append(rows, []string{"URL", rec.URL})
			rows = append(rows, []string{"Referrer", orDash(rec.Referrer)})
			rows = append(rows, []string{"Filename", orDash(rec.Filename)})
			rows = append(rows, []string{"MIME", orDash(rec.Mime)})
			rows = append(rows, []string{"Size", strconv.FormatInt(rec.TotalBytes, 10)})
			rows = append(rows, []string{"State", string(rec.State)})
			rows = append(rows, []string{"Updated At", rec.UpdatedAt.Format(time.RFC3339)})
			return pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
		},
	})

	return downloadsCmd
}

// notificationsCmd lists recent failure notifications.
func notificationsCmd(ctx context.Context, s contracts.Store) *cobra.Command {
	var limit uint64

	cmd := &cobra.Command{
		Use:   "notifications",
		Short: "List recent failure notifications",
		RunE: func(cmd *cobra.Command, args []string) error {
			notes, err := s.NotificationStore().ListNotifications(ctx, limit)
			if err != nil {
				return err
			}
			if len(notes) == 0 {
				pterm.Info.Println("No notifications")
				return nil
			}

			rows := pterm.TableData{{"Time", "Title", "Message"}}
			for _, n := range notes {
				rows = append(rows, []string{n.CreatedAt.Format(time.DateTime), n.Title, n.Message})
			}
			return pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
		},
	}

	cmd.Flags().Uint64VarP(&limit, "limit", "n", 20, "Number of notifications to show")
	return cmd
}
