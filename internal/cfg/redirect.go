package cfg

import (
	"context"
	"fmt"
	"time"
	"variaredirect/internal/contracts"
	"variaredirect/internal/models"
	"variaredirect/internal/parsing"
	"variaredirect/internal/session"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// redirectCmd sends one URL through the pipeline, as if the browser had started it.
func redirectCmd(ctx context.Context, s contracts.Store) *cobra.Command {
	var (
		ev                  models.DownloadEvent
		cookie, date        string
		fromBrowser, asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "redirect <url>",
		Short: "Redirect a single download",
		Long:  "Run a URL through the filters and send it to Aria2 using the stored settings.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ev.URL = args[0]
			if ev.ID == "" {
				ev.ID = uuid.NewString()
			}

			a := newApp(ctx, s, true)

			if date != "" {
				t, err := parsing.ParseDate(date)
				if err != nil {
					return fmt.Errorf("invalid --date: %w", err)
				}
				a.pipeline.Now = func() time.Time { return t }
			}

			switch {
			case cookie != "":
				a.session.SetTempCookie(cookie)
			case fromBrowser:
				page := ev.Referrer
				if page == "" {
					page = ev.URL
				}
				if _, err := a.session.ImportCookie(ctx, session.BrowserCookies{}, page); err != nil {
					return err
				}
			}

			out := a.pipeline.HandleDownload(ctx, ev)
			if asJSON {
				if err := printJSON(out); err != nil {
					return err
				}
			} else {
				printOutcome(out)
			}
			if out.Action == models.ActionFailed {
				return fmt.Errorf("redirect failed: %s", out.Reason)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&ev.ID, "id", "", "Download id (random when empty)")
	cmd.Flags().StringVar(&ev.Referrer, "referrer", "", "Page the download was started from")
	cmd.Flags().StringVar(&ev.Filename, "filename", "", "Target filename or path")
	cmd.Flags().Int64Var(&ev.TotalBytes, "size", 0, "Download size in bytes (0 when unknown)")
	cmd.Flags().StringVar(&ev.Mime, "mime", "", "MIME type")
	cmd.Flags().StringVar(&cookie, "cookie", "", "Cookie header value sent with the download")
	cmd.Flags().BoolVar(&fromBrowser, "from-browser", false, "Read cookies for the page from local browsers")
	cmd.Flags().StringVar(&date, "date", "", "Date used for date folders (e.g. 2024-03-05)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the outcome as JSON")
	cmd.MarkFlagsMutuallyExclusive("cookie", "from-browser")
	return cmd
}
