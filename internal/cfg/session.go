package cfg

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"variaredirect/internal/domain/consts"
	"variaredirect/internal/domain/keys"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// sessionCmds edit the session of a running daemon. Session values live in
// the daemon's memory only.
func sessionCmds(ctx context.Context) *cobra.Command {
	var addr string

	sessionCmd := &cobra.Command{
		Use:   "session",
		Short: "Session commands (require a running 'serve')",
		RunE: func(cmd *cobra.Command, args []string) error {
			return errors.New("please specify a subcommand. Use --help to see available subcommands")
		},
	}
	sessionCmd.PersistentFlags().StringVar(&addr, keys.ListenAddr, consts.DefaultListenAddr, "Address of the running daemon")

	client := func() *daemonClient {
		a := addr
		if !sessionCmd.PersistentFlags().Changed(keys.ListenAddr) && viper.IsSet(keys.ListenAddr) {
			a = viper.GetString(keys.ListenAddr)
		}
		return &daemonClient{base: "http://" + a + "/api/v1", http: &http.Client{Timeout: consts.HTTPClientTimeout}}
	}

	var fromBrowser bool
	cookieCmd := &cobra.Command{
		Use:   "cookie <value|page-url>",
		Short: "Set the cookie sent with the next redirected download",
		Long:  "Set the cookie header value, or with --from-browser read the cookies for a page URL from local browsers.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]any{"cookie": args[0]}
			if fromBrowser {
				body = map[string]any{"fromBrowser": true, "url": args[0]}
			}
			if err := client().do(ctx, http.MethodPost, "/session/cookie", body, nil); err != nil {
				return err
			}
			pterm.Success.Println("Session cookie set")
			return nil
		},
	}
	cookieCmd.Flags().BoolVar(&fromBrowser, "from-browser", false, "Import cookies for the page URL from local browsers")

	sessionCmd.AddCommand(cookieCmd)

	sessionCmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Clear the session cookie",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client().do(ctx, http.MethodDelete, "/session", nil, nil); err != nil {
				return err
			}
			pterm.Success.Println("Session cleared")
			return nil
		},
	})

	sessionCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the session state",
		RunE: func(cmd *cobra.Command, args []string) error {
			var view struct {
				HasCookie        bool   `json:"hasCookie"`
				CurrentTabDomain string `json:"currentTabDomain"`
				IsConnected      bool   `json:"isConnected"`
			}
			if err := client().do(ctx, http.MethodGet, "/session", nil, &view); err != nil {
				return err
			}
			rows := pterm.TableData{{"Property", "Value"}}
			rows = append(rows, []string{"Cookie set", strconv.FormatBool(view.HasCookie)})
			rows = append(rows, []string{"Current tab domain", orDash(view.CurrentTabDomain)})
			rows = append(rows, []string{"Aria2 connected", strconv.FormatBool(view.IsConnected)})
			return pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
		},
	})

	return sessionCmd
}

// daemonClient calls the HTTP API of a running daemon.
type daemonClient struct {
	base string
	http *http.Client
}

// do sends body as JSON and decodes the response into out when non-nil.
func (c *daemonClient) do(ctx context.Context, method, path string, body, out any) error {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rdr)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set(consts.ContentType, consts.ApplicationJSON)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("could not reach the daemon (is 'serve' running?): %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("daemon replied %s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
