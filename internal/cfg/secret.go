package cfg

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"variaredirect/internal/domain/consts"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/zalando/go-keyring"
)

// secretCmds manages the Aria2 RPC secret in the system keyring.
func secretCmds() *cobra.Command {
	secretCmd := &cobra.Command{
		Use:   "secret",
		Short: "Aria2 RPC secret commands",
		Long:  "Store the Aria2 RPC secret in the system keyring. --aria2-secret and VARIAREDIRECT_ARIA2_SECRET take precedence.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return errors.New("please specify a subcommand. Use --help to see available subcommands")
		},
	}

	secretCmd.AddCommand(&cobra.Command{
		Use:   "set [secret]",
		Short: "Store the secret (read from stdin when omitted)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var secret string
			if len(args) == 1 {
				secret = args[0]
			} else {
				line, err := bufio.NewReader(os.Stdin).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("failed to read secret from stdin: %w", err)
				}
				secret = strings.TrimSpace(line)
			}
			if secret == "" {
				return errors.New("secret is empty")
			}
			if err := keyring.Set(consts.KeyringService, consts.KeyringUser, secret); err != nil {
				return fmt.Errorf("failed to store secret in keyring: %w", err)
			}
			pterm.Success.Println("Secret stored in keyring")
			return nil
		},
	})

	secretCmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove the stored secret",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := keyring.Delete(consts.KeyringService, consts.KeyringUser); err != nil {
				if errors.Is(err, keyring.ErrNotFound) {
					pterm.Info.Println("No secret stored")
					return nil
				}
				return fmt.Errorf("failed to remove secret from keyring: %w", err)
			}
			pterm.Success.Println("Secret removed from keyring")
			return nil
		},
	})

	secretCmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Report where the secret comes from",
		RunE: func(cmd *cobra.Command, args []string) error {
			pterm.Info.Println(secretOrigin())
			return nil
		},
	})

	return secretCmd
}
