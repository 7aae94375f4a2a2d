package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/moasq/opencode-helix/internal/secrets"
	"github.com/moasq/opencode-helix/internal/terminal"
)

func newAuthCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the opencode server password",
		Long: "Store the password of a server started with OPENCODE_SERVER_PASSWORD.\n" +
			"The password is kept in the OS keychain, or in a 0600 file when no\n" +
			"keychain is available. " + secrets.EnvPassword + " takes precedence.",
	}
	cmd.AddCommand(newAuthSetCmd(a), newAuthClearCmd(a))
	return cmd
}

// readPassword is swapped in tests.
var readPassword = func() (string, error) {
	return terminal.ReadPassword("", "opencode server password: ")
}

func newAuthSetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set",
		Short: "Prompt for the server password and store it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := readPassword()
			if err != nil {
				return err
			}
			password = strings.TrimSpace(password)
			if password == "" {
				terminal.Warning("Empty password, nothing stored.")
				return nil
			}
			store, err := a.newStore()
			if err != nil {
				return err
			}
			if err := store.Set(secrets.PasswordKey(a.cfg.Host), password); err != nil {
				return fmt.Errorf("store password: %w", err)
			}
			terminal.Success("Password saved.")
			return nil
		},
	}
}

func newAuthClearCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove the stored server password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.newStore()
			if err != nil {
				return err
			}
			if err := store.Delete(secrets.PasswordKey(a.cfg.Host)); err != nil {
				return fmt.Errorf("remove password: %w", err)
			}
			terminal.Info("Password removed.")
			return nil
		},
	}
}
