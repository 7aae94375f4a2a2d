package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/moasq/opencode-helix/internal/terminal"
)

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show which opencode server would receive prompts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, srv, err := a.connect(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(a.stdout, "opencode server:")
			terminal.Detail(a.stdout, "Port", strconv.Itoa(srv.Port))
			terminal.Detail(a.stdout, "CWD", srv.Dir)
			if srv.PID > 0 {
				terminal.Detail(a.stdout, "PID", strconv.Itoa(srv.PID))
			}
			return nil
		},
	}
}
