package commands

import (
	"github.com/spf13/cobra"

	"github.com/moasq/opencode-helix/internal/tui"
)

func newAskCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ask [initial]",
		Short: "Open the input dialog and send what you type",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			initial := ""
			if len(args) == 1 {
				initial = args[0]
			}
			return ignoreCancel(a.runAsk(cmd, initial))
		},
	}
}

func (a *app) runAsk(cmd *cobra.Command, initial string) error {
	ctx := cmd.Context()
	client, _, err := a.connect(ctx)
	if err != nil {
		return err
	}

	hint, _ := a.editor.This()
	opts := tui.InputOptions{
		Initial:      initial,
		Hint:         hint,
		Placeholders: placeholders(a.editor.Placeholders()),
		Theme:        a.theme(),
		Effects:      a.effects(),
	}
	res, err := a.dialog(func(s tui.Screen) (tui.Result, error) {
		return tui.RunInput(ctx, s, opts)
	})
	if err != nil {
		return err
	}
	return a.deliver(ctx, client, res)
}
