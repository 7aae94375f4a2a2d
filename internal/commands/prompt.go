package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/moasq/opencode-helix/internal/config"
	"github.com/moasq/opencode-helix/internal/terminal"
)

func newPromptCmd(a *app) *cobra.Command {
	var submit bool
	cmd := &cobra.Command{
		Use:   "prompt <name-or-text>",
		Short: "Send a named prompt or raw text without a dialog",
		Long: "Send a prompt without opening a dialog. A known prompt name such as\n" +
			"\"explain\" sends its template; a built-in command such as \"session.new\"\n" +
			"is executed in the opencode TUI; anything else is sent as written.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ignoreCancel(a.runPrompt(cmd, args[0], submit))
		},
	}
	cmd.Flags().BoolVarP(&submit, "submit", "s", true, "Submit the prompt instead of only appending it")
	return cmd
}

func (a *app) runPrompt(cmd *cobra.Command, text string, submit bool) error {
	ctx := cmd.Context()
	client, _, err := a.connect(ctx)
	if err != nil {
		return err
	}

	if config.IsBuiltinCommand(text) {
		if err := client.ExecuteCommand(ctx, text); err != nil {
			return err
		}
		fmt.Fprintln(terminal.Output, "Executed: "+text)
		return nil
	}
	if p, ok := a.cfg.FindPrompt(text); ok {
		text = p.Prompt
	}
	return a.send(ctx, client, text, submit)
}
