package commands

import (
	"context"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/moasq/opencode-helix/internal/config"
	"github.com/moasq/opencode-helix/internal/opencode"
	"github.com/moasq/opencode-helix/internal/tui"
)

func newSelectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "select",
		Short: "Pick a prompt, command or agent from a menu",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ignoreCancel(a.runSelect(cmd))
		},
	}
}

func (a *app) runSelect(cmd *cobra.Command) error {
	ctx := cmd.Context()
	client, _, err := a.connect(ctx)
	if err != nil {
		return err
	}

	items := a.menuItems(ctx, client)
	opts := tui.SelectOptions{Items: items, Theme: a.theme(), Effects: a.effects()}
	res, err := a.dialog(func(s tui.Screen) (tui.Result, error) {
		return tui.RunSelect(ctx, s, opts)
	})
	if err != nil {
		return err
	}
	return a.deliver(ctx, client, res)
}

// menuItems lists prompts, then server commands, then subagents. Commands
// and agents are fetched concurrently; a failed fetch leaves its group empty.
func (a *app) menuItems(ctx context.Context, client *opencode.Client) []tui.SelectItem {
	var (
		agents []opencode.Agent
		cmds   []opencode.Command
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		list, err := client.Agents(gctx)
		if err != nil {
			a.logger.Warn("list agents", "error", err)
			return nil
		}
		agents = list
		return nil
	})
	g.Go(func() error {
		list, err := client.Commands(gctx)
		if err != nil {
			a.logger.Warn("list commands", "error", err)
			return nil
		}
		cmds = list
		return nil
	})
	_ = g.Wait()

	items := config.PromptItems(a.cfg.AllPrompts())
	items = append(items, config.CommandItems(cmds)...)
	items = append(items, config.AgentItems(agents)...)
	return items
}
