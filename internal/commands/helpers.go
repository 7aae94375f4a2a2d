package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/moasq/opencode-helix/internal/editorctx"
	"github.com/moasq/opencode-helix/internal/opencode"
	"github.com/moasq/opencode-helix/internal/secrets"
	"github.com/moasq/opencode-helix/internal/terminal"
	"github.com/moasq/opencode-helix/internal/tui"
)

// previewRunes bounds the "Sent:" confirmation.
const previewRunes = 50

// clientOptions builds the options shared by discovery and the final client.
func (a *app) clientOptions() []opencode.Option {
	opts := []opencode.Option{opencode.WithTimeout(a.cfg.Timeout)}

	var store secrets.SecretStore
	if os.Getenv(secrets.EnvPassword) == "" {
		s, err := a.newStore()
		if err != nil {
			a.logger.Warn("secret store unavailable", "error", err)
		}
		store = s
	}
	password, err := secrets.Password(store, a.cfg.Host)
	if err != nil {
		a.logger.Warn("read server password", "error", err)
	}
	if password != "" {
		username := os.Getenv(secrets.EnvUsername)
		if username == "" {
			username = a.cfg.Username
		}
		opts = append(opts, opencode.WithPassword(username, password))
	}
	return opts
}

// connect finds the server for the editor's directory, or probes the port
// given by flag or config.
func (a *app) connect(ctx context.Context) (*opencode.Client, *opencode.Server, error) {
	opts := a.clientOptions()
	finder := opencode.NewFinder(a.cfg.Host, opts...)
	finder.Logger = a.logger

	port := a.opts.port
	if port == 0 {
		port = a.cfg.Port
	}

	var (
		srv *opencode.Server
		err error
	)
	if port > 0 {
		srv, err = finder.Probe(ctx, port)
	} else {
		srv, err = finder.Find(ctx, a.editor.Dir)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find opencode server: %w", err)
	}
	a.logger.Debug("using opencode server", "port", srv.Port, "dir", srv.Dir, "pid", srv.PID)
	return opencode.NewClient(a.cfg.Host, srv.Port, opts...), srv, nil
}

// dialog opens the terminal, runs one dialog and restores the terminal
// before returning.
func (a *app) dialog(run func(tui.Screen) (tui.Result, error)) (res tui.Result, err error) {
	screen, err := a.openScreen()
	if err != nil {
		return tui.Result{}, err
	}
	defer func() {
		if cerr := screen.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return run(screen)
}

// deliver expands and sends a dialog result, or reports the cancellation.
func (a *app) deliver(ctx context.Context, client *opencode.Client, res tui.Result) error {
	if res.Cancelled {
		fmt.Fprintln(terminal.Output, "Cancelled")
		return nil
	}
	return a.send(ctx, client, res.Value, true)
}

func (a *app) send(ctx context.Context, client *opencode.Client, text string, submit bool) error {
	expanded := a.editor.Expand(ctx, text)
	a.logger.Debug("sending prompt", "text", expanded, "submit", submit)
	if err := client.SendPrompt(ctx, expanded, false, submit); err != nil {
		return fmt.Errorf("send prompt: %w", err)
	}
	fmt.Fprintln(terminal.Output, "Sent: "+terminal.Truncate(expanded, previewRunes))
	return nil
}

// placeholders adapts the editor's placeholders for the input dialog.
func placeholders(list []editorctx.Placeholder) []tui.Placeholder {
	out := make([]tui.Placeholder, 0, len(list))
	for _, p := range list {
		out = append(out, tui.Placeholder{Name: p.Name, Value: p.Value})
	}
	return out
}

// ignoreCancel turns a context cancelled by a signal into a clean exit.
func ignoreCancel(err error) error {
	if errors.Is(err, context.Canceled) {
		fmt.Fprintln(terminal.Output, "Cancelled")
		return nil
	}
	return err
}
