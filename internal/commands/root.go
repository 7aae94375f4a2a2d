package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/moasq/opencode-helix/internal/config"
	"github.com/moasq/opencode-helix/internal/editorctx"
	"github.com/moasq/opencode-helix/internal/logging"
	"github.com/moasq/opencode-helix/internal/secrets"
	"github.com/moasq/opencode-helix/internal/terminal"
	"github.com/moasq/opencode-helix/internal/tui"
)

// Version is set at build time.
var Version = "0.1.0"

// options holds the global flags. Helix passes the editor state through
// them on every invocation.
type options struct {
	port           int
	file           string
	line           int
	column         int
	selectionFile  string
	selectionStart int
	selectionEnd   int
	cwd            string
	language       string
	debug          bool
	theme          string
	noAnim         bool
	configPath     string
}

// dialogScreen is a tui.Screen that must be released after use.
type dialogScreen interface {
	tui.Screen
	Close() error
}

// app is the state shared by every subcommand of one invocation.
type app struct {
	opts   options
	cfg    *config.Config
	editor *editorctx.Context
	logger *slog.Logger

	stdout   io.Writer
	closeLog func() error

	openScreen func() (dialogScreen, error)
	newStore   func() (secrets.SecretStore, error)
}

func newApp() *app {
	return &app{
		stdout:     os.Stdout,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		closeLog:   func() error { return nil },
		openScreen: openTerminal,
		newStore:   openSecretStore,
	}
}

func openTerminal() (dialogScreen, error) {
	t, err := terminal.Open("")
	if err != nil {
		return nil, err
	}
	return t, nil
}

func openSecretStore() (secrets.SecretStore, error) {
	dir, err := config.Dir()
	if err != nil {
		return nil, err
	}
	return secrets.New(dir), nil
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "opencode-helix",
		Short: "Send prompts from Helix to a running opencode",
		Long: "opencode-helix opens a small dialog on the controlling terminal, expands editor\n" +
			"context such as @this and @selection, and sends the prompt to the opencode\n" +
			"server that owns the current directory.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}

	f := root.PersistentFlags()
	f.IntVarP(&a.opts.port, "port", "p", 0, "Connect to a specific port (skips server discovery)")
	f.StringVarP(&a.opts.file, "file", "f", "", "Current file path (for @this and @buffer context)")
	f.IntVarP(&a.opts.line, "line", "l", 0, "Cursor line number (1-based)")
	f.IntVarP(&a.opts.column, "column", "c", 0, "Cursor column number (1-based)")
	f.StringVar(&a.opts.selectionFile, "selection-file", "", "File containing the selection text (deleted after reading)")
	f.IntVar(&a.opts.selectionStart, "selection-start", 0, "Selection start line (1-based)")
	f.IntVar(&a.opts.selectionEnd, "selection-end", 0, "Selection end line (1-based)")
	f.StringVar(&a.opts.cwd, "cwd", "", "Working directory for server discovery (defaults to the current directory)")
	f.StringVar(&a.opts.language, "language", "", "File language, e.g. go or rust")
	f.BoolVar(&a.opts.debug, "debug", false, "Write debug logs to "+logging.Path())
	f.StringVar(&a.opts.theme, "theme", "", "UI theme: minimal, hacker (default), matrix, crt")
	f.BoolVar(&a.opts.noAnim, "no-anim", false, "Disable animations (blinking caret, typing effect, scanline)")
	f.StringVar(&a.opts.configPath, "config", "", "Config file (default $"+config.EnvConfig+" or ~/.config/opencode-helix/config.yaml)")

	root.AddCommand(newAskCmd(a))
	root.AddCommand(newSelectCmd(a))
	root.AddCommand(newPromptCmd(a))
	root.AddCommand(newStatusCmd(a))
	root.AddCommand(newAuthCmd(a))
	return root
}

// Execute runs the root command. SIGTERM and SIGHUP cancel the running
// dialog or request so the terminal is restored before exit.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer stop()

	a := newApp()
	defer func() { _ = a.closeLog() }()
	return newRootCmd(a).ExecuteContext(ctx)
}

// setup loads the config, starts logging and captures the editor context.
func (a *app) setup() error {
	logger, closeLog, err := logging.Setup(a.opts.debug)
	if err != nil {
		return fmt.Errorf("open debug log: %w", err)
	}
	a.logger, a.closeLog = logger, closeLog

	cfg, err := config.Load(a.opts.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger.Debug("config loaded", "path", cfg.Path)

	cwd := a.opts.cwd
	if cwd == "" {
		if cwd, err = os.Getwd(); err != nil {
			cwd = "."
		}
	}
	a.editor = &editorctx.Context{
		File:           a.opts.file,
		Line:           a.opts.line,
		Column:         a.opts.column,
		SelectionStart: a.opts.selectionStart,
		SelectionEnd:   a.opts.selectionEnd,
		Language:       a.opts.language,
		Dir:            cwd,
	}
	if err := a.editor.ReadSelection(a.opts.selectionFile); err != nil {
		a.logger.Warn("selection file unreadable", "path", a.opts.selectionFile, "error", err)
	}
	a.logger.Debug("editor context", "file", a.editor.File, "line", a.editor.Line, "column", a.editor.Column,
		"selection", a.editor.HasSelection, "language", a.editor.Language, "cwd", cwd)
	return nil
}

func (a *app) theme() tui.Theme {
	name := a.opts.theme
	if name == "" {
		name = a.cfg.Theme
	}
	return tui.ParseTheme(name)
}

func (a *app) effects() tui.Effects {
	if a.opts.noAnim || !a.cfg.AnimationsEnabled() {
		return tui.Effects{}
	}
	return tui.AllEffects()
}
