// Command agenda is a terminal client for the church agenda backend. It keeps the
// session, selected church and locale in a persisted store between runs.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/church-agenda/agenda-client/internal/bootstrap"
	apperrors "github.com/church-agenda/agenda-client/internal/errors"
	"github.com/spf13/pflag"
)

type commandFn func(ctx *commandContext, args []string) error

type command struct {
	name        string
	description string
	run         commandFn
}

type commandContext struct {
	Ctx    context.Context
	Logger *slog.Logger
	App    *bootstrap.App
	In     io.Reader
	Out    io.Writer
	Err    io.Writer
}

func main() {
	os.Exit(run(os.Args[1:])) //nolint:forbidigo // CLI exit status reflects command outcome
}

func run(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		if err := printUsage(os.Stdout); err != nil {
			return 1
		}
		if len(args) == 0 {
			return 2
		}
		return 0
	}

	cmdName := args[0]
	cmd, ok := commands()[cmdName]
	if !ok {
		_ = writef(os.Stderr, "unknown command %q\n\n", cmdName)
		_ = printUsage(os.Stderr)
		return 2
	}

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		_ = writef(os.Stderr, "load config: %v\n", err)
		return 1
	}
	logger := bootstrap.InitLogger(cfg.Observability.Logging, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.NewApp(ctx, bootstrap.AppOptions{Config: cfg, Logger: logger})
	if err != nil {
		logger.ErrorContext(ctx, "startup failed", "error", err)
		return 1
	}
	defer func() {
		if closeErr := app.Close(); closeErr != nil {
			logger.Warn("close app", "error", closeErr)
		}
	}()
	app.Restore(ctx)

	cmdCtx := &commandContext{
		Ctx:    ctx,
		Logger: logger,
		App:    app,
		In:     os.Stdin,
		Out:    os.Stdout,
		Err:    os.Stderr,
	}
	if runErr := cmd.run(cmdCtx, args[1:]); runErr != nil {
		if errors.Is(runErr, pflag.ErrHelp) {
			return 0
		}
		reportError(cmdCtx, cmdName, runErr)
		return 1
	}
	return 0
}

// reportError prints the error and logs its key and category.
func reportError(cmdCtx *commandContext, cmdName string, err error) {
	key := apperrors.KeyOf(err)
	_ = writef(cmdCtx.Err, "error: %v\n", err)
	cmdCtx.Logger.ErrorContext(cmdCtx.Ctx, "command failed",
		"command", cmdName,
		"code", apperrors.GetCode(err),
		"error_key", key,
	)
}

func commands() map[string]command {
	list := []command{
		{name: "login", description: "Sign in and persist the session", run: runLogin},
		{name: "logout", description: "Sign out and clear the persisted session", run: runLogout},
		{name: "whoami", description: "Show the current session, church and locale", run: runWhoami},
		{name: "register", description: "Request a new account (pending approval)", run: runRegister},
		{name: "approve", description: "Approve a pending account (admin)", run: runApprove},
		{name: "locale", description: "Show or set the interface language", run: runLocale},
		{name: "churches", description: "List churches available for sign-in", run: runChurches},
		{name: "select-church", description: "Select the church used to scope requests", run: runSelectChurch},
		{name: "events", description: "List events of the selected church", run: runEvents},
		{name: "rsvp", description: "Answer an event invitation", run: runRSVP},
		{name: "announcements", description: "Show the announcement feed of the selected church", run: runAnnouncements},
		{name: "directory", description: "Search the member directory", run: runDirectory},
		{name: "songs", description: "Search the worship repertoire", run: runSongs},
		{name: "plans", description: "List worship service plans", run: runPlans},
		{name: "passage", description: "Look up a Bible passage", run: runPassage},
		{name: "upload", description: "Upload a worship file", run: runUpload},
		{name: "download", description: "Download a worship file", run: runDownload},
		{name: "dashboard", description: "Fetch events, announcements and plans together", run: runDashboard},
	}
	out := make(map[string]command, len(list))
	for _, c := range list {
		out[c.name] = c
	}
	return out
}

func printUsage(w io.Writer) error {
	if err := writef(w, "Usage: agenda <command> [flags]\n\n"); err != nil {
		return err
	}
	if err := writef(w, "Available commands:\n"); err != nil {
		return err
	}

	cmds := commands()
	names := make([]string, 0, len(cmds))
	for name := range cmds {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := writef(w, "  %-16s %s\n", name, cmds[name].description); err != nil {
			return err
		}
	}
	return nil
}

func newFlagSet(cmdCtx *commandContext, name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(cmdCtx.Err)
	fs.SortFlags = false
	return fs
}

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}
