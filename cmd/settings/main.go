// Command settings edits the signed-in user's profile and email preferences from a
// terminal.
//
//	settings profile   name, username and profile photo
//	settings email     email notification preferences
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/janisto/account-settings/internal/client"
	"github.com/janisto/account-settings/internal/platform/config"
	applog "github.com/janisto/account-settings/internal/platform/logging"
)

const usage = "usage: settings <profile|email>"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], surveyPrompter{}, os.Stdout); err != nil {
		if errors.Is(err, ErrAborted) {
			os.Exit(130)
		}
		_, _ = fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, prompt Prompter, out io.Writer) error {
	if len(args) != 1 {
		return errors.New(usage)
	}
	if err := config.LoadDotenv(); err != nil {
		return err
	}
	cfg, err := config.LoadClient()
	if err != nil {
		return err
	}

	logger := zap.NewNop()
	if cfg.LogFile != "" {
		if logger, err = applog.NewFileLogger(cfg.LogFile, zapcore.InfoLevel); err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer func() { _ = logger.Sync() }()
	}
	ctx = applog.WithLogger(ctx, logger)

	api := client.NewClient(&http.Client{Timeout: cfg.HTTPTimeout},
		client.WithBaseURL(cfg.APIURL),
		client.WithToken(cfg.IDToken),
	)
	a := &app{
		api:      api,
		cache:    client.NewUserCache(api),
		prompt:   prompt,
		out:      out,
		debounce: cfg.UsernameDebounce,
	}
	return a.run(ctx, args[0])
}

// app binds the dialogs to the API client and the terminal.
type app struct {
	api      *client.Client
	cache    *client.UserCache
	prompt   Prompter
	out      io.Writer
	debounce time.Duration
}

func (a *app) run(ctx context.Context, cmd string) error {
	if cmd != "profile" && cmd != "email" {
		return fmt.Errorf("unknown command %q\n%s", cmd, usage)
	}
	if err := a.cache.Refetch(ctx); err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			return fmt.Errorf("not signed in: set ID_TOKEN: %w", err)
		}
		return fmt.Errorf("loading account: %w", err)
	}
	applog.LogInfo(ctx, "account loaded", zap.String("command", cmd))

	if cmd == "profile" {
		return a.profile(ctx)
	}
	return a.email(ctx)
}

func (a *app) notifier() terminalNotifier {
	return terminalNotifier{out: a.out}
}

func (a *app) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(a.out, format+"\n", args...)
}

// retry asks whether to go back to editing after a refused or failed save.
func (a *app) retry(ctx context.Context, err error) (bool, error) {
	a.printf("✗ %s", reason(err))
	return a.prompt.Confirm(ctx, "Edit and try again?", true)
}
