package main

import (
	"context"
	"fmt"
	"io"

	"github.com/janisto/account-settings/internal/dialog"
)

// terminalNotifier prints notifications for the user and mirrors them to the log.
type terminalNotifier struct {
	out io.Writer
	log dialog.LogNotifier
}

func (n terminalNotifier) NotifySuccess(ctx context.Context, msg string) {
	_, _ = fmt.Fprintln(n.out, "✓", msg)
	n.log.NotifySuccess(ctx, msg)
}

func (n terminalNotifier) NotifyError(ctx context.Context, msg string) {
	_, _ = fmt.Fprintln(n.out, "✗", msg)
	n.log.NotifyError(ctx, msg)
}

var _ dialog.Notifier = terminalNotifier{}
