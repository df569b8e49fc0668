package dialog

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	applog "github.com/janisto/account-settings/internal/platform/logging"
)

// LogNotifier writes notifications to the context logger.
type LogNotifier struct{}

func (LogNotifier) NotifySuccess(ctx context.Context, msg string) {
	applog.LogInfo(ctx, msg, zap.String("notification", "success"))
}

func (LogNotifier) NotifyError(ctx context.Context, msg string) {
	applog.LogWarn(ctx, msg, zap.String("notification", "error"))
}

// Scope derives the logging context for one dialog instance.
func Scope(ctx context.Context, kind string) context.Context {
	return applog.WithFields(ctx,
		zap.String("dialog", kind),
		zap.String("dialog_id", uuid.NewString()),
	)
}

// Compile-time interface check
var _ Notifier = LogNotifier{}
