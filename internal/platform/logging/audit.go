package logging

import (
	"context"

	"go.uber.org/zap"
)

// Audit results.
const (
	AuditSuccess = "success"
	AuditFailure = "failure"
)

// LogAuditEvent logs a structured audit event for a user-initiated mutation.
//
// Args:
//   - action: the action performed (e.g. "update_details", "update_email_settings", "upload")
//   - userID: the user performing the action
//   - resourceType: the type of resource (e.g. "user", "media")
//   - resourceID: the ID of the resource
//   - result: AuditSuccess or AuditFailure
//   - details: optional additional details; never raw error text
func LogAuditEvent(
	ctx context.Context,
	action, userID, resourceType, resourceID, result string,
	details map[string]any,
) {
	LoggerFromContext(ctx).Info("Audit event",
		zap.String("audit.action", action),
		zap.String("audit.user_id", userID),
		zap.String("audit.resource_type", resourceType),
		zap.String("audit.resource_id", resourceID),
		zap.String("audit.result", result),
		zap.Any("audit.details", details),
	)
}
