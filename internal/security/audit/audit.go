package audit

import (
	"context"
	"log/slog"
	"time"
)

type ctxKey struct{}

// WithRequestID stores the request ID picked up by audit lines
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// RequestID returns the request ID stored in ctx, if any
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

type Logger struct {
	logger *slog.Logger
}

func NewLogger(logger *slog.Logger) *Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Logger{logger: logger}
}

func (al *Logger) LogAction(ctx context.Context, userID, action, resource, resourceID, status, details string) {
	al.logger.Info("audit",
		slog.String("action", action),
		slog.String("resource", resource),
		slog.String("resource_id", resourceID),
		slog.String("user_id", userID),
		slog.String("status", status),
		slog.String("details", details),
		slog.String("request_id", RequestID(ctx)),
		slog.Time("timestamp", time.Now()),
	)
}

func (al *Logger) LogLogin(ctx context.Context, userID, email, status, details string) {
	al.LogAction(ctx, userID, "login", "session", email, status, details)
}

func (al *Logger) LogLogout(ctx context.Context, userID, status, details string) {
	al.LogAction(ctx, userID, "logout", "session", userID, status, details)
}

func (al *Logger) LogReply(ctx context.Context, userID, reviewID, status, details string) {
	al.LogAction(ctx, userID, "reply", "review", reviewID, status, details)
}

func (al *Logger) LogSettingsSave(ctx context.Context, userID, status, details string) {
	al.LogAction(ctx, userID, "save", "settings", "", status, details)
}

func (al *Logger) LogReportDownload(ctx context.Context, userID, format, status, details string) {
	al.LogAction(ctx, userID, "download", "report", format, status, details)
}

func (al *Logger) LogDenied(ctx context.Context, userID, reason string) {
	al.LogAction(ctx, userID, "access_denied", "api", "", "denied", reason)
}
