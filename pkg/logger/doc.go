// Package logger builds configured *slog.Logger instances and provides
// attribute helpers for billing log records.
//
// New applies functional options on top of production defaults (JSON, info
// level, stdout):
//
//	log := logger.New(
//		logger.WithEnvironment(os.Getenv("APP_ENV"), "paykit"),
//		logger.WithContextValue("request_id", requestIDKey{}),
//	)
//	log.InfoContext(ctx, "subscription created",
//		logger.CustomerID(sub.CustomerID),
//		logger.SubscriptionID(sub.ID),
//		logger.Status(sub.Status.String()),
//	)
//
// Context extractors run for every record handled through the *Context
// methods, so request-scoped values are always fresh.
//
// Attribute helpers return an empty slog.Attr for nil or empty input, which
// slog handlers omit from output.
package logger
