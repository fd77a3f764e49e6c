// Package logger builds *slog.Logger instances from functional options or an
// env-driven Config, and offers attribute helpers so every package logs
// navigation data under the same keys.
//
// New picks a text or JSON handler, applies static attributes and wraps the
// handler with LogHandlerDecorator, which runs ContextExtractor callbacks on
// every record (request ids, workspace ids and the like).
//
// # Usage
//
//	log := logger.New(
//	    logger.WithDevelopment("navd"),
//	    logger.WithContextValue("request_id", requestIDKey),
//	)
//	log.InfoContext(ctx, "navigation redirected",
//	    logger.Path("/admin/users"),
//	    logger.Redirect("/admin/login"),
//	)
//
// Library packages default to Discard so they stay silent unless a logger is
// injected.
package logger
