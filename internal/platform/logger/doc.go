// Package logger provides structured logging for the recall API.
//
// Loggers are plain *slog.Logger values. Request-scoped loggers carrying a
// trace ID and owner ID travel through context.Context; use FromContext or
// FromContextOrDefault to retrieve them.
package logger
