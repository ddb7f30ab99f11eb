// Package logging provides small helpers around log/slog for consistent
// structured logging across the application.
package logging

import (
	"database/sql"
	"errors"
	"io"
	"log/slog"
)

// LogOperation logs a named operation at info level with optional attributes.
func LogOperation(logger *slog.Logger, operation string, attrs ...slog.Attr) {
	if logger == nil {
		logger = slog.Default()
	}
	args := make([]any, 0, len(attrs))
	for _, attr := range attrs {
		args = append(args, attr)
	}
	logger.Info(operation, args...)
}

// LogError logs an error with its message and optional attributes.
func LogError(logger *slog.Logger, msg string, err error, attrs ...slog.Attr) {
	if logger == nil {
		logger = slog.Default()
	}
	args := make([]any, 0, len(attrs)+1)
	args = append(args, slog.Any("error", err))
	for _, attr := range attrs {
		args = append(args, attr)
	}
	logger.Error(msg, args...)
}

// SafeCloseWithLogging closes the closer and logs any close error instead of
// returning it. Intended for deferred cleanup where the error cannot change
// the outcome.
func SafeCloseWithLogging(closer io.Closer, logger *slog.Logger, name string) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		LogError(logger, "failed to close "+name, err, slog.String("resource", name))
	}
}

// SafeRollbackWithLogging rolls back the transaction and logs any rollback
// error. Rolling back an already-committed transaction returns
// sql.ErrTxDone, which is the normal deferred-rollback path and is not
// logged.
func SafeRollbackWithLogging(tx *sql.Tx, logger *slog.Logger, name string) {
	if tx == nil {
		return
	}
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		LogError(logger, "failed to roll back "+name, err, slog.String("transaction", name))
	}
}
