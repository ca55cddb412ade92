// Package service contains the business logic layer of the application.
//
// THE THREE LAYERS:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (business layer) → validates, enforces rules, orchestrates
//	Repository (data layer)  → reads/writes the store
//
// Services depend on repository interfaces, never on *sqlite.DB, so tests can
// hand them in-memory fakes (see the *_test.go files in this package).
//
// ERRORS:
// Every error a service returns is an *apperror.AppError. Domain failures
// (not found, already following, ...) are built directly; anything the store
// returns that is not already an AppError becomes StoreUnavailable, so the
// handler layer never sees a raw SQL error.
package service

import (
	"errors"
	"log/slog"

	"github.com/sakif/trivia-league/internal/apperror"
)

// storeError converts a repository error into a domain error.
//
// AppErrors pass through untouched: the sqlite layer already reports missing
// rows as NotFound and unique violations as Conflict. Everything else is a
// store failure, logged here once so handlers can stay quiet about it.
func storeError(logger *slog.Logger, op string, err error) error {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}

	logger.Error("store operation failed",
		slog.String("op", op),
		slog.String("error", err.Error()),
	)
	return apperror.StoreUnavailable(op, err)
}

func isStoreFailure(err error) bool {
	return errors.Is(err, apperror.ErrStoreUnavailable)
}
