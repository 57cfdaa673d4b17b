package repository

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Kilat-Pet-Delivery/service-hotel-booking/internal/platform/domain"
)

// PostgreSQL error codes the repositories translate.
const (
	pgExclusionViolation  = "23P01"
	pgForeignKeyViolation = "23503"
	pgSerializationFail   = "40001"
	pgDeadlockDetected    = "40P01"
	pgAdminShutdown       = "57P01"
	pgCannotConnectNow    = "57P03"
)

// classifyError maps driver errors to typed application errors. AppErrors pass through.
func classifyError(err error, op string) error {
	if err == nil {
		return nil
	}
	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == pgExclusionViolation:
			return domain.NewRoomUnavailableError("room is already booked for an overlapping stay")
		case pgErr.Code == pgForeignKeyViolation:
			return domain.NewValidationError("referenced room or customer does not exist")
		case pgErr.Code == pgSerializationFail || pgErr.Code == pgDeadlockDetected:
			return domain.NewTransactionFailureError(op+" could not be serialized", err)
		case pgErr.Code == pgAdminShutdown || pgErr.Code == pgCannotConnectNow || strings.HasPrefix(pgErr.Code, "08"):
			return domain.NewBackendUnavailableError(op+": database unavailable", err)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) || errors.Is(err, driver.ErrBadConn) {
		return domain.NewBackendUnavailableError(op+": database unavailable", err)
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return domain.NewTransactionFailureError(op+" did not complete", err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
