package service

import (
	"context"
	"database/sql/driver"
	"errors"
	"net"
)

var (
	// ErrValidation rejects malformed input before any remote call. Never
	// queued for replay.
	ErrValidation = errors.New("validation failed")

	// ErrTenantMismatch marks data whose hotel/branch does not belong to the
	// active tenant context.
	ErrTenantMismatch = errors.New("record belongs to a different tenant")

	// ErrRemoteUnavailable classifies network and timeout failures. Reads
	// take the fallback chain; writes are enqueued for replay.
	ErrRemoteUnavailable = errors.New("backend unavailable")

	ErrNotFound = errors.New("not found")
)

// isConnectivity reports whether an error is a transport-level failure, as
// opposed to a rejection the backend actually issued.
func isConnectivity(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	if errors.Is(err, driver.ErrBadConn) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
