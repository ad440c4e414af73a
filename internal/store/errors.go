package store

import (
	"context"
	"errors"

	"github.com/lib/pq"

	"github.com/hanzidojo/engine/internal/engerr"
)

// classify maps a raw driver/context error to the engine's error taxonomy
// (spec §4.1: ConnectivityError, TimeoutError, ConstraintError, QueryError).
func classify(err error, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return engerr.WrapTimeoutError(err, "store: %s timed out", op)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Class() {
		case "23": // integrity constraint violation
			return engerr.WrapConstraintError(err, "store: %s violated a constraint", op)
		case "08": // connection exception
			return engerr.WrapConnectivityError(err, "store: %s lost connection", op)
		case "42": // syntax/access rule violation — malformed input from our own query builder
			return engerr.WrapQueryError(err, "store: %s: malformed query", op)
		}
	}

	return engerr.WrapInternalError(err, "store: %s failed", op)
}
