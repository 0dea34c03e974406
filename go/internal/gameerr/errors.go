// Package gameerr holds the sentinel errors shared by the room packages and
// their mapping onto connect status codes.
package gameerr

import (
	"context"
	"database/sql/driver"
	"errors"
	"net"
	"strings"

	"connectrpc.com/connect"
	"github.com/lib/pq"
)

var (
	ErrAlreadyPicked    = errors.New("item already picked in this room")
	ErrQuotaExceeded    = errors.New("participant already holds the pick quota")
	ErrDuplicateRating  = errors.New("participant already rated this item")
	ErrOwnItem          = errors.New("participants cannot rate items they drafted")
	ErrNotYourTurn      = errors.New("not your turn")
	ErrRoomNotFound     = errors.New("room not found")
	ErrStoreUnavailable = errors.New("store unavailable")

	ErrNotParticipant = errors.New("not a participant in this room")
	ErrNotAiring      = errors.New("item is not currently airing")
	ErrNotHost        = errors.New("only the host can do that")
	ErrInvalidState   = errors.New("room is not in the required phase")
	ErrRoomFull       = errors.New("room is full")
	ErrAlreadyAired   = errors.New("item already aired in this room")
	ErrItemNotFound   = errors.New("item not found")
	ErrValidation     = errors.New("validation failed")
)

// Unavailable wraps err as ErrStoreUnavailable when it looks like a
// connection-level failure, and returns it unchanged otherwise.
func Unavailable(err error) error {
	if err == nil || errors.Is(err, ErrStoreUnavailable) {
		return err
	}
	if IsConnectionError(err) {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return err
}

// IsConnectionError reports whether err came from losing the database.
func IsConnectionError(err error) bool {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		// class 08: connection exception, 57P: operator intervention
		code := string(pqErr.Code)
		return strings.HasPrefix(code, "08") || strings.HasPrefix(code, "57P")
	}
	return false
}

// IsUniqueViolation reports whether err is a Postgres unique_violation on constraint.
// An empty constraint matches any unique violation.
func IsUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != "23505" {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}

// Code maps an error onto the connect code returned to callers.
func Code(err error) connect.Code {
	switch {
	case errors.Is(err, ErrRoomNotFound), errors.Is(err, ErrItemNotFound):
		return connect.CodeNotFound
	case errors.Is(err, ErrAlreadyPicked), errors.Is(err, ErrDuplicateRating), errors.Is(err, ErrAlreadyAired):
		return connect.CodeAlreadyExists
	case errors.Is(err, ErrQuotaExceeded), errors.Is(err, ErrRoomFull):
		return connect.CodeResourceExhausted
	case errors.Is(err, ErrOwnItem), errors.Is(err, ErrNotHost), errors.Is(err, ErrNotParticipant):
		return connect.CodePermissionDenied
	case errors.Is(err, ErrNotYourTurn), errors.Is(err, ErrNotAiring), errors.Is(err, ErrInvalidState):
		return connect.CodeFailedPrecondition
	case errors.Is(err, ErrValidation):
		return connect.CodeInvalidArgument
	case errors.Is(err, ErrStoreUnavailable):
		return connect.CodeUnavailable
	case errors.Is(err, context.Canceled):
		return connect.CodeCanceled
	default:
		return connect.CodeInternal
	}
}

// ToConnect wraps err in a connect error carrying the mapped code.
func ToConnect(err error) error {
	if err == nil {
		return nil
	}
	var ce *connect.Error
	if errors.As(err, &ce) {
		return err
	}
	return connect.NewError(Code(err), err)
}
