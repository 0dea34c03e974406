package gameerr

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"testing"

	"connectrpc.com/connect"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestCode(t *testing.T) {
	tests := []struct {
		err  error
		want connect.Code
	}{
		{fmt.Errorf("failed to record pick: %w", ErrAlreadyPicked), connect.CodeAlreadyExists},
		{ErrQuotaExceeded, connect.CodeResourceExhausted},
		{ErrDuplicateRating, connect.CodeAlreadyExists},
		{ErrOwnItem, connect.CodePermissionDenied},
		{ErrNotYourTurn, connect.CodeFailedPrecondition},
		{ErrRoomNotFound, connect.CodeNotFound},
		{Unavailable(driver.ErrBadConn), connect.CodeUnavailable},
		{fmt.Errorf("%w: turn duration", ErrValidation), connect.CodeInvalidArgument},
		{errors.New("boom"), connect.CodeInternal},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Code(tt.err), tt.err.Error())
	}
}

func TestUnavailable(t *testing.T) {
	assert.Nil(t, Unavailable(nil))

	plain := errors.New("syntax error")
	assert.Same(t, plain, Unavailable(plain))

	conn := Unavailable(&pq.Error{Code: "08006"})
	assert.ErrorIs(t, conn, ErrStoreUnavailable)

	again := Unavailable(conn)
	assert.Equal(t, conn, again)
}

func TestIsUniqueViolation(t *testing.T) {
	err := fmt.Errorf("insert: %w", &pq.Error{Code: "23505", Constraint: "picks_room_item_key"})
	assert.True(t, IsUniqueViolation(err, "picks_room_item_key"))
	assert.True(t, IsUniqueViolation(err, ""))
	assert.False(t, IsUniqueViolation(err, "rating_events_room_item_participant_key"))
	assert.False(t, IsUniqueViolation(errors.New("nope"), ""))
}

func TestToConnectKeepsExistingCode(t *testing.T) {
	ce := connect.NewError(connect.CodeAborted, errors.New("x"))
	assert.Equal(t, connect.CodeAborted, connect.CodeOf(ToConnect(ce)))
	assert.Equal(t, connect.CodeNotFound, connect.CodeOf(ToConnect(ErrRoomNotFound)))
	assert.NoError(t, ToConnect(nil))
}
