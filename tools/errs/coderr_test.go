package errs

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestWithDetailKeepsSentinelMatch(t *testing.T) {
	detailed := ErrForbidden.WithDetail("channel 99")
	assert.ErrorIs(t, detailed, ErrForbidden)
	assert.Contains(t, detailed.Error(), "channel 99")
	// sentinel itself untouched
	assert.Empty(t, ErrForbidden.Detail)
}

func TestCodeThroughWrapping(t *testing.T) {
	wrapped := errors.Wrap(ErrUnauthorized.WithDetail("expired"), "handshake")
	assert.Equal(t, CodeUnauthorized, Code(wrapped))
	assert.ErrorIs(t, wrapped, ErrUnauthorized)
}

func TestCodeOfPlainError(t *testing.T) {
	assert.Equal(t, 0, Code(errors.New("boom")))
}

func TestClientMsgHidesInternals(t *testing.T) {
	assert.Equal(t, "access denied", ClientMsg(ErrForbidden.WithDetail("row 42 of guild_members")))
	// non-coded errors collapse to the generic message
	assert.Equal(t, ErrResolution.Msg, ClientMsg(errors.New("pq: connection refused")))
}

func TestErrorString(t *testing.T) {
	e := NewCodeError(418, "teapot").WithDetail("short and stout")
	assert.Equal(t, "418 teapot short and stout", e.Error())
}
