package rcerr

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestImmutable(t *testing.T) {
	e := New(400, "INVALID_REQUEST", "invalid request: some or all request parameters are invalid")
	changed := e.Msg("%s", "changed")
	assert.NotEqual(t, "changed", e.Message)
	assert.Equal(t, "changed", changed.Message)

	withExtras := e.WithExtras(Extras{"field": "distance"})
	assert.Nil(t, e.Extras)
	assert.Equal(t, "distance", (*withExtras.Extras)["field"])
}

func TestIsMatchesCopies(t *testing.T) {
	err := errors.Wrap(ErrQuotaExhausted.Msg("user %d has no gifts left", 7), "give gift")
	assert.True(t, errors.Is(err, ErrQuotaExhausted))
	assert.False(t, errors.Is(err, ErrNotFound))

	var re *RunclubError
	assert.True(t, errors.As(err, &re))
	assert.Equal(t, 409, re.StatusCode)
}

func TestInvalidViolations(t *testing.T) {
	e := NewInvalidViolations([]string{"distance must be greater than 0"})
	assert.Equal(t, CodeInvalidRequest, e.ErrorCode)
	assert.Nil(t, ErrInvalidReq.Extras)
	assert.Contains(t, *e.Extras, "violations")
}
