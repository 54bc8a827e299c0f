package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserErrorError(t *testing.T) {
	assert.Equal(t, "bad", NewUserError("bad", "fix it").Error())

	err := InvalidInput(ErrInvalidCategory, "category", "coffee", "Use water, stand or eyes.")
	assert.Equal(t, "invalid reminder category: 'coffee'", err.Error())
	assert.True(t, errors.Is(err, ErrInvalidCategory))
	assert.Equal(t, "Use water, stand or eyes.", err.Suggestion)
}

func TestIsUserError(t *testing.T) {
	assert.True(t, IsUserError(NewUserError("x", "")))
	assert.True(t, IsUserError(Wrap(NewUserError("x", ""), "context")))
	assert.False(t, IsUserError(errors.New("plain")))
	assert.False(t, IsUserError(nil))

	ue, ok := AsUserError(Wrap(NewUserError("x", "y"), "ctx"))
	assert.True(t, ok)
	assert.Equal(t, "y", ue.Suggestion)
}

func TestSystemError(t *testing.T) {
	cause := errors.New("permission denied")

	err := NewSystemErrorWithOp("save", "cannot write preferences", cause)
	assert.Equal(t, "cannot write preferences during save: permission denied", err.Error())
	assert.True(t, errors.Is(err, cause))
	assert.True(t, IsSystemError(Wrap(err, "outer")))

	assert.Equal(t, "no db", NewSystemError("no db", nil).Error())
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(nil, "ctx"))
	assert.Nil(t, Wrapf(nil, "ctx %d", 1))

	err := Wrapf(ErrDaemonNotRunning, "stop %s", "now")
	assert.Equal(t, "stop now: daemon is not running", err.Error())
	assert.True(t, Is(err, ErrDaemonNotRunning))
}
