package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	base := NotFoundf("event %d not found", 7)
	wrapped := fmt.Errorf("load: %w", base)

	assert.Equal(t, NotFound, KindOf(base))
	assert.Equal(t, NotFound, KindOf(wrapped))
	assert.Equal(t, Internal, KindOf(errors.New("boom")))
	assert.True(t, Is(wrapped, NotFound))
	assert.False(t, Is(nil, NotFound))
}

func TestMessageHidesInternalErrors(t *testing.T) {
	assert.Equal(t, "event 7 not found", Message(NotFoundf("event %d not found", 7)))
	assert.Equal(t, "internal server error", Message(errors.New("dial tcp: refused")))
	assert.Equal(t, "internal server error", Message(Wrap(errors.New("x"), Internal, "db")))
}

func TestWrapUnwraps(t *testing.T) {
	cause := errors.New("duplicate key")
	err := Wrap(cause, Conflict, "event already exists")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "event already exists: duplicate key", err.Error())
}

func TestStatus(t *testing.T) {
	cases := map[Kind]int{
		NotFound:     http.StatusNotFound,
		Conflict:     http.StatusBadRequest,
		InvalidInput: http.StatusBadRequest,
		InvalidState: http.StatusBadRequest,
		Unauthorized: http.StatusUnauthorized,
		Internal:     http.StatusInternalServerError,
	}
	for kind, want := range cases {
		assert.Equal(t, want, Status(kind), kind.String())
	}
}
