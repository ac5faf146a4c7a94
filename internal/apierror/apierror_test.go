package apierror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{Validation("bad input"), http.StatusUnprocessableEntity},
		{InsufficientStock("have 1, need 2"), http.StatusUnprocessableEntity},
		{Duplicate("taken"), http.StatusUnprocessableEntity},
		{NotFound("gone"), http.StatusNotFound},
		{Forbidden("no"), http.StatusForbidden},
		{InternalConsistency("broken"), http.StatusInternalServerError},
		{Unexpected(errors.New("boom")), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Status(tc.err), "for %v", tc.err)
	}
}

func TestKindSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("while fulfilling order: %w", InsufficientStock("have 1, need 2"))
	assert.Equal(t, KindInsufficientStock, KindOf(err))
	assert.True(t, IsKind(err, KindInsufficientStock))
	assert.Equal(t, http.StatusUnprocessableEntity, Status(err))
}

func TestEnvelopeHidesInternals(t *testing.T) {
	cause := errors.New("pq: connection refused")
	env := Envelope(Unexpected(cause))
	assert.Equal(t, "internal server error", env.Detail)
	assert.NotContains(t, env.Detail, "connection refused")

	env = Envelope(InternalConsistency("card diverged for product abc"))
	assert.Equal(t, "internal server error", env.Detail)
}

func TestEnvelopeKeepsBusinessDetail(t *testing.T) {
	env := Envelope(InsufficientStock("insufficient stock for Widget: have 1, need 2"))
	assert.Equal(t, KindInsufficientStock, env.Kind)
	assert.Contains(t, env.Detail, "Widget")
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := Unexpected(cause)
	assert.ErrorIs(t, err, cause)
}
