package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasCode(t *testing.T) {
	t.Run("direct domain error", func(t *testing.T) {
		err := New(CodeConflict, "user already exists")
		assert.True(t, HasCode(err, CodeConflict))
		assert.False(t, HasCode(err, CodeUnauthorized))
	})

	t.Run("wrapped in fmt chain", func(t *testing.T) {
		err := fmt.Errorf("send code: %w", New(CodeConflict, "user already exists"))
		assert.True(t, HasCode(err, CodeConflict))
	})

	t.Run("plain error has no code", func(t *testing.T) {
		assert.False(t, HasCode(errors.New("boom"), CodeInternal))
	})
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("unique violation")
	err := Wrap(cause, CodeConflict, "user already exists")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, CodeConflict, CodeOf(err))
	assert.Equal(t, "user already exists", MessageOf(err))
	assert.Contains(t, err.Error(), "unique violation")
}

func TestCodeOfDefaultsToInternal(t *testing.T) {
	assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
	assert.Equal(t, "internal error", MessageOf(errors.New("boom")))
}

func TestToHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeBadRequest:   http.StatusBadRequest,
		CodeValidation:   http.StatusBadRequest,
		CodeInvalidInput: http.StatusBadRequest,
		CodeUnauthorized: http.StatusUnauthorized,
		CodeForbidden:    http.StatusForbidden,
		CodeNotFound:     http.StatusNotFound,
		CodeConflict:     http.StatusConflict,
		CodeInternal:     http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, ToHTTPStatus(code), string(code))
	}
}
