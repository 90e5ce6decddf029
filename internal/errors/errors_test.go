package errors_test

import (
	"testing"

	apperrors "github.com/jrsteele09/aicp-web/internal/errors"
	"github.com/stretchr/testify/require"
)

func TestWrapf(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		require.NoError(t, apperrors.Wrapf(nil, "load %s", "x"))
	})

	t.Run("wraps with context", func(t *testing.T) {
		err := apperrors.Wrapf(apperrors.ErrNoSession, "[session Access] id=%s", "abc")
		require.EqualError(t, err, "[session Access] id=abc: no session")
		require.True(t, apperrors.Is(err, apperrors.ErrNoSession))
	})
}
