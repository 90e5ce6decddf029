package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValue(t *testing.T) {
	require.Equal(t, "", Value[string](nil))
	require.Equal(t, "x", Value(Ptr("x")))
	require.Equal(t, 0, Value[int](nil))
}

func TestPtrOrNil(t *testing.T) {
	require.Nil(t, PtrOrNil(""))
	require.Equal(t, "desc", *PtrOrNil("desc"))
}
