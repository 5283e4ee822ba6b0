package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValueTypeString(t *testing.T) {
	require.Equal(t, "i32", I32.String())
	require.Equal(t, "i64", I64.String())
	require.Equal(t, "f32", F32.String())
	require.Equal(t, "f64", F64.String())
	require.Equal(t, "unknown", ValueType(0x00).String())
}

func TestBlockTypeEmpty(t *testing.T) {
	require.True(t, BlockType{}.Empty())

	result := I32
	require.False(t, BlockType{Result: &result}.Empty())
}
