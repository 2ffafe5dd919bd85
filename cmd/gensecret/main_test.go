package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	key, err := generate(32)
	require.NoError(t, err)
	require.Len(t, key, 64, "hex encoded 32 bytes")

	other, err := generate(32)
	require.NoError(t, err)
	require.NotEqual(t, key, other)

	_, err = generate(8)
	require.Error(t, err, "short keys are refused")
}
