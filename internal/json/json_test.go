package json

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	in := map[string]any{"b": 1, "a": []any{"x", true}}
	data, err := Marshal(in)
	require.NoError(t, err)
	assert.Equal(t, `{"a":["x",true],"b":1}`, string(data))
	assert.True(t, Valid(data))

	var out map[string]any
	require.NoError(t, Unmarshal(data, &out))
	assert.Equal(t, float64(1), out["b"])

	indented, err := MarshalIndent(map[string]int{"k": 1}, "", "  ")
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"k\": 1\n}", string(indented))

	assert.False(t, Valid([]byte("{")))
}
