package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode(t *testing.T) {
	raw, err := encode("plain")
	require.NoError(t, err)
	assert.Equal(t, "plain", string(raw))

	var text string
	require.NoError(t, decode(raw, &text))
	assert.Equal(t, "plain", text)

	raw, err = encode(map[string]int{"count": 3})
	require.NoError(t, err)

	var counter map[string]int
	require.NoError(t, decode(raw, &counter))
	assert.Equal(t, 3, counter["count"])

	var n int
	assert.Error(t, decode([]byte("not-json"), &n))

	_, err = encode(make(chan int))
	assert.Error(t, err)
}

func TestIsMiss(t *testing.T) {
	assert.True(t, IsMiss(Nil))
	assert.False(t, IsMiss(assert.AnError))
}
