package compress

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	c := New(DefaultBlockSize)

	data := bytes.Repeat([]byte("burrow burrow burrow "), 1000)
	packed, err := c.Compress(data)
	require.NoError(t, err)
	assert.Less(t, len(packed), len(data), "repetitive input must shrink")

	back, err := c.Decompress(packed)
	require.NoError(t, err)
	assert.Equal(t, data, back)
}

func TestRoundTripAllByteValues(t *testing.T) {
	c := New(0)

	data := make([]byte, 4096)
	for i := range data {
		data[i] = byte(i)
	}
	packed, err := c.Compress(data)
	require.NoError(t, err)

	back, err := c.Decompress(packed)
	require.NoError(t, err)
	assert.Equal(t, data, back)
}

func TestRoundTripEmpty(t *testing.T) {
	c := New(DefaultBlockSize)
	packed, err := c.Compress(nil)
	require.NoError(t, err)

	back, err := c.Decompress(packed)
	require.NoError(t, err)
	assert.Empty(t, back)
}

func TestBlockSizeSelection(t *testing.T) {
	for _, size := range []int{1, 64 * 1024, 200 * 1024, 800 * 1024, 8 * 1024 * 1024} {
		c := New(size)
		data := bytes.Repeat([]byte("x"), 1024)
		packed, err := c.Compress(data)
		require.NoError(t, err, "block size %d", size)
		back, err := c.Decompress(packed)
		require.NoError(t, err)
		assert.Equal(t, data, back)
	}
}

func TestDecompressGarbage(t *testing.T) {
	c := New(DefaultBlockSize)
	_, err := c.Decompress([]byte("definitely not an lz4 frame"))
	assert.Error(t, err)
}
