package compress

import (
	"bytes"
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"
)

// DefaultBlockSize is the LZ4 block size used when none is configured.
const DefaultBlockSize = 64 * 1024

// LZ4 compresses and decompresses spill payloads with the LZ4 frame
// format. It satisfies the engine's Compressor collaborator interface.
// The block size is part of the configuration, not of each call.
type LZ4 struct {
	blockSize int
}

// New creates a compressor with the given block size in bytes. Sizes
// between the LZ4 block sizes round up to the next legal one, sizes
// above 4 MiB use 4 MiB, and a non-positive size uses DefaultBlockSize.
func New(blockSize int) *LZ4 {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	return &LZ4{blockSize: blockSize}
}

func (c *LZ4) option() lz4.Option {
	switch {
	case c.blockSize <= 64*1024:
		return lz4.BlockSizeOption(lz4.Block64Kb)
	case c.blockSize <= 256*1024:
		return lz4.BlockSizeOption(lz4.Block256Kb)
	case c.blockSize <= 1024*1024:
		return lz4.BlockSizeOption(lz4.Block1Mb)
	default:
		return lz4.BlockSizeOption(lz4.Block4Mb)
	}
}

// Compress returns the LZ4 frame encoding of data.
func (c *LZ4) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	if err := w.Apply(c.option()); err != nil {
		return nil, fmt.Errorf("lz4 options: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("lz4 flush: %w", err)
	}
	return buf.Bytes(), nil
}

// Decompress inverts Compress.
func (c *LZ4) Decompress(data []byte) ([]byte, error) {
	r := lz4.NewReader(bytes.NewReader(data))
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("lz4 decompress: %w", err)
	}
	return out, nil
}
