package job

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/cuemby/burrow/pkg/types"
)

// SpillOptions configures where and how a payload is written to disk.
// Compressor and Encryptor are optional; when both are set the payload
// is compressed first and encrypted second, inverted on load.
type SpillOptions struct {
	Dir        string
	Compressor types.Compressor
	Encryptor  types.Encryptor
}

type spillTransforms struct {
	compressor types.Compressor
	encryptor  types.Encryptor
}

// SpillToDisk writes the payload to a unique file under the scratch
// directory and clears the in-memory copy. The file name is a random
// 128-bit hex identifier with a .job suffix. Spilling an already
// spilled or payload-less job is a no-op.
func (j *Job) SpillToDisk(opts SpillOptions) error {
	if j.spillPath != "" || len(j.payload) == 0 {
		return nil
	}
	if opts.Dir == "" {
		return fmt.Errorf("%w: no scratch directory", ErrSpill)
	}

	data := j.payload
	var err error
	if opts.Compressor != nil {
		if data, err = opts.Compressor.Compress(data); err != nil {
			return fmt.Errorf("%w: compress: %v", ErrSpill, err)
		}
	}
	if opts.Encryptor != nil {
		if data, err = opts.Encryptor.Encrypt(data); err != nil {
			return fmt.Errorf("%w: encrypt: %v", ErrSpill, err)
		}
	}

	name := strings.ReplaceAll(uuid.New().String(), "-", "") + ".job"
	path := filepath.Join(opts.Dir, name)
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("%w: %v", ErrSpill, err)
	}

	j.spillPath = path
	j.spilled = spillTransforms{compressor: opts.Compressor, encryptor: opts.Encryptor}
	j.payload = nil
	return nil
}

// Load rehydrates a spilled payload and removes the spill file.
// Idempotent: loading a job that never spilled succeeds immediately.
func (j *Job) Load() error {
	if j.spillPath == "" {
		return nil
	}

	data, err := os.ReadFile(j.spillPath)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSpill, err)
	}
	if j.spilled.encryptor != nil {
		if data, err = j.spilled.encryptor.Decrypt(data); err != nil {
			return fmt.Errorf("%w: decrypt: %v", ErrSpill, err)
		}
	}
	if j.spilled.compressor != nil {
		if data, err = j.spilled.compressor.Decompress(data); err != nil {
			return fmt.Errorf("%w: decompress: %v", ErrSpill, err)
		}
	}

	// Best effort: a file that cannot be removed stays in the scratch
	// directory; nothing here retries the removal.
	_ = os.Remove(j.spillPath)

	j.payload = data
	j.spillPath = ""
	j.spilled = spillTransforms{}
	return nil
}
