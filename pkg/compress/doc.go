/*
Package compress implements the engine's optional compressor
collaborator using the LZ4 frame format.

Spilled job payloads pass through the compressor before the optional
encryptor when one is configured. The block size is threaded through
the constructor rather than read from process-wide state.

# Usage

	p := pool.New(pool.Options{
		Collaborators: types.Collaborators{
			ScratchDir: spillDir,
			Compressor: compress.New(compress.DefaultBlockSize),
		},
		SpillEnabled: true,
	})

# Integration Points

  - pkg/job: spill transform (compress before encrypt)
  - pkg/types: satisfies the Compressor collaborator interface
*/
package compress
