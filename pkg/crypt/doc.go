/*
Package crypt implements the engine's optional encryptor collaborator
using AES-256-GCM.

Spilled job payloads pass through the encryptor on their way to the
scratch directory when one is configured. Keys are 32 bytes, either
random (CreateKey) or derived from a password via SHA-256. The nonce is
generated per encryption and prepended to the ciphertext.

# Usage

	key, err := crypt.CreateKey()
	if err != nil {
		return err
	}
	enc, err := crypt.New(key)
	if err != nil {
		return err
	}

	p := pool.New(pool.Options{
		Collaborators: types.Collaborators{
			ScratchDir: spillDir,
			Encryptor:  enc,
		},
		SpillEnabled: true,
	})

# Integration Points

  - pkg/job: spill transform (encrypt after compress, invert on load)
  - pkg/types: satisfies the Encryptor collaborator interface
*/
package crypt
