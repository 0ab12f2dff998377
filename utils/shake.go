package utils

import (
	"sync"

	"golang.org/x/crypto/sha3"
)

var shake256Pool = sync.Pool{
	New: func() interface{} {
		return sha3.NewShake256()
	},
}

// Shake256 computes the SHAKE256 extendable output function (XOF).
// It takes an input byte slice and generates an output of the specified length.
func Shake256(input []byte, outputLen int) []byte {
	h := shake256Pool.Get().(sha3.ShakeHash)
	defer func() {
		h.Reset()
		shake256Pool.Put(h)
	}()

	h.Write(input)
	output := make([]byte, outputLen)
	_, _ = h.Read(output)
	return output
}

// Shake256Into computes SHAKE256 and writes the output into the provided buffer.
func Shake256Into(input []byte, output []byte) {
	h := shake256Pool.Get().(sha3.ShakeHash)
	defer func() {
		h.Reset()
		shake256Pool.Put(h)
	}()

	h.Write(input)
	_, _ = h.Read(output)
}

// Shake256Concat computes SHAKE256 over the raw concatenation of the
// inputs. The scheme's hash derivations (mu, rho'', c-tilde, tr) are all
// defined over plain concatenations of fixed-size fields, so no length
// prefixing is applied.
func Shake256Concat(outputLen int, inputs ...[]byte) []byte {
	h := shake256Pool.Get().(sha3.ShakeHash)
	defer func() {
		h.Reset()
		shake256Pool.Put(h)
	}()

	for _, input := range inputs {
		h.Write(input)
	}
	output := make([]byte, outputLen)
	_, _ = h.Read(output)
	return output
}

// NewShake128 returns a fresh SHAKE128 instance for streaming reads.
// Callers that rejection-sample from an unbounded output stream need
// their own instance rather than a pooled one-shot helper.
func NewShake128() sha3.ShakeHash {
	return sha3.NewShake128()
}

// NewShake256 returns a fresh SHAKE256 instance for streaming reads.
func NewShake256() sha3.ShakeHash {
	return sha3.NewShake256()
}

// SHA3256 computes the SHA3-256 cryptographic hash of the input.
// It returns a 32-byte hash. Used for key fingerprints outside the
// algorithmic core.
func SHA3256(input []byte) []byte {
	h := sha3.New256()
	h.Write(input)
	return h.Sum(nil)
}
