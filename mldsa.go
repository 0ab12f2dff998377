// Package mldsa implements a module-lattice digital signature scheme in
// the style of ML-DSA (CRYSTALS-Dilithium). Security rests on the
// module-LWE and module-SIS hardness assumptions.
//
// The root package holds shared types and scheme-wide constants. Users
// normally import the sub-packages directly:
//
// Digital signatures:
//   - sign.GenerateKeyPair(level) - Generate a key pair for a security level
//   - sign.Sign(sk, message) - Sign a message (randomized)
//   - sign.SignDeterministic(sk, message) - Sign a message (deterministic)
//   - sign.Verify(pk, message, signature) - Verify a signature
//
// Parameters:
//   - core.GetParams(level) - Get parameters for a security level
//   - MLDSA44, MLDSA65, MLDSA87 - Standard security levels
//
// Lower layers (ring arithmetic and NTT, deterministic samplers, the
// rounding and hint operations) live in the ring, sampling and rounding
// packages and are exported for use by callers building their own
// protocols on top of the same ring.
package mldsa

// Version of the ml-dsa-go implementation.
const Version = "1.0.0"
