// Package utils provides hashing, randomness and bounds-checking
// helpers shared by the ml-dsa-go packages.
package utils

import "errors"

// Maximum allowed lengths to prevent denial of service via oversized inputs.
const (
	// MaxMessageSize is the maximum allowed message size in bytes.
	MaxMessageSize = 1 << 20 // 1MB

	// MaxEncodedKeySize is the maximum allowed serialized key length.
	MaxEncodedKeySize = 1 << 16 // 64KB
)

var (
	// ErrInvalidLength indicates an invalid length value.
	ErrInvalidLength = errors.New("invalid length")

	// ErrExceedsLimit indicates a value exceeds the allowed limit.
	ErrExceedsLimit = errors.New("value exceeds allowed limit")
)

// CheckLength validates that length is within [0, maxAllowed].
func CheckLength(length, maxAllowed int) error {
	if length < 0 {
		return ErrInvalidLength
	}
	if length > maxAllowed {
		return ErrExceedsLimit
	}
	return nil
}

// ExactLength validates that a buffer has exactly the expected length.
// Serialized keys and signatures have fixed sizes per security level.
func ExactLength(data []byte, expected int) error {
	if len(data) != expected {
		return ErrInvalidLength
	}
	return nil
}
