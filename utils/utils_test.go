package utils

import (
	"bytes"
	"testing"
)

func TestShake256(t *testing.T) {
	out1 := Shake256([]byte("input"), 64)
	out2 := Shake256([]byte("input"), 64)
	if len(out1) != 64 {
		t.Fatalf("expected 64 bytes, got %d", len(out1))
	}
	if !bytes.Equal(out1, out2) {
		t.Error("Shake256 not deterministic")
	}
	if bytes.Equal(out1, Shake256([]byte("other"), 64)) {
		t.Error("distinct inputs produced identical output")
	}

	// Prefix property of the XOF
	if !bytes.Equal(out1[:32], Shake256([]byte("input"), 32)) {
		t.Error("shorter output is not a prefix of longer output")
	}
}

func TestShake256Into(t *testing.T) {
	buf := make([]byte, 48)
	Shake256Into([]byte("input"), buf)
	if !bytes.Equal(buf, Shake256([]byte("input"), 48)) {
		t.Error("Shake256Into disagrees with Shake256")
	}
}

func TestShake256Concat(t *testing.T) {
	joined := Shake256([]byte("abcdef"), 32)
	parts := Shake256Concat(32, []byte("ab"), []byte("cd"), []byte("ef"))
	if !bytes.Equal(joined, parts) {
		t.Error("Shake256Concat must hash the raw concatenation")
	}
}

func TestSHA3256(t *testing.T) {
	h := SHA3256([]byte("fingerprint"))
	if len(h) != 32 {
		t.Fatalf("expected 32 bytes, got %d", len(h))
	}
	if !bytes.Equal(h, SHA3256([]byte("fingerprint"))) {
		t.Error("SHA3256 not deterministic")
	}
}

func TestSecureRandomBytes(t *testing.T) {
	a, err := SecureRandomBytes(32)
	if err != nil {
		t.Fatal(err)
	}
	b, err := SecureRandomBytes(32)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(a, b) {
		t.Error("two random draws are identical")
	}
}

func TestValidateSeedEntropy(t *testing.T) {
	if err := ValidateSeedEntropy(make([]byte, 16)); err == nil {
		t.Error("expected error for short seed")
	}
	if err := ValidateSeedEntropy(make([]byte, 32)); err == nil {
		t.Error("expected error for all-zero seed")
	}

	seq := make([]byte, 32)
	for i := range seq {
		seq[i] = byte(i)
	}
	if err := ValidateSeedEntropy(seq); err == nil {
		t.Error("expected error for sequential seed")
	}

	good := Shake256([]byte("entropy"), 32)
	if err := ValidateSeedEntropy(good); err != nil {
		t.Errorf("unexpected error for random seed: %v", err)
	}
}

func TestConstantTimeEqual(t *testing.T) {
	if !ConstantTimeEqual([]byte{1, 2, 3}, []byte{1, 2, 3}) {
		t.Error("equal slices compared unequal")
	}
	if ConstantTimeEqual([]byte{1, 2, 3}, []byte{1, 2, 4}) {
		t.Error("unequal slices compared equal")
	}
	if ConstantTimeEqual([]byte{1, 2}, []byte{1, 2, 3}) {
		t.Error("different lengths compared equal")
	}
	if !ConstantTimeEqual(nil, nil) {
		t.Error("empty slices compared unequal")
	}
}

func TestZeroize(t *testing.T) {
	b := []byte{1, 2, 3, 4}
	Zeroize(b)
	for i, v := range b {
		if v != 0 {
			t.Errorf("byte %d not zeroized", i)
		}
	}

	s := []uint32{7, 8, 9}
	ZeroizeUint32(s)
	for i, v := range s {
		if v != 0 {
			t.Errorf("word %d not zeroized", i)
		}
	}
}

func TestCheckLength(t *testing.T) {
	if err := CheckLength(5, 10); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := CheckLength(-1, 10); err != ErrInvalidLength {
		t.Errorf("expected ErrInvalidLength, got %v", err)
	}
	if err := CheckLength(11, 10); err != ErrExceedsLimit {
		t.Errorf("expected ErrExceedsLimit, got %v", err)
	}
}

func TestExactLength(t *testing.T) {
	if err := ExactLength(make([]byte, 4), 4); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ExactLength(make([]byte, 3), 4); err != ErrInvalidLength {
		t.Errorf("expected ErrInvalidLength, got %v", err)
	}
}
