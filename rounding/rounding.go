// Package rounding implements the coefficient rounding operations of
// the signature scheme: Power2Round, Decompose with its HighBits and
// LowBits projections, and the MakeHint/UseHint pair that lets a
// verifier reconstruct rounded values without secret material.
package rounding

import (
	mldsa "github.com/latticekit/ml-dsa-go"
)

const q = mldsa.Q

// Power2Round splits r in [0, q) into r1*2^d + r0 with r0 in
// (-2^(d-1), 2^(d-1)]. r0 is returned as its mod-q representative so it
// can feed directly into ring arithmetic and packing.
func Power2Round(r uint32) (r1, r0 uint32) {
	r1 = r >> mldsa.D
	r0 = r - r1<<mldsa.D

	const half = 1 << (mldsa.D - 1)
	if r0 > half {
		r0 = r0 - (1 << mldsa.D) + q
		r1++
	}
	return r1, r0
}

// Decompose splits r in [0, q) into r1*alpha + r0 with alpha = 2*gamma2
// and r0 in (-alpha/2, alpha/2]. The canonical-range edge case maps r1
// to 0 when r - r0 wraps to q-1, compensating by decrementing r0;
// skipping it breaks the round-trip identity near the modulus boundary.
func Decompose(r uint32, gamma2 uint32) (r1 uint32, r0 int32) {
	alpha := int32(2 * gamma2)

	r0 = int32(r) % alpha
	if r0 > alpha/2 {
		r0 -= alpha
	}
	if int32(r)-r0 == q-1 {
		return 0, r0 - 1
	}
	return uint32((int32(r) - r0) / alpha), r0
}

// HighBits returns the high-order projection of Decompose.
func HighBits(r uint32, gamma2 uint32) uint32 {
	r1, _ := Decompose(r, gamma2)
	return r1
}

// LowBits returns the low-order projection of Decompose in signed
// representation.
func LowBits(r uint32, gamma2 uint32) int32 {
	_, r0 := Decompose(r, gamma2)
	return r0
}

// MakeHint is the carry-detection predicate: it returns 1 iff adding z
// to r changes the high bits, 0 otherwise. z is given as its mod-q
// representative.
func MakeHint(z, r uint32, gamma2 uint32) uint32 {
	sum := r + z
	if sum >= q {
		sum -= q
	}
	if HighBits(sum, gamma2) != HighBits(r, gamma2) {
		return 1
	}
	return 0
}

// UseHint reconstructs HighBits(r + z, 2*gamma2) from r and the single
// hint bit produced by MakeHint, incrementing or decrementing the high
// bits according to the sign of LowBits(r). A zero hint leaves the high
// bits unchanged.
func UseHint(hint, r uint32, gamma2 uint32) uint32 {
	m := uint32((q - 1) / (2 * gamma2))
	r1, r0 := Decompose(r, gamma2)
	if hint == 0 {
		return r1
	}
	if r0 > 0 {
		return (r1 + 1) % m
	}
	return (r1 + m - 1) % m
}

// PolyPower2Round applies Power2Round coefficient-wise.
func PolyPower2Round(f mldsa.Poly) (f1, f0 mldsa.Poly) {
	for i := range f {
		f1[i], f0[i] = Power2Round(f[i])
	}
	return f1, f0
}

// PolyHighBits applies HighBits coefficient-wise.
func PolyHighBits(f mldsa.Poly, gamma2 uint32) (f1 mldsa.Poly) {
	for i := range f {
		f1[i] = HighBits(f[i], gamma2)
	}
	return f1
}

// PolyLowBitsNorm returns the maximum |LowBits| over the coefficients
// of f. The signer rejects when this comes too close to gamma2.
func PolyLowBitsNorm(f mldsa.Poly, gamma2 uint32) uint32 {
	var max uint32
	for i := range f {
		r0 := LowBits(f[i], gamma2)
		if r0 < 0 {
			r0 = -r0
		}
		if uint32(r0) > max {
			max = uint32(r0)
		}
	}
	return max
}

// PolyMakeHint applies MakeHint coefficient-wise and returns the hint
// polynomial together with its weight.
func PolyMakeHint(z, r mldsa.Poly, gamma2 uint32) (h mldsa.Poly, weight int) {
	for i := range r {
		h[i] = MakeHint(z[i], r[i], gamma2)
		weight += int(h[i])
	}
	return h, weight
}

// PolyUseHint applies UseHint coefficient-wise.
func PolyUseHint(h, r mldsa.Poly, gamma2 uint32) (f1 mldsa.Poly) {
	for i := range r {
		f1[i] = UseHint(h[i], r[i], gamma2)
	}
	return f1
}

// HintWeight counts the nonzero coefficients across a hint vector.
func HintWeight(v mldsa.Vec) int {
	count := 0
	for i := range v {
		for j := range v[i] {
			if v[i][j] != 0 {
				count++
			}
		}
	}
	return count
}
