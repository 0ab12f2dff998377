// Package ring implements arithmetic over R_q = Z_q[x]/(x^n + 1) with
// n = 256 and q = 8380417, including the number-theoretic transform
// used for fast polynomial multiplication.
package ring

import (
	mldsa "github.com/latticekit/ml-dsa-go"
)

const (
	n = mldsa.N
	q = mldsa.Q
)

// Montgomery arithmetic constants for q = 8380417 and R = 2^32.
const (
	// qNegInv = -q^(-1) mod 2^32
	qNegInv = 4236238847
	// montR2 = R^2 mod q, used to lift a value into Montgomery form
	montR2 = 2365951
	// nInvMont = n^(-1) * R mod q; montMul by this constant scales by
	// n^(-1) exactly, making InvNTT the exact inverse of NTT
	nInvMont = 16382
)

// reduceOnce reduces a value < 2q to [0, q).
func reduceOnce(a uint32) uint32 {
	x := a - q
	// If a < q the subtraction wrapped and the high bit is set
	x += (x >> 31) * q
	return x
}

// addQ returns (a + b) mod q for a, b in [0, q).
func addQ(a, b uint32) uint32 {
	return reduceOnce(a + b)
}

// subQ returns (a - b) mod q for a, b in [0, q).
func subQ(a, b uint32) uint32 {
	return reduceOnce(a - b + q)
}

// montMul returns a * b * R^(-1) mod q.
func montMul(a, b uint32) uint32 {
	v := uint64(a) * uint64(b)
	t := uint32(v) * qNegInv
	return reduceOnce(uint32((v + uint64(t)*q) >> 32))
}

// mulQ returns a * b mod q exactly, lifting a into Montgomery form so
// the two reductions cancel.
func mulQ(a, b uint32) uint32 {
	return montMul(montMul(a, montR2), b)
}

// Add returns the coefficient-wise sum a + b mod q.
func Add(a, b mldsa.Poly) (c mldsa.Poly) {
	for i := range c {
		c[i] = addQ(a[i], b[i])
	}
	return c
}

// Sub returns the coefficient-wise difference a - b mod q.
func Sub(a, b mldsa.Poly) (c mldsa.Poly) {
	for i := range c {
		c[i] = subQ(a[i], b[i])
	}
	return c
}

// Neg returns -a mod q coefficient-wise.
func Neg(a mldsa.Poly) (c mldsa.Poly) {
	for i := range c {
		if a[i] == 0 {
			c[i] = 0
		} else {
			c[i] = q - a[i]
		}
	}
	return c
}

// MulNTT multiplies two transform-domain operands coefficient-wise.
// Both operands must already be in the NTT domain; mixing domains is a
// caller error that this package cannot detect.
func MulNTT(a, b mldsa.Poly) (c mldsa.Poly) {
	for i := range c {
		c[i] = mulQ(a[i], b[i])
	}
	return c
}

// MulScalar returns a * s mod q coefficient-wise for s in [0, q).
// Used by the verifier to rescale t1 by 2^d.
func MulScalar(a mldsa.Poly, s uint32) (c mldsa.Poly) {
	sMont := montMul(s, montR2)
	for i := range c {
		c[i] = montMul(sMont, a[i])
	}
	return c
}

// CenterAbs returns |a| where a in [0, q) is interpreted as the signed
// representative in (-q/2, q/2].
func CenterAbs(a uint32) uint32 {
	if a <= (q-1)/2 {
		return a
	}
	return q - a
}

// InfinityNorm returns the maximum centered absolute value of any
// coefficient of f.
func InfinityNorm(f mldsa.Poly) uint32 {
	var max uint32
	for i := range f {
		v := CenterAbs(f[i])
		if v > max {
			max = v
		}
	}
	return max
}

// VecInfinityNorm returns the maximum infinity norm across a vector.
func VecInfinityNorm(v mldsa.Vec) uint32 {
	var max uint32
	for i := range v {
		norm := InfinityNorm(v[i])
		if norm > max {
			max = norm
		}
	}
	return max
}

// NormBound reports whether every coefficient of v, in centered
// representation, is strictly below bound.
func NormBound(v mldsa.Vec, bound uint32) bool {
	return VecInfinityNorm(v) < bound
}
