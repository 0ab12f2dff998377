// Package sampling implements the deterministic expansion of seeds into
// the matrix, short vectors, masking vectors and sparse challenge
// polynomials of the signature scheme. Every function is a pure
// function of its seed (and counter where relevant); there is no
// process-wide random state.
package sampling

import (
	"runtime"
	"sync"

	mldsa "github.com/latticekit/ml-dsa-go"
	"github.com/latticekit/ml-dsa-go/utils"
)

const (
	n = mldsa.N
	q = mldsa.Q

	shake128Rate = 168
	shake256Rate = 136
)

// ExpandA expands the public seed rho into the k x l matrix A, stored
// row-major with entries already in the transform domain. Entry (i, j)
// is rejection-sampled from its own SHAKE128 stream, so rows can be
// expanded in parallel with identical output regardless of scheduling.
func ExpandA(rho []byte, k, l int) []mldsa.Poly {
	a := make([]mldsa.Poly, k*l)

	expandRow := func(i int) {
		for j := 0; j < l; j++ {
			a[i*l+j] = rejUniformPoly(rho, byte(j), byte(i))
		}
	}

	if k < 4 || runtime.GOMAXPROCS(0) <= 1 {
		for i := 0; i < k; i++ {
			expandRow(i)
		}
		return a
	}

	var wg sync.WaitGroup
	wg.Add(k)
	for i := 0; i < k; i++ {
		go func(i int) {
			defer wg.Done()
			expandRow(i)
		}(i)
	}
	wg.Wait()
	return a
}

// rejUniformPoly samples one matrix entry: SHAKE128 output is read in
// 3-byte groups, masked to 23 bits, and values >= q are discarded.
func rejUniformPoly(rho []byte, s, r byte) mldsa.Poly {
	h := utils.NewShake128()
	h.Write(rho)
	h.Write([]byte{s, r})

	var buf [shake128Rate]byte
	var a mldsa.Poly
	j := 0

	for {
		h.Read(buf[:])
		for i := 0; i+3 <= len(buf) && j < n; i += 3 {
			d := uint32(buf[i]) | uint32(buf[i+1])<<8 | (uint32(buf[i+2])&0x7f)<<16
			if d < q {
				a[j] = d
				j++
			}
		}
		if j >= n {
			return a
		}
	}
}

// ExpandS expands a secret seed into the short vectors s1 (dimension l)
// and s2 (dimension k) with coefficients uniform in [-eta, eta]. s2
// continues the nonce sequence after s1 so the two never share a
// sponge stream.
func ExpandS(seed []byte, eta, l, k int) (s1, s2 mldsa.Vec) {
	s1 = mldsa.NewVec(l)
	s2 = mldsa.NewVec(k)
	for i := 0; i < l; i++ {
		s1[i] = rejBoundedPoly(seed, eta, uint16(i))
	}
	for i := 0; i < k; i++ {
		s2[i] = rejBoundedPoly(seed, eta, uint16(l+i))
	}
	return s1, s2
}

// rejBoundedPoly samples a polynomial with coefficients in [-eta, eta]
// by bounded rejection on SHAKE256 nibbles.
func rejBoundedPoly(seed []byte, eta int, nonce uint16) mldsa.Poly {
	h := utils.NewShake256()
	h.Write(seed)
	h.Write([]byte{byte(nonce), byte(nonce >> 8)})

	var buf [shake256Rate]byte
	var a mldsa.Poly
	j := 0
	offset := len(buf)

	for j < n {
		if offset >= len(buf) {
			h.Read(buf[:])
			offset = 0
		}

		z0 := buf[offset] & 0x0f
		z1 := buf[offset] >> 4
		offset++

		if eta == 2 {
			// Nibbles 0-14 are kept and reduced mod 5 to 2-z in [-2, 2]
			if z0 < 15 {
				a[j] = centered(2 - int32(z0%5))
				j++
			}
			if j < n && z1 < 15 {
				a[j] = centered(2 - int32(z1%5))
				j++
			}
		} else { // eta == 4
			if z0 <= 8 {
				a[j] = centered(4 - int32(z0))
				j++
			}
			if j < n && z1 <= 8 {
				a[j] = centered(4 - int32(z1))
				j++
			}
		}
	}
	return a
}

// ExpandMask expands (seed, kappa) into an l-dimensional masking vector
// with coefficients uniform in (-gamma1, gamma1]. Component i uses
// counter kappa+i, so successive signing attempts advance kappa by l.
func ExpandMask(seed []byte, kappa uint16, gamma1Bits uint, l int) mldsa.Vec {
	y := mldsa.NewVec(l)
	for i := 0; i < l; i++ {
		y[i] = maskPoly(seed, kappa+uint16(i), gamma1Bits)
	}
	return y
}

// maskPoly reads exactly (gamma1Bits+1)*n bits from SHAKE256(seed||nonce)
// and maps each (gamma1Bits+1)-bit group v to gamma1 - v.
func maskPoly(seed []byte, nonce uint16, gamma1Bits uint) mldsa.Poly {
	h := utils.NewShake256()
	h.Write(seed)
	h.Write([]byte{byte(nonce), byte(nonce >> 8)})

	width := gamma1Bits + 1
	buf := make([]byte, n*int(width)/8)
	h.Read(buf)

	gamma1 := int32(1) << gamma1Bits
	mask := uint32(1)<<width - 1

	var f mldsa.Poly
	var acc uint64
	var bits uint
	idx := 0
	for i := 0; i < n; i++ {
		for bits < width {
			acc |= uint64(buf[idx]) << bits
			idx++
			bits += 8
		}
		v := uint32(acc) & mask
		acc >>= width
		bits -= width
		f[i] = centered(gamma1 - int32(v))
	}
	return f
}

// SampleInBall expands a challenge seed into the sparse challenge
// polynomial: exactly tau coefficients in {-1, +1}, the rest zero.
// Positions are chosen by a truncated Fisher-Yates pass over slots
// [n-tau, n), with index bytes rejection-sampled from the stream, so a
// verifier reproduces the polynomial exactly from the seed alone.
func SampleInBall(seed []byte, tau int) mldsa.Poly {
	h := utils.NewShake256()
	h.Write(seed)

	var buf [shake256Rate]byte
	h.Read(buf[:])

	// The first 8 bytes hold tau sign bits
	var signs uint64
	for i := 0; i < 8; i++ {
		signs |= uint64(buf[i]) << (8 * i)
	}
	offset := 8

	var c mldsa.Poly
	for i := n - tau; i < n; i++ {
		var j byte
		for {
			if offset >= len(buf) {
				h.Read(buf[:])
				offset = 0
			}
			j = buf[offset]
			offset++
			if int(j) <= i {
				break
			}
		}

		c[i] = c[j]
		if signs&1 == 0 {
			c[j] = 1
		} else {
			c[j] = q - 1 // -1 mod q
		}
		signs >>= 1
	}
	return c
}

// centered maps a signed value in (-q, q) to its representative in [0, q).
func centered(v int32) uint32 {
	if v < 0 {
		return uint32(v + q)
	}
	return uint32(v)
}
