package sign

import (
	"errors"

	mldsa "github.com/latticekit/ml-dsa-go"
	"github.com/latticekit/ml-dsa-go/utils"
)

// Byte encodings. Every coefficient is stored in a fixed bit width
// derived from its declared range, packed little-endian bit-first.
// Signed ranges are stored as center - c mod q so the packed value is
// always a small non-negative integer.

var (
	// ErrEncoding indicates a malformed serialized key or signature.
	ErrEncoding = errors.New("sign: malformed encoding")
)

// packPoly packs one polynomial at the given bit width. When center is
// nonzero the stored value is center - c mod q, otherwise c itself.
func packPoly(f mldsa.Poly, width uint, center uint32) []byte {
	out := make([]byte, mldsa.N*int(width)/8)
	var acc uint64
	var bits uint
	idx := 0
	for i := 0; i < mldsa.N; i++ {
		v := f[i]
		if center != 0 {
			// center - c mod q; both operands are in [0, q)
			v = center - v
			if int32(v) < 0 {
				v += mldsa.Q
			}
		}
		acc |= uint64(v) << bits
		bits += width
		for bits >= 8 {
			out[idx] = byte(acc)
			acc >>= 8
			bits -= 8
			idx++
		}
	}
	return out
}

// unpackPoly reverses packPoly. maxStored, when nonzero, is the largest
// stored value the declared range admits; anything above it makes the
// encoding malformed.
func unpackPoly(b []byte, width uint, center uint32, maxStored uint32) (mldsa.Poly, error) {
	var f mldsa.Poly
	mask := uint32(1)<<width - 1
	var acc uint64
	var bits uint
	idx := 0
	for i := 0; i < mldsa.N; i++ {
		for bits < width {
			acc |= uint64(b[idx]) << bits
			idx++
			bits += 8
		}
		v := uint32(acc) & mask
		acc >>= width
		bits -= width
		if maxStored != 0 && v > maxStored {
			return mldsa.Poly{}, ErrEncoding
		}
		if center != 0 {
			c := center - v
			if int32(c) < 0 {
				c += mldsa.Q
			}
			f[i] = c
		} else {
			f[i] = v
		}
	}
	return f, nil
}

// packW1 packs the high-bits vector for hashing into the challenge.
func packW1(params mldsa.Params, w1 mldsa.Vec) []byte {
	width := params.W1Bits()
	out := make([]byte, 0, params.K*mldsa.N*int(width)/8)
	for i := range w1 {
		out = append(out, packPoly(w1[i], width, 0)...)
	}
	return out
}

// packHint encodes a hint vector as omega position bytes followed by k
// running-count bytes.
func packHint(params mldsa.Params, h mldsa.Vec) []byte {
	b := make([]byte, params.Omega+params.K)
	idx := 0
	for i := 0; i < params.K; i++ {
		for j := 0; j < mldsa.N; j++ {
			if h[i][j] != 0 {
				b[idx] = byte(j)
				idx++
			}
		}
		b[params.Omega+i] = byte(idx)
	}
	return b
}

// unpackHint decodes a hint vector, rejecting encodings whose positions
// are not strictly increasing, whose counts regress, or whose unused
// position bytes are nonzero. Canonical encodings keep signatures
// non-malleable.
func unpackHint(params mldsa.Params, b []byte) (mldsa.Vec, error) {
	h := mldsa.NewVec(params.K)
	idx := 0
	for i := 0; i < params.K; i++ {
		limit := int(b[params.Omega+i])
		if limit < idx || limit > params.Omega {
			return nil, ErrEncoding
		}
		first := idx
		for ; idx < limit; idx++ {
			if idx > first && b[idx-1] >= b[idx] {
				return nil, ErrEncoding
			}
			h[i][b[idx]] = 1
		}
	}
	for ; idx < params.Omega; idx++ {
		if b[idx] != 0 {
			return nil, ErrEncoding
		}
	}
	return h, nil
}

// SerializePublicKey serializes a public key as rho || packed t1.
func SerializePublicKey(pk *mldsa.PublicKey) []byte {
	out := make([]byte, 0, pk.Params.PublicKeySize())
	out = append(out, pk.Rho[:]...)
	for i := range pk.T1 {
		out = append(out, packPoly(pk.T1[i], 10, 0)...)
	}
	return out
}

// DeserializePublicKey parses a serialized public key.
func DeserializePublicKey(params mldsa.Params, data []byte) (*mldsa.PublicKey, error) {
	if err := utils.ExactLength(data, params.PublicKeySize()); err != nil {
		return nil, err
	}

	pk := &mldsa.PublicKey{Params: params, T1: mldsa.NewVec(params.K)}
	copy(pk.Rho[:], data[:mldsa.RhoSize])

	offset := mldsa.RhoSize
	const polySize = mldsa.N * 10 / 8
	for i := 0; i < params.K; i++ {
		f, err := unpackPoly(data[offset:offset+polySize], 10, 0, 0)
		if err != nil {
			return nil, err
		}
		pk.T1[i] = f
		offset += polySize
	}
	return pk, nil
}

// SerializeSecretKey serializes a secret key as
// rho || K || tr || packed s1 || packed s2 || packed t0.
func SerializeSecretKey(sk *mldsa.SecretKey) []byte {
	p := sk.Params
	eta := uint32(p.Eta)
	out := make([]byte, 0, p.SecretKeySize())
	out = append(out, sk.Rho[:]...)
	out = append(out, sk.Key[:]...)
	out = append(out, sk.TR[:]...)
	for i := range sk.S1 {
		out = append(out, packPoly(sk.S1[i], p.EtaBits(), eta)...)
	}
	for i := range sk.S2 {
		out = append(out, packPoly(sk.S2[i], p.EtaBits(), eta)...)
	}
	const t0Center = 1 << (mldsa.D - 1)
	for i := range sk.T0 {
		out = append(out, packPoly(sk.T0[i], mldsa.D, t0Center)...)
	}
	return out
}

// DeserializeSecretKey parses a serialized secret key, validating that
// every secret coefficient is inside its declared range.
func DeserializeSecretKey(params mldsa.Params, data []byte) (*mldsa.SecretKey, error) {
	if err := utils.ExactLength(data, params.SecretKeySize()); err != nil {
		return nil, err
	}

	sk := &mldsa.SecretKey{
		Params: params,
		S1:     mldsa.NewVec(params.L),
		S2:     mldsa.NewVec(params.K),
		T0:     mldsa.NewVec(params.K),
	}
	offset := 0
	offset += copy(sk.Rho[:], data[offset:offset+mldsa.RhoSize])
	offset += copy(sk.Key[:], data[offset:offset+mldsa.KeySize])
	offset += copy(sk.TR[:], data[offset:offset+mldsa.TRSize])

	eta := uint32(params.Eta)
	etaSize := mldsa.N * int(params.EtaBits()) / 8
	for i := 0; i < params.L; i++ {
		f, err := unpackPoly(data[offset:offset+etaSize], params.EtaBits(), eta, 2*eta)
		if err != nil {
			return nil, err
		}
		sk.S1[i] = f
		offset += etaSize
	}
	for i := 0; i < params.K; i++ {
		f, err := unpackPoly(data[offset:offset+etaSize], params.EtaBits(), eta, 2*eta)
		if err != nil {
			return nil, err
		}
		sk.S2[i] = f
		offset += etaSize
	}

	const t0Center = 1 << (mldsa.D - 1)
	const t0Size = mldsa.N * mldsa.D / 8
	for i := 0; i < params.K; i++ {
		f, err := unpackPoly(data[offset:offset+t0Size], mldsa.D, t0Center, 0)
		if err != nil {
			return nil, err
		}
		sk.T0[i] = f
		offset += t0Size
	}
	return sk, nil
}

// SerializeSignature serializes a signature as
// c-tilde || packed z || encoded hint.
func SerializeSignature(params mldsa.Params, sig *mldsa.Signature) []byte {
	out := make([]byte, 0, params.SignatureSize())
	out = append(out, sig.CTilde...)
	for i := range sig.Z {
		out = append(out, packPoly(sig.Z[i], params.ZBits(), params.Gamma1())...)
	}
	out = append(out, packHint(params, sig.Hint)...)
	return out
}

// DeserializeSignature parses a serialized signature. Out-of-range z
// norms are caught later by Verify's structural pre-check; malformed
// hint encodings are rejected here.
func DeserializeSignature(params mldsa.Params, data []byte) (*mldsa.Signature, error) {
	if err := utils.ExactLength(data, params.SignatureSize()); err != nil {
		return nil, err
	}

	sig := &mldsa.Signature{
		CTilde: append([]byte{}, data[:params.CTildeSize]...),
		Z:      mldsa.NewVec(params.L),
	}
	offset := params.CTildeSize

	zSize := mldsa.N * int(params.ZBits()) / 8
	for i := 0; i < params.L; i++ {
		f, err := unpackPoly(data[offset:offset+zSize], params.ZBits(), params.Gamma1(), 0)
		if err != nil {
			return nil, err
		}
		sig.Z[i] = f
		offset += zSize
	}

	h, err := unpackHint(params, data[offset:])
	if err != nil {
		return nil, err
	}
	sig.Hint = h
	return sig, nil
}
