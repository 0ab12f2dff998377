// Package sign implements key generation, signing and verification for
// the ml-dsa-go signature scheme.
package sign

import (
	"errors"

	mldsa "github.com/latticekit/ml-dsa-go"
	"github.com/latticekit/ml-dsa-go/core"
	"github.com/latticekit/ml-dsa-go/ring"
	"github.com/latticekit/ml-dsa-go/rounding"
	"github.com/latticekit/ml-dsa-go/sampling"
	"github.com/latticekit/ml-dsa-go/utils"
)

// maxAttempts caps the rejection loop. The expected number of
// iterations is a small constant for every standard parameter set, so
// hitting the cap signals a parameter or implementation defect, never a
// transient condition.
const maxAttempts = 512

// ErrIterationCap is returned when the signing loop fails to accept
// within maxAttempts iterations.
var ErrIterationCap = errors.New("sign: rejection sampling iteration cap exceeded")

// GenerateKeyPair generates a key pair for the given security level
// using the process randomness source.
func GenerateKeyPair(level mldsa.SecurityLevel) (*mldsa.KeyPair, error) {
	params, err := core.GetParams(level)
	if err != nil {
		return nil, err
	}

	seed, err := utils.SecureRandomBytes(mldsa.SeedSize)
	if err != nil {
		return nil, err
	}
	if err := utils.ValidateSeedEntropy(seed); err != nil {
		return nil, err
	}

	kp, err := GenerateKeyPairFromSeed(params, seed)
	utils.Zeroize(seed)
	return kp, err
}

// GenerateKeyPairFromSeed deterministically generates a key pair from a
// 32-byte seed. The same (params, seed) pair always yields the same
// key pair, bit for bit.
func GenerateKeyPairFromSeed(params mldsa.Params, seed []byte) (*mldsa.KeyPair, error) {
	if err := core.ValidateParams(params); err != nil {
		return nil, err
	}
	if len(seed) != mldsa.SeedSize {
		return nil, errors.New("sign: seed must be exactly 32 bytes")
	}

	// Derive (rho, rho', K) from the seed. The dimensions are bound
	// into the expansion so distinct levels never share key material.
	expanded := utils.Shake256Concat(128, seed, []byte{byte(params.K), byte(params.L)})
	rho := expanded[:32]
	rhoPrime := expanded[32:96]
	key := expanded[96:128]

	s1, s2 := sampling.ExpandS(rhoPrime, params.Eta, params.L, params.K)
	a := sampling.ExpandA(rho, params.K, params.L)

	// t = A*s1 + s2, computed in the transform domain
	t := ring.MatVecMulNTT(a, ring.NTTVec(s1), params.K, params.L)
	t1 := mldsa.NewVec(params.K)
	t0 := mldsa.NewVec(params.K)
	for i := 0; i < params.K; i++ {
		ti := ring.Add(ring.InvNTT(t[i]), s2[i])
		t1[i], t0[i] = rounding.PolyPower2Round(ti)
	}

	pk := mldsa.PublicKey{Params: params, T1: t1}
	copy(pk.Rho[:], rho)

	sk := mldsa.SecretKey{Params: params, S1: s1, S2: s2, T0: t0}
	copy(sk.Rho[:], rho)
	copy(sk.Key[:], key)

	// tr = H(rho || t1), taken over the serialized public key
	utils.Shake256Into(SerializePublicKey(&pk), sk.TR[:])

	utils.Zeroize(expanded)
	return &mldsa.KeyPair{PublicKey: pk, SecretKey: sk}, nil
}

// Sign creates a randomized signature for a message. Each call draws a
// fresh 32-byte randomizer, so two signatures over the same message
// differ.
func Sign(sk *mldsa.SecretKey, message []byte) (*mldsa.Signature, error) {
	rnd, err := utils.SecureRandomBytes(mldsa.RndSize)
	if err != nil {
		return nil, err
	}
	sig, err := signWithRnd(sk, rnd, message)
	utils.Zeroize(rnd)
	return sig, err
}

// SignDeterministic creates a deterministic signature: the randomizer
// is all zero, so two calls on the same (key, message) produce
// byte-identical signatures.
func SignDeterministic(sk *mldsa.SecretKey, message []byte) (*mldsa.Signature, error) {
	rnd := make([]byte, mldsa.RndSize)
	return signWithRnd(sk, rnd, message)
}

// signWithRnd runs the commit-challenge-response loop with rejection
// sampling until an attempt passes every bound.
func signWithRnd(sk *mldsa.SecretKey, rnd, message []byte) (*mldsa.Signature, error) {
	p := sk.Params
	if err := utils.CheckLength(len(message), utils.MaxMessageSize); err != nil {
		return nil, err
	}

	a := sampling.ExpandA(sk.Rho[:], p.K, p.L)

	// mu and rho'' are computed once, outside the loop
	mu := utils.Shake256Concat(64, sk.TR[:], message)
	rhoDoublePrime := utils.Shake256Concat(64, sk.Key[:], rnd, mu)

	s1Hat := ring.NTTVec(sk.S1)
	s2Hat := ring.NTTVec(sk.S2)
	t0Hat := ring.NTTVec(sk.T0)
	defer func() {
		for i := range s1Hat {
			utils.ZeroizeUint32(s1Hat[i][:])
		}
		for i := range s2Hat {
			utils.ZeroizeUint32(s2Hat[i][:])
		}
		utils.Zeroize(rhoDoublePrime)
	}()

	gamma2 := p.Gamma2
	zBound := p.Gamma1() - p.Beta
	r0Bound := gamma2 - p.Beta

	for attempt := 0; attempt < maxAttempts; attempt++ {
		kappa := uint16(attempt * p.L)

		// Commit: w = A*y, committed through its high bits
		y := sampling.ExpandMask(rhoDoublePrime, kappa, p.Gamma1Bits, p.L)
		w := ring.InvNTTVec(ring.MatVecMulNTT(a, ring.NTTVec(y), p.K, p.L))

		w1 := mldsa.NewVec(p.K)
		for i := range w {
			w1[i] = rounding.PolyHighBits(w[i], gamma2)
		}

		// Challenge
		cTilde := utils.Shake256Concat(p.CTildeSize, mu, packW1(p, w1))
		c := sampling.SampleInBall(cTilde, p.Tau)
		cHat := ring.NTT(c)

		// Response: z = y + c*s1
		z := mldsa.NewVec(p.L)
		for i := 0; i < p.L; i++ {
			z[i] = ring.Add(y[i], ring.InvNTT(ring.MulNTT(cHat, s1Hat[i])))
		}
		if !ring.NormBound(z, zBound) {
			// A maximal-magnitude coefficient would leak s1
			continue
		}

		// Subtracting c*s2 must not move the high bits of w
		wMinusCs2 := mldsa.NewVec(p.K)
		lowNormOK := true
		for i := 0; i < p.K; i++ {
			wMinusCs2[i] = ring.Sub(w[i], ring.InvNTT(ring.MulNTT(cHat, s2Hat[i])))
			if rounding.PolyLowBitsNorm(wMinusCs2[i], gamma2) >= r0Bound {
				lowNormOK = false
				break
			}
		}
		if !lowNormOK {
			continue
		}

		// Hints let the verifier undo the missing t0 contribution
		ct0 := mldsa.NewVec(p.K)
		for i := 0; i < p.K; i++ {
			ct0[i] = ring.InvNTT(ring.MulNTT(cHat, t0Hat[i]))
		}
		if !ring.NormBound(ct0, gamma2) {
			continue
		}

		h := mldsa.NewVec(p.K)
		weight := 0
		for i := 0; i < p.K; i++ {
			var hw int
			h[i], hw = rounding.PolyMakeHint(ring.Neg(ct0[i]), ring.Add(wMinusCs2[i], ct0[i]), gamma2)
			weight += hw
		}
		if weight > p.Omega {
			continue
		}

		return &mldsa.Signature{CTilde: cTilde, Z: z, Hint: h}, nil
	}

	return nil, ErrIterationCap
}

// Verify checks a signature against a public key and message. It
// returns a definite boolean; malformed signatures are simply invalid.
func Verify(pk *mldsa.PublicKey, message []byte, sig *mldsa.Signature) bool {
	p := pk.Params

	// Structural pre-checks: no secret material needed
	if sig == nil || len(sig.CTilde) != p.CTildeSize ||
		len(sig.Z) != p.L || len(sig.Hint) != p.K || len(pk.T1) != p.K {
		return false
	}
	if !ring.NormBound(sig.Z, p.Gamma1()-p.Beta) {
		return false
	}
	weight := 0
	for i := range sig.Hint {
		for j := range sig.Hint[i] {
			if sig.Hint[i][j] > 1 {
				return false
			}
			weight += int(sig.Hint[i][j])
		}
	}
	if weight > p.Omega {
		return false
	}

	a := sampling.ExpandA(pk.Rho[:], p.K, p.L)

	tr := utils.Shake256(SerializePublicKey(pk), mldsa.TRSize)
	mu := utils.Shake256Concat(64, tr, message)

	c := sampling.SampleInBall(sig.CTilde, p.Tau)
	cHat := ring.NTT(c)
	zHat := ring.NTTVec(sig.Z)

	// w1' = UseHint(h, A*z - c*t1*2^d)
	az := ring.MatVecMulNTT(a, zHat, p.K, p.L)
	w1 := mldsa.NewVec(p.K)
	for i := 0; i < p.K; i++ {
		t1Scaled := ring.NTT(ring.MulScalar(pk.T1[i], 1<<mldsa.D))
		wApprox := ring.InvNTT(ring.Sub(az[i], ring.MulNTT(cHat, t1Scaled)))
		w1[i] = rounding.PolyUseHint(sig.Hint[i], wApprox, p.Gamma2)
	}

	cTilde := utils.Shake256Concat(p.CTildeSize, mu, packW1(p, w1))
	return utils.ConstantTimeEqual(sig.CTilde, cTilde)
}
