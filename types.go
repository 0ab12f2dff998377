package mldsa

// SecurityLevel selects one of the standard parameter sets.
type SecurityLevel string

const (
	// MLDSA44 provides NIST security category 2.
	MLDSA44 SecurityLevel = "ML-DSA-44"
	// MLDSA65 provides NIST security category 3.
	MLDSA65 SecurityLevel = "ML-DSA-65"
	// MLDSA87 provides NIST security category 5.
	MLDSA87 SecurityLevel = "ML-DSA-87"
)

// Global constants shared by every parameter set.
const (
	// N is the number of coefficients of a ring element.
	N = 256

	// Q is the prime modulus: 2^23 - 2^13 + 1.
	Q = 8380417

	// D is the number of low-order bits dropped from t at key generation.
	D = 13

	// SeedSize is the size in bytes of the key generation seed xi.
	SeedSize = 32

	// RhoSize is the size in bytes of the public matrix seed rho.
	RhoSize = 32

	// KeySize is the size in bytes of the private signing seed K.
	KeySize = 32

	// TRSize is the size in bytes of the public key digest tr.
	TRSize = 64

	// RndSize is the size in bytes of the signing randomizer rnd.
	RndSize = 32
)

// Poly is a ring element: a polynomial in Z_q[x]/(x^N + 1) with
// coefficients canonically reduced to [0, Q).
type Poly [N]uint32

// Vec is a vector of ring elements. Its length is k or l depending on
// which side of the public matrix it lives on.
type Vec []Poly

// NewVec allocates a zero vector of the given dimension.
func NewVec(dim int) Vec {
	return make(Vec, dim)
}

// Params contains the complete parameter set for a security level.
type Params struct {
	Level SecurityLevel `json:"level"`

	K          int    `json:"k"`           // Rows of the public matrix A
	L          int    `json:"l"`           // Columns of the public matrix A
	Eta        int    `json:"eta"`         // Secret coefficient range [-eta, eta]
	Tau        int    `json:"tau"`         // Nonzero coefficients of the challenge
	Beta       uint32 `json:"beta"`        // tau * eta, rejection margin
	Gamma1Bits uint   `json:"gamma1_bits"` // gamma1 = 1 << Gamma1Bits, mask range
	Gamma2     uint32 `json:"gamma2"`      // Low-order rounding range
	Omega      int    `json:"omega"`       // Maximum total hint weight
	CTildeSize int    `json:"ctilde_size"` // Challenge seed length in bytes
}

// Gamma1 returns the masking range gamma1.
func (p Params) Gamma1() uint32 {
	return 1 << p.Gamma1Bits
}

// EtaBits returns the packed width of a secret coefficient.
func (p Params) EtaBits() uint {
	if p.Eta == 2 {
		return 3
	}
	return 4
}

// ZBits returns the packed width of a response coefficient.
func (p Params) ZBits() uint {
	return p.Gamma1Bits + 1
}

// W1Bits returns the packed width of a high-bits coefficient.
func (p Params) W1Bits() uint {
	if p.Gamma2 == (Q-1)/32 {
		return 4
	}
	return 6
}

// PublicKeySize returns the serialized public key length in bytes.
func (p Params) PublicKeySize() int {
	return RhoSize + p.K*N*10/8
}

// SecretKeySize returns the serialized secret key length in bytes.
func (p Params) SecretKeySize() int {
	return RhoSize + KeySize + TRSize + (p.K+p.L)*N*int(p.EtaBits())/8 + p.K*N*D/8
}

// SignatureSize returns the serialized signature length in bytes.
func (p Params) SignatureSize() int {
	return p.CTildeSize + p.L*N*int(p.ZBits())/8 + p.Omega + p.K
}

// PublicKey holds the verification key: the matrix seed rho and the
// high-order part t1 of t = A*s1 + s2.
type PublicKey struct {
	Rho    [RhoSize]byte
	T1     Vec // dimension K
	Params Params
}

// SecretKey holds the signing key. It is created once by key generation
// and never mutated afterwards.
type SecretKey struct {
	Rho    [RhoSize]byte
	Key    [KeySize]byte
	TR     [TRSize]byte
	S1     Vec // dimension L, coefficients in [-eta, eta]
	S2     Vec // dimension K, coefficients in [-eta, eta]
	T0     Vec // dimension K, low-order part of t
	Params Params
}

// KeyPair bundles a public and secret key generated from one seed.
type KeyPair struct {
	PublicKey PublicKey
	SecretKey SecretKey
}

// Signature is the output of signing: the challenge seed c-tilde, the
// response vector z and the hint vector h. It is produced once per
// message and never mutated afterwards.
type Signature struct {
	CTilde []byte
	Z      Vec // dimension L, infinity norm < gamma1 - beta
	Hint   Vec // dimension K, coefficients in {0, 1}, total weight <= omega
}
