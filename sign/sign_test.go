package sign

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"

	mldsa "github.com/latticekit/ml-dsa-go"
	"github.com/latticekit/ml-dsa-go/core"
	"github.com/latticekit/ml-dsa-go/utils"
)

func mustKeyPair(t *testing.T, level mldsa.SecurityLevel) *mldsa.KeyPair {
	t.Helper()
	kp, err := GenerateKeyPair(level)
	if err != nil {
		t.Fatalf("GenerateKeyPair failed: %v", err)
	}
	return kp
}

func TestSignVerifyRoundTrip(t *testing.T) {
	kp := mustKeyPair(t, mldsa.MLDSA44)
	msg := []byte("message")

	sig, err := Sign(&kp.SecretKey, msg)
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}
	if !Verify(&kp.PublicKey, msg, sig) {
		t.Error("Verify rejected a valid signature")
	}
}

func TestSign_Failures(t *testing.T) {
	kp := mustKeyPair(t, mldsa.MLDSA44)
	msg := []byte("message")
	sig, err := Sign(&kp.SecretKey, msg)
	if err != nil {
		t.Fatal(err)
	}

	// Modified message
	if Verify(&kp.PublicKey, []byte("wessage"), sig) {
		t.Error("Verify passed with wrong message")
	}

	// Single flipped bit of the challenge seed
	badSig := copySignature(sig)
	badSig.CTilde[0] ^= 1
	if Verify(&kp.PublicKey, msg, badSig) {
		t.Error("Verify passed with modified challenge seed")
	}

	// Single modified response coefficient
	badSig = copySignature(sig)
	badSig.Z[0][17] = (badSig.Z[0][17] + 1) % mldsa.Q
	if Verify(&kp.PublicKey, msg, badSig) {
		t.Error("Verify passed with modified response")
	}

	// Single flipped hint bit
	badSig = copySignature(sig)
	badSig.Hint[0][5] ^= 1
	if Verify(&kp.PublicKey, msg, badSig) {
		t.Error("Verify passed with modified hint")
	}

	// Wrong public key
	other := mustKeyPair(t, mldsa.MLDSA44)
	if Verify(&other.PublicKey, msg, sig) {
		t.Error("Verify passed with wrong public key")
	}
}

func TestVerify_StructuralBounds(t *testing.T) {
	kp := mustKeyPair(t, mldsa.MLDSA44)
	msg := []byte("message")
	sig, err := Sign(&kp.SecretKey, msg)
	if err != nil {
		t.Fatal(err)
	}
	p := kp.SecretKey.Params

	// Every signature the signer returns satisfies its bounds
	zNorm := uint32(0)
	for _, f := range sig.Z {
		for _, c := range f {
			v := c
			if v > (mldsa.Q-1)/2 {
				v = mldsa.Q - v
			}
			if v > zNorm {
				zNorm = v
			}
		}
	}
	if zNorm >= p.Gamma1()-p.Beta {
		t.Errorf("signer emitted z with norm %d >= %d", zNorm, p.Gamma1()-p.Beta)
	}

	weight := 0
	for _, f := range sig.Hint {
		for _, c := range f {
			weight += int(c)
		}
	}
	if weight > p.Omega {
		t.Errorf("signer emitted hint weight %d > %d", weight, p.Omega)
	}

	// A crafted signature violating the z bound is rejected before any
	// hash comparison
	badSig := copySignature(sig)
	badSig.Z[0][0] = p.Gamma1() - p.Beta
	if Verify(&kp.PublicKey, msg, badSig) {
		t.Error("Verify passed with out-of-range z")
	}

	// A crafted signature with excessive hint weight is rejected
	badSig = copySignature(sig)
	for i := range badSig.Hint {
		for j := range badSig.Hint[i] {
			badSig.Hint[i][j] = 1
		}
	}
	if Verify(&kp.PublicKey, msg, badSig) {
		t.Error("Verify passed with excessive hint weight")
	}

	// Hint coefficients outside {0, 1} are structural failures
	badSig = copySignature(sig)
	badSig.Hint[0][0] = 2
	if Verify(&kp.PublicKey, msg, badSig) {
		t.Error("Verify passed with non-boolean hint")
	}
}

func TestSign_Deterministic(t *testing.T) {
	params, err := core.GetParams(mldsa.MLDSA44)
	if err != nil {
		t.Fatal(err)
	}
	seed := utils.Shake256([]byte("deterministic-signing"), mldsa.SeedSize)

	kp1, err := GenerateKeyPairFromSeed(params, seed)
	if err != nil {
		t.Fatalf("GenerateKeyPairFromSeed failed: %v", err)
	}
	kp2, err := GenerateKeyPairFromSeed(params, seed)
	if err != nil {
		t.Fatalf("GenerateKeyPairFromSeed failed: %v", err)
	}

	pk1 := SerializePublicKey(&kp1.PublicKey)
	pk2 := SerializePublicKey(&kp2.PublicKey)
	if !bytes.Equal(pk1, pk2) {
		t.Error("GenerateKeyPairFromSeed not deterministic")
	}

	msg := []byte("stable message")
	sig1, err := SignDeterministic(&kp1.SecretKey, msg)
	if err != nil {
		t.Fatal(err)
	}
	sig2, err := SignDeterministic(&kp2.SecretKey, msg)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(SerializeSignature(params, sig1), SerializeSignature(params, sig2)) {
		t.Error("deterministic signatures differ")
	}

	// Randomized signatures over the same message differ
	r1, err := Sign(&kp1.SecretKey, msg)
	if err != nil {
		t.Fatal(err)
	}
	r2, err := Sign(&kp1.SecretKey, msg)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(SerializeSignature(params, r1), SerializeSignature(params, r2)) {
		t.Error("randomized signatures are identical")
	}
	if !Verify(&kp1.PublicKey, msg, r1) || !Verify(&kp1.PublicKey, msg, r2) {
		t.Error("randomized signatures failed to verify")
	}
}

func TestSerializationRoundTrip(t *testing.T) {
	kp := mustKeyPair(t, mldsa.MLDSA44)
	params := kp.SecretKey.Params
	msg := []byte("message")
	sig, err := Sign(&kp.SecretKey, msg)
	if err != nil {
		t.Fatal(err)
	}

	pk2, err := DeserializePublicKey(params, SerializePublicKey(&kp.PublicKey))
	if err != nil {
		t.Fatalf("DeserializePublicKey failed: %v", err)
	}
	if diff := cmp.Diff(&kp.PublicKey, pk2); diff != "" {
		t.Errorf("public key round trip mismatch (-want +got):\n%s", diff)
	}

	sk2, err := DeserializeSecretKey(params, SerializeSecretKey(&kp.SecretKey))
	if err != nil {
		t.Fatalf("DeserializeSecretKey failed: %v", err)
	}
	if diff := cmp.Diff(&kp.SecretKey, sk2); diff != "" {
		t.Errorf("secret key round trip mismatch (-want +got):\n%s", diff)
	}

	sig2, err := DeserializeSignature(params, SerializeSignature(params, sig))
	if err != nil {
		t.Fatalf("DeserializeSignature failed: %v", err)
	}
	if diff := cmp.Diff(sig, sig2); diff != "" {
		t.Errorf("signature round trip mismatch (-want +got):\n%s", diff)
	}

	// A deserialized key pair still signs and verifies
	sig3, err := SignDeterministic(sk2, msg)
	if err != nil {
		t.Fatal(err)
	}
	if !Verify(pk2, msg, sig3) {
		t.Error("deserialized key pair failed to sign and verify")
	}
}

func copySignature(sig *mldsa.Signature) *mldsa.Signature {
	out := &mldsa.Signature{
		CTilde: append([]byte{}, sig.CTilde...),
		Z:      append(mldsa.Vec{}, sig.Z...),
		Hint:   append(mldsa.Vec{}, sig.Hint...),
	}
	return out
}
