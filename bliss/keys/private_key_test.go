package keys

import (
	"errors"
	"testing"

	"golang.org/x/crypto/cryptobyte"
	cbasn1 "golang.org/x/crypto/cryptobyte/asn1"

	"BLISS-Signature/bliss"
)

func seededRNG(t *testing.T, seed string) bliss.RNG {
	t.Helper()
	rng, err := bliss.NewSeededRNG([]byte(seed))
	if err != nil {
		t.Fatal(err)
	}
	return rng
}

func generateTestKey(t *testing.T, variant int, seed string) *PrivateKey {
	t.Helper()
	key, err := GenerateWithRNG(variant, seededRNG(t, seed))
	if err != nil {
		t.Fatalf("variant %d: %v", variant, err)
	}
	return key
}

func TestGenerateDeterministicWithSeededRNG(t *testing.T) {
	a := generateTestKey(t, 1, "keygen-seed-case-s1")
	b := generateTestKey(t, 1, "keygen-seed-case-s1")
	for i := range a.s1 {
		if a.s1[i] != b.s1[i] || a.s2[i] != b.s2[i] || a.a[i] != b.a[i] {
			t.Fatalf("seeded generation diverged at coefficient %d", i)
		}
	}
	c := generateTestKey(t, 1, "keygen-seed-case-s1-other")
	same := true
	for i := range a.s1 {
		if a.s1[i] != c.s1[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatal("distinct RNG seeds produced an identical secret")
	}
}

func TestGeneratedSecretShape(t *testing.T) {
	for _, variant := range []int{1, 3, 4} {
		key := generateTestKey(t, variant, "secret-shape")
		set := key.set

		ones, twos := 0, 0
		for _, v := range key.s1 {
			switch {
			case v == 1 || v == -1:
				ones++
			case v == 2 || v == -2:
				twos++
			case v != 0:
				t.Fatalf("%s: s1 coefficient %d out of range", set.Name, v)
			}
		}
		if ones != set.NonZero1 || twos != set.NonZero2 {
			t.Fatalf("%s: s1 has %d/%d nonzeros, want %d/%d",
				set.Name, ones, twos, set.NonZero1, set.NonZero2)
		}

		if key.s2[0]%2 == 0 {
			t.Fatalf("%s: s2[0] = %d must be odd", set.Name, key.s2[0])
		}
		g2, g4 := 0, 0
		for i, v := range key.s2 {
			base := int(v)
			if i == 0 {
				base--
			}
			switch {
			case base == 2 || base == -2:
				g2++
			case base == 4 || base == -4:
				g4++
			case base != 0:
				t.Fatalf("%s: s2 coefficient %d at %d out of range", set.Name, v, i)
			}
		}
		if g2 != set.NonZero1 || g4 != set.NonZero2 {
			t.Fatalf("%s: s2 has %d/%d nonzeros, want %d/%d",
				set.Name, g2, g4, set.NonZero1, set.NonZero2)
		}

		if nks := bliss.NksNorm(key.s1, key.s2, set.Kappa); nks >= set.NksMax {
			t.Fatalf("%s: accepted key with Nk(S) = %d >= %d", set.Name, nks, set.NksMax)
		}
	}
}

// liftSecrets mirrors the key generation lifts of s1 and s2 into [0, q).
func liftSecrets(set *bliss.ParameterSet, s1, s2 []int8) (S1, S2 []uint32) {
	q := set.Q
	S1 = make([]uint32, set.N)
	S2 = make([]uint32, set.N)
	for i := 0; i < set.N; i++ {
		if s1[i] < 0 {
			S1[i] = uint32(int32(s1[i]) + int32(q))
		} else {
			S1[i] = uint32(s1[i])
		}
		if s2[i] > 0 {
			S2[i] = q - uint32(s2[i])
		} else {
			S2[i] = uint32(-int32(s2[i]))
		}
	}
	return
}

func TestPublicKeyRelationAndInvertibility(t *testing.T) {
	key := generateTestKey(t, 1, "public-relation")
	set := key.set
	fft, err := bliss.NewFFT(set.FFT)
	if err != nil {
		t.Fatal(err)
	}
	S1, S2 := liftSecrets(set, key.s1, key.s2)
	fft.Transform(S1, S1, false)
	fft.Transform(S2, S2, false)
	A := make([]uint32, set.N)
	fft.Transform(key.a, A, false)
	for i := 0; i < set.N; i++ {
		if S1[i] == 0 {
			t.Fatalf("accepted key with non-invertible s1 (zero at %d)", i)
		}
		if key.a[i] >= set.Q {
			t.Fatalf("public coefficient %d out of range", key.a[i])
		}
		if (S1[i]*A[i])%set.Q != S2[i] {
			t.Fatalf("a*s1 != -(2g+1) in the NTT domain at %d", i)
		}
	}
}

func TestInvertibilityFailureAdvancesTrials(t *testing.T) {
	calls := 0
	nttImageHook = func(S1 []uint32) {
		calls++
		if calls == 1 {
			S1[0] = 0
		}
	}
	defer func() { nttImageHook = nil }()

	key, err := GenerateWithRNG(1, seededRNG(t, "forced-ntt-zero"))
	if err != nil {
		t.Fatal(err)
	}
	if calls < 2 {
		t.Fatalf("generation did not retry after the forced zero (hook ran %d times)", calls)
	}
	if key == nil {
		t.Fatal("no key after retry")
	}
}

func TestKeyGenExhaustedWhenNeverInvertible(t *testing.T) {
	nttImageHook = func(S1 []uint32) { S1[0] = 0 }
	defer func() { nttImageHook = nil }()

	if _, err := GenerateWithRNG(1, seededRNG(t, "never-invertible")); !errors.Is(err, bliss.ErrKeyGenExhausted) {
		t.Fatalf("got %v, want ErrKeyGenExhausted", err)
	}
}

func TestUnknownVariant(t *testing.T) {
	if _, err := Generate(2); !errors.Is(err, bliss.ErrUnknownParameterSet) {
		t.Fatalf("got %v, want ErrUnknownParameterSet", err)
	}
}

func TestPrivateKeyDERRoundTrip(t *testing.T) {
	key := generateTestKey(t, 1, "der-round-trip")
	der, err := key.EncodeDER()
	if err != nil {
		t.Fatal(err)
	}
	loaded, err := LoadDER(der)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.set != key.set {
		t.Fatal("parameter set changed across the round trip")
	}
	for i := range key.s1 {
		if loaded.s1[i] != key.s1[i] || loaded.s2[i] != key.s2[i] || loaded.a[i] != key.a[i] {
			t.Fatalf("round trip mismatch at %d", i)
		}
	}

	// A loaded key must sign identically to the original on an identical
	// RNG trace.
	msg := []byte("round trip message")
	sig1, err := key.SignWithRNG(SignBlissWithSHA512, msg, seededRNG(t, "rt-sign"))
	if err != nil {
		t.Fatal(err)
	}
	sig2, err := loaded.SignWithRNG(SignBlissWithSHA512, msg, seededRNG(t, "rt-sign"))
	if err != nil {
		t.Fatal(err)
	}
	if len(sig1) != len(sig2) {
		t.Fatal("signature lengths differ")
	}
	for i := range sig1 {
		if sig1[i] != sig2[i] {
			t.Fatalf("loaded key signed differently at byte %d", i)
		}
	}
}

func TestPrivateKeyPEMRoundTrip(t *testing.T) {
	key := generateTestKey(t, 1, "pem-round-trip")
	pemBytes, err := key.EncodePEM()
	if err != nil {
		t.Fatal(err)
	}
	loaded, err := LoadPEM(pemBytes)
	if err != nil {
		t.Fatal(err)
	}
	for i := range key.s1 {
		if loaded.s1[i] != key.s1[i] {
			t.Fatalf("PEM round trip mismatch at %d", i)
		}
	}
	if _, err := LoadPEM([]byte("not a pem block")); !errors.Is(err, bliss.ErrEncoding) {
		t.Fatalf("got %v, want ErrEncoding", err)
	}
}

// buildPrivateDER assembles a private-key SEQUENCE with arbitrary field
// contents for negative decoding tests.
func buildPrivateDER(t *testing.T, set *bliss.ParameterSet, pub, sec1, sec2 []byte) []byte {
	t.Helper()
	var b cryptobyte.Builder
	b.AddASN1(cbasn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1ObjectIdentifier(set.OID)
		b.AddASN1OctetString(pub)
		b.AddASN1OctetString(sec1)
		b.AddASN1OctetString(sec2)
	})
	der, err := b.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	return der
}

func TestLoadDERRejectsTruncatedSecret(t *testing.T) {
	key := generateTestKey(t, 1, "truncated-secret")
	set := key.set
	pub := publicPolyBytes(key.a)
	sec1 := int8Bytes(key.s1)
	sec2 := int8Bytes(key.s2)

	der := buildPrivateDER(t, set, pub, sec1[:set.N-1], sec2)
	if _, err := LoadDER(der); !errors.Is(err, bliss.ErrEncoding) {
		t.Fatalf("short secret1: got %v, want ErrEncoding", err)
	}

	der = buildPrivateDER(t, set, pub[:2*set.N-2], sec1, sec2)
	if _, err := LoadDER(der); !errors.Is(err, bliss.ErrEncoding) {
		t.Fatalf("short public: got %v, want ErrEncoding", err)
	}
}

func TestLoadDERRejectsUnknownOID(t *testing.T) {
	key := generateTestKey(t, 1, "unknown-oid")
	der := buildPrivateDER(t, key.set, publicPolyBytes(key.a), int8Bytes(key.s1), int8Bytes(key.s2))

	var b cryptobyte.Builder
	b.AddASN1(cbasn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1ObjectIdentifier(append(key.set.OID[:len(key.set.OID):len(key.set.OID)], 99))
		b.AddASN1OctetString(publicPolyBytes(key.a))
		b.AddASN1OctetString(int8Bytes(key.s1))
		b.AddASN1OctetString(int8Bytes(key.s2))
	})
	bad, err := b.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := LoadDER(bad); !errors.Is(err, bliss.ErrUnknownParameterSet) {
		t.Fatalf("got %v, want ErrUnknownParameterSet", err)
	}
	// The well-formed encoding still parses.
	if _, err := LoadDER(der); err != nil {
		t.Fatal(err)
	}
}

func TestLoadDERRejectsOversizedSecret(t *testing.T) {
	key := generateTestKey(t, 1, "oversized-secret")
	sec1 := int8Bytes(key.s1)
	sec1[0] = 0x7f // 127 is far outside the ternary range
	der := buildPrivateDER(t, key.set, publicPolyBytes(key.a), sec1, int8Bytes(key.s2))
	if _, err := LoadDER(der); !errors.Is(err, bliss.ErrEncoding) {
		t.Fatalf("got %v, want ErrEncoding", err)
	}
}

func TestDestroyZeroizes(t *testing.T) {
	key := generateTestKey(t, 1, "destroy")
	s1 := key.s1
	s2 := key.s2
	key.Destroy()
	for i := range s1 {
		if s1[i] != 0 || s2[i] != 0 {
			t.Fatal("secret material survived Destroy")
		}
	}
	if key.s1 != nil || key.s2 != nil || key.a != nil {
		t.Fatal("Destroy must drop the key references")
	}
}

func TestKeysize(t *testing.T) {
	for _, tc := range []struct{ variant, strength int }{{1, 128}, {3, 160}, {4, 192}} {
		key := generateTestKey(t, tc.variant, "keysize")
		if key.Keysize() != tc.strength {
			t.Fatalf("variant %d: keysize %d, want %d", tc.variant, key.Keysize(), tc.strength)
		}
		if key.PublicKey().Keysize() != tc.strength {
			t.Fatalf("variant %d: public keysize mismatch", tc.variant)
		}
	}
}
