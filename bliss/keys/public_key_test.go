package keys

import (
	"bytes"
	"errors"
	"testing"

	"BLISS-Signature/bliss"
)

func TestPublicKeyDERRoundTrip(t *testing.T) {
	key := generateTestKey(t, 1, "public-der")
	pub := key.PublicKey()
	der, err := pub.EncodeDER()
	if err != nil {
		t.Fatal(err)
	}
	loaded, err := LoadPublicDER(der)
	if err != nil {
		t.Fatal(err)
	}
	if !pub.Equal(loaded) {
		t.Fatal("public key changed across the DER round trip")
	}
	if _, err := LoadPublicDER(der[:len(der)-3]); !errors.Is(err, bliss.ErrEncoding) {
		t.Fatalf("truncated DER: got %v", err)
	}
}

func TestPublicKeyFingerprintStable(t *testing.T) {
	key := generateTestKey(t, 1, "fingerprint")
	pub := key.PublicKey()
	fp1, err := pub.Fingerprint()
	if err != nil {
		t.Fatal(err)
	}
	fp2, err := pub.Fingerprint()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(fp1, fp2) {
		t.Fatal("fingerprint is not stable")
	}
	if len(fp1) != 20 {
		t.Fatalf("fingerprint length %d, want 20", len(fp1))
	}

	other := generateTestKey(t, 1, "fingerprint-other").PublicKey()
	fp3, err := other.Fingerprint()
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(fp1, fp3) {
		t.Fatal("distinct keys share a fingerprint")
	}
}

func TestPublicKeyIsIndependentCopy(t *testing.T) {
	key := generateTestKey(t, 1, "public-copy")
	pub := key.PublicKey()
	pub.a[0] = (pub.a[0] + 1) % key.set.Q
	if pub.a[0] == key.a[0] {
		t.Fatal("PublicKey must copy the polynomial")
	}
}
