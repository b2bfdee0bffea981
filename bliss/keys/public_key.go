package keys

import (
	"bytes"
	"crypto/sha1"
	"crypto/sha512"
	encasn1 "encoding/asn1"
	"errors"
	"fmt"

	"golang.org/x/crypto/cryptobyte"
	cbasn1 "golang.org/x/crypto/cryptobyte/asn1"

	"BLISS-Signature/bliss"
	"BLISS-Signature/measure"
)

// ErrVerification is returned when a signature does not verify.
var ErrVerification = errors.New("bliss: signature verification failed")

// PublicKey holds the public polynomial a with coefficients in [0, q).
type PublicKey struct {
	set *bliss.ParameterSet
	a   []uint32
}

// ParameterSet returns the set the key was generated under.
func (k *PublicKey) ParameterSet() *bliss.ParameterSet { return k.set }

// Keysize returns the security strength in bits.
func (k *PublicKey) Keysize() int { return k.set.Strength }

// Verify checks a BLISS signature over data. It recomputes
// w = 2*q2inv*(a*z1) + q*c mod 2q, rounds and drops, folds z2d back in and
// compares the regenerated challenge against the transmitted one.
func (k *PublicKey) Verify(scheme SignatureScheme, data, signature []byte) error {
	if scheme != SignBlissWithSHA512 {
		return fmt.Errorf("%w: %d", bliss.ErrUnsupportedScheme, scheme)
	}
	set := k.set
	sig, err := DecodeSignature(set, signature)
	if err != nil {
		return err
	}
	if !bliss.CheckNorms(set, sig.Z1, sig.Z2D) {
		return fmt.Errorf("%w: norm bounds exceeded", ErrVerification)
	}

	dataHash := sha512.Sum512(data)
	fft, err := bliss.NewFFT(set.FFT)
	if err != nil {
		return err
	}
	n := set.N
	q := int32(set.Q)
	q2 := 2 * q

	A := make([]uint32, n)
	fft.Transform(k.a, A, false)

	az := make([]uint32, n)
	for i, v := range sig.Z1 {
		if v < 0 {
			az[i] = uint32(q + v)
		} else {
			az[i] = uint32(v)
		}
	}
	fft.Transform(az, az, false)
	for i := range az {
		az[i] = (A[i] * az[i]) % uint32(q)
	}
	fft.Transform(az, az, true)

	u := make([]int32, n)
	for i := range u {
		u[i] = (2 * int32(set.Q2Inv) * int32(az[i])) % q2
	}
	for _, index := range sig.CIndices {
		u[index] = (u[index] + q) % q2
	}

	ud := make([]int16, n)
	bliss.RoundAndDrop(set, u, ud)
	p := int16(set.P)
	for i := range ud {
		value := ud[i] + sig.Z2D[i]
		if value < 0 {
			value += p
		} else if value >= p {
			value -= p
		}
		ud[i] = value
	}

	check := bliss.GenerateC(dataHash[:], ud, set)
	for i, index := range sig.CIndices {
		if check[i] != index {
			return fmt.Errorf("%w: challenge mismatch", ErrVerification)
		}
	}
	return nil
}

// EncodeDER returns SEQUENCE { SEQUENCE { keyType OID }, BIT STRING a },
// with a serialized as n big-endian 16-bit coefficients.
func (k *PublicKey) EncodeDER() ([]byte, error) {
	var b cryptobyte.Builder
	b.AddASN1(cbasn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1(cbasn1.SEQUENCE, func(b *cryptobyte.Builder) {
			b.AddASN1ObjectIdentifier(k.set.OID)
		})
		b.AddASN1BitString(publicPolyBytes(k.a))
	})
	der, err := b.Bytes()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", bliss.ErrEncoding, err)
	}
	if measure.Enabled {
		measure.Global.Add("bliss/pubkey/der", int64(len(der)))
	}
	return der, nil
}

// LoadPublicDER parses the encoding produced by EncodeDER.
func LoadPublicDER(der []byte) (*PublicKey, error) {
	input := cryptobyte.String(der)
	var body, algo cryptobyte.String
	if !input.ReadASN1(&body, cbasn1.SEQUENCE) || !input.Empty() ||
		!body.ReadASN1(&algo, cbasn1.SEQUENCE) {
		return nil, fmt.Errorf("%w: public key structure", bliss.ErrEncoding)
	}
	var oid encasn1.ObjectIdentifier
	if !algo.ReadASN1ObjectIdentifier(&oid) {
		return nil, fmt.Errorf("%w: public key type", bliss.ErrEncoding)
	}
	set, err := bliss.ParameterSetByOID(oid)
	if err != nil {
		return nil, err
	}
	var bits encasn1.BitString
	if !body.ReadASN1BitString(&bits) || !body.Empty() || bits.BitLength%8 != 0 {
		return nil, fmt.Errorf("%w: public polynomial", bliss.ErrEncoding)
	}
	a, err := publicPolyFromBytes(set, bits.Bytes)
	if err != nil {
		return nil, err
	}
	return &PublicKey{set: set, a: a}, nil
}

// Fingerprint returns the SHA-1 digest of the DER encoding.
func (k *PublicKey) Fingerprint() ([]byte, error) {
	der, err := k.EncodeDER()
	if err != nil {
		return nil, err
	}
	sum := sha1.Sum(der)
	return sum[:], nil
}

// Equal reports whether both keys hold the same polynomial under the same
// parameter set.
func (k *PublicKey) Equal(other *PublicKey) bool {
	return other != nil && k.set == other.set &&
		bytes.Equal(publicPolyBytes(k.a), publicPolyBytes(other.a))
}

func publicPolyBytes(a []uint32) []byte {
	out := make([]byte, 2*len(a))
	for i, v := range a {
		out[2*i] = byte(v >> 8)
		out[2*i+1] = byte(v)
	}
	return out
}

func publicPolyFromBytes(set *bliss.ParameterSet, data []byte) ([]uint32, error) {
	if len(data) != 2*set.N {
		return nil, fmt.Errorf("%w: public polynomial length %d, want %d", bliss.ErrEncoding, len(data), 2*set.N)
	}
	a := make([]uint32, set.N)
	for i := range a {
		v := uint32(data[2*i])<<8 | uint32(data[2*i+1])
		if v >= set.Q {
			return nil, fmt.Errorf("%w: public coefficient out of range", bliss.ErrEncoding)
		}
		a[i] = v
	}
	return a, nil
}
