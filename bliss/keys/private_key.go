package keys

import (
	"crypto/sha512"
	encasn1 "encoding/asn1"
	"encoding/pem"
	"fmt"
	"os"

	"golang.org/x/crypto/cryptobyte"
	cbasn1 "golang.org/x/crypto/cryptobyte/asn1"

	"BLISS-Signature/bliss"
	"BLISS-Signature/measure"
)

// SignatureScheme selects the hash wrapped by the signing protocol.
type SignatureScheme int

// SignBlissWithSHA512 is the only supported scheme.
const SignBlissWithSHA512 SignatureScheme = 1

const secretKeyTrialsMax = 50

// privateKeyPEMType labels the PEM wrapping of the DER encoding.
const privateKeyPEMType = "BLISS PRIVATE KEY"

// PrivateKey holds the secret pair (s1, s2) = (f, 2g+1) and the public
// polynomial a = -(2g+1)/f in Rq. A key is immutable after creation; signing
// never mutates it, so it may be shared across signers that own their own
// scratch state.
type PrivateKey struct {
	set *bliss.ParameterSet
	s1  []int8
	s2  []int8
	a   []uint32
}

// nttImageHook, when set, mutates the NTT image of s1 before the
// invertibility check. Test use only.
var nttImageHook func([]uint32)

// Generate creates a key for the given variant id using true-strength
// entropy.
func Generate(variant int) (*PrivateKey, error) {
	return GenerateWithRNG(variant, bliss.NewTrueRNG())
}

// GenerateWithRNG creates a key for the given variant id, drawing all seeds
// from rng. The loop samples sparse secrets until the Nk(S) norm bound holds
// and s1 is invertible in Rq, within a budget of 50 trials.
func GenerateWithRNG(variant int, rng bliss.RNG) (*PrivateKey, error) {
	set, err := bliss.ParameterSetByID(variant)
	if err != nil {
		return nil, err
	}
	fft, err := bliss.NewFFT(set.FFT)
	if err != nil {
		return nil, err
	}

	n := set.N
	q := set.Q
	S1 := make([]uint32, n)
	S2 := make([]uint32, n)
	A := make([]uint32, n)
	trials := 0

	for trials < secretKeyTrialsMax {
		s1, s2, err := createSecret(set, rng, &trials)
		if err != nil {
			return nil, err
		}

		// Lift the signed secrets into [0, q) before the NTT. s2 is lifted
		// with the flipped sign: the public key stores (-(2g+1))/f, which the
		// 2q-lift in signing and verification relies on.
		for i := 0; i < n; i++ {
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
		fft.Transform(S1, S1, false)
		fft.Transform(S2, S2, false)
		if nttImageHook != nil {
			nttImageHook(S1)
		}

		invertible := true
		for i := 0; i < n; i++ {
			if S1[i] == 0 {
				dbg(os.Stderr, "S1[%d] is zero - s1 is not invertible\n", i)
				invertible = false
				break
			}
			A[i] = (S2[i] * bliss.Invert(S1[i], q)) % q
		}
		if !invertible {
			bliss.ZeroInt8(s1)
			bliss.ZeroInt8(s2)
			continue
		}

		key := &PrivateKey{set: set, s1: s1, s2: s2, a: make([]uint32, n)}
		fft.Transform(A, key.a, true)
		dbg(os.Stderr, "secret key generation succeeded after %d trials\n", trials)
		return key, nil
	}
	return nil, fmt.Errorf("%w: %d trials", bliss.ErrKeyGenExhausted, trials)
}

// createSecret samples secret pairs (f, 2g+1) until the Nk(S) bound holds or
// the shared trial budget runs out.
func createSecret(set *bliss.ParameterSet, rng bliss.RNG, trials *int) ([]int8, []int8, error) {
	_, seedLen := set.MGF1Hash()
	seed := make([]byte, seedLen)
	defer bliss.ZeroBytes(seed)

	for *trials < secretKeyTrialsMax {
		*trials++

		if err := rng.GetBytes(seed); err != nil {
			return nil, nil, err
		}
		f, err := bliss.CreateVectorFromSeed(set, seed)
		if err != nil {
			return nil, nil, err
		}
		if err := rng.GetBytes(seed); err != nil {
			bliss.ZeroInt8(f)
			return nil, nil, err
		}
		g, err := bliss.CreateVectorFromSeed(set, seed)
		if err != nil {
			bliss.ZeroInt8(f)
			return nil, nil, err
		}

		// Compute 2g + 1 in place.
		for i := range g {
			g[i] *= 2
		}
		g[0]++

		nks := bliss.NksNorm(f, g, set.Kappa)
		dbg(os.Stderr, "Nk(S): %d (%d max)\n", nks, set.NksMax)
		if nks < set.NksMax {
			return f, g, nil
		}
		bliss.ZeroInt8(f)
		bliss.ZeroInt8(g)
	}
	return nil, nil, fmt.Errorf("%w: %d trials", bliss.ErrKeyGenExhausted, *trials)
}

// Sign produces an encoded signature over data using strong-strength entropy
// for the per-iteration sampler seeds.
func (k *PrivateKey) Sign(scheme SignatureScheme, data []byte) ([]byte, error) {
	return k.SignWithRNG(scheme, data, bliss.NewStrongRNG())
}

// SignWithRNG is Sign with an explicit seed source; fixing the RNG byte
// stream makes the output a deterministic function of (key, data).
func (k *PrivateKey) SignWithRNG(scheme SignatureScheme, data []byte, rng bliss.RNG) ([]byte, error) {
	if scheme != SignBlissWithSHA512 {
		return nil, fmt.Errorf("%w: %d", bliss.ErrUnsupportedScheme, scheme)
	}
	return k.signBlissWithSHA512(data, rng)
}

// signBlissWithSHA512 runs the rejection-sampling loop: Gaussian masks,
// NTT multiply by a, round-and-drop, challenge, two Bernoulli rejections and
// the final norm check. The loop has no retry cap; it only aborts when an
// underlying primitive fails.
func (k *PrivateKey) signBlissWithSHA512(data []byte, rng bliss.RNG) ([]byte, error) {
	set := k.set
	n := set.N
	q := int32(set.Q)
	q2 := 2 * q
	p := int32(set.P)
	p2 := int16(p / 2)

	dataHash := sha512.Sum512(data)
	mgfHash, seedLen := set.MGF1Hash()
	seed := make([]byte, seedLen)

	fft, err := bliss.NewFFT(set.FFT)
	if err != nil {
		return nil, err
	}
	A := make([]uint32, n)
	fft.Transform(k.a, A, false)

	sig := NewSignature(set)
	z1 := sig.Z1 // y1 shares the z1 storage
	y1 := z1
	ud := sig.Z2D // ud shares the z2d storage

	ay := make([]uint32, n)
	y2 := make([]int32, n)
	z2 := y2
	s1c := make([]int32, n)
	s2c := make([]int32, n)
	u := make([]int32, n)
	uz2d := make([]int16, n)

	success := false
	defer func() {
		bliss.ZeroBytes(seed)
		bliss.ZeroInt32(y2)
		bliss.ZeroInt32(s1c)
		bliss.ZeroInt32(s2c)
		bliss.ZeroInt32(u)
		bliss.ZeroInt16(uz2d)
		if !success {
			bliss.ZeroInt32(sig.Z1)
			bliss.ZeroInt16(sig.Z2D)
		}
	}()

	tests := 0
	for {
		tests++

		if err := rng.GetBytes(seed); err != nil {
			return nil, err
		}
		sampler, err := bliss.NewSampler(mgfHash, seed, set)
		if err != nil {
			return nil, err
		}

		// Gaussian sampling for the masking vectors y1 and y2. The range and
		// moment accumulators are debug-only and reset every iteration.
		var y1Min, y1Max, y2Min, y2Max int32
		var mean1, mean2, sigma1, sigma2 float64
		for i := 0; i < n; i++ {
			y1i, err := sampler.Gaussian()
			if err != nil {
				return nil, err
			}
			y2i, err := sampler.Gaussian()
			if err != nil {
				return nil, err
			}
			y1[i] = y1i
			y2[i] = y2i

			if i == 0 {
				y1Min, y1Max = y1i, y1i
				y2Min, y2Max = y2i, y2i
			} else {
				if y1i < y1Min {
					y1Min = y1i
				} else if y1i > y1Max {
					y1Max = y1i
				}
				if y2i < y2Min {
					y2Min = y2i
				} else if y2i > y2Max {
					y2Max = y2i
				}
			}
			mean1 += float64(y1i)
			mean2 += float64(y2i)
			sigma1 += float64(y1i) * float64(y1i)
			sigma2 += float64(y2i) * float64(y2i)

			if y1i < 0 {
				ay[i] = uint32(q + y1i)
			} else {
				ay[i] = uint32(y1i)
			}
		}
		mean1 /= float64(n)
		mean2 /= float64(n)
		sigma1 = sigma1/float64(n) - mean1*mean1
		sigma2 = sigma2/float64(n) - mean2*mean2
		dbg(os.Stderr, "y1 = %d..%d (sigma2 = %5.0f, mean = %4.1f)\n", y1Min, y1Max, sigma1, mean1)
		dbg(os.Stderr, "y2 = %d..%d (sigma2 = %5.0f, mean = %4.1f)\n", y2Min, y2Max, sigma2, mean2)

		fft.Transform(ay, ay, false)
		for i := range ay {
			ay[i] = (A[i] * ay[i]) % uint32(q)
		}
		fft.Transform(ay, ay, true)

		for i := 0; i < n; i++ {
			ui := 2*int32(set.Q2Inv)*int32(ay[i]) + y2[i]
			if ui < 0 {
				ui += q2
			}
			u[i] = ui % q2
		}
		bliss.RoundAndDrop(set, u, ud)

		copy(sig.CIndices, bliss.GenerateC(dataHash[:], ud, set))

		multiplyByC(k.s1, sig.CIndices, s1c)
		multiplyByC(k.s2, sig.CIndices, s2c)

		// Rejection A: accept with probability exp(-(M - norm)/(2 sigma^2)).
		norm := bliss.ScalarProduct(s1c, s1c) + bliss.ScalarProduct(s2c, s2c)
		accepted, err := sampler.BernoulliExp(set.M - uint32(norm))
		if err != nil {
			return nil, err
		}
		dbg(os.Stderr, "norm2(s1*c) + norm2(s2*c) = %d, %s\n", norm, acceptedString(accepted))
		if !accepted {
			continue
		}

		positive, err := sampler.Sign()
		if err != nil {
			return nil, err
		}
		for i := 0; i < n; i++ {
			if positive {
				z1[i] = y1[i] + s1c[i]
				z2[i] = y2[i] + s2c[i]
			} else {
				z1[i] = y1[i] - s1c[i]
				z2[i] = y2[i] - s2c[i]
			}
		}

		// Rejection B: accept with probability 1/cosh(scalar/sigma^2).
		scalar := bliss.ScalarProduct(z1, s1c) + bliss.ScalarProduct(z2, s2c)
		accepted, err = sampler.BernoulliCosh(scalar)
		if err != nil {
			return nil, err
		}
		dbg(os.Stderr, "scalar(z1,s1*c) + scalar(z2,s2*c) = %d, %s\n", scalar, acceptedString(accepted))
		if !accepted {
			continue
		}

		// Derive z2 with dropped bits.
		for i := 0; i < n; i++ {
			u[i] -= z2[i]
			if u[i] < 0 {
				u[i] += q2
			} else if u[i] >= q2 {
				u[i] -= q2
			}
		}
		bliss.RoundAndDrop(set, u, uz2d)

		for i := 0; i < n; i++ {
			value := ud[i] - uz2d[i]
			if value <= -p2 {
				value += int16(p)
			} else if value > p2 {
				value -= int16(p)
			}
			sig.Z2D[i] = value
		}

		if !bliss.CheckNorms(set, z1, sig.Z2D) {
			continue
		}
		dbg(os.Stderr, "signature generation needed %d rounds\n", tests)
		break
	}
	success = true
	return sig.Encode(), nil
}

func acceptedString(accepted bool) string {
	if accepted {
		return "accepted"
	}
	return "rejected"
}

// multiplyByC accumulates the negative-wrapped product of s with the sparse
// binary challenge whose support is cIndices.
func multiplyByC(s []int8, cIndices []uint16, product []int32) {
	n := len(s)
	for i := range product {
		var acc int32
		for _, index := range cIndices {
			j := i - int(index)
			if j < 0 {
				acc -= int32(s[j+n])
			} else {
				acc += int32(s[j])
			}
		}
		product[i] = acc
	}
}

// PublicKey derives the public half of the key.
func (k *PrivateKey) PublicKey() *PublicKey {
	return &PublicKey{set: k.set, a: append([]uint32(nil), k.a...)}
}

// ParameterSet returns the set the key was generated under.
func (k *PrivateKey) ParameterSet() *bliss.ParameterSet { return k.set }

// Keysize returns the security strength in bits.
func (k *PrivateKey) Keysize() int { return k.set.Strength }

// Destroy zeroizes the secret polynomials and drops all references.
func (k *PrivateKey) Destroy() {
	bliss.ZeroInt8(k.s1)
	bliss.ZeroInt8(k.s2)
	k.s1 = nil
	k.s2 = nil
	k.a = nil
}

// EncodeDER returns SEQUENCE { keyType OID, OCTET STRING a (2n big-endian
// bytes), OCTET STRING s1 (n bytes), OCTET STRING s2 (n bytes) }.
func (k *PrivateKey) EncodeDER() ([]byte, error) {
	var b cryptobyte.Builder
	b.AddASN1(cbasn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1ObjectIdentifier(k.set.OID)
		b.AddASN1OctetString(publicPolyBytes(k.a))
		b.AddASN1OctetString(int8Bytes(k.s1))
		b.AddASN1OctetString(int8Bytes(k.s2))
	})
	der, err := b.Bytes()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", bliss.ErrEncoding, err)
	}
	if measure.Enabled {
		measure.Global.Add("bliss/privkey/der", int64(len(der)))
	}
	return der, nil
}

// EncodePEM wraps the DER encoding in a PEM block.
func (k *PrivateKey) EncodePEM() ([]byte, error) {
	der, err := k.EncodeDER()
	if err != nil {
		return nil, err
	}
	return pem.EncodeToMemory(&pem.Block{Type: privateKeyPEMType, Bytes: der}), nil
}

// LoadDER parses and validates the encoding produced by EncodeDER. Any
// length mismatch or unknown OID aborts the load; the secret invariants
// (coefficient ranges, parity of s2, the Nk(S) bound the signing loop relies
// on) are re-checked so a hostile encoding cannot reach the signer.
func LoadDER(der []byte) (*PrivateKey, error) {
	input := cryptobyte.String(der)
	var body cryptobyte.String
	if !input.ReadASN1(&body, cbasn1.SEQUENCE) || !input.Empty() {
		return nil, fmt.Errorf("%w: private key structure", bliss.ErrEncoding)
	}
	var oid encasn1.ObjectIdentifier
	if !body.ReadASN1ObjectIdentifier(&oid) {
		return nil, fmt.Errorf("%w: private key type", bliss.ErrEncoding)
	}
	set, err := bliss.ParameterSetByOID(oid)
	if err != nil {
		return nil, err
	}
	var pub, sec1, sec2 cryptobyte.String
	if !body.ReadASN1(&pub, cbasn1.OCTET_STRING) ||
		!body.ReadASN1(&sec1, cbasn1.OCTET_STRING) ||
		!body.ReadASN1(&sec2, cbasn1.OCTET_STRING) || !body.Empty() {
		return nil, fmt.Errorf("%w: private key fields", bliss.ErrEncoding)
	}
	if len(sec1) != set.N || len(sec2) != set.N {
		return nil, fmt.Errorf("%w: secret length", bliss.ErrEncoding)
	}
	a, err := publicPolyFromBytes(set, pub)
	if err != nil {
		return nil, err
	}
	s1 := bytesToInt8(sec1)
	s2 := bytesToInt8(sec2)
	if err := checkSecretShape(set, s1, s2); err != nil {
		bliss.ZeroInt8(s1)
		bliss.ZeroInt8(s2)
		return nil, err
	}
	return &PrivateKey{set: set, s1: s1, s2: s2, a: a}, nil
}

// LoadPEM unwraps a PEM block and parses the contained DER key.
func LoadPEM(data []byte) (*PrivateKey, error) {
	block, _ := pem.Decode(data)
	if block == nil || block.Type != privateKeyPEMType {
		return nil, fmt.Errorf("%w: PEM block", bliss.ErrEncoding)
	}
	return LoadDER(block.Bytes)
}

func checkSecretShape(set *bliss.ParameterSet, s1, s2 []int8) error {
	for _, v := range s1 {
		if v < -2 || v > 2 {
			return fmt.Errorf("%w: s1 coefficient out of range", bliss.ErrEncoding)
		}
	}
	if s2[0]%2 == 0 {
		return fmt.Errorf("%w: s2[0] must be odd", bliss.ErrEncoding)
	}
	for i, v := range s2 {
		base := int(v)
		if i == 0 {
			base--
		}
		if base%2 != 0 || base < -4 || base > 4 {
			return fmt.Errorf("%w: s2 coefficient out of range", bliss.ErrEncoding)
		}
	}
	if nks := bliss.NksNorm(s1, s2, set.Kappa); nks >= set.NksMax {
		return fmt.Errorf("%w: Nk(S) bound violated", bliss.ErrEncoding)
	}
	return nil
}

func int8Bytes(v []int8) []byte {
	out := make([]byte, len(v))
	for i, x := range v {
		out[i] = byte(x)
	}
	return out
}

func bytesToInt8(v []byte) []int8 {
	out := make([]int8, len(v))
	for i, x := range v {
		out[i] = int8(x)
	}
	return out
}
