package bliss

import (
	"crypto/sha1"
	"crypto/sha256"
	"encoding/asn1"
	"fmt"
	"hash"
	"sync"
)

// FFTParams identifies the negacyclic NTT a parameter set multiplies with.
type FFTParams struct {
	N int
	Q uint64
}

// ParameterSet holds the immutable constants of one BLISS variant. Sets are
// owned by the process-wide registry and handed out as shared read-only
// references; they must never be mutated.
type ParameterSet struct {
	ID       int
	OID      asn1.ObjectIdentifier
	Name     string
	Strength int // security level in bits

	N     int    // ring degree, power of two
	NBits int    // log2(N)
	Q     uint32 // odd prime modulus
	QBits int
	Q2Inv uint32 // (q+1)/2, the lift factor from mod q to mod 2q

	NonZero1 int // number of +-1 entries in a secret vector
	NonZero2 int // number of +-2 entries in a secret vector
	Kappa    int // challenge Hamming weight
	NksMax   uint32

	Sigma      int    // Gaussian standard deviation
	KSigma     uint32 // ceil(sigma / sigma_bin)
	KSigmaBits int
	M          uint32 // exp-scaled rejection constant, M >= NksMax

	BInf int32
	B2   int64

	D      uint   // dropped bits
	P      int32  // floor(2q / 2^d)
	Z1Bits int    // encoded width of a z1 coefficient
	Z2Bits int    // encoded width of a z2d coefficient

	FFT *FFTParams

	expOnce sync.Once
	expTab  [][]uint32
}

// MGF1Hash returns the hash constructor and seed length used to key the MGF1
// bit spender for this set: SHA-1 up to 160-bit strength, SHA-256 above.
func (s *ParameterSet) MGF1Hash() (func() hash.Hash, int) {
	if s.Strength > 160 {
		return sha256.New, sha256.Size
	}
	return sha1.New, sha1.Size
}

var fftParams12289x512 = &FFTParams{N: 512, Q: 12289}

// blissOID returns the object identifier of a variant under the scheme arc.
func blissOID(variant int) asn1.ObjectIdentifier {
	return asn1.ObjectIdentifier{1, 3, 6, 1, 4, 1, 36906, 11, variant}
}

var parameterSets = []*ParameterSet{
	{
		ID:         1,
		OID:        blissOID(1),
		Name:       "BLISS-I",
		Strength:   128,
		N:          512,
		NBits:      9,
		Q:          12289,
		QBits:      14,
		Q2Inv:      6145,
		NonZero1:   154,
		NonZero2:   0,
		Kappa:      23,
		NksMax:     46479,
		Sigma:      215,
		KSigma:     254,
		KSigmaBits: 8,
		M:          46539,
		BInf:       2047,
		B2:         12872,
		D:          10,
		P:          24,
		Z1Bits:     12,
		Z2Bits:     5,
		FFT:        fftParams12289x512,
	},
	{
		ID:         3,
		OID:        blissOID(3),
		Name:       "BLISS-III",
		Strength:   160,
		N:          512,
		NBits:      9,
		Q:          12289,
		QBits:      14,
		Q2Inv:      6145,
		NonZero1:   216,
		NonZero2:   16,
		Kappa:      30,
		NksMax:     128626,
		Sigma:      250,
		KSigma:     295,
		KSigmaBits: 9,
		M:          128686,
		BInf:       1760,
		B2:         10206,
		D:          9,
		P:          48,
		Z1Bits:     12,
		Z2Bits:     6,
		FFT:        fftParams12289x512,
	},
	{
		ID:         4,
		OID:        blissOID(4),
		Name:       "BLISS-IV",
		Strength:   192,
		N:          512,
		NBits:      9,
		Q:          12289,
		QBits:      14,
		Q2Inv:      6145,
		NonZero1:   231,
		NonZero2:   31,
		Kappa:      39,
		NksMax:     244669,
		Sigma:      271,
		KSigma:     320,
		KSigmaBits: 9,
		M:          244729,
		BInf:       1613,
		B2:         9901,
		D:          8,
		P:          96,
		Z1Bits:     12,
		Z2Bits:     7,
		FFT:        fftParams12289x512,
	},
}

// ParameterSetByID looks up a variant by numeric id (1, 3 or 4).
func ParameterSetByID(id int) (*ParameterSet, error) {
	for _, set := range parameterSets {
		if set.ID == id {
			return set, set.validate()
		}
	}
	return nil, fmt.Errorf("%w: id %d", ErrUnknownParameterSet, id)
}

// ParameterSetByOID looks up a variant by object identifier.
func ParameterSetByOID(oid asn1.ObjectIdentifier) (*ParameterSet, error) {
	for _, set := range parameterSets {
		if set.OID.Equal(oid) {
			return set, set.validate()
		}
	}
	return nil, fmt.Errorf("%w: oid %v", ErrUnknownParameterSet, oid)
}

// validate cross-checks a set against its FFT parameters.
func (s *ParameterSet) validate() error {
	if s.FFT == nil || s.FFT.N != s.N || s.FFT.Q != uint64(s.Q) {
		return fmt.Errorf("%w: %s", ErrParameterMismatch, s.Name)
	}
	return nil
}
