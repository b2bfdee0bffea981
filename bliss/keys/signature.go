package keys

import (
	"fmt"

	"BLISS-Signature/bliss"
	"BLISS-Signature/measure"
)

// Signature holds one BLISS signature: the z1 vector, the dropped-bit z2
// vector and the kappa nonzero positions of the challenge polynomial.
type Signature struct {
	set      *bliss.ParameterSet
	Z1       []int32
	Z2D      []int16
	CIndices []uint16
}

// NewSignature allocates an empty signature for the parameter set.
func NewSignature(set *bliss.ParameterSet) *Signature {
	return &Signature{
		set:      set,
		Z1:       make([]int32, set.N),
		Z2D:      make([]int16, set.N),
		CIndices: make([]uint16, set.Kappa),
	}
}

func signatureBits(set *bliss.ParameterSet) int {
	return set.N*set.Z1Bits + set.N*set.Z2Bits + set.Kappa*set.NBits
}

// Encode packs the signature into its fixed-width wire form: n z1
// coefficients of Z1Bits in two's complement, n z2d coefficients of Z2Bits,
// then kappa challenge indices of NBits each.
func (s *Signature) Encode() []byte {
	w := newBitWriter(signatureBits(s.set))
	for _, v := range s.Z1 {
		w.writeSigned(v, s.set.Z1Bits)
	}
	for _, v := range s.Z2D {
		w.writeSigned(int32(v), s.set.Z2Bits)
	}
	for _, v := range s.CIndices {
		w.write(uint32(v), s.set.NBits)
	}
	out := w.bytes()
	if measure.Enabled {
		measure.Global.Add("bliss/signature/encoded", int64(len(out)))
	}
	return out
}

// DecodeSignature unpacks and validates a signature: exact length, challenge
// indices distinct and inside [0, n), zero padding bits.
func DecodeSignature(set *bliss.ParameterSet, data []byte) (*Signature, error) {
	want := (signatureBits(set) + 7) / 8
	if len(data) != want {
		return nil, fmt.Errorf("%w: signature length %d, want %d", bliss.ErrEncoding, len(data), want)
	}
	sig := NewSignature(set)
	r := newBitReader(data)
	for i := range sig.Z1 {
		v, ok := r.readSigned(set.Z1Bits)
		if !ok {
			return nil, fmt.Errorf("%w: truncated signature", bliss.ErrEncoding)
		}
		sig.Z1[i] = v
	}
	for i := range sig.Z2D {
		v, ok := r.readSigned(set.Z2Bits)
		if !ok {
			return nil, fmt.Errorf("%w: truncated signature", bliss.ErrEncoding)
		}
		sig.Z2D[i] = int16(v)
	}
	seen := make(map[uint16]bool, set.Kappa)
	for i := range sig.CIndices {
		v, ok := r.read(set.NBits)
		if !ok {
			return nil, fmt.Errorf("%w: truncated signature", bliss.ErrEncoding)
		}
		if int(v) >= set.N || seen[uint16(v)] {
			return nil, fmt.Errorf("%w: invalid challenge index", bliss.ErrEncoding)
		}
		seen[uint16(v)] = true
		sig.CIndices[i] = uint16(v)
	}
	if r.bits != 0 {
		return nil, fmt.Errorf("%w: nonzero padding bits", bliss.ErrEncoding)
	}
	return sig, nil
}
