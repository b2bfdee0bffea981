package bliss

import (
	"fmt"
	"os"

	"github.com/tuneinsight/lattigo/v4/ring"
)

// FFT applies the forward and inverse negacyclic NTT over Rq. An FFT owns a
// scratch polynomial and is therefore not safe for concurrent use; every
// signer builds its own.
type FFT struct {
	params *FFTParams
	ringQ  *ring.Ring
	buf    *ring.Poly
}

// NewFFT builds the transform for the given ring parameters. The modulus must
// be an NTT-friendly prime (q = 1 mod 2n), which holds for all registered
// parameter sets.
func NewFFT(p *FFTParams) (*FFT, error) {
	r, err := ring.NewRing(p.N, []uint64{p.Q})
	if err != nil {
		return nil, fmt.Errorf("bliss: ring n=%d q=%d: %w", p.N, p.Q, err)
	}
	dbg(os.Stderr, "[FFT] ring n=%d q=%d ready\n", p.N, p.Q)
	return &FFT{params: p, ringQ: r, buf: r.NewPoly()}, nil
}

// Transform applies the forward NTT when inverse is false and the inverse NTT
// otherwise. src and dst must have length n and may alias; coefficients are
// in [0, q).
func (f *FFT) Transform(src, dst []uint32, inverse bool) {
	c := f.buf.Coeffs[0]
	for i, v := range src {
		c[i] = uint64(v)
	}
	if inverse {
		f.ringQ.InvNTT(f.buf, f.buf)
	} else {
		f.ringQ.NTT(f.buf, f.buf)
	}
	for i := range dst {
		dst[i] = uint32(c[i])
	}
}
