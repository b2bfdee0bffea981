package bliss

import (
	"fmt"
	"hash"
	"math/big"

	"BLISS-Signature/bliss/mgf1"
)

const (
	// expTableRows bounds the bit width of BernoulliExp arguments.
	expTableRows = 32
	// expTableWords is the 32-bit word count of each probability expansion.
	expTableWords = 16
)

// Sampler draws Gaussian-distributed integers and Bernoulli decisions from
// the MGF1 bit stream of a single seed. A Sampler is stateful and must not be
// shared; signing constructs a fresh one per rejection iteration.
type Sampler struct {
	set     *ParameterSet
	spender *mgf1.BitSpender
	exp     [][]uint32
}

// NewSampler binds a sampler to (hash, seed, parameter set).
func NewSampler(newHash func() hash.Hash, seed []byte, set *ParameterSet) (*Sampler, error) {
	spender, err := mgf1.New(newHash, seed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSampler, err)
	}
	return &Sampler{set: set, spender: spender, exp: set.expTable()}, nil
}

// bernoulli accepts with the probability whose binary expansion is words,
// comparing 32 stream bits per word until the draw differs from the
// expansion.
func (s *Sampler) bernoulli(words []uint32) (bool, error) {
	for _, w := range words {
		u, err := s.spender.GetBits(32)
		if err != nil {
			return false, fmt.Errorf("%w: %v", ErrSampler, err)
		}
		if u < w {
			return true, nil
		}
		if u > w {
			return false, nil
		}
	}
	return true, nil
}

// BernoulliExp accepts with probability exp(-x/(2 sigma^2)), decomposing x
// over its set bits against the precomputed exp(-2^i/(2 sigma^2)) table.
func (s *Sampler) BernoulliExp(x uint32) (bool, error) {
	for i := expTableRows - 1; i >= 0; i-- {
		if x&(1<<uint(i)) == 0 {
			continue
		}
		accepted, err := s.bernoulli(s.exp[i])
		if err != nil || !accepted {
			return false, err
		}
	}
	return true, nil
}

// BernoulliCosh accepts with probability 1/cosh(x/sigma^2). The loop runs
// B_exp trials on 2|x|: a success accepts, a failure either restarts (fair
// coin, or a second B_exp success) or rejects.
func (s *Sampler) BernoulliCosh(x int32) (bool, error) {
	if x < 0 {
		x = -x
	}
	arg := 2 * uint32(x)
	for {
		accepted, err := s.BernoulliExp(arg)
		if err != nil {
			return false, err
		}
		if accepted {
			return true, nil
		}
		u, err := s.spender.GetBits(1)
		if err != nil {
			return false, fmt.Errorf("%w: %v", ErrSampler, err)
		}
		if u == 0 {
			accepted, err = s.BernoulliExp(arg)
			if err != nil {
				return false, err
			}
			if !accepted {
				return false, nil
			}
		}
	}
}

// Sign draws a fair coin.
func (s *Sampler) Sign() (bool, error) {
	u, err := s.spender.GetBits(1)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrSampler, err)
	}
	return u != 0, nil
}

// posBinary samples from the positive binary Gaussian D+_{sigma_bin},
// P(x) proportional to 2^(-x^2). At step i it draws 2i-1 bits: all-zero
// returns i, exactly one (the lowest) advances, anything else restarts.
func (s *Sampler) posBinary() (uint32, error) {
	for {
		u, err := s.spender.GetBits(1)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrSampler, err)
		}
		if u == 0 {
			return 0, nil
		}
		restart := false
		for i := uint32(1); !restart; i++ {
			width := int(2*i - 1)
			if width > 32 {
				restart = true
				break
			}
			u, err = s.spender.GetBits(width)
			if err != nil {
				return 0, fmt.Errorf("%w: %v", ErrSampler, err)
			}
			if u == 0 {
				return i, nil
			}
			if u != 1 {
				restart = true
			}
		}
	}
}

// Gaussian samples z from the discrete Gaussian of the parameter set's sigma:
// z = k*x + y with x binary-Gaussian and y uniform in [0, k), corrected by a
// BernoulliExp trial on y(y + 2kx), with a fair sign and the usual half
// rejection of z = 0.
func (s *Sampler) Gaussian() (int32, error) {
	k := s.set.KSigma
	for {
		x, err := s.posBinary()
		if err != nil {
			return 0, err
		}
		var y uint32
		for {
			y, err = s.spender.GetBits(s.set.KSigmaBits)
			if err != nil {
				return 0, fmt.Errorf("%w: %v", ErrSampler, err)
			}
			if y < k {
				break
			}
		}
		z := k*x + y
		accepted, err := s.BernoulliExp(y * (y + 2*k*x))
		if err != nil {
			return 0, err
		}
		if !accepted {
			continue
		}
		if z == 0 {
			u, err := s.spender.GetBits(1)
			if err != nil {
				return 0, fmt.Errorf("%w: %v", ErrSampler, err)
			}
			if u != 0 {
				continue
			}
		}
		u, err := s.spender.GetBits(1)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrSampler, err)
		}
		if u != 0 {
			return int32(z), nil
		}
		return -int32(z), nil
	}
}

// expTable lazily computes, once per parameter set, the 512-bit binary
// expansions of exp(-2^i/(2 sigma^2)) for i in [0, expTableRows).
func (s *ParameterSet) expTable() [][]uint32 {
	s.expOnce.Do(func() {
		prec := uint(expTableWords*32 + 64)
		f := new(big.Float).SetPrec(prec).SetInt64(2 * int64(s.Sigma) * int64(s.Sigma))
		tab := make([][]uint32, expTableRows)
		pow := new(big.Float).SetPrec(prec).SetInt64(1)
		for i := range tab {
			arg := new(big.Float).SetPrec(prec).Quo(pow, f)
			tab[i] = binaryExpansion(expNeg(arg, prec))
			pow.Add(pow, pow)
		}
		s.expTab = tab
	})
	return s.expTab
}

// expNeg evaluates exp(-x) for x >= 0: halve the argument below 1/2, sum the
// Taylor series, square back up.
func expNeg(x *big.Float, prec uint) *big.Float {
	half := new(big.Float).SetPrec(prec).SetFloat64(0.5)
	two := new(big.Float).SetPrec(prec).SetInt64(2)
	y := new(big.Float).SetPrec(prec).Set(x)
	squarings := 0
	for y.Cmp(half) > 0 {
		y.Quo(y, two)
		squarings++
	}

	sum := new(big.Float).SetPrec(prec).SetInt64(1)
	term := new(big.Float).SetPrec(prec).SetInt64(1)
	negY := new(big.Float).SetPrec(prec).Neg(y)
	kf := new(big.Float).SetPrec(prec)
	cutoff := -int(prec) - 16
	for k := int64(1); ; k++ {
		term.Mul(term, negY)
		term.Quo(term, kf.SetInt64(k))
		sum.Add(sum, term)
		if term.Sign() == 0 || term.MantExp(nil) < cutoff {
			break
		}
	}
	for i := 0; i < squarings; i++ {
		sum.Mul(sum, sum)
	}
	return sum
}

// binaryExpansion splits a probability in [0, 1) into 32-bit words, most
// significant first.
func binaryExpansion(c *big.Float) []uint32 {
	prec := c.Prec()
	words := make([]uint32, expTableWords)
	frac := new(big.Float).SetPrec(prec).Set(c)
	shift := new(big.Float).SetPrec(prec).SetUint64(1 << 32)
	word := new(big.Int)
	whole := new(big.Float).SetPrec(prec)
	for w := range words {
		frac.Mul(frac, shift)
		frac.Int(word)
		words[w] = uint32(word.Uint64())
		frac.Sub(frac, whole.SetInt(word))
	}
	return words
}
