// Package mgf1 implements the MGF1 mask generation function as a stateful
// bit spender: a consumer of the hash-derived octet stream that yields
// variable-width unsigned integers on request.
package mgf1

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash"
)

var (
	// ErrExhausted is returned once the block counter wraps and no further
	// stream octets can be derived.
	ErrExhausted = errors.New("mgf1: bit stream exhausted")

	errWidth = errors.New("mgf1: requested width out of range")
)

// BitSpender extracts bits from the MGF1 stream of (hash, seed). It keeps a
// bit buffer so consecutive requests consume the stream without padding;
// bits are delivered most significant first.
type BitSpender struct {
	h       hash.Hash
	seed    []byte
	counter uint32
	wrapped bool
	block   []byte
	off     int
	bits    uint64
	nbits   int
}

// New builds a bit spender over the MGF1 stream keyed by seed.
func New(newHash func() hash.Hash, seed []byte) (*BitSpender, error) {
	if newHash == nil {
		return nil, fmt.Errorf("mgf1: nil hash constructor")
	}
	s := &BitSpender{h: newHash(), seed: append([]byte(nil), seed...)}
	return s, nil
}

// GetBits returns the next width bits of the stream as an unsigned integer,
// 1 <= width <= 32.
func (s *BitSpender) GetBits(width int) (uint32, error) {
	if width < 1 || width > 32 {
		return 0, fmt.Errorf("%w: %d", errWidth, width)
	}
	for s.nbits < width {
		b, err := s.nextByte()
		if err != nil {
			return 0, err
		}
		s.bits = s.bits<<8 | uint64(b)
		s.nbits += 8
	}
	s.nbits -= width
	v := uint32(s.bits >> uint(s.nbits))
	if width < 32 {
		v &= 1<<uint(width) - 1
	}
	s.bits &= 1<<uint(s.nbits) - 1
	return v, nil
}

func (s *BitSpender) nextByte() (byte, error) {
	if s.off == len(s.block) {
		if s.wrapped {
			return 0, ErrExhausted
		}
		var ctr [4]byte
		binary.BigEndian.PutUint32(ctr[:], s.counter)
		s.h.Reset()
		s.h.Write(s.seed)
		s.h.Write(ctr[:])
		s.block = s.h.Sum(s.block[:0])
		s.off = 0
		s.counter++
		if s.counter == 0 {
			s.wrapped = true
		}
	}
	b := s.block[s.off]
	s.off++
	return b, nil
}
