package mgf1

import (
	"crypto/sha1"
	"crypto/sha256"
	"testing"
)

func TestGetBitsWidthValidation(t *testing.T) {
	s, err := New(sha1.New, []byte("seed"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetBits(0); err == nil {
		t.Fatal("width 0 must be rejected")
	}
	if _, err := s.GetBits(33); err == nil {
		t.Fatal("width 33 must be rejected")
	}
	if _, err := s.GetBits(32); err != nil {
		t.Fatalf("width 32: %v", err)
	}
}

func TestBitConcatenation(t *testing.T) {
	// Bits are delivered MSB first, so two 8-bit draws equal one 16-bit draw
	// from the same stream position.
	a, err := New(sha256.New, []byte("concat"))
	if err != nil {
		t.Fatal(err)
	}
	b, err := New(sha256.New, []byte("concat"))
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 200; i++ {
		hi, err := a.GetBits(8)
		if err != nil {
			t.Fatal(err)
		}
		lo, err := a.GetBits(8)
		if err != nil {
			t.Fatal(err)
		}
		both, err := b.GetBits(16)
		if err != nil {
			t.Fatal(err)
		}
		if both != hi<<8|lo {
			t.Fatalf("draw %d: %04x != %02x%02x", i, both, hi, lo)
		}
	}
}

func TestStreamsDifferBySeed(t *testing.T) {
	a, err := New(sha1.New, []byte("seed-a"))
	if err != nil {
		t.Fatal(err)
	}
	b, err := New(sha1.New, []byte("seed-b"))
	if err != nil {
		t.Fatal(err)
	}
	same := true
	for i := 0; i < 64; i++ {
		x, err := a.GetBits(32)
		if err != nil {
			t.Fatal(err)
		}
		y, err := b.GetBits(32)
		if err != nil {
			t.Fatal(err)
		}
		if x != y {
			same = false
		}
	}
	if same {
		t.Fatal("different seeds yielded an identical stream")
	}
}

func TestOddWidthsDrainConsistently(t *testing.T) {
	a, err := New(sha1.New, []byte("odd"))
	if err != nil {
		t.Fatal(err)
	}
	b, err := New(sha1.New, []byte("odd"))
	if err != nil {
		t.Fatal(err)
	}
	// 9+1+9+1+...
	var got []uint32
	for i := 0; i < 50; i++ {
		v, err := a.GetBits(9)
		if err != nil {
			t.Fatal(err)
		}
		s, err := a.GetBits(1)
		if err != nil {
			t.Fatal(err)
		}
		got = append(got, v<<1|s)
	}
	for i := 0; i < 50; i++ {
		v, err := b.GetBits(10)
		if err != nil {
			t.Fatal(err)
		}
		if got[i] != v {
			t.Fatalf("draw %d: %03x != %03x", i, got[i], v)
		}
	}
}
