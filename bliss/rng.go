package bliss

import (
	"crypto/rand"
	"fmt"
	"io"

	"github.com/tuneinsight/lattigo/v4/utils"
)

// RNG supplies entropy to key generation (true strength) and to the
// per-signature sampler seeds (strong strength).
type RNG interface {
	// GetBytes fills buf with random bytes.
	GetBytes(buf []byte) error
}

type systemRNG struct{}

func (systemRNG) GetBytes(buf []byte) error {
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return fmt.Errorf("%w: %v", ErrEntropy, err)
	}
	return nil
}

// NewTrueRNG returns the generator used for key material.
func NewTrueRNG() RNG { return systemRNG{} }

// NewStrongRNG returns the generator used for per-signature sampler seeds.
func NewStrongRNG() RNG { return systemRNG{} }

type seededRNG struct {
	prng utils.PRNG
}

// NewSeededRNG returns a deterministic generator keyed by seed. Fixing the
// seed makes key generation and signing reproducible byte for byte; intended
// for tests and controlled regeneration, not for production entropy.
func NewSeededRNG(seed []byte) (RNG, error) {
	prng, err := utils.NewKeyedPRNG(seed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEntropy, err)
	}
	return &seededRNG{prng: prng}, nil
}

func (r *seededRNG) GetBytes(buf []byte) error {
	if _, err := io.ReadFull(r.prng, buf); err != nil {
		return fmt.Errorf("%w: %v", ErrEntropy, err)
	}
	return nil
}
