package bliss

import (
	"fmt"

	"BLISS-Signature/bliss/mgf1"
)

// CreateVectorFromSeed derives a sparse ternary polynomial from seed: exactly
// NonZero1 entries of magnitude 1 and NonZero2 entries of magnitude 2 at
// distinct positions, all other entries zero. Positions are rejection-sampled
// from NBits-wide draws of the MGF1 stream, signs are single fair bits, so
// each magnitude class is a uniform subset of the remaining-zero positions.
func CreateVectorFromSeed(set *ParameterSet, seed []byte) ([]int8, error) {
	newHash, _ := set.MGF1Hash()
	spender, err := mgf1.New(newHash, seed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSampler, err)
	}
	vector := make([]int8, set.N)
	if err := placeNonZero(spender, vector, set.NBits, set.NonZero1, 1); err != nil {
		return nil, err
	}
	if err := placeNonZero(spender, vector, set.NBits, set.NonZero2, 2); err != nil {
		return nil, err
	}
	return vector, nil
}

func placeNonZero(spender *mgf1.BitSpender, vector []int8, nBits, nonZero int, magnitude int8) error {
	for nonZero > 0 {
		index, err := spender.GetBits(nBits)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrSampler, err)
		}
		if vector[index] != 0 {
			continue
		}
		sign, err := spender.GetBits(1)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrSampler, err)
		}
		if sign != 0 {
			vector[index] = magnitude
		} else {
			vector[index] = -magnitude
		}
		nonZero--
	}
	return nil
}
