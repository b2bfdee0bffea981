package bliss

import (
	"crypto/sha512"
	"encoding/binary"
)

// RoundAndDrop drops the d low bits of every entry of u with rounding and
// reduces modulo p. Entries of u must already be normalized to [0, 2q).
func RoundAndDrop(set *ParameterSet, u []int32, ud []int16) {
	half := int32(1) << (set.D - 1)
	for i, v := range u {
		ud[i] = int16(((v + half) >> set.D) % set.P)
	}
}

// GenerateC derives the kappa distinct challenge indices from the SHA-512
// message hash and the dropped-bit vector ud. The digest stream over
// dataHash, the serialized ud and a round counter is parsed two bytes at a
// time; duplicate indices are rejected and redrawn, rehashing with the next
// counter once a digest is exhausted.
func GenerateC(dataHash []byte, ud []int16, set *ParameterSet) []uint16 {
	n := set.N
	indices := make([]uint16, 0, set.Kappa)
	taken := make([]bool, n)

	buf := make([]byte, 0, len(dataHash)+2*n+2)
	buf = append(buf, dataHash...)
	for _, v := range ud {
		buf = append(buf, byte(uint16(v)>>8), byte(uint16(v)))
	}
	buf = append(buf, 0, 0)

	for round := uint16(0); ; round++ {
		binary.BigEndian.PutUint16(buf[len(buf)-2:], round)
		digest := sha512.Sum512(buf)
		for j := 0; j+1 < len(digest); j += 2 {
			index := (uint16(digest[j])<<8 | uint16(digest[j+1])) & uint16(n-1)
			if taken[index] {
				continue
			}
			taken[index] = true
			indices = append(indices, index)
			if len(indices) == set.Kappa {
				return indices
			}
		}
	}
}

// ScalarProduct returns the inner product of x and y.
func ScalarProduct(x, y []int32) int32 {
	var product int32
	for i, v := range x {
		product += v * y[i]
	}
	return product
}

// CheckNorms enforces the signature norm bounds: the infinity norms of z1 and
// of z2d scaled back by 2^d must stay within BInf, and the combined squared
// L2 norm within B2^2.
func CheckNorms(set *ParameterSet, z1 []int32, z2d []int16) bool {
	var l2 int64
	for _, v := range z1 {
		if v < 0 {
			v = -v
		}
		if v > set.BInf {
			return false
		}
		l2 += int64(v) * int64(v)
	}
	for _, v := range z2d {
		scaled := int32(v) << set.D
		if scaled < 0 {
			scaled = -scaled
		}
		if scaled > set.BInf {
			return false
		}
		l2 += int64(scaled) * int64(scaled)
	}
	return l2 <= set.B2*set.B2
}

// ZeroInt8 wipes secret material before its storage is released.
func ZeroInt8(v []int8) {
	for i := range v {
		v[i] = 0
	}
}

// ZeroInt16 wipes secret material before its storage is released.
func ZeroInt16(v []int16) {
	for i := range v {
		v[i] = 0
	}
}

// ZeroInt32 wipes secret material before its storage is released.
func ZeroInt32(v []int32) {
	for i := range v {
		v[i] = 0
	}
}

// ZeroBytes wipes secret material before its storage is released.
func ZeroBytes(v []byte) {
	for i := range v {
		v[i] = 0
	}
}
