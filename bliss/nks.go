package bliss

import "sort"

// NksNorm computes the Nk(S) norm of the secret S = (s1, s2): an upper bound
// on the squared norm of S*c over all kappa-sparse binary challenges c. Key
// generation only accepts secrets with NksNorm below the set's NksMax, which
// in turn bounds the signing rejection probability.
func NksNorm(s1, s2 []int8, kappa int) uint32 {
	n := len(s1)
	t := make([]int16, n)
	tWrapped := make([]int16, n)
	maxKappa := make([]int32, n)

	for i := 0; i < n; i++ {
		t[i] = WrappedProduct(s1, s1, i) + WrappedProduct(s2, s2, i)
	}

	for i := 0; i < n; i++ {
		Wrap(t, i, tWrapped)
		sort.Slice(tWrapped, func(a, b int) bool { return tWrapped[a] < tWrapped[b] })

		var sum int32
		for j := 1; j <= kappa; j++ {
			sum += int32(tWrapped[n-j])
		}
		maxKappa[i] = sum
	}
	sort.Slice(maxKappa, func(a, b int) bool { return maxKappa[a] < maxKappa[b] })

	var nks int32
	for i := 1; i <= kappa; i++ {
		nks += maxKappa[n-i]
	}
	return uint32(nks)
}
