package measureutil

import "BLISS-Signature/measure"

// SnapshotAndReset returns the global measurement map and clears it.
func SnapshotAndReset() map[string]int64 {
	return measure.Global.SnapshotAndReset()
}
