package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"slices"
	"strings"
)

// BuildHash identifies a build by its modification set.
// The ids are sorted first so the hash is independent of selection
// order; verified dyno results are keyed by (vehicleId, buildHash).
func BuildHash(modIDs []string) string {
	sorted := slices.Clone(modIDs)
	slices.Sort(sorted)
	hasher := sha256.New()
	hasher.Write([]byte(strings.Join(sorted, "|")))
	return hex.EncodeToString(hasher.Sum(nil))
}
