package gateway

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"
)

// VerifySeed checks a delivered randomness seed against its proof and the
// round's stored request handle: the seed must equal
// SHA-256(proof || handle). A seed that fails this check is never used for
// winner selection.
//
// This is a commitment check, not a full VRF verification: the oracle
// commits to SHA-256(proof || handle) and later reveals the proof, so a seed
// cannot be chosen after ticket totals are known without breaking the hash.
// Swapping in chain-native VRF proof verification only requires replacing
// this function.
func VerifySeed(seed, proof, handle string) bool {
	seedBytes, err := hex.DecodeString(strings.TrimPrefix(seed, "0x"))
	if err != nil {
		return false
	}
	proofBytes, err := hex.DecodeString(strings.TrimPrefix(proof, "0x"))
	if err != nil {
		return false
	}

	h := sha256.New()
	h.Write(proofBytes)
	h.Write([]byte(handle))
	expected := h.Sum(nil)

	return subtle.ConstantTimeCompare(seedBytes, expected) == 1
}
