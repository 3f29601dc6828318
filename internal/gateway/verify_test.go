package gateway

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func committedSeed(proof []byte, handle string) string {
	h := sha256.New()
	h.Write(proof)
	h.Write([]byte(handle))
	return hex.EncodeToString(h.Sum(nil))
}

func TestVerifySeed(t *testing.T) {
	proof := []byte{0xde, 0xad, 0xbe, 0xef}
	handle := "req-42"
	seed := committedSeed(proof, handle)

	t.Run("valid commitment", func(t *testing.T) {
		assert.True(t, VerifySeed(seed, hex.EncodeToString(proof), handle))
	})

	t.Run("accepts 0x prefixes", func(t *testing.T) {
		assert.True(t, VerifySeed("0x"+seed, "0x"+hex.EncodeToString(proof), handle))
	})

	t.Run("wrong handle", func(t *testing.T) {
		assert.False(t, VerifySeed(seed, hex.EncodeToString(proof), "req-43"))
	})

	t.Run("wrong proof", func(t *testing.T) {
		assert.False(t, VerifySeed(seed, "cafebabe", handle))
	})

	t.Run("tampered seed", func(t *testing.T) {
		tampered := "00" + seed[2:]
		assert.False(t, VerifySeed(tampered, hex.EncodeToString(proof), handle))
	})

	t.Run("non-hex seed", func(t *testing.T) {
		assert.False(t, VerifySeed("zzzz", hex.EncodeToString(proof), handle))
	})

	t.Run("non-hex proof", func(t *testing.T) {
		assert.False(t, VerifySeed(seed, "zzzz", handle))
	})
}
