package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashDeterministic(t *testing.T) {
	for _, alg := range []Algorithm{SHA256, XXH64} {
		t.Run(string(alg), func(t *testing.T) {
			h := NewHasher(alg)
			assert.Equal(t, h.HashString("2 + 2"), h.HashString("2 + 2"))
			assert.NotEqual(t, h.HashString("2 + 2"), h.HashString("2 + 3"))
		})
	}
}

func TestHashFieldsOrderIndependent(t *testing.T) {
	h := DefaultHasher()

	a := h.HashFields("eval=true", "proxy=false")
	b := h.HashFields("proxy=false", "eval=true")
	c := h.HashFields("eval=false", "proxy=false")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}

func TestShort(t *testing.T) {
	assert.Equal(t, "abc", Short("abc"))
	assert.Equal(t, "0123456789ab", Short("0123456789abcdef"))
}
