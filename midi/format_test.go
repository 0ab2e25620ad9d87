package midi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestForStatusMatchesDetect(t *testing.T) {
	for _, status := range []byte{0x90, 0xB0, 0xF0, 0xF8} {
		assert.Equal(t, Detect([]byte{status}), ForStatus(status))
	}
}

func TestRegistryHasNoAmbiguousOverlap(t *testing.T) {
	// Every channel-voice status nibble (tested with channel 0) must
	// resolve to exactly one descriptor.
	for nibble := byte(0x80); nibble <= 0xE0; nibble += 0x10 {
		var matches []Descriptor
		for _, d := range registry {
			if d.Detect([]byte{nibble}) {
				matches = append(matches, d)
			}
		}
		assert.Len(t, matches, 1, "status nibble 0x%X", nibble)
	}
}

func TestCheckChannelAndDataByteBounds(t *testing.T) {
	assert.NoError(t, checkChannel(0))
	assert.NoError(t, checkChannel(15))
	assert.ErrorIs(t, checkChannel(-1), ErrInvalidValue)
	assert.ErrorIs(t, checkChannel(16), ErrInvalidValue)

	assert.NoError(t, checkDataByte(0))
	assert.NoError(t, checkDataByte(127))
	assert.ErrorIs(t, checkDataByte(-1), ErrInvalidValue)
	assert.ErrorIs(t, checkDataByte(128), ErrInvalidValue)
}
