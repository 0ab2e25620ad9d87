package rtp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A fresh tracker needs seqMinSequence consecutive in-order packets
// before it starts accepting; the first ones come back as
// ErrSequenceOutOfOrder while on probation.
func TestExtendedSequenceProbationThenAccepts(t *testing.T) {
	var s extendedSequence

	for i := 0; i < seqMinSequence-1; i++ {
		_, err := s.update(uint16(i))
		assert.ErrorIs(t, err, ErrSequenceOutOfOrder)
	}

	ext, err := s.update(uint16(seqMinSequence - 1))
	require.NoError(t, err)
	assert.Equal(t, uint32(seqMinSequence-1), ext)
}

func TestExtendedSequenceMonotonicOnceWarm(t *testing.T) {
	var s extendedSequence
	for i := 0; i < seqMinSequence; i++ {
		_, _ = s.update(uint16(i))
	}

	var last uint32
	for i := seqMinSequence; i < seqMinSequence+20; i++ {
		ext, err := s.update(uint16(i))
		require.NoError(t, err)
		assert.GreaterOrEqual(t, ext, last)
		last = ext
	}
}

func TestExtendedSequenceWrapsCycle(t *testing.T) {
	var s extendedSequence
	// Warm up right at the wrap boundary so the subsequent packets stay
	// within seqMaxDropout of maxSeq and are accepted as in-order.
	_, _ = s.update(65533)
	_, _ = s.update(65534)

	_, err := s.update(65535)
	require.NoError(t, err)

	ext, err := s.update(0)
	require.NoError(t, err)
	assert.Equal(t, uint32(seqMaxSeqNum), ext)
}

func TestExtendedSequenceRejectsWildJump(t *testing.T) {
	var s extendedSequence
	for i := 0; i < seqMinSequence; i++ {
		_, _ = s.update(uint16(i))
	}

	_, err := s.update(40000)
	assert.ErrorIs(t, err, ErrSequenceBad)
}
