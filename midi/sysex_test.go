package midi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSysExSingleFragmentRoundTrip(t *testing.T) {
	payload := []byte{0x43, 0x01, 0x02, statusEOX}
	msg, err := NewSysEx(0, payload)
	require.NoError(t, err)

	buf := make([]byte, msg.Size())
	n, err := msg.Encode(buf)
	require.NoError(t, err)
	assert.Equal(t, msg.Size(), n)

	decoded, err := Decode(buf)
	require.NoError(t, err)
	assert.True(t, msg.Equal(decoded))
	assert.Equal(t, SysExSingle, decoded.FragmentKind())
}

func TestSysExReassemblerMultipleFragments(t *testing.T) {
	start, err := NewSysEx(0, []byte{0x43, 0xAA})
	require.NoError(t, err)
	mid, err := NewSysEx(1, []byte{0xBB, 0xCC})
	require.NoError(t, err)
	end, err := NewSysEx(2, []byte{0xDD, statusEOX})
	require.NoError(t, err)

	require.Equal(t, SysExStart, start.FragmentKind())
	require.Equal(t, SysExContinue, mid.FragmentKind())
	require.Equal(t, SysExEnd, end.FragmentKind())

	var r SysExReassembler
	out, done, err := r.Add(start)
	require.NoError(t, err)
	assert.False(t, done)
	assert.Nil(t, out)

	out, done, err = r.Add(mid)
	require.NoError(t, err)
	assert.False(t, done)
	assert.Nil(t, out)

	out, done, err = r.Add(end)
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, []byte{0x43, 0xAA, 0xBB, 0xCC, 0xDD}, out)
}

func TestSysExReassemblerRejectsOutOfOrder(t *testing.T) {
	mid, err := NewSysEx(1, []byte{0xBB})
	require.NoError(t, err)

	var r SysExReassembler
	_, _, err = r.Add(mid)
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestSysExReassemblerRejectsDoubleStart(t *testing.T) {
	start, err := NewSysEx(0, []byte{0x43})
	require.NoError(t, err)

	var r SysExReassembler
	_, done, err := r.Add(start)
	require.NoError(t, err)
	require.False(t, done)

	_, _, err = r.Add(start)
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestSysExReassemblerResetDiscardsPartial(t *testing.T) {
	start, err := NewSysEx(0, []byte{0x43})
	require.NoError(t, err)

	var r SysExReassembler
	_, _, err = r.Add(start)
	require.NoError(t, err)

	r.Reset()
	assert.False(t, r.started)
	assert.Nil(t, r.buf)
}

func TestSysExFirstFragmentPropertiesRoundTrip(t *testing.T) {
	msg, err := NewSysEx(0, []byte{0x41, 0x10, 0x20})
	require.NoError(t, err)

	frag, err := msg.GetInt(PropertySysExFragment)
	require.NoError(t, err)
	assert.Equal(t, 0, frag)

	manufacturer, err := msg.GetInt(PropertyManufacturerID)
	require.NoError(t, err)
	assert.Equal(t, 0x41, manufacturer)

	data, err := msg.GetBytes(PropertySysExData)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x10, 0x20}, data)

	size, err := msg.GetInt(PropertySysExSize)
	require.NoError(t, err)
	assert.Equal(t, 2, size)
}

func TestSysExContinuationFragmentPropertiesRoundTrip(t *testing.T) {
	// A continuation fragment carries no manufacturer id on the wire;
	// payload is pure data, per spec.md's table.
	msg, err := NewSysEx(3, []byte{0x41, 0x10, 0x20})
	require.NoError(t, err)

	frag, err := msg.GetInt(PropertySysExFragment)
	require.NoError(t, err)
	assert.Equal(t, 3, frag)

	data, err := msg.GetBytes(PropertySysExData)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x41, 0x10, 0x20}, data)

	size, err := msg.GetInt(PropertySysExSize)
	require.NoError(t, err)
	assert.Equal(t, 3, size)

	assert.True(t, IsSysExContinuation(msg))
}

func TestSysExDetectOnlyMatchesStatusF0(t *testing.T) {
	d := sysexDescriptor{}
	assert.True(t, d.Detect([]byte{0xF0}))
	assert.False(t, d.Detect([]byte{0xF1}))
	assert.False(t, d.Detect(nil))
}
