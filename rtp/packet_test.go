package rtp

import (
	"testing"

	"github.com/mgsx-dev/midikit/midi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodePacketRoundTrip(t *testing.T) {
	noteOn, err := midi.NewNoteOn(0, 60, 100)
	require.NoError(t, err)
	cc, err := midi.NewControlChange(0, 7, 64)
	require.NoError(t, err)

	raw, err := encodePacket(0xAABBCCDD, 42, 1000, []*midi.Message{noteOn, cc})
	require.NoError(t, err)

	info, err := decodePacket(raw)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xAABBCCDD), info.SSRC)
	assert.EqualValues(t, 42, info.Sequence)
	assert.EqualValues(t, 1000, info.Timestamp)
	require.Len(t, info.Messages, 2)
	assert.True(t, noteOn.Equal(info.Messages[0]))
	assert.True(t, cc.Equal(info.Messages[1]))
}

func TestEncodeDecodePacketWithSysExLast(t *testing.T) {
	noteOn, err := midi.NewNoteOn(0, 60, 100)
	require.NoError(t, err)
	sysex, err := midi.NewSysEx(0, []byte{0x43, 0x01, 0xF7})
	require.NoError(t, err)

	raw, err := encodePacket(1, 0, 0, []*midi.Message{noteOn, sysex})
	require.NoError(t, err)

	info, err := decodePacket(raw)
	require.NoError(t, err)
	require.Len(t, info.Messages, 2)
	assert.True(t, sysex.Equal(info.Messages[1]))
}

func TestDecodeCommandSectionRejectsTruncatedLength(t *testing.T) {
	_, err := decodeCommandSection([]byte{0x00, 0x05, 0x90, 0x40})
	assert.ErrorIs(t, err, ErrMalformedPacket)
}

func TestDecodeCommandSectionRejectsUnrecognizedStatus(t *testing.T) {
	_, err := decodeCommandSection([]byte{0x00, 0x01, 0xF4})
	assert.ErrorIs(t, err, ErrMalformedPacket)
}

func TestDecodePacketRejectsEmptyInput(t *testing.T) {
	_, err := decodePacket(nil)
	assert.ErrorIs(t, err, ErrMalformedPacket)
}

// TestEncodeDecodePacketWithSysExContinuationFragment exercises the
// wire-level framing a SysEx continuation fragment needs: a start
// fragment (which carries a manufacturer id header) followed by a
// continuation and an end fragment (neither of which do), each
// round-tripped through encodePacket/decodePacket individually and fed
// into a single midi.SysExReassembler, the way a receiver strings
// together successive RTP-MIDI packets into one exclusive message.
func TestEncodeDecodePacketWithSysExContinuationFragment(t *testing.T) {
	start, err := midi.NewSysEx(0, []byte{0x43, 0xAA, 0xBB})
	require.NoError(t, err)
	mid, err := midi.NewSysEx(1, []byte{0xCC})
	require.NoError(t, err)
	end, err := midi.NewSysEx(2, []byte{0xDD, 0xF7})
	require.NoError(t, err)

	require.Equal(t, midi.SysExStart, start.FragmentKind())
	require.True(t, midi.IsSysExContinuation(mid))
	require.True(t, midi.IsSysExContinuation(end))

	var r midi.SysExReassembler

	rawStart, err := encodePacket(1, 0, 0, []*midi.Message{start})
	require.NoError(t, err)
	infoStart, err := decodePacket(rawStart)
	require.NoError(t, err)
	require.Len(t, infoStart.Messages, 1)
	assert.Equal(t, midi.SysExStart, infoStart.Messages[0].FragmentKind())
	out, done, err := r.Add(infoStart.Messages[0])
	require.NoError(t, err)
	assert.False(t, done)
	assert.Nil(t, out)

	rawMid, err := encodePacket(1, 1, 0, []*midi.Message{mid})
	require.NoError(t, err)
	infoMid, err := decodePacket(rawMid)
	require.NoError(t, err)
	require.Len(t, infoMid.Messages, 1)
	assert.Equal(t, midi.SysExContinue, infoMid.Messages[0].FragmentKind())
	out, done, err = r.Add(infoMid.Messages[0])
	require.NoError(t, err)
	assert.False(t, done)
	assert.Nil(t, out)

	rawEnd, err := encodePacket(1, 2, 0, []*midi.Message{end})
	require.NoError(t, err)
	infoEnd, err := decodePacket(rawEnd)
	require.NoError(t, err)
	require.Len(t, infoEnd.Messages, 1)
	assert.Equal(t, midi.SysExEnd, infoEnd.Messages[0].FragmentKind())
	out, done, err = r.Add(infoEnd.Messages[0])
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, []byte{0x43, 0xAA, 0xBB, 0xCC, 0xDD}, out)
}
