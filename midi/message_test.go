package midi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTripChannelVoice(t *testing.T) {
	cases := []struct {
		name string
		make func() (*Message, error)
	}{
		{"note-on", func() (*Message, error) { return NewNoteOn(3, 64, 100) }},
		{"note-off", func() (*Message, error) { return NewNoteOff(3, 64, 0) }},
		{"poly-pressure", func() (*Message, error) { return NewPolyPressure(1, 60, 80) }},
		{"control-change", func() (*Message, error) { return NewControlChange(0, 7, 127) }},
		{"program-change", func() (*Message, error) { return NewProgramChange(9, 42) }},
		{"channel-pressure", func() (*Message, error) { return NewChannelPressure(2, 90) }},
		{"pitch-wheel", func() (*Message, error) { return NewPitchWheel(0, 8192) }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			msg, err := tc.make()
			require.NoError(t, err)

			buf := make([]byte, msg.Size())
			n, err := msg.Encode(buf)
			require.NoError(t, err)
			assert.Equal(t, msg.Size(), n)

			decoded, err := Decode(buf)
			require.NoError(t, err)
			assert.True(t, msg.Equal(decoded))
		})
	}
}

func TestRoundTripSystem(t *testing.T) {
	cases := []struct {
		name string
		make func() (*Message, error)
	}{
		{"time-code", func() (*Message, error) { return NewTimeCode(2, 9) }},
		{"song-position", func() (*Message, error) { return NewSongPosition(1200) }},
		{"song-select", func() (*Message, error) { return NewSongSelect(5) }},
		{"tune-request", func() (*Message, error) { return NewTuneRequest(), nil }},
		{"timing-clock", func() (*Message, error) { return NewRealTime(statusTimingClock) }},
		{"start", func() (*Message, error) { return NewRealTime(statusStart) }},
		{"stop", func() (*Message, error) { return NewRealTime(statusStop) }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			msg, err := tc.make()
			require.NoError(t, err)

			buf := make([]byte, msg.Size())
			_, err = msg.Encode(buf)
			require.NoError(t, err)

			decoded, err := Decode(buf)
			require.NoError(t, err)
			assert.True(t, msg.Equal(decoded))
		})
	}
}

func TestDetectIsDeterministic(t *testing.T) {
	for _, status := range []byte{
		0x90, 0x80, 0xA0, 0xB0, 0xC0, 0xD0, 0xE0,
		0xF0, 0xF1, 0xF2, 0xF3, 0xF6, 0xF8, 0xFA, 0xFB, 0xFC, 0xFE, 0xFF,
	} {
		d1 := Detect([]byte{status})
		d2 := Detect([]byte{status})
		require.NotNil(t, d1, "status 0x%X should be recognized", status)
		assert.Equal(t, d1, d2)
	}
}

func TestDetectUnrecognized(t *testing.T) {
	assert.Nil(t, Detect([]byte{0xF4}))
	assert.Nil(t, Detect(nil))
}

func TestEncodeBufferTooSmall(t *testing.T) {
	msg, err := NewNoteOn(0, 1, 1)
	require.NoError(t, err)

	buf := make([]byte, 1)
	_, err = msg.Encode(buf)
	assert.ErrorIs(t, err, ErrBufferTooSmall)
}

func TestDecodeInvalidLength(t *testing.T) {
	_, err := Decode([]byte{0x90, 0x40})
	assert.ErrorIs(t, err, ErrInvalidLength)
}

func TestSetIntRejectsOutOfRangeValues(t *testing.T) {
	msg, err := NewNoteOn(0, 1, 1)
	require.NoError(t, err)

	assert.ErrorIs(t, msg.SetInt(PropertyChannel, 16), ErrInvalidValue)
	assert.ErrorIs(t, msg.SetInt(PropertyKey, 128), ErrInvalidValue)
	assert.ErrorIs(t, msg.SetInt(PropertyVelocity, -1), ErrInvalidValue)
}

func TestGetIntRejectsWrongProperty(t *testing.T) {
	msg, err := NewProgramChange(0, 1)
	require.NoError(t, err)

	_, err = msg.GetInt(PropertyVelocity)
	assert.ErrorIs(t, err, ErrInvalidProperty)
}

func TestPitchWheelValueRoundTrip(t *testing.T) {
	msg, err := NewPitchWheel(5, 12345)
	require.NoError(t, err)

	v, err := msg.GetInt(PropertyValue)
	require.NoError(t, err)
	assert.Equal(t, 12345, v)
}
