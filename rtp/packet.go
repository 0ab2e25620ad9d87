package rtp

import (
	"encoding/binary"

	"github.com/mgsx-dev/midikit/midi"
	pionrtp "github.com/pion/rtp"
	"github.com/sirupsen/logrus"
)

// payloadType is the dynamic RTP payload type AppleMIDI peers agree on
// during the session invitation. It is fixed here for simplicity; a
// real negotiated value would come from the applemidi package's SDP-ish
// exchange, which this implementation does not carry.
const payloadType = 97

// commandListFlagLongLength marks the command-list length as a 2-byte
// big-endian field rather than a single byte; set when the encoded
// command list exceeds 255 bytes.
const commandListFlagLongLength = 0x80

// commandListFlagJournal marks a recovery journal as present
// immediately after the command list.
const commandListFlagJournal = 0x40

// commandListFlagSysExContinuation marks the command list's body as a
// single headerless SysEx continuation fragment rather than a run of
// normally-framed messages: MIDI data bytes are always 7-bit, so a
// continuation fragment's leading byte can never be distinguished from
// payload by midi.Detect, and decodeCommandSection needs this
// out-of-band signal to know to call midi.DecodeSysExContinuation
// instead of walking the registry.
const commandListFlagSysExContinuation = 0x20

// PacketInfo is the caller-facing view of one RTP-MIDI packet: the
// decoded MIDI messages it carries, plus enough header metadata for
// the session and applemidi packages to do their own bookkeeping.
type PacketInfo struct {
	SSRC      uint32
	Sequence  uint16
	Timestamp uint32
	Messages  []*midi.Message
}

// encodePacket serializes an RTP header (via pion/rtp) followed by a
// MIDI command-list section holding messages, into a single datagram.
func encodePacket(ssrc uint32, seq uint16, timestamp uint32, messages []*midi.Message) ([]byte, error) {
	section, err := encodeCommandSection(messages)
	if err != nil {
		return nil, err
	}

	header := pionrtp.Header{
		Version:        2,
		PayloadType:    payloadType,
		SequenceNumber: seq,
		Timestamp:      timestamp,
		SSRC:           ssrc,
	}
	headerBytes, err := header.Marshal()
	if err != nil {
		return nil, newMalformed("marshal header", err)
	}

	out := make([]byte, 0, len(headerBytes)+len(section))
	out = append(out, headerBytes...)
	out = append(out, section...)
	return out, nil
}

// decodePacket parses a datagram into a PacketInfo, using pion/rtp to
// unmarshal the RTP header.
func decodePacket(in []byte) (*PacketInfo, error) {
	var header pionrtp.Header
	n, err := header.Unmarshal(in)
	if err != nil {
		return nil, newMalformed("unmarshal header", err)
	}
	if header.Version != 2 {
		return nil, ErrMalformedPacket
	}

	messages, err := decodeCommandSection(in[n:])
	if err != nil {
		return nil, err
	}

	return &PacketInfo{
		SSRC:      header.SSRC,
		Sequence:  header.SequenceNumber,
		Timestamp: header.Timestamp,
		Messages:  messages,
	}, nil
}

// encodeCommandSection writes messages as a flags-byte-prefixed,
// length-prefixed run of encoded MIDI bytes. Unlike RFC 6295's full
// delta-time and running-status compression, this keeps each message's
// own encoding verbatim; delta-time compression is not implemented, so
// the flags-and-length framing here exists only to
// let a receiver find the command list's end, know whether a journal
// follows, and know whether the body is a single headerless SysEx
// continuation fragment rather than a normally-framed message run.
//
// A continuation fragment (see midi.IsSysExContinuation) carries no
// status byte of its own, so it may only appear alone: mixing it with
// any other message in the same list would leave the receiver with no
// way to find where the continuation's headerless payload begins. A
// first-fragment SysEx message may only be the last entry, since the
// receiver reads it as running to the end of the list.
func encodeCommandSection(messages []*midi.Message) ([]byte, error) {
	var body []byte
	buf := make([]byte, 0, 8)
	continuation := false
	for i, m := range messages {
		if midi.IsVariableLength(midi.ForStatus(m.Bytes[0])) && i != len(messages)-1 {
			return nil, midi.ErrUnrecognized
		}
		if midi.IsSysExContinuation(m) {
			if len(messages) != 1 {
				return nil, midi.ErrUnrecognized
			}
			continuation = true
		}
		n := m.Size()
		if n == 0 {
			return nil, midi.ErrUnrecognized
		}
		if cap(buf) < n {
			buf = make([]byte, n)
		}
		buf = buf[:n]
		if _, err := m.Encode(buf); err != nil {
			return nil, err
		}
		body = append(body, buf...)
	}

	var flags byte
	var length []byte
	if len(body) > 0xFF {
		flags |= commandListFlagLongLength
		length = make([]byte, 2)
		binary.BigEndian.PutUint16(length, uint16(len(body)))
	} else {
		length = []byte{byte(len(body))}
	}
	if continuation {
		flags |= commandListFlagSysExContinuation
	}

	out := make([]byte, 0, 1+len(length)+len(body))
	out = append(out, flags)
	out = append(out, length...)
	out = append(out, body...)
	return out, nil
}

// decodeCommandSection is the inverse of encodeCommandSection. It never
// panics on malformed input: any length mismatch or unrecognized
// message yields ErrMalformedPacket.
func decodeCommandSection(in []byte) ([]*midi.Message, error) {
	if len(in) < 1 {
		return nil, ErrMalformedPacket
	}
	flags := in[0]
	rest := in[1:]

	var length int
	if flags&commandListFlagLongLength != 0 {
		if len(rest) < 2 {
			return nil, ErrMalformedPacket
		}
		length = int(binary.BigEndian.Uint16(rest[:2]))
		rest = rest[2:]
	} else {
		if len(rest) < 1 {
			return nil, ErrMalformedPacket
		}
		length = int(rest[0])
		rest = rest[1:]
	}
	if length > len(rest) {
		return nil, ErrMalformedPacket
	}
	body := rest[:length]

	if flags&commandListFlagSysExContinuation != 0 {
		if len(body) == 0 {
			return nil, ErrMalformedPacket
		}
		return []*midi.Message{midi.DecodeSysExContinuation(body)}, nil
	}

	var messages []*midi.Message
	for len(body) > 0 {
		d := midi.Detect(body)
		if d == nil {
			return nil, ErrMalformedPacket
		}

		if midi.IsVariableLength(d) {
			// SysEx has no fixed size and, in this framing, is only ever
			// the last entry of a command list: it consumes whatever is
			// left of body.
			m, err := d.Decode(body)
			if err != nil {
				return nil, ErrMalformedPacket
			}
			messages = append(messages, m)
			break
		}

		n := d.Size(&midi.Message{})
		if n <= 0 || n > len(body) {
			return nil, ErrMalformedPacket
		}
		m, err := d.Decode(body[:n])
		if err != nil {
			return nil, ErrMalformedPacket
		}
		messages = append(messages, m)
		body = body[n:]
	}
	return messages, nil
}

func newMalformed(context string, err error) error {
	logrus.WithField("component", "rtp").WithError(err).Debug(context)
	return ErrMalformedPacket
}
