package applemidi

import (
	"encoding/binary"
)

// protocolSignature is the fixed 16-bit value every AppleMIDI session
// command begins with, mirroring APPLEMIDI_PROTOCOL_SIGNATURE (0xffff)
// in original_source/driver/applemidi/applemidi.c.
const protocolSignature uint16 = 0xFFFF

// Command codes, each the two ASCII bytes the wire format uses.
type commandCode uint16

const (
	cmdInvitation         commandCode = 0x494E // "IN"
	cmdInvitationAccepted commandCode = 0x4F4B // "OK"
	cmdInvitationRejected commandCode = 0x4E4F // "NO"
	cmdEndSession         commandCode = 0x4259 // "BY"
	cmdClockSync          commandCode = 0x434B // "CK"
	cmdReceiverFeedback   commandCode = 0x5253 // "RS"
)

// sessionCommandVersion is the AppleMIDI protocol version this
// implementation speaks and expects of peers.
const sessionCommandVersion uint32 = 2

// sessionCommand is the shared header every IN/OK/NO/BY message carries:
// signature, command code, protocol version, initiator token, and
// sender SSRC, optionally followed by a null-terminated session name.
type sessionCommand struct {
	code        commandCode
	version     uint32
	token       uint32
	ssrc        uint32
	name        string
}

func encodeSessionCommand(cmd sessionCommand) []byte {
	nameBytes := []byte(cmd.name)
	out := make([]byte, 16+len(nameBytes)+1)
	binary.BigEndian.PutUint16(out[0:2], protocolSignature)
	binary.BigEndian.PutUint16(out[2:4], uint16(cmd.code))
	binary.BigEndian.PutUint32(out[4:8], cmd.version)
	binary.BigEndian.PutUint32(out[8:12], cmd.token)
	binary.BigEndian.PutUint32(out[12:16], cmd.ssrc)
	copy(out[16:], nameBytes)
	// trailing byte is left zero as the name's NUL terminator.
	return out
}

func decodeSessionCommand(in []byte) (sessionCommand, error) {
	if len(in) < 16 {
		return sessionCommand{}, ErrMalformedCommand
	}
	cmd := sessionCommand{
		code:    commandCode(binary.BigEndian.Uint16(in[2:4])),
		version: binary.BigEndian.Uint32(in[4:8]),
		token:   binary.BigEndian.Uint32(in[8:12]),
		ssrc:    binary.BigEndian.Uint32(in[12:16]),
	}
	if len(in) > 16 {
		name := in[16:]
		if nul := indexByte(name, 0); nul >= 0 {
			name = name[:nul]
		}
		cmd.name = string(name)
	}
	return cmd, nil
}

func indexByte(b []byte, c byte) int {
	for i, v := range b {
		if v == c {
			return i
		}
	}
	return -1
}

// clockSyncCommand is the CK command carrying the three-round Cristian
// synchronization timestamps, grounded on _applemidi_sync in
// original_source/driver/applemidi/applemidi.c.
type clockSyncCommand struct {
	ssrc  uint32
	count byte
	t1    uint64
	t2    uint64
	t3    uint64
}

func encodeClockSync(cmd clockSyncCommand) []byte {
	out := make([]byte, 36)
	binary.BigEndian.PutUint16(out[0:2], protocolSignature)
	binary.BigEndian.PutUint16(out[2:4], uint16(cmdClockSync))
	binary.BigEndian.PutUint32(out[4:8], cmd.ssrc)
	out[8] = cmd.count
	// out[9:12] reserved/padding, left zero.
	binary.BigEndian.PutUint64(out[12:20], cmd.t1)
	binary.BigEndian.PutUint64(out[20:28], cmd.t2)
	binary.BigEndian.PutUint64(out[28:36], cmd.t3)
	return out
}

func decodeClockSync(in []byte) (clockSyncCommand, error) {
	if len(in) < 36 {
		return clockSyncCommand{}, ErrMalformedCommand
	}
	return clockSyncCommand{
		ssrc:  binary.BigEndian.Uint32(in[4:8]),
		count: in[8],
		t1:    binary.BigEndian.Uint64(in[12:20]),
		t2:    binary.BigEndian.Uint64(in[20:28]),
		t3:    binary.BigEndian.Uint64(in[28:36]),
	}, nil
}

// receiverFeedback is the RS command a receiver sends to let its
// sender truncate its recovery journal.
type receiverFeedback struct {
	ssrc     uint32
	sequence uint32
}

func encodeReceiverFeedback(cmd receiverFeedback) []byte {
	out := make([]byte, 12)
	binary.BigEndian.PutUint16(out[0:2], protocolSignature)
	binary.BigEndian.PutUint16(out[2:4], uint16(cmdReceiverFeedback))
	binary.BigEndian.PutUint32(out[4:8], cmd.ssrc)
	binary.BigEndian.PutUint32(out[8:12], cmd.sequence)
	return out
}

func decodeReceiverFeedback(in []byte) (receiverFeedback, error) {
	if len(in) < 12 {
		return receiverFeedback{}, ErrMalformedCommand
	}
	return receiverFeedback{
		ssrc:     binary.BigEndian.Uint32(in[4:8]),
		sequence: binary.BigEndian.Uint32(in[8:12]),
	}, nil
}

// peekCommand inspects a datagram's signature and command code without
// fully decoding it, the Go equivalent of _test_applemidi's 4-byte
// signature peek in the original driver.
func peekCommand(buf []byte) (commandCode, error) {
	if len(buf) < 4 {
		return 0, ErrMalformedCommand
	}
	if binary.BigEndian.Uint16(buf[0:2]) != protocolSignature {
		return 0, ErrBadSignature
	}
	code := commandCode(binary.BigEndian.Uint16(buf[2:4]))
	switch code {
	case cmdInvitation, cmdInvitationAccepted, cmdInvitationRejected, cmdEndSession, cmdClockSync, cmdReceiverFeedback:
		return code, nil
	default:
		return 0, ErrUnknownCommand
	}
}
