package rtp

import "errors"

var (
	// ErrUnknownPeer is returned when an operation names an SSRC or
	// address with no matching peer in the session's peer table.
	ErrUnknownPeer = errors.New("rtp: unknown peer")

	// ErrPeerExists is returned by AddPeer when the SSRC is already
	// registered.
	ErrPeerExists = errors.New("rtp: peer already registered")

	// ErrMalformedPacket is returned when a received datagram is too
	// short, or its command-list length does not match the bytes
	// actually present, to be a valid RTP-MIDI packet. Receive never
	// panics on malformed input; it always returns this error instead.
	ErrMalformedPacket = errors.New("rtp: malformed rtp-midi packet")

	// ErrSequenceOutOfOrder is returned by the sequence validator
	// (extendedSequence.update, grounded on RFC 1889 Appendix A.2) for an
	// in-order packet that arrives while a fresh tracker is still on
	// probation.
	ErrSequenceOutOfOrder = errors.New("rtp: sequence number out of order")

	// ErrSequenceBad is returned, per the same algorithm, for a packet
	// that breaks the in-order run during probation, and for a packet
	// whose sequence number jumps too far from the expected range; if the
	// very next packet continues from that jump, the tracker resyncs to
	// it and accepts it.
	ErrSequenceBad = errors.New("rtp: bad sequence number")

	// ErrJournalEmpty is returned by Journal.Replay when nothing has
	// been appended yet.
	ErrJournalEmpty = errors.New("rtp: journal is empty")
)
