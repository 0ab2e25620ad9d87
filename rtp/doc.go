// Package rtp implements the RTP-MIDI transport: packetizing and
// depacketizing MIDI command lists over RTP, per-peer sequence and
// timestamp bookkeeping, and the recovery journal peers exchange to
// recover from lost packets without retransmission.
//
// The RTP header itself is handled by github.com/pion/rtp, the same
// dependency opd-ai-toxcore's av/rtp package uses for its audio
// packetizer; this package owns only the MIDI-specific command-list and
// journal framing that rides inside the RTP payload.
package rtp
