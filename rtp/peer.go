package rtp

import (
	"net"
	"time"
)

// Peer is one remote endpoint of an RTP-MIDI session: its SSRC, network
// address, independent send/receive sequence counters, and its
// recovery journal state.
//
// Per-peer sequencing is authoritative (see DESIGN.md's Open Question
// resolution): the send counter and the inbound sequence tracker live
// here, not on Session,
// because each peer's stream is sequenced independently even when a
// Session fans one local source out to several peers.
type Peer struct {
	SSRC    uint32
	Addr    net.Addr
	Name    string

	sendSeq uint16
	journal Journal
	inbound extendedSequence

	LastActivity time.Time
}

// NewPeer returns a Peer for ssrc at addr with send sequence 0, ready to
// be registered on a Session with AddPeer, which seeds the send
// sequence from the session clock.
func NewPeer(ssrc uint32, addr net.Addr) *Peer {
	return &Peer{
		SSRC:         ssrc,
		Addr:         addr,
		LastActivity: time.Now(),
	}
}

// nextSendSeq returns the next outbound sequence number and advances
// the peer's send counter, wrapping at 16 bits the way RTP sequence
// numbers always do.
func (p *Peer) nextSendSeq() uint16 {
	seq := p.sendSeq
	p.sendSeq++
	return seq
}

// SendSequence reports the next sequence number Send will use for this
// peer, without consuming it.
func (p *Peer) SendSequence() uint16 {
	return p.sendSeq
}

// Journal exposes the peer's recovery journal for callers that need to
// inspect or truncate it directly (e.g. on receiving feedback (RS)).
func (p *Peer) Journal() *Journal {
	return &p.journal
}

func (p *Peer) touch() {
	p.LastActivity = time.Now()
}
