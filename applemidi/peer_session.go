package applemidi

import (
	"net"
	"time"

	"github.com/mgsx-dev/midikit/midi"
	"github.com/mgsx-dev/midikit/queue"
	"github.com/mgsx-dev/midikit/rtp"
)

// syncPhase tracks where a peer's clock synchronization state machine
// currently sits, per the three-round Cristian exchange
// _applemidi_sync implements in the original driver.
type syncPhase int

const (
	syncIdle syncPhase = iota
	syncAwaitingRound1
	syncAwaitingRound2
	syncConverged
)

// PeerSession is one connected AppleMIDI peer: its name, its RTP data
// peer, and its clock-sync state. Sequence counters live on the
// wrapped *rtp.Peer (dataPeer), not here (see DESIGN.md's Open Question
// resolution): a PeerSession is a thin AppleMIDI-level wrapper around
// the RTP-level peer the data Session already tracks.
//
// outQueue/inQueue are the bounded FIFOs spec.md §4.4 calls for,
// sitting between the engine's tick loop and its upstream producer
// (SendMessages pushes here, TickSend drains) and consumer (TickReceive
// pushes here, the drained batch reaches the Collaborator).
type PeerSession struct {
	Name string
	SSRC uint32

	controlAddr net.Addr
	dataPeer    *rtp.Peer

	token uint32

	phase         syncPhase
	t1, t2, t3    uint64
	timestampDiff int64
	syncRetries   int
	lastSyncAt    time.Time

	lastFeedbackAt time.Time

	outQueue *queue.Queue[*midi.Message]
	inQueue  *queue.Queue[*midi.Message]
}

// newPeerSession allocates a PeerSession with its queues sized per
// opts.
func newPeerSession(name string, ssrc uint32, controlAddr net.Addr, token uint32, opts *Options) *PeerSession {
	return &PeerSession{
		Name:        name,
		SSRC:        ssrc,
		controlAddr: controlAddr,
		token:       token,
		outQueue:    queue.New[*midi.Message](opts.SendBatchSize),
		inQueue:     queue.New[*midi.Message](opts.ReceiveBatchSize),
	}
}

// DataPeer exposes the underlying RTP peer for callers that need to
// send or inspect its journal directly.
func (p *PeerSession) DataPeer() *rtp.Peer {
	return p.dataPeer
}

// Synchronized reports whether this peer's clock sync has completed at
// least one full three-round exchange.
func (p *PeerSession) Synchronized() bool {
	return p.phase == syncConverged
}

// TimestampDiff returns the most recently estimated clock offset
// between this peer and the local clock, in the same 100-microsecond
// units as the CK exchange's timestamps. It is only meaningful once
// Synchronized() is true.
func (p *PeerSession) TimestampDiff() int64 {
	return p.timestampDiff
}
