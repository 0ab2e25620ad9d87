package applemidi

import "time"

// syncClockNow returns the engine's monotonic clock reading in the
// 100-microsecond ticks AppleMIDI's CK exchange conventionally uses.
func syncClockNow(start time.Time) uint64 {
	return uint64(time.Since(start).Microseconds() / 100)
}

// beginSync starts a three-round clock synchronization with peer by
// sending a CK command with count 0, t1 set to now. Grounded on
// _applemidi_sync's count==0 branch in the original driver.
func (e *Engine) beginSync(peer *PeerSession) error {
	peer.phase = syncAwaitingRound1
	peer.t1 = syncClockNow(e.startedAt)
	peer.t2 = 0
	peer.t3 = 0
	peer.lastSyncAt = time.Now()

	msg := encodeClockSync(clockSyncCommand{
		ssrc:  e.localSSRC,
		count: 0,
		t1:    peer.t1,
	})
	return e.sendControl(msg, peer.controlAddr)
}

// handleClockSync dispatches an inbound CK command for peer according
// to its round count, replicating the three-branch switch in
// _applemidi_sync.
func (e *Engine) handleClockSync(peer *PeerSession, cmd clockSyncCommand) error {
	switch cmd.count {
	case 0:
		// We are the responder: peer is starting a round. Stamp t2 and
		// echo back count 1.
		peer.t1 = cmd.t1
		peer.t2 = syncClockNow(e.startedAt)
		peer.phase = syncAwaitingRound2

		reply := encodeClockSync(clockSyncCommand{
			ssrc:  e.localSSRC,
			count: 1,
			t1:    peer.t1,
			t2:    peer.t2,
		})
		return e.sendControl(reply, peer.controlAddr)

	case 1:
		// We are the initiator: peer has stamped t2. Stamp t3 ourselves
		// and send the final, informational count-2 message.
		if peer.phase != syncAwaitingRound1 {
			return ErrSyncOutOfSequence
		}
		peer.t2 = cmd.t2
		peer.t3 = syncClockNow(e.startedAt)
		peer.phase = syncConverged
		peer.lastSyncAt = time.Now()
		peer.timestampDiff = offsetEstimate(peer)
		peer.syncRetries = 0

		final := encodeClockSync(clockSyncCommand{
			ssrc:  e.localSSRC,
			count: 2,
			t1:    peer.t1,
			t2:    peer.t2,
			t3:    peer.t3,
		})
		return e.sendControl(final, peer.controlAddr)

	case 2:
		// We are the responder: peer has closed the loop. No reply is
		// expected; just record convergence.
		if peer.phase != syncAwaitingRound2 {
			return ErrSyncOutOfSequence
		}
		peer.t3 = cmd.t3
		peer.phase = syncConverged
		peer.lastSyncAt = time.Now()
		peer.timestampDiff = offsetEstimate(peer)
		peer.syncRetries = 0
		return nil

	default:
		return ErrSyncOutOfSequence
	}
}

// offsetEstimate returns the estimated clock offset between the local
// clock and peer's, in the same 100-microsecond units as t1/t2/t3, once
// peer.Synchronized() is true: spec.md's Cristian estimator
// ((t3-t1)/2) + (t2-t3) — half the round trip added to t1, plus the
// responder's own skew (t2-t3) relative to that midpoint. This is
// distinct from the one-way delay (t3-t1)/2 alone, which measures
// latency, not offset.
func offsetEstimate(peer *PeerSession) int64 {
	return (int64(peer.t3-peer.t1))/2 + (int64(peer.t2) - int64(peer.t3))
}
