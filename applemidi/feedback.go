package applemidi

import "time"

// sendFeedbackIfDue emits an RS command to peer reporting the sequence
// number of the data packet just received from it, provided at least
// Options.FeedbackInterval has elapsed since the last one. Late packets
// within the sequence tracker's reorder window are accepted too, so the
// reported number is not always the highest received so far. RS
// lets the sender truncate its recovery journal; sending it more often
// than necessary just wastes bandwidth, hence the rate limit (at most
// one per peer per interval, matching spec.md's invariant).
func (e *Engine) sendFeedbackIfDue(peer *PeerSession, lastSequenceReceived uint16) error {
	now := time.Now()
	if now.Sub(peer.lastFeedbackAt) < e.opts.FeedbackInterval {
		return nil
	}
	peer.lastFeedbackAt = now

	cmd := receiverFeedback{
		ssrc:     e.localSSRC,
		sequence: uint32(lastSequenceReceived),
	}
	return e.sendControl(encodeReceiverFeedback(cmd), peer.controlAddr)
}

// handleReceiverFeedback processes an incoming RS command by truncating
// the named peer's send journal up to the reported sequence number.
func (e *Engine) handleReceiverFeedback(cmd receiverFeedback) error {
	peer := e.findPeerBySSRC(cmd.ssrc)
	if peer == nil {
		return ErrNoSuchSession
	}
	if peer.dataPeer != nil {
		peer.dataPeer.Journal().Truncate(uint16(cmd.sequence))
	}
	return nil
}
