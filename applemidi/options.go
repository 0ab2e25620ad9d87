package applemidi

import "time"

// Options configures a new Engine. Following opd-ai-toxcore's
// Options/NewOptions pattern, every field has a documented default so
// callers only set what they care about.
type Options struct {
	// Name is advertised in IN/OK commands as this endpoint's session
	// name.
	Name string

	// ControlAddr is the local address for the control (invitation and
	// clock sync) socket. The data socket binds to the same host on
	// ControlAddr's port + 1.
	ControlAddr string

	// InvitationTimeout bounds how long an invitation sent by Invite
	// waits for a response before TickSend retries it.
	InvitationTimeout time.Duration

	// InvitationRetries is how many additional invitations are sent
	// after the first goes unanswered, before the invitation is logged as
	// timed out and dropped. The original driver does not retry at all;
	// this is a supplemented behavior (see DESIGN.md).
	InvitationRetries int

	// SyncRounds is how many CK round-trips the synchronizer performs
	// per sync attempt. AppleMIDI's own state machine uses exactly
	// three (count values 0, 1, 2); this is fixed, not configurable,
	// and kept here only as documentation of that invariant.
	SyncRounds int

	// SyncPeriod is how often TickIdle re-runs clock sync against an
	// already-converged peer, to correct for clock drift over a long
	// session. spec.md §4.3.3 requires this to happen at least once
	// every 10 seconds.
	SyncPeriod time.Duration

	// SyncRoundTimeout bounds how long a peer may sit in
	// syncAwaitingRound1/syncAwaitingRound2 before TickIdle retries the
	// sync attempt from round 0, per spec.md §5's 3-second sync
	// round-trip timeout.
	SyncRoundTimeout time.Duration

	// FeedbackInterval is the minimum spacing between RS feedback
	// commands sent to any one peer.
	FeedbackInterval time.Duration

	// InvitationPolicy decides whether to accept an incoming invitation.
	// A nil policy accepts everything.
	InvitationPolicy InvitationPolicy

	// ReceiveBatchSize bounds each peer's inbound queue, and how many
	// messages TickReceive hands the Collaborator in one OnMessages
	// call.
	ReceiveBatchSize int

	// SendBatchSize bounds each peer's outbound queue, and how many
	// queued messages TickSend packs into one outgoing RTP packet.
	SendBatchSize int
}

// NewOptions returns an Options populated with this package's defaults.
func NewOptions() *Options {
	return &Options{
		Name:              "MIDIKit",
		ControlAddr:       "0.0.0.0:5004",
		InvitationTimeout: 5 * time.Second,
		InvitationRetries: 3,
		SyncRounds:        3,
		SyncPeriod:        10 * time.Second,
		SyncRoundTimeout:  3 * time.Second,
		FeedbackInterval:  time.Second,
		ReceiveBatchSize:  16,
		SendBatchSize:     8,
	}
}
