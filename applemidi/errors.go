package applemidi

import (
	"errors"
	"fmt"
)

var (
	// ErrBadSignature is returned when a datagram's leading 16 bits are
	// not the AppleMIDI protocol signature (0xFFFF).
	ErrBadSignature = errors.New("applemidi: bad protocol signature")

	// ErrUnknownCommand is returned when a datagram carries a
	// recognized signature but a command code outside {IN,OK,NO,BY,CK,RS}.
	ErrUnknownCommand = errors.New("applemidi: unrecognized command code")

	// ErrMalformedCommand is returned when a datagram is too short for
	// the command its code claims to be.
	ErrMalformedCommand = errors.New("applemidi: malformed command payload")

	// ErrInvitationDeclined is returned by the NO handler when the
	// remote rejects an invitation this engine sent; TickReceive logs it
	// and drops the pending invitation.
	ErrInvitationDeclined = errors.New("applemidi: invitation declined")

	// ErrInvitationTimedOut names an invitation that exhausted its retry
	// budget with no response. The engine does not return it: TickSend
	// logs such an invitation as timed out and drops it.
	ErrInvitationTimedOut = errors.New("applemidi: invitation timed out")

	// ErrNoSuchSession is returned when a command arrives for a token
	// or SSRC the engine has no in-progress invitation or peer for.
	ErrNoSuchSession = errors.New("applemidi: no matching session")

	// ErrSyncOutOfSequence is returned when a CK command's round count
	// does not match what the local sync state machine expects next.
	ErrSyncOutOfSequence = errors.New("applemidi: clock sync command out of sequence")

	// ErrSyncTimedOut is the OnPeerDisconnected reason when a peer is
	// dropped after repeatedly failing to complete a clock sync
	// round-trip within Options.SyncRoundTimeout.
	ErrSyncTimedOut = errors.New("applemidi: clock sync round-trip timed out")
)

// Error wraps a lower-level error with the operation and peer address
// involved, mirroring opd-ai-toxcore's net.ToxNetError shape.
type Error struct {
	Op   string
	Addr string
	Err  error
}

func (e *Error) Error() string {
	if e.Addr != "" {
		return fmt.Sprintf("applemidi: %s %s: %v", e.Op, e.Addr, e.Err)
	}
	return fmt.Sprintf("applemidi: %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(op, addr string, err error) *Error {
	return &Error{Op: op, Addr: addr, Err: err}
}
