package applemidi

import (
	"net"
	"time"

	"github.com/mgsx-dev/midikit/midi"
	"github.com/mgsx-dev/midikit/rtp"
	"github.com/mgsx-dev/midikit/transport"
	"github.com/sirupsen/logrus"
)

// syncMaxRetries bounds how many times TickIdle restarts a clock sync
// attempt that has stalled past Options.SyncRoundTimeout before giving
// up and dropping the peer as unreachable.
const syncMaxRetries = 3

// Engine is one AppleMIDI endpoint: a control session for invitations
// and clock sync, a data session for RTP-MIDI traffic, and the peer
// table tying the two together.
//
// Engine is not safe for concurrent use. It is driven by a single
// goroutine calling TickReceive, TickSend and TickIdle in a loop, the
// same cooperative, non-blocking shape opd-ai-toxcore's Tox.Iterate
// gives its own core loop.
type Engine struct {
	opts         *Options
	control      *transport.Endpoint
	data         *rtp.Session
	localSSRC    uint32
	collaborator Collaborator

	peers       []*PeerSession
	pending     map[uint32]*pendingInvite
	pendingData map[uint32]*PeerSession

	tokenCounter uint32
	startedAt    time.Time
	lastIdleAt   time.Time

	log *logrus.Entry
}

// NewEngine opens an Engine using opts (NewOptions defaults if nil),
// delivering events to collaborator.
func NewEngine(opts *Options, collaborator Collaborator) (*Engine, error) {
	if opts == nil {
		opts = NewOptions()
	}

	control, err := transport.NewEndpoint(opts.ControlAddr)
	if err != nil {
		return nil, err
	}

	// Derive the data address from the control socket's actual bound
	// address rather than opts.ControlAddr literally: when the caller
	// asks for an ephemeral control port (":0"), the OS picks the real
	// port only once the socket is open, and the data port must be one
	// past that real port, not one past the literal 0.
	dataAddr, err := dataAddrFromControl(control.LocalAddr())
	if err != nil {
		control.Close()
		return nil, err
	}

	localSSRC := uint32(time.Now().UnixNano())
	data, err := rtp.NewSession(dataAddr, localSSRC)
	if err != nil {
		control.Close()
		return nil, err
	}

	return &Engine{
		opts:         opts,
		control:      control,
		data:         data,
		localSSRC:    localSSRC,
		collaborator: collaborator,
		pending:      make(map[uint32]*pendingInvite),
		pendingData:  make(map[uint32]*PeerSession),
		startedAt:    time.Now(),
		log:          logrus.WithField("component", "applemidi.engine").WithField("ssrc", localSSRC),
	}, nil
}

// LocalSSRC returns this engine's session SSRC.
func (e *Engine) LocalSSRC() uint32 {
	return e.localSSRC
}

// LocalControlAddr returns the address this engine's control socket is
// bound to.
func (e *Engine) LocalControlAddr() net.Addr {
	return e.control.LocalAddr()
}

// Peers returns every currently connected peer.
func (e *Engine) Peers() []*PeerSession {
	out := make([]*PeerSession, len(e.peers))
	copy(out, e.peers)
	return out
}

func (e *Engine) sendControl(payload []byte, addr net.Addr) error {
	return e.control.Send(payload, addr)
}

// TickReceive drains one waiting datagram from each of the control and
// data sockets, dispatching whatever it finds. It never blocks: an
// empty socket yields transport.ErrWouldBlock, which TickReceive treats
// as "nothing to do" rather than an error.
func (e *Engine) TickReceive() error {
	if err := e.tickReceiveControl(); err != nil && err != transport.ErrWouldBlock {
		return err
	}
	if err := e.tickReceiveData(); err != nil && err != transport.ErrWouldBlock {
		return err
	}
	return nil
}

func (e *Engine) tickReceiveControl() error {
	raw, from, err := e.control.Receive()
	if err != nil {
		return err
	}

	code, err := peekCommand(raw)
	if err != nil {
		e.log.WithError(err).WithField("from", from.String()).Debug("dropping unrecognized control datagram")
		return nil
	}

	switch code {
	case cmdInvitation:
		cmd, err := decodeSessionCommand(raw)
		if err != nil {
			return nil
		}
		return e.handleInvitation(cmd, from)
	case cmdInvitationAccepted:
		cmd, err := decodeSessionCommand(raw)
		if err != nil {
			return nil
		}
		return e.handleInvitationAccepted(cmd, from)
	case cmdInvitationRejected:
		cmd, err := decodeSessionCommand(raw)
		if err != nil {
			return nil
		}
		if err := e.handleInvitationRejected(cmd); err != nil {
			e.log.WithError(err).WithField("token", cmd.token).Debug("invitation rejection ignored")
		}
		return nil
	case cmdEndSession:
		cmd, err := decodeSessionCommand(raw)
		if err != nil {
			return nil
		}
		return e.handleEndSession(cmd, from)
	case cmdClockSync:
		cmd, err := decodeClockSync(raw)
		if err != nil {
			return nil
		}
		peer := e.findPeerBySSRC(cmd.ssrc)
		if peer == nil {
			return nil
		}
		return e.handleClockSync(peer, cmd)
	case cmdReceiverFeedback:
		cmd, err := decodeReceiverFeedback(raw)
		if err != nil {
			return nil
		}
		return e.handleReceiverFeedback(cmd)
	default:
		return nil
	}
}

// tickReceiveData drains one datagram from the data socket. Per
// spec.md §4.3's dispatch rule, the data socket carries both RTP-MIDI
// frames and the AppleMIDI invitation handshake's second IN/OK round
// (see handleDataInvitation/handleDataInvitationAccepted); every
// datagram is peeked for the AppleMIDI signature before falling
// through to the normal RTP-MIDI decode path.
func (e *Engine) tickReceiveData() error {
	raw, from, err := e.data.ReceiveRaw()
	if err != nil {
		return err
	}

	if code, cerr := peekCommand(raw); cerr == nil {
		return e.dispatchDataCommand(code, raw, from)
	}

	info, peer, err := e.data.Decode(raw, from)
	// A peer that completed the invitation handshake is already a known
	// source, so an in-order packet the sequence tracker still holds on
	// probation (rtp.ErrSequenceOutOfOrder) is delivered, not dropped.
	if err != nil && !(err == rtp.ErrSequenceOutOfOrder && peer != nil) {
		return err
	}
	if peer == nil {
		return nil
	}

	as := e.findPeerBySSRC(peer.SSRC)
	if as == nil {
		return nil
	}

	for _, m := range info.Messages {
		if err := as.inQueue.Push(m); err != nil {
			e.log.WithField("peer_ssrc", as.SSRC).Warn("inbound queue full, dropping message")
		}
	}

	if e.collaborator != nil {
		if batch := as.inQueue.DrainUpTo(e.opts.ReceiveBatchSize); len(batch) > 0 {
			e.collaborator.OnMessages(as, batch)
		}
	}
	return e.sendFeedbackIfDue(as, info.Sequence)
}

// dispatchDataCommand handles an AppleMIDI command datagram that
// arrived on the data socket rather than the control socket: only the
// invitation handshake's second round (IN/OK) ever appears there.
func (e *Engine) dispatchDataCommand(code commandCode, raw []byte, from net.Addr) error {
	switch code {
	case cmdInvitation:
		cmd, err := decodeSessionCommand(raw)
		if err != nil {
			return nil
		}
		return e.handleDataInvitation(cmd, from)
	case cmdInvitationAccepted:
		cmd, err := decodeSessionCommand(raw)
		if err != nil {
			return nil
		}
		return e.handleDataInvitationAccepted(cmd, from)
	default:
		e.log.WithField("from", from.String()).Debug("dropping unexpected control command on data socket")
		return nil
	}
}

// TickSend performs outbound housekeeping: retrying unanswered
// invitations whose timeout elapsed, then flushing each peer's outbound
// queue in batches of at most Options.SendBatchSize messages per RTP
// packet.
func (e *Engine) TickSend() error {
	e.retryInvitations()

	for _, peer := range e.peers {
		if peer.outQueue.Len() == 0 || peer.dataPeer == nil {
			continue
		}
		batch := peer.outQueue.DrainUpTo(e.opts.SendBatchSize)
		if len(batch) == 0 {
			continue
		}
		if err := e.data.Send(peer.dataPeer, batch); err != nil {
			e.log.WithError(err).WithField("peer_ssrc", peer.SSRC).Warn("failed to flush outbound queue")
		}
	}
	return nil
}

// TickIdle performs periodic housekeeping unrelated to any single
// inbound or outbound event: resynchronizing converged peers whose
// last sync is older than Options.SyncPeriod, and retrying (or, past
// syncMaxRetries, dropping) peers whose sync round-trip has stalled
// past Options.SyncRoundTimeout.
func (e *Engine) TickIdle() error {
	now := time.Now()
	if now.Sub(e.lastIdleAt) < time.Second {
		return nil
	}
	e.lastIdleAt = now

	var dead []*PeerSession
	for _, peer := range e.peers {
		switch peer.phase {
		case syncConverged:
			if now.Sub(peer.lastSyncAt) >= e.opts.SyncPeriod {
				if err := e.beginSync(peer); err != nil {
					e.log.WithError(err).WithField("peer_ssrc", peer.SSRC).Warn("periodic resync failed to send")
				}
			}
		case syncAwaitingRound1, syncAwaitingRound2:
			if now.Sub(peer.lastSyncAt) < e.opts.SyncRoundTimeout {
				continue
			}
			if peer.syncRetries >= syncMaxRetries {
				dead = append(dead, peer)
				continue
			}
			peer.syncRetries++
			if err := e.beginSync(peer); err != nil {
				e.log.WithError(err).WithField("peer_ssrc", peer.SSRC).Warn("sync retry failed to send")
			}
		}
	}

	// Dropped after the scan, not during it: removePeer mutates
	// e.peers in place, which would corrupt this range over it.
	for _, peer := range dead {
		e.log.WithField("peer_ssrc", peer.SSRC).Warn("sync round-trip timed out repeatedly, dropping peer")
		e.removePeer(peer, ErrSyncTimedOut)
	}
	return nil
}

// SendMessages pushes messages onto peer's outbound queue; TickSend
// flushes queued messages to the data session in batches of at most
// Options.SendBatchSize. It returns queue.ErrFull (drop-newest, per
// spec.md §4.4) the moment one message can't be queued, leaving
// earlier messages in this call already queued.
func (e *Engine) SendMessages(peer *PeerSession, messages []*midi.Message) error {
	if peer.dataPeer == nil {
		return ErrNoSuchSession
	}
	for _, m := range messages {
		if err := peer.outQueue.Push(m); err != nil {
			return err
		}
	}
	return nil
}

// Close tears down both sockets. It does not send BY to any connected
// peer; callers that want a graceful shutdown should call Teardown on
// each peer first.
func (e *Engine) Close() error {
	dataErr := e.data.Close()
	controlErr := e.control.Close()
	if dataErr != nil {
		return dataErr
	}
	return controlErr
}
