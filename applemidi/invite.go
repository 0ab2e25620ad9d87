package applemidi

import (
	"net"
	"time"

	"github.com/mgsx-dev/midikit/rtp"
)

// pendingInvite tracks an invitation this engine initiated, keyed by
// its token, until it is accepted, rejected, or times out.
//
// The original driver sent exactly one invitation and waited
// indefinitely; retry-with-timeout here is a supplemented behavior
// (SPEC_FULL.md ambient stack), since a real network drops packets and
// a caller needs the engine to give up eventually rather than hang.
type pendingInvite struct {
	token       uint32
	addr        net.Addr
	sentAt      time.Time
	retriesLeft int
}

// Invite begins inviting the peer at addr into a session. It returns
// the invitation's token immediately; completion (accept/reject/
// timeout) surfaces later via the Collaborator's OnPeerConnected, or by
// the invitation simply being dropped from the pending table once its
// retries are exhausted.
func (e *Engine) Invite(addr string) (uint32, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return 0, newError("resolve", addr, err)
	}

	token := e.nextToken()
	cmd := sessionCommand{
		code:    cmdInvitation,
		version: sessionCommandVersion,
		token:   token,
		ssrc:    e.localSSRC,
		name:    e.opts.Name,
	}
	if err := e.sendControl(encodeSessionCommand(cmd), udpAddr); err != nil {
		return 0, err
	}

	e.pending[token] = &pendingInvite{
		token:       token,
		addr:        udpAddr,
		sentAt:      time.Now(),
		retriesLeft: e.opts.InvitationRetries,
	}
	return token, nil
}

func (e *Engine) nextToken() uint32 {
	e.tokenCounter++
	return e.tokenCounter
}

// retryInvitations resends any pending invitation whose timeout has
// elapsed, and drops ones that have exhausted their retries. It is
// called from TickSend.
func (e *Engine) retryInvitations() {
	now := time.Now()
	for token, inv := range e.pending {
		if now.Sub(inv.sentAt) < e.opts.InvitationTimeout {
			continue
		}
		if inv.retriesLeft <= 0 {
			e.log.WithField("token", token).Warn("invitation timed out")
			delete(e.pending, token)
			continue
		}
		inv.retriesLeft--
		inv.sentAt = now
		cmd := sessionCommand{
			code:    cmdInvitation,
			version: sessionCommandVersion,
			token:   token,
			ssrc:    e.localSSRC,
			name:    e.opts.Name,
		}
		if err := e.sendControl(encodeSessionCommand(cmd), inv.addr); err != nil {
			e.log.WithError(err).WithField("token", token).Warn("invitation retry failed to send")
		}
	}
}

// handleInvitation processes an incoming IN command: evaluates the
// InvitationPolicy and responds OK or NO.
func (e *Engine) handleInvitation(cmd sessionCommand, from net.Addr) error {
	accept := true
	if e.opts.InvitationPolicy != nil {
		accept = e.opts.InvitationPolicy(cmd.ssrc, cmd.name)
	}

	reply := sessionCommand{
		version: sessionCommandVersion,
		token:   cmd.token,
		ssrc:    e.localSSRC,
		name:    e.opts.Name,
	}
	if !accept {
		reply.code = cmdInvitationRejected
		return e.sendControl(encodeSessionCommand(reply), from)
	}
	reply.code = cmdInvitationAccepted
	if err := e.sendControl(encodeSessionCommand(reply), from); err != nil {
		return err
	}

	// Only the invitation's initiator drives the clock-sync handshake
	// (see handleDataInvitationAccepted); the responder just registers the
	// peer and waits for the initiator's first CK.
	e.registerPeer(cmd.ssrc, cmd.name, cmd.token, from)
	return nil
}

// handleInvitationAccepted processes an incoming OK command completing
// an invitation this engine sent on the control socket. Per spec.md
// §4.3's initiator state machine, this does not yet begin clock sync:
// a second IN/OK round must complete on the data socket first (see
// sendDataInvitation/handleDataInvitationAccepted).
func (e *Engine) handleInvitationAccepted(cmd sessionCommand, from net.Addr) error {
	if _, ok := e.pending[cmd.token]; !ok {
		return ErrNoSuchSession
	}
	delete(e.pending, cmd.token)

	peer := e.registerPeer(cmd.ssrc, cmd.name, cmd.token, from)
	return e.sendDataInvitation(peer)
}

// sendDataInvitation sends the invitation handshake's second IN, on
// the data socket at peer's control address port + 1, and records peer
// under its token in pendingData so handleDataInvitationAccepted can
// find it once the matching OK arrives.
func (e *Engine) sendDataInvitation(peer *PeerSession) error {
	cmd := sessionCommand{
		code:    cmdInvitation,
		version: sessionCommandVersion,
		token:   peer.token,
		ssrc:    e.localSSRC,
		name:    e.opts.Name,
	}
	e.pendingData[peer.token] = peer
	return e.data.SendRaw(encodeSessionCommand(cmd), dataAddrFor(peer.controlAddr))
}

// handleDataInvitation processes an incoming IN on the data socket: the
// invitation handshake's second round, sent by a peer that already
// received our control-socket OK (handleInvitation registered it
// there). It mirrors the IN as OK back to the same address. An IN
// whose token matches no registered peer is dropped.
func (e *Engine) handleDataInvitation(cmd sessionCommand, from net.Addr) error {
	peer := e.findPeerByToken(cmd.token)
	if peer == nil {
		return nil
	}
	reply := sessionCommand{
		code:    cmdInvitationAccepted,
		version: sessionCommandVersion,
		token:   cmd.token,
		ssrc:    e.localSSRC,
	}
	return e.data.SendRaw(encodeSessionCommand(reply), from)
}

// handleDataInvitationAccepted processes the data socket's OK closing
// the invitation handshake's second round. Only now, per spec.md
// §4.3's "on both accepts, transition peer to synced" rule, does clock
// sync begin.
func (e *Engine) handleDataInvitationAccepted(cmd sessionCommand, from net.Addr) error {
	peer, ok := e.pendingData[cmd.token]
	if !ok {
		return nil
	}
	delete(e.pendingData, cmd.token)
	return e.beginSync(peer)
}

func (e *Engine) findPeerByToken(token uint32) *PeerSession {
	for _, p := range e.peers {
		if p.token == token {
			return p
		}
	}
	return nil
}

// handleInvitationRejected processes an incoming NO command.
func (e *Engine) handleInvitationRejected(cmd sessionCommand) error {
	if _, ok := e.pending[cmd.token]; !ok {
		return ErrNoSuchSession
	}
	delete(e.pending, cmd.token)
	return ErrInvitationDeclined
}

func (e *Engine) registerPeer(ssrc uint32, name string, token uint32, controlAddr net.Addr) *PeerSession {
	peer := newPeerSession(name, ssrc, controlAddr, token, e.opts)

	dataAddr := dataAddrFor(controlAddr)
	if e.data.FindPeerBySSRC(ssrc) == nil {
		_ = e.data.AddPeer(rtp.NewPeer(ssrc, dataAddr))
	}
	peer.dataPeer = e.data.FindPeerBySSRC(ssrc)

	e.peers = append(e.peers, peer)
	if e.collaborator != nil {
		e.collaborator.OnPeerConnected(peer)
	}
	return peer
}

// dataAddrFor derives a peer's data-port address from its control-port
// address, following the AppleMIDI convention that the data socket
// binds to control port + 1 on the same host.
func dataAddrFor(controlAddr net.Addr) net.Addr {
	udpAddr, ok := controlAddr.(*net.UDPAddr)
	if !ok {
		return controlAddr
	}
	return &net.UDPAddr{IP: udpAddr.IP, Port: udpAddr.Port + 1, Zone: udpAddr.Zone}
}
