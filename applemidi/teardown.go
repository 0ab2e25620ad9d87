package applemidi

import "net"

// Teardown sends BY to peer and removes it from the engine's peer and
// data-session tables. Grounded on _applemidi_disconnect in the
// original driver.
func (e *Engine) Teardown(peer *PeerSession) error {
	cmd := sessionCommand{
		code:    cmdEndSession,
		version: sessionCommandVersion,
		token:   peer.token,
		ssrc:    e.localSSRC,
	}
	err := e.sendControl(encodeSessionCommand(cmd), peer.controlAddr)
	e.removePeer(peer, nil)
	return err
}

// handleEndSession processes an incoming BY command from peer.
func (e *Engine) handleEndSession(cmd sessionCommand, from net.Addr) error {
	peer := e.findPeerBySSRC(cmd.ssrc)
	if peer == nil {
		return ErrNoSuchSession
	}
	e.removePeer(peer, nil)
	return nil
}

func (e *Engine) removePeer(peer *PeerSession, reason error) {
	for i, p := range e.peers {
		if p == peer {
			e.peers = append(e.peers[:i], e.peers[i+1:]...)
			break
		}
	}
	e.data.RemovePeer(peer.SSRC)
	if e.collaborator != nil {
		e.collaborator.OnPeerDisconnected(peer, reason)
	}
}

func (e *Engine) findPeerBySSRC(ssrc uint32) *PeerSession {
	for _, p := range e.peers {
		if p.SSRC == ssrc {
			return p
		}
	}
	return nil
}
