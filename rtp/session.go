package rtp

import (
	"net"

	"github.com/mgsx-dev/midikit/midi"
	"github.com/mgsx-dev/midikit/transport"
	"github.com/sirupsen/logrus"
)

// Session binds one transport.Endpoint to a local SSRC, a clock, and a
// table of known peers. It is the Go analogue of opd-ai-toxcore's
// av/rtp.Session, but carries MIDI command lists instead of audio
// frames and tracks one peer table per session rather than delegating
// peer lookup to a separate TransportIntegration layer — AppleMIDI
// sessions are inherently small (one control connection invites a
// handful of peers at most), so the extra indirection that integration
// layer provides for many-friend audio calls buys nothing here.
type Session struct {
	endpoint  *transport.Endpoint
	clock     *Clock
	localSSRC uint32

	// peers preserves insertion order for Peers(); peersBySSRC and
	// peersByAddr back FindPeerBySSRC/FindPeerByAddress with O(1)
	// lookups instead of the linear scan spec.md §3's RTP Session
	// invariants rule out for a peer table that can grow past a
	// handful of entries (see DESIGN.md).
	peers       []*Peer
	peersBySSRC map[uint32]*Peer
	peersByAddr map[string]*Peer
	log         *logrus.Entry
}

// NewSession opens a Session listening on addr with the given local
// SSRC.
func NewSession(addr string, localSSRC uint32) (*Session, error) {
	ep, err := transport.NewEndpoint(addr)
	if err != nil {
		return nil, err
	}
	return &Session{
		endpoint:    ep,
		clock:       NewClock(DefaultSampleRate),
		localSSRC:   localSSRC,
		peersBySSRC: make(map[uint32]*Peer),
		peersByAddr: make(map[string]*Peer),
		log:         logrus.WithField("component", "rtp.session").WithField("ssrc", localSSRC),
	}, nil
}

// LocalAddr returns the session's bound local address.
func (s *Session) LocalAddr() net.Addr {
	return s.endpoint.LocalAddr()
}

// AddPeer registers peer with the session. It fails with ErrPeerExists
// if peer's SSRC is already registered.
func (s *Session) AddPeer(peer *Peer) error {
	if s.FindPeerBySSRC(peer.SSRC) != nil {
		return ErrPeerExists
	}
	peer.sendSeq = uint16(s.clock.Now())
	s.peers = append(s.peers, peer)
	s.peersBySSRC[peer.SSRC] = peer
	if peer.Addr != nil {
		s.peersByAddr[peer.Addr.String()] = peer
	}
	s.log.WithField("peer_ssrc", peer.SSRC).Info("peer added")
	return nil
}

// RemovePeer drops the peer with the given SSRC. It is a no-op if no
// such peer is registered.
func (s *Session) RemovePeer(ssrc uint32) {
	peer, ok := s.peersBySSRC[ssrc]
	if !ok {
		return
	}
	delete(s.peersBySSRC, ssrc)
	if peer.Addr != nil {
		delete(s.peersByAddr, peer.Addr.String())
	}
	for i, p := range s.peers {
		if p.SSRC == ssrc {
			s.peers = append(s.peers[:i], s.peers[i+1:]...)
			break
		}
	}
	s.log.WithField("peer_ssrc", ssrc).Info("peer removed")
}

// FindPeerBySSRC returns the registered peer with the given SSRC, or
// nil, in O(1).
func (s *Session) FindPeerBySSRC(ssrc uint32) *Peer {
	return s.peersBySSRC[ssrc]
}

// FindPeerByAddress returns the registered peer whose address string
// matches addr, or nil, in O(1).
func (s *Session) FindPeerByAddress(addr net.Addr) *Peer {
	if addr == nil {
		return nil
	}
	return s.peersByAddr[addr.String()]
}

// Peers returns every registered peer. The returned slice is owned by
// the caller; mutating it does not affect the session's table.
func (s *Session) Peers() []*Peer {
	out := make([]*Peer, len(s.peers))
	copy(out, s.peers)
	return out
}

// Send packetizes messages and sends them to peer, advancing peer's
// send sequence and recording the command list in peer's journal for
// possible later replay.
func (s *Session) Send(peer *Peer, messages []*midi.Message) error {
	seq := peer.nextSendSeq()
	ts := s.clock.Now()

	packet, err := encodePacket(s.localSSRC, seq, ts, messages)
	if err != nil {
		s.log.WithError(err).WithField("peer_ssrc", peer.SSRC).Warn("failed to encode outgoing packet")
		return err
	}
	if err := s.endpoint.Send(packet, peer.Addr); err != nil {
		return err
	}
	peer.journal.Append(seq, messages)
	peer.touch()
	return nil
}

// ReceiveRaw reads one waiting datagram without interpreting it. It
// returns transport.ErrWouldBlock if nothing is waiting.
//
// This exists alongside Receive for callers (applemidi.Engine's data
// socket) that share one UDP socket between RTP-MIDI frames and a
// differently-framed protocol: they must peek a datagram's contents
// before deciding whether Decode or their own parser should handle it.
func (s *Session) ReceiveRaw() ([]byte, net.Addr, error) {
	return s.endpoint.Receive()
}

// SendRaw writes b to addr directly, bypassing RTP-MIDI packet
// framing. AppleMIDI's invitation handshake repeats its IN/OK exchange
// on the data socket before any RTP-MIDI traffic flows (spec.md
// §4.3); this lets applemidi.Engine reuse this Session's socket for
// that exchange instead of opening a second one.
func (s *Session) SendRaw(b []byte, addr net.Addr) error {
	return s.endpoint.Send(b, addr)
}

// Decode interprets raw as an RTP-MIDI packet sent by addr: it matches
// the packet to a known peer and validates its sequence number. It
// returns ErrUnknownPeer if addr and the packet's SSRC match no
// registered peer.
func (s *Session) Decode(raw []byte, addr net.Addr) (*PacketInfo, *Peer, error) {
	info, err := decodePacket(raw)
	if err != nil {
		s.log.WithError(err).WithField("from", addr.String()).Warn("dropping malformed packet")
		return nil, nil, err
	}

	peer := s.FindPeerByAddress(addr)
	if peer == nil {
		peer = s.FindPeerBySSRC(info.SSRC)
	}
	if peer == nil {
		return info, nil, ErrUnknownPeer
	}

	if _, err := peer.inbound.update(info.Sequence); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"peer_ssrc": peer.SSRC,
			"seq":       info.Sequence,
		}).Debug("sequence validation rejected packet")
		return info, peer, err
	}

	peer.touch()
	return info, peer, nil
}

// Receive reads one waiting datagram and decodes it as an RTP-MIDI
// packet. It returns transport.ErrWouldBlock if nothing is waiting,
// and ErrUnknownPeer if neither the datagram's source address nor the
// packet's SSRC matches a registered peer.
func (s *Session) Receive() (*PacketInfo, *Peer, error) {
	raw, addr, err := s.ReceiveRaw()
	if err != nil {
		return nil, nil, err
	}
	return s.Decode(raw, addr)
}

// Close releases the session's underlying socket.
func (s *Session) Close() error {
	return s.endpoint.Close()
}
