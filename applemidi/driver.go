package applemidi

import "github.com/mgsx-dev/midikit/midi"

// Collaborator is the contract a host implements to receive Engine
// events. It plays the role the original driver's fixed callback
// pointers (connected/disconnected/receive) played, expressed as a Go
// interface so a host can embed a no-op base and override only what it
// needs.
type Collaborator interface {
	// OnPeerConnected fires when a peer is registered and its RTP data
	// peer exists: for an incoming invitation, once the control-socket IN
	// is accepted; for an outgoing one, once the control-socket OK
	// arrives, before the data-socket IN/OK round and clock sync.
	OnPeerConnected(peer *PeerSession)

	// OnPeerDisconnected fires when a peer sends BY, or when the local
	// side tears one down itself.
	OnPeerDisconnected(peer *PeerSession, reason error)

	// OnMessages delivers one peer's decoded MIDI command list as it
	// arrives. It is called synchronously from TickReceive; a
	// Collaborator that needs to do slow work should hand messages off
	// to its own queue.Queue rather than block here.
	OnMessages(peer *PeerSession, messages []*midi.Message)
}

// InvitationPolicy decides whether to accept an incoming invitation
// from a remote SSRC/name. It is a supplement over the original driver,
// which accepted every invitation unconditionally; see SPEC_FULL.md.
type InvitationPolicy func(remoteSSRC uint32, remoteName string) bool

// BaseCollaborator is an embeddable no-op Collaborator; hosts that only
// care about one or two callbacks can embed this and override the
// rest.
type BaseCollaborator struct{}

func (BaseCollaborator) OnPeerConnected(*PeerSession)               {}
func (BaseCollaborator) OnPeerDisconnected(*PeerSession, error)     {}
func (BaseCollaborator) OnMessages(*PeerSession, []*midi.Message)   {}
