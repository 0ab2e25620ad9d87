package rtp

import (
	"testing"
	"time"

	"github.com/mgsx-dev/midikit/midi"
	"github.com/mgsx-dev/midikit/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionAddPeerRejectsDuplicateSSRC(t *testing.T) {
	s, err := NewSession("127.0.0.1:0", 1)
	require.NoError(t, err)
	defer s.Close()

	p1 := NewPeer(99, s.LocalAddr())
	require.NoError(t, s.AddPeer(p1))

	p2 := NewPeer(99, s.LocalAddr())
	err = s.AddPeer(p2)
	assert.ErrorIs(t, err, ErrPeerExists)
}

func TestSessionRemovePeer(t *testing.T) {
	s, err := NewSession("127.0.0.1:0", 1)
	require.NoError(t, err)
	defer s.Close()

	p := NewPeer(7, s.LocalAddr())
	require.NoError(t, s.AddPeer(p))
	require.NotNil(t, s.FindPeerBySSRC(7))

	s.RemovePeer(7)
	assert.Nil(t, s.FindPeerBySSRC(7))
}

func TestSessionSendReceiveEndToEnd(t *testing.T) {
	a, err := NewSession("127.0.0.1:0", 0xA)
	require.NoError(t, err)
	defer a.Close()

	b, err := NewSession("127.0.0.1:0", 0xB)
	require.NoError(t, err)
	defer b.Close()

	peerBOnA := NewPeer(0xB, b.LocalAddr())
	require.NoError(t, a.AddPeer(peerBOnA))

	peerAOnB := NewPeer(0xA, a.LocalAddr())
	require.NoError(t, b.AddPeer(peerAOnB))

	noteOn, err := midi.NewNoteOn(1, 64, 90)
	require.NoError(t, err)

	// The inbound sequence tracker rejects its first seqMinSequence-1
	// packets while on probation; send enough to get past warmup and
	// observe a clean acceptance.
	var lastInfo *PacketInfo
	for i := 0; i < seqMinSequence+1; i++ {
		require.NoError(t, a.Send(peerBOnA, []*midi.Message{noteOn}))

		info, _, err := receiveWithRetry(t, b)
		if i < seqMinSequence-1 {
			assert.Error(t, err)
			continue
		}
		require.NoError(t, err)
		lastInfo = info
	}

	require.NotNil(t, lastInfo)
	require.Len(t, lastInfo.Messages, 1)
	assert.True(t, noteOn.Equal(lastInfo.Messages[0]))
}

func TestSessionReceiveUnknownPeer(t *testing.T) {
	a, err := NewSession("127.0.0.1:0", 1)
	require.NoError(t, err)
	defer a.Close()

	b, err := NewSession("127.0.0.1:0", 2)
	require.NoError(t, err)
	defer b.Close()

	peer := NewPeer(2, b.LocalAddr())
	require.NoError(t, a.AddPeer(peer))

	noteOn, err := midi.NewNoteOn(0, 1, 1)
	require.NoError(t, err)
	require.NoError(t, a.Send(peer, []*midi.Message{noteOn}))

	_, _, err = receiveWithRetry(t, b)
	assert.ErrorIs(t, err, ErrUnknownPeer)
}

func receiveWithRetry(t *testing.T, s *Session) (*PacketInfo, *Peer, error) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		info, peer, err := s.Receive()
		if err == transport.ErrWouldBlock {
			time.Sleep(time.Millisecond)
			continue
		}
		return info, peer, err
	}
	t.Fatal("timed out waiting for packet")
	return nil, nil, nil
}
