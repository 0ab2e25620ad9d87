package applemidi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncThreeRoundHandshake(t *testing.T) {
	initiator, err := NewEngine(&Options{ControlAddr: "127.0.0.1:0"}, nil)
	require.NoError(t, err)
	defer initiator.Close()

	responder, err := NewEngine(&Options{ControlAddr: "127.0.0.1:0"}, nil)
	require.NoError(t, err)
	defer responder.Close()

	iPeer := &PeerSession{SSRC: responder.localSSRC, controlAddr: responder.control.LocalAddr()}
	rPeer := &PeerSession{SSRC: initiator.localSSRC, controlAddr: initiator.control.LocalAddr()}

	require.NoError(t, initiator.beginSync(iPeer))
	assert.Equal(t, syncAwaitingRound1, iPeer.phase)

	raw, from, err := drainControl(t, responder)
	require.NoError(t, err)
	cmd0, err := decodeClockSync(raw)
	require.NoError(t, err)
	assert.EqualValues(t, 0, cmd0.count)

	require.NoError(t, responder.handleClockSync(rPeer, cmd0))
	assert.Equal(t, syncAwaitingRound2, rPeer.phase)
	_ = from

	raw, _, err = drainControl(t, initiator)
	require.NoError(t, err)
	cmd1, err := decodeClockSync(raw)
	require.NoError(t, err)
	assert.EqualValues(t, 1, cmd1.count)

	require.NoError(t, initiator.handleClockSync(iPeer, cmd1))
	assert.Equal(t, syncConverged, iPeer.phase)
	assert.Equal(t, offsetEstimate(iPeer), iPeer.TimestampDiff())

	raw, _, err = drainControl(t, responder)
	require.NoError(t, err)
	cmd2, err := decodeClockSync(raw)
	require.NoError(t, err)
	assert.EqualValues(t, 2, cmd2.count)

	require.NoError(t, responder.handleClockSync(rPeer, cmd2))
	assert.Equal(t, syncConverged, rPeer.phase)
	assert.Equal(t, offsetEstimate(rPeer), rPeer.TimestampDiff())
}

func TestOffsetEstimateIsCristianOffsetNotOneWayDelay(t *testing.T) {
	// t1=100, t2=160, t3=210: round trip is 110, one-way delay is 55,
	// and the round trip's midpoint is 155, so the responder's t2 sits 5
	// ticks past it: the offset is 55 + (t2-t3 = -50) = 5, not 55.
	peer := &PeerSession{t1: 100, t2: 160, t3: 210}
	assert.EqualValues(t, 5, offsetEstimate(peer))

	oneWayDelay := int64(peer.t3-peer.t1) / 2
	assert.EqualValues(t, 55, oneWayDelay)
	assert.NotEqual(t, oneWayDelay, offsetEstimate(peer))
}

func TestTickIdleRetriesThenDropsStalledSyncPeer(t *testing.T) {
	e, err := NewEngine(&Options{ControlAddr: "127.0.0.1:0", SyncRoundTimeout: time.Millisecond}, nil)
	require.NoError(t, err)
	defer e.Close()

	peer := e.registerPeer(99, "stale", 1, e.control.LocalAddr())
	require.NoError(t, e.beginSync(peer))
	require.Equal(t, syncAwaitingRound1, peer.phase)

	// Force TickIdle past its once-per-second throttle and past
	// SyncRoundTimeout on every call.
	for i := 0; i < syncMaxRetries; i++ {
		e.lastIdleAt = time.Time{}
		time.Sleep(2 * time.Millisecond)
		require.NoError(t, e.TickIdle())
		if i < syncMaxRetries-1 {
			assert.NotNil(t, e.findPeerBySSRC(99))
		}
	}

	e.lastIdleAt = time.Time{}
	time.Sleep(2 * time.Millisecond)
	require.NoError(t, e.TickIdle())
	assert.Nil(t, e.findPeerBySSRC(99))
}

func TestHandleClockSyncRejectsOutOfSequenceRound1(t *testing.T) {
	e, err := NewEngine(&Options{ControlAddr: "127.0.0.1:0"}, nil)
	require.NoError(t, err)
	defer e.Close()

	peer := &PeerSession{SSRC: 1, controlAddr: e.control.LocalAddr(), phase: syncIdle}
	err = e.handleClockSync(peer, clockSyncCommand{count: 1})
	assert.ErrorIs(t, err, ErrSyncOutOfSequence)
}

func drainControl(t *testing.T, e *Engine) ([]byte, []byte, error) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		raw, from, err := e.control.Receive()
		if err != nil {
			time.Sleep(time.Millisecond)
			continue
		}
		return append([]byte(nil), raw...), []byte(from.String()), nil
	}
	t.Fatal("timed out waiting for control datagram")
	return nil, nil, nil
}
