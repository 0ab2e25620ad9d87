package rtp

import "time"

// DefaultSampleRate is the RTP-MIDI timestamp rate used when a session
// is not configured otherwise. The AppleMIDI session protocol's own CK
// synchronization messages run on a fixed 100 microsecond tick
// regardless of this value; DefaultSampleRate only governs how this
// package's RTP timestamps advance.
const DefaultSampleRate = 44100

// Clock converts wall-clock time into RTP timestamp units at a fixed
// rate. Each Session owns one Clock, seeded with a random initial
// offset the way a real RTP sender would (see NewClock), so that two
// sessions on the same host do not produce identical timestamps.
type Clock struct {
	rate  uint32
	epoch time.Time
	base  uint32
}

// NewClock returns a Clock ticking at rate units per second, with its
// epoch set to now and an initial random-looking base offset derived
// from the epoch itself (cheap and adequate: nothing downstream treats
// the base as a security property).
func NewClock(rate uint32) *Clock {
	now := time.Now()
	return &Clock{
		rate:  rate,
		epoch: now,
		base:  uint32(now.UnixNano()),
	}
}

// Now returns the current RTP timestamp.
func (c *Clock) Now() uint32 {
	elapsed := time.Since(c.epoch)
	ticks := uint64(elapsed.Seconds() * float64(c.rate))
	return c.base + uint32(ticks)
}

// Rate returns the clock's configured tick rate.
func (c *Clock) Rate() uint32 {
	return c.rate
}
