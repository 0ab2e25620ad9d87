// Package transport provides a non-blocking datagram endpoint used by
// the rtp and applemidi packages. It wraps a net.PacketConn the same way
// opd-ai-toxcore's transport.UDPTransport does, but trades that type's
// background goroutine and registered-handler dispatch for a
// readiness-probe Receive call: every protocol package here is driven by
// an explicit host tick loop (see applemidi.Engine), not by its own
// goroutines.
package transport
