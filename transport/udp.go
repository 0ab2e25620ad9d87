package transport

import (
	"net"
	"time"

	"github.com/sirupsen/logrus"
)

// MaxDatagramSize bounds a single Receive read. RTP-MIDI payloads are
// small relative to this, but a generous buffer avoids truncating a
// recovery-journal-heavy packet under UDP fragmentation reassembly.
const MaxDatagramSize = 1500

// Endpoint is a single UDP socket used for both sending and receiving.
// AppleMIDI needs two of these per session (control port P, data port
// P+1); Endpoint itself knows nothing about that pairing, which lives in
// the applemidi package.
//
// Unlike opd-ai-toxcore's UDPTransport, Endpoint runs no background
// goroutine and calls no registered handler. Receive is a readiness
// probe: it sets a read deadline one millisecond ahead before every
// read, so a call with nothing waiting returns ErrWouldBlock after at
// most that long instead of parking a goroutine indefinitely. (A
// deadline already in the past would make ReadFrom fail without reading
// even when a datagram is queued.) This matches the single-threaded,
// tick-driven concurrency model the session engine requires.
type Endpoint struct {
	conn net.PacketConn
	log  *logrus.Entry
	buf  []byte
}

// NewEndpoint opens a UDP socket bound to addr (host:port, or ":0" for
// an ephemeral port).
func NewEndpoint(addr string) (*Endpoint, error) {
	conn, err := net.ListenPacket("udp", addr)
	if err != nil {
		return nil, newError("listen", addr, err)
	}
	return &Endpoint{
		conn: conn,
		log:  logrus.WithField("component", "transport").WithField("local_addr", conn.LocalAddr().String()),
		buf:  make([]byte, MaxDatagramSize),
	}, nil
}

// LocalAddr returns the endpoint's bound local address.
func (e *Endpoint) LocalAddr() net.Addr {
	return e.conn.LocalAddr()
}

// Send writes payload as a single datagram to dst.
func (e *Endpoint) Send(payload []byte, dst net.Addr) error {
	if len(payload) > MaxDatagramSize {
		return ErrPacketTooLarge
	}
	n, err := e.conn.WriteTo(payload, dst)
	if err != nil {
		e.log.WithError(err).WithField("dst", dst.String()).Warn("send failed")
		return newError("send", dst.String(), err)
	}
	if n != len(payload) {
		e.log.WithFields(logrus.Fields{
			"dst":      dst.String(),
			"wrote":    n,
			"expected": len(payload),
		}).Warn("short write")
	}
	return nil
}

// Receive returns the next waiting datagram and its source address,
// waiting at most one millisecond. It returns ErrWouldBlock if nothing
// is available within that window. The returned slice is only valid
// until the next call to Receive.
func (e *Endpoint) Receive() ([]byte, net.Addr, error) {
	if err := e.conn.SetReadDeadline(time.Now().Add(time.Millisecond)); err != nil {
		return nil, nil, newError("set_read_deadline", "", err)
	}
	n, addr, err := e.conn.ReadFrom(e.buf)
	if err != nil {
		if isTimeout(err) {
			return nil, nil, ErrWouldBlock
		}
		e.log.WithError(err).Debug("receive failed")
		return nil, nil, newError("receive", "", err)
	}
	return e.buf[:n], addr, nil
}

// Close releases the underlying socket.
func (e *Endpoint) Close() error {
	return e.conn.Close()
}

func isTimeout(err error) bool {
	type timeout interface{ Timeout() bool }
	t, ok := err.(timeout)
	return ok && t.Timeout()
}
