package midi

// Message is a single MIDI event in its in-memory record form: a fixed
// 4-byte inline header plus, for System Exclusive only, an owned
// variable-length payload.
//
// For every variant but SysEx, Bytes holds the on-wire status/data
// bytes directly and Data is always nil. For SysEx, Bytes[0] is the
// status (0xF0), Bytes[1] is the manufacturer id, Bytes[2] is the
// fragment index (0 means first-or-complete), Bytes[3] mirrors the
// on-wire owning flag for callers that round-trip raw bytes, and Data
// holds the payload. Go's slice ownership makes the owning flag
// informational rather than load-bearing: once Decode returns a
// Message, its Data belongs to that Message alone.
type Message struct {
	Bytes [4]byte
	Data  []byte
}

// descriptor returns the Descriptor that owns msg, based on its status
// byte, or nil if none match.
func (m *Message) descriptor() Descriptor {
	return ForStatus(m.Bytes[0])
}

// Size returns msg's exact encoded length, or 0 if msg's status byte
// does not match any known variant.
func (m *Message) Size() int {
	d := m.descriptor()
	if d == nil {
		return 0
	}
	return d.Size(m)
}

// Encode writes msg into out and returns the number of bytes written.
// It fails with ErrBufferTooSmall if out is shorter than Size(msg), and
// with ErrUnrecognized if msg's status byte matches no known variant.
func (m *Message) Encode(out []byte) (int, error) {
	d := m.descriptor()
	if d == nil {
		return 0, ErrUnrecognized
	}
	return d.Encode(m, out)
}

// GetInt reads an integer-valued property from msg.
func (m *Message) GetInt(prop Property) (int, error) {
	d := m.descriptor()
	if d == nil {
		return 0, ErrUnrecognized
	}
	return d.GetInt(m, prop)
}

// SetInt writes an integer-valued property into msg.
func (m *Message) SetInt(prop Property, value int) error {
	d := m.descriptor()
	if d == nil {
		return ErrUnrecognized
	}
	return d.SetInt(m, prop, value)
}

// GetBytes reads a byte-slice-valued property from msg (SysEx payload only).
func (m *Message) GetBytes(prop Property) ([]byte, error) {
	d := m.descriptor()
	if d == nil {
		return nil, ErrUnrecognized
	}
	return d.GetBytes(m, prop)
}

// SetBytes writes a byte-slice-valued property into msg (SysEx payload only).
func (m *Message) SetBytes(prop Property, value []byte) error {
	d := m.descriptor()
	if d == nil {
		return ErrUnrecognized
	}
	return d.SetBytes(m, prop, value)
}

// Equal reports whether m and other encode to the same bytes. It is
// intended for round-trip test assertions.
func (m *Message) Equal(other *Message) bool {
	if m == nil || other == nil {
		return m == other
	}
	if m.Bytes != other.Bytes {
		return false
	}
	if len(m.Data) != len(other.Data) {
		return false
	}
	for i := range m.Data {
		if m.Data[i] != other.Data[i] {
			return false
		}
	}
	return true
}

// Decode parses in as one complete message, using whichever descriptor
// Detect selects for in's leading status byte.
func Decode(in []byte) (*Message, error) {
	d := Detect(in)
	if d == nil {
		return nil, ErrUnrecognized
	}
	return d.Decode(in)
}
