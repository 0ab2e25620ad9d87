package midi

const (
	statusSysEx byte = 0xF0
	statusEOX   byte = 0xF7
)

// sysexDescriptor is the only variable-length variant. Its Message
// carries the manufacturer id and fragment index inline in Bytes, and
// the payload (everything after the manufacturer id, including a
// trailing EOX byte if this fragment ends the exclusive message) in
// Data.
//
// original_source/midi/message_format.c allocates the payload with
// malloc(size-2) and marks ownership with bytes[3]=1; Go's slice
// ownership makes that flag purely advisory here (see Message's doc
// comment), but the field is kept for callers that inspect raw bytes
// from a non-Go peer implementation.
type sysexDescriptor struct{}

func (sysexDescriptor) Detect(buf []byte) bool {
	return len(buf) != 0 && buf[0] == statusSysEx
}

// Size returns the exact encoded length of msg, branching on the
// fragment index exactly as spec.md's table and
// original_source/midi/message_format.c's _size_system_exclusive do:
// the first fragment (Bytes[2]==0) carries a status and manufacturer-id
// byte ahead of its payload; every subsequent fragment is pure data.
func (sysexDescriptor) Size(msg *Message) int {
	if msg.Bytes[2] == 0 {
		return len(msg.Data) + 2
	}
	return len(msg.Data)
}

// Encode mirrors _encode_system_exclusive's branch: a first fragment
// writes status, manufacturer id, then payload; a continuation fragment
// writes nothing but payload, since it carries no header on the wire.
func (d sysexDescriptor) Encode(msg *Message, out []byte) (int, error) {
	n := d.Size(msg)
	if len(out) < n {
		return 0, ErrBufferTooSmall
	}
	if msg.Bytes[2] == 0 {
		out[0] = statusSysEx
		out[1] = msg.Bytes[1]
		copy(out[2:n], msg.Data)
		return n, nil
	}
	copy(out[:n], msg.Data)
	return n, nil
}

// Decode parses in as a first-fragment (or single-fragment, complete)
// SysEx message: status byte, manufacturer id byte, then payload. This
// is the only form Decode handles; a continuation fragment carries no
// status byte to detect or decode against (MIDI data bytes are always
// 7-bit, so Detect can never mistake payload for a header), and is
// built directly by DecodeSysExContinuation once a caller already knows
// — from fragment sequencing, not from the bytes themselves — that it
// has one in hand.
func (sysexDescriptor) Decode(in []byte) (*Message, error) {
	if len(in) < 2 {
		return nil, ErrInvalidLength
	}
	if in[0] != statusSysEx {
		return nil, ErrInvalidLength
	}
	m := &Message{Bytes: [4]byte{statusSysEx, in[1], 0, 1}}
	if len(in) > 2 {
		m.Data = append([]byte(nil), in[2:]...)
	}
	return m, nil
}

// IsSysExContinuation reports whether msg is a SysEx fragment with a
// nonzero fragment index: a continuation fragment that, per spec.md's
// table and _size_system_exclusive's "following fragments contain pure
// data" comment, carries no status or manufacturer-id header on the
// wire.
func IsSysExContinuation(msg *Message) bool {
	return msg.Bytes[0] == statusSysEx && msg.Bytes[2] != 0
}

// DecodeSysExContinuation builds a SysEx continuation-fragment Message
// directly from in's raw payload bytes, with no header to parse. The
// exact fragment index is not recoverable from the wire (continuation
// fragments don't carry one); the resulting Message's fragment index is
// set to a nonzero placeholder, which is all FragmentKind needs to
// classify it as Continue or End.
func DecodeSysExContinuation(in []byte) *Message {
	return &Message{
		Bytes: [4]byte{statusSysEx, 0, 1, 1},
		Data:  append([]byte(nil), in...),
	}
}

func (d sysexDescriptor) GetInt(msg *Message, prop Property) (int, error) {
	switch prop {
	case PropertyStatus:
		return int(statusSysEx), nil
	case PropertyManufacturerID:
		return int(msg.Bytes[1]), nil
	case PropertySysExFragment:
		return int(msg.Bytes[2]), nil
	case PropertySysExSize:
		return len(msg.Data), nil
	default:
		return 0, ErrInvalidProperty
	}
}

func (d sysexDescriptor) SetInt(msg *Message, prop Property, value int) error {
	switch prop {
	case PropertyManufacturerID:
		if err := checkDataByte(value); err != nil {
			return err
		}
		msg.Bytes[1] = byte(value)
		return nil
	case PropertySysExFragment:
		if value < 0 || value > 0xFF {
			return ErrInvalidValue
		}
		msg.Bytes[2] = byte(value)
		return nil
	default:
		return ErrInvalidProperty
	}
}

func (d sysexDescriptor) GetBytes(msg *Message, prop Property) ([]byte, error) {
	if prop != PropertySysExData {
		return nil, ErrInvalidProperty
	}
	return msg.Data, nil
}

func (d sysexDescriptor) SetBytes(msg *Message, prop Property, value []byte) error {
	if prop != PropertySysExData {
		return ErrInvalidProperty
	}
	msg.Data = append([]byte(nil), value...)
	return nil
}

// NewSysEx constructs a SysEx message fragment. fragment is the
// caller-assigned fragment index (0 for the first or only fragment of a
// message). For fragment 0, payload's leading byte is the manufacturer
// id — the conventional first data byte of a SysEx message — and is
// split out into Bytes[1], matching spec.md's data model where
// manufacturer id and payload are distinct fields; the rest of payload
// becomes Data. For any other fragment, payload carries no manufacturer
// id (continuation fragments are pure data) and becomes Data verbatim.
func NewSysEx(fragment int, payload []byte) (*Message, error) {
	if fragment < 0 || fragment > 0xFF {
		return nil, ErrInvalidValue
	}
	if fragment == 0 {
		var manufacturer byte
		var data []byte
		if len(payload) > 0 {
			manufacturer = payload[0]
			data = append([]byte(nil), payload[1:]...)
		}
		return &Message{
			Bytes: [4]byte{statusSysEx, manufacturer, 0, 1},
			Data:  data,
		}, nil
	}
	return &Message{
		Bytes: [4]byte{statusSysEx, 0, byte(fragment), 1},
		Data:  append([]byte(nil), payload...),
	}, nil
}

// SysExFragmentKind classifies a SysEx Message within a multi-fragment
// exclusive message. It is never carried on the wire; it is derived
// purely from a fragment's own index and trailing byte, per the
// start/continue/end sentinel reification spec.md calls for in place of
// the original's underspecified two-fragment handling.
type SysExFragmentKind int

const (
	// SysExSingle is a complete exclusive message in one fragment: first
	// in sequence (fragment index 0) and its Data ends with EOX.
	SysExSingle SysExFragmentKind = iota
	// SysExStart opens a multi-fragment exclusive message: first in
	// sequence but its Data does not end with EOX.
	SysExStart
	// SysExContinue is an interior fragment: neither first nor EOX-terminated.
	SysExContinue
	// SysExEnd closes a multi-fragment exclusive message: not first, and
	// its Data ends with EOX.
	SysExEnd
)

func (k SysExFragmentKind) String() string {
	switch k {
	case SysExSingle:
		return "single"
	case SysExStart:
		return "start"
	case SysExContinue:
		return "continue"
	case SysExEnd:
		return "end"
	default:
		return "unknown"
	}
}

// FragmentKind classifies msg, which must be a SysEx message (status
// 0xF0). It panics-free reports SysExContinue for malformed input rather
// than erroring, since classification is advisory, not validating.
func (msg *Message) FragmentKind() SysExFragmentKind {
	first := msg.Bytes[2] == 0
	last := len(msg.Data) > 0 && msg.Data[len(msg.Data)-1] == statusEOX
	switch {
	case first && last:
		return SysExSingle
	case first && !last:
		return SysExStart
	case !first && last:
		return SysExEnd
	default:
		return SysExContinue
	}
}

// SysExReassembler accumulates SysEx fragments delivered out of a
// single exclusive message's fragment stream and yields the reassembled
// payload once an End (or Single) fragment arrives.
//
// It is not safe for concurrent use; callers run one reassembler per
// peer, serialized with everything else touching that peer's state
// (see the RTP session's per-peer receive path).
type SysExReassembler struct {
	buf     []byte
	started bool
}

// Add folds one fragment into the reassembler's buffer. It returns the
// completed payload (manufacturer id restored as its leading byte, and
// the trailing EOX byte stripped) and true once a Single or End
// fragment closes the message; otherwise it returns nil, false and more
// fragments are expected.
//
// Add returns ErrInvalidValue if fragments arrive out of start/continue
// order (e.g. a Continue before any Start, or a second Start before an
// End).
func (r *SysExReassembler) Add(msg *Message) ([]byte, bool, error) {
	kind := msg.FragmentKind()
	switch kind {
	case SysExSingle:
		if r.started {
			return nil, false, ErrInvalidValue
		}
		out := append([]byte{msg.Bytes[1]}, msg.Data...)
		return trimEOX(out), true, nil
	case SysExStart:
		if r.started {
			return nil, false, ErrInvalidValue
		}
		r.buf = append([]byte{msg.Bytes[1]}, msg.Data...)
		r.started = true
		return nil, false, nil
	case SysExContinue:
		if !r.started {
			return nil, false, ErrInvalidValue
		}
		r.buf = append(r.buf, msg.Data...)
		return nil, false, nil
	case SysExEnd:
		if !r.started {
			return nil, false, ErrInvalidValue
		}
		r.buf = append(r.buf, msg.Data...)
		r.started = false
		out := trimEOX(r.buf)
		r.buf = nil
		return out, true, nil
	default:
		return nil, false, ErrInvalidValue
	}
}

// Reset discards any partially-assembled message, for use after a
// connection reset or journal truncation invalidates in-flight state.
func (r *SysExReassembler) Reset() {
	r.buf = nil
	r.started = false
}

func trimEOX(data []byte) []byte {
	if len(data) > 0 && data[len(data)-1] == statusEOX {
		return data[:len(data)-1]
	}
	return data
}
