package midi

// Channel-voice status nibbles. The low nibble of each carries the
// channel number (0-15); descriptors mask it off with statusNibbleMask
// when detecting and read or rebuild it with channelMask.
const (
	statusNoteOff         byte = 0x80
	statusNoteOn          byte = 0x90
	statusPolyPressure    byte = 0xA0
	statusControlChange   byte = 0xB0
	statusProgramChange   byte = 0xC0
	statusChannelPressure byte = 0xD0
	statusPitchWheel      byte = 0xE0

	statusNibbleMask byte = 0xF0
	channelMask      byte = 0x0F
)

// noteDescriptor covers both Note On and Note Off; the distinction lives
// entirely in the status nibble, which Bytes[0] already carries.
type noteDescriptor struct{}

func (noteDescriptor) Detect(buf []byte) bool {
	if len(buf) == 0 {
		return false
	}
	s := buf[0] & statusNibbleMask
	return s == statusNoteOn || s == statusNoteOff
}

func (noteDescriptor) Size(*Message) int { return 3 }

func (d noteDescriptor) Encode(msg *Message, out []byte) (int, error) {
	return encodeFixed(msg, out, 3)
}

func (d noteDescriptor) Decode(in []byte) (*Message, error) {
	return decodeFixed(in, 3)
}

func (d noteDescriptor) GetInt(msg *Message, prop Property) (int, error) {
	switch prop {
	case PropertyStatus:
		return int(msg.Bytes[0] & statusNibbleMask), nil
	case PropertyChannel:
		return int(msg.Bytes[0] & channelMask), nil
	case PropertyKey:
		return int(msg.Bytes[1]), nil
	case PropertyVelocity:
		return int(msg.Bytes[2]), nil
	default:
		return 0, ErrInvalidProperty
	}
}

func (d noteDescriptor) SetInt(msg *Message, prop Property, value int) error {
	switch prop {
	case PropertyStatus:
		if value != int(statusNoteOn) && value != int(statusNoteOff) {
			return ErrInvalidValue
		}
		msg.Bytes[0] = byte(value) | (msg.Bytes[0] & channelMask)
		return nil
	case PropertyChannel:
		if err := checkChannel(value); err != nil {
			return err
		}
		msg.Bytes[0] = (msg.Bytes[0] & statusNibbleMask) | byte(value)
		return nil
	case PropertyKey:
		if err := checkDataByte(value); err != nil {
			return err
		}
		msg.Bytes[1] = byte(value)
		return nil
	case PropertyVelocity:
		if err := checkDataByte(value); err != nil {
			return err
		}
		msg.Bytes[2] = byte(value)
		return nil
	default:
		return ErrInvalidProperty
	}
}

func (noteDescriptor) GetBytes(*Message, Property) ([]byte, error) {
	return nil, ErrInvalidProperty
}

func (noteDescriptor) SetBytes(*Message, Property, []byte) error {
	return ErrInvalidProperty
}

// NewNoteOn constructs a Note On message for channel, key and velocity.
func NewNoteOn(channel, key, velocity int) (*Message, error) {
	return newChannelVoice3(statusNoteOn, channel, key, velocity)
}

// NewNoteOff constructs a Note Off message for channel, key and velocity.
func NewNoteOff(channel, key, velocity int) (*Message, error) {
	return newChannelVoice3(statusNoteOff, channel, key, velocity)
}

func newChannelVoice3(status byte, channel, b1, b2 int) (*Message, error) {
	if err := checkChannel(channel); err != nil {
		return nil, err
	}
	if err := checkDataByte(b1); err != nil {
		return nil, err
	}
	if err := checkDataByte(b2); err != nil {
		return nil, err
	}
	return &Message{Bytes: [4]byte{status | byte(channel), byte(b1), byte(b2), 0}}, nil
}

// polyPressureDescriptor is per-key aftertouch.
type polyPressureDescriptor struct{}

func (polyPressureDescriptor) Detect(buf []byte) bool {
	return len(buf) != 0 && buf[0]&statusNibbleMask == statusPolyPressure
}

func (polyPressureDescriptor) Size(*Message) int { return 3 }

func (d polyPressureDescriptor) Encode(msg *Message, out []byte) (int, error) {
	return encodeFixed(msg, out, 3)
}

func (d polyPressureDescriptor) Decode(in []byte) (*Message, error) {
	return decodeFixed(in, 3)
}

func (d polyPressureDescriptor) GetInt(msg *Message, prop Property) (int, error) {
	switch prop {
	case PropertyStatus:
		return int(statusPolyPressure), nil
	case PropertyChannel:
		return int(msg.Bytes[0] & channelMask), nil
	case PropertyKey:
		return int(msg.Bytes[1]), nil
	case PropertyPressure:
		return int(msg.Bytes[2]), nil
	default:
		return 0, ErrInvalidProperty
	}
}

func (d polyPressureDescriptor) SetInt(msg *Message, prop Property, value int) error {
	switch prop {
	case PropertyStatus:
		return ErrInvalidProperty
	case PropertyChannel:
		if err := checkChannel(value); err != nil {
			return err
		}
		msg.Bytes[0] = statusPolyPressure | byte(value)
		return nil
	case PropertyKey:
		if err := checkDataByte(value); err != nil {
			return err
		}
		msg.Bytes[1] = byte(value)
		return nil
	case PropertyPressure:
		if err := checkDataByte(value); err != nil {
			return err
		}
		msg.Bytes[2] = byte(value)
		return nil
	default:
		return ErrInvalidProperty
	}
}

func (polyPressureDescriptor) GetBytes(*Message, Property) ([]byte, error) {
	return nil, ErrInvalidProperty
}

func (polyPressureDescriptor) SetBytes(*Message, Property, []byte) error {
	return ErrInvalidProperty
}

// NewPolyPressure constructs a polyphonic key pressure message.
func NewPolyPressure(channel, key, pressure int) (*Message, error) {
	return newChannelVoice3(statusPolyPressure, channel, key, pressure)
}

// controlChangeDescriptor carries a controller number and value.
type controlChangeDescriptor struct{}

func (controlChangeDescriptor) Detect(buf []byte) bool {
	return len(buf) != 0 && buf[0]&statusNibbleMask == statusControlChange
}

func (controlChangeDescriptor) Size(*Message) int { return 3 }

func (d controlChangeDescriptor) Encode(msg *Message, out []byte) (int, error) {
	return encodeFixed(msg, out, 3)
}

func (d controlChangeDescriptor) Decode(in []byte) (*Message, error) {
	return decodeFixed(in, 3)
}

func (d controlChangeDescriptor) GetInt(msg *Message, prop Property) (int, error) {
	switch prop {
	case PropertyStatus:
		return int(statusControlChange), nil
	case PropertyChannel:
		return int(msg.Bytes[0] & channelMask), nil
	case PropertyControl:
		return int(msg.Bytes[1]), nil
	case PropertyValue:
		return int(msg.Bytes[2]), nil
	default:
		return 0, ErrInvalidProperty
	}
}

func (d controlChangeDescriptor) SetInt(msg *Message, prop Property, value int) error {
	switch prop {
	case PropertyChannel:
		if err := checkChannel(value); err != nil {
			return err
		}
		msg.Bytes[0] = statusControlChange | byte(value)
		return nil
	case PropertyControl:
		if err := checkDataByte(value); err != nil {
			return err
		}
		msg.Bytes[1] = byte(value)
		return nil
	case PropertyValue:
		if err := checkDataByte(value); err != nil {
			return err
		}
		msg.Bytes[2] = byte(value)
		return nil
	default:
		return ErrInvalidProperty
	}
}

func (controlChangeDescriptor) GetBytes(*Message, Property) ([]byte, error) {
	return nil, ErrInvalidProperty
}

func (controlChangeDescriptor) SetBytes(*Message, Property, []byte) error {
	return ErrInvalidProperty
}

// NewControlChange constructs a Control Change message.
func NewControlChange(channel, control, value int) (*Message, error) {
	return newChannelVoice3(statusControlChange, channel, control, value)
}

// programChangeDescriptor selects a channel's active program. It is the
// only two-byte channel-voice variant.
type programChangeDescriptor struct{}

func (programChangeDescriptor) Detect(buf []byte) bool {
	return len(buf) != 0 && buf[0]&statusNibbleMask == statusProgramChange
}

func (programChangeDescriptor) Size(*Message) int { return 2 }

func (d programChangeDescriptor) Encode(msg *Message, out []byte) (int, error) {
	return encodeFixed(msg, out, 2)
}

func (d programChangeDescriptor) Decode(in []byte) (*Message, error) {
	return decodeFixed(in, 2)
}

func (d programChangeDescriptor) GetInt(msg *Message, prop Property) (int, error) {
	switch prop {
	case PropertyStatus:
		return int(statusProgramChange), nil
	case PropertyChannel:
		return int(msg.Bytes[0] & channelMask), nil
	case PropertyProgram:
		return int(msg.Bytes[1]), nil
	default:
		return 0, ErrInvalidProperty
	}
}

func (d programChangeDescriptor) SetInt(msg *Message, prop Property, value int) error {
	switch prop {
	case PropertyChannel:
		if err := checkChannel(value); err != nil {
			return err
		}
		msg.Bytes[0] = statusProgramChange | byte(value)
		return nil
	case PropertyProgram:
		if err := checkDataByte(value); err != nil {
			return err
		}
		msg.Bytes[1] = byte(value)
		return nil
	default:
		return ErrInvalidProperty
	}
}

func (programChangeDescriptor) GetBytes(*Message, Property) ([]byte, error) {
	return nil, ErrInvalidProperty
}

func (programChangeDescriptor) SetBytes(*Message, Property, []byte) error {
	return ErrInvalidProperty
}

// NewProgramChange constructs a Program Change message.
func NewProgramChange(channel, program int) (*Message, error) {
	if err := checkChannel(channel); err != nil {
		return nil, err
	}
	if err := checkDataByte(program); err != nil {
		return nil, err
	}
	return &Message{Bytes: [4]byte{statusProgramChange | byte(channel), byte(program), 0, 0}}, nil
}

// channelPressureDescriptor is whole-channel (not per-key) aftertouch.
type channelPressureDescriptor struct{}

func (channelPressureDescriptor) Detect(buf []byte) bool {
	return len(buf) != 0 && buf[0]&statusNibbleMask == statusChannelPressure
}

func (channelPressureDescriptor) Size(*Message) int { return 2 }

func (d channelPressureDescriptor) Encode(msg *Message, out []byte) (int, error) {
	return encodeFixed(msg, out, 2)
}

func (d channelPressureDescriptor) Decode(in []byte) (*Message, error) {
	return decodeFixed(in, 2)
}

func (d channelPressureDescriptor) GetInt(msg *Message, prop Property) (int, error) {
	switch prop {
	case PropertyStatus:
		return int(statusChannelPressure), nil
	case PropertyChannel:
		return int(msg.Bytes[0] & channelMask), nil
	case PropertyPressure:
		return int(msg.Bytes[1]), nil
	default:
		return 0, ErrInvalidProperty
	}
}

func (d channelPressureDescriptor) SetInt(msg *Message, prop Property, value int) error {
	switch prop {
	case PropertyChannel:
		if err := checkChannel(value); err != nil {
			return err
		}
		msg.Bytes[0] = statusChannelPressure | byte(value)
		return nil
	case PropertyPressure:
		if err := checkDataByte(value); err != nil {
			return err
		}
		msg.Bytes[1] = byte(value)
		return nil
	default:
		return ErrInvalidProperty
	}
}

func (channelPressureDescriptor) GetBytes(*Message, Property) ([]byte, error) {
	return nil, ErrInvalidProperty
}

func (channelPressureDescriptor) SetBytes(*Message, Property, []byte) error {
	return ErrInvalidProperty
}

// NewChannelPressure constructs a Channel Pressure message.
func NewChannelPressure(channel, pressure int) (*Message, error) {
	if err := checkChannel(channel); err != nil {
		return nil, err
	}
	if err := checkDataByte(pressure); err != nil {
		return nil, err
	}
	return &Message{Bytes: [4]byte{statusChannelPressure | byte(channel), byte(pressure), 0, 0}}, nil
}

// pitchWheelDescriptor carries a 14-bit value split across two data
// bytes, LSB first on the wire as required by the MIDI spec.
type pitchWheelDescriptor struct{}

func (pitchWheelDescriptor) Detect(buf []byte) bool {
	return len(buf) != 0 && buf[0]&statusNibbleMask == statusPitchWheel
}

func (pitchWheelDescriptor) Size(*Message) int { return 3 }

func (d pitchWheelDescriptor) Encode(msg *Message, out []byte) (int, error) {
	return encodeFixed(msg, out, 3)
}

func (d pitchWheelDescriptor) Decode(in []byte) (*Message, error) {
	return decodeFixed(in, 3)
}

func (d pitchWheelDescriptor) GetInt(msg *Message, prop Property) (int, error) {
	switch prop {
	case PropertyStatus:
		return int(statusPitchWheel), nil
	case PropertyChannel:
		return int(msg.Bytes[0] & channelMask), nil
	case PropertyValueLSB:
		return int(msg.Bytes[1]), nil
	case PropertyValueMSB:
		return int(msg.Bytes[2]), nil
	case PropertyValue:
		return int(msg.Bytes[1]) | int(msg.Bytes[2])<<7, nil
	default:
		return 0, ErrInvalidProperty
	}
}

func (d pitchWheelDescriptor) SetInt(msg *Message, prop Property, value int) error {
	switch prop {
	case PropertyChannel:
		if err := checkChannel(value); err != nil {
			return err
		}
		msg.Bytes[0] = statusPitchWheel | byte(value)
		return nil
	case PropertyValueLSB:
		if err := checkDataByte(value); err != nil {
			return err
		}
		msg.Bytes[1] = byte(value)
		return nil
	case PropertyValueMSB:
		if err := checkDataByte(value); err != nil {
			return err
		}
		msg.Bytes[2] = byte(value)
		return nil
	case PropertyValue:
		if value < 0 || value > 0x3FFF {
			return ErrInvalidValue
		}
		msg.Bytes[1] = byte(value & 0x7F)
		msg.Bytes[2] = byte((value >> 7) & 0x7F)
		return nil
	default:
		return ErrInvalidProperty
	}
}

func (pitchWheelDescriptor) GetBytes(*Message, Property) ([]byte, error) {
	return nil, ErrInvalidProperty
}

func (pitchWheelDescriptor) SetBytes(*Message, Property, []byte) error {
	return ErrInvalidProperty
}

// NewPitchWheel constructs a Pitch Wheel message from a 14-bit value.
func NewPitchWheel(channel, value int) (*Message, error) {
	if err := checkChannel(channel); err != nil {
		return nil, err
	}
	if value < 0 || value > 0x3FFF {
		return nil, ErrInvalidValue
	}
	return &Message{Bytes: [4]byte{
		statusPitchWheel | byte(channel),
		byte(value & 0x7F),
		byte((value >> 7) & 0x7F),
		0,
	}}, nil
}
