package midi

import "errors"

// Sentinel errors returned by the codec. Callers should compare with
// errors.Is rather than matching on type.
var (
	// ErrInvalidProperty indicates a property key that the message
	// variant being addressed does not support.
	ErrInvalidProperty = errors.New("midi: property not valid for this message")

	// ErrInvalidValue indicates a property value outside the range the
	// wire format can represent (e.g. a data byte above 127).
	ErrInvalidValue = errors.New("midi: property value out of range")

	// ErrBufferTooSmall indicates Encode was given less room than
	// Size(msg) requires.
	ErrBufferTooSmall = errors.New("midi: buffer too small to encode message")

	// ErrInvalidLength indicates Decode was given input whose length
	// does not match what the detected variant expects.
	ErrInvalidLength = errors.New("midi: input length does not match message")

	// ErrUnrecognized indicates no descriptor in the registry matched
	// the leading status byte.
	ErrUnrecognized = errors.New("midi: buffer does not match any known message format")

	// ErrAllocFailure indicates a SysEx payload could not be allocated
	// during Decode.
	ErrAllocFailure = errors.New("midi: could not allocate sysex payload")
)
