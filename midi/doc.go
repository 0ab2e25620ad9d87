// Package midi implements the wire codec for MIDI channel-voice,
// system-common, real-time and System Exclusive messages.
//
// The package is organized around a small, fixed registry of Descriptor
// values — one per message variant — each of which knows how to detect,
// size, encode, decode, and access the typed properties of messages of
// its own kind. Detect walks the registry in order and returns the
// first match; callers that already know a status byte can skip the
// walk with ForStatus.
//
// The codec holds no mutable state and every exported function is safe
// for concurrent use.
package midi
