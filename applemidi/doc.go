// Package applemidi implements the AppleMIDI session protocol: peer
// invitation, three-round clock synchronization, and teardown, layered
// on top of package rtp for the actual MIDI payload delivery.
//
// An Engine owns one control endpoint and one data Session (RTP-MIDI's
// port-pair convention: control on port P, data on P+1) and is driven
// by a host calling TickReceive, TickSend and TickIdle in a loop — the
// same non-blocking, caller-driven shape opd-ai-toxcore's Tox.Iterate
// gives its own protocol state machine, generalized here to the
// session engine's three separate concerns instead of one combined
// call.
package applemidi
