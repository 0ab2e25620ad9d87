package rtp

import "github.com/mgsx-dev/midikit/midi"

// JournalCapacity is the minimum number of entries a Journal retains
// before it must start evicting the oldest ones to make room for new
// appends.
const JournalCapacity = 128

// journalEntry is one previously-sent command list, kept so it can be
// replayed if a peer's feedback (RS) reports it never arrived.
type journalEntry struct {
	seq      uint16
	messages []*midi.Message
}

// Journal is a per-peer append-only ring buffer of recently sent
// command lists. Send appends to it; receiving an RS feedback command
// truncates everything at-or-before the acknowledged sequence number,
// since the peer has confirmed receipt up to that point.
//
// Journal holds no lock of its own; it is only ever touched from the
// single goroutine driving a Session's tick loop.
type Journal struct {
	entries []journalEntry
}

// Append records one sent command list under seq, evicting the oldest
// entry first if the journal is already at JournalCapacity.
func (j *Journal) Append(seq uint16, messages []*midi.Message) {
	if len(j.entries) >= JournalCapacity {
		j.entries = j.entries[1:]
	}
	j.entries = append(j.entries, journalEntry{seq: seq, messages: messages})
}

// Truncate discards every entry at or before seq, per the circular
// ordering of 16-bit RTP sequence numbers (see seqLE). It scans from
// the oldest entry and stops at the first one after seq.
func (j *Journal) Truncate(seq uint16) {
	i := 0
	for i < len(j.entries) && seqLE(j.entries[i].seq, seq) {
		i++
	}
	j.entries = j.entries[i:]
}

// Replay returns the command lists for every entry still held after
// seq (exclusive), oldest first, for retransmission to a peer that
// fell behind. It returns ErrJournalEmpty if the journal holds nothing
// at all.
func (j *Journal) Replay(after uint16) ([][]*midi.Message, error) {
	if len(j.entries) == 0 {
		return nil, ErrJournalEmpty
	}
	var out [][]*midi.Message
	for _, e := range j.entries {
		if seqLE(e.seq, after) {
			continue
		}
		out = append(out, e.messages)
	}
	return out, nil
}

// Len reports how many entries the journal currently holds.
func (j *Journal) Len() int {
	return len(j.entries)
}

// seqLE reports whether a precedes or equals b in 16-bit sequence
// space, treating the numbering as circular the same way the session's
// extendedSequence tracker does.
func seqLE(a, b uint16) bool {
	return int16(a-b) <= 0
}
