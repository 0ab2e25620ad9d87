package rtp

// extendedSequence tracks a peer's inbound RTP sequence numbers and
// extends them to 32 bits across 16-bit wraparounds, rejecting packets
// that look like spurious reordering or resets.
//
// This is the RFC 1889 Appendix A.2 algorithm, grounded directly on
// other_examples/emiago-diago__rtp_sequencer.go's RTPExtendedSequenceNumber.
// A freshly constructed tracker starts on probation: it rejects packets
// until it has seen seqMinSequence consecutive in-order ones, and the
// last of those is the first it extends and accepts, exactly as the
// reference implementation's caller-side
// "probation = MIN_SEQUENTIAL; max_seq = seq - 1" priming does.
type extendedSequence struct {
	initialized bool

	maxSeq    uint16
	cycles    uint32
	badSeq    uint32
	probation int
	received  uint64
}

const (
	seqMaxMisorder = 100
	seqMaxDropout  = 3000
	seqMaxSeqNum   = 1 << 16
	seqMinSequence = 2
)

func (s *extendedSequence) initSeq(seq uint16) {
	s.maxSeq = seq
	s.cycles = 0
	s.badSeq = uint32(seqMaxSeqNum) + 1
	s.received = 0
}

// update validates and folds seq into the tracker. It returns the
// extended (32-bit) sequence number on acceptance, or an error
// (ErrSequenceBad or ErrSequenceOutOfOrder) if the packet is not yet
// usable — either still on probation or a discontinuity too large to
// trust outright.
func (s *extendedSequence) update(seq uint16) (uint32, error) {
	if !s.initialized {
		s.probation = seqMinSequence
		s.maxSeq = seq - 1
		s.initialized = true
	}

	udelta := seq - s.maxSeq

	if s.probation > 0 {
		if seq == s.maxSeq+1 {
			s.probation--
			s.maxSeq = seq
			if s.probation == 0 {
				s.initSeq(seq)
				s.received++
				return s.extended(seq), nil
			}
			return 0, ErrSequenceOutOfOrder
		}
		s.probation = seqMinSequence - 1
		s.maxSeq = seq
		return 0, ErrSequenceBad
	}

	switch {
	case udelta < seqMaxDropout:
		if seq < s.maxSeq {
			s.cycles += seqMaxSeqNum
		}
		s.maxSeq = seq
	case udelta <= seqMaxSeqNum-seqMaxMisorder:
		if uint32(seq) == s.badSeq {
			s.initSeq(seq)
		} else {
			s.badSeq = (uint32(seq) + 1) & (uint32(seqMaxSeqNum) - 1)
			return 0, ErrSequenceBad
		}
	default:
		// Duplicate or reordered within tolerance: accepted without
		// advancing maxSeq.
	}

	s.received++
	return s.extended(seq), nil
}

func (s *extendedSequence) extended(seq uint16) uint32 {
	return s.cycles + uint32(seq)
}
