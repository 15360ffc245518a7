package wire

import "sync/atomic"

// Sequencer hands out the strictly monotonic GenericBase.sequence_id a
// connection stamps on every outbound frame, starting from 0.
type Sequencer struct {
	next atomic.Uint32
}

// Next returns the next sequence number and advances the counter.
func (s *Sequencer) Next() uint32 {
	return s.next.Add(1) - 1
}
