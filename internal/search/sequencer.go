package search

// Sequencer hands out RequestIDs in dispatch order and remembers the current one.
// Calling Next is the single act that makes every earlier request stale.
type Sequencer struct {
	current RequestID
}

// Next allocates a new id and makes it current
func (s *Sequencer) Next() RequestID {
	s.current++
	return s.current
}

// Current returns the id of the most recently dispatched query
func (s *Sequencer) Current() RequestID {
	return s.current
}
