package search

// Gate lets an outcome through to the presenter only when it answers the
// current request and was issued after the last fence.
type Gate struct {
	seq       *Sequencer
	guard     *Guard
	presenter Presenter
}

// NewGate creates a gate reading CurrentID from seq and the fence epoch from guard
func NewGate(seq *Sequencer, guard *Guard, presenter Presenter) *Gate {
	return &Gate{
		seq:       seq,
		guard:     guard,
		presenter: presenter,
	}
}

// Accept forwards o to the presenter and returns true if o is current.
// Stale outcomes are dropped without side effects.
func (g *Gate) Accept(o Outcome) bool {
	if !g.IsCurrent(o) {
		return false
	}
	g.presenter.Present(o)
	return true
}

// IsCurrent reports whether o would pass the gate
func (g *Gate) IsCurrent(o Outcome) bool {
	return o.ID == g.seq.Current() && o.epoch == g.guard.Epoch()
}
