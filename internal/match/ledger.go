package match

// Ledger tracks proposal reservations for one batch. A proposal accepted for
// one transaction leaves the pool for every later transaction in the batch.
// The reserve-then-commit protocol assumes a single writer: enrichment is
// strictly sequential within a batch.
type Ledger struct {
	reserved  map[int]bool
	committed map[int]bool
}

// NewLedger creates an empty reservation ledger.
func NewLedger() *Ledger {
	return &Ledger{
		reserved:  make(map[int]bool),
		committed: make(map[int]bool),
	}
}

// Available reports whether a proposal is neither reserved nor committed.
func (l *Ledger) Available(id int) bool {
	return !l.reserved[id] && !l.committed[id]
}

// Reserve claims a proposal for the in-flight enrichment. Returns false if
// the proposal is already held.
func (l *Ledger) Reserve(id int) bool {
	if !l.Available(id) {
		return false
	}
	l.reserved[id] = true
	return true
}

// Commit finalizes a reservation for the rest of the batch.
func (l *Ledger) Commit(id int) {
	delete(l.reserved, id)
	l.committed[id] = true
}

// Release returns a reserved proposal to the pool without committing it.
func (l *Ledger) Release(id int) {
	delete(l.reserved, id)
}

// Used reports whether a proposal has been committed this batch.
func (l *Ledger) Used(id int) bool {
	return l.committed[id]
}
