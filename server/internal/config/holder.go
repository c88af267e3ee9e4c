package config

import "sync/atomic"

// Holder publishes the current Resolved config to concurrent readers.
// Store swaps the whole value; a Resolved obtained from Load stays valid and
// unchanged for as long as the caller holds it.
type Holder struct {
	cur atomic.Pointer[Resolved]
}

// NewHolder returns a Holder publishing r.
func NewHolder(r *Resolved) *Holder {
	h := &Holder{}
	h.cur.Store(r)
	return h
}

// Load returns the current config.
func (h *Holder) Load() *Resolved {
	return h.cur.Load()
}

// Store publishes r to subsequent Load calls.
func (h *Holder) Store(r *Resolved) {
	h.cur.Store(r)
}
