// Package correlation implements the process-wide one-shot rendezvous
// the gateway uses to match an outbox envelope back to the in-flight
// HTTP request that published the inbox message it answers.
//
// There is no single teacher file this is lifted from — the original
// Rust rest_api.rs never got past a stub — so the shape here follows
// the spec directly: a mutex-guarded map from correlation id to a
// one-shot channel, with a bounded critical section on every access.
package correlation

import (
	"context"
	"sync"

	"coreex/protocol"

	"github.com/google/uuid"
)

// Registry is a process-wide table of in-flight waiters, keyed by the
// correlation id of the inbox message each waiter is blocked on. It
// must be constructed once and shared, not recreated per request.
type Registry struct {
	mu      sync.Mutex
	waiters map[uuid.UUID]chan protocol.OutboxEnvelope
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{waiters: make(map[uuid.UUID]chan protocol.OutboxEnvelope)}
}

// Waiter is a handle to a single pending rendezvous. Await must be
// called at most once; Cancel may be called instead if the caller no
// longer wants the result.
type Waiter struct {
	reg chan protocol.OutboxEnvelope
	id  uuid.UUID
	r   *Registry
}

// WaitFor installs a fresh slot for id and returns a handle that can
// await its delivery. Installing a second waiter for an id that
// already has one live replaces it; only the newest waiter will ever
// observe a delivery, which the caller must avoid by construction (at
// most one waiter per id is a registry invariant, not something this
// method enforces for you).
func (r *Registry) WaitFor(id uuid.UUID) *Waiter {
	ch := make(chan protocol.OutboxEnvelope, 1)
	r.mu.Lock()
	r.waiters[id] = ch
	r.mu.Unlock()
	return &Waiter{reg: ch, id: id, r: r}
}

// Await blocks until the envelope for this waiter's id is delivered
// or the context is done. On
// context cancellation the slot is removed, so a subsequent Deliver
// for the same id finds nothing and drops the envelope silently.
func (w *Waiter) Await(ctx context.Context) (protocol.OutboxEnvelope, error) {
	select {
	case env := <-w.reg:
		return env, nil
	case <-ctx.Done():
		w.Cancel()
		return protocol.OutboxEnvelope{}, ctx.Err()
	}
}

// Cancel removes this waiter's slot without waiting for delivery. Any
// envelope that arrives afterward is dropped by Deliver.
func (w *Waiter) Cancel() {
	w.r.mu.Lock()
	delete(w.r.waiters, w.id)
	w.r.mu.Unlock()
}

// Deliver completes the waiter for id with envelope, if one is still
// registered. If the id has no waiter — because none was ever
// installed, it was already delivered once, or it was cancelled — the
// envelope is dropped silently, per the at-least-once outbox
// contract: duplicate or late deliveries are expected, not errors.
func (r *Registry) Deliver(id uuid.UUID, envelope protocol.OutboxEnvelope) {
	r.mu.Lock()
	ch, ok := r.waiters[id]
	if ok {
		delete(r.waiters, id)
	}
	r.mu.Unlock()
	if !ok {
		return
	}
	ch <- envelope
}

// Has reports whether id currently has a live waiter. The gateway's
// outbox consumer does not consult it: it acks every delivery and
// leaves correlation misses to Deliver, which drops them.
func (r *Registry) Has(id uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.waiters[id]
	return ok
}
