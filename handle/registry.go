package handle

import (
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/meridb/otypes/errors"
)

// Registry allocates and tracks every managed resource derived from one
// environment. It keeps a live count so the environment can refuse to shut
// down while handles are still open.
type Registry struct {
	log    *zap.Logger
	live   atomic.Int64
	closed atomic.Bool
}

// NewRegistry creates a registry. A nil logger is replaced with a nop one.
func NewRegistry(log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{log: log}
}

// Allocate initializes the resource's embedded State: kind tagged, one
// reference, destructor recorded. Fails with an allocation error once the
// registry has been closed.
func (r *Registry) Allocate(res Resource, kind Kind, destroy func()) error {
	if r.closed.Load() {
		return errors.AllocationFailed("Allocate", kind.String())
	}

	s := res.state()
	s.destroy = destroy
	s.refs.Store(1)
	s.kind.Store(uint32(kind))
	live := r.live.Add(1)

	r.log.Debug("handle allocated",
		zap.Stringer("kind", kind),
		zap.Int64("live", live))
	return nil
}

// AddRef increments the reference count after validating the kind tag.
func (r *Registry) AddRef(res Resource, kind Kind, op string) error {
	s := res.state()
	if Kind(s.kind.Load()) != kind {
		return errors.InvalidHandle(op, kind.String())
	}
	s.refs.Add(1)
	return nil
}

// Release decrements the reference count after validating the kind tag,
// running the destructor when the count reaches zero.
func (r *Registry) Release(res Resource, kind Kind, op string) error {
	s := res.state()
	if Kind(s.kind.Load()) != kind {
		return errors.InvalidHandle(op, kind.String())
	}
	r.AdjustRef(res, -1)
	return nil
}

// AdjustRef applies a signed delta to the reference count without a kind
// check. It is used when a resource adopts or hands off a reference it
// received from elsewhere; public entry points go through AddRef/Release.
// A negative resulting count is an invariant violation, not a recoverable
// error.
func (r *Registry) AdjustRef(res Resource, delta int64) {
	s := res.state()
	refs := s.refs.Add(delta)
	switch {
	case refs < 0:
		panic(fmt.Sprintf("handle: reference count went negative (%d)", refs))
	case refs == 0:
		// Only one caller can observe the count at zero. Clearing the tag
		// first makes every subsequent kind check on the handle fail.
		s.kind.Store(uint32(KindInvalid))
		if s.destroy != nil {
			s.destroy()
		}
		live := r.live.Add(-1)
		r.log.Debug("handle freed", zap.Int64("live", live))
	}
}

// Begin is the mandatory entry check for every public operation: it
// validates the handle's kind and liveness and tags the call with op so
// every error produced by the operation names it. The failure must be
// propagated verbatim.
func (r *Registry) Begin(res Resource, kind Kind, op string) error {
	s := res.state()
	if Kind(s.kind.Load()) != kind {
		return errors.InvalidHandle(op, kind.String())
	}
	return nil
}

// Live returns the number of handles allocated and not yet freed.
func (r *Registry) Live() int64 {
	return r.live.Load()
}

// Close stops the registry from allocating. It does not free outstanding
// handles; the environment refuses to close while any remain.
func (r *Registry) Close() {
	r.closed.Store(true)
}
