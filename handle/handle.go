package handle

import "sync/atomic"

// Kind tags every registry-managed resource. The zero value is reserved for
// released handles.
type Kind uint32

const (
	KindInvalid Kind = iota
	KindConn
	KindObjectType
	KindObjectAttr
	KindObject
)

var kindNames = [...]string{
	KindInvalid:    "invalid",
	KindConn:       "connection",
	KindObjectType: "object type",
	KindObjectAttr: "object attribute",
	KindObject:     "object",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Resource is implemented by every registry-managed value. Values satisfy
// it by embedding State.
type Resource interface {
	state() *State
}

// State is the embedded base of every managed resource: the kind tag and
// the reference count. The tag doubles as the liveness marker; it is
// cleared to KindInvalid when the count reaches zero.
type State struct {
	kind    atomic.Uint32
	refs    atomic.Int64
	destroy func()
}

func (s *State) state() *State { return s }

// Kind returns the current kind tag, or KindInvalid once released.
func (s *State) Kind() Kind {
	return Kind(s.kind.Load())
}

// RefCount returns the current reference count. Diagnostic only; the value
// may be stale by the time the caller observes it.
func (s *State) RefCount() int64 {
	return s.refs.Load()
}
