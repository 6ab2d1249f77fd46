// Package handle provides the kind-tagged, reference-counted resource
// discipline shared by every managed value in the library.
//
// Each managed value embeds a State, which carries the value's kind tag and
// its reference count. A value is allocated with one reference; AddRef and
// Release adjust the count, and when it reaches zero the destructor
// registered at allocation runs exactly once and the kind tag is cleared.
// Every operation checks the kind tag first, so a released or wrong-kind
// handle is reported as an invalid-handle error instead of corrupting
// unrelated state.
//
// # Lifecycle
//
//	reg := handle.NewRegistry(logger)
//
//	// Allocate: refcount 1, kind tagged
//	err := reg.Allocate(conn, handle.KindConn, conn.free)
//
//	// Share: kind-checked increment
//	err = reg.AddRef(conn, handle.KindConn, "Conn.AddRef")
//
//	// Release: destructor runs when the count reaches zero
//	err = reg.Release(conn, handle.KindConn, "Conn.Release")
//
// # Concurrency
//
// Increments and decrements on a single handle are atomic. Operations on
// the value a handle guards still require external serialization; the
// registry only guarantees that the count never goes negative and that the
// destructor runs once.
package handle
