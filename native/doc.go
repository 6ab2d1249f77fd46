// Package native declares the boundary to the call-level client library
// that actually talks to the database server.
//
// Everything behind the Client interface is an external collaborator: the
// wire protocol, connection establishment, and the server-side caches are
// out of scope for this module. The interfaces here only pin down the
// contract the object-type layer depends on: describing a pinned type
// definition into a transient describe context, reading attributes off
// descriptor parameters, pinning definition references, and instantiating
// runtime values with their null-indicator structures.
//
// Every describe context obtained from AllocateDescribeContext must be
// returned with exactly one FreeDescribeContext call, on every code path.
package native
