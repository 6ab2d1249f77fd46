package native

import "context"

// Conn is an established connection owned by the client library. The
// object-type layer never looks inside it; it only threads it back into
// client calls.
type Conn interface {
	NativeConn()
}

// DefinitionRef is a lightweight reference to a server-side type
// definition object, as read from a descriptor parameter. It must be
// pinned before it can be described or instantiated.
type DefinitionRef interface {
	DefinitionRef()
}

// PinnedDefinition is a definition reference resolved into a live, cached
// definition object. Pins are reclaimed by the client when the owning
// environment tears down; the object-type layer never unpins explicitly.
type PinnedDefinition interface {
	PinnedDefinition()
}

// InstanceData is the opaque data representation of one runtime value.
type InstanceData interface {
	InstanceData()
}

// NullIndicator tracks which attributes of a runtime value currently hold
// a null. One exists per instance, fetched after instantiation.
type NullIndicator interface {
	NullIndicator()
}

// DescribeContext scopes a single metadata-introspection call. It is
// single-use: allocate, describe into it, read the top-level parameter,
// free.
type DescribeContext interface {
	// TopLevel returns the top-level descriptor parameter produced by the
	// describe performed into this context.
	TopLevel() (Param, error)
}

// Param is one descriptor parameter: the generic attribute-read primitive
// of the client library, with typed accessors per attribute shape.
type Param interface {
	// String reads a string-valued attribute.
	String(a Attr) (string, error)

	// Uint reads a numeric attribute (type codes, attribute counts).
	Uint(a Attr) (uint32, error)

	// Param reads a sub-parameter attribute (collection element,
	// attribute list).
	Param(a Attr) (Param, error)

	// Definition reads a definition-reference attribute.
	Definition(a Attr) (DefinitionRef, error)

	// Sub returns the pos-th entry of a list parameter. Positions are
	// 1-based, matching declaration order.
	Sub(pos uint32) (Param, error)
}

// Client is the abstract call-level interface to the database client
// library. All calls are blocking round trips; cancellation and timeout
// policy belong to the transport behind the implementation.
type Client interface {
	// AllocateDescribeContext obtains a fresh, single-use describe
	// context.
	AllocateDescribeContext(ctx context.Context) (DescribeContext, error)

	// FreeDescribeContext releases a describe context. Exactly one call
	// per allocation, on every code path.
	FreeDescribeContext(dc DescribeContext) error

	// DescribeAny performs a full metadata describe of a pinned
	// definition into the given context.
	DescribeAny(ctx context.Context, conn Conn, def PinnedDefinition, dc DescribeContext) error

	// Pin resolves a definition reference into a live definition object.
	Pin(ctx context.Context, conn Conn, ref DefinitionRef) (PinnedDefinition, error)

	// NewInstance materializes the data representation of a new runtime
	// value of the pinned type.
	NewInstance(ctx context.Context, conn Conn, def PinnedDefinition) (InstanceData, error)

	// InstanceIndicator fetches the null-indicator structure for an
	// instance created by NewInstance.
	InstanceIndicator(ctx context.Context, conn Conn, data InstanceData) (NullIndicator, error)

	// LookupType resolves a qualified type name into a descriptor
	// parameter suitable for describing.
	LookupType(ctx context.Context, conn Conn, schema, name string) (Param, error)
}
