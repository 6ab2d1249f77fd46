// Package otypes implements the object-type metadata layer of a database
// driver: it describes, caches, and exposes structured (user-defined) type
// information retrieved from a database server and manages the lifecycle
// of instances of those types.
//
// # Architecture Overview
//
// The library is organized into a small set of packages:
//
//	otypes/              Root package: Environment, Conn, ObjectType,
//	                     ObjectAttr, Object and their snapshot structs
//	├── handle/          Kind-tagged, reference-counted resource registry
//	├── native/          Abstract boundary to the call-level client library
//	│   └── nativetest/  In-memory fake client for tests and examples
//	└── errors/          Structured errors with stable codes
//
// # Resource Graph
//
// Every managed value is a reference-counted handle with a kind tag.
// Counted edges keep the teardown order safe:
//
//	Object ──► ObjectType ──► Conn
//	              │
//	              └─► element ObjectType (collections)
//
// A descriptor keeps its connection alive, an object keeps its descriptor
// alive, and a collection descriptor keeps its element descriptor alive.
// Releasing a handle below zero is impossible: a released handle fails
// every subsequent operation with an invalid-handle error.
//
// # Quick Start
//
//	env, err := otypes.NewEnvironment(client)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	conn, err := env.NewConn(nativeConn)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer conn.Close()
//
//	typ, err := conn.LookupType(ctx, "SCHEMA", "PERSON_T")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer typ.Release()
//
//	obj, err := typ.CreateObject(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer obj.Release()
//
// # Concurrency
//
// Operations are synchronous, blocking round trips; the layer introduces
// no internal concurrency. Reference counting is atomic per handle, and
// the per-connection type cache collapses concurrent lookups of the same
// type into one describe. Beyond that, concurrent operations on the same
// handle require external synchronization.
package otypes
