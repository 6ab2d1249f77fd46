// Package nativetest provides an in-memory native.Client backed by
// scripted type definitions.
//
// Tests register types with AddType, hand Fake to an environment, and use
// the balance counters (ContextsLive, Pins) and per-step fault injection
// (FailOn) to verify that the object-type layer neither leaks describe
// contexts nor returns half-built resources on partial failure.
package nativetest
