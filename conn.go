package otypes

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/meridb/otypes/handle"
	"github.com/meridb/otypes/native"
)

// Conn binds an established native connection to the environment and makes
// it a managed, reference-counted resource. Every ObjectType described
// over the connection holds a counted reference to it, so the connection
// cannot be torn down while derived descriptors are alive.
type Conn struct {
	handle.State
	env   *Environment
	nc    native.Conn
	types typeCache
}

// NewConn adopts an established native connection. The returned Conn
// starts with one reference; Close releases it.
func (e *Environment) NewConn(nc native.Conn) (*Conn, error) {
	if nc == nil {
		return nil, fmt.Errorf("otypes: nil native connection")
	}
	c := &Conn{env: e, nc: nc}
	c.types.init()
	if err := e.reg.Allocate(c, handle.KindConn, c.free); err != nil {
		return nil, err
	}
	return c, nil
}

// AddRef adds a reference to the connection.
func (c *Conn) AddRef() error {
	return c.env.reg.AddRef(c, handle.KindConn, "Conn.AddRef")
}

// Release releases a reference to the connection.
func (c *Conn) Release() error {
	return c.env.reg.Release(c, handle.KindConn, "Conn.Release")
}

// Close drops the connection's cached type descriptors and releases the
// caller's reference. The connection itself is freed once the last
// descriptor derived from it lets go.
func (c *Conn) Close() error {
	const op = "Conn.Close"
	if err := c.env.reg.Begin(c, handle.KindConn, op); err != nil {
		return err
	}
	var err error
	for _, ot := range c.types.drain() {
		err = multierr.Append(err, c.env.reg.Release(ot, handle.KindObjectType, op))
	}
	return multierr.Append(err, c.env.reg.Release(c, handle.KindConn, op))
}

func (c *Conn) free() {
	c.env.log.Debug("connection freed")
}
