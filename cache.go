package otypes

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/meridb/otypes/errors"
	"github.com/meridb/otypes/handle"
	"github.com/meridb/otypes/native"
)

// typeCache holds the connection's descriptors keyed by qualified name.
// The cache owns one reference per entry. Conn.Close drains it and marks
// it closed; a closed connection accepts no further lookups, so nothing
// can be cached after the drain and pin the connection forever.
type typeCache struct {
	mu     sync.Mutex
	group  singleflight.Group
	closed bool
	m      map[string]*ObjectType
}

func (c *typeCache) init() {
	c.m = make(map[string]*ObjectType)
}

func (c *typeCache) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *typeCache) get(key string) *ObjectType {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.m[key]
}

// put stores the entry, adopting its construction reference. It reports
// false once the cache is closed; the entry was not stored and the caller
// still owns the reference.
func (c *typeCache) put(key string, ot *ObjectType) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	c.m[key] = ot
	return true
}

func (c *typeCache) drain() []*ObjectType {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	out := make([]*ObjectType, 0, len(c.m))
	for _, ot := range c.m {
		out = append(out, ot)
	}
	c.m = make(map[string]*ObjectType)
	return out
}

// LookupType resolves schema.name into a managed descriptor through the
// connection's cache. Concurrent misses for the same qualified name share
// a single lookup and describe round trip; every caller receives its own
// counted reference and must Release it. A closed connection rejects
// lookups even while outstanding descriptors keep its handle alive.
func (c *Conn) LookupType(ctx context.Context, schema, name string) (*ObjectType, error) {
	const op = "Conn.LookupType"
	if err := c.env.reg.Begin(c, handle.KindConn, op); err != nil {
		return nil, err
	}
	if c.types.isClosed() {
		return nil, errors.InvalidHandle(op, "open connection")
	}
	key := schema + "." + name

	if ot := c.types.get(key); ot != nil {
		if err := c.env.reg.AddRef(ot, handle.KindObjectType, op); err == nil {
			return ot, nil
		}
		// The entry died under us (connection closing); describe afresh.
	}

	v, err, _ := c.types.group.Do(key, func() (any, error) {
		if ot := c.types.get(key); ot != nil {
			return ot, nil
		}
		param, err := c.env.client.LookupType(ctx, c.nc, schema, name)
		if err != nil {
			return nil, errors.External(op, "look up type", err)
		}
		ot, err := describeType(ctx, c, param, native.AttrTypeName, op, 0)
		if err != nil {
			return nil, err
		}
		// The cache owns the construction reference. If the connection
		// closed while we were describing, the cache refuses the entry and
		// the lookup fails like any other post-close lookup.
		if !c.types.put(key, ot) {
			_ = c.env.reg.Release(ot, handle.KindObjectType, op)
			return nil, errors.InvalidHandle(op, "open connection")
		}
		return ot, nil
	})
	if err != nil {
		return nil, err
	}

	ot := v.(*ObjectType)
	if err := c.env.reg.AddRef(ot, handle.KindObjectType, op); err != nil {
		return nil, err
	}
	return ot, nil
}
