package otypes

import (
	"context"

	"go.uber.org/zap"

	"github.com/meridb/otypes/errors"
	"github.com/meridb/otypes/handle"
	"github.com/meridb/otypes/native"
)

// Object is one runtime value of an ObjectType. It holds a counted
// reference to its descriptor for its entire lifetime; many objects share
// one descriptor. The native data representation and null-indicator
// structure are owned by the client library and reclaimed by environment
// teardown.
type Object struct {
	handle.State
	env       *Environment
	objType   *ObjectType
	data      native.InstanceData
	indicator native.NullIndicator
}

// CreateObject materializes a new runtime value of this type. Either both
// external steps (instance data, null indicator) succeed and the object is
// returned holding a live reference to the descriptor, or the half-built
// object is torn down before the error surfaces.
func (t *ObjectType) CreateObject(ctx context.Context) (*Object, error) {
	const op = "ObjectType.CreateObject"
	if err := t.env.reg.Begin(t, handle.KindObjectType, op); err != nil {
		return nil, err
	}

	o := &Object{env: t.env}
	if err := t.env.reg.Allocate(o, handle.KindObject, o.free); err != nil {
		return nil, err
	}
	if err := t.env.reg.AddRef(t, handle.KindObjectType, op); err != nil {
		_ = t.env.reg.Release(o, handle.KindObject, op)
		return nil, err
	}
	o.objType = t

	data, err := t.env.client.NewInstance(ctx, t.conn.nc, t.tdo)
	if err != nil {
		_ = t.env.reg.Release(o, handle.KindObject, op)
		return nil, errors.External(op, "create instance data", err)
	}
	o.data = data

	ind, err := t.env.client.InstanceIndicator(ctx, t.conn.nc, data)
	if err != nil {
		_ = t.env.reg.Release(o, handle.KindObject, op)
		return nil, errors.External(op, "get null indicator", err)
	}
	o.indicator = ind

	return o, nil
}

func (o *Object) free() {
	if o.objType != nil {
		if err := o.env.reg.Release(o.objType, handle.KindObjectType, "Object.free"); err != nil {
			o.env.log.Warn("release object type reference", zap.Error(err))
		}
		o.objType = nil
	}
}

// AddRef adds a reference to the object.
func (o *Object) AddRef() error {
	return o.env.reg.AddRef(o, handle.KindObject, "Object.AddRef")
}

// Release releases a reference to the object.
func (o *Object) Release() error {
	return o.env.reg.Release(o, handle.KindObject, "Object.Release")
}
