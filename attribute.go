package otypes

import (
	"context"

	"go.uber.org/zap"

	"github.com/meridb/otypes/errors"
	"github.com/meridb/otypes/handle"
	"github.com/meridb/otypes/native"
)

// ObjectAttr is the managed descriptor of one member attribute of an
// ObjectType. Attributes are materialized lazily by GetAttributes, one
// per declared member. When the attribute's own type is structured, the
// descriptor holds a counted reference to that type's ObjectType.
type ObjectAttr struct {
	handle.State
	env      *Environment
	name     string
	position int
	typeInfo DataTypeInfo
}

func newObjectAttr(ctx context.Context, conn *Conn, param native.Param, pos int, op string) (*ObjectAttr, error) {
	a := &ObjectAttr{env: conn.env, position: pos}
	if err := conn.env.reg.Allocate(a, handle.KindObjectAttr, a.free); err != nil {
		return nil, err
	}
	if err := a.init(ctx, conn, param, op); err != nil {
		_ = conn.env.reg.Release(a, handle.KindObjectAttr, op)
		return nil, err
	}
	return a, nil
}

func (a *ObjectAttr) init(ctx context.Context, conn *Conn, param native.Param, op string) error {
	var err error
	if a.name, err = param.String(native.AttrName); err != nil {
		return errors.External(op, "get attribute name", err)
	}
	info, err := populateTypeInfo(ctx, conn, param, op, 0)
	if err != nil {
		return err
	}
	a.typeInfo = *info
	return nil
}

func (a *ObjectAttr) free() {
	if a.typeInfo.ObjectType != nil {
		if err := a.env.reg.Release(a.typeInfo.ObjectType, handle.KindObjectType, "ObjectAttr.free"); err != nil {
			a.env.log.Warn("release attribute type descriptor", zap.Error(err))
		}
		a.typeInfo.ObjectType = nil
	}
}

// AddRef adds a reference to the attribute descriptor.
func (a *ObjectAttr) AddRef() error {
	return a.env.reg.AddRef(a, handle.KindObjectAttr, "ObjectAttr.AddRef")
}

// Release releases a reference to the attribute descriptor.
func (a *ObjectAttr) Release() error {
	return a.env.reg.Release(a, handle.KindObjectAttr, "ObjectAttr.Release")
}

// GetInfo returns a snapshot of the attribute. The ObjectType inside the
// type info, if any, stays owned by the attribute; callers that keep it
// past the attribute's lifetime must AddRef it.
func (a *ObjectAttr) GetInfo() (AttrInfo, error) {
	const op = "ObjectAttr.GetInfo"
	if err := a.env.reg.Begin(a, handle.KindObjectAttr, op); err != nil {
		return AttrInfo{}, err
	}
	return AttrInfo{
		Name:     a.name,
		Position: a.position,
		TypeInfo: a.typeInfo,
	}, nil
}
