package otypes

import (
	"context"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/meridb/otypes/errors"
	"github.com/meridb/otypes/handle"
	"github.com/meridb/otypes/native"
)

// maxTypeDepth bounds recursive element resolution. Type definitions are
// data from the server, not verified acyclic.
const maxTypeDepth = 32

// ObjectType is the managed descriptor of one structured database type:
// identity, classification, attribute count, and for collections the
// element type. Fields are immutable after construction; the descriptor is
// shared read-only by every object created from it.
//
// An ObjectType holds a counted reference to its connection and, for
// collections, to the element type's descriptor. Both are released when
// the descriptor's own reference count reaches zero.
type ObjectType struct {
	handle.State
	env             *Environment
	conn            *Conn
	tdo             native.PinnedDefinition
	schema          string
	name            string
	typeCode        native.TypeCode
	numAttributes   int
	isCollection    bool
	elementTypeInfo *DataTypeInfo
}

// DescribeType builds a managed descriptor for the type behind param.
// nameAttr selects which attribute of param carries the type's name:
// native.AttrTypeName for parameters from an explicit type lookup,
// native.AttrName for parameters from statement column metadata.
func (c *Conn) DescribeType(ctx context.Context, param native.Param, nameAttr native.Attr) (*ObjectType, error) {
	const op = "Conn.DescribeType"
	if err := c.env.reg.Begin(c, handle.KindConn, op); err != nil {
		return nil, err
	}
	return describeType(ctx, c, param, nameAttr, op, 0)
}

func describeType(ctx context.Context, conn *Conn, param native.Param, nameAttr native.Attr, op string, depth int) (*ObjectType, error) {
	if depth > maxTypeDepth {
		return nil, &errors.Error{
			Code:   errors.CodeExternalService,
			Op:     op,
			Detail: fmt.Sprintf("type nesting exceeds %d levels, schema may be cyclic", maxTypeDepth),
		}
	}

	t := &ObjectType{env: conn.env}
	if err := conn.env.reg.Allocate(t, handle.KindObjectType, t.free); err != nil {
		return nil, err
	}
	if err := conn.env.reg.AddRef(conn, handle.KindConn, op); err != nil {
		_ = conn.env.reg.Release(t, handle.KindObjectType, op)
		return nil, err
	}
	t.conn = conn

	if err := t.init(ctx, param, nameAttr, op, depth); err != nil {
		_ = conn.env.reg.Release(t, handle.KindObjectType, op)
		return nil, err
	}

	conn.env.log.Debug("object type described",
		zap.String("schema", t.schema),
		zap.String("name", t.name),
		zap.Stringer("code", t.typeCode))
	return t, nil
}

func (t *ObjectType) init(ctx context.Context, param native.Param, nameAttr native.Attr, op string, depth int) error {
	var err error
	if t.schema, err = param.String(native.AttrSchemaName); err != nil {
		return errors.External(op, "get schema", err)
	}
	if t.name, err = param.String(nameAttr); err != nil {
		return errors.External(op, "get name", err)
	}

	ref, err := param.Definition(native.AttrRefTDO)
	if err != nil {
		return errors.External(op, "get definition reference", err)
	}
	if t.tdo, err = t.env.client.Pin(ctx, t.conn.nc, ref); err != nil {
		return errors.External(op, "pin definition", err)
	}

	dc, err := t.env.client.AllocateDescribeContext(ctx)
	if err != nil {
		return errors.External(op, "allocate describe context", err)
	}
	err = t.describe(ctx, dc, op, depth)
	if ferr := t.env.client.FreeDescribeContext(dc); ferr != nil {
		err = multierr.Append(err, errors.External(op, "free describe context", ferr))
	}
	return err
}

// describe performs the full describe of the pinned definition. The
// definition was already resolved by Pin, but the extra round trip is
// required: reading the type classification from a parameter that has not
// been through a full describe returns an illegal value.
func (t *ObjectType) describe(ctx context.Context, dc native.DescribeContext, op string, depth int) error {
	if err := t.env.client.DescribeAny(ctx, t.conn.nc, t.tdo, dc); err != nil {
		return errors.External(op, "describe type", err)
	}
	top, err := dc.TopLevel()
	if err != nil {
		return errors.External(op, "get top level parameter", err)
	}

	code, err := top.Uint(native.AttrTypeCode)
	if err != nil {
		return errors.External(op, "get type code", err)
	}
	t.typeCode = native.TypeCode(code)

	n, err := top.Uint(native.AttrNumAttrs)
	if err != nil {
		return errors.External(op, "get attribute count", err)
	}
	t.numAttributes = int(n)

	if t.typeCode == native.TypeCodeCollection {
		t.isCollection = true
		elem, err := top.Param(native.AttrCollectionElement)
		if err != nil {
			return errors.External(op, "get collection element", err)
		}
		info, err := populateTypeInfo(ctx, t.conn, elem, op, depth+1)
		if err != nil {
			return err
		}
		t.elementTypeInfo = info
	}
	return nil
}

// populateTypeInfo reads the type of one value slot, resolving a nested
// managed descriptor when the slot holds a structured type. The returned
// info owns one reference to that descriptor.
func populateTypeInfo(ctx context.Context, conn *Conn, param native.Param, op string, depth int) (*DataTypeInfo, error) {
	code, err := param.Uint(native.AttrTypeCode)
	if err != nil {
		return nil, errors.External(op, "get slot type code", err)
	}
	info := &DataTypeInfo{TypeCode: native.TypeCode(code)}
	if info.TypeCode.IsStructured() {
		ot, err := describeType(ctx, conn, param, native.AttrTypeName, op, depth)
		if err != nil {
			return nil, err
		}
		info.ObjectType = ot
	}
	return info, nil
}

func (t *ObjectType) free() {
	if t.elementTypeInfo != nil && t.elementTypeInfo.ObjectType != nil {
		if err := t.env.reg.Release(t.elementTypeInfo.ObjectType, handle.KindObjectType, "ObjectType.free"); err != nil {
			t.env.log.Warn("release element type descriptor", zap.Error(err))
		}
		t.elementTypeInfo.ObjectType = nil
	}
	if t.conn != nil {
		if err := t.env.reg.Release(t.conn, handle.KindConn, "ObjectType.free"); err != nil {
			t.env.log.Warn("release connection reference", zap.Error(err))
		}
		t.conn = nil
	}
}

// AddRef adds a reference to the descriptor.
func (t *ObjectType) AddRef() error {
	return t.env.reg.AddRef(t, handle.KindObjectType, "ObjectType.AddRef")
}

// Release releases a reference to the descriptor.
func (t *ObjectType) Release() error {
	return t.env.reg.Release(t, handle.KindObjectType, "ObjectType.Release")
}

// GetInfo returns a snapshot of the descriptor. No round trips.
func (t *ObjectType) GetInfo() (TypeInfo, error) {
	const op = "ObjectType.GetInfo"
	if err := t.env.reg.Begin(t, handle.KindObjectType, op); err != nil {
		return TypeInfo{}, err
	}
	info := TypeInfo{
		Schema:        t.schema,
		Name:          t.name,
		TypeCode:      t.typeCode,
		IsCollection:  t.isCollection,
		NumAttributes: t.numAttributes,
	}
	if t.elementTypeInfo != nil {
		elem := *t.elementTypeInfo
		info.ElementTypeInfo = &elem
	}
	return info, nil
}

// GetAttributes materializes the type's member attributes into attrs, in
// declaration order. Attribute metadata is fetched lazily, only here. The
// destination must hold at least NumAttributes entries; on any failure it
// is left with no new attributes in it.
func (t *ObjectType) GetAttributes(ctx context.Context, attrs []*ObjectAttr) (int, error) {
	const op = "ObjectType.GetAttributes"
	if err := t.env.reg.Begin(t, handle.KindObjectType, op); err != nil {
		return 0, err
	}
	if len(attrs) < t.numAttributes {
		return 0, errors.ArrayTooSmall(op, t.numAttributes, len(attrs))
	}
	if t.numAttributes == 0 {
		return 0, nil
	}

	dc, err := t.env.client.AllocateDescribeContext(ctx)
	if err != nil {
		return 0, errors.External(op, "allocate describe context", err)
	}
	written, err := t.readAttributes(ctx, dc, attrs, op)
	if ferr := t.env.client.FreeDescribeContext(dc); ferr != nil {
		err = multierr.Append(err, errors.External(op, "free describe context", ferr))
	}
	if err != nil {
		for i := 0; i < written; i++ {
			_ = t.env.reg.Release(attrs[i], handle.KindObjectAttr, op)
			attrs[i] = nil
		}
		return 0, err
	}
	return t.numAttributes, nil
}

func (t *ObjectType) readAttributes(ctx context.Context, dc native.DescribeContext, attrs []*ObjectAttr, op string) (int, error) {
	if err := t.env.client.DescribeAny(ctx, t.conn.nc, t.tdo, dc); err != nil {
		return 0, errors.External(op, "describe type", err)
	}
	top, err := dc.TopLevel()
	if err != nil {
		return 0, errors.External(op, "get top level parameter", err)
	}
	list, err := top.Param(native.AttrListAttributes)
	if err != nil {
		return 0, errors.External(op, "get attribute list parameter", err)
	}

	for i := 0; i < t.numAttributes; i++ {
		param, err := list.Sub(uint32(i + 1))
		if err != nil {
			return i, errors.External(op, "get attribute parameter", err)
		}
		a, err := newObjectAttr(ctx, t.conn, param, i+1, op)
		if err != nil {
			return i, err
		}
		attrs[i] = a
	}
	return t.numAttributes, nil
}
