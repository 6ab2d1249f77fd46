package otypes

import "github.com/meridb/otypes/native"

// DataTypeInfo describes the type of one value slot: a collection element
// or a member attribute. ObjectType is populated only when the slot holds
// a structured type; the reference it carries is owned by the descriptor
// or attribute the info was read from.
type DataTypeInfo struct {
	TypeCode   native.TypeCode
	ObjectType *ObjectType
}

// TypeInfo is a read-only snapshot of an ObjectType.
type TypeInfo struct {
	Schema          string
	Name            string
	TypeCode        native.TypeCode
	IsCollection    bool
	NumAttributes   int
	ElementTypeInfo *DataTypeInfo
}

// AttrInfo is a read-only snapshot of an ObjectAttr.
type AttrInfo struct {
	Name     string
	Position int
	TypeInfo DataTypeInfo
}
