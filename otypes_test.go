package otypes

import (
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/meridb/otypes/native"
	"github.com/meridb/otypes/native/nativetest"
)

// newTestEnv builds an environment and connection over a fake client
// preloaded with the shared scenario types.
func newTestEnv(t *testing.T) (*Environment, *nativetest.Fake, *Conn) {
	t.Helper()

	fake := nativetest.NewFake()
	fake.AddType(nativetest.TypeDef{
		Schema: "SCHEMA",
		Name:   "PERSON_T",
		Code:   native.TypeCodeObject,
		Attrs: []nativetest.AttrDef{
			{Name: "NAME", Code: native.TypeCodeVarchar},
			{Name: "AGE", Code: native.TypeCodeNumber},
			{Name: "BIRTH", Code: native.TypeCodeDate},
		},
	})
	fake.AddType(nativetest.TypeDef{
		Schema:   "SCHEMA",
		Name:     "INT_LIST_T",
		Code:     native.TypeCodeCollection,
		ElemCode: native.TypeCodeNumber,
	})
	fake.AddType(nativetest.TypeDef{
		Schema:   "SCHEMA",
		Name:     "LIST_OF_LISTS_T",
		Code:     native.TypeCodeCollection,
		ElemCode: native.TypeCodeCollection,
		ElemType: "SCHEMA.INT_LIST_T",
	})
	fake.AddType(nativetest.TypeDef{
		Schema: "SCHEMA",
		Name:   "ADDRESS_T",
		Code:   native.TypeCodeObject,
		Attrs: []nativetest.AttrDef{
			{Name: "STREET", Code: native.TypeCodeVarchar},
			{Name: "CITY", Code: native.TypeCodeVarchar},
		},
	})
	fake.AddType(nativetest.TypeDef{
		Schema: "SCHEMA",
		Name:   "EMPLOYEE_T",
		Code:   native.TypeCodeObject,
		Attrs: []nativetest.AttrDef{
			{Name: "ID", Code: native.TypeCodeNumber},
			{Name: "HOME", Code: native.TypeCodeObject, TypeName: "SCHEMA.ADDRESS_T"},
		},
	})

	env, err := NewEnvironment(fake, WithLogger(zaptest.NewLogger(t)))
	if err != nil {
		t.Fatalf("NewEnvironment failed: %v", err)
	}
	conn, err := env.NewConn(fake.Conn())
	if err != nil {
		t.Fatalf("NewConn failed: %v", err)
	}
	return env, fake, conn
}

// describeScenarioType resolves a registered type through an undescribed
// parameter, the way a statement's metadata would hand it out.
func describeScenarioType(t *testing.T, fake *nativetest.Fake, conn *Conn, qualified string) *ObjectType {
	t.Helper()
	param, ok := fake.TypeParam(qualified)
	if !ok {
		t.Fatalf("type %s not registered", qualified)
	}
	ot, err := conn.DescribeType(t.Context(), param, native.AttrTypeName)
	if err != nil {
		t.Fatalf("DescribeType(%s) failed: %v", qualified, err)
	}
	return ot
}
