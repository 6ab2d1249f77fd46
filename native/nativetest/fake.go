package nativetest

import (
	"context"
	"fmt"
	"sync"

	"github.com/meridb/otypes/native"
)

// Steps that can be failed with Fake.FailOn. Each names one call into the
// client boundary, so tests can inject an external-service failure at any
// point of a describe or instantiate sequence.
const (
	StepAllocateContext       = "allocate context"
	StepFreeContext           = "free context"
	StepDescribeAny           = "describe any"
	StepPin                   = "pin"
	StepTopLevel              = "top level"
	StepNewInstance           = "new instance"
	StepIndicator             = "indicator"
	StepLookupType            = "lookup type"
	StepAttrSchema            = "attr schema"
	StepAttrTypeName          = "attr type name"
	StepAttrName              = "attr name"
	StepAttrTypeCode          = "attr type code"
	StepAttrNumAttrs          = "attr num attrs"
	StepAttrCollectionElement = "attr collection element"
	StepAttrListAttributes    = "attr list attributes"
	StepAttrRefTDO            = "attr ref tdo"
	StepSub                   = "sub param"
)

// AttrDef scripts one member attribute of a type.
type AttrDef struct {
	Name string
	Code native.TypeCode

	// TypeName is the qualified name of the attribute's type when Code is
	// structured (object or collection).
	TypeName string
}

// TypeDef scripts one structured type known to the fake server.
type TypeDef struct {
	Schema string
	Name   string
	Code   native.TypeCode

	// Attrs lists member attributes; empty for collections.
	Attrs []AttrDef

	// ElemCode is the element type code for collections.
	ElemCode native.TypeCode

	// ElemType is the qualified name of the element type when ElemCode is
	// structured.
	ElemType string
}

func (d *TypeDef) qualified() string {
	return d.Schema + "." + d.Name
}

// Fake is an in-memory native.Client.
type Fake struct {
	mu           sync.Mutex
	types        map[string]*TypeDef
	fail         map[string]error
	contextsLive int
	pins         int
	lookupCalls  int
	lastNameAttr native.Attr
}

// NewFake creates an empty fake client.
func NewFake() *Fake {
	return &Fake{
		types: make(map[string]*TypeDef),
		fail:  make(map[string]error),
	}
}

// AddType registers a type definition under its qualified name.
func (f *Fake) AddType(def TypeDef) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d := def
	f.types[d.qualified()] = &d
}

// FailOn makes the named step return err until cleared.
func (f *Fake) FailOn(step string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[step] = err
}

// ClearFailures removes all injected failures.
func (f *Fake) ClearFailures() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = make(map[string]error)
}

// ContextsLive returns the number of describe contexts allocated and not
// yet freed.
func (f *Fake) ContextsLive() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.contextsLive
}

// Pins returns the number of definition pins taken. Pins are reclaimed
// when the client itself shuts down, so this only ever grows.
func (f *Fake) Pins() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pins
}

// LookupCalls returns the number of LookupType round trips served.
func (f *Fake) LookupCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lookupCalls
}

// NameAttrUsed returns the selector most recently used to read a type's
// name off a type-level parameter.
func (f *Fake) NameAttrUsed() native.Attr {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastNameAttr
}

// Conn returns an opaque connection token accepted by every call.
func (f *Fake) Conn() native.Conn {
	return fakeConn{}
}

// TypeParam returns an undescribed parameter for a registered type, as a
// statement's column metadata would hand out. Reading the type code off it
// yields an invalid value until the definition goes through a full
// describe.
func (f *Fake) TypeParam(qualified string) (native.Param, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	def, ok := f.types[qualified]
	if !ok {
		return nil, false
	}
	return &typeParam{f: f, def: def}, true
}

func (f *Fake) checkFail(step string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fail[step]
}

func (f *Fake) recordNameAttr(a native.Attr) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastNameAttr = a
}

// AllocateDescribeContext implements native.Client.
func (f *Fake) AllocateDescribeContext(ctx context.Context) (native.DescribeContext, error) {
	if err := f.checkFail(StepAllocateContext); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.contextsLive++
	return &describeCtx{f: f}, nil
}

// FreeDescribeContext implements native.Client.
func (f *Fake) FreeDescribeContext(dc native.DescribeContext) error {
	if err := f.checkFail(StepFreeContext); err != nil {
		return err
	}
	d, ok := dc.(*describeCtx)
	if !ok {
		return fmt.Errorf("nativetest: foreign describe context %T", dc)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if d.freed {
		return fmt.Errorf("nativetest: describe context freed twice")
	}
	d.freed = true
	f.contextsLive--
	return nil
}

// DescribeAny implements native.Client.
func (f *Fake) DescribeAny(ctx context.Context, conn native.Conn, def native.PinnedDefinition, dc native.DescribeContext) error {
	if err := f.checkFail(StepDescribeAny); err != nil {
		return err
	}
	p, ok := def.(pinnedDef)
	if !ok {
		return fmt.Errorf("nativetest: foreign pinned definition %T", def)
	}
	d, ok := dc.(*describeCtx)
	if !ok {
		return fmt.Errorf("nativetest: foreign describe context %T", dc)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if d.freed {
		return fmt.Errorf("nativetest: describe into freed context")
	}
	d.top = &typeParam{f: f, def: p.def, described: true}
	return nil
}

// Pin implements native.Client.
func (f *Fake) Pin(ctx context.Context, conn native.Conn, ref native.DefinitionRef) (native.PinnedDefinition, error) {
	if err := f.checkFail(StepPin); err != nil {
		return nil, err
	}
	r, ok := ref.(defRef)
	if !ok {
		return nil, fmt.Errorf("nativetest: foreign definition reference %T", ref)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pins++
	return pinnedDef{def: r.def}, nil
}

// NewInstance implements native.Client.
func (f *Fake) NewInstance(ctx context.Context, conn native.Conn, def native.PinnedDefinition) (native.InstanceData, error) {
	if err := f.checkFail(StepNewInstance); err != nil {
		return nil, err
	}
	p, ok := def.(pinnedDef)
	if !ok {
		return nil, fmt.Errorf("nativetest: foreign pinned definition %T", def)
	}
	return instData{def: p.def}, nil
}

// InstanceIndicator implements native.Client.
func (f *Fake) InstanceIndicator(ctx context.Context, conn native.Conn, data native.InstanceData) (native.NullIndicator, error) {
	if err := f.checkFail(StepIndicator); err != nil {
		return nil, err
	}
	return nullInd{}, nil
}

// LookupType implements native.Client.
func (f *Fake) LookupType(ctx context.Context, conn native.Conn, schema, name string) (native.Param, error) {
	if err := f.checkFail(StepLookupType); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookupCalls++
	def, ok := f.types[schema+"."+name]
	if !ok {
		return nil, fmt.Errorf("nativetest: type %s.%s not registered", schema, name)
	}
	return &typeParam{f: f, def: def}, nil
}
