package nativetest

import (
	"fmt"

	"github.com/meridb/otypes/native"
)

type fakeConn struct{}

func (fakeConn) NativeConn() {}

type defRef struct{ def *TypeDef }

func (defRef) DefinitionRef() {}

type pinnedDef struct{ def *TypeDef }

func (pinnedDef) PinnedDefinition() {}

type instData struct{ def *TypeDef }

func (instData) InstanceData() {}

type nullInd struct{}

func (nullInd) NullIndicator() {}

type describeCtx struct {
	f     *Fake
	top   native.Param
	freed bool
}

func (d *describeCtx) TopLevel() (native.Param, error) {
	if err := d.f.checkFail(StepTopLevel); err != nil {
		return nil, err
	}
	if d.top == nil {
		return nil, fmt.Errorf("nativetest: no describe performed into this context")
	}
	return d.top, nil
}

// typeParam is a type-level descriptor parameter. Until the definition has
// been through a full describe, reading the type code off it returns an
// invalid value, mirroring the behavior of the real client library.
type typeParam struct {
	f         *Fake
	def       *TypeDef
	described bool
}

func (p *typeParam) String(a native.Attr) (string, error) {
	switch a {
	case native.AttrSchemaName:
		if err := p.f.checkFail(StepAttrSchema); err != nil {
			return "", err
		}
		return p.def.Schema, nil
	case native.AttrTypeName:
		if err := p.f.checkFail(StepAttrTypeName); err != nil {
			return "", err
		}
		p.f.recordNameAttr(a)
		return p.def.Name, nil
	case native.AttrName:
		if err := p.f.checkFail(StepAttrName); err != nil {
			return "", err
		}
		p.f.recordNameAttr(a)
		return p.def.Name, nil
	}
	return "", fmt.Errorf("nativetest: type parameter has no string attribute %d", a)
}

func (p *typeParam) Uint(a native.Attr) (uint32, error) {
	switch a {
	case native.AttrTypeCode:
		if err := p.f.checkFail(StepAttrTypeCode); err != nil {
			return 0, err
		}
		if !p.described {
			return uint32(native.TypeCodeInvalid), nil
		}
		return uint32(p.def.Code), nil
	case native.AttrNumAttrs:
		if err := p.f.checkFail(StepAttrNumAttrs); err != nil {
			return 0, err
		}
		return uint32(len(p.def.Attrs)), nil
	}
	return 0, fmt.Errorf("nativetest: type parameter has no numeric attribute %d", a)
}

func (p *typeParam) Param(a native.Attr) (native.Param, error) {
	switch a {
	case native.AttrCollectionElement:
		if err := p.f.checkFail(StepAttrCollectionElement); err != nil {
			return nil, err
		}
		if p.def.Code != native.TypeCodeCollection {
			return nil, fmt.Errorf("nativetest: %s is not a collection", p.def.qualified())
		}
		if p.def.ElemCode.IsStructured() {
			p.f.mu.Lock()
			elem, ok := p.f.types[p.def.ElemType]
			p.f.mu.Unlock()
			if !ok {
				return nil, fmt.Errorf("nativetest: element type %s not registered", p.def.ElemType)
			}
			return &typeParam{f: p.f, def: elem, described: true}, nil
		}
		return &scalarParam{f: p.f, code: p.def.ElemCode}, nil
	case native.AttrListAttributes:
		if err := p.f.checkFail(StepAttrListAttributes); err != nil {
			return nil, err
		}
		return &attrListParam{f: p.f, def: p.def}, nil
	}
	return nil, fmt.Errorf("nativetest: type parameter has no sub-parameter attribute %d", a)
}

func (p *typeParam) Definition(a native.Attr) (native.DefinitionRef, error) {
	if a != native.AttrRefTDO {
		return nil, fmt.Errorf("nativetest: type parameter has no definition attribute %d", a)
	}
	if err := p.f.checkFail(StepAttrRefTDO); err != nil {
		return nil, err
	}
	return defRef{def: p.def}, nil
}

func (p *typeParam) Sub(pos uint32) (native.Param, error) {
	return nil, fmt.Errorf("nativetest: type parameter is not a list")
}

// scalarParam describes a scalar value slot, e.g. the element of a
// collection of numbers. It answers only the type code.
type scalarParam struct {
	f    *Fake
	code native.TypeCode
}

func (p *scalarParam) String(a native.Attr) (string, error) {
	return "", fmt.Errorf("nativetest: scalar parameter has no string attribute %d", a)
}

func (p *scalarParam) Uint(a native.Attr) (uint32, error) {
	if a != native.AttrTypeCode {
		return 0, fmt.Errorf("nativetest: scalar parameter has no numeric attribute %d", a)
	}
	if err := p.f.checkFail(StepAttrTypeCode); err != nil {
		return 0, err
	}
	return uint32(p.code), nil
}

func (p *scalarParam) Param(a native.Attr) (native.Param, error) {
	return nil, fmt.Errorf("nativetest: scalar parameter has no sub-parameters")
}

func (p *scalarParam) Definition(a native.Attr) (native.DefinitionRef, error) {
	return nil, fmt.Errorf("nativetest: scalar parameter has no definition")
}

func (p *scalarParam) Sub(pos uint32) (native.Param, error) {
	return nil, fmt.Errorf("nativetest: scalar parameter is not a list")
}

// attrListParam is the attribute-list sub-parameter of a described type.
type attrListParam struct {
	f   *Fake
	def *TypeDef
}

func (p *attrListParam) String(a native.Attr) (string, error) {
	return "", fmt.Errorf("nativetest: attribute list has no string attribute %d", a)
}

func (p *attrListParam) Uint(a native.Attr) (uint32, error) {
	return 0, fmt.Errorf("nativetest: attribute list has no numeric attribute %d", a)
}

func (p *attrListParam) Param(a native.Attr) (native.Param, error) {
	return nil, fmt.Errorf("nativetest: attribute list has no sub-parameter attribute %d", a)
}

func (p *attrListParam) Definition(a native.Attr) (native.DefinitionRef, error) {
	return nil, fmt.Errorf("nativetest: attribute list has no definition")
}

func (p *attrListParam) Sub(pos uint32) (native.Param, error) {
	if err := p.f.checkFail(StepSub); err != nil {
		return nil, err
	}
	if pos < 1 || int(pos) > len(p.def.Attrs) {
		return nil, fmt.Errorf("nativetest: attribute position %d out of range 1..%d", pos, len(p.def.Attrs))
	}
	a := &p.def.Attrs[pos-1]
	ap := &attrParam{f: p.f, attr: a}
	if a.Code.IsStructured() {
		p.f.mu.Lock()
		ref, ok := p.f.types[a.TypeName]
		p.f.mu.Unlock()
		if !ok {
			return nil, fmt.Errorf("nativetest: attribute type %s not registered", a.TypeName)
		}
		ap.ref = ref
	}
	return ap, nil
}

// attrParam is one member-attribute parameter. For attributes of
// structured types it also answers the type-level selectors needed to
// describe the referenced type.
type attrParam struct {
	f    *Fake
	attr *AttrDef
	ref  *TypeDef
}

func (p *attrParam) String(a native.Attr) (string, error) {
	switch a {
	case native.AttrName:
		if err := p.f.checkFail(StepAttrName); err != nil {
			return "", err
		}
		return p.attr.Name, nil
	case native.AttrSchemaName:
		if p.ref == nil {
			break
		}
		if err := p.f.checkFail(StepAttrSchema); err != nil {
			return "", err
		}
		return p.ref.Schema, nil
	case native.AttrTypeName:
		if p.ref == nil {
			break
		}
		if err := p.f.checkFail(StepAttrTypeName); err != nil {
			return "", err
		}
		p.f.recordNameAttr(a)
		return p.ref.Name, nil
	}
	return "", fmt.Errorf("nativetest: attribute parameter has no string attribute %d", a)
}

func (p *attrParam) Uint(a native.Attr) (uint32, error) {
	if a != native.AttrTypeCode {
		return 0, fmt.Errorf("nativetest: attribute parameter has no numeric attribute %d", a)
	}
	if err := p.f.checkFail(StepAttrTypeCode); err != nil {
		return 0, err
	}
	return uint32(p.attr.Code), nil
}

func (p *attrParam) Param(a native.Attr) (native.Param, error) {
	return nil, fmt.Errorf("nativetest: attribute parameter has no sub-parameter attribute %d", a)
}

func (p *attrParam) Definition(a native.Attr) (native.DefinitionRef, error) {
	if a != native.AttrRefTDO || p.ref == nil {
		return nil, fmt.Errorf("nativetest: attribute parameter has no definition attribute %d", a)
	}
	if err := p.f.checkFail(StepAttrRefTDO); err != nil {
		return nil, err
	}
	return defRef{def: p.ref}, nil
}

func (p *attrParam) Sub(pos uint32) (native.Param, error) {
	return nil, fmt.Errorf("nativetest: attribute parameter is not a list")
}
