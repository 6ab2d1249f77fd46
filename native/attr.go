package native

// Attr selects one attribute of a descriptor parameter. Which selectors a
// parameter answers depends on where it came from: type-level parameters
// carry schema, name, type code and the sub-parameter lists, attribute
// parameters carry their own name and type information.
type Attr uint32

const (
	// AttrSchemaName is the owning schema of a type.
	AttrSchemaName Attr = iota + 1

	// AttrTypeName is the type's name on a parameter obtained from an
	// explicit type lookup.
	AttrTypeName

	// AttrName is the name on a parameter obtained from statement column
	// metadata, and the member name on attribute parameters.
	AttrName

	// AttrTypeCode is the type classification. Only meaningful on
	// parameters produced by a full describe.
	AttrTypeCode

	// AttrNumAttrs is the number of member attributes of a type.
	AttrNumAttrs

	// AttrCollectionElement is the sub-parameter describing a collection's
	// element type.
	AttrCollectionElement

	// AttrListAttributes is the sub-parameter listing a type's member
	// attributes, addressed positionally with Param.Sub.
	AttrListAttributes

	// AttrRefTDO is the lightweight reference to the type's definition
	// object, resolved with Client.Pin.
	AttrRefTDO
)

// TypeCode classifies the shape of a described type or value slot.
type TypeCode uint16

const (
	TypeCodeInvalid TypeCode = iota

	// TypeCodeObject is a plain structured type with member attributes.
	TypeCodeObject

	// TypeCodeCollection is a collection type carrying an element type
	// instead of member attributes.
	TypeCodeCollection

	TypeCodeNumber
	TypeCodeVarchar
	TypeCodeDate
	TypeCodeRaw
	TypeCodeBoolean
)

var typeCodeNames = [...]string{
	TypeCodeInvalid:    "invalid",
	TypeCodeObject:     "object",
	TypeCodeCollection: "collection",
	TypeCodeNumber:     "number",
	TypeCodeVarchar:    "varchar",
	TypeCodeDate:       "date",
	TypeCodeRaw:        "raw",
	TypeCodeBoolean:    "boolean",
}

func (c TypeCode) String() string {
	if int(c) < len(typeCodeNames) {
		return typeCodeNames[c]
	}
	return "unknown"
}

// IsStructured reports whether values of this code are themselves described
// types that participate in the managed type graph.
func (c TypeCode) IsStructured() bool {
	return c == TypeCodeObject || c == TypeCodeCollection
}
