package manifest

// Kind identifies the shape of a manifest value.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	// KindBlob holds compact JSON for arrays and for mappings left below
	// the flattening level.
	KindBlob
	// KindObject only exists before Flatten runs.
	KindObject
)

// String returns the kind name used in logs and inspect output
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindBlob:
		return "blob"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is a single manifest cell. The zero Value is null.
type Value struct {
	kind Kind
	text string
	obj  *Record
}

// Null returns the null value.
func Null() Value { return Value{} }

// StringValue wraps a JSON string.
func StringValue(s string) Value { return Value{kind: KindString, text: s} }

// NumberValue wraps the literal text of a JSON number.
func NumberValue(literal string) Value { return Value{kind: KindNumber, text: literal} }

// BoolValue wraps a JSON boolean.
func BoolValue(b bool) Value {
	if b {
		return Value{kind: KindBool, text: "True"}
	}
	return Value{kind: KindBool, text: "False"}
}

// BlobValue wraps compact JSON text that is kept opaque.
func BlobValue(raw string) Value { return Value{kind: KindBlob, text: raw} }

// ObjectValue wraps a nested record together with its compact JSON text.
func ObjectValue(rec *Record, raw string) Value {
	return Value{kind: KindObject, text: raw, obj: rec}
}

// Kind reports the value kind.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Object returns the nested record for KindObject values.
func (v Value) Object() (*Record, bool) {
	if v.kind != KindObject {
		return nil, false
	}
	return v.obj, true
}

// String renders the value as it appears in metadata files and labels.
// Null renders empty, booleans render True/False, numbers keep their JSON
// literal and blobs/objects render as compact JSON.
func (v Value) String() string {
	return v.text
}

// opaque demotes an object to a blob; other kinds pass through.
func (v Value) opaque() Value {
	if v.kind == KindObject {
		return BlobValue(v.text)
	}
	return v
}
