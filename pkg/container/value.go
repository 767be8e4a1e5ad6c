package container

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
)

// Kind identifies the type of a value. The numeric value of a Kind is its
// single-byte wire tag, so kinds marshal without a translation table.
type Kind byte

const (
	KindNull      Kind = '0'
	KindBool      Kind = '1'
	KindInt16     Kind = '2'
	KindUint16    Kind = '3'
	KindInt32     Kind = '4'
	KindUint32    Kind = '5'
	KindInt64     Kind = '6'
	KindUint64    Kind = '7'
	KindLongLong  Kind = '8'
	KindULongLong Kind = '9'
	KindFloat32   Kind = 'a'
	KindFloat64   Kind = 'b'
	KindBytes     Kind = 'c'
	KindString    Kind = 'd'
	KindContainer Kind = 'e'
)

// KindLongLong and KindULongLong carry 64-bit integers like KindInt64 and
// KindUint64 but keep their distinct wire tags for peer compatibility.

func validKind(k Kind) bool {
	return (k >= '0' && k <= '9') || (k >= 'a' && k <= 'e')
}

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt16:
		return "int16"
	case KindUint16:
		return "uint16"
	case KindInt32:
		return "int32"
	case KindUint32:
		return "uint32"
	case KindInt64:
		return "int64"
	case KindUint64:
		return "uint64"
	case KindLongLong:
		return "longlong"
	case KindULongLong:
		return "ulonglong"
	case KindFloat32:
		return "float32"
	case KindFloat64:
		return "float64"
	case KindBytes:
		return "bytes"
	case KindString:
		return "string"
	case KindContainer:
		return "container"
	default:
		return fmt.Sprintf("kind(%c)", byte(k))
	}
}

func (k Kind) numeric() bool {
	switch k {
	case KindBool, KindInt16, KindUint16, KindInt32, KindUint32,
		KindInt64, KindUint64, KindLongLong, KindULongLong,
		KindFloat32, KindFloat64:
		return true
	}
	return false
}

func (k Kind) signed() bool {
	switch k {
	case KindInt16, KindInt32, KindInt64, KindLongLong:
		return true
	}
	return false
}

// Value is a named, typed leaf in a container. Values are immutable once
// built; mutating a shared container requires a deep copy first.
type Value struct {
	name    string
	kind    Kind
	payload []byte
}

// Null creates a value of the null kind.
func Null(name string) *Value {
	return &Value{name: name, kind: KindNull}
}

// Bool creates a bool value.
func Bool(name string, v bool) *Value {
	p := []byte{0}
	if v {
		p[0] = 1
	}
	return &Value{name: name, kind: KindBool, payload: p}
}

// Int16 creates an int16 value.
func Int16(name string, v int16) *Value {
	p := make([]byte, 2)
	binary.LittleEndian.PutUint16(p, uint16(v))
	return &Value{name: name, kind: KindInt16, payload: p}
}

// Uint16 creates a uint16 value.
func Uint16(name string, v uint16) *Value {
	p := make([]byte, 2)
	binary.LittleEndian.PutUint16(p, v)
	return &Value{name: name, kind: KindUint16, payload: p}
}

// Int32 creates an int32 value.
func Int32(name string, v int32) *Value {
	p := make([]byte, 4)
	binary.LittleEndian.PutUint32(p, uint32(v))
	return &Value{name: name, kind: KindInt32, payload: p}
}

// Uint32 creates a uint32 value.
func Uint32(name string, v uint32) *Value {
	p := make([]byte, 4)
	binary.LittleEndian.PutUint32(p, v)
	return &Value{name: name, kind: KindUint32, payload: p}
}

// Int64 creates an int64 value.
func Int64(name string, v int64) *Value {
	p := make([]byte, 8)
	binary.LittleEndian.PutUint64(p, uint64(v))
	return &Value{name: name, kind: KindInt64, payload: p}
}

// Uint64 creates a uint64 value.
func Uint64(name string, v uint64) *Value {
	p := make([]byte, 8)
	binary.LittleEndian.PutUint64(p, v)
	return &Value{name: name, kind: KindUint64, payload: p}
}

// LongLong creates a 64-bit signed value carrying the long-long wire tag.
func LongLong(name string, v int64) *Value {
	p := make([]byte, 8)
	binary.LittleEndian.PutUint64(p, uint64(v))
	return &Value{name: name, kind: KindLongLong, payload: p}
}

// ULongLong creates a 64-bit unsigned value carrying the unsigned
// long-long wire tag.
func ULongLong(name string, v uint64) *Value {
	p := make([]byte, 8)
	binary.LittleEndian.PutUint64(p, v)
	return &Value{name: name, kind: KindULongLong, payload: p}
}

// Float32 creates a float32 value.
func Float32(name string, v float32) *Value {
	p := make([]byte, 4)
	binary.LittleEndian.PutUint32(p, math.Float32bits(v))
	return &Value{name: name, kind: KindFloat32, payload: p}
}

// Float64 creates a float64 value.
func Float64(name string, v float64) *Value {
	p := make([]byte, 8)
	binary.LittleEndian.PutUint64(p, math.Float64bits(v))
	return &Value{name: name, kind: KindFloat64, payload: p}
}

// Bytes creates an opaque bytes value. The slice is copied.
func Bytes(name string, v []byte) *Value {
	p := make([]byte, len(v))
	copy(p, v)
	return &Value{name: name, kind: KindBytes, payload: p}
}

// String creates a UTF-8 string value.
func String(name string, v string) *Value {
	return &Value{name: name, kind: KindString, payload: []byte(v)}
}

// Nested creates a value holding a serialized nested container.
func Nested(name string, c *Container) *Value {
	return &Value{name: name, kind: KindContainer, payload: c.Serialize()}
}

// Name returns the value's name.
func (v *Value) Name() string { return v.name }

// Kind returns the value's kind.
func (v *Value) Kind() Kind { return v.kind }

// Payload returns the raw encoded payload. The caller must not modify it.
func (v *Value) Payload() []byte { return v.payload }

// AsBool converts any numeric kind to bool (non-zero is true).
func (v *Value) AsBool() (bool, error) {
	if !v.kind.numeric() {
		return false, &TypeMismatchError{Name: v.name, Want: KindBool, Got: v.kind}
	}
	if v.kind.signed() {
		return v.rawInt() != 0, nil
	}
	if v.kind == KindFloat32 || v.kind == KindFloat64 {
		return v.rawFloat() != 0, nil
	}
	return v.rawUint() != 0, nil
}

// AsInt64 converts any numeric kind to int64, saturating at the int64
// range for large unsigned values.
func (v *Value) AsInt64() (int64, error) {
	if !v.kind.numeric() {
		return 0, &TypeMismatchError{Name: v.name, Want: KindInt64, Got: v.kind}
	}
	switch v.kind {
	case KindFloat32, KindFloat64:
		return saturateFloatToInt(v.rawFloat()), nil
	case KindUint16, KindUint32, KindUint64, KindULongLong, KindBool:
		u := v.rawUint()
		if u > math.MaxInt64 {
			return math.MaxInt64, nil
		}
		return int64(u), nil
	default:
		return v.rawInt(), nil
	}
}

// AsUint64 converts any numeric kind to uint64, saturating negatives to
// zero.
func (v *Value) AsUint64() (uint64, error) {
	if !v.kind.numeric() {
		return 0, &TypeMismatchError{Name: v.name, Want: KindUint64, Got: v.kind}
	}
	switch v.kind {
	case KindFloat32, KindFloat64:
		f := v.rawFloat()
		if f < 0 || math.IsNaN(f) {
			return 0, nil
		}
		if f >= math.MaxUint64 {
			return math.MaxUint64, nil
		}
		return uint64(f), nil
	case KindInt16, KindInt32, KindInt64, KindLongLong:
		i := v.rawInt()
		if i < 0 {
			return 0, nil
		}
		return uint64(i), nil
	default:
		return v.rawUint(), nil
	}
}

// AsInt16 narrows to int16, saturating at the int16 range.
func (v *Value) AsInt16() (int16, error) {
	i, err := v.AsInt64()
	if err != nil {
		return 0, err
	}
	if i > math.MaxInt16 {
		return math.MaxInt16, nil
	}
	if i < math.MinInt16 {
		return math.MinInt16, nil
	}
	return int16(i), nil
}

// AsInt32 narrows to int32, saturating at the int32 range.
func (v *Value) AsInt32() (int32, error) {
	i, err := v.AsInt64()
	if err != nil {
		return 0, err
	}
	if i > math.MaxInt32 {
		return math.MaxInt32, nil
	}
	if i < math.MinInt32 {
		return math.MinInt32, nil
	}
	return int32(i), nil
}

// AsUint16 narrows to uint16, saturating at the uint16 range.
func (v *Value) AsUint16() (uint16, error) {
	u, err := v.AsUint64()
	if err != nil {
		return 0, err
	}
	if u > math.MaxUint16 {
		return math.MaxUint16, nil
	}
	return uint16(u), nil
}

// AsUint32 narrows to uint32, saturating at the uint32 range.
func (v *Value) AsUint32() (uint32, error) {
	u, err := v.AsUint64()
	if err != nil {
		return 0, err
	}
	if u > math.MaxUint32 {
		return math.MaxUint32, nil
	}
	return uint32(u), nil
}

// AsFloat64 converts any numeric kind to float64.
func (v *Value) AsFloat64() (float64, error) {
	if !v.kind.numeric() {
		return 0, &TypeMismatchError{Name: v.name, Want: KindFloat64, Got: v.kind}
	}
	switch v.kind {
	case KindFloat32, KindFloat64:
		return v.rawFloat(), nil
	case KindUint16, KindUint32, KindUint64, KindULongLong, KindBool:
		return float64(v.rawUint()), nil
	default:
		return float64(v.rawInt()), nil
	}
}

// AsFloat32 converts any numeric kind to float32, saturating overflow to
// the float32 infinities.
func (v *Value) AsFloat32() (float32, error) {
	f, err := v.AsFloat64()
	if err != nil {
		return 0, err
	}
	return float32(f), nil
}

// AsString requires the string kind. Use ToString for the lossy
// any-kind rendering.
func (v *Value) AsString() (string, error) {
	if v.kind != KindString {
		return "", &TypeMismatchError{Name: v.name, Want: KindString, Got: v.kind}
	}
	return string(v.payload), nil
}

// AsBytes requires the bytes kind.
func (v *Value) AsBytes() ([]byte, error) {
	if v.kind != KindBytes {
		return nil, &TypeMismatchError{Name: v.name, Want: KindBytes, Got: v.kind}
	}
	out := make([]byte, len(v.payload))
	copy(out, v.payload)
	return out, nil
}

// AsContainer decodes a nested container value.
func (v *Value) AsContainer() (*Container, error) {
	if v.kind != KindContainer {
		return nil, &TypeMismatchError{Name: v.name, Want: KindContainer, Got: v.kind}
	}
	return Deserialize(v.payload)
}

// ToString renders any kind as text. Bytes render as their length,
// containers as their header summary.
func (v *Value) ToString() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBool:
		if v.payload[0] != 0 {
			return "true"
		}
		return "false"
	case KindFloat32, KindFloat64:
		return strconv.FormatFloat(v.rawFloat(), 'g', -1, 64)
	case KindInt16, KindInt32, KindInt64, KindLongLong:
		return strconv.FormatInt(v.rawInt(), 10)
	case KindUint16, KindUint32, KindUint64, KindULongLong:
		return strconv.FormatUint(v.rawUint(), 10)
	case KindString:
		return string(v.payload)
	case KindBytes:
		return fmt.Sprintf("bytes(%d)", len(v.payload))
	case KindContainer:
		c, err := Deserialize(v.payload)
		if err != nil {
			return "container(invalid)"
		}
		return fmt.Sprintf("container(%s)", c.MessageType())
	default:
		return "unknown"
	}
}

// Equal reports whether two values carry the same name, kind and payload.
func (v *Value) Equal(o *Value) bool {
	if v.name != o.name || v.kind != o.kind || len(v.payload) != len(o.payload) {
		return false
	}
	for i := range v.payload {
		if v.payload[i] != o.payload[i] {
			return false
		}
	}
	return true
}

// clone duplicates the value including its payload buffer.
func (v *Value) clone() *Value {
	p := make([]byte, len(v.payload))
	copy(p, v.payload)
	return &Value{name: v.name, kind: v.kind, payload: p}
}

func (v *Value) rawInt() int64 {
	switch v.kind {
	case KindInt16:
		return int64(int16(binary.LittleEndian.Uint16(v.payload)))
	case KindInt32:
		return int64(int32(binary.LittleEndian.Uint32(v.payload)))
	default: // KindInt64, KindLongLong
		return int64(binary.LittleEndian.Uint64(v.payload))
	}
}

func (v *Value) rawUint() uint64 {
	switch v.kind {
	case KindBool:
		return uint64(v.payload[0])
	case KindUint16:
		return uint64(binary.LittleEndian.Uint16(v.payload))
	case KindUint32:
		return uint64(binary.LittleEndian.Uint32(v.payload))
	default: // KindUint64, KindULongLong
		return binary.LittleEndian.Uint64(v.payload)
	}
}

func (v *Value) rawFloat() float64 {
	if v.kind == KindFloat32 {
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(v.payload)))
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(v.payload))
}

func saturateFloatToInt(f float64) int64 {
	if math.IsNaN(f) {
		return 0
	}
	if f >= math.MaxInt64 {
		return math.MaxInt64
	}
	if f <= math.MinInt64 {
		return math.MinInt64
	}
	return int64(f)
}
