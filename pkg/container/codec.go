package container

import (
	"bytes"
	"encoding/binary"
)

// Wire format. All length prefixes are uint32 little-endian.
//
//	header:  5 × (len, utf-8 bytes)   source, source_sub, target, target_sub, type
//	count:   uint32 number of values
//	value:   (len, name bytes) (1 tag byte) (len, payload bytes)
//
// Nested containers serialize recursively inside a value payload.

// Serialize encodes the container. Encoding cannot fail: every legal
// in-memory container has exactly one byte representation.
func (c *Container) Serialize() []byte {
	var buf bytes.Buffer
	writeString(&buf, c.sourceID)
	writeString(&buf, c.sourceSubID)
	writeString(&buf, c.targetID)
	writeString(&buf, c.targetSubID)
	writeString(&buf, c.messageType)

	var n [4]byte
	binary.LittleEndian.PutUint32(n[:], uint32(len(c.values)))
	buf.Write(n[:])

	for _, v := range c.values {
		writeString(&buf, v.name)
		buf.WriteByte(byte(v.kind))
		binary.LittleEndian.PutUint32(n[:], uint32(len(v.payload)))
		buf.Write(n[:])
		buf.Write(v.payload)
	}
	return buf.Bytes()
}

// Deserialize decodes a container from its wire form. Malformed input
// returns a *SerializationError; it never panics.
func Deserialize(data []byte) (*Container, error) {
	d := decoder{data: data}

	c := &Container{}
	var err error
	if c.sourceID, err = d.str("source_id"); err != nil {
		return nil, err
	}
	if c.sourceSubID, err = d.str("source_sub_id"); err != nil {
		return nil, err
	}
	if c.targetID, err = d.str("target_id"); err != nil {
		return nil, err
	}
	if c.targetSubID, err = d.str("target_sub_id"); err != nil {
		return nil, err
	}
	if c.messageType, err = d.str("message_type"); err != nil {
		return nil, err
	}

	count, err := d.u32("value count")
	if err != nil {
		return nil, err
	}
	// A count larger than the remaining bytes is corrupt even before the
	// individual values are inspected.
	if int64(count) > int64(len(data)-d.off) {
		return nil, d.fail("value count exceeds remaining bytes")
	}

	for i := uint32(0); i < count; i++ {
		v, err := d.value()
		if err != nil {
			return nil, err
		}
		c.values = append(c.values, v)
	}
	if d.off != len(data) {
		return nil, d.fail("trailing bytes after last value")
	}
	return c, nil
}

func writeString(buf *bytes.Buffer, s string) {
	var n [4]byte
	binary.LittleEndian.PutUint32(n[:], uint32(len(s)))
	buf.Write(n[:])
	buf.WriteString(s)
}

type decoder struct {
	data []byte
	off  int
}

func (d *decoder) fail(cause string) error {
	return &SerializationError{Offset: d.off, Cause: cause}
}

func (d *decoder) u32(what string) (uint32, error) {
	if len(d.data)-d.off < 4 {
		return 0, d.fail("truncated " + what)
	}
	v := binary.LittleEndian.Uint32(d.data[d.off:])
	d.off += 4
	return v, nil
}

func (d *decoder) bytesN(n uint32, what string) ([]byte, error) {
	if int64(n) > int64(len(d.data)-d.off) {
		return nil, d.fail(what + " length exceeds remaining bytes")
	}
	b := d.data[d.off : d.off+int(n)]
	d.off += int(n)
	return b, nil
}

func (d *decoder) str(what string) (string, error) {
	n, err := d.u32(what + " length")
	if err != nil {
		return "", err
	}
	b, err := d.bytesN(n, what)
	if err != nil {
		return "", err
	}
	for _, c := range b {
		if c == 0 {
			return "", d.fail(what + " contains NUL")
		}
	}
	return string(b), nil
}

func (d *decoder) value() (*Value, error) {
	name, err := d.str("value name")
	if err != nil {
		return nil, err
	}
	if len(d.data)-d.off < 1 {
		return nil, d.fail("truncated kind tag")
	}
	kind := Kind(d.data[d.off])
	if !validKind(kind) {
		return nil, d.fail("unknown kind tag")
	}
	d.off++

	n, err := d.u32("payload length")
	if err != nil {
		return nil, err
	}
	raw, err := d.bytesN(n, "payload")
	if err != nil {
		return nil, err
	}
	if want, fixed := kindWidth(kind); fixed && len(raw) != want {
		return nil, d.fail("payload width does not match kind")
	}
	if kind == KindString {
		for _, c := range raw {
			if c == 0 {
				return nil, d.fail("string payload contains NUL")
			}
		}
	}
	payload := make([]byte, len(raw))
	copy(payload, raw)
	return &Value{name: name, kind: kind, payload: payload}, nil
}

// kindWidth returns the mandatory payload width for fixed-width kinds.
func kindWidth(k Kind) (int, bool) {
	switch k {
	case KindNull:
		return 0, true
	case KindBool:
		return 1, true
	case KindInt16, KindUint16:
		return 2, true
	case KindInt32, KindUint32, KindFloat32:
		return 4, true
	case KindInt64, KindUint64, KindLongLong, KindULongLong, KindFloat64:
		return 8, true
	default:
		return 0, false
	}
}
