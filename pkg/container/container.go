package container

// Container is the addressed, typed message passed through the engine.
// It carries a source/target header, a message type used as the routing
// key, and an ordered list of values. Insertion order is preserved for
// serialization.
type Container struct {
	sourceID    string
	sourceSubID string
	targetID    string
	targetSubID string
	messageType string
	values      []*Value
}

// SourceID returns the source identifier.
func (c *Container) SourceID() string { return c.sourceID }

// SourceSubID returns the source sub-identifier.
func (c *Container) SourceSubID() string { return c.sourceSubID }

// TargetID returns the target identifier.
func (c *Container) TargetID() string { return c.targetID }

// TargetSubID returns the target sub-identifier.
func (c *Container) TargetSubID() string { return c.targetSubID }

// MessageType returns the message type, the default routing key.
func (c *Container) MessageType() string { return c.messageType }

// Get returns the first value with the given name.
func (c *Container) Get(name string) (*Value, bool) {
	for _, v := range c.values {
		if v.name == name {
			return v, true
		}
	}
	return nil, false
}

// Values returns every value with the given name, in insertion order.
func (c *Container) Values(name string) []*Value {
	var out []*Value
	for _, v := range c.values {
		if v.name == name {
			out = append(out, v)
		}
	}
	return out
}

// All returns every value in insertion order. The slice is shared; the
// caller must not modify it.
func (c *Container) All() []*Value {
	return c.values
}

// Len returns the number of values.
func (c *Container) Len() int { return len(c.values) }

// Add appends a value. Only use on a container this goroutine
// exclusively owns; shared containers require Copy(true) first.
func (c *Container) Add(v *Value) {
	c.values = append(c.values, v)
}

// SwapHeader exchanges the source and target pairs in place. It is its
// own inverse.
func (c *Container) SwapHeader() {
	c.sourceID, c.targetID = c.targetID, c.sourceID
	c.sourceSubID, c.targetSubID = c.targetSubID, c.sourceSubID
}

// Copy duplicates the container. With deep=false the value handles are
// shared; with deep=true every payload buffer is duplicated as well.
func (c *Container) Copy(deep bool) *Container {
	out := &Container{
		sourceID:    c.sourceID,
		sourceSubID: c.sourceSubID,
		targetID:    c.targetID,
		targetSubID: c.targetSubID,
		messageType: c.messageType,
		values:      make([]*Value, len(c.values)),
	}
	for i, v := range c.values {
		if deep {
			out.values[i] = v.clone()
		} else {
			out.values[i] = v
		}
	}
	return out
}

// Equal reports value-semantic equality of header and values.
func (c *Container) Equal(o *Container) bool {
	if c.sourceID != o.sourceID || c.sourceSubID != o.sourceSubID ||
		c.targetID != o.targetID || c.targetSubID != o.targetSubID ||
		c.messageType != o.messageType || len(c.values) != len(o.values) {
		return false
	}
	for i := range c.values {
		if !c.values[i].Equal(o.values[i]) {
			return false
		}
	}
	return true
}

// Scalar accessors. Each looks up the first value with the given name
// and converts it, failing with *TypeMismatchError on an incompatible
// kind; a missing name also yields *TypeMismatchError, with Got set to
// KindNull.

// Bool returns the named value as bool.
func (c *Container) Bool(name string) (bool, error) {
	v, ok := c.Get(name)
	if !ok {
		return false, &TypeMismatchError{Name: name, Want: KindBool, Got: KindNull}
	}
	return v.AsBool()
}

// Int16 returns the named value narrowed to int16.
func (c *Container) Int16(name string) (int16, error) {
	v, ok := c.Get(name)
	if !ok {
		return 0, &TypeMismatchError{Name: name, Want: KindInt16, Got: KindNull}
	}
	return v.AsInt16()
}

// Uint16 returns the named value narrowed to uint16.
func (c *Container) Uint16(name string) (uint16, error) {
	v, ok := c.Get(name)
	if !ok {
		return 0, &TypeMismatchError{Name: name, Want: KindUint16, Got: KindNull}
	}
	return v.AsUint16()
}

// Int32 returns the named value narrowed to int32.
func (c *Container) Int32(name string) (int32, error) {
	v, ok := c.Get(name)
	if !ok {
		return 0, &TypeMismatchError{Name: name, Want: KindInt32, Got: KindNull}
	}
	return v.AsInt32()
}

// Uint32 returns the named value narrowed to uint32.
func (c *Container) Uint32(name string) (uint32, error) {
	v, ok := c.Get(name)
	if !ok {
		return 0, &TypeMismatchError{Name: name, Want: KindUint32, Got: KindNull}
	}
	return v.AsUint32()
}

// Int64 returns the named value as int64.
func (c *Container) Int64(name string) (int64, error) {
	v, ok := c.Get(name)
	if !ok {
		return 0, &TypeMismatchError{Name: name, Want: KindInt64, Got: KindNull}
	}
	return v.AsInt64()
}

// Uint64 returns the named value as uint64.
func (c *Container) Uint64(name string) (uint64, error) {
	v, ok := c.Get(name)
	if !ok {
		return 0, &TypeMismatchError{Name: name, Want: KindUint64, Got: KindNull}
	}
	return v.AsUint64()
}

// Float32 returns the named value as float32.
func (c *Container) Float32(name string) (float32, error) {
	v, ok := c.Get(name)
	if !ok {
		return 0, &TypeMismatchError{Name: name, Want: KindFloat32, Got: KindNull}
	}
	return v.AsFloat32()
}

// Float64 returns the named value as float64.
func (c *Container) Float64(name string) (float64, error) {
	v, ok := c.Get(name)
	if !ok {
		return 0, &TypeMismatchError{Name: name, Want: KindFloat64, Got: KindNull}
	}
	return v.AsFloat64()
}

// String returns the named value, which must be of the string kind.
func (c *Container) String(name string) (string, error) {
	v, ok := c.Get(name)
	if !ok {
		return "", &TypeMismatchError{Name: name, Want: KindString, Got: KindNull}
	}
	return v.AsString()
}

// BytesValue returns the named value, which must be of the bytes kind.
func (c *Container) BytesValue(name string) ([]byte, error) {
	v, ok := c.Get(name)
	if !ok {
		return nil, &TypeMismatchError{Name: name, Want: KindBytes, Got: KindNull}
	}
	return v.AsBytes()
}

// NestedValue returns the named value decoded as a nested container.
func (c *Container) NestedValue(name string) (*Container, error) {
	v, ok := c.Get(name)
	if !ok {
		return nil, &TypeMismatchError{Name: name, Want: KindContainer, Got: KindNull}
	}
	return v.AsContainer()
}
