package container

// Builder assembles a container. Header fields default to empty strings;
// values are appended in call order and serialized in that order.
type Builder struct {
	c *Container
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{c: &Container{}}
}

// Source sets the source identifier pair.
func (b *Builder) Source(id, subID string) *Builder {
	b.c.sourceID = id
	b.c.sourceSubID = subID
	return b
}

// Target sets the target identifier pair.
func (b *Builder) Target(id, subID string) *Builder {
	b.c.targetID = id
	b.c.targetSubID = subID
	return b
}

// Type sets the message type.
func (b *Builder) Type(t string) *Builder {
	b.c.messageType = t
	return b
}

// Add appends a value.
func (b *Builder) Add(v *Value) *Builder {
	b.c.values = append(b.c.values, v)
	return b
}

// Build returns the assembled container. The builder must not be reused
// afterwards.
func (b *Builder) Build() *Container {
	c := b.c
	b.c = nil
	return c
}
