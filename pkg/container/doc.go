/*
Package container implements Burrow's message type: an addressed, typed
value tree with an exact binary round-trip.

A container carries a source/target header, a message type used as the
routing key, and an ordered list of named, typed values. Containers are the
payload of jobs and the currency of the topic router. The wire format is
bit-exact: peers, disk spill files and in-memory containers all share one
representation.

# Architecture

	┌───────────────────── CONTAINER ──────────────────────────┐
	│                                                           │
	│  ┌────────────────────────────────────────────┐          │
	│  │              Header                         │          │
	│  │  source_id / source_sub_id                  │          │
	│  │  target_id / target_sub_id                  │          │
	│  │  message_type  (routing key)                │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                     │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │           Ordered Values                    │          │
	│  │  (name, kind, payload) per value            │          │
	│  │  duplicates allowed; order preserved        │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                     │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │            Wire Format                      │          │
	│  │  5 × length-prefixed header strings         │          │
	│  │  uint32 value count                         │          │
	│  │  per value: name, 1-byte tag, length, raw   │          │
	│  │  uint32 LE prefixes, LE integers, IEEE-754  │          │
	│  └────────────────────────────────────────────┘          │
	└───────────────────────────────────────────────────────────┘

# Kinds

Each kind's wire tag is a single ASCII byte, which is also the Go Kind
value:

	'0' null       '1' bool       '2' int16      '3' uint16
	'4' int32      '5' uint32     '6' int64      '7' uint64
	'8' longlong   '9' ulonglong  'a' float32    'b' float64
	'c' bytes      'd' string     'e' container

Tags '8'/'9' carry 64-bit integers like '6'/'7' but keep their distinct
tags for peer compatibility. A container-kind payload is itself a
serialized container, nested recursively.

# Conversions

Numeric accessors convert between numeric kinds, saturating at the target
range: AsInt16 on an int64 value clamps to [-32768, 32767], AsUint64 on a
negative value yields 0. String, bytes and container accessors require
their exact kind and fail with *TypeMismatchError otherwise. ToString
renders any kind as text.

# Usage

Building and reading:

	msg := container.NewBuilder().
		Source("svc-a", "1").
		Target("svc-b", "0").
		Type("user.created").
		Add(container.String("user", "kira")).
		Add(container.Int64("ts", 1718000000)).
		Build()

	user, err := msg.String("user")

Round trip:

	raw := msg.Serialize()
	back, err := container.Deserialize(raw)
	// back.Equal(msg) == true

Reply pattern:

	reply := msg.Copy(true)
	reply.SwapHeader()
	reply.Add(container.String("script_result", out))

# Sharing

Containers pass by shared ownership between producer, queue, worker and
handler. Copy(false) shares value handles and is cheap; Copy(true)
duplicates payload buffers. Handlers must not mutate a shared container;
mutation requires a deep copy first.

# Failure Semantics

Deserialize returns *SerializationError naming the byte offset and cause
for truncation, unknown tags, width mismatches, embedded NULs and
trailing garbage. It never panics on malformed input. Scalar accessors
return *TypeMismatchError; a missing name reports the null kind as Got.

# Integration Points

This package integrates with:

  - pkg/job: container bytes are the usual job payload
  - pkg/router: message_type (or an explicit "topic" value) is the routing key
  - pkg/spool: dead letters persist the serialized container unchanged
*/
package container
