package container

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleContainer() *Container {
	nested := NewBuilder().
		Source("inner", "0").
		Target("outer", "1").
		Type("nested.sample").
		Add(Float64("pi", math.Pi)).
		Build()

	all := make([]byte, 256)
	for i := range all {
		all[i] = byte(i)
	}

	return NewBuilder().
		Source("svc-a", "7").
		Target("svc-b", "0").
		Type("user.created").
		Add(Null("nothing")).
		Add(Bool("ok", true)).
		Add(Int16("i16", -1234)).
		Add(Uint16("u16", 65535)).
		Add(Int32("i32", -123456)).
		Add(Uint32("u32", 4000000000)).
		Add(Int64("i64", -9000000000)).
		Add(Uint64("u64", 18000000000000000000)).
		Add(LongLong("ll", math.MinInt64)).
		Add(ULongLong("ull", math.MaxUint64)).
		Add(Float32("f32", 1.5)).
		Add(Float64("f64", -2.25)).
		Add(Bytes("blob", all)).
		Add(String("who", "kira")).
		Add(Nested("child", nested)).
		Build()
}

func TestRoundTrip(t *testing.T) {
	c := sampleContainer()
	raw := c.Serialize()

	back, err := Deserialize(raw)
	require.NoError(t, err)
	assert.True(t, c.Equal(back), "round trip must be exact")

	// Byte-exact as well: re-serializing yields identical bytes.
	assert.Equal(t, raw, back.Serialize())
}

func TestRoundTripEmpty(t *testing.T) {
	c := NewBuilder().Build()
	back, err := Deserialize(c.Serialize())
	require.NoError(t, err)
	assert.True(t, c.Equal(back))
	assert.Equal(t, 0, back.Len())
}

func TestRoundTripRandomized(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 100; trial++ {
		b := NewBuilder().
			Source(randWord(rng), randWord(rng)).
			Target(randWord(rng), randWord(rng)).
			Type(randWord(rng))
		for i := 0; i < rng.Intn(20); i++ {
			switch rng.Intn(6) {
			case 0:
				b.Add(Int64(randWord(rng), rng.Int63()-rng.Int63()))
			case 1:
				b.Add(String(randWord(rng), randWord(rng)))
			case 2:
				blob := make([]byte, rng.Intn(64))
				rng.Read(blob)
				b.Add(Bytes(randWord(rng), blob))
			case 3:
				b.Add(Float64(randWord(rng), rng.NormFloat64()))
			case 4:
				b.Add(Bool(randWord(rng), rng.Intn(2) == 0))
			case 5:
				b.Add(Null(randWord(rng)))
			}
		}
		c := b.Build()
		back, err := Deserialize(c.Serialize())
		require.NoError(t, err)
		require.True(t, c.Equal(back), "trial %d", trial)
	}
}

func randWord(rng *rand.Rand) string {
	const letters = "abcdefghijklmnopqrstuvwxyz."
	n := 1 + rng.Intn(12)
	out := make([]byte, n)
	for i := range out {
		out[i] = letters[rng.Intn(len(letters))]
	}
	return string(out)
}

func TestSwapHeaderIsInvolution(t *testing.T) {
	c := sampleContainer()
	c.SwapHeader()
	assert.Equal(t, "svc-b", c.SourceID())
	assert.Equal(t, "0", c.SourceSubID())
	assert.Equal(t, "svc-a", c.TargetID())
	assert.Equal(t, "7", c.TargetSubID())

	c.SwapHeader()
	assert.True(t, c.Equal(sampleContainer()))
}

func TestCopyDeepIsIdempotent(t *testing.T) {
	c := sampleContainer()
	first := c.Copy(true)
	second := first.Copy(true)
	assert.True(t, c.Equal(first))
	assert.True(t, first.Equal(second))
}

func TestCopyShallowSharesHandles(t *testing.T) {
	c := sampleContainer()
	shallow := c.Copy(false)
	v1, _ := c.Get("blob")
	v2, _ := shallow.Get("blob")
	assert.Same(t, v1, v2)

	deep := c.Copy(true)
	v3, _ := deep.Get("blob")
	assert.NotSame(t, v1, v3)
	assert.True(t, v1.Equal(v3))
}

func TestScalarAccessors(t *testing.T) {
	c := sampleContainer()

	ok, err := c.Bool("ok")
	require.NoError(t, err)
	assert.True(t, ok)

	i16, err := c.Int16("i16")
	require.NoError(t, err)
	assert.Equal(t, int16(-1234), i16)

	s, err := c.String("who")
	require.NoError(t, err)
	assert.Equal(t, "kira", s)

	blob, err := c.BytesValue("blob")
	require.NoError(t, err)
	assert.Len(t, blob, 256)

	child, err := c.NestedValue("child")
	require.NoError(t, err)
	pi, err := child.Float64("pi")
	require.NoError(t, err)
	assert.InDelta(t, math.Pi, pi, 1e-12)
}

func TestTypeMismatch(t *testing.T) {
	c := sampleContainer()

	_, err := c.String("blob")
	var tm *TypeMismatchError
	require.ErrorAs(t, err, &tm)
	assert.Equal(t, KindString, tm.Want)
	assert.Equal(t, KindBytes, tm.Got)

	_, err = c.Int64("who")
	require.ErrorAs(t, err, &tm)

	_, err = c.Bool("missing")
	require.ErrorAs(t, err, &tm)
}

func TestSaturatingConversions(t *testing.T) {
	big := Uint64("n", math.MaxUint64)
	i, err := big.AsInt64()
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), i)

	neg := Int64("n", -5)
	u, err := neg.AsUint64()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), u)

	wide := Int64("n", 1<<40)
	n16, err := wide.AsInt16()
	require.NoError(t, err)
	assert.Equal(t, int16(math.MaxInt16), n16)

	f := Float64("n", 3.9)
	i, err = f.AsInt64()
	require.NoError(t, err)
	assert.Equal(t, int64(3), i)

	nan := Float64("n", math.NaN())
	u, err = nan.AsUint64()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), u)
}

func TestToString(t *testing.T) {
	assert.Equal(t, "true", Bool("b", true).ToString())
	assert.Equal(t, "-42", Int32("i", -42).ToString())
	assert.Equal(t, "null", Null("n").ToString())
	assert.Equal(t, "hey", String("s", "hey").ToString())
	assert.Equal(t, "bytes(3)", Bytes("x", []byte{1, 2, 3}).ToString())
}

func TestDeserializeMalformed(t *testing.T) {
	good := sampleContainer().Serialize()

	cases := map[string][]byte{
		"empty":          {},
		"short header":   good[:3],
		"truncated body": good[:len(good)-5],
		"trailing bytes": append(append([]byte{}, good...), 0xff),
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Deserialize(raw)
			var se *SerializationError
			require.ErrorAs(t, err, &se, "input %q must fail typed", name)
		})
	}
}

func TestDeserializeUnknownTag(t *testing.T) {
	c := NewBuilder().Add(Bool("x", true)).Build()
	raw := c.Serialize()
	// Flip the tag byte of the only value to an unassigned character.
	for i := range raw {
		if raw[i] == byte(KindBool) {
			raw[i] = 'z'
			break
		}
	}
	_, err := Deserialize(raw)
	var se *SerializationError
	require.ErrorAs(t, err, &se)
	assert.Contains(t, se.Error(), "unknown kind tag")
}

func TestDeserializeHugeCount(t *testing.T) {
	// Header of five empty strings, then a value count far beyond the
	// remaining bytes.
	raw := make([]byte, 24)
	raw[20] = 0xff
	raw[21] = 0xff
	raw[22] = 0xff
	raw[23] = 0xff
	_, err := Deserialize(raw)
	var se *SerializationError
	require.ErrorAs(t, err, &se)
}

func TestValuesReturnsAllOccurrences(t *testing.T) {
	c := NewBuilder().
		Add(Int32("n", 1)).
		Add(Int32("n", 2)).
		Add(Int32("m", 3)).
		Add(Int32("n", 4)).
		Build()

	vals := c.Values("n")
	require.Len(t, vals, 3)
	first, _ := c.Int32("n")
	assert.Equal(t, int32(1), first, "scalar accessor returns first occurrence")

	got := make([]int32, 0, 3)
	for _, v := range vals {
		n, err := v.AsInt32()
		require.NoError(t, err)
		got = append(got, n)
	}
	assert.Equal(t, []int32{1, 2, 4}, got)
}
