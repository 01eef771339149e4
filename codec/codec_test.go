package codec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ameersohail0/OpenDaVINCI/codec"
	"github.com/ameersohail0/OpenDaVINCI/errors"
	"github.com/ameersohail0/OpenDaVINCI/record"
	"github.com/ameersohail0/OpenDaVINCI/schema"
	"github.com/ameersohail0/OpenDaVINCI/testutil"
)

func beaconFactory() record.Record { return &schema.Beacon{} }

func TestEncode_BeaconWireFormat(t *testing.T) {
	data, err := codec.Encode(testutil.BeaconExample())
	require.NoError(t, err)
	assert.Equal(t, testutil.BeaconExampleBytes, data)
}

func TestDecode_BeaconWireFormat(t *testing.T) {
	b, err := codec.Decode[schema.Beacon](testutil.BeaconExampleBytes)
	require.NoError(t, err)
	assert.True(t, b.Active())
	assert.Equal(t, int32(-7), b.Code())
	assert.Equal(t, "abc", b.Label())
}

func TestRoundTrip_Shapes(t *testing.T) {
	c := codec.New()
	shapes := []record.Record{
		testutil.BeaconExample(),
		testutil.SampleExample(),
		testutil.PoseExample(),
		testutil.VehicleControlExample(12.5),
		testutil.SensorBoardDataExample(),
		&schema.Sample{},
	}

	reg := testutil.Registry(t)
	for _, r := range shapes {
		t.Run(r.LongName(), func(t *testing.T) {
			data, err := c.Encode(r)
			require.NoError(t, err)

			size, err := c.Size(r)
			require.NoError(t, err)
			assert.Equal(t, len(data), size)

			shape, ok := reg.Lookup(r.ID())
			require.True(t, ok)
			got, err := c.Decode(data, shape.Factory)
			require.NoError(t, err)
			assert.True(t, record.Equal(r, got), "decoded %s, want %s", codec.Text(got), codec.Text(r))
		})
	}
}

func TestEncode_NestedHasNoFraming(t *testing.T) {
	p := testutil.PoseExample()
	data, err := codec.Encode(p)
	require.NoError(t, err)

	// Two Vector3 of 24 bytes each, then "map" as a 4 byte length and 3 bytes.
	assert.Len(t, data, 24+24+4+3)

	pos := p.Position()
	vec, err := codec.Encode(&pos)
	require.NoError(t, err)
	assert.Equal(t, vec, data[:24])
}

func TestDecode_Truncated(t *testing.T) {
	full := testutil.BeaconExampleBytes
	for n := 0; n < len(full); n++ {
		_, err := codec.Default().Decode(full[:n], beaconFactory)
		require.Error(t, err, "prefix of %d bytes", n)
		assert.True(t, errors.Is(err, errors.ErrTruncatedInput), "prefix of %d bytes: %v", n, err)
		assert.True(t, errors.IsInvalid(err))
	}
}

func TestDecode_DropLastTwoBytes(t *testing.T) {
	data := testutil.BeaconExampleBytes[:len(testutil.BeaconExampleBytes)-2]
	_, err := codec.Decode[schema.Beacon](data)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrTruncatedInput))
	assert.True(t, errors.Is(err, errors.ErrMalformedField))

	var de *codec.DecodeError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "label", de.Field)
	assert.Equal(t, 5, de.Offset)
	assert.Equal(t, schema.BeaconLongName, de.Shape)
}

func TestDecode_CorruptPayloads(t *testing.T) {
	tests := map[string]struct {
		truncated bool
		malformed bool
	}{
		"empty":          {truncated: true},
		"bad bool":       {malformed: true},
		"short int":      {truncated: true},
		"missing text":   {truncated: true},
		"text too long":  {truncated: true, malformed: true},
		"invalid utf8":   {malformed: true},
		"trailing bytes": {malformed: true},
	}

	for name, want := range tests {
		t.Run(name, func(t *testing.T) {
			data, ok := testutil.CorruptPayloads[name]
			require.True(t, ok)

			_, err := codec.Decode[schema.Beacon](data)
			require.Error(t, err)
			assert.Equal(t, want.truncated, errors.Is(err, errors.ErrTruncatedInput), err.Error())
			assert.Equal(t, want.malformed, errors.Is(err, errors.ErrMalformedField), err.Error())
		})
	}
	assert.Len(t, testutil.CorruptPayloads, len(tests))
}

func TestDecodePrefix_ReportsConsumed(t *testing.T) {
	data := append(append([]byte{}, testutil.BeaconExampleBytes...), 0xAA, 0xBB)
	r, n, err := codec.Default().DecodePrefix(data, beaconFactory)
	require.NoError(t, err)
	assert.Equal(t, len(testutil.BeaconExampleBytes), n)
	assert.True(t, record.Equal(testutil.BeaconExample(), r))
}

func TestDecodeInto_CommitsOnlyOnSuccess(t *testing.T) {
	c := codec.Default()
	dst := schema.NewBeacon(false, 42, "keep")

	err := codec.DecodeInto(c, testutil.CorruptPayloads["missing text"], dst)
	require.Error(t, err)
	assert.True(t, record.Equal(schema.NewBeacon(false, 42, "keep"), dst))

	require.NoError(t, codec.DecodeInto(c, testutil.BeaconExampleBytes, dst))
	assert.True(t, record.Equal(testutil.BeaconExample(), dst))
}

func TestMaxTextLength(t *testing.T) {
	c := codec.New(codec.WithMaxTextLength(2))
	assert.Equal(t, uint32(2), c.MaxTextLength())

	_, err := c.Encode(schema.NewBeacon(true, 1, "abc"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrMalformedField))

	_, err = codec.DecodeAs[schema.Beacon](c, testutil.BeaconExampleBytes)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrMalformedField))
	assert.False(t, errors.Is(err, errors.ErrTruncatedInput))

	assert.Equal(t, uint32(codec.DefaultMaxTextLength), codec.New(codec.WithMaxTextLength(0)).MaxTextLength())
}

func TestNilInputs(t *testing.T) {
	_, err := codec.Encode(nil)
	assert.True(t, errors.Is(err, errors.ErrNilRecord))

	_, err = codec.Size(nil)
	assert.True(t, errors.Is(err, errors.ErrNilRecord))

	_, err = codec.Default().Decode(testutil.BeaconExampleBytes, nil)
	assert.True(t, errors.Is(err, errors.ErrNilRecord))
}

func TestTypedNilRecord(t *testing.T) {
	var b *schema.Beacon

	_, err := codec.Encode(b)
	assert.True(t, errors.Is(err, errors.ErrNilRecord))
	assert.True(t, errors.IsInvalid(err))

	dst := []byte{0x01}
	out, err := codec.Append(dst, b)
	assert.True(t, errors.Is(err, errors.ErrNilRecord))
	assert.Equal(t, dst, out)

	_, err = codec.Size(b)
	assert.True(t, errors.Is(err, errors.ErrNilRecord))

	_, err = codec.Default().Decode(testutil.BeaconExampleBytes, func() record.Record { return b })
	assert.True(t, errors.Is(err, errors.ErrNilRecord))

	assert.Equal(t, "<nil>", codec.Text(b))
}

func TestEncode_RejectsInvalidUTF8(t *testing.T) {
	_, err := codec.Encode(schema.NewBeacon(true, 1, "ok\xff"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrMalformedField))

	data, err := codec.Encode(schema.NewBeacon(true, 1, "grüße"))
	require.NoError(t, err)
	b, err := codec.Decode[schema.Beacon](data)
	require.NoError(t, err)
	assert.Equal(t, "grüße", b.Label())
}

func TestAppend_KeepsPrefix(t *testing.T) {
	dst := []byte{0xCA, 0xFE}
	out, err := codec.Default().Append(dst, testutil.BeaconExample())
	require.NoError(t, err)
	assert.Equal(t, []byte{0xCA, 0xFE}, out[:2])
	assert.Equal(t, testutil.BeaconExampleBytes, out[2:])

	out, err = codec.Append(nil, testutil.BeaconExample())
	require.NoError(t, err)
	assert.Equal(t, testutil.BeaconExampleBytes, out)
}

func TestText(t *testing.T) {
	assert.Equal(t, `Beacon(active=true, code=-7, label="abc")`, codec.Text(testutil.BeaconExample()))
	assert.Equal(t,
		`Pose(position=Vector3(x=1, y=2, z=3), rotation=Vector3(x=0, y=0, z=1.5), frame="odom")`,
		codec.Text(schema.NewPose(*schema.NewVector3(1, 2, 3), *schema.NewVector3(0, 0, 1.5), "odom")))
	assert.Equal(t, "<nil>", codec.Text(nil))
	assert.Equal(t, codec.Text(testutil.BeaconExample()), testutil.BeaconExample().String())
}
