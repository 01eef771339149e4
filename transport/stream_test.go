package transport_test

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ameersohail0/OpenDaVINCI/envelope"
	"github.com/ameersohail0/OpenDaVINCI/errors"
	"github.com/ameersohail0/OpenDaVINCI/pkg/timestamp"
	"github.com/ameersohail0/OpenDaVINCI/record"
	"github.com/ameersohail0/OpenDaVINCI/schema"
	"github.com/ameersohail0/OpenDaVINCI/testutil"
	"github.com/ameersohail0/OpenDaVINCI/transport"
)

func recordAll(t *testing.T, envs ...*envelope.Envelope) []byte {
	t.Helper()
	var buf bytes.Buffer
	rec := transport.NewRecorder(&buf, nil)
	for _, e := range envs {
		require.NoError(t, rec.Write(e))
	}
	require.NoError(t, rec.Flush())
	assert.Equal(t, uint64(len(envs)), rec.Frames())
	return buf.Bytes()
}

func TestRecorder_FrameLayout(t *testing.T) {
	env := envelope.From(*testutil.BeaconExample())
	env.StampSent(timestamp.TimeStamp(0x0102030405060708))

	data := recordAll(t, env)
	payload := testutil.BeaconExampleBytes

	require.Len(t, data, 4+4+8+len(payload))
	assert.Equal(t, uint32(4+8+len(payload)), binary.BigEndian.Uint32(data[0:4]))
	assert.Equal(t, uint32(6), binary.BigEndian.Uint32(data[4:8]))
	assert.Equal(t, uint64(0x0102030405060708), binary.BigEndian.Uint64(data[8:16]))
	assert.Equal(t, payload, data[16:])
}

func TestPlayer_RoundTrip(t *testing.T) {
	in := []*envelope.Envelope{
		envelope.From(*testutil.BeaconExample()),
		envelope.From(*testutil.PoseExample()),
		envelope.From(*testutil.SampleExample()),
		envelope.From(*testutil.SensorBoardDataExample()),
	}
	for i, e := range in {
		e.StampSent(timestamp.TimeStamp(int64(i+1) * 1000))
	}
	data := recordAll(t, in...)

	p := transport.NewPlayer(bytes.NewReader(data), nil, testutil.Registry(t))
	for i, want := range in {
		got, err := p.Next()
		require.NoError(t, err, "frame %d", i)
		assert.Equal(t, want.TypeID(), got.TypeID())
		assert.Equal(t, want.Sent(), got.Sent())
		assert.Equal(t, want.Text(), got.Text())
	}

	_, err := p.Next()
	assert.Equal(t, io.EOF, err)
	assert.Equal(t, int64(len(data)), p.Offset())
}

func TestPlayer_Truncated(t *testing.T) {
	data := recordAll(t, envelope.From(*testutil.BeaconExample()), envelope.From(*testutil.BeaconExample()))
	frame := len(data) / 2

	for _, cut := range []int{frame + 2, frame + 10, len(data) - 1} {
		p := transport.NewPlayer(bytes.NewReader(data[:cut]), nil, testutil.Registry(t))

		_, err := p.Next()
		require.NoError(t, err)

		_, err = p.Next()
		require.Error(t, err, "cut at %d", cut)
		assert.True(t, errors.Is(err, errors.ErrTruncatedInput), err.Error())
		assert.Equal(t, int64(frame), p.Offset())
	}
}

func TestPlayer_MalformedLength(t *testing.T) {
	for _, size := range []uint32{0, 11, transport.DefaultMaxFrameSize + 1} {
		var buf [4]byte
		binary.BigEndian.PutUint32(buf[:], size)

		p := transport.NewPlayer(bytes.NewReader(buf[:]), nil, testutil.Registry(t))
		_, err := p.Next()
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrMalformedField), "size %d", size)
	}
}

func TestPlayer_MalformedLengthStopsPlayback(t *testing.T) {
	var bad [4]byte
	binary.BigEndian.PutUint32(bad[:], 3)
	data := append(bad[:], recordAll(t, envelope.From(*testutil.BeaconExample()))...)

	p := transport.NewPlayer(bytes.NewReader(data), nil, testutil.Registry(t))
	for i := 0; i < 2; i++ {
		_, err := p.Next()
		require.Error(t, err, "call %d", i)
		assert.True(t, errors.Is(err, errors.ErrMalformedField), err.Error())
		assert.Equal(t, int64(0), p.Offset())
	}
}

func TestRecorder_RejectsOversizedFrame(t *testing.T) {
	var buf bytes.Buffer
	limit := uint32(12 + len(testutil.BeaconExampleBytes))
	rec := transport.NewRecorder(&buf, nil, transport.WithMaxFrameSize(limit))

	err := rec.Write(envelope.From(*schema.NewBeacon(true, -7, "abcd")))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrMalformedField))
	assert.True(t, errors.IsInvalid(err))

	require.NoError(t, rec.Write(envelope.From(*testutil.BeaconExample())))
	require.NoError(t, rec.Flush())
	assert.Equal(t, uint64(1), rec.Frames())

	p := transport.NewPlayer(bytes.NewReader(buf.Bytes()), nil, testutil.Registry(t), transport.WithMaxFrameSize(limit))
	got, err := p.Next()
	require.NoError(t, err)
	assert.Equal(t, testutil.BeaconExample().String(), got.Text())
	_, err = p.Next()
	assert.Equal(t, io.EOF, err)
}

func TestPlayer_UnknownTypeAndBadPayload(t *testing.T) {
	frame := func(id uint32, payload []byte) []byte {
		out := make([]byte, 16, 16+len(payload))
		binary.BigEndian.PutUint32(out[0:], uint32(12+len(payload)))
		binary.BigEndian.PutUint32(out[4:], id)
		return append(out, payload...)
	}

	p := transport.NewPlayer(bytes.NewReader(frame(4242, nil)), nil, testutil.Registry(t))
	_, err := p.Next()
	assert.True(t, errors.Is(err, errors.ErrUnknownType))

	p = transport.NewPlayer(bytes.NewReader(frame(6, testutil.CorruptPayloads["trailing bytes"])), nil, testutil.Registry(t))
	_, err = p.Next()
	assert.True(t, errors.Is(err, errors.ErrMalformedField))
}

func TestRecorder_RejectsNil(t *testing.T) {
	rec := transport.NewRecorder(io.Discard, nil)
	assert.True(t, errors.Is(rec.Write(nil), errors.ErrNilEnvelope))
	assert.Equal(t, uint64(0), rec.Frames())
}

func TestPlayer_PayloadEquality(t *testing.T) {
	data := recordAll(t, envelope.From(*testutil.PoseExample()))
	p := transport.NewPlayer(bytes.NewReader(data), nil, testutil.Registry(t))

	got, err := p.Next()
	require.NoError(t, err)

	pose, err := envelope.Unwrap[schema.Pose](got)
	require.NoError(t, err)
	assert.True(t, record.Equal(testutil.PoseExample(), &pose))
}
