package envelope_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ameersohail0/OpenDaVINCI/codec"
	"github.com/ameersohail0/OpenDaVINCI/envelope"
	"github.com/ameersohail0/OpenDaVINCI/errors"
	"github.com/ameersohail0/OpenDaVINCI/pkg/timestamp"
	"github.com/ameersohail0/OpenDaVINCI/record"
	"github.com/ameersohail0/OpenDaVINCI/schema"
	"github.com/ameersohail0/OpenDaVINCI/testutil"
	"github.com/ameersohail0/OpenDaVINCI/visit"
)

func TestWrap_TagsWithRecordID(t *testing.T) {
	env, err := envelope.Wrap(testutil.BeaconExample())
	require.NoError(t, err)

	assert.Equal(t, schema.BeaconID, env.TypeID())
	assert.Equal(t, schema.BeaconShortName, env.ShortName())
	assert.Equal(t, schema.BeaconLongName, env.LongName())
	assert.True(t, env.Sent().IsZero())
	assert.True(t, env.Received().IsZero())
}

func TestWrap_Nil(t *testing.T) {
	env, err := envelope.Wrap(nil)
	assert.Nil(t, env)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNilRecord))
	assert.True(t, errors.IsInvalid(err))
}

func TestWrap_TypedNil(t *testing.T) {
	var b *schema.Beacon
	env, err := envelope.Wrap(b)
	assert.Nil(t, env)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNilRecord))
	assert.True(t, errors.IsInvalid(err))
}

func TestUnwrap_MatchingShape(t *testing.T) {
	env, err := envelope.Wrap(testutil.BeaconExample())
	require.NoError(t, err)

	b, err := envelope.Unwrap[schema.Beacon](env)
	require.NoError(t, err)
	assert.True(t, record.Equal(testutil.BeaconExample(), &b))
}

func TestUnwrap_MismatchThenRetry(t *testing.T) {
	env := envelope.From(*testutil.VehicleControlExample(3))

	_, err := envelope.Unwrap[schema.Beacon](env)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrTypeMismatch))

	var tm *envelope.TypeMismatchError
	require.True(t, errors.As(err, &tm))
	assert.Equal(t, schema.BeaconID, tm.Want)
	assert.Equal(t, schema.VehicleControlID, tm.Got)
	assert.Equal(t, schema.VehicleControlLongName, tm.GotName)

	// A failed unwrap leaves the envelope intact.
	vc, err := envelope.Unwrap[schema.VehicleControl](env)
	require.NoError(t, err)
	assert.Equal(t, 3.0, vc.Speed())
}

// unwrapAs unwraps env as the shape T and returns the result as a record.
func unwrapAs[T any, PT record.Pointer[T]](env *envelope.Envelope) (record.Record, error) {
	v, err := envelope.Unwrap[T, PT](env)
	if err != nil {
		return nil, err
	}
	return PT(&v), nil
}

func TestUnwrap_EveryShapePair(t *testing.T) {
	shapes := []struct {
		name   string
		value  record.Record
		unwrap func(*envelope.Envelope) (record.Record, error)
	}{
		{"Sample", testutil.SampleExample(), unwrapAs[schema.Sample]},
		{"Beacon", testutil.BeaconExample(), unwrapAs[schema.Beacon]},
		{"VehicleControl", testutil.VehicleControlExample(4), unwrapAs[schema.VehicleControl]},
		{"Vector3", schema.NewVector3(1, 2, 3), unwrapAs[schema.Vector3]},
		{"Pose", testutil.PoseExample(), unwrapAs[schema.Pose]},
		{"SensorBoardData", testutil.SensorBoardDataExample(), unwrapAs[schema.SensorBoardData]},
	}
	require.Len(t, shapes, len(schema.Shapes()))

	for _, from := range shapes {
		for _, as := range shapes {
			t.Run(from.name+"/"+as.name, func(t *testing.T) {
				env, err := envelope.Wrap(from.value)
				require.NoError(t, err)

				got, err := as.unwrap(env)
				if from.name == as.name {
					require.NoError(t, err)
					assert.True(t, record.Equal(from.value, got))
					return
				}
				require.Error(t, err)
				assert.Nil(t, got)
				assert.True(t, errors.Is(err, errors.ErrTypeMismatch))

				var tm *envelope.TypeMismatchError
				require.True(t, errors.As(err, &tm))
				assert.Equal(t, from.value.ID(), tm.Got)
				assert.Equal(t, from.value.ID(), env.TypeID())
			})
		}
	}
}

func TestUnwrap_NilEnvelope(t *testing.T) {
	_, err := envelope.Unwrap[schema.Beacon](nil)
	assert.True(t, errors.Is(err, errors.ErrNilEnvelope))
}

func TestUnwrap_ReturnsCopy(t *testing.T) {
	env := envelope.From(*schema.NewBeacon(true, 1, "one"))

	b, err := envelope.Unwrap[schema.Beacon](env)
	require.NoError(t, err)
	b.SetLabel("changed")

	again, err := envelope.Unwrap[schema.Beacon](env)
	require.NoError(t, err)
	assert.Equal(t, "one", again.Label())
}

func TestFrom_CopiesValue(t *testing.T) {
	src := *schema.NewBeacon(true, 1, "before")
	env := envelope.From(src)
	src.SetLabel("after")

	b, err := envelope.Unwrap[schema.Beacon](env)
	require.NoError(t, err)
	assert.Equal(t, "before", b.Label())
	assert.Equal(t, schema.BeaconID, env.TypeID())
}

func TestStamps(t *testing.T) {
	env := envelope.From(*testutil.BeaconExample())
	assert.Equal(t, time.Duration(0), env.Latency())

	sent := timestamp.TimeStamp(1_000_000)
	env.StampSent(sent)
	assert.Equal(t, time.Duration(0), env.Latency(), "latency needs both stamps")

	env.StampReceived(sent.Add(250 * time.Millisecond))
	assert.Equal(t, 250*time.Millisecond, env.Latency())

	// Last write wins.
	env.StampSent(sent.Add(100 * time.Millisecond))
	assert.Equal(t, 150*time.Millisecond, env.Latency())
	assert.Equal(t, sent.Add(100*time.Millisecond), env.Sent())
}

func TestEncodeAndAppend(t *testing.T) {
	env := envelope.From(*testutil.BeaconExample())

	data, err := env.Encode(codec.Default())
	require.NoError(t, err)
	assert.Equal(t, testutil.BeaconExampleBytes, data)

	out, err := env.AppendTo(codec.Default(), []byte{0x7F})
	require.NoError(t, err)
	assert.Equal(t, append([]byte{0x7F}, testutil.BeaconExampleBytes...), out)
}

func TestTextAndString(t *testing.T) {
	env := envelope.From(*testutil.BeaconExample())
	assert.Equal(t, `Beacon(active=true, code=-7, label="abc")`, env.Text())
	assert.Contains(t, env.String(), "telemetry.Beacon(6)")
}

func TestAccept_WalksPayload(t *testing.T) {
	env := envelope.From(*testutil.PoseExample())

	var names []string
	err := env.Accept(record.VisitorFunc(func(r record.Record) (visit.Action, error) {
		names = append(names, r.ShortName())
		return visit.Continue, nil
	}))
	require.NoError(t, err)
	assert.Equal(t, []string{"Pose", "Vector3", "Vector3"}, names)
}
