package codec

import (
	"encoding/binary"
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/ameersohail0/OpenDaVINCI/errors"
	"github.com/ameersohail0/OpenDaVINCI/record"
)

// ByteOrder is the byte order of every fixed-width field.
var ByteOrder = binary.BigEndian

// DefaultMaxTextLength bounds a single text field.
const DefaultMaxTextLength = 16 << 20

// Codec encodes and decodes records. The zero value is not usable; use New.
// A Codec is immutable and safe for concurrent use.
type Codec struct {
	maxTextLength uint32
}

// Option configures a Codec.
type Option func(*Codec)

// WithMaxTextLength limits the byte length of text fields on both encode and decode.
func WithMaxTextLength(n uint32) Option {
	return func(c *Codec) {
		if n > 0 {
			c.maxTextLength = n
		}
	}
}

// New creates a Codec.
func New(opts ...Option) *Codec {
	c := &Codec{maxTextLength: DefaultMaxTextLength}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// MaxTextLength returns the configured text field limit.
func (c *Codec) MaxTextLength() uint32 {
	return c.maxTextLength
}

var defaultCodec = New()

// Default returns the package-level codec used by the helper functions.
func Default() *Codec {
	return defaultCodec
}

// Encode returns the byte-stream form of r.
func (c *Codec) Encode(r record.Record) ([]byte, error) {
	return c.Append(nil, r)
}

// Append appends the byte-stream form of r to dst.
func (c *Codec) Append(dst []byte, r record.Record) ([]byte, error) {
	if record.IsNil(r) {
		return dst, errors.WrapInvalid(errors.ErrNilRecord, "Codec", "Encode", "check record")
	}
	e := &encoder{buf: dst, max: c.maxTextLength}
	if err := r.VisitFields(e); err != nil {
		return dst, errors.WrapInvalid(err, "Codec", "Encode", "encode "+r.LongName())
	}
	return e.buf, nil
}

// Size returns the number of bytes Encode produces for r.
func (c *Codec) Size(r record.Record) (int, error) {
	if record.IsNil(r) {
		return 0, errors.WrapInvalid(errors.ErrNilRecord, "Codec", "Size", "check record")
	}
	s := &sizer{}
	if err := r.VisitFields(s); err != nil {
		return 0, errors.WrapInvalid(err, "Codec", "Size", "size "+r.LongName())
	}
	return s.n, nil
}

// Decode reads a record created by factory from data. The whole of data must
// be consumed; extra bytes are reported as a malformed record.
func (c *Codec) Decode(data []byte, factory func() record.Record) (record.Record, error) {
	r, n, err := c.DecodePrefix(data, factory)
	if err != nil {
		return nil, err
	}
	if n != len(data) {
		derr := &DecodeError{Shape: r.LongName(), Offset: n, Need: n, Have: len(data), err: errTrailing}
		return nil, errors.WrapInvalid(derr, "Codec", "Decode", "decode "+r.LongName())
	}
	return r, nil
}

// DecodePrefix reads one record from the front of data and returns it together
// with the number of bytes consumed.
func (c *Codec) DecodePrefix(data []byte, factory func() record.Record) (record.Record, int, error) {
	if factory == nil {
		return nil, 0, errors.WrapInvalid(errors.ErrNilRecord, "Codec", "Decode", "check factory")
	}
	scratch := factory()
	if record.IsNil(scratch) {
		return nil, 0, errors.WrapInvalid(errors.ErrNilRecord, "Codec", "Decode", "create scratch record")
	}
	d := &decoder{data: data, shape: scratch.LongName(), max: c.maxTextLength}
	if err := scratch.VisitFields(d); err != nil {
		return nil, 0, errors.WrapInvalid(err, "Codec", "Decode", "decode "+scratch.LongName())
	}
	return scratch, d.off, nil
}

// DecodeAs decodes data as the shape T using c.
func DecodeAs[T any, PT record.Pointer[T]](c *Codec, data []byte) (PT, error) {
	r, err := c.Decode(data, func() record.Record { return PT(new(T)) })
	if err != nil {
		return nil, err
	}
	return r.(PT), nil
}

// DecodeInto decodes data as the shape of dst and overwrites *dst only on success.
func DecodeInto[T any, PT record.Pointer[T]](c *Codec, data []byte, dst PT) error {
	r, err := DecodeAs[T, PT](c, data)
	if err != nil {
		return err
	}
	*dst = *r
	return nil
}

// Encode encodes r with the default codec.
func Encode(r record.Record) ([]byte, error) {
	return defaultCodec.Encode(r)
}

// Append appends r to dst with the default codec.
func Append(dst []byte, r record.Record) ([]byte, error) {
	return defaultCodec.Append(dst, r)
}

// Size returns the encoded size of r with the default codec.
func Size(r record.Record) (int, error) {
	return defaultCodec.Size(r)
}

// Decode decodes data as the shape T with the default codec.
func Decode[T any, PT record.Pointer[T]](data []byte) (PT, error) {
	return DecodeAs[T, PT](defaultCodec, data)
}

type encoder struct {
	buf []byte
	max uint32
}

func (e *encoder) Bool(_ record.Field, v *bool) error {
	if *v {
		e.buf = append(e.buf, 1)
	} else {
		e.buf = append(e.buf, 0)
	}
	return nil
}

func (e *encoder) Int8(_ record.Field, v *int8) error {
	e.buf = append(e.buf, byte(*v))
	return nil
}

func (e *encoder) Int32(_ record.Field, v *int32) error {
	e.buf = ByteOrder.AppendUint32(e.buf, uint32(*v))
	return nil
}

func (e *encoder) Uint32(_ record.Field, v *uint32) error {
	e.buf = ByteOrder.AppendUint32(e.buf, *v)
	return nil
}

func (e *encoder) Float32(_ record.Field, v *float32) error {
	e.buf = ByteOrder.AppendUint32(e.buf, math.Float32bits(*v))
	return nil
}

func (e *encoder) Float64(_ record.Field, v *float64) error {
	e.buf = ByteOrder.AppendUint64(e.buf, math.Float64bits(*v))
	return nil
}

func (e *encoder) Text(f record.Field, v *string) error {
	if uint64(len(*v)) > uint64(e.max) {
		return fmt.Errorf("%w: text field %q is %d bytes, limit %d", errors.ErrMalformedField, f.Name, len(*v), e.max)
	}
	if !utf8.ValidString(*v) {
		return fmt.Errorf("%w: text field %q is not valid UTF-8", errors.ErrMalformedField, f.Name)
	}
	e.buf = ByteOrder.AppendUint32(e.buf, uint32(len(*v)))
	e.buf = append(e.buf, *v...)
	return nil
}

func (e *encoder) Nested(_ record.Field, r record.Record) error {
	return r.VisitFields(e)
}

type sizer struct {
	n int
}

func (s *sizer) Bool(record.Field, *bool) error       { s.n++; return nil }
func (s *sizer) Int8(record.Field, *int8) error       { s.n++; return nil }
func (s *sizer) Int32(record.Field, *int32) error     { s.n += 4; return nil }
func (s *sizer) Uint32(record.Field, *uint32) error   { s.n += 4; return nil }
func (s *sizer) Float32(record.Field, *float32) error { s.n += 4; return nil }
func (s *sizer) Float64(record.Field, *float64) error { s.n += 8; return nil }
func (s *sizer) Text(_ record.Field, v *string) error { s.n += 4 + len(*v); return nil }

func (s *sizer) Nested(_ record.Field, r record.Record) error {
	return r.VisitFields(s)
}
