package codec

import (
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/ameersohail0/OpenDaVINCI/errors"
	"github.com/ameersohail0/OpenDaVINCI/record"
)

var (
	errTrailing   = fmt.Errorf("%w: trailing bytes after record", errors.ErrMalformedField)
	errBadBool    = fmt.Errorf("%w: bool byte is neither 0 nor 1", errors.ErrMalformedField)
	errTextLimit  = fmt.Errorf("%w: text longer than limit", errors.ErrMalformedField)
	errTextUTF8   = fmt.Errorf("%w: text is not valid UTF-8", errors.ErrMalformedField)
	errTextLength = fmt.Errorf("%w: text length exceeds remaining input: %w", errors.ErrMalformedField, errors.ErrTruncatedInput)
)

// DecodeError describes where decoding stopped. It unwraps to
// errors.ErrTruncatedInput and/or errors.ErrMalformedField.
type DecodeError struct {
	Shape  string // long name of the record being decoded
	Field  string // field being read, empty for record-level problems
	Offset int    // byte offset where the field starts
	Need   int    // bytes the field requires
	Have   int    // bytes remaining at Offset
	err    error
}

func (e *DecodeError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("decode %s at offset %d: %v", e.Shape, e.Offset, e.err)
	}
	return fmt.Sprintf("decode %s field %q at offset %d (need %d, have %d): %v",
		e.Shape, e.Field, e.Offset, e.Need, e.Have, e.err)
}

// Unwrap returns the classifying sentinel chain.
func (e *DecodeError) Unwrap() error {
	return e.err
}

// decoder reads fields in declaration order from data. It writes through the
// field pointers of a scratch record only.
type decoder struct {
	data  []byte
	off   int
	shape string
	max   uint32
}

func (d *decoder) remaining() int {
	return len(d.data) - d.off
}

func (d *decoder) take(f record.Field, n int) ([]byte, error) {
	if d.remaining() < n {
		return nil, &DecodeError{
			Shape: d.shape, Field: f.Name, Offset: d.off,
			Need: n, Have: d.remaining(), err: errors.ErrTruncatedInput,
		}
	}
	b := d.data[d.off : d.off+n]
	d.off += n
	return b, nil
}

func (d *decoder) Bool(f record.Field, v *bool) error {
	start := d.off
	b, err := d.take(f, 1)
	if err != nil {
		return err
	}
	switch b[0] {
	case 0:
		*v = false
	case 1:
		*v = true
	default:
		return &DecodeError{Shape: d.shape, Field: f.Name, Offset: start, Need: 1, Have: 1, err: errBadBool}
	}
	return nil
}

func (d *decoder) Int8(f record.Field, v *int8) error {
	b, err := d.take(f, 1)
	if err != nil {
		return err
	}
	*v = int8(b[0])
	return nil
}

func (d *decoder) Int32(f record.Field, v *int32) error {
	b, err := d.take(f, 4)
	if err != nil {
		return err
	}
	*v = int32(ByteOrder.Uint32(b))
	return nil
}

func (d *decoder) Uint32(f record.Field, v *uint32) error {
	b, err := d.take(f, 4)
	if err != nil {
		return err
	}
	*v = ByteOrder.Uint32(b)
	return nil
}

func (d *decoder) Float32(f record.Field, v *float32) error {
	b, err := d.take(f, 4)
	if err != nil {
		return err
	}
	*v = math.Float32frombits(ByteOrder.Uint32(b))
	return nil
}

func (d *decoder) Float64(f record.Field, v *float64) error {
	b, err := d.take(f, 8)
	if err != nil {
		return err
	}
	*v = math.Float64frombits(ByteOrder.Uint64(b))
	return nil
}

func (d *decoder) Text(f record.Field, v *string) error {
	start := d.off
	b, err := d.take(f, 4)
	if err != nil {
		return err
	}
	n := ByteOrder.Uint32(b)
	if uint64(n) > uint64(d.remaining()) {
		return &DecodeError{Shape: d.shape, Field: f.Name, Offset: start, Need: 4 + int(n), Have: 4 + d.remaining(), err: errTextLength}
	}
	if n > d.max {
		return &DecodeError{Shape: d.shape, Field: f.Name, Offset: start, Need: 4 + int(n), Have: 4 + d.remaining(), err: errTextLimit}
	}
	raw := d.data[d.off : d.off+int(n)]
	if !utf8.Valid(raw) {
		return &DecodeError{Shape: d.shape, Field: f.Name, Offset: start, Need: 4 + int(n), Have: 4 + d.remaining(), err: errTextUTF8}
	}
	*v = string(raw)
	d.off += int(n)
	return nil
}

func (d *decoder) Nested(_ record.Field, r record.Record) error {
	outer := d.shape
	d.shape = r.LongName()
	err := r.VisitFields(d)
	d.shape = outer
	return err
}
