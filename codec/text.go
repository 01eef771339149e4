package codec

import (
	"strconv"
	"strings"

	"github.com/ameersohail0/OpenDaVINCI/record"
)

// Text renders r as human-readable name/value pairs in declaration order:
//
//	Beacon(active=true, code=-7, label="abc")
//
// Nested records are rendered inline. The form is for logs and monitors only;
// there is no parser for it.
func Text(r record.Record) string {
	if record.IsNil(r) {
		return "<nil>"
	}
	var sb strings.Builder
	t := &textRenderer{sb: &sb}
	t.record(r)
	return sb.String()
}

type textRenderer struct {
	sb    *strings.Builder
	first bool
}

func (t *textRenderer) record(r record.Record) {
	t.sb.WriteString(r.ShortName())
	t.sb.WriteByte('(')
	outer := t.first
	t.first = true
	_ = r.VisitFields(t)
	t.first = outer
	t.sb.WriteByte(')')
}

func (t *textRenderer) name(f record.Field) {
	if !t.first {
		t.sb.WriteString(", ")
	}
	t.first = false
	t.sb.WriteString(f.Name)
	t.sb.WriteByte('=')
}

func (t *textRenderer) Bool(f record.Field, v *bool) error {
	t.name(f)
	t.sb.WriteString(strconv.FormatBool(*v))
	return nil
}

func (t *textRenderer) Int8(f record.Field, v *int8) error {
	t.name(f)
	t.sb.WriteString(strconv.FormatInt(int64(*v), 10))
	return nil
}

func (t *textRenderer) Int32(f record.Field, v *int32) error {
	t.name(f)
	t.sb.WriteString(strconv.FormatInt(int64(*v), 10))
	return nil
}

func (t *textRenderer) Uint32(f record.Field, v *uint32) error {
	t.name(f)
	t.sb.WriteString(strconv.FormatUint(uint64(*v), 10))
	return nil
}

func (t *textRenderer) Float32(f record.Field, v *float32) error {
	t.name(f)
	t.sb.WriteString(strconv.FormatFloat(float64(*v), 'g', -1, 32))
	return nil
}

func (t *textRenderer) Float64(f record.Field, v *float64) error {
	t.name(f)
	t.sb.WriteString(strconv.FormatFloat(*v, 'g', -1, 64))
	return nil
}

func (t *textRenderer) Text(f record.Field, v *string) error {
	t.name(f)
	t.sb.WriteString(strconv.Quote(*v))
	return nil
}

func (t *textRenderer) Nested(f record.Field, r record.Record) error {
	t.name(f)
	t.record(r)
	return nil
}
