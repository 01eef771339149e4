package record

import (
	"github.com/ameersohail0/OpenDaVINCI/visit"
)

// Visitor processes whole records. It is called for a record and then for each
// nested record, parents before their nested records.
type Visitor interface {
	VisitRecord(r Record) (visit.Action, error)
}

// VisitorFunc adapts a function to the Visitor interface.
type VisitorFunc func(r Record) (visit.Action, error)

// VisitRecord calls f(r).
func (f VisitorFunc) VisitRecord(r Record) (visit.Action, error) {
	return f(r)
}

// Accept runs v over r and its nested records in pre-order. Returning
// visit.SkipChildren from v prevents descending into the nested records of
// that record. A failing callback aborts only that record's nested records.
func Accept(r Record, v Visitor, opts ...visit.Option) error {
	if IsNil(r) {
		return nil
	}
	return visit.Walk(node{r}, visit.VisitorFunc(func(n visit.Node) (visit.Action, error) {
		return v.VisitRecord(n.(node).Record)
	}), opts...)
}

// Nested returns the records directly nested in r, in declaration order.
func Nested(r Record) []Record {
	f := &nestedFinder{}
	_ = r.VisitFields(f)
	return f.found
}

// node adapts a Record to visit.Node. Records are pointers, so node values are
// comparable and distinct per record instance.
type node struct {
	Record
}

func (n node) Children() []visit.Node {
	nested := Nested(n.Record)
	children := make([]visit.Node, 0, len(nested))
	for _, r := range nested {
		children = append(children, node{r})
	}
	return children
}

type nestedFinder struct {
	found []Record
}

func (f *nestedFinder) Bool(Field, *bool) error       { return nil }
func (f *nestedFinder) Int8(Field, *int8) error       { return nil }
func (f *nestedFinder) Int32(Field, *int32) error     { return nil }
func (f *nestedFinder) Uint32(Field, *uint32) error   { return nil }
func (f *nestedFinder) Float32(Field, *float32) error { return nil }
func (f *nestedFinder) Float64(Field, *float64) error { return nil }
func (f *nestedFinder) Text(Field, *string) error     { return nil }

func (f *nestedFinder) Nested(_ Field, r Record) error {
	f.found = append(f.found, r)
	return nil
}
