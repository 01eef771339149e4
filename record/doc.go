// Package record defines the contract every generated record shape implements.
//
// A record shape has a stable identity (numeric ID, short name, long name) and a
// fixed, ordered list of typed fields. Generated code exposes the fields to the rest
// of the system through a single method, VisitFields, which hands a pointer to every
// field to a FieldVisitor in declaration order:
//
//	func (s *Sample) VisitFields(v record.FieldVisitor) error {
//	    if err := v.Bool(record.Field{ID: 1, Name: "attribute1"}, &s.attribute1); err != nil {
//	        return err
//	    }
//	    return v.Text(record.Field{ID: 2, Name: "attribute2"}, &s.attribute2)
//	}
//
// Encoding, decoding, text rendering, equality and field description are all
// FieldVisitor implementations, so a shape needs no other per-type code.
//
// Records are processed as a whole with Accept, which visits a record and then
// each nested record in pre-order using the visit package.
package record
