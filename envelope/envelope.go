// Package envelope provides the type-erased container that carries one record
// across a component boundary.
//
// An Envelope captures the record's numeric identity when it is created. That
// tag is all a receiver needs to route or drop the envelope; the payload is only
// touched by Unwrap, which refuses to hand out a record of a different shape:
//
//	env, _ := envelope.Wrap(schema.NewBeacon(true, 7, "ok"))
//	switch env.TypeID() {
//	case schema.BeaconID:
//	    b, err := envelope.Unwrap[schema.Beacon](env)
//	    ...
//	}
//
// Ownership of the wrapped record moves into the envelope. Producers must not
// keep mutating a record after wrapping it; use From to wrap a copy instead.
// Envelopes are handed from one context to the next, never shared.
package envelope

import (
	"fmt"
	"time"

	"github.com/ameersohail0/OpenDaVINCI/codec"
	"github.com/ameersohail0/OpenDaVINCI/errors"
	"github.com/ameersohail0/OpenDaVINCI/pkg/timestamp"
	"github.com/ameersohail0/OpenDaVINCI/record"
)

// Envelope holds exactly one record and its identity tag. The payload is
// immutable once wrapped; only the sent and received stamps may change.
type Envelope struct {
	typeID   uint32
	payload  record.Record
	sent     timestamp.TimeStamp
	received timestamp.TimeStamp
}

// Wrap takes ownership of r and tags the envelope with r.ID().
func Wrap(r record.Record) (*Envelope, error) {
	if record.IsNil(r) {
		return nil, errors.WrapInvalid(errors.ErrNilRecord, "Envelope", "Wrap", "check record")
	}
	return &Envelope{
		typeID:  r.ID(),
		payload: r,
	}, nil
}

// From wraps a copy of v. It cannot fail.
func From[T any, PT record.Pointer[T]](v T) *Envelope {
	owned := new(T)
	*owned = v
	p := PT(owned)
	return &Envelope{
		typeID:  p.ID(),
		payload: p,
	}
}

// TypeMismatchError is returned by Unwrap when the requested shape does not
// match the envelope's tag. It matches errors.ErrTypeMismatch.
type TypeMismatchError struct {
	Want     uint32
	WantName string
	Got      uint32
	GotName  string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("%v: envelope holds %s(%d), requested %s(%d)",
		errors.ErrTypeMismatch, e.GotName, e.Got, e.WantName, e.Want)
}

// Is makes every TypeMismatchError match errors.ErrTypeMismatch.
func (e *TypeMismatchError) Is(target error) bool {
	return target == errors.ErrTypeMismatch
}

// Unwrap returns a copy of the payload as shape T. It fails with a
// *TypeMismatchError unless the envelope's tag equals T's ID, and it never
// changes the envelope, so the caller may try another shape.
func Unwrap[T any, PT record.Pointer[T]](e *Envelope) (T, error) {
	var out T
	if e == nil {
		return out, errors.ErrNilEnvelope
	}

	want := PT(&out)
	if e.typeID != want.ID() {
		return out, e.mismatch(want)
	}
	p, ok := e.payload.(PT)
	if !ok {
		// Same tag, different Go type: two shapes claim one ID. Fail closed.
		return out, e.mismatch(want)
	}
	return *p, nil
}

func (e *Envelope) mismatch(want record.Identity) error {
	return &TypeMismatchError{
		Want:     want.ID(),
		WantName: want.LongName(),
		Got:      e.typeID,
		GotName:  e.payload.LongName(),
	}
}

// TypeID returns the identity tag. It never touches the payload.
func (e *Envelope) TypeID() uint32 {
	return e.typeID
}

// ShortName returns the payload shape's short name.
func (e *Envelope) ShortName() string {
	return e.payload.ShortName()
}

// LongName returns the payload shape's long name.
func (e *Envelope) LongName() string {
	return e.payload.LongName()
}

// StampSent records when the envelope left its producer. Last write wins.
func (e *Envelope) StampSent(ts timestamp.TimeStamp) {
	e.sent = ts
}

// StampReceived records when the envelope reached its consumer. Last write wins.
func (e *Envelope) StampReceived(ts timestamp.TimeStamp) {
	e.received = ts
}

// Sent returns the send stamp, zero if never stamped.
func (e *Envelope) Sent() timestamp.TimeStamp {
	return e.sent
}

// Received returns the receive stamp, zero if never stamped.
func (e *Envelope) Received() timestamp.TimeStamp {
	return e.received
}

// Latency returns Received minus Sent, or 0 unless both are stamped.
func (e *Envelope) Latency() time.Duration {
	return e.received.Sub(e.sent)
}

// Encode returns the payload's byte-stream form.
func (e *Envelope) Encode(c *codec.Codec) ([]byte, error) {
	return c.Encode(e.payload)
}

// AppendTo appends the payload's byte-stream form to dst.
func (e *Envelope) AppendTo(c *codec.Codec, dst []byte) ([]byte, error) {
	return c.Append(dst, e.payload)
}

// Text renders the payload for logs and monitors.
func (e *Envelope) Text() string {
	return codec.Text(e.payload)
}

// Accept runs a read-only record visitor over the payload. Visitors must not
// modify the records they are given.
func (e *Envelope) Accept(v record.Visitor) error {
	return record.Accept(e.payload, v)
}

func (e *Envelope) String() string {
	return fmt.Sprintf("Envelope{type=%s(%d) sent=%s received=%s}",
		e.payload.LongName(), e.typeID, e.sent, e.received)
}
