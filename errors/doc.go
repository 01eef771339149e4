// Package errors provides standardized error handling for the record substrate.
//
// # Overview
//
// Errors fall into three classes: Transient (temporary, retryable), Invalid
// (bad input, drop it and continue) and Fatal (stop processing). Nothing in the
// record, codec, envelope or traversal layers is fatal: a record that fails to
// decode, an unwrap against the wrong shape and a failing visitor all surface as
// Invalid values to the caller.
//
// # Wrapping
//
// All wrapping follows the format
//
//	"component.method: action failed: %w"
//
// and keeps the sentinel reachable through errors.Is:
//
//	if err := c.Decode(data, factory); err != nil {
//	    return errors.WrapInvalid(err, "Subscriber", "handle", "decode payload")
//	}
//
//	if errors.Is(err, errors.ErrTruncatedInput) {
//	    // drop the bytes, wait for the next envelope
//	}
//
// # Sentinels
//
//   - ErrTypeMismatch: Unwrap asked for a shape whose ID differs from the envelope tag
//   - ErrTruncatedInput: fewer bytes remain than the shape needs
//   - ErrMalformedField: a field's bytes are inconsistent (length prefix, bool byte, trailing data)
//   - ErrVisitorFailure: a visitor callback failed during a traversal pass
//   - ErrUnknownType, ErrDuplicateType, ErrRegistrySealed: shape registry errors
package errors
