package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorClass_String(t *testing.T) {
	tests := []struct {
		class    ErrorClass
		expected string
	}{
		{ErrorTransient, "transient"},
		{ErrorInvalid, "invalid"},
		{ErrorFatal, "fatal"},
		{ErrorClass(999), "unknown"},
	}

	for _, test := range tests {
		t.Run(test.expected, func(t *testing.T) {
			result := test.class.String()
			if result != test.expected {
				t.Errorf("expected %s, got %s", test.expected, result)
			}
		})
	}
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"connection timeout", ErrConnectionTimeout, true},
		{"connection lost", ErrConnectionLost, true},
		{"context deadline exceeded", context.DeadlineExceeded, true},
		{"context canceled", context.Canceled, true},
		{"invalid data", ErrInvalidData, false},
		{"truncated input", ErrTruncatedInput, false},
		{"timeout in message", fmt.Errorf("operation timeout occurred"), true},
		{"classified transient", &ClassifiedError{Class: ErrorTransient, Err: fmt.Errorf("test")}, true},
		{"classified fatal", &ClassifiedError{Class: ErrorFatal, Err: fmt.Errorf("test")}, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result := IsTransient(test.err)
			if result != test.expected {
				t.Errorf("expected %v, got %v for error: %v", test.expected, result, test.err)
			}
		})
	}
}

func TestIsFatal(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"invalid config", ErrInvalidConfig, true},
		{"data corrupted", ErrDataCorrupted, true},
		{"type mismatch", ErrTypeMismatch, false},
		{"visitor failure", ErrVisitorFailure, false},
		{"fatal in message", fmt.Errorf("fatal system error occurred"), true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result := IsFatal(test.err)
			if result != test.expected {
				t.Errorf("expected %v, got %v for error: %v", test.expected, result, test.err)
			}
		})
	}
}

func TestIsInvalid(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"type mismatch", ErrTypeMismatch, true},
		{"truncated input", ErrTruncatedInput, true},
		{"malformed field", ErrMalformedField, true},
		{"visitor failure", ErrVisitorFailure, true},
		{"unknown type", ErrUnknownType, true},
		{"wrapped malformed", fmt.Errorf("decode: %w", ErrMalformedField), true},
		{"connection lost", ErrConnectionLost, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result := IsInvalid(test.err)
			if result != test.expected {
				t.Errorf("expected %v, got %v for error: %v", test.expected, result, test.err)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected ErrorClass
	}{
		{"nil", nil, ErrorTransient},
		{"truncated", ErrTruncatedInput, ErrorInvalid},
		{"mismatch", ErrTypeMismatch, ErrorInvalid},
		{"connection", ErrConnectionLost, ErrorTransient},
		{"config", ErrInvalidConfig, ErrorFatal},
		{"classified fatal", WrapFatal(ErrTruncatedInput, "C", "M", "a"), ErrorFatal},
		{"unknown", errors.New("something odd"), ErrorTransient},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := Classify(test.err); got != test.expected {
				t.Errorf("expected %v, got %v", test.expected, got)
			}
		})
	}
}

func TestClassifiedError_NoMessage(t *testing.T) {
	ce := &ClassifiedError{Class: ErrorInvalid, Err: ErrMalformedField}
	if ce.Error() != ErrMalformedField.Error() {
		t.Errorf("expected underlying message, got %q", ce.Error())
	}
}

func TestWrap(t *testing.T) {
	if Wrap(nil, "Codec", "Decode", "read") != nil {
		t.Fatal("wrapping nil must return nil")
	}

	err := Wrap(ErrTruncatedInput, "Codec", "Decode", "read field")
	if !strings.HasPrefix(err.Error(), "Codec.Decode: read field failed:") {
		t.Errorf("unexpected format: %q", err.Error())
	}
	if !errors.Is(err, ErrTruncatedInput) {
		t.Error("wrapped error must keep sentinel")
	}
}

func TestWrapClassified(t *testing.T) {
	tests := []struct {
		name  string
		wrap  func(error, string, string, string) error
		class ErrorClass
	}{
		{"transient", WrapTransient, ErrorTransient},
		{"invalid", WrapInvalid, ErrorInvalid},
		{"fatal", WrapFatal, ErrorFatal},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if test.wrap(nil, "C", "M", "a") != nil {
				t.Fatal("wrapping nil must return nil")
			}
			err := test.wrap(ErrTypeMismatch, "Envelope", "Unwrap", "check tag")

			var ce *ClassifiedError
			if !errors.As(err, &ce) {
				t.Fatal("expected ClassifiedError")
			}
			if ce.Class != test.class {
				t.Errorf("expected %v, got %v", test.class, ce.Class)
			}
			if ce.Component != "Envelope" || ce.Operation != "Unwrap" {
				t.Errorf("unexpected context %s.%s", ce.Component, ce.Operation)
			}
			if !Is(err, ErrTypeMismatch) {
				t.Error("classified error must keep sentinel")
			}
		})
	}
}

func TestJoinKeepsSentinels(t *testing.T) {
	err := Join(ErrVisitorFailure, nil, ErrReentrantVisit)
	if !Is(err, ErrVisitorFailure) || !Is(err, ErrReentrantVisit) {
		t.Errorf("joined error lost a sentinel: %v", err)
	}
	if Join(nil, nil) != nil {
		t.Error("joining only nils must return nil")
	}
}
