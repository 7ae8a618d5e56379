// Package errors provides the error taxonomy shared by the htkio packages.
//
// Every error type carries the context needed to locate the offending input
// (an id, a line number, a segment index) and unwraps to one of the sentinel
// errors below, so callers can branch with errors.Is and inspect details with
// errors.As.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	// ErrStructural indicates malformed hierarchical or tree input.
	ErrStructural = errors.New("structural error")
	// ErrRoundTrip indicates a parse-then-reserialize or flatten-then-unflatten check failed.
	ErrRoundTrip = errors.New("round trip failed")
	// ErrPrecision indicates a time resolution that cannot survive integer tick encoding.
	ErrPrecision = errors.New("insufficient precision")
	// ErrDuplicateKey indicates a key defined more than once.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrLookup indicates a reference to an unknown id or label.
	ErrLookup = errors.New("lookup failed")
	// ErrInvalidInput indicates invalid input that fits no more specific category
	ErrInvalidInput = errors.New("invalid input")
)

// StructuralError reports malformed hierarchical or tree structure.
type StructuralError struct {
	Context string // Where the problem was found (e.g., "flatten", "tree")
	Message string // Human-readable description
	Err     error  // Underlying error, if any
}

func (e *StructuralError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("%s: %s", e.Context, e.Message)
	}
	return e.Message
}

func (e *StructuralError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrStructural
}

// UnreachableNodeError reports split nodes that cannot be reached from the root.
type UnreachableNodeError struct {
	SplitIDs []int // Split ids that were never visited
}

func (e *UnreachableNodeError) Error() string {
	return fmt.Sprintf("tree: unreachable split nodes %v", e.SplitIDs)
}

func (e *UnreachableNodeError) Unwrap() error {
	return ErrStructural
}

// RoundTripError reports that re-serializing parsed data did not reproduce the input.
type RoundTripError struct {
	What     string // What was being verified (e.g., "flatten", "tree file")
	Line     int    // 1-based line of the first difference, 0 if not line based
	Expected string // Original text at Line, if any
	Got      string // Reproduced text at Line, if any
	Err      error  // Underlying error, if any
}

func (e *RoundTripError) Error() string {
	switch {
	case e.Line > 0:
		return fmt.Sprintf("%s: round trip differs at line %d: %q != %q", e.What, e.Line, e.Expected, e.Got)
	case e.Err != nil:
		return fmt.Sprintf("%s: round trip failed: %v", e.What, e.Err)
	default:
		return fmt.Sprintf("%s: round trip failed", e.What)
	}
}

func (e *RoundTripError) Unwrap() error {
	if e.Err != nil {
		return errors.Join(ErrRoundTrip, e.Err)
	}
	return ErrRoundTrip
}

// PrecisionError reports a frame period too small for the tick encoding.
type PrecisionError struct {
	FramePeriod float64 // Requested frame period in seconds
	Minimum     float64 // Smallest supported frame period
}

func (e *PrecisionError) Error() string {
	return fmt.Sprintf("frame period %g is below %g; writing alignment may be lossy", e.FramePeriod, e.Minimum)
}

func (e *PrecisionError) Unwrap() error {
	return ErrPrecision
}

// DuplicateKeyError reports a key that was defined more than once.
type DuplicateKeyError struct {
	Kind string // Kind of key (e.g., "question", "label map", "split")
	Key  string // The duplicated key
	Line int    // 1-based line of the second definition, 0 if unknown
}

func (e *DuplicateKeyError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("duplicate %s %q at line %d", e.Kind, e.Key, e.Line)
	}
	return fmt.Sprintf("duplicate %s %q", e.Kind, e.Key)
}

func (e *DuplicateKeyError) Unwrap() error {
	return ErrDuplicateKey
}

// LookupError reports a reference to an undefined id or label.
type LookupError struct {
	Kind string // Kind of key (e.g., "question", "label", "stream spec")
	Key  string // The missing key
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("unknown %s %q", e.Kind, e.Key)
}

func (e *LookupError) Unwrap() error {
	return ErrLookup
}

// IOError represents an I/O operation error with context
type IOError struct {
	Operation string // Operation being performed (e.g., "read", "write", "open")
	Path      string // File/resource path involved
	Err       error  // Underlying error
}

func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("failed to %s %s: %v", e.Operation, e.Path, e.Err)
	}
	return fmt.Sprintf("failed to %s: %v", e.Operation, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// ParseError represents a parsing error
type ParseError struct {
	Format  string // Format being parsed (e.g., "alignment", "tree file")
	Line    int    // 1-based line number, 0 if unknown
	Message string // Error details
	Err     error  // Underlying error, if any
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("failed to parse %s at line %d: %s", e.Format, e.Line, e.Message)
	}
	return fmt.Sprintf("failed to parse %s: %s", e.Format, e.Message)
}

func (e *ParseError) Unwrap() error {
	if e.Err != nil {
		return errors.Join(ErrInvalidInput, e.Err)
	}
	return ErrInvalidInput
}

// Helper functions for creating common errors

// NewStructural creates a StructuralError
func NewStructural(context, format string, args ...interface{}) *StructuralError {
	return &StructuralError{
		Context: context,
		Message: fmt.Sprintf(format, args...),
	}
}

// NewDuplicate creates a DuplicateKeyError
func NewDuplicate(kind, key string) *DuplicateKeyError {
	return &DuplicateKeyError{
		Kind: kind,
		Key:  key,
	}
}

// NewLookup creates a LookupError
func NewLookup(kind, key string) *LookupError {
	return &LookupError{
		Kind: kind,
		Key:  key,
	}
}

// NewIO creates an IOError
func NewIO(operation, path string, err error) *IOError {
	return &IOError{
		Operation: operation,
		Path:      path,
		Err:       err,
	}
}

// NewParse creates a ParseError
func NewParse(format string, line int, message string) *ParseError {
	return &ParseError{
		Format:  format,
		Line:    line,
		Message: message,
	}
}

// Wrap adds context to an error. If err is nil, returns nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf adds formatted context to an error. If err is nil, returns nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// Is wraps errors.Is for convenience
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
