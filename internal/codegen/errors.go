package codegen

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/clarlang/c2w/internal/ast"
)

// ErrorKind classifies a compile-time failure of the generator. These are
// the only errors Compile can return; none of them produce a partial
// module.
type ErrorKind int

const (
	// NotImplemented is returned for a recognized but unsupported form.
	NotImplemented ErrorKind = iota
	// InternalError indicates a generator invariant was violated.
	InternalError
	// TypeError indicates the AST disagrees with itself about a type; the
	// generator trusts the front end, so this should never happen in
	// practice and is kept only as a defensive fallback.
	TypeError
	// ArgumentCountMismatch is returned when a word receives the wrong
	// number of arguments.
	ArgumentCountMismatch
)

func (k ErrorKind) String() string {
	switch k {
	case NotImplemented:
		return "not implemented"
	case InternalError:
		return "internal error"
	case TypeError:
		return "type error"
	case ArgumentCountMismatch:
		return "argument count mismatch"
	default:
		return "unknown"
	}
}

// GeneratorError is the error type returned by every stage of Compile.
type GeneratorError struct {
	Kind     ErrorKind
	Message  string
	Location ast.Location
}

func (e *GeneratorError) Error() string {
	return fmt.Sprintf("%s: %s (at %s:%d:%d)", e.Kind, e.Message, e.Location.File, e.Location.Line, e.Location.Column)
}

func newError(kind ErrorKind, loc ast.Location, format string, args ...interface{}) error {
	return &GeneratorError{Kind: kind, Message: fmt.Sprintf(format, args...), Location: loc}
}

func notImplemented(loc ast.Location, op string) error {
	return newError(NotImplemented, loc, "word %q is not implemented", op)
}

func internalError(loc ast.Location, format string, args ...interface{}) error {
	return newError(InternalError, loc, format, args...)
}

func argumentCountMismatch(loc ast.Location, op string, want, got int) error {
	return newError(ArgumentCountMismatch, loc, "%s: expected %d argument(s), got %d", op, want, got)
}

// wrap attaches additional context to an error without discarding a
// *GeneratorError's classification, mirroring the compiler-backend
// convention of annotating errors with the enclosing function/block as they
// propagate up the call stack.
func wrap(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return errors.Wrapf(err, format, args...)
}
