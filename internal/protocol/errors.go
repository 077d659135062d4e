package protocol

import (
	"errors"
	"fmt"
)

// ArityError indicates a command was built with the wrong number of operands.
type ArityError struct {
	Op   Opcode
	Got  int
	Want int
}

func (e *ArityError) Error() string {
	if e.Want < 0 {
		return fmt.Sprintf("unknown opcode %d", int(e.Op))
	}
	return fmt.Sprintf("%s takes %d operands, got %d", e.Op, e.Want, e.Got)
}

// MalformedError indicates a structured reply did not have the expected shape.
// Want is a lower bound on the result count, or an upper bound when AtMost is set.
type MalformedError struct {
	Reason string
	Got    int
	Want   int
	AtMost bool
	Err    error
}

func (e *MalformedError) Error() string {
	msg := "malformed reply: " + e.Reason
	if e.Got != 0 || e.Want != 0 {
		bound := "at least"
		if e.AtMost {
			bound = "at most"
		}
		msg += fmt.Sprintf(" (got %d, want %s %d)", e.Got, bound, e.Want)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedError) Unwrap() error {
	return e.Err
}

// SizeError indicates a size field was not a valid hexadecimal number.
type SizeError struct {
	Value string
	Err   error
}

func (e *SizeError) Error() string {
	return fmt.Sprintf("invalid size %q", e.Value)
}

func (e *SizeError) Unwrap() error {
	return e.Err
}

// IsArity reports whether err is an operand arity error.
func IsArity(err error) bool {
	var ae *ArityError
	return errors.As(err, &ae)
}

// IsMalformed reports whether err indicates a malformed reply.
func IsMalformed(err error) bool {
	var me *MalformedError
	return errors.As(err, &me)
}

// IsInvalidSize reports whether err indicates an unparseable size field.
func IsInvalidSize(err error) bool {
	var se *SizeError
	return errors.As(err, &se)
}
