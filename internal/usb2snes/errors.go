package usb2snes

import (
	"errors"
	"fmt"

	"github.com/usb2snes/usb2snes-cli/internal/protocol"
)

// ErrPoisoned is wrapped by every error returned after the connection
// lost byte alignment with the server.
var ErrPoisoned = errors.New("connection unusable")

// ConnectionError indicates the channel failed or closed unexpectedly.
type ConnectionError struct {
	Op  string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("%s: connection: %v", e.Op, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// MalformedReplyError indicates a reply did not match the opcode's expected shape.
// Desync is set when the channel's framing can no longer be trusted.
type MalformedReplyError struct {
	Op     string
	Desync bool
	Err    error
}

func (e *MalformedReplyError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *MalformedReplyError) Unwrap() error {
	return e.Err
}

// ShortReadError indicates the channel ended before a binary transfer completed.
type ShortReadError struct {
	Op   string
	Want uint64
	Got  uint64
	Err  error
}

func (e *ShortReadError) Error() string {
	return fmt.Sprintf("%s: short read: got %d of %d bytes: %v", e.Op, e.Got, e.Want, e.Err)
}

func (e *ShortReadError) Unwrap() error {
	return e.Err
}

// UnsupportedError indicates the device's capability flags rule out an operation.
// Nothing was sent.
type UnsupportedError struct {
	Op   string
	Flag Capability
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("%s: not supported by device (%s)", e.Op, e.Flag)
}

// CallerError indicates invalid arguments or misuse detected before sending.
type CallerError struct {
	Op     string
	Reason string
	Err    error
}

func (e *CallerError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

func (e *CallerError) Unwrap() error {
	return e.Err
}

// ErrBusy is wrapped in the CallerError returned when an operation is
// started while another one still owns the channel.
var ErrBusy = errors.New("another operation is in progress")

// IsConnection reports whether err is a channel failure.
func IsConnection(err error) bool {
	var ce *ConnectionError
	return errors.As(err, &ce)
}

// IsMalformedReply reports whether err indicates a malformed reply.
func IsMalformedReply(err error) bool {
	var me *MalformedReplyError
	return errors.As(err, &me)
}

// IsShortRead reports whether err indicates an incomplete binary transfer.
func IsShortRead(err error) bool {
	var se *ShortReadError
	return errors.As(err, &se)
}

// IsUnsupported reports whether err indicates a capability gate rejection.
func IsUnsupported(err error) bool {
	var ue *UnsupportedError
	return errors.As(err, &ue)
}

// IsCallerError reports whether err indicates invalid arguments or misuse.
func IsCallerError(err error) bool {
	var ce *CallerError
	return errors.As(err, &ce)
}

// IsInvalidSize reports whether err comes from an unparseable size field.
func IsInvalidSize(err error) bool {
	return protocol.IsInvalidSize(err)
}

// poisons reports whether err leaves the channel's framing ambiguous.
func poisons(err error) bool {
	if err == nil {
		return false
	}
	if IsConnection(err) || IsShortRead(err) {
		return true
	}
	var me *MalformedReplyError
	return errors.As(err, &me) && me.Desync
}
