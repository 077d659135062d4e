// Package channel provides the ordered, message-framed transport to a usb2snes server.
package channel

import (
	"context"
	"errors"
	"fmt"
)

// Kind distinguishes text frames from binary frames.
type Kind int

const (
	Text Kind = iota
	Binary
)

func (k Kind) String() string {
	if k == Binary {
		return "binary"
	}
	return "text"
}

// Frame is one message received from the server.
type Frame struct {
	Kind Kind
	Data []byte
}

// ErrClosed is returned once the channel is closed, by either side.
var ErrClosed = errors.New("channel closed")

// Channel is a bidirectional, ordered message transport.
// Receive blocks until a frame arrives, ctx is done, or the channel closes.
type Channel interface {
	SendText(data []byte) error
	SendBinary(data []byte) error
	Receive(ctx context.Context) (Frame, error)
	Close() error
}

// DialError indicates the channel could not be established.
type DialError struct {
	URL string
	Err error
}

func (e *DialError) Error() string {
	return fmt.Sprintf("dial %s: %v", e.URL, e.Err)
}

func (e *DialError) Unwrap() error {
	return e.Err
}
