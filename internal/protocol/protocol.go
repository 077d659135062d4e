// Package protocol defines the usb2snes command envelope and its structured replies.
package protocol

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Space selects the address space a command operates on.
type Space int

const (
	SpaceNone Space = iota
	SpaceSNES
	SpaceFile
)

// wire returns the value sent in the Space field, or "" when omitted.
// The server ignores the space of file commands but expects "SNES" there.
func (s Space) wire() string {
	switch s {
	case SpaceSNES, SpaceFile:
		return "SNES"
	default:
		return ""
	}
}

func (s Space) String() string {
	switch s {
	case SpaceSNES:
		return "snes"
	case SpaceFile:
		return "file"
	default:
		return "none"
	}
}

// Flag is a command modifier understood by the server.
type Flag string

const (
	FlagNoResponse Flag = "NORESP"
	FlagData64B    Flag = "DATA64B"
)

// Command is an immutable command envelope.
type Command struct {
	op       Opcode
	space    Space
	flags    []Flag
	operands []string
}

// Opcode returns the command's opcode.
func (c *Command) Opcode() Opcode { return c.op }

// Operands returns a copy of the command's operands.
func (c *Command) Operands() []string { return append([]string(nil), c.operands...) }

// envelope is the JSON shape of a command on the wire.
type envelope struct {
	Opcode   string   `json:"Opcode"`
	Space    string   `json:"Space,omitempty"`
	Flags    []string `json:"Flags,omitempty"`
	Operands []string `json:"Operands,omitempty"`
}

// NewCommand builds a command after checking the opcode's operand arity.
func NewCommand(op Opcode, space Space, flags []Flag, operands ...string) (*Command, error) {
	spec, ok := op.spec()
	if !ok {
		return nil, &ArityError{Op: op, Got: len(operands), Want: -1}
	}
	if len(operands) != spec.operands {
		return nil, &ArityError{Op: op, Got: len(operands), Want: spec.operands}
	}
	return &Command{
		op:       op,
		space:    space,
		flags:    append([]Flag(nil), flags...),
		operands: append([]string(nil), operands...),
	}, nil
}

// Encode builds the command and serializes it to a text frame.
func Encode(op Opcode, space Space, flags []Flag, operands ...string) ([]byte, error) {
	cmd, err := NewCommand(op, space, flags, operands...)
	if err != nil {
		return nil, err
	}
	return cmd.MarshalJSON()
}

// MarshalJSON implements json.Marshaler.
func (c *Command) MarshalJSON() ([]byte, error) {
	env := envelope{
		Opcode:   c.op.String(),
		Space:    c.space.wire(),
		Operands: c.operands,
	}
	for _, f := range c.flags {
		env.Flags = append(env.Flags, string(f))
	}
	return json.Marshal(env)
}

// Reply is a structured reply: an ordered list of string results.
type Reply struct {
	Results []string `json:"Results"`
}

// DecodeReply parses a text frame into a structured reply.
func DecodeReply(frame []byte) (*Reply, error) {
	var raw struct {
		Results *[]string `json:"Results"`
	}
	if err := json.Unmarshal(frame, &raw); err != nil {
		return nil, &MalformedError{Reason: "not a JSON reply", Err: err}
	}
	if raw.Results == nil {
		return nil, &MalformedError{Reason: "missing Results field"}
	}
	return &Reply{Results: *raw.Results}, nil
}

// DecodeReplyFor parses a text frame and checks it against op's reply shape.
func DecodeReplyFor(op Opcode, frame []byte) (*Reply, error) {
	reply, err := DecodeReply(frame)
	if err != nil {
		return nil, err
	}
	if err := op.Shape().Check(len(reply.Results)); err != nil {
		return nil, fmt.Errorf("%s reply: %w", op, err)
	}
	return reply, nil
}

// FormatHex formats n as the lowercase hexadecimal operand the server expects.
func FormatHex(n uint64) string {
	return strconv.FormatUint(n, 16)
}

// ParseSize parses a hexadecimal size field.
func ParseSize(s string) (uint64, error) {
	n, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, &SizeError{Value: s, Err: err}
	}
	return n, nil
}
