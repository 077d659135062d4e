package protocol

// Opcode identifies one of the fixed server commands.
type Opcode int

const (
	OpAppVersion Opcode = iota
	OpName
	OpDeviceList
	OpAttach
	OpInfo
	OpMenu
	OpReset
	OpBoot
	OpGetAddress
	OpList
	OpPutFile
	OpGetFile
	OpRemove
)

// ReplyKind describes what the server sends back after a command.
type ReplyKind int

const (
	// ReplyNone: the server sends nothing back.
	ReplyNone ReplyKind = iota
	// ReplyResults: one structured reply.
	ReplyResults
	// ReplyPairs: one structured reply holding (type, name) pairs.
	ReplyPairs
	// ReplyBinary: binary frames totalling a caller-known size.
	ReplyBinary
	// ReplySizedBinary: one structured reply with a hex size, then that many binary bytes.
	ReplySizedBinary
)

// Shape is the expected reply shape of an opcode.
type Shape struct {
	Kind ReplyKind
	// MinResults is the minimum number of results in the structured reply.
	MinResults int
	// MaxResults caps the result count; zero means unbounded.
	MaxResults int
}

// Check validates a structured reply's result count against the shape.
func (s Shape) Check(n int) error {
	switch s.Kind {
	case ReplyNone, ReplyBinary:
		return &MalformedError{Reason: "unexpected structured reply"}
	case ReplyPairs:
		if n%2 != 0 {
			return &MalformedError{Reason: "odd number of results in pair list"}
		}
	}
	if n < s.MinResults {
		return &MalformedError{Reason: "too few results", Got: n, Want: s.MinResults}
	}
	if s.MaxResults > 0 && n > s.MaxResults {
		return &MalformedError{Reason: "too many results", Got: n, Want: s.MaxResults, AtMost: true}
	}
	return nil
}

type opSpec struct {
	name     string
	operands int
	shape    Shape
}

var opcodes = map[Opcode]opSpec{
	OpAppVersion: {"AppVersion", 0, Shape{Kind: ReplyResults, MinResults: 1}},
	OpName:       {"Name", 1, Shape{Kind: ReplyNone}},
	OpDeviceList: {"DeviceList", 0, Shape{Kind: ReplyResults}},
	OpAttach:     {"Attach", 1, Shape{Kind: ReplyNone}},
	OpInfo:       {"Info", 0, Shape{Kind: ReplyResults, MinResults: 3}},
	OpMenu:       {"Menu", 0, Shape{Kind: ReplyNone}},
	OpReset:      {"Reset", 0, Shape{Kind: ReplyNone}},
	OpBoot:       {"Boot", 1, Shape{Kind: ReplyNone}},
	OpGetAddress: {"GetAddress", 2, Shape{Kind: ReplyBinary}},
	OpList:       {"List", 1, Shape{Kind: ReplyPairs}},
	OpPutFile:    {"PutFile", 2, Shape{Kind: ReplyNone}},
	OpGetFile:    {"GetFile", 1, Shape{Kind: ReplySizedBinary, MinResults: 1, MaxResults: 1}},
	OpRemove:     {"Remove", 1, Shape{Kind: ReplyNone}},
}

func (op Opcode) spec() (opSpec, bool) {
	s, ok := opcodes[op]
	return s, ok
}

// String returns the opcode's wire name.
func (op Opcode) String() string {
	if s, ok := opcodes[op]; ok {
		return s.name
	}
	return "Unknown"
}

// Shape returns the reply shape expected after the opcode.
func (op Opcode) Shape() Shape {
	return opcodes[op].shape
}

// Operands returns the number of operands the opcode takes.
func (op Opcode) Operands() int {
	return opcodes[op].operands
}
