package protocol

import (
	"encoding/json"
	"testing"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		name     string
		op       Opcode
		space    Space
		flags    []Flag
		operands []string
		want     string
	}{
		{
			name: "app version without space",
			op:   OpAppVersion,
			want: `{"Opcode":"AppVersion"}`,
		},
		{
			name:     "get address in snes space",
			op:       OpGetAddress,
			space:    SpaceSNES,
			operands: []string{"7e0000", "10"},
			want:     `{"Opcode":"GetAddress","Space":"SNES","Operands":["7e0000","10"]}`,
		},
		{
			name:     "file command uses snes space on the wire",
			op:       OpList,
			space:    SpaceFile,
			operands: []string{"/games"},
			want:     `{"Opcode":"List","Space":"SNES","Operands":["/games"]}`,
		},
		{
			name:     "flags are carried in order",
			op:       OpBoot,
			space:    SpaceSNES,
			flags:    []Flag{FlagNoResponse, FlagData64B},
			operands: []string{"/a.sfc"},
			want:     `{"Opcode":"Boot","Space":"SNES","Flags":["NORESP","DATA64B"],"Operands":["/a.sfc"]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Encode(tt.op, tt.space, tt.flags, tt.operands...)
			if err != nil {
				t.Fatalf("Encode() error = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("Encode() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestEncode_Arity(t *testing.T) {
	tests := []struct {
		name     string
		op       Opcode
		operands []string
	}{
		{"get address needs size", OpGetAddress, []string{"7e0000"}},
		{"info takes none", OpInfo, []string{"x"}},
		{"put file needs length", OpPutFile, []string{"/a"}},
		{"unknown opcode", Opcode(99), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Encode(tt.op, SpaceSNES, nil, tt.operands...)
			if !IsArity(err) {
				t.Errorf("Encode() error = %v, want arity error", err)
			}
		})
	}
}

func TestCommand_Immutable(t *testing.T) {
	operands := []string{"/games"}
	cmd, err := NewCommand(OpList, SpaceFile, nil, operands...)
	if err != nil {
		t.Fatalf("NewCommand() error = %v", err)
	}

	operands[0] = "/changed"
	got := cmd.Operands()
	got[0] = "/mutated"

	if cmd.Operands()[0] != "/games" {
		t.Errorf("Operands()[0] = %q, want %q", cmd.Operands()[0], "/games")
	}
}

func TestDecodeReply(t *testing.T) {
	t.Run("results in order", func(t *testing.T) {
		reply, err := DecodeReply([]byte(`{"Results":["a","b","c"]}`))
		if err != nil {
			t.Fatalf("DecodeReply() error = %v", err)
		}
		want := []string{"a", "b", "c"}
		if len(reply.Results) != len(want) {
			t.Fatalf("len(Results) = %d, want %d", len(reply.Results), len(want))
		}
		for i := range want {
			if reply.Results[i] != want[i] {
				t.Errorf("Results[%d] = %q, want %q", i, reply.Results[i], want[i])
			}
		}
	})

	t.Run("empty results", func(t *testing.T) {
		reply, err := DecodeReply([]byte(`{"Results":[]}`))
		if err != nil {
			t.Fatalf("DecodeReply() error = %v", err)
		}
		if len(reply.Results) != 0 {
			t.Errorf("Results = %v, want empty", reply.Results)
		}
	})

	malformed := []struct {
		name  string
		frame string
	}{
		{"not json", "hello"},
		{"missing wrapper", `{"Foo":["a"]}`},
		{"wrong type", `{"Results":"a"}`},
		{"binary garbage", "\x00\x01\x02"},
	}
	for _, tt := range malformed {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeReply([]byte(tt.frame))
			if !IsMalformed(err) {
				t.Errorf("DecodeReply() error = %v, want malformed", err)
			}
		})
	}
}

func TestDecodeReplyFor(t *testing.T) {
	tests := []struct {
		name    string
		op      Opcode
		frame   string
		wantErr bool
	}{
		{"info with flags", OpInfo, `{"Results":["1.10","SD2SNES","/m3nu.bin","NO_CONTROL_CMD"]}`, false},
		{"info too short", OpInfo, `{"Results":["1.10","SD2SNES"]}`, true},
		{"list pairs", OpList, `{"Results":["1","a.sfc","0","sub"]}`, false},
		{"list odd count", OpList, `{"Results":["1","a.sfc","0"]}`, true},
		{"get file single size", OpGetFile, `{"Results":["400"]}`, false},
		{"get file extra results", OpGetFile, `{"Results":["400","x"]}`, true},
		{"device list empty", OpDeviceList, `{"Results":[]}`, false},
		{"reply to fire-and-forget", OpReset, `{"Results":[]}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeReplyFor(tt.op, []byte(tt.frame))
			if (err != nil) != tt.wantErr {
				t.Fatalf("DecodeReplyFor() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !IsMalformed(err) {
				t.Errorf("error = %v, want malformed", err)
			}
		})
	}
}

func TestShapeCheck_ReportsViolatedBound(t *testing.T) {
	tests := []struct {
		name    string
		op      Opcode
		results int
		want    string
	}{
		{"info too short", OpInfo, 2, "malformed reply: too few results (got 2, want at least 3)"},
		{"get file extra results", OpGetFile, 2, "malformed reply: too many results (got 2, want at most 1)"},
		{"get file empty", OpGetFile, 0, "malformed reply: too few results (got 0, want at least 1)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.op.Shape().Check(tt.results)
			if err == nil {
				t.Fatal("Check() error = nil")
			}
			if err.Error() != tt.want {
				t.Errorf("Check() error = %q, want %q", err.Error(), tt.want)
			}
		})
	}
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		in      string
		want    uint64
		wantErr bool
	}{
		{"0", 0, false},
		{"1", 1, false},
		{"00000400", 1024, false},
		{"1a2B", 0x1a2b, false},
		{"", 0, true},
		{"zz", 0, true},
		{"-1", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSize(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSize(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if tt.wantErr && !IsInvalidSize(err) {
				t.Errorf("ParseSize(%q) error = %v, want size error", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseSize(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestOpcode_String(t *testing.T) {
	if got := OpGetAddress.String(); got != "GetAddress" {
		t.Errorf("String() = %q, want %q", got, "GetAddress")
	}
	if got := Opcode(99).String(); got != "Unknown" {
		t.Errorf("String() = %q, want %q", got, "Unknown")
	}
}

func TestCommand_MarshalJSON(t *testing.T) {
	cmd, err := NewCommand(OpName, SpaceNone, nil, "usb2snes-cli")
	if err != nil {
		t.Fatalf("NewCommand() error = %v", err)
	}
	data, err := json.Marshal(cmd)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if decoded["Opcode"] != "Name" {
		t.Errorf("Opcode = %v, want %q", decoded["Opcode"], "Name")
	}
	if _, ok := decoded["Space"]; ok {
		t.Errorf("Space present for SpaceNone: %v", decoded["Space"])
	}
}
