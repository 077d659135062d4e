package usb2snes

import (
	"context"
	"encoding/json"
	"strconv"
	"testing"
	"time"

	"github.com/usb2snes/usb2snes-cli/internal/channel"
)

// fakeCommand is a command envelope as seen by the fake target.
type fakeCommand struct {
	Opcode   string
	Space    string
	Flags    []string
	Operands []string
}

// fakeTarget is an in-memory usb2snes server implementing channel.Channel.
type fakeTarget struct {
	t *testing.T

	devices []string
	info    []string
	files   map[string][]byte
	dirs    map[string][]string

	// split fragments binary replies into frames of this size; zero sends one frame.
	split int
	// truncate drops this many bytes from the end of the next binary reply.
	truncate int
	// sizeOverride replaces the GetFile size field when set.
	sizeOverride string
	// rawReply replaces the next structured reply frame when set.
	rawReply string
	// block makes Receive wait for ctx instead of reporting closure on an empty queue.
	block bool
	// onReceive runs at the start of every Receive.
	onReceive func()
	// delay holds back every queued frame, as a slow server would.
	delay time.Duration
	// onSendBinary runs after every binary frame the client sends.
	onSendBinary func()

	queue    []channel.Frame
	sent     []channel.Frame
	commands []fakeCommand
	closed   bool

	uploadPath string
	uploadSize int
	uploadBuf  []byte
}

func newFakeTarget(t *testing.T) *fakeTarget {
	t.Helper()
	return &fakeTarget{
		t:       t,
		devices: []string{"emu1"},
		info:    []string{"1.11.0", "SD2SNES", "/sd2snes/m3nu.bin"},
		files:   map[string][]byte{},
		dirs:    map[string][]string{},
	}
}

// memoryAt is the fixture content of device memory.
func memoryAt(addr uint32, size int) []byte {
	data := make([]byte, size)
	for i := range data {
		data[i] = byte((addr + uint32(i)) * 7)
	}
	return data
}

func (f *fakeTarget) reply(results ...string) {
	if f.rawReply != "" {
		f.queue = append(f.queue, channel.Frame{Kind: channel.Text, Data: []byte(f.rawReply)})
		f.rawReply = ""
		return
	}
	if results == nil {
		results = []string{}
	}
	data, err := json.Marshal(map[string][]string{"Results": results})
	if err != nil {
		f.t.Fatalf("marshal reply: %v", err)
	}
	f.queue = append(f.queue, channel.Frame{Kind: channel.Text, Data: data})
}

func (f *fakeTarget) stream(data []byte) {
	data = data[:len(data)-min(f.truncate, len(data))]
	f.truncate = 0
	if len(data) == 0 {
		return
	}
	step := f.split
	if step <= 0 {
		step = len(data)
	}
	for off := 0; off < len(data); off += step {
		end := min(off+step, len(data))
		f.queue = append(f.queue, channel.Frame{Kind: channel.Binary, Data: append([]byte(nil), data[off:end]...)})
	}
}

func (f *fakeTarget) SendText(data []byte) error {
	if f.closed {
		return channel.ErrClosed
	}
	f.sent = append(f.sent, channel.Frame{Kind: channel.Text, Data: data})

	var cmd fakeCommand
	if err := json.Unmarshal(data, &cmd); err != nil {
		f.t.Fatalf("fake target got invalid command %q: %v", data, err)
	}
	f.commands = append(f.commands, cmd)

	switch cmd.Opcode {
	case "AppVersion":
		f.reply("1.0.0")
	case "DeviceList":
		f.reply(f.devices...)
	case "Info":
		f.reply(f.info...)
	case "GetAddress":
		addr, _ := strconv.ParseUint(cmd.Operands[0], 16, 32)
		size, _ := strconv.ParseUint(cmd.Operands[1], 16, 32)
		f.stream(memoryAt(uint32(addr), int(size)))
	case "List":
		f.reply(f.dirs[cmd.Operands[0]]...)
	case "GetFile":
		content := f.files[cmd.Operands[0]]
		if f.sizeOverride != "" {
			f.reply(f.sizeOverride)
			f.sizeOverride = ""
			return nil
		}
		f.reply(strconv.FormatUint(uint64(len(content)), 16))
		f.stream(content)
	case "PutFile":
		size, _ := strconv.ParseUint(cmd.Operands[1], 16, 64)
		f.uploadPath = cmd.Operands[0]
		f.uploadSize = int(size)
		f.uploadBuf = nil
		if size == 0 {
			f.files[f.uploadPath] = []byte{}
		}
	case "Remove":
		delete(f.files, cmd.Operands[0])
	}
	return nil
}

func (f *fakeTarget) SendBinary(data []byte) error {
	if f.closed {
		return channel.ErrClosed
	}
	f.sent = append(f.sent, channel.Frame{Kind: channel.Binary, Data: append([]byte(nil), data...)})
	f.uploadBuf = append(f.uploadBuf, data...)
	if len(f.uploadBuf) == f.uploadSize {
		f.files[f.uploadPath] = f.uploadBuf
	}
	if f.onSendBinary != nil {
		f.onSendBinary()
	}
	return nil
}

func (f *fakeTarget) Receive(ctx context.Context) (channel.Frame, error) {
	if f.onReceive != nil {
		f.onReceive()
	}
	if len(f.queue) == 0 {
		if f.block {
			<-ctx.Done()
			return channel.Frame{}, ctx.Err()
		}
		return channel.Frame{}, channel.ErrClosed
	}
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return channel.Frame{}, ctx.Err()
		}
	}
	fr := f.queue[0]
	f.queue = f.queue[1:]
	return fr, nil
}

func (f *fakeTarget) Close() error {
	f.closed = true
	return nil
}

// binaryFrames returns the binary frames the client sent.
func (f *fakeTarget) binaryFrames() []channel.Frame {
	var out []channel.Frame
	for _, fr := range f.sent {
		if fr.Kind == channel.Binary {
			out = append(out, fr)
		}
	}
	return out
}

// lastCommand returns the most recent command the client sent.
func (f *fakeTarget) lastCommand() fakeCommand {
	f.t.Helper()
	if len(f.commands) == 0 {
		f.t.Fatal("no command sent")
	}
	return f.commands[len(f.commands)-1]
}
