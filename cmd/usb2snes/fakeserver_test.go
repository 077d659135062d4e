package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/fatih/color"
	"github.com/gorilla/websocket"

	"github.com/usb2snes/usb2snes-cli/internal/ui"
)

// fakeServer emulates a usb2snes server over websocket.
type fakeServer struct {
	mu      sync.Mutex
	devices []string
	flags   map[string][]string
	files   map[string][]byte
	names   []string
	removed []string

	conns sync.WaitGroup
}

func newFakeServer(t *testing.T, devices ...string) (*fakeServer, string) {
	t.Helper()
	fs := &fakeServer{
		devices: devices,
		flags:   map[string][]string{},
		files:   map[string][]byte{},
	}

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fs.conns.Add(1)
		defer fs.conns.Done()
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		fs.serve(conn)
	}))
	t.Cleanup(srv.Close)

	return fs, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func (fs *fakeServer) serve(conn *websocket.Conn) {
	var (
		device     string
		uploadPath string
		uploadSize int
		uploadBuf  []byte
	)

	reply := func(results ...string) {
		if results == nil {
			results = []string{}
		}
		data, _ := json.Marshal(map[string][]string{"Results": results})
		_ = conn.WriteMessage(websocket.TextMessage, data)
	}

	for {
		mt, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		fs.mu.Lock()
		if mt == websocket.BinaryMessage {
			uploadBuf = append(uploadBuf, data...)
			if len(uploadBuf) == uploadSize {
				fs.files[uploadPath] = uploadBuf
			}
			fs.mu.Unlock()
			continue
		}

		var cmd struct {
			Opcode   string
			Operands []string
		}
		_ = json.Unmarshal(data, &cmd)
		switch cmd.Opcode {
		case "Name":
			fs.names = append(fs.names, cmd.Operands[0])
		case "AppVersion":
			reply("QUsb2Snes-0.7.22")
		case "DeviceList":
			reply(fs.devices...)
		case "Attach":
			device = cmd.Operands[0]
		case "Info":
			reply(append([]string{"1.11.0", "SD2SNES " + device, "/sd2snes/m3nu.bin"}, fs.flags[device]...)...)
		case "GetAddress":
			addr, _ := strconv.ParseUint(cmd.Operands[0], 16, 32)
			size, _ := strconv.ParseUint(cmd.Operands[1], 16, 32)
			payload := make([]byte, size)
			for i := range payload {
				payload[i] = byte(addr) + byte(i)
			}
			// Two frames to exercise reassembly.
			half := len(payload) / 2
			_ = conn.WriteMessage(websocket.BinaryMessage, payload[:half])
			_ = conn.WriteMessage(websocket.BinaryMessage, payload[half:])
		case "List":
			reply(fs.list(cmd.Operands[0])...)
		case "GetFile":
			content := fs.files[cmd.Operands[0]]
			reply(strconv.FormatInt(int64(len(content)), 16))
			for off := 0; off < len(content); off += 1024 {
				_ = conn.WriteMessage(websocket.BinaryMessage, content[off:min(off+1024, len(content))])
			}
		case "PutFile":
			size, _ := strconv.ParseUint(cmd.Operands[1], 16, 64)
			uploadPath, uploadSize, uploadBuf = cmd.Operands[0], int(size), nil
			if size == 0 {
				fs.files[uploadPath] = []byte{}
			}
		case "Remove":
			delete(fs.files, cmd.Operands[0])
			fs.removed = append(fs.removed, cmd.Operands[0])
		}
		fs.mu.Unlock()
	}
}

// list returns (type, name) pairs of the files directly under dir. Caller holds mu.
func (fs *fakeServer) list(dir string) []string {
	var names []string
	for p := range fs.files {
		if path.Dir(p) == path.Clean(dir) {
			names = append(names, path.Base(p))
		}
	}
	sort.Strings(names)
	out := []string{"0", "."}
	for _, n := range names {
		out = append(out, "1", n)
	}
	return out
}

// wait blocks until every client connection has been fully processed.
func (fs *fakeServer) wait() {
	fs.conns.Wait()
}

func (fs *fakeServer) file(p string) ([]byte, bool) {
	fs.wait()
	fs.mu.Lock()
	defer fs.mu.Unlock()
	data, ok := fs.files[p]
	return data, ok
}

// cliEnv isolates HOME and captures UI output.
func cliEnv(t *testing.T, url string) (*Globals, *bytes.Buffer) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	color.NoColor = true
	var buf bytes.Buffer
	ui.Output = &buf
	t.Cleanup(func() {
		color.NoColor = false
		ui.Output = os.Stdout
	})

	return &Globals{Server: url}, &buf
}
