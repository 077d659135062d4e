package usb2snes

import (
	"slices"

	"github.com/usb2snes/usb2snes-cli/internal/protocol"
)

// Capability is a flag reported in Info. Unknown flags are kept but never acted on.
type Capability string

const (
	NoFileCommands    Capability = "NO_FILE_CMD"
	NoControlCommands Capability = "NO_CONTROL_CMD"
	NoROMRead         Capability = "NO_ROM_READ"
)

// romEnd is the first address past the cartridge ROM in the SNES space.
const romEnd = 0xE00000

// DeviceInfo describes the attached device.
type DeviceInfo struct {
	Version string
	Type    string
	Game    string
	Flags   []Capability
}

// Has reports whether the device reported flag.
func (i *DeviceInfo) Has(flag Capability) bool {
	return slices.Contains(i.Flags, flag)
}

func parseInfo(results []string) *DeviceInfo {
	info := &DeviceInfo{
		Version: results[0],
		Type:    results[1],
		Game:    results[2],
	}
	for _, f := range results[3:] {
		info.Flags = append(info.Flags, Capability(f))
	}
	return info
}

// FileType is the type of a directory entry.
type FileType int

const (
	Dir FileType = iota
	File
)

func (t FileType) String() string {
	if t == Dir {
		return "dir"
	}
	return "file"
}

// DirEntry is one entry of a remote directory listing.
type DirEntry struct {
	Name string
	Type FileType
}

// parseEntries decodes (type, name) pairs, keeping the server's order.
func parseEntries(results []string) ([]DirEntry, error) {
	entries := make([]DirEntry, 0, len(results)/2)
	for i := 0; i+1 < len(results); i += 2 {
		var ft FileType
		switch results[i] {
		case "0":
			ft = Dir
		case "1":
			ft = File
		default:
			return nil, &protocol.MalformedError{Reason: "unknown entry type " + results[i]}
		}
		entries = append(entries, DirEntry{Name: results[i+1], Type: ft})
	}
	return entries, nil
}

// gates lists the capability flag that rules out each opcode.
var gates = map[protocol.Opcode]Capability{
	protocol.OpMenu:    NoControlCommands,
	protocol.OpReset:   NoControlCommands,
	protocol.OpBoot:    NoControlCommands,
	protocol.OpList:    NoFileCommands,
	protocol.OpGetFile: NoFileCommands,
	protocol.OpPutFile: NoFileCommands,
	protocol.OpRemove:  NoFileCommands,
}

// guard rejects op when the cached info carries its gating flag.
// Without cached info every operation is let through.
func guard(op protocol.Opcode, info *DeviceInfo) error {
	flag, gated := gates[op]
	if !gated || info == nil || !info.Has(flag) {
		return nil
	}
	return &UnsupportedError{Op: op.String(), Flag: flag}
}

// guardRead rejects a memory read that touches ROM on a device reporting NO_ROM_READ.
func guardRead(address uint32, info *DeviceInfo) error {
	if address >= romEnd || info == nil || !info.Has(NoROMRead) {
		return nil
	}
	return &UnsupportedError{Op: protocol.OpGetAddress.String(), Flag: NoROMRead}
}
