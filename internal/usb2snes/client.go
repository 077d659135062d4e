// Package usb2snes is a synchronous client for a usb2snes server.
//
// A Client owns one channel and runs one command exchange at a time. The
// protocol carries no request IDs, so the channel lives in a one-slot lease:
// an operation takes it for its whole exchange (reply or binary transfer)
// and gives it back on return. An operation started while the slot is empty,
// including one started from inside another operation, fails with ErrBusy.
package usb2snes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/usb2snes/usb2snes-cli/internal/channel"
	"github.com/usb2snes/usb2snes-cli/internal/protocol"
)

// session is the state reachable only by the operation holding the lease.
type session struct {
	ch       channel.Channel
	timeout  time.Duration
	device   string
	name     string
	info     *DeviceInfo
	poisoned error
}

// Client is a usb2snes client bound to a single channel.
type Client struct {
	lease  chan *session
	cfg    Config
	logger *slog.Logger
}

// New creates a client that takes ownership of ch.
func New(ch channel.Channel, opts ...Option) *Client {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Devel {
		ch = channel.Traced(ch, cfg.Logger)
	}

	c := &Client{
		lease:  make(chan *session, 1),
		cfg:    cfg,
		logger: cfg.Logger,
	}
	c.lease <- &session{ch: ch, timeout: cfg.Timeout}
	return c
}

// Connect dials the server at url and returns a client owning the connection.
func Connect(ctx context.Context, url string, opts ...Option) (*Client, error) {
	ws, err := channel.Dial(ctx, url)
	if err != nil {
		return nil, &ConnectionError{Op: "connect", Err: err}
	}
	return New(ws, opts...), nil
}

// ConnectWithDevel is Connect with every frame traced to the logger.
func ConnectWithDevel(ctx context.Context, url string, opts ...Option) (*Client, error) {
	return Connect(ctx, url, append(opts, WithDevel())...)
}

var errClientClosed = errors.New("client closed")

// do runs fn with exclusive ownership of the session. op gates fn against
// the cached capability flags before anything is sent.
func (c *Client) do(ctx context.Context, op protocol.Opcode, fn func(ctx context.Context, s *session) error) error {
	var s *session
	select {
	case s = <-c.lease:
	default:
		return &CallerError{Op: op.String(), Reason: "channel in use", Err: ErrBusy}
	}
	defer func() { c.lease <- s }()

	if s.poisoned != nil {
		return fmt.Errorf("%s: %w: %w", op, ErrPoisoned, s.poisoned)
	}
	if err := guard(op, s.info); err != nil {
		return err
	}

	err := fn(ctx, s)
	if poisons(err) {
		c.logger.Warn("connection poisoned", "op", op.String(), "error", err)
		s.poisoned = err
	}
	return err
}

// Close closes the channel. Later operations fail with ErrPoisoned.
func (c *Client) Close() error {
	var s *session
	select {
	case s = <-c.lease:
	default:
		return &CallerError{Op: "close", Reason: "channel in use", Err: ErrBusy}
	}
	defer func() { c.lease <- s }()

	if errors.Is(s.poisoned, errClientClosed) {
		return nil
	}
	s.poisoned = errClientClosed
	return s.ch.Close()
}

// SetName announces the client's name. The server sends no reply to Name,
// so nothing is read back; the next command's reply cannot be mistaken for it.
func (c *Client) SetName(ctx context.Context, name string) error {
	return c.do(ctx, protocol.OpName, func(ctx context.Context, s *session) error {
		if err := s.send(protocol.OpName, protocol.SpaceNone, name); err != nil {
			return err
		}
		s.name = name
		return nil
	})
}

// AppVersion returns the server's version string.
func (c *Client) AppVersion(ctx context.Context) (string, error) {
	var version string
	err := c.do(ctx, protocol.OpAppVersion, func(ctx context.Context, s *session) error {
		reply, err := s.call(ctx, protocol.OpAppVersion, protocol.SpaceNone)
		if err != nil {
			return err
		}
		version = reply.Results[0]
		return nil
	})
	return version, err
}

// ListDevice returns the device names known to the server, in server order.
func (c *Client) ListDevice(ctx context.Context) ([]string, error) {
	var devices []string
	err := c.do(ctx, protocol.OpDeviceList, func(ctx context.Context, s *session) error {
		reply, err := s.call(ctx, protocol.OpDeviceList, protocol.SpaceNone)
		if err != nil {
			return err
		}
		devices = reply.Results
		return nil
	})
	return devices, err
}

// Attach selects the device later commands are sent to, replacing any
// previous attachment and dropping its cached Info. Whether the device was
// enumerated is not checked here.
func (c *Client) Attach(ctx context.Context, device string) error {
	if device == "" {
		return &CallerError{Op: protocol.OpAttach.String(), Reason: "empty device name"}
	}
	return c.do(ctx, protocol.OpAttach, func(ctx context.Context, s *session) error {
		if err := s.send(protocol.OpAttach, protocol.SpaceSNES, device); err != nil {
			return err
		}
		s.device = device
		s.info = nil
		c.logger.Info("attached", "device", device)
		return nil
	})
}

// Info fetches the attached device's info and caches it for capability checks.
func (c *Client) Info(ctx context.Context) (*DeviceInfo, error) {
	var info *DeviceInfo
	err := c.do(ctx, protocol.OpInfo, func(ctx context.Context, s *session) error {
		reply, err := s.call(ctx, protocol.OpInfo, protocol.SpaceSNES)
		if err != nil {
			return err
		}
		info = parseInfo(reply.Results)
		s.info = info
		return nil
	})
	return info, err
}

// Menu returns the device to its menu.
func (c *Client) Menu(ctx context.Context) error {
	return c.fireAndForget(ctx, protocol.OpMenu, protocol.SpaceSNES)
}

// Reset resets the running game.
func (c *Client) Reset(ctx context.Context) error {
	return c.fireAndForget(ctx, protocol.OpReset, protocol.SpaceSNES)
}

// Boot boots the ROM at path on the device.
func (c *Client) Boot(ctx context.Context, path string) error {
	if path == "" {
		return &CallerError{Op: protocol.OpBoot.String(), Reason: "empty path"}
	}
	return c.fireAndForget(ctx, protocol.OpBoot, protocol.SpaceSNES, path)
}

// RemovePath deletes a file or an empty directory on the device.
func (c *Client) RemovePath(ctx context.Context, path string) error {
	if path == "" {
		return &CallerError{Op: protocol.OpRemove.String(), Reason: "empty path"}
	}
	return c.fireAndForget(ctx, protocol.OpRemove, protocol.SpaceFile, path)
}

func (c *Client) fireAndForget(ctx context.Context, op protocol.Opcode, space protocol.Space, operands ...string) error {
	return c.do(ctx, op, func(ctx context.Context, s *session) error {
		return s.send(op, space, operands...)
	})
}

// GetAddress reads size bytes of device memory starting at address.
func (c *Client) GetAddress(ctx context.Context, address uint32, size uint32) ([]byte, error) {
	if size == 0 {
		return nil, &CallerError{Op: protocol.OpGetAddress.String(), Reason: "size must be greater than zero"}
	}
	var data []byte
	err := c.do(ctx, protocol.OpGetAddress, func(ctx context.Context, s *session) error {
		if err := guardRead(address, s.info); err != nil {
			return err
		}
		var err error
		data, err = s.readMemory(ctx, address, size)
		return err
	})
	return data, err
}

// Ls lists a remote directory in the order the device returns it.
func (c *Client) Ls(ctx context.Context, path string) ([]DirEntry, error) {
	var entries []DirEntry
	err := c.do(ctx, protocol.OpList, func(ctx context.Context, s *session) error {
		var err error
		entries, err = s.list(ctx, path)
		return err
	})
	return entries, err
}

// GetFile downloads a remote file.
func (c *Client) GetFile(ctx context.Context, path string) ([]byte, error) {
	if path == "" {
		return nil, &CallerError{Op: protocol.OpGetFile.String(), Reason: "empty path"}
	}
	var data []byte
	err := c.do(ctx, protocol.OpGetFile, func(ctx context.Context, s *session) error {
		var err error
		data, err = s.download(ctx, path)
		return err
	})
	return data, err
}

// SendFile writes data to a remote file, replacing it if present. A failure
// or cancellation of ctx partway leaves the remote file in an undefined state
// and the client unusable. The receive timeout does not apply, as nothing is
// read back.
func (c *Client) SendFile(ctx context.Context, path string, data []byte) error {
	if path == "" {
		return &CallerError{Op: protocol.OpPutFile.String(), Reason: "empty path"}
	}
	return c.do(ctx, protocol.OpPutFile, func(ctx context.Context, s *session) error {
		if err := s.upload(ctx, path, data, c.cfg.ChunkSize); err != nil {
			return err
		}
		c.logger.Info("uploaded", "path", path, "bytes", len(data))
		return nil
	})
}
