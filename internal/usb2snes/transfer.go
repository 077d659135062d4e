package usb2snes

import (
	"context"
	"errors"
	"fmt"

	"github.com/usb2snes/usb2snes-cli/internal/channel"
	"github.com/usb2snes/usb2snes-cli/internal/protocol"
)

// maxPrealloc caps the buffer allocated up front for a binary payload.
const maxPrealloc = 1 << 20

// send encodes a command and writes it as a text frame.
func (s *session) send(op protocol.Opcode, space protocol.Space, operands ...string) error {
	frame, err := protocol.Encode(op, space, nil, operands...)
	if err != nil {
		return &CallerError{Op: op.String(), Reason: "invalid command", Err: err}
	}
	if err := s.ch.SendText(frame); err != nil {
		return &ConnectionError{Op: op.String(), Err: err}
	}
	return nil
}

// call sends a command and reads its structured reply.
func (s *session) call(ctx context.Context, op protocol.Opcode, space protocol.Space, operands ...string) (*protocol.Reply, error) {
	if err := s.send(op, space, operands...); err != nil {
		return nil, err
	}
	return s.reply(ctx, op)
}

// receive reads one frame, giving up after the configured timeout.
// The timeout restarts for every frame, so a steady transfer never expires.
func (s *session) receive(ctx context.Context) (channel.Frame, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	return s.ch.Receive(ctx)
}

// reply reads one structured reply for op. A bad reply to an op followed by
// binary data desyncs the channel, as the data arrives regardless.
func (s *session) reply(ctx context.Context, op protocol.Opcode) (*protocol.Reply, error) {
	f, err := s.receive(ctx)
	if err != nil {
		return nil, &ConnectionError{Op: op.String(), Err: err}
	}
	if f.Kind != channel.Text {
		return nil, &MalformedReplyError{
			Op:     op.String(),
			Desync: true,
			Err:    fmt.Errorf("binary frame of %d bytes where a reply was expected", len(f.Data)),
		}
	}
	reply, err := protocol.DecodeReplyFor(op, f.Data)
	if err != nil {
		return nil, &MalformedReplyError{
			Op:     op.String(),
			Desync: op.Shape().Kind == protocol.ReplySizedBinary,
			Err:    err,
		}
	}
	return reply, nil
}

// readPayload accumulates binary frames until exactly size bytes arrived,
// however the server split them.
func (s *session) readPayload(ctx context.Context, op protocol.Opcode, size uint64) ([]byte, error) {
	data := make([]byte, 0, min(size, maxPrealloc))
	for uint64(len(data)) < size {
		f, err := s.receive(ctx)
		if err != nil {
			if errors.Is(err, channel.ErrClosed) {
				return nil, &ShortReadError{Op: op.String(), Want: size, Got: uint64(len(data)), Err: err}
			}
			return nil, &ConnectionError{Op: op.String(), Err: err}
		}
		if f.Kind != channel.Binary {
			return nil, &MalformedReplyError{
				Op:     op.String(),
				Desync: true,
				Err:    fmt.Errorf("text frame after %d of %d payload bytes", len(data), size),
			}
		}
		if uint64(len(data))+uint64(len(f.Data)) > size {
			return nil, &MalformedReplyError{
				Op:     op.String(),
				Desync: true,
				Err:    fmt.Errorf("payload overran expected %d bytes", size),
			}
		}
		data = append(data, f.Data...)
	}
	return data, nil
}

func (s *session) readMemory(ctx context.Context, address, size uint32) ([]byte, error) {
	op := protocol.OpGetAddress
	err := s.send(op, protocol.SpaceSNES,
		protocol.FormatHex(uint64(address)),
		protocol.FormatHex(uint64(size)),
	)
	if err != nil {
		return nil, err
	}
	return s.readPayload(ctx, op, uint64(size))
}

func (s *session) download(ctx context.Context, path string) ([]byte, error) {
	op := protocol.OpGetFile
	reply, err := s.call(ctx, op, protocol.SpaceFile, path)
	if err != nil {
		return nil, err
	}
	size, err := protocol.ParseSize(reply.Results[0])
	if err != nil {
		// The server streams the file regardless, so its length is now unknown.
		return nil, &MalformedReplyError{Op: op.String(), Desync: true, Err: err}
	}
	if size == 0 {
		return []byte{}, nil
	}
	return s.readPayload(ctx, op, size)
}

// upload sends the PutFile command then the data in chunk-sized binary frames.
// The server acknowledges nothing. ctx is checked before every frame.
func (s *session) upload(ctx context.Context, path string, data []byte, chunk int) error {
	op := protocol.OpPutFile
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.send(op, protocol.SpaceFile, path, protocol.FormatHex(uint64(len(data)))); err != nil {
		return err
	}
	for off := 0; off < len(data); off += chunk {
		if err := ctx.Err(); err != nil {
			// The server is still waiting for the rest of the file.
			return &ConnectionError{Op: op.String(), Err: fmt.Errorf("cancelled after %d of %d bytes: %w", off, len(data), err)}
		}
		end := min(off+chunk, len(data))
		if err := s.ch.SendBinary(data[off:end]); err != nil {
			return &ConnectionError{Op: op.String(), Err: fmt.Errorf("after %d of %d bytes: %w", off, len(data), err)}
		}
	}
	return nil
}

func (s *session) list(ctx context.Context, path string) ([]DirEntry, error) {
	op := protocol.OpList
	reply, err := s.call(ctx, op, protocol.SpaceFile, path)
	if err != nil {
		return nil, err
	}
	entries, err := parseEntries(reply.Results)
	if err != nil {
		return nil, &MalformedReplyError{Op: op.String(), Err: err}
	}
	return entries, nil
}
