package channel

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// DefaultURL is the address QUsb2Snes listens on.
const DefaultURL = "ws://localhost:23074"

// WebSocket is a Channel over a gorilla websocket connection.
type WebSocket struct {
	conn *websocket.Conn

	closeOnce sync.Once
	closeErr  error
}

// Dial connects to the usb2snes server at url.
func Dial(ctx context.Context, url string) (*WebSocket, error) {
	dialer := websocket.Dialer{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		HandshakeTimeout: 10 * time.Second,
	}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, &DialError{URL: url, Err: err}
	}
	return &WebSocket{conn: conn}, nil
}

// SendText writes a text frame.
func (w *WebSocket) SendText(data []byte) error {
	return w.write(websocket.TextMessage, data)
}

// SendBinary writes a binary frame.
func (w *WebSocket) SendBinary(data []byte) error {
	return w.write(websocket.BinaryMessage, data)
}

func (w *WebSocket) write(messageType int, data []byte) error {
	if err := w.conn.WriteMessage(messageType, data); err != nil {
		return closedOr(err)
	}
	return nil
}

// Receive reads the next frame. The context deadline becomes the read deadline;
// a read that times out leaves the connection unusable.
func (w *WebSocket) Receive(ctx context.Context) (Frame, error) {
	if err := ctx.Err(); err != nil {
		return Frame{}, err
	}

	deadline, _ := ctx.Deadline()
	if err := w.conn.SetReadDeadline(deadline); err != nil {
		return Frame{}, closedOr(err)
	}

	stop := context.AfterFunc(ctx, func() {
		_ = w.conn.SetReadDeadline(time.Unix(1, 0))
	})
	defer stop()

	messageType, data, err := w.conn.ReadMessage()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Frame{}, ctxErr
		}
		return Frame{}, closedOr(err)
	}

	switch messageType {
	case websocket.TextMessage:
		return Frame{Kind: Text, Data: data}, nil
	case websocket.BinaryMessage:
		return Frame{Kind: Binary, Data: data}, nil
	default:
		return Frame{}, fmt.Errorf("unexpected websocket message type %d", messageType)
	}
}

// Close sends a close frame and closes the underlying connection.
func (w *WebSocket) Close() error {
	w.closeOnce.Do(func() {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = w.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		w.closeErr = w.conn.Close()
	})
	return w.closeErr
}

// closedOr maps websocket close conditions to ErrClosed.
func closedOr(err error) error {
	var ce *websocket.CloseError
	if errors.As(err, &ce) || errors.Is(err, net.ErrClosed) || errors.Is(err, websocket.ErrCloseSent) {
		return fmt.Errorf("%w: %v", ErrClosed, err)
	}
	return err
}
