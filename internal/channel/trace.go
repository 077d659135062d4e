package channel

import (
	"context"
	"fmt"
	"log/slog"
)

// maxTraceBytes bounds how much of a binary frame is logged.
const maxTraceBytes = 64

type traced struct {
	Channel
	logger *slog.Logger
}

// Traced wraps ch so that every frame sent or received is logged at debug level.
func Traced(ch Channel, logger *slog.Logger) Channel {
	return &traced{Channel: ch, logger: logger}
}

func (t *traced) SendText(data []byte) error {
	t.logger.Debug("send", "kind", Text, "frame", string(data))
	return t.Channel.SendText(data)
}

func (t *traced) SendBinary(data []byte) error {
	t.logger.Debug("send", "kind", Binary, "len", len(data), "head", head(data))
	return t.Channel.SendBinary(data)
}

func (t *traced) Receive(ctx context.Context) (Frame, error) {
	f, err := t.Channel.Receive(ctx)
	if err != nil {
		t.logger.Debug("receive failed", "error", err)
		return f, err
	}
	if f.Kind == Text {
		t.logger.Debug("receive", "kind", f.Kind, "frame", string(f.Data))
	} else {
		t.logger.Debug("receive", "kind", f.Kind, "len", len(f.Data), "head", head(f.Data))
	}
	return f, nil
}

func head(data []byte) string {
	if len(data) > maxTraceBytes {
		data = data[:maxTraceBytes]
	}
	return fmt.Sprintf("% x", data)
}
