package frame

import (
	"errors"
	"strconv"
)

var ErrEmptyMessage = errors.New("frame: empty message")

// Message is one multipart wire message. Every frame except the last
// carries the continuation flag.
type Message [][]byte

// Frame is a single message part with its continuation flag.
type Frame struct {
	Data []byte
	More bool
}

// FromStrings builds a message from string frames.
func FromStrings(parts ...string) Message {
	msg := make(Message, 0, len(parts))
	for _, p := range parts {
		msg = append(msg, []byte(p))
	}
	return msg
}

// More reports whether frame i has the continuation flag set.
func (m Message) More(i int) bool {
	return i >= 0 && i < len(m)-1
}

// Frames expands the message into frames carrying explicit flags.
func (m Message) Frames() []Frame {
	out := make([]Frame, len(m))
	for i, data := range m {
		out[i] = Frame{Data: data, More: m.More(i)}
	}
	return out
}

// Strings returns each frame as a string.
func (m Message) Strings() []string {
	out := make([]string, len(m))
	for i, data := range m {
		out[i] = string(data)
	}
	return out
}

// Clone deep-copies the message so the caller may reuse its buffers.
func (m Message) Clone() Message {
	out := make(Message, len(m))
	for i, data := range m {
		out[i] = append([]byte(nil), data...)
	}
	return out
}

// Builder accumulates frames until a frame without the continuation flag
// completes the message.
type Builder struct {
	parts Message
}

// Add appends a frame. It returns the completed message when more is false.
func (b *Builder) Add(data []byte, more bool) (Message, bool) {
	b.parts = append(b.parts, append([]byte(nil), data...))
	if more {
		return nil, false
	}
	msg := b.parts
	b.parts = nil
	return msg, true
}

// Pending reports how many frames are waiting for a final frame.
func (b *Builder) Pending() int {
	return len(b.parts)
}

// Reset drops any partially built message.
func (b *Builder) Reset() {
	b.parts = nil
}

// Reader walks a received message frame by frame.
type Reader struct {
	msg Message
	pos int
}

// NewReader positions a reader on frame 0 of msg.
func NewReader(msg Message) (*Reader, error) {
	if len(msg) == 0 {
		return nil, ErrEmptyMessage
	}
	return &Reader{msg: msg}, nil
}

// Current returns the frame under the cursor.
func (r *Reader) Current() []byte {
	return r.msg[r.pos]
}

// More reports whether the current frame has the continuation flag set.
func (r *Reader) More() bool {
	return r.msg.More(r.pos)
}

// Next advances to the following frame. It returns false if the current
// frame is the last one.
func (r *Reader) Next() ([]byte, bool) {
	if !r.More() {
		return nil, false
	}
	r.pos++
	return r.msg[r.pos], true
}

// Uint64Frame renders n as a decimal frame.
func Uint64Frame(n uint64) string {
	return strconv.FormatUint(n, 10)
}
