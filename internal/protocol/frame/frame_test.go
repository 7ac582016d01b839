package frame

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMessageFlags(t *testing.T) {
	msg := FromStrings("moo", "cow")
	frames := msg.Frames()
	require.Len(t, frames, 2)
	require.Equal(t, "moo", string(frames[0].Data))
	require.True(t, frames[0].More)
	require.Equal(t, "cow", string(frames[1].Data))
	require.False(t, frames[1].More)
}

func TestBuilderCompletesOnFinalFrame(t *testing.T) {
	var b Builder
	_, done := b.Add([]byte("command::exec"), true)
	require.False(t, done)
	require.Equal(t, 1, b.Pending())

	msg, done := b.Add([]byte("whoami"), false)
	require.True(t, done)
	require.Equal(t, []string{"command::exec", "whoami"}, msg.Strings())
	require.Zero(t, b.Pending())
}

func TestBuilderCopiesInput(t *testing.T) {
	var b Builder
	buf := []byte("abc")
	msg, _ := b.Add(buf, false)
	buf[0] = 'x'
	require.Equal(t, "abc", string(msg[0]))
}

func TestReaderStopsOnLastFrame(t *testing.T) {
	r, err := NewReader(FromStrings("Ok", "Frame 0"))
	require.NoError(t, err)
	require.Equal(t, "Ok", string(r.Current()))

	next, ok := r.Next()
	require.True(t, ok)
	require.Equal(t, "Frame 0", string(next))

	_, ok = r.Next()
	require.False(t, ok)
}

func TestReaderRejectsEmptyMessage(t *testing.T) {
	_, err := NewReader(nil)
	require.True(t, errors.Is(err, ErrEmptyMessage))
}
