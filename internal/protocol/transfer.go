package protocol

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/danmuck/hostctl/internal/protocol/frame"
)

const optionPrefix = "OPT_"

// Option names understood by agents. New options append to this list.
const (
	OptionBackupExistingFile = "BackupExistingFile"
)

// FileOption is one named upload option. Options are sent in order, each
// as a name frame followed by a value frame.
type FileOption struct {
	Name  string
	Value string
}

// BackupExistingFile asks the agent to keep the current file under
// path+suffix before replacing it.
func BackupExistingFile(suffix string) FileOption {
	return FileOption{Name: OptionBackupExistingFile, Value: suffix}
}

// EncodeOptions flattens options into name/value frame pairs.
func EncodeOptions(opts []FileOption) []string {
	out := make([]string, 0, 2*len(opts))
	for _, opt := range opts {
		out = append(out, optionPrefix+opt.Name, opt.Value)
	}
	return out
}

// Upload is the descriptor declared before any chunk is published.
type Upload struct {
	Path        string
	Hash        uint64
	Size        uint64
	TotalChunks uint64
	Options     []FileOption
}

// Args renders the descriptor as positional request frames.
func (u Upload) Args() []string {
	args := []string{
		u.Path,
		frame.Uint64Frame(u.Hash),
		frame.Uint64Frame(u.Size),
		frame.Uint64Frame(u.TotalChunks),
	}
	return append(args, EncodeOptions(u.Options)...)
}

// Chunk is one published piece of an upload.
type Chunk struct {
	Path  string
	Index uint64
	Data  []byte
}

// Message renders the chunk as its three publish frames.
func (c Chunk) Message() frame.Message {
	return frame.Message{[]byte(c.Path), []byte(frame.Uint64Frame(c.Index)), c.Data}
}

// ParseChunk is the subscriber-side inverse of Chunk.Message.
func ParseChunk(msg frame.Message) (Chunk, error) {
	if len(msg) != 3 {
		return Chunk{}, fmt.Errorf("%w: chunk has %d frames", ErrInvalidRequest, len(msg))
	}
	idx, err := strconv.ParseUint(string(msg[1]), 10, 64)
	if err != nil {
		return Chunk{}, &ParseError{Field: "index", Value: string(msg[1]), Err: err}
	}
	return Chunk{Path: string(msg[0]), Index: idx, Data: msg[2]}, nil
}

// ParseRequest splits a request into its endpoint and positional args.
func ParseRequest(msg frame.Message) (string, []string, error) {
	if len(msg) == 0 {
		return "", nil, fmt.Errorf("%w: empty message", ErrInvalidRequest)
	}
	parts := msg.Strings()
	return parts[0], parts[1:], nil
}

// ParseUpload decodes the args of a file::upload request.
func ParseUpload(args []string) (Upload, error) {
	if len(args) < 4 {
		return Upload{}, fmt.Errorf("%w: upload needs 4 args, got %d", ErrInvalidRequest, len(args))
	}
	u := Upload{Path: args[0]}
	fields := []struct {
		name string
		dst  *uint64
	}{
		{"hash", &u.Hash},
		{"size", &u.Size},
		{"total_chunks", &u.TotalChunks},
	}
	for i, f := range fields {
		n, err := strconv.ParseUint(args[i+1], 10, 64)
		if err != nil {
			return Upload{}, &ParseError{Field: f.name, Value: args[i+1], Err: err}
		}
		*f.dst = n
	}
	rest := args[4:]
	if len(rest)%2 != 0 {
		return Upload{}, fmt.Errorf("%w: dangling option frame", ErrInvalidOption)
	}
	for i := 0; i < len(rest); i += 2 {
		name, ok := strings.CutPrefix(rest[i], optionPrefix)
		if !ok || name == "" {
			return Upload{}, fmt.Errorf("%w: %q", ErrInvalidOption, rest[i])
		}
		u.Options = append(u.Options, FileOption{Name: name, Value: rest[i+1]})
	}
	return u, nil
}
