package protocol

import (
	"strconv"

	"github.com/danmuck/hostctl/internal/api"
	"github.com/danmuck/hostctl/internal/pkgmgr"
	"github.com/danmuck/hostctl/internal/telemetry"
)

// Conn is the frame-level surface of a connected host.
type Conn interface {
	Send(frame string, more bool) error
	RecvHeader() error
	ExpectRecv(name string, order uint8) (string, error)
	ExpectRecvMsg(name string, order uint8) ([]byte, error)
}

// Request sends endpoint followed by args as one message.
func Request(c Conn, endpoint string, args ...string) error {
	if err := c.Send(endpoint, len(args) > 0); err != nil {
		return err
	}
	for i, arg := range args {
		if err := c.Send(arg, i < len(args)-1); err != nil {
			return err
		}
	}
	return nil
}

// Call sends a request and waits for a bare acknowledgement.
func Call(c Conn, endpoint string, args ...string) error {
	if err := Request(c, endpoint, args...); err != nil {
		return err
	}
	return c.RecvHeader()
}

// DecodeBool reads a single "1"/"0" result frame named name. Anything else
// is a ParseError.
func DecodeBool(c Conn, name string) (bool, error) {
	if err := c.RecvHeader(); err != nil {
		return false, err
	}
	v, err := c.ExpectRecv(name, 1)
	if err != nil {
		return false, err
	}
	switch v {
	case frameTrue:
		return true, nil
	case frameFalse:
		return false, nil
	default:
		return false, &ParseError{Field: name, Value: truncate(v, 64), Err: strconv.ErrSyntax}
	}
}

// DecodeCommandResult reads exit_code, stdout and stderr.
func DecodeCommandResult(c Conn) (api.CommandResult, error) {
	if err := c.RecvHeader(); err != nil {
		return api.CommandResult{}, err
	}
	raw, err := c.ExpectRecvMsg("exit_code", 1)
	if err != nil {
		return api.CommandResult{}, err
	}
	code, err := strconv.ParseInt(string(raw), 10, 32)
	if err != nil {
		return api.CommandResult{}, &ParseError{Field: "exit_code", Value: string(raw), Err: err}
	}
	stdout, err := c.ExpectRecv("stdout", 2)
	if err != nil {
		return api.CommandResult{}, err
	}
	stderr, err := c.ExpectRecv("stderr", 3)
	if err != nil {
		return api.CommandResult{}, err
	}
	return api.CommandResult{ExitCode: int32(code), Stdout: stdout, Stderr: stderr}, nil
}

// DecodeFileOwner reads user_name, user_uid, group_name and group_gid.
func DecodeFileOwner(c Conn) (api.FileOwner, error) {
	if err := c.RecvHeader(); err != nil {
		return api.FileOwner{}, err
	}
	var owner api.FileOwner
	var err error
	if owner.UserName, err = c.ExpectRecv("user_name", 1); err != nil {
		return api.FileOwner{}, err
	}
	if owner.UserUID, err = expectUint(c, "user_uid", 2, 64); err != nil {
		return api.FileOwner{}, err
	}
	if owner.GroupName, err = c.ExpectRecv("group_name", 3); err != nil {
		return api.FileOwner{}, err
	}
	if owner.GroupGID, err = expectUint(c, "group_gid", 4, 64); err != nil {
		return api.FileOwner{}, err
	}
	return owner, nil
}

// DecodeMode reads a decimal mode frame.
func DecodeMode(c Conn) (uint16, error) {
	if err := c.RecvHeader(); err != nil {
		return 0, err
	}
	mode, err := expectUint(c, "mode", 1, 16)
	return uint16(mode), err
}

// DecodeProvider reads the agent's default provider identifier.
func DecodeProvider(c Conn) (pkgmgr.Kind, error) {
	if err := c.RecvHeader(); err != nil {
		return 0, err
	}
	raw, err := c.ExpectRecv("provider", 1)
	if err != nil {
		return 0, err
	}
	kind, err := pkgmgr.ParseKind(raw)
	if err != nil {
		return 0, &ParseError{Field: "provider", Value: raw, Err: err}
	}
	return kind, nil
}

// DecodeTelemetry reads a serialized telemetry snapshot.
func DecodeTelemetry(c Conn) (telemetry.Snapshot, error) {
	if err := c.RecvHeader(); err != nil {
		return telemetry.Snapshot{}, err
	}
	raw, err := c.ExpectRecvMsg("telemetry", 1)
	if err != nil {
		return telemetry.Snapshot{}, err
	}
	snap, err := telemetry.Decode(raw)
	if err != nil {
		return telemetry.Snapshot{}, &ParseError{Field: "telemetry", Value: truncate(string(raw), 64), Err: err}
	}
	return snap, nil
}

func expectUint(c Conn, name string, order uint8, bits int) (uint64, error) {
	raw, err := c.ExpectRecv(name, order)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseUint(raw, 10, bits)
	if err != nil {
		return 0, &ParseError{Field: name, Value: raw, Err: err}
	}
	return n, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
