package protocol

import (
	"strconv"

	"github.com/danmuck/hostctl/internal/api"
	"github.com/danmuck/hostctl/internal/pkgmgr"
	"github.com/danmuck/hostctl/internal/protocol/frame"
	"github.com/danmuck/hostctl/internal/telemetry"
)

// OkReply builds a success response carrying result frames.
func OkReply(frames ...string) frame.Message {
	return frame.FromStrings(append([]string{HeaderOk}, frames...)...)
}

// ErrReply builds a failure response carrying msg.
func ErrReply(msg string) frame.Message {
	return frame.FromStrings(HeaderErr, msg)
}

func CommandResultReply(r api.CommandResult) frame.Message {
	return OkReply(strconv.FormatInt(int64(r.ExitCode), 10), r.Stdout, r.Stderr)
}

func FileOwnerReply(o api.FileOwner) frame.Message {
	return OkReply(
		o.UserName,
		strconv.FormatUint(o.UserUID, 10),
		o.GroupName,
		strconv.FormatUint(o.GroupGID, 10),
	)
}

func BoolReply(v bool) frame.Message {
	return OkReply(BoolFrame(v))
}

func ModeReply(mode uint16) frame.Message {
	return OkReply(strconv.FormatUint(uint64(mode), 10))
}

func ProviderReply(kind pkgmgr.Kind) frame.Message {
	return OkReply(kind.String())
}

func TelemetryReply(s telemetry.Snapshot) (frame.Message, error) {
	data, err := telemetry.Encode(s)
	if err != nil {
		return nil, err
	}
	return frame.Message{[]byte(HeaderOk), data}, nil
}
