package target

import (
	"strconv"

	"github.com/danmuck/hostctl/internal/api"
	"github.com/danmuck/hostctl/internal/pkgmgr"
	"github.com/danmuck/hostctl/internal/protocol"
	"github.com/danmuck/hostctl/internal/telemetry"
)

// Remote forwards every capability to the agent behind conn, usually a
// connected *host.Host. Agent failures surface as *protocol.AgentError.
type Remote struct {
	conn protocol.Conn
}

var _ Target = (*Remote)(nil)

func NewRemote(conn protocol.Conn) *Remote {
	return &Remote{conn: conn}
}

func (r *Remote) Exec(cmd string) (api.CommandResult, error) {
	if err := protocol.Request(r.conn, protocol.EndpointCommandExec, cmd); err != nil {
		return api.CommandResult{}, err
	}
	return protocol.DecodeCommandResult(r.conn)
}

func (r *Remote) boolQuery(endpoint string, name string, path string) (bool, error) {
	if err := protocol.Request(r.conn, endpoint, path); err != nil {
		return false, err
	}
	return protocol.DecodeBool(r.conn, name)
}

func (r *Remote) owner(endpoint string, path string) (api.FileOwner, error) {
	if err := protocol.Request(r.conn, endpoint, path); err != nil {
		return api.FileOwner{}, err
	}
	return protocol.DecodeFileOwner(r.conn)
}

func (r *Remote) mode(endpoint string, path string) (uint16, error) {
	if err := protocol.Request(r.conn, endpoint, path); err != nil {
		return 0, err
	}
	return protocol.DecodeMode(r.conn)
}

func modeArg(mode uint16) string {
	return strconv.FormatUint(uint64(mode), 10)
}

func (r *Remote) FileIsFile(path string) (bool, error) {
	return r.boolQuery(protocol.EndpointFileIsFile, "is_file", path)
}

func (r *Remote) FileExists(path string) (bool, error) {
	return r.boolQuery(protocol.EndpointFileExists, "exists", path)
}

func (r *Remote) FileDelete(path string) error {
	return protocol.Call(r.conn, protocol.EndpointFileDelete, path)
}

func (r *Remote) FileMove(path string, newPath string) error {
	return protocol.Call(r.conn, protocol.EndpointFileMove, path, newPath)
}

func (r *Remote) FileCopy(path string, newPath string) error {
	return protocol.Call(r.conn, protocol.EndpointFileCopy, path, newPath)
}

func (r *Remote) FileOwner(path string) (api.FileOwner, error) {
	return r.owner(protocol.EndpointFileGetOwner, path)
}

func (r *Remote) FileSetOwner(path string, user string, group string) error {
	return protocol.Call(r.conn, protocol.EndpointFileSetOwner, path, user, group)
}

func (r *Remote) FileMode(path string) (uint16, error) {
	return r.mode(protocol.EndpointFileGetMode, path)
}

func (r *Remote) FileSetMode(path string, mode uint16) error {
	return protocol.Call(r.conn, protocol.EndpointFileSetMode, path, modeArg(mode))
}

func (r *Remote) DirectoryIsDirectory(path string) (bool, error) {
	return r.boolQuery(protocol.EndpointDirIsDirectory, "is_directory", path)
}

func (r *Remote) DirectoryExists(path string) (bool, error) {
	return r.boolQuery(protocol.EndpointDirExists, "exists", path)
}

func (r *Remote) DirectoryCreate(path string, recursive bool) error {
	return protocol.Call(r.conn, protocol.EndpointDirCreate, path, protocol.BoolFrame(recursive))
}

func (r *Remote) DirectoryDelete(path string, recursive bool) error {
	return protocol.Call(r.conn, protocol.EndpointDirDelete, path, protocol.BoolFrame(recursive))
}

func (r *Remote) DirectoryMove(path string, newPath string) error {
	return protocol.Call(r.conn, protocol.EndpointDirMove, path, newPath)
}

func (r *Remote) DirectoryOwner(path string) (api.FileOwner, error) {
	return r.owner(protocol.EndpointDirGetOwner, path)
}

func (r *Remote) DirectorySetOwner(path string, user string, group string) error {
	return protocol.Call(r.conn, protocol.EndpointDirSetOwner, path, user, group)
}

func (r *Remote) DirectoryMode(path string) (uint16, error) {
	return r.mode(protocol.EndpointDirGetMode, path)
}

func (r *Remote) DirectorySetMode(path string, mode uint16) error {
	return protocol.Call(r.conn, protocol.EndpointDirSetMode, path, modeArg(mode))
}

func (r *Remote) DefaultProvider() (pkgmgr.Kind, error) {
	if err := protocol.Request(r.conn, protocol.EndpointPackageDefaultProvider); err != nil {
		return 0, err
	}
	return protocol.DecodeProvider(r.conn)
}

// ServiceAction always returns a result; state probing happens on the agent.
func (r *Remote) ServiceAction(name string, action string) (*api.CommandResult, error) {
	if err := checkAction(action); err != nil {
		return nil, err
	}
	if err := protocol.Request(r.conn, protocol.EndpointServiceAction, name, action); err != nil {
		return nil, err
	}
	res, err := protocol.DecodeCommandResult(r.conn)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *Remote) Telemetry() (telemetry.Snapshot, error) {
	if err := protocol.Request(r.conn, protocol.EndpointTelemetry); err != nil {
		return telemetry.Snapshot{}, err
	}
	return protocol.DecodeTelemetry(r.conn)
}
