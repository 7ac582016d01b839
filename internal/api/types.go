// Package api holds the value types shared by every capability strategy.
package api

// CommandResult is the outcome of one command run on a managed host.
type CommandResult struct {
	ExitCode int32  `json:"exit_code" yaml:"exit_code"`
	Stdout   string `json:"stdout" yaml:"stdout"`
	Stderr   string `json:"stderr" yaml:"stderr"`
}

// Success reports whether the command exited with status zero.
func (r CommandResult) Success() bool {
	return r.ExitCode == 0
}

// FileOwner identifies the user and group owning a path.
type FileOwner struct {
	UserName  string `json:"user_name" yaml:"user_name"`
	UserUID   uint64 `json:"user_uid" yaml:"user_uid"`
	GroupName string `json:"group_name" yaml:"group_name"`
	GroupGID  uint64 `json:"group_gid" yaml:"group_gid"`
}

// Commander runs a shell command line on a managed host.
type Commander interface {
	Exec(cmd string) (CommandResult, error)
}
