// Package target binds every capability to a concrete platform.
//
// A Target is chosen once, when a host is configured: either a local
// target for the running OS (Ubuntu, Debian, NixOS) or a Remote that
// forwards each call to the host's agent. Local targets are composed
// from family layers, Default (POSIX), Linux and DebianBase, and only
// override what differs between distributions.
package target

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/danmuck/hostctl/internal/api"
	"github.com/danmuck/hostctl/internal/pkgmgr"
	"github.com/danmuck/hostctl/internal/telemetry"
	"github.com/danmuck/hostctl/internal/tools"
)

var (
	ErrUnsupportedPlatform = errors.New("target: unsupported platform")
	ErrUnknownAction       = errors.New("target: unknown service action")
)

// Service actions with built-in state probing.
const (
	ActionStart   = "start"
	ActionStop    = "stop"
	ActionEnable  = "enable"
	ActionDisable = "disable"
)

type CommandTarget interface {
	api.Commander
}

type FileTarget interface {
	FileIsFile(path string) (bool, error)
	FileExists(path string) (bool, error)
	FileDelete(path string) error
	FileMove(path string, newPath string) error
	FileCopy(path string, newPath string) error
	FileOwner(path string) (api.FileOwner, error)
	FileSetOwner(path string, user string, group string) error
	FileMode(path string) (uint16, error)
	FileSetMode(path string, mode uint16) error
}

type DirectoryTarget interface {
	DirectoryIsDirectory(path string) (bool, error)
	DirectoryExists(path string) (bool, error)
	DirectoryCreate(path string, recursive bool) error
	DirectoryDelete(path string, recursive bool) error
	DirectoryMove(path string, newPath string) error
	DirectoryOwner(path string) (api.FileOwner, error)
	DirectorySetOwner(path string, user string, group string) error
	DirectoryMode(path string) (uint16, error)
	DirectorySetMode(path string, mode uint16) error
}

type PackageTarget interface {
	DefaultProvider() (pkgmgr.Kind, error)
}

// ServiceTarget runs a service action. A nil result means the service was
// already in the requested state and nothing was run.
type ServiceTarget interface {
	ServiceAction(name string, action string) (*api.CommandResult, error)
}

type TelemetryTarget interface {
	Telemetry() (telemetry.Snapshot, error)
}

// Target is the full capability surface of one managed host.
type Target interface {
	CommandTarget
	FileTarget
	DirectoryTarget
	PackageTarget
	ServiceTarget
	TelemetryTarget
}

// OsError reports a failure of a local OS binding.
type OsError struct {
	Op   string
	Path string
	Err  error
}

func (e *OsError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("target: %s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("target: %s: %v", e.Op, e.Err)
}

func (e *OsError) Unwrap() error {
	return e.Err
}

// checkAction rejects actions that cannot name a service verb.
func checkAction(action string) error {
	if action == "" || strings.ContainsFunc(action, unicode.IsSpace) {
		return fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
	return nil
}

func osErr(op string, path string, err error) error {
	if err == nil {
		return nil
	}
	return &OsError{Op: op, Path: path, Err: err}
}

// Options configures local targets.
type Options struct {
	// Runner executes processes. Defaults to tools.ExecRunner.
	Runner tools.CommandRunner
	// Registry supplies package providers. Defaults to pkgmgr.Builtin.
	Registry *pkgmgr.Registry
	// Root prefixes the OS fact files read from /proc and /etc.
	Root string
}

func (o Options) withDefaults() Options {
	if o.Runner == nil {
		o.Runner = tools.ExecRunner{}
	}
	if o.Registry == nil {
		o.Registry = pkgmgr.Builtin()
	}
	if strings.TrimSpace(o.Root) == "" {
		o.Root = "/"
	}
	return o
}

// Platform names accepted by Local.
const (
	PlatformAuto   = "auto"
	PlatformUbuntu = "ubuntu"
	PlatformDebian = "debian"
	PlatformNixOS  = "nixos"
)

// Local returns the local target for platform. "auto" or "" detects the
// platform from /etc/os-release.
func Local(platform string, opts Options) (Target, error) {
	opts = opts.withDefaults()
	p := strings.ToLower(strings.TrimSpace(platform))
	if p == "" || p == PlatformAuto {
		detected, err := Detect(opts.Root)
		if err != nil {
			return nil, err
		}
		p = detected
	}
	switch p {
	case PlatformUbuntu:
		return NewUbuntu(opts), nil
	case PlatformDebian:
		return NewDebian(opts), nil
	case PlatformNixOS:
		return NewNixOS(opts), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedPlatform, platform)
	}
}

// Detect reads the ID field of root/etc/os-release.
func Detect(root string) (string, error) {
	path := filepath.Join(root, "etc", "os-release")
	f, err := os.Open(path)
	if err != nil {
		return "", osErr("detect", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		key, value, ok := strings.Cut(strings.TrimSpace(scanner.Text()), "=")
		if !ok || key != "ID" {
			continue
		}
		id := strings.ToLower(strings.Trim(value, `"'`))
		switch id {
		case PlatformUbuntu, PlatformDebian, PlatformNixOS:
			return id, nil
		default:
			return "", fmt.Errorf("%w: %q", ErrUnsupportedPlatform, id)
		}
	}
	if err := scanner.Err(); err != nil {
		return "", osErr("detect", path, err)
	}
	return "", fmt.Errorf("%w: no ID in %s", ErrUnsupportedPlatform, path)
}
