package target

import (
	"strings"

	"github.com/danmuck/hostctl/internal/api"
	"github.com/danmuck/hostctl/internal/pkgmgr"
	"github.com/danmuck/hostctl/internal/telemetry"
)

// NixOS always boots systemd and manages packages with nix-env.
type NixOS struct {
	*Linux
}

var _ Target = (*NixOS)(nil)

func NewNixOS(opts Options) *NixOS {
	return &NixOS{Linux: NewLinux(opts)}
}

func (t *NixOS) DefaultProvider() (pkgmgr.Kind, error) {
	return t.ResolveProvider([]pkgmgr.Kind{pkgmgr.Nix})
}

func (t *NixOS) ServiceAction(name string, action string) (*api.CommandResult, error) {
	return t.ServiceSystemd(name, action)
}

func (t *NixOS) Telemetry() (telemetry.Snapshot, error) {
	return t.Collect(t.osInfo)
}

func (t *NixOS) osInfo() (telemetry.OS, error) {
	out, err := t.mustRun("version", "", "nixos-version")
	if err != nil {
		return telemetry.OS{}, err
	}
	return t.osFacts(PlatformNixOS, strings.TrimSpace(out))
}
