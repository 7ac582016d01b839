package target

import (
	"regexp"
	"strings"

	"github.com/danmuck/hostctl/internal/api"
	"github.com/danmuck/hostctl/internal/pkgmgr"
	"github.com/danmuck/hostctl/internal/telemetry"
)

var lsbVersionRe = regexp.MustCompile(`([0-9]+(?:\.[0-9]+)*)`)

type Ubuntu struct {
	*Linux
	debian *DebianBase
}

var _ Target = (*Ubuntu)(nil)

func NewUbuntu(opts Options) *Ubuntu {
	linux := NewLinux(opts)
	return &Ubuntu{Linux: linux, debian: NewDebianBase(linux)}
}

func (t *Ubuntu) DefaultProvider() (pkgmgr.Kind, error) {
	return t.ResolveProvider([]pkgmgr.Kind{pkgmgr.Apt})
}

// ServiceAction uses systemd when PID 1 is systemd and init scripts otherwise.
func (t *Ubuntu) ServiceAction(name string, action string) (*api.CommandResult, error) {
	return debianService(t.Linux, t.debian, name, action)
}

func (t *Ubuntu) Telemetry() (telemetry.Snapshot, error) {
	return t.Collect(t.osInfo)
}

func (t *Ubuntu) osInfo() (telemetry.OS, error) {
	out, err := t.mustRun("version", "", "lsb_release", "-sd")
	if err != nil {
		return telemetry.OS{}, err
	}
	version := lsbVersionRe.FindString(out)
	if version != "" && strings.Contains(out, "LTS") {
		version += " LTS"
	}
	return t.osFacts(PlatformUbuntu, version)
}

func debianService(linux *Linux, base *DebianBase, name string, action string) (*api.CommandResult, error) {
	if err := checkAction(action); err != nil {
		return nil, err
	}
	systemd, err := linux.UsingSystemd()
	if err != nil {
		return nil, err
	}
	if systemd {
		return linux.ServiceSystemd(name, action)
	}
	return base.ServiceInit(name, action)
}
