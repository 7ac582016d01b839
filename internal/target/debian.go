package target

import (
	"os"
	"strings"

	"github.com/danmuck/hostctl/internal/api"
	"github.com/danmuck/hostctl/internal/pkgmgr"
	"github.com/danmuck/hostctl/internal/telemetry"
)

type Debian struct {
	*Linux
	debian *DebianBase
}

var _ Target = (*Debian)(nil)

func NewDebian(opts Options) *Debian {
	linux := NewLinux(opts)
	return &Debian{Linux: linux, debian: NewDebianBase(linux)}
}

func (t *Debian) DefaultProvider() (pkgmgr.Kind, error) {
	return t.ResolveProvider([]pkgmgr.Kind{pkgmgr.Apt})
}

func (t *Debian) ServiceAction(name string, action string) (*api.CommandResult, error) {
	return debianService(t.Linux, t.debian, name, action)
}

func (t *Debian) Telemetry() (telemetry.Snapshot, error) {
	return t.Collect(t.osInfo)
}

func (t *Debian) osInfo() (telemetry.OS, error) {
	path := t.path("etc", "debian_version")
	data, err := os.ReadFile(path)
	if err != nil {
		return telemetry.OS{}, osErr("version", path, err)
	}
	return t.osFacts(PlatformDebian, strings.TrimSpace(string(data)))
}
