package pkgmgr

import (
	"errors"
	"fmt"

	"github.com/danmuck/hostctl/internal/api"
	"github.com/danmuck/hostctl/internal/tools"
)

var (
	ErrUnknownProvider   = errors.New("pkgmgr: unknown provider")
	ErrNoDefaultProvider = errors.New("pkgmgr: no default provider")
	ErrUnsupported       = errors.New("pkgmgr: operation not supported by provider")
	ErrProviderExists    = errors.New("pkgmgr: provider already registered")
	ErrInvalidPackage    = errors.New("pkgmgr: invalid package name")
)

// Provider is a package manager backend. Every call runs through a
// Commander so a provider behaves the same on local and remote hosts.
type Provider interface {
	Kind() Kind
	IsActive(cmd api.Commander) (bool, error)
	IsInstalled(cmd api.Commander, name string) (bool, error)
	Install(cmd api.Commander, name string) (api.CommandResult, error)
	Uninstall(cmd api.Commander, name string) (api.CommandResult, error)
}

// shellProvider drives a package manager through fixed command templates.
// Each template takes the shell-quoted package name as its only verb.
type shellProvider struct {
	kind      Kind
	probe     string
	query     string
	install   string
	uninstall string
}

func (p shellProvider) Kind() Kind {
	return p.kind
}

func (p shellProvider) IsActive(cmd api.Commander) (bool, error) {
	if p.probe == "" {
		return false, nil
	}
	res, err := cmd.Exec(p.probe)
	if err != nil {
		return false, err
	}
	return res.Success(), nil
}

func (p shellProvider) IsInstalled(cmd api.Commander, name string) (bool, error) {
	line, err := p.render(p.query, name)
	if err != nil {
		return false, err
	}
	res, err := cmd.Exec(line)
	if err != nil {
		return false, err
	}
	return res.Success(), nil
}

func (p shellProvider) Install(cmd api.Commander, name string) (api.CommandResult, error) {
	line, err := p.render(p.install, name)
	if err != nil {
		return api.CommandResult{}, err
	}
	return cmd.Exec(line)
}

func (p shellProvider) Uninstall(cmd api.Commander, name string) (api.CommandResult, error) {
	line, err := p.render(p.uninstall, name)
	if err != nil {
		return api.CommandResult{}, err
	}
	return cmd.Exec(line)
}

func (p shellProvider) render(tmpl string, name string) (string, error) {
	if tmpl == "" {
		return "", fmt.Errorf("%w: %s", ErrUnsupported, p.kind)
	}
	if name == "" {
		return "", ErrInvalidPackage
	}
	return fmt.Sprintf(tmpl, tools.ShellQuote(name)), nil
}

func builtinProviders() []Provider {
	return []Provider{
		shellProvider{
			kind:      Apt,
			probe:     "type apt-get",
			query:     "dpkg -s %s",
			install:   "DEBIAN_FRONTEND=noninteractive apt-get -y install %s",
			uninstall: "DEBIAN_FRONTEND=noninteractive apt-get -y remove %s",
		},
		shellProvider{
			kind:      Dnf,
			probe:     "type dnf",
			query:     "rpm -q %s",
			install:   "dnf -y install %s",
			uninstall: "dnf -y remove %s",
		},
		shellProvider{
			kind:      Homebrew,
			probe:     "type brew",
			query:     "brew list --formula %s",
			install:   "brew install %s",
			uninstall: "brew uninstall %s",
		},
		// Macports is recognized but never probed active.
		shellProvider{kind: Macports},
		shellProvider{
			kind:      Nix,
			probe:     "type nix-env",
			query:     "nix-env -q %s",
			install:   "nix-env --install %s",
			uninstall: "nix-env --uninstall %s",
		},
		shellProvider{
			kind:      Pkg,
			probe:     "type pkg",
			query:     "pkg info -e %s",
			install:   "pkg install -y %s",
			uninstall: "pkg delete -y %s",
		},
		shellProvider{
			kind:      Ports,
			probe:     "test -d /usr/ports",
			query:     "pkg info -e %s",
			install:   "make -C /usr/ports/%s BATCH=yes install clean",
			uninstall: "pkg delete -y %s",
		},
		shellProvider{
			kind:      Yum,
			probe:     "type yum",
			query:     "rpm -q %s",
			install:   "yum -y install %s",
			uninstall: "yum -y remove %s",
		},
	}
}
