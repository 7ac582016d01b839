package pkgmgr

import (
	"strings"

	"github.com/danmuck/hostctl/internal/api"
)

// Package binds a package name to the provider that manages it.
type Package struct {
	Name     string
	Provider Provider
}

// NewPackage validates name and binds it to provider.
func NewPackage(name string, provider Provider) (Package, error) {
	name = strings.TrimSpace(name)
	if name == "" || provider == nil {
		return Package{}, ErrInvalidPackage
	}
	return Package{Name: name, Provider: provider}, nil
}

// IsInstalled reports whether the package is present.
func (p Package) IsInstalled(cmd api.Commander) (bool, error) {
	return p.Provider.IsInstalled(cmd, p.Name)
}

// Install installs the package. It returns nil without running anything
// when the package is already installed.
func (p Package) Install(cmd api.Commander) (*api.CommandResult, error) {
	installed, err := p.IsInstalled(cmd)
	if err != nil || installed {
		return nil, err
	}
	res, err := p.Provider.Install(cmd, p.Name)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// Uninstall removes the package. It returns nil without running anything
// when the package is absent.
func (p Package) Uninstall(cmd api.Commander) (*api.CommandResult, error) {
	installed, err := p.IsInstalled(cmd)
	if err != nil || !installed {
		return nil, err
	}
	res, err := p.Provider.Uninstall(cmd, p.Name)
	if err != nil {
		return nil, err
	}
	return &res, nil
}
