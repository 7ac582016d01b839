package pkgmgr

import (
	"fmt"
	"strings"
)

// Kind identifies a package manager backend.
type Kind int

const (
	Apt Kind = iota + 1
	Dnf
	Homebrew
	Macports
	Nix
	Pkg
	Ports
	Yum
)

var kindNames = map[Kind]string{
	Apt:      "apt",
	Dnf:      "dnf",
	Homebrew: "homebrew",
	Macports: "macports",
	Nix:      "nix",
	Pkg:      "pkg",
	Ports:    "ports",
	Yum:      "yum",
}

// Kinds lists every known provider kind in declaration order.
func Kinds() []Kind {
	return []Kind{Apt, Dnf, Homebrew, Macports, Nix, Pkg, Ports, Yum}
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind accepts a provider identifier as sent by the agent. Matching is
// case-insensitive; "brew" is accepted for Homebrew.
func ParseKind(raw string) (Kind, error) {
	v := strings.ToLower(strings.TrimSpace(raw))
	if v == "brew" {
		return Homebrew, nil
	}
	for kind, name := range kindNames {
		if name == v {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownProvider, raw)
}

func (k Kind) MarshalText() ([]byte, error) {
	if _, ok := kindNames[k]; !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownProvider, int(k))
	}
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
