// Package telemetry models a point-in-time summary of a managed host.
package telemetry

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

var ErrInvalidVersion = errors.New("telemetry: invalid version string")

type CPU struct {
	Vendor string `json:"vendor" yaml:"vendor"`
	Brand  string `json:"brand_string" yaml:"brand_string"`
	Cores  uint32 `json:"cores" yaml:"cores"`
}

type FsMount struct {
	Filesystem string  `json:"filesystem" yaml:"filesystem"`
	Mountpoint string  `json:"mountpoint" yaml:"mountpoint"`
	Size       uint64  `json:"size" yaml:"size"`
	Used       uint64  `json:"used" yaml:"used"`
	Available  uint64  `json:"available" yaml:"available"`
	Capacity   float32 `json:"capacity" yaml:"capacity"`
}

type NetifIPv4 struct {
	Address string `json:"address" yaml:"address"`
	Netmask string `json:"netmask" yaml:"netmask"`
}

type NetifIPv6 struct {
	Address   string `json:"address" yaml:"address"`
	Prefixlen uint8  `json:"prefixlen" yaml:"prefixlen"`
	Scopeid   string `json:"scopeid,omitempty" yaml:"scopeid,omitempty"`
}

type Netif struct {
	Interface string     `json:"interface" yaml:"interface"`
	MAC       string     `json:"mac,omitempty" yaml:"mac,omitempty"`
	Inet      *NetifIPv4 `json:"inet,omitempty" yaml:"inet,omitempty"`
	Inet6     *NetifIPv6 `json:"inet6,omitempty" yaml:"inet6,omitempty"`
	Status    string     `json:"status,omitempty" yaml:"status,omitempty"`
}

type OS struct {
	Arch         string `json:"arch" yaml:"arch"`
	Family       string `json:"family" yaml:"family"`
	Platform     string `json:"platform" yaml:"platform"`
	VersionStr   string `json:"version_str" yaml:"version_str"`
	VersionMajor uint32 `json:"version_maj" yaml:"version_maj"`
	VersionMinor uint32 `json:"version_min" yaml:"version_min"`
	VersionPatch uint32 `json:"version_patch" yaml:"version_patch"`
}

// Snapshot is immutable once built. Accessors return copies.
type Snapshot struct {
	cpu      CPU
	fs       []FsMount
	hostname string
	memory   uint64
	net      []Netif
	os       OS
}

// New builds a snapshot, copying the slices it is given.
func New(cpu CPU, fs []FsMount, hostname string, memory uint64, net []Netif, os OS) Snapshot {
	return Snapshot{
		cpu:      cpu,
		fs:       slices.Clone(fs),
		hostname: hostname,
		memory:   memory,
		net:      cloneNet(net),
		os:       os,
	}
}

func (s Snapshot) CPU() CPU         { return s.cpu }
func (s Snapshot) FS() []FsMount    { return slices.Clone(s.fs) }
func (s Snapshot) Hostname() string { return s.hostname }
func (s Snapshot) Memory() uint64   { return s.memory }
func (s Snapshot) Net() []Netif     { return cloneNet(s.net) }
func (s Snapshot) OS() OS           { return s.os }

// wireSnapshot is the serialized form exchanged with agents.
type wireSnapshot struct {
	CPU      CPU       `json:"cpu" yaml:"cpu"`
	FS       []FsMount `json:"fs" yaml:"fs"`
	Hostname string    `json:"hostname" yaml:"hostname"`
	Memory   uint64    `json:"memory" yaml:"memory"`
	Net      []Netif   `json:"net" yaml:"net"`
	OS       OS        `json:"os" yaml:"os"`
}

func (s Snapshot) wire() wireSnapshot {
	return wireSnapshot{CPU: s.cpu, FS: s.FS(), Hostname: s.hostname, Memory: s.memory, Net: s.Net(), OS: s.os}
}

func (s Snapshot) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.wire())
}

func (s *Snapshot) UnmarshalJSON(data []byte) error {
	var w wireSnapshot
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*s = New(w.CPU, w.FS, w.Hostname, w.Memory, w.Net, w.OS)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (s Snapshot) MarshalYAML() (any, error) {
	return s.wire(), nil
}

// Encode serializes a snapshot for the telemetry endpoint.
func Encode(s Snapshot) ([]byte, error) {
	return json.Marshal(s)
}

// Decode parses a snapshot produced by Encode.
func Decode(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, fmt.Errorf("telemetry: decode: %w", err)
	}
	return s, nil
}

// ParseVersion splits a dotted version such as "23.11.1234.abcdef
// (Tapir)" into its first three numeric components. Missing trailing
// components are zero; at least a major number is required.
func ParseVersion(raw string) (uint32, uint32, uint32, error) {
	head := strings.Fields(strings.TrimSpace(raw))
	if len(head) == 0 {
		return 0, 0, 0, fmt.Errorf("%w: %q", ErrInvalidVersion, raw)
	}
	parts := strings.Split(head[0], ".")
	var out [3]uint32
	for i := 0; i < len(out) && i < len(parts); i++ {
		n, err := strconv.ParseUint(parts[i], 10, 32)
		if err != nil {
			if i == 0 {
				return 0, 0, 0, fmt.Errorf("%w: %q", ErrInvalidVersion, raw)
			}
			break
		}
		out[i] = uint32(n)
	}
	return out[0], out[1], out[2], nil
}

func cloneNet(in []Netif) []Netif {
	if in == nil {
		return nil
	}
	out := make([]Netif, len(in))
	for i, n := range in {
		if n.Inet != nil {
			v := *n.Inet
			n.Inet = &v
		}
		if n.Inet6 != nil {
			v := *n.Inet6
			n.Inet6 = &v
		}
		out[i] = n
	}
	return out
}
