// Package config loads the hostctl TOML file: transport tuning plus the
// inventory of managed hosts.
package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/danmuck/hostctl/internal/transport"
)

var (
	ErrInvalidConfig = errors.New("config: invalid")
	ErrUnknownHost   = errors.New("config: unknown host")
)

// Host modes.
const (
	ModeLocal  = "local"
	ModeRemote = "remote"
)

// Default agent ports.
const (
	DefaultAPIPort      uint32 = 7101
	DefaultUploadPort   uint32 = 7102
	DefaultDownloadPort uint32 = 7103
)

// LocalHostName names the implicit local host used when no hosts are
// configured.
const LocalHostName = "localhost"

type Config struct {
	Transport transport.Config
	Hosts     []HostConfig
}

// HostConfig is one managed host. Remote hosts are reached through their
// agent; local hosts run against the OS hostctl runs on.
type HostConfig struct {
	Name         string `toml:"name"`
	Mode         string `toml:"mode"`
	Platform     string `toml:"platform"`
	Hostname     string `toml:"hostname"`
	APIPort      uint32 `toml:"api_port"`
	UploadPort   uint32 `toml:"upload_port"`
	DownloadPort uint32 `toml:"download_port"`
}

// hostctl.toml key mapping.
type fileConfig struct {
	Transport transportFileConfig `toml:"transport"`
	Hosts     []HostConfig        `toml:"hosts"`
}

type transportFileConfig struct {
	DialTimeout     string `toml:"dial_timeout"`
	DialRetry       string `toml:"dial_retry"`
	DialMaxRetries  int    `toml:"dial_max_retries"`
	SubscribeSettle string `toml:"subscribe_settle"`
	ChunkSize       int    `toml:"chunk_size"`
}

// Default returns the configuration used when no file is given: transport
// defaults and a single local host.
func Default() Config {
	return Config{
		Transport: transport.DefaultConfig(),
		Hosts:     []HostConfig{{Name: LocalHostName, Mode: ModeLocal, Platform: "auto"}},
	}
}

// Load reads path and overlays it on the transport defaults.
func Load(path string) (Config, error) {
	cfg := Config{Transport: transport.DefaultConfig()}

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		return Config{}, fmt.Errorf("%w: unknown keys in %s: %s", ErrInvalidConfig, path, strings.Join(keys, ", "))
	}

	durations := []struct {
		key string
		raw string
		dst *time.Duration
	}{
		{"dial_timeout", raw.Transport.DialTimeout, &cfg.Transport.DialTimeout},
		{"dial_retry", raw.Transport.DialRetry, &cfg.Transport.DialRetry},
		{"subscribe_settle", raw.Transport.SubscribeSettle, &cfg.Transport.SubscribeSettle},
	}
	for _, d := range durations {
		if !meta.IsDefined("transport", d.key) {
			continue
		}
		v, err := time.ParseDuration(strings.TrimSpace(d.raw))
		if err != nil {
			return Config{}, fmt.Errorf("%w: transport.%s: %v", ErrInvalidConfig, d.key, err)
		}
		*d.dst = v
	}
	// An explicit zero settle turns the pause off; transport reads zero as
	// "use the default" and negative as "none".
	if meta.IsDefined("transport", "subscribe_settle") && cfg.Transport.SubscribeSettle == 0 {
		cfg.Transport.SubscribeSettle = -1
	}
	if meta.IsDefined("transport", "dial_max_retries") {
		cfg.Transport.DialMaxRetries = raw.Transport.DialMaxRetries
	}
	if meta.IsDefined("transport", "chunk_size") {
		cfg.Transport.ChunkSize = raw.Transport.ChunkSize
	}

	for _, h := range raw.Hosts {
		cfg.Hosts = append(cfg.Hosts, h.withDefaults())
	}
	if len(cfg.Hosts) == 0 {
		cfg.Hosts = Default().Hosts
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (h HostConfig) withDefaults() HostConfig {
	h.Name = strings.TrimSpace(h.Name)
	h.Hostname = strings.TrimSpace(h.Hostname)
	h.Mode = strings.ToLower(strings.TrimSpace(h.Mode))
	if h.Mode == "" {
		if h.Hostname != "" {
			h.Mode = ModeRemote
		} else {
			h.Mode = ModeLocal
		}
	}
	if strings.TrimSpace(h.Platform) == "" {
		h.Platform = "auto"
	}
	if h.APIPort == 0 {
		h.APIPort = DefaultAPIPort
	}
	if h.UploadPort == 0 {
		h.UploadPort = DefaultUploadPort
	}
	if h.DownloadPort == 0 {
		h.DownloadPort = DefaultDownloadPort
	}
	return h
}

func Validate(cfg Config) error {
	if cfg.Transport.ChunkSize <= 0 {
		return fmt.Errorf("%w: transport.chunk_size must be positive", ErrInvalidConfig)
	}
	if cfg.Transport.DialTimeout <= 0 {
		return fmt.Errorf("%w: transport.dial_timeout must be positive", ErrInvalidConfig)
	}
	seen := make(map[string]struct{}, len(cfg.Hosts))
	for i, h := range cfg.Hosts {
		if err := ValidateHost(h); err != nil {
			return fmt.Errorf("hosts[%d]: %w", i, err)
		}
		if _, dup := seen[h.Name]; dup {
			return fmt.Errorf("%w: hosts[%d]: duplicate name %q", ErrInvalidConfig, i, h.Name)
		}
		seen[h.Name] = struct{}{}
	}
	return nil
}

func ValidateHost(h HostConfig) error {
	if h.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidConfig)
	}
	switch h.Mode {
	case ModeLocal:
	case ModeRemote:
		if h.Hostname == "" {
			return fmt.Errorf("%w: hostname required for remote host %q", ErrInvalidConfig, h.Name)
		}
		if h.APIPort == h.UploadPort || h.APIPort == h.DownloadPort || h.UploadPort == h.DownloadPort {
			return fmt.Errorf("%w: host %q ports must be distinct", ErrInvalidConfig, h.Name)
		}
	default:
		return fmt.Errorf("%w: host %q mode %q (expected local or remote)", ErrInvalidConfig, h.Name, h.Mode)
	}
	return nil
}

// Host returns the entry called name. An empty name selects the only
// configured host.
func (c Config) Host(name string) (HostConfig, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		if len(c.Hosts) == 1 {
			return c.Hosts[0], nil
		}
		return HostConfig{}, fmt.Errorf("%w: %d hosts configured, choose one of %s", ErrUnknownHost, len(c.Hosts), strings.Join(c.HostNames(), ", "))
	}
	for _, h := range c.Hosts {
		if h.Name == name {
			return h, nil
		}
	}
	return HostConfig{}, fmt.Errorf("%w: %q", ErrUnknownHost, name)
}

// HostNames returns the configured host names in sorted order.
func (c Config) HostNames() []string {
	names := make([]string, 0, len(c.Hosts))
	for _, h := range c.Hosts {
		names = append(names, h.Name)
	}
	sort.Strings(names)
	return names
}
