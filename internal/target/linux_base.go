package target

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/danmuck/hostctl/internal/api"
	"github.com/danmuck/hostctl/internal/telemetry"
)

const familyLinux = "linux"

var (
	cpuVendorRe = regexp.MustCompile(`(?m)^vendor_id\s*:\s*(.+)$`)
	cpuBrandRe  = regexp.MustCompile(`(?m)^model name\s*:\s*(.+)$`)
	cpuCoresRe  = regexp.MustCompile(`(?m)^cpu cores\s*:\s*([0-9]+)`)
	cpuProcRe   = regexp.MustCompile(`(?m)^processor\s*:`)
)

// Linux layers GNU userland and /proc facts on top of Default.
type Linux struct {
	*Default
}

func NewLinux(opts Options) *Linux {
	return &Linux{Default: newDefault(opts, gnuStat)}
}

// UsingSystemd reports whether PID 1 is systemd.
func (l *Linux) UsingSystemd() (bool, error) {
	out, err := l.mustRun("detect_init", "/proc/1/exe", "stat", "--format=%N", "/proc/1/exe")
	if err != nil {
		return false, err
	}
	return strings.Contains(out, "systemd"), nil
}

// ServiceSystemd runs action through systemctl. For start, stop, enable and
// disable the unit state is probed first and nil is returned when the unit
// is already there.
func (l *Linux) ServiceSystemd(name string, action string) (*api.CommandResult, error) {
	if err := checkAction(action); err != nil {
		return nil, err
	}
	var probe string
	var want bool
	switch action {
	case ActionStart, ActionStop:
		probe, want = "is-active", action == ActionStart
	case ActionEnable, ActionDisable:
		probe, want = "is-enabled", action == ActionEnable
	}
	if probe != "" {
		res, err := l.run("systemctl", probe, name)
		if err != nil {
			return nil, err
		}
		if res.Success() == want {
			log.Debug().Str("service", name).Str("action", action).Msg("already in requested state")
			return nil, nil
		}
	}

	res, err := l.run("systemctl", action, name)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// CPU parses root/proc/cpuinfo.
func (l *Linux) CPU() (telemetry.CPU, error) {
	path := l.path("proc", "cpuinfo")
	data, err := os.ReadFile(path)
	if err != nil {
		return telemetry.CPU{}, osErr("cpuinfo", path, err)
	}
	info := string(data)

	vendor, err := firstMatch(cpuVendorRe, info, "vendor_id", path)
	if err != nil {
		return telemetry.CPU{}, err
	}
	brand, err := firstMatch(cpuBrandRe, info, "model name", path)
	if err != nil {
		return telemetry.CPU{}, err
	}
	cores := uint32(len(cpuProcRe.FindAllStringIndex(info, -1)))
	if m := cpuCoresRe.FindStringSubmatch(info); m != nil {
		n, err := strconv.ParseUint(m[1], 10, 32)
		if err != nil {
			return telemetry.CPU{}, osErr("cpuinfo", path, err)
		}
		cores = uint32(n)
	}
	return telemetry.CPU{Vendor: vendor, Brand: brand, Cores: cores}, nil
}

func firstMatch(re *regexp.Regexp, s string, field string, path string) (string, error) {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return "", osErr("parse", path, fmt.Errorf("missing %s", field))
	}
	return strings.TrimSpace(m[1]), nil
}

// Memory returns MemTotal from root/proc/meminfo in bytes.
func (l *Linux) Memory() (uint64, error) {
	path := l.path("proc", "meminfo")
	f, err := os.Open(path)
	if err != nil {
		return 0, osErr("meminfo", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 || fields[0] != "MemTotal:" {
			continue
		}
		kb, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			return 0, osErr("meminfo", path, err)
		}
		return kb * 1024, nil
	}
	if err := scanner.Err(); err != nil {
		return 0, osErr("meminfo", path, err)
	}
	return 0, osErr("meminfo", path, fmt.Errorf("missing MemTotal"))
}

// Collect gathers a telemetry snapshot. The platform supplies osInfo; the
// remaining facts are common to every Linux host and read concurrently.
func (l *Linux) Collect(osInfo func() (telemetry.OS, error)) (telemetry.Snapshot, error) {
	var (
		cpu      telemetry.CPU
		mounts   []telemetry.FsMount
		hostname string
		memory   uint64
		netifs   []telemetry.Netif
		osFacts  telemetry.OS
	)

	var g errgroup.Group
	g.Go(func() (err error) { cpu, err = l.CPU(); return })
	g.Go(func() (err error) { mounts, err = l.Mounts(); return })
	g.Go(func() (err error) { hostname, err = l.Hostname(); return })
	g.Go(func() (err error) { memory, err = l.Memory(); return })
	g.Go(func() (err error) { netifs, err = l.Interfaces(); return })
	g.Go(func() (err error) { osFacts, err = osInfo(); return })
	if err := g.Wait(); err != nil {
		return telemetry.Snapshot{}, err
	}
	return telemetry.New(cpu, mounts, hostname, memory, netifs, osFacts), nil
}

// osFacts fills the fields shared by every Linux platform around a version
// string. A version with no leading number, such as Debian's "trixie/sid",
// is reported as-is with zero numeric parts.
func (l *Linux) osFacts(platform string, version string) (telemetry.OS, error) {
	arch, err := l.Arch()
	if err != nil {
		return telemetry.OS{}, err
	}
	maj, minor, patch, err := telemetry.ParseVersion(version)
	if err != nil {
		log.Debug().Err(err).Str("platform", platform).Msg("non-numeric os version")
		maj, minor, patch = 0, 0, 0
	}
	return telemetry.OS{
		Arch:         arch,
		Family:       familyLinux,
		Platform:     platform,
		VersionStr:   version,
		VersionMajor: maj,
		VersionMinor: minor,
		VersionPatch: patch,
	}, nil
}
