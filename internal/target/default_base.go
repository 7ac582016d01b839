package target

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/sys/unix"

	"github.com/danmuck/hostctl/internal/api"
	"github.com/danmuck/hostctl/internal/pkgmgr"
	"github.com/danmuck/hostctl/internal/telemetry"
	"github.com/danmuck/hostctl/internal/tools"
)

// statFlavor holds the stat(1) arguments for owner and mode lookups.
// BSD and GNU stat disagree on the flag and the format verbs.
type statFlavor struct {
	owner []string
	mode  []string
}

var (
	bsdStat = statFlavor{
		owner: []string{"-f", "%Su %u %Sg %g"},
		mode:  []string{"-f", "%Lp"},
	}
	gnuStat = statFlavor{
		owner: []string{"-c", "%U %u %G %g"},
		mode:  []string{"-c", "%a"},
	}
)

// Default implements the POSIX behavior shared by every local platform.
type Default struct {
	runner   tools.CommandRunner
	registry *pkgmgr.Registry
	root     string
	stat     statFlavor
}

// NewDefault returns the generic POSIX layer.
func NewDefault(opts Options) *Default {
	return newDefault(opts, bsdStat)
}

func newDefault(opts Options, stat statFlavor) *Default {
	opts = opts.withDefaults()
	return &Default{
		runner:   opts.Runner,
		registry: opts.Registry,
		root:     opts.Root,
		stat:     stat,
	}
}

// Exec runs cmd through /bin/sh.
func (d *Default) Exec(cmd string) (api.CommandResult, error) {
	log.Debug().Str("cmd", cmd).Msg("exec")
	res, err := tools.Shell(d.runner, cmd)
	if err != nil {
		return api.CommandResult{}, osErr("exec", "", err)
	}
	return res, nil
}

// run executes name directly and reports a non-zero exit in the result.
func (d *Default) run(name string, args ...string) (api.CommandResult, error) {
	stdout, stderr, code, err := d.runner.Run(name, args...)
	if err != nil && !tools.IsExitError(err) {
		return api.CommandResult{}, osErr(name, "", err)
	}
	return api.CommandResult{ExitCode: code, Stdout: string(stdout), Stderr: string(stderr)}, nil
}

// mustRun is run with a non-zero exit turned into an OsError.
func (d *Default) mustRun(op string, path string, name string, args ...string) (string, error) {
	res, err := d.run(name, args...)
	if err != nil {
		return "", err
	}
	if !res.Success() {
		return "", osErr(op, path, fmt.Errorf("%s exited %d: %s", name, res.ExitCode, strings.TrimSpace(res.Stderr)))
	}
	return res.Stdout, nil
}

func (d *Default) path(parts ...string) string {
	return filepath.Join(append([]string{d.root}, parts...)...)
}

func (d *Default) FileIsFile(path string) (bool, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, osErr("is_file", path, err)
	}
	return info.Mode().IsRegular(), nil
}

func (d *Default) FileExists(path string) (bool, error) {
	return d.exists("exists", path)
}

func (d *Default) exists(op string, path string) (bool, error) {
	_, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, osErr(op, path, err)
	}
	return true, nil
}

func (d *Default) FileDelete(path string) error {
	return osErr("delete", path, os.Remove(path))
}

func (d *Default) FileMove(path string, newPath string) error {
	return osErr("mv", path, os.Rename(path, newPath))
}

// FileCopy copies contents and permission bits. newPath is truncated if it
// exists.
func (d *Default) FileCopy(path string, newPath string) error {
	src, err := os.Open(path)
	if err != nil {
		return osErr("copy", path, err)
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return osErr("copy", path, err)
	}
	dst, err := os.OpenFile(newPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return osErr("copy", newPath, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return osErr("copy", newPath, err)
	}
	if err := dst.Close(); err != nil {
		return osErr("copy", newPath, err)
	}
	return osErr("copy", newPath, os.Chmod(newPath, info.Mode().Perm()))
}

func (d *Default) FileOwner(path string) (api.FileOwner, error) {
	out, err := d.mustRun("get_owner", path, "stat", append(append([]string{}, d.stat.owner...), path)...)
	if err != nil {
		return api.FileOwner{}, err
	}
	return parseOwner(path, out)
}

func parseOwner(path string, out string) (api.FileOwner, error) {
	fields := strings.Fields(out)
	if len(fields) != 4 {
		return api.FileOwner{}, osErr("get_owner", path, fmt.Errorf("unexpected stat output %q", out))
	}
	uid, err := strconv.ParseUint(fields[1], 10, 64)
	if err != nil {
		return api.FileOwner{}, osErr("get_owner", path, err)
	}
	gid, err := strconv.ParseUint(fields[3], 10, 64)
	if err != nil {
		return api.FileOwner{}, osErr("get_owner", path, err)
	}
	return api.FileOwner{UserName: fields[0], UserUID: uid, GroupName: fields[2], GroupGID: gid}, nil
}

func (d *Default) FileSetOwner(path string, user string, group string) error {
	_, err := d.mustRun("set_owner", path, "chown", user+":"+group, path)
	return err
}

// FileMode returns the permission bits written as octal digits read in
// decimal, e.g. 0644 is reported as 644.
func (d *Default) FileMode(path string) (uint16, error) {
	out, err := d.mustRun("get_mode", path, "stat", append(append([]string{}, d.stat.mode...), path)...)
	if err != nil {
		return 0, err
	}
	mode, err := strconv.ParseUint(strings.TrimSpace(out), 10, 16)
	if err != nil {
		return 0, osErr("get_mode", path, err)
	}
	return uint16(mode), nil
}

// FileSetMode takes mode in the same digits-as-decimal form as FileMode.
func (d *Default) FileSetMode(path string, mode uint16) error {
	_, err := d.mustRun("set_mode", path, "chmod", strconv.FormatUint(uint64(mode), 10), path)
	return err
}

func (d *Default) DirectoryIsDirectory(path string) (bool, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, osErr("is_directory", path, err)
	}
	return info.IsDir(), nil
}

func (d *Default) DirectoryExists(path string) (bool, error) {
	return d.exists("exists", path)
}

func (d *Default) DirectoryCreate(path string, recursive bool) error {
	if recursive {
		return osErr("create", path, os.MkdirAll(path, 0o755))
	}
	return osErr("create", path, os.Mkdir(path, 0o755))
}

func (d *Default) DirectoryDelete(path string, recursive bool) error {
	if recursive {
		return osErr("delete", path, os.RemoveAll(path))
	}
	return osErr("delete", path, os.Remove(path))
}

func (d *Default) DirectoryMove(path string, newPath string) error {
	return osErr("mv", path, os.Rename(path, newPath))
}

func (d *Default) DirectoryOwner(path string) (api.FileOwner, error) {
	return d.FileOwner(path)
}

func (d *Default) DirectorySetOwner(path string, user string, group string) error {
	return d.FileSetOwner(path, user, group)
}

func (d *Default) DirectoryMode(path string) (uint16, error) {
	return d.FileMode(path)
}

func (d *Default) DirectorySetMode(path string, mode uint16) error {
	return d.FileSetMode(path, mode)
}

// ResolveProvider returns the first active provider among candidates.
func (d *Default) ResolveProvider(candidates []pkgmgr.Kind) (pkgmgr.Kind, error) {
	return d.registry.ResolveDefault(d, candidates)
}

// ServiceAction runs the generic service(8) wrapper.
func (d *Default) ServiceAction(name string, action string) (*api.CommandResult, error) {
	if err := checkAction(action); err != nil {
		return nil, err
	}
	res, err := d.run("service", name, action)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (d *Default) Hostname() (string, error) {
	uts, err := uname()
	if err != nil {
		return "", err
	}
	return unix.ByteSliceToString(uts.Nodename[:]), nil
}

func (d *Default) Arch() (string, error) {
	uts, err := uname()
	if err != nil {
		return "", err
	}
	return unix.ByteSliceToString(uts.Machine[:]), nil
}

func uname() (unix.Utsname, error) {
	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		return unix.Utsname{}, osErr("uname", "", err)
	}
	return uts, nil
}

// Mounts lists filesystems from POSIX df output.
func (d *Default) Mounts() ([]telemetry.FsMount, error) {
	out, err := d.mustRun("df", "", "df", "-Pk")
	if err != nil {
		return nil, err
	}
	return parseDF(out)
}

func parseDF(out string) ([]telemetry.FsMount, error) {
	var mounts []telemetry.FsMount
	scanner := bufio.NewScanner(strings.NewReader(out))
	header := true
	for scanner.Scan() {
		if header {
			header = false
			continue
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) < 6 {
			continue
		}
		size, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			return nil, osErr("df", "", err)
		}
		used, err := strconv.ParseUint(fields[2], 10, 64)
		if err != nil {
			return nil, osErr("df", "", err)
		}
		avail, err := strconv.ParseUint(fields[3], 10, 64)
		if err != nil {
			return nil, osErr("df", "", err)
		}
		capacity, err := strconv.ParseFloat(strings.TrimSuffix(fields[4], "%"), 32)
		if err != nil {
			return nil, osErr("df", "", err)
		}
		mounts = append(mounts, telemetry.FsMount{
			Filesystem: fields[0],
			Mountpoint: strings.Join(fields[5:], " "),
			Size:       size * 1024,
			Used:       used * 1024,
			Available:  avail * 1024,
			Capacity:   float32(capacity / 100),
		})
	}
	return mounts, scanner.Err()
}

// Interfaces reports each interface with its first IPv4 and IPv6 address.
func (d *Default) Interfaces() ([]telemetry.Netif, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, osErr("netif", "", err)
	}
	out := make([]telemetry.Netif, 0, len(ifaces))
	for _, iface := range ifaces {
		netif := telemetry.Netif{Interface: iface.Name, MAC: iface.HardwareAddr.String()}
		if iface.Flags&net.FlagUp != 0 {
			netif.Status = "active"
		} else {
			netif.Status = "inactive"
		}
		addrs, err := iface.Addrs()
		if err != nil {
			return nil, osErr("netif", iface.Name, err)
		}
		for _, addr := range addrs {
			ipnet, ok := addr.(*net.IPNet)
			if !ok {
				continue
			}
			if ip4 := ipnet.IP.To4(); ip4 != nil {
				if netif.Inet == nil {
					netif.Inet = &telemetry.NetifIPv4{Address: ip4.String(), Netmask: net.IP(ipnet.Mask).String()}
				}
				continue
			}
			if netif.Inet6 == nil {
				ones, _ := ipnet.Mask.Size()
				v6 := &telemetry.NetifIPv6{Address: ipnet.IP.String(), Prefixlen: uint8(ones)}
				if ipnet.IP.IsLinkLocalUnicast() {
					v6.Scopeid = iface.Name
				}
				netif.Inet6 = v6
			}
		}
		out = append(out, netif)
	}
	return out, nil
}
