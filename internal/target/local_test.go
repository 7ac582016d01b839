package target

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/danmuck/hostctl/internal/api"
	"github.com/danmuck/hostctl/internal/pkgmgr"
	"github.com/danmuck/hostctl/internal/testutil/runnertest"
	"github.com/danmuck/hostctl/internal/testutil/testlog"
	"github.com/stretchr/testify/require"
)

const (
	initExeStat   = "stat --format=%N /proc/1/exe"
	systemdExe    = "'/proc/1/exe' -> '/usr/lib/systemd/systemd'\n"
	sysvinitExe   = "'/proc/1/exe' -> '/sbin/init'\n"
	cpuinfoSample = `processor	: 0
vendor_id	: GenuineIntel
model name	: Intel(R) Xeon(R) CPU E5-2680 v4 @ 2.40GHz
cpu cores	: 4

processor	: 1
vendor_id	: GenuineIntel
model name	: Intel(R) Xeon(R) CPU E5-2680 v4 @ 2.40GHz
cpu cores	: 4
`
)

func writeFile(t *testing.T, root string, rel string, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestSystemdStartSkipsActiveUnit(t *testing.T) {
	testlog.Start(t)
	r := runnertest.New().
		On(initExeStat, runnertest.Reply{Stdout: systemdExe}).
		On("systemctl is-active nginx", runnertest.Reply{Stdout: "active\n"})
	tgt := NewUbuntu(Options{Runner: r})

	res, err := tgt.ServiceAction("nginx", ActionStart)
	require.NoError(t, err)
	require.Nil(t, res)
	require.False(t, r.Ran("systemctl start nginx"))
}

func TestSystemdStartRunsForInactiveUnit(t *testing.T) {
	testlog.Start(t)
	r := runnertest.New().
		On(initExeStat, runnertest.Reply{Stdout: systemdExe}).
		On("systemctl is-active nginx", runnertest.Reply{Stdout: "inactive\n", Code: 3}).
		On("systemctl start nginx", runnertest.Reply{})
	tgt := NewUbuntu(Options{Runner: r})

	res, err := tgt.ServiceAction("nginx", ActionStart)
	require.NoError(t, err)
	require.NotNil(t, res)
	require.True(t, res.Success())
	require.Equal(t, []string{initExeStat, "systemctl is-active nginx", "systemctl start nginx"}, r.Calls())
}

func TestSystemdEnableAndDisable(t *testing.T) {
	testlog.Start(t)
	r := runnertest.New().
		On("systemctl is-enabled nginx", runnertest.Reply{Stdout: "disabled\n", Code: 1}).
		On("systemctl enable nginx", runnertest.Reply{Stderr: "Created symlink.\n"})
	tgt := NewNixOS(Options{Runner: r})

	res, err := tgt.ServiceAction("nginx", ActionEnable)
	require.NoError(t, err)
	require.NotNil(t, res)
	require.Equal(t, "Created symlink.\n", res.Stderr)

	res, err = tgt.ServiceAction("nginx", ActionDisable)
	require.NoError(t, err)
	require.Nil(t, res)
	require.False(t, r.Ran("systemctl disable nginx"))
}

func TestSystemdOtherActionsAlwaysRun(t *testing.T) {
	testlog.Start(t)
	r := runnertest.New().On("systemctl restart nginx", runnertest.Reply{})
	tgt := NewNixOS(Options{Runner: r})

	res, err := tgt.ServiceAction("nginx", "restart")
	require.NoError(t, err)
	require.NotNil(t, res)
	require.Equal(t, []string{"systemctl restart nginx"}, r.Calls())
}

func TestSystemdFailedActionIsAResult(t *testing.T) {
	testlog.Start(t)
	r := runnertest.New().
		On("systemctl is-active ghost", runnertest.Reply{Code: 3}).
		On("systemctl start ghost", runnertest.Reply{Stderr: "Unit ghost.service not found.\n", Code: 5})
	tgt := NewNixOS(Options{Runner: r})

	res, err := tgt.ServiceAction("ghost", ActionStart)
	require.NoError(t, err)
	require.NotNil(t, res)
	require.Equal(t, int32(5), res.ExitCode)
}

func TestInitScriptEnable(t *testing.T) {
	testlog.Start(t)
	root := t.TempDir()
	writeFile(t, root, "etc/rc2.d/S01nginx", "")
	r := runnertest.New().
		On(initExeStat, runnertest.Reply{Stdout: sysvinitExe}).
		On("runlevel", runnertest.Reply{Stdout: "N 2\n"}).
		On("update-rc.d nginx disable", runnertest.Reply{}).
		On("update-rc.d redis enable", runnertest.Reply{})
	tgt := NewDebian(Options{Runner: r, Root: root})

	res, err := tgt.ServiceAction("nginx", ActionEnable)
	require.NoError(t, err)
	require.Nil(t, res)

	res, err = tgt.ServiceAction("nginx", ActionDisable)
	require.NoError(t, err)
	require.NotNil(t, res)
	require.True(t, r.Ran("update-rc.d nginx disable"))

	res, err = tgt.ServiceAction("redis", ActionEnable)
	require.NoError(t, err)
	require.NotNil(t, res)
	require.True(t, r.Ran("update-rc.d redis enable"))
}

func TestServiceActionRejectsBlankAction(t *testing.T) {
	r := runnertest.New()
	for _, action := range []string{"", "  ", "start now"} {
		_, err := NewUbuntu(Options{Runner: r}).ServiceAction("nginx", action)
		require.ErrorIs(t, err, ErrUnknownAction)
		_, err = NewNixOS(Options{Runner: r}).ServiceAction("nginx", action)
		require.ErrorIs(t, err, ErrUnknownAction)
		_, err = NewDefault(Options{Runner: r}).ServiceAction("nginx", action)
		require.ErrorIs(t, err, ErrUnknownAction)
	}
	require.Empty(t, r.Calls())
}

func TestInitScriptStartUsesServiceWrapper(t *testing.T) {
	testlog.Start(t)
	r := runnertest.New().
		On(initExeStat, runnertest.Reply{Stdout: sysvinitExe}).
		On("service nginx start", runnertest.Reply{Stdout: "Starting nginx.\n"})
	tgt := NewUbuntu(Options{Runner: r})

	res, err := tgt.ServiceAction("nginx", ActionStart)
	require.NoError(t, err)
	require.NotNil(t, res)
	require.Equal(t, "Starting nginx.\n", res.Stdout)
}

func TestRunlevelUnparseable(t *testing.T) {
	r := runnertest.New().On("runlevel", runnertest.Reply{Stdout: "unknown\n"})
	base := NewDebianBase(NewLinux(Options{Runner: r}))

	_, err := base.Runlevel()
	var osError *OsError
	require.True(t, errors.As(err, &osError))
}

func TestInitDetectionFailureIsOsError(t *testing.T) {
	r := runnertest.New().On(initExeStat, runnertest.Reply{Stderr: "permission denied", Code: 1})
	tgt := NewDebian(Options{Runner: r})

	_, err := tgt.ServiceAction("nginx", ActionStart)
	var osError *OsError
	require.True(t, errors.As(err, &osError))
}

func TestDefaultProviderPerPlatform(t *testing.T) {
	testlog.Start(t)
	active := runnertest.New().
		On("type nix-env", runnertest.Reply{Stdout: "nix-env is /run/current-system/sw/bin/nix-env\n"}).
		On("type apt-get", runnertest.Reply{Stdout: "apt-get is /usr/bin/apt-get\n"})

	kind, err := NewNixOS(Options{Runner: active}).DefaultProvider()
	require.NoError(t, err)
	require.Equal(t, pkgmgr.Nix, kind)

	kind, err = NewUbuntu(Options{Runner: active}).DefaultProvider()
	require.NoError(t, err)
	require.Equal(t, pkgmgr.Apt, kind)

	_, err = NewNixOS(Options{Runner: runnertest.New()}).DefaultProvider()
	require.True(t, errors.Is(err, pkgmgr.ErrNoDefaultProvider))
}

func TestGnuStatOwnerAndMode(t *testing.T) {
	r := runnertest.New().
		On("stat -c %U %u %G %g /etc/hosts", runnertest.Reply{Stdout: "root 0 wheel 10\n"}).
		On("stat -c %a /etc/hosts", runnertest.Reply{Stdout: "644\n"}).
		On("chmod 600 /etc/hosts", runnertest.Reply{}).
		On("chown www:www /srv", runnertest.Reply{})
	tgt := NewLinux(Options{Runner: r})

	owner, err := tgt.FileOwner("/etc/hosts")
	require.NoError(t, err)
	require.Equal(t, api.FileOwner{UserName: "root", UserUID: 0, GroupName: "wheel", GroupGID: 10}, owner)

	mode, err := tgt.FileMode("/etc/hosts")
	require.NoError(t, err)
	require.Equal(t, uint16(644), mode)

	require.NoError(t, tgt.FileSetMode("/etc/hosts", 600))
	require.NoError(t, tgt.DirectorySetOwner("/srv", "www", "www"))
}

func TestBsdStatOwner(t *testing.T) {
	r := runnertest.New().On("stat -f %Su %u %Sg %g /etc/hosts", runnertest.Reply{Stdout: "root 0 wheel 0\n"})
	owner, err := NewDefault(Options{Runner: r}).FileOwner("/etc/hosts")
	require.NoError(t, err)
	require.Equal(t, "wheel", owner.GroupName)
}

func TestChownFailureIsOsError(t *testing.T) {
	r := runnertest.New().On("chown nobody:nogroup /etc/hosts", runnertest.Reply{Stderr: "Operation not permitted", Code: 1})
	err := NewLinux(Options{Runner: r}).FileSetOwner("/etc/hosts", "nobody", "nogroup")
	var osError *OsError
	require.True(t, errors.As(err, &osError))
	require.Contains(t, err.Error(), "Operation not permitted")
}

func TestFileOperations(t *testing.T) {
	testlog.Start(t)
	dir := t.TempDir()
	src := filepath.Join(dir, "a.conf")
	require.NoError(t, os.WriteFile(src, []byte("listen 80\n"), 0o640))
	tgt := NewDefault(Options{Runner: runnertest.New()})

	ok, err := tgt.FileIsFile(src)
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = tgt.FileIsFile(dir)
	require.NoError(t, err)
	require.False(t, ok)
	ok, err = tgt.FileExists(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	require.False(t, ok)

	dst := filepath.Join(dir, "b.conf")
	require.NoError(t, tgt.FileCopy(src, dst))
	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	require.Equal(t, "listen 80\n", string(data))
	info, err := os.Stat(dst)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o640), info.Mode().Perm())

	moved := filepath.Join(dir, "c.conf")
	require.NoError(t, tgt.FileMove(dst, moved))
	ok, err = tgt.FileExists(dst)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, tgt.FileDelete(moved))
	err = tgt.FileDelete(moved)
	var osError *OsError
	require.True(t, errors.As(err, &osError))
	require.True(t, errors.Is(err, os.ErrNotExist))
}

func TestDirectoryOperations(t *testing.T) {
	testlog.Start(t)
	dir := t.TempDir()
	tgt := NewDefault(Options{Runner: runnertest.New()})
	nested := filepath.Join(dir, "a", "b", "c")

	require.Error(t, tgt.DirectoryCreate(nested, false))
	require.NoError(t, tgt.DirectoryCreate(nested, true))
	ok, err := tgt.DirectoryIsDirectory(nested)
	require.NoError(t, err)
	require.True(t, ok)

	top := filepath.Join(dir, "a")
	require.Error(t, tgt.DirectoryDelete(top, false))

	moved := filepath.Join(dir, "z")
	require.NoError(t, tgt.DirectoryMove(top, moved))
	ok, err = tgt.DirectoryExists(top)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, tgt.DirectoryDelete(moved, true))
	ok, err = tgt.DirectoryExists(moved)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestExecReportsExitCodeWithoutError(t *testing.T) {
	r := runnertest.New().On("false", runnertest.Reply{Code: 1})
	res, err := NewDefault(Options{Runner: r}).Exec("false")
	require.NoError(t, err)
	require.Equal(t, int32(1), res.ExitCode)
	require.False(t, res.Success())
}

func TestExecStartFailureIsOsError(t *testing.T) {
	r := runnertest.New().On("anything", runnertest.Reply{Code: 127, Err: errors.New("fork failed")})
	_, err := NewDefault(Options{Runner: r}).Exec("anything")
	var osError *OsError
	require.True(t, errors.As(err, &osError))
}

func TestParseDF(t *testing.T) {
	out := `Filesystem     1024-blocks    Used Available Capacity Mounted on
/dev/sda1         41152736 16520580  22519572      43% /
tmpfs              1018128        0   1018128       0% /dev/shm
/dev/sdb1          1000000   250000    750000      25% /mnt/My Disk
`
	mounts, err := parseDF(out)
	require.NoError(t, err)
	require.Len(t, mounts, 3)
	require.Equal(t, "/dev/sda1", mounts[0].Filesystem)
	require.Equal(t, "/", mounts[0].Mountpoint)
	require.Equal(t, uint64(41152736*1024), mounts[0].Size)
	require.InDelta(t, 0.43, mounts[0].Capacity, 0.0001)
	require.Equal(t, "/mnt/My Disk", mounts[2].Mountpoint)
}

func TestLinuxCPUAndMemory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "proc/cpuinfo", cpuinfoSample)
	writeFile(t, root, "proc/meminfo", "MemTotal:        2036256 kB\nMemFree:          123456 kB\n")
	tgt := NewLinux(Options{Root: root, Runner: runnertest.New()})

	cpu, err := tgt.CPU()
	require.NoError(t, err)
	require.Equal(t, "GenuineIntel", cpu.Vendor)
	require.Equal(t, "Intel(R) Xeon(R) CPU E5-2680 v4 @ 2.40GHz", cpu.Brand)
	require.Equal(t, uint32(4), cpu.Cores)

	mem, err := tgt.Memory()
	require.NoError(t, err)
	require.Equal(t, uint64(2036256*1024), mem)
}

func TestLinuxCPUCountsProcessorsWithoutCoreField(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "proc/cpuinfo", "processor : 0\nvendor_id : AuthenticAMD\nmodel name : EPYC\n\nprocessor : 1\nvendor_id : AuthenticAMD\nmodel name : EPYC\n")
	cpu, err := NewLinux(Options{Root: root}).CPU()
	require.NoError(t, err)
	require.Equal(t, uint32(2), cpu.Cores)
}

func TestLinuxCPUMissingVendor(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "proc/cpuinfo", "processor : 0\n")
	_, err := NewLinux(Options{Root: root}).CPU()
	var osError *OsError
	require.True(t, errors.As(err, &osError))
}

func TestDebianTelemetry(t *testing.T) {
	testlog.Start(t)
	root := t.TempDir()
	writeFile(t, root, "proc/cpuinfo", cpuinfoSample)
	writeFile(t, root, "proc/meminfo", "MemTotal: 1024 kB\n")
	writeFile(t, root, "etc/debian_version", "12.5\n")
	r := runnertest.New().On("df -Pk", runnertest.Reply{
		Stdout: "Filesystem 1024-blocks Used Available Capacity Mounted on\n/dev/vda1 100 50 50 50% /\n",
	})

	snap, err := NewDebian(Options{Root: root, Runner: r}).Telemetry()
	require.NoError(t, err)
	require.Equal(t, uint64(1024*1024), snap.Memory())
	require.Len(t, snap.FS(), 1)
	require.Equal(t, "linux", snap.OS().Family)
	require.Equal(t, "debian", snap.OS().Platform)
	require.Equal(t, "12.5", snap.OS().VersionStr)
	require.Equal(t, uint32(12), snap.OS().VersionMajor)
	require.Equal(t, uint32(5), snap.OS().VersionMinor)
	require.NotEmpty(t, snap.OS().Arch)
}

func TestDebianTelemetryCodenameVersion(t *testing.T) {
	testlog.Start(t)
	root := t.TempDir()
	writeFile(t, root, "proc/cpuinfo", cpuinfoSample)
	writeFile(t, root, "proc/meminfo", "MemTotal: 1024 kB\n")
	writeFile(t, root, "etc/debian_version", "trixie/sid\n")
	r := runnertest.New().On("df -Pk", runnertest.Reply{
		Stdout: "Filesystem 1024-blocks Used Available Capacity Mounted on\n/dev/vda1 100 50 50 50% /\n",
	})

	snap, err := NewDebian(Options{Root: root, Runner: r}).Telemetry()
	require.NoError(t, err)
	require.Equal(t, "debian", snap.OS().Platform)
	require.Equal(t, "trixie/sid", snap.OS().VersionStr)
	require.Zero(t, snap.OS().VersionMajor)
	require.Zero(t, snap.OS().VersionMinor)
	require.Zero(t, snap.OS().VersionPatch)
}

func TestUbuntuVersionWithoutLTS(t *testing.T) {
	r := runnertest.New().On("lsb_release -sd", runnertest.Reply{Stdout: "Ubuntu 23.10\n"})
	facts, err := NewUbuntu(Options{Runner: r}).osInfo()
	require.NoError(t, err)
	require.Equal(t, "23.10", facts.VersionStr)
	require.Equal(t, uint32(23), facts.VersionMajor)
	require.Equal(t, uint32(10), facts.VersionMinor)
}

func TestUbuntuVersionFromLsbRelease(t *testing.T) {
	r := runnertest.New().On("lsb_release -sd", runnertest.Reply{Stdout: "Ubuntu 22.04.3 LTS\n"})
	facts, err := NewUbuntu(Options{Runner: r}).osInfo()
	require.NoError(t, err)
	require.Equal(t, "22.04.3 LTS", facts.VersionStr)
	require.Equal(t, uint32(22), facts.VersionMajor)
	require.Equal(t, uint32(4), facts.VersionMinor)
	require.Equal(t, uint32(3), facts.VersionPatch)
}

func TestNixOSVersion(t *testing.T) {
	r := runnertest.New().On("nixos-version", runnertest.Reply{Stdout: "23.11.5541.abcdef12 (Tapir)\n"})
	facts, err := NewNixOS(Options{Runner: r}).osInfo()
	require.NoError(t, err)
	require.Equal(t, "nixos", facts.Platform)
	require.Equal(t, uint32(23), facts.VersionMajor)
	require.Equal(t, uint32(11), facts.VersionMinor)
	require.Equal(t, uint32(5541), facts.VersionPatch)
}

func TestDetectAndLocal(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "etc/os-release", "NAME=\"NixOS\"\nID=nixos\nVERSION_ID=\"23.11\"\n")

	id, err := Detect(root)
	require.NoError(t, err)
	require.Equal(t, PlatformNixOS, id)

	tgt, err := Local(PlatformAuto, Options{Root: root})
	require.NoError(t, err)
	require.IsType(t, &NixOS{}, tgt)

	tgt, err = Local("Ubuntu", Options{})
	require.NoError(t, err)
	require.IsType(t, &Ubuntu{}, tgt)
}

func TestLocalUnsupportedPlatform(t *testing.T) {
	_, err := Local("plan9", Options{})
	require.True(t, errors.Is(err, ErrUnsupportedPlatform))

	root := t.TempDir()
	writeFile(t, root, "etc/os-release", "ID=\"fedora\"\n")
	_, err = Local("", Options{Root: root})
	require.True(t, errors.Is(err, ErrUnsupportedPlatform))
}
