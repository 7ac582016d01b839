package target

import (
	"errors"
	"io/fs"
	"os"
	"regexp"
	"strconv"

	"github.com/danmuck/hostctl/internal/api"
)

var runlevelRe = regexp.MustCompile(`^[A-Z] ([0-9])\s?$`)

// DebianBase holds what Debian-derived platforms share: sysvinit service
// management through update-rc.d.
type DebianBase struct {
	linux *Linux
}

func NewDebianBase(linux *Linux) *DebianBase {
	return &DebianBase{linux: linux}
}

// Runlevel returns the current runlevel as reported by runlevel(8).
func (b *DebianBase) Runlevel() (int, error) {
	out, err := b.linux.mustRun("runlevel", "", "runlevel")
	if err != nil {
		return 0, err
	}
	m := runlevelRe.FindStringSubmatch(out)
	if m == nil {
		return 0, osErr("runlevel", "", errors.New("could not parse runlevel output "+strconv.Quote(out)))
	}
	return strconv.Atoi(m[1])
}

// InitEnabled reports whether /etc/rc<runlevel>.d holds a start link for name.
func (b *DebianBase) InitEnabled(name string) (bool, error) {
	level, err := b.Runlevel()
	if err != nil {
		return false, err
	}
	dir := b.linux.path("etc", "rc"+strconv.Itoa(level)+".d")
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, osErr("rc", dir, err)
	}
	link := regexp.MustCompile(`^S[0-9]{2}` + regexp.QuoteMeta(name) + `$`)
	for _, entry := range entries {
		if link.MatchString(entry.Name()) {
			return true, nil
		}
	}
	return false, nil
}

// ServiceInit manages name with init scripts. Enable and disable are skipped
// when the rc link already matches; other actions go through service(8).
func (b *DebianBase) ServiceInit(name string, action string) (*api.CommandResult, error) {
	if err := checkAction(action); err != nil {
		return nil, err
	}
	switch action {
	case ActionEnable, ActionDisable:
		enabled, err := b.InitEnabled(name)
		if err != nil {
			return nil, err
		}
		if enabled == (action == ActionEnable) {
			return nil, nil
		}
		res, err := b.linux.run("update-rc.d", name, action)
		if err != nil {
			return nil, err
		}
		return &res, nil
	default:
		return b.linux.Default.ServiceAction(name, action)
	}
}
