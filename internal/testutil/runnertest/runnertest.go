// Package runnertest provides a scripted tools.CommandRunner.
package runnertest

import (
	"fmt"
	"strings"
	"sync"

	"github.com/danmuck/hostctl/internal/tools"
)

// Reply is the canned outcome of one command line.
type Reply struct {
	Stdout string
	Stderr string
	Code   int32
	Err    error
}

// Runner answers commands from a script keyed by the joined command line.
// For /bin/sh -c invocations the key is the shell line itself.
type Runner struct {
	mu      sync.Mutex
	replies map[string]Reply
	calls   []string
}

var _ tools.CommandRunner = (*Runner)(nil)

func New() *Runner {
	return &Runner{replies: make(map[string]Reply)}
}

// On scripts the reply for line and returns the runner for chaining.
func (r *Runner) On(line string, reply Reply) *Runner {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.replies[line] = reply
	return r
}

func (r *Runner) Run(name string, args ...string) ([]byte, []byte, int32, error) {
	line := Key(name, args...)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, line)
	reply, ok := r.replies[line]
	if !ok {
		return nil, []byte("unscripted: " + line), 127, nil
	}
	if reply.Err != nil {
		return []byte(reply.Stdout), []byte(reply.Stderr), reply.Code, reply.Err
	}
	return []byte(reply.Stdout), []byte(reply.Stderr), reply.Code, nil
}

// Calls returns every command line run so far.
func (r *Runner) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

// Ran reports whether line was run.
func (r *Runner) Ran(line string) bool {
	for _, c := range r.Calls() {
		if c == line {
			return true
		}
	}
	return false
}

// Key renders a command the way Runner indexes it.
func Key(name string, args ...string) string {
	if name == "/bin/sh" && len(args) == 2 && args[0] == "-c" {
		return args[1]
	}
	if len(args) == 0 {
		return name
	}
	return fmt.Sprintf("%s %s", name, strings.Join(args, " "))
}
