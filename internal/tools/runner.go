package tools

import (
	"bytes"
	"errors"
	"os/exec"
	"strings"

	"github.com/danmuck/hostctl/internal/api"
)

// CommandRunner abstracts process execution for local capability strategies.
type CommandRunner interface {
	Run(name string, args ...string) ([]byte, []byte, int32, error)
}

// ExecRunner executes commands on the local host.
type ExecRunner struct{}

// tools command-runner implementation backed by os/exec.
func (r ExecRunner) Run(name string, args ...string) ([]byte, []byte, int32, error) {
	cmd := exec.Command(name, args...)
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return stdout.Bytes(), stderr.Bytes(), 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return stdout.Bytes(), stderr.Bytes(), int32(exitErr.ExitCode()), err
	}

	exitCode := int32(1)
	var execErr *exec.Error
	if errors.As(err, &execErr) {
		exitCode = 127
	}
	return stdout.Bytes(), stderr.Bytes(), exitCode, err
}

// IsExitError reports whether err only signals a non-zero exit status, as
// opposed to a failure to start the process.
func IsExitError(err error) bool {
	var exitErr *exec.ExitError
	return errors.As(err, &exitErr)
}

// Shell runs line through /bin/sh -c. A non-zero exit status is reported in
// the result, not as an error.
func Shell(r CommandRunner, line string) (api.CommandResult, error) {
	stdout, stderr, code, err := r.Run("/bin/sh", "-c", line)
	if err != nil && !IsExitError(err) {
		return api.CommandResult{}, err
	}
	return api.CommandResult{
		ExitCode: code,
		Stdout:   string(stdout),
		Stderr:   string(stderr),
	}, nil
}

// ShellQuote wraps s in single quotes for safe use in a /bin/sh command line.
func ShellQuote(s string) string {
	if s != "" && strings.IndexFunc(s, needsQuote) < 0 {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func needsQuote(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return false
	}
	return !strings.ContainsRune("-_./:@+=,", r)
}
