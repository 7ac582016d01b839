package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/danmuck/hostctl/internal/api"
	"github.com/danmuck/hostctl/internal/config"
	"github.com/danmuck/hostctl/internal/controller"
)

const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

// loadConfig reads --config, or falls back to the local-only default.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if strings.TrimSpace(path) == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// withSession resolves --host, runs fn against it and closes the session
// and its opener afterwards.
func withSession(cmd *cobra.Command, fn func(s *controller.Session) error) (err error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	name, _ := cmd.Flags().GetString("host")
	opener := &controller.Opener{Config: cfg}
	defer func() {
		if cerr := opener.Close(); err == nil {
			err = cerr
		}
	}()
	s, err := opener.Open(name)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(); err == nil {
			err = cerr
		}
	}()
	return fn(s)
}

func outputFormat(cmd *cobra.Command) (string, error) {
	format, _ := cmd.Flags().GetString("output")
	switch format = strings.ToLower(strings.TrimSpace(format)); format {
	case outputText, outputJSON, outputYAML:
		return format, nil
	default:
		return "", fmt.Errorf("unknown output format %q (expected text, json or yaml)", format)
	}
}

// render writes v as JSON or YAML, or calls text for the text format.
func render(cmd *cobra.Command, v any, text func(w io.Writer) error) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return text(w)
	}
}

func renderBool(cmd *cobra.Command, key string, v bool) error {
	return render(cmd, map[string]bool{key: v}, func(w io.Writer) error {
		_, err := fmt.Fprintln(w, v)
		return err
	})
}

func renderOwner(cmd *cobra.Command, owner api.FileOwner) error {
	return render(cmd, owner, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "%s(%d):%s(%d)\n", owner.UserName, owner.UserUID, owner.GroupName, owner.GroupGID)
		return err
	})
}

func renderMode(cmd *cobra.Command, mode uint16) error {
	return render(cmd, map[string]uint16{"mode": mode}, func(w io.Writer) error {
		_, err := fmt.Fprintln(w, mode)
		return err
	})
}

// renderResult prints a command result and turns a non-zero exit into an
// error.
func renderResult(cmd *cobra.Command, res api.CommandResult) error {
	err := render(cmd, res, func(w io.Writer) error {
		if _, err := io.WriteString(w, res.Stdout); err != nil {
			return err
		}
		_, err := io.WriteString(cmd.ErrOrStderr(), res.Stderr)
		return err
	})
	if err != nil {
		return err
	}
	if !res.Success() {
		return fmt.Errorf("exit status %d", res.ExitCode)
	}
	return nil
}

// parseMode reads permission digits such as 644. The digits are kept as a
// decimal number, matching what hosts report.
func parseMode(raw string) (uint16, error) {
	raw = strings.TrimPrefix(strings.TrimSpace(raw), "0")
	if raw == "" {
		return 0, nil
	}
	if strings.Trim(raw, "01234567") != "" || len(raw) > 4 {
		return 0, fmt.Errorf("invalid mode %q (expected octal digits like 644)", raw)
	}
	mode, err := strconv.ParseUint(raw, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid mode %q: %w", raw, err)
	}
	return uint16(mode), nil
}

// splitOwner parses user:group.
func splitOwner(raw string) (string, string, error) {
	user, group, ok := strings.Cut(raw, ":")
	if !ok || user == "" || group == "" {
		return "", "", fmt.Errorf("invalid owner %q (expected user:group)", raw)
	}
	return user, group, nil
}
