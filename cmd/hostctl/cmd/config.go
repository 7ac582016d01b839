package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/danmuck/hostctl/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Create, validate and list host configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init <path>",
	Short: "Write a config template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		if err := config.WriteTemplate(args[0], force); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote config template to %s\n", args[0])
		return nil
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate <path>",
	Short: "Validate a config file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Validated %s: %d hosts (%s)\n", args[0], len(cfg.Hosts), strings.Join(cfg.HostNames(), ", "))
		return nil
	},
}

type hostView struct {
	Name     string `json:"name" yaml:"name"`
	Mode     string `json:"mode" yaml:"mode"`
	Platform string `json:"platform,omitempty" yaml:"platform,omitempty"`
	Address  string `json:"address,omitempty" yaml:"address,omitempty"`
}

var configHostsCmd = &cobra.Command{
	Use:   "hosts",
	Short: "List configured hosts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		views := make([]hostView, 0, len(cfg.Hosts))
		for _, h := range cfg.Hosts {
			v := hostView{Name: h.Name, Mode: h.Mode}
			if h.Mode == config.ModeRemote {
				v.Address = fmt.Sprintf("%s:%d", h.Hostname, h.APIPort)
			} else {
				v.Platform = h.Platform
			}
			views = append(views, v)
		}
		return render(cmd, views, func(w io.Writer) error {
			for _, v := range views {
				detail := v.Platform
				if v.Address != "" {
					detail = v.Address
				}
				if _, err := fmt.Fprintf(w, "%s\t%s\t%s\n", v.Name, v.Mode, detail); err != nil {
					return err
				}
			}
			return nil
		})
	},
}

func init() {
	configInitCmd.Flags().Bool("force", false, "Overwrite an existing file")
	configCmd.AddCommand(configInitCmd, configValidateCmd, configHostsCmd)
	rootCmd.AddCommand(configCmd)
}
