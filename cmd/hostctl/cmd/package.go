package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/danmuck/hostctl/internal/api"
	"github.com/danmuck/hostctl/internal/controller"
	"github.com/danmuck/hostctl/internal/pkgmgr"
)

var packageCmd = &cobra.Command{
	Use:     "package",
	Aliases: []string{"pkg"},
	Short:   "Query the package manager and install or remove packages",
}

var packageProviderCmd = &cobra.Command{
	Use:   "provider",
	Short: "Show the host's default package provider",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(s *controller.Session) error {
			kind, err := s.Target.DefaultProvider()
			if err != nil {
				return err
			}
			return render(cmd, map[string]string{"provider": kind.String()}, func(w io.Writer) error {
				_, err := fmt.Fprintln(w, kind)
				return err
			})
		})
	},
}

var packageProvidersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List known package providers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		names := make([]string, 0)
		for _, p := range pkgmgr.Builtin().All() {
			names = append(names, p.Kind().String())
		}
		return render(cmd, names, func(w io.Writer) error {
			for _, n := range names {
				if _, err := fmt.Fprintln(w, n); err != nil {
					return err
				}
			}
			return nil
		})
	},
}

var packageStatusCmd = &cobra.Command{
	Use:   "status <name>",
	Short: "Report whether a package is installed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPackage(cmd, args[0], func(s *controller.Session, p pkgmgr.Package) error {
			ok, err := p.IsInstalled(s.Target)
			if err != nil {
				return err
			}
			return renderBool(cmd, "installed", ok)
		})
	},
}

var packageInstallCmd = &cobra.Command{
	Use:   "install <name>",
	Short: "Install a package unless it is already installed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPackage(cmd, args[0], func(s *controller.Session, p pkgmgr.Package) error {
			res, err := p.Install(s.Target)
			return renderPackageResult(cmd, p.Name, "installed", res, err)
		})
	},
}

var packageUninstallCmd = &cobra.Command{
	Use:   "uninstall <name>",
	Short: "Remove a package if it is installed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPackage(cmd, args[0], func(s *controller.Session, p pkgmgr.Package) error {
			res, err := p.Uninstall(s.Target)
			return renderPackageResult(cmd, p.Name, "absent", res, err)
		})
	},
}

// withPackage binds name to --provider, or to the host's default provider.
func withPackage(cmd *cobra.Command, name string, fn func(s *controller.Session, p pkgmgr.Package) error) error {
	raw, _ := cmd.Flags().GetString("provider")
	return withSession(cmd, func(s *controller.Session) error {
		var kind pkgmgr.Kind
		var err error
		if raw != "" {
			kind, err = pkgmgr.ParseKind(raw)
		} else {
			kind, err = s.Target.DefaultProvider()
		}
		if err != nil {
			return err
		}
		provider, ok := pkgmgr.Builtin().Lookup(kind)
		if !ok {
			return fmt.Errorf("%w: %s", pkgmgr.ErrUnknownProvider, kind)
		}
		p, err := pkgmgr.NewPackage(name, provider)
		if err != nil {
			return err
		}
		return fn(s, p)
	})
}

func renderPackageResult(cmd *cobra.Command, name string, state string, res *api.CommandResult, err error) error {
	if err != nil {
		return err
	}
	if res == nil {
		return render(cmd, map[string]bool{"changed": false}, func(w io.Writer) error {
			_, err := fmt.Fprintf(w, "%s: already %s\n", name, state)
			return err
		})
	}
	return renderResult(cmd, *res)
}

func init() {
	for _, c := range []*cobra.Command{packageStatusCmd, packageInstallCmd, packageUninstallCmd} {
		c.Flags().String("provider", "", "Package provider (default: the host's default provider)")
	}
	packageCmd.AddCommand(packageProviderCmd, packageProvidersCmd, packageStatusCmd, packageInstallCmd, packageUninstallCmd)
	rootCmd.AddCommand(packageCmd)
}
