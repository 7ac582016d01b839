package cmd

import (
	"github.com/spf13/cobra"

	"github.com/danmuck/hostctl/internal/controller"
)

var dirCmd = &cobra.Command{
	Use:     "dir",
	Aliases: []string{"directory"},
	Short:   "Inspect and manage directories",
}

var dirIsDirCmd = &cobra.Command{
	Use:   "is-dir <path>",
	Short: "Report whether path is a directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(s *controller.Session) error {
			ok, err := s.Target.DirectoryIsDirectory(args[0])
			if err != nil {
				return err
			}
			return renderBool(cmd, "is_directory", ok)
		})
	},
}

var dirExistsCmd = &cobra.Command{
	Use:   "exists <path>",
	Short: "Report whether path exists",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(s *controller.Session) error {
			ok, err := s.Target.DirectoryExists(args[0])
			if err != nil {
				return err
			}
			return renderBool(cmd, "exists", ok)
		})
	},
}

var dirMkdirCmd = &cobra.Command{
	Use:   "mkdir <path>",
	Short: "Create a directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		parents, _ := cmd.Flags().GetBool("parents")
		return withSession(cmd, func(s *controller.Session) error {
			return s.Target.DirectoryCreate(args[0], parents)
		})
	},
}

var dirRmCmd = &cobra.Command{
	Use:   "rm <path>",
	Short: "Delete a directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		recursive, _ := cmd.Flags().GetBool("recursive")
		return withSession(cmd, func(s *controller.Session) error {
			return s.Target.DirectoryDelete(args[0], recursive)
		})
	},
}

var dirMvCmd = &cobra.Command{
	Use:   "mv <path> <new-path>",
	Short: "Move a directory",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(s *controller.Session) error {
			return s.Target.DirectoryMove(args[0], args[1])
		})
	},
}

var dirOwnerCmd = &cobra.Command{
	Use:   "owner <path>",
	Short: "Show the owning user and group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(s *controller.Session) error {
			owner, err := s.Target.DirectoryOwner(args[0])
			if err != nil {
				return err
			}
			return renderOwner(cmd, owner)
		})
	},
}

var dirChownCmd = &cobra.Command{
	Use:   "chown <user:group> <path>",
	Short: "Change the owning user and group",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		user, group, err := splitOwner(args[0])
		if err != nil {
			return err
		}
		return withSession(cmd, func(s *controller.Session) error {
			return s.Target.DirectorySetOwner(args[1], user, group)
		})
	},
}

var dirModeCmd = &cobra.Command{
	Use:   "mode <path>",
	Short: "Show permission bits",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(s *controller.Session) error {
			mode, err := s.Target.DirectoryMode(args[0])
			if err != nil {
				return err
			}
			return renderMode(cmd, mode)
		})
	},
}

var dirChmodCmd = &cobra.Command{
	Use:   "chmod <mode> <path>",
	Short: "Set permission bits, e.g. 755",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := parseMode(args[0])
		if err != nil {
			return err
		}
		return withSession(cmd, func(s *controller.Session) error {
			return s.Target.DirectorySetMode(args[1], mode)
		})
	},
}

func init() {
	dirMkdirCmd.Flags().BoolP("parents", "p", false, "Create missing parent directories")
	dirRmCmd.Flags().BoolP("recursive", "r", false, "Delete contents as well")
	dirCmd.AddCommand(dirIsDirCmd, dirExistsCmd, dirMkdirCmd, dirRmCmd, dirMvCmd,
		dirOwnerCmd, dirChownCmd, dirModeCmd, dirChmodCmd)
	rootCmd.AddCommand(dirCmd)
}
