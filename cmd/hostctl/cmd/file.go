package cmd

import (
	"github.com/spf13/cobra"

	"github.com/danmuck/hostctl/internal/controller"
)

var fileCmd = &cobra.Command{
	Use:   "file",
	Short: "Inspect and manage files",
}

var fileIsFileCmd = &cobra.Command{
	Use:   "is-file <path>",
	Short: "Report whether path is a regular file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(s *controller.Session) error {
			ok, err := s.Target.FileIsFile(args[0])
			if err != nil {
				return err
			}
			return renderBool(cmd, "is_file", ok)
		})
	},
}

var fileExistsCmd = &cobra.Command{
	Use:   "exists <path>",
	Short: "Report whether path exists",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(s *controller.Session) error {
			ok, err := s.Target.FileExists(args[0])
			if err != nil {
				return err
			}
			return renderBool(cmd, "exists", ok)
		})
	},
}

var fileRmCmd = &cobra.Command{
	Use:   "rm <path>",
	Short: "Delete a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(s *controller.Session) error {
			return s.Target.FileDelete(args[0])
		})
	},
}

var fileMvCmd = &cobra.Command{
	Use:   "mv <path> <new-path>",
	Short: "Move a file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(s *controller.Session) error {
			return s.Target.FileMove(args[0], args[1])
		})
	},
}

var fileCpCmd = &cobra.Command{
	Use:   "cp <path> <new-path>",
	Short: "Copy a file on the host",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(s *controller.Session) error {
			return s.Target.FileCopy(args[0], args[1])
		})
	},
}

var fileOwnerCmd = &cobra.Command{
	Use:   "owner <path>",
	Short: "Show the owning user and group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(s *controller.Session) error {
			owner, err := s.Target.FileOwner(args[0])
			if err != nil {
				return err
			}
			return renderOwner(cmd, owner)
		})
	},
}

var fileChownCmd = &cobra.Command{
	Use:   "chown <user:group> <path>",
	Short: "Change the owning user and group",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		user, group, err := splitOwner(args[0])
		if err != nil {
			return err
		}
		return withSession(cmd, func(s *controller.Session) error {
			return s.Target.FileSetOwner(args[1], user, group)
		})
	},
}

var fileModeCmd = &cobra.Command{
	Use:   "mode <path>",
	Short: "Show permission bits",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(s *controller.Session) error {
			mode, err := s.Target.FileMode(args[0])
			if err != nil {
				return err
			}
			return renderMode(cmd, mode)
		})
	},
}

var fileChmodCmd = &cobra.Command{
	Use:   "chmod <mode> <path>",
	Short: "Set permission bits, e.g. 644",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := parseMode(args[0])
		if err != nil {
			return err
		}
		return withSession(cmd, func(s *controller.Session) error {
			return s.Target.FileSetMode(args[1], mode)
		})
	},
}

func init() {
	fileCmd.AddCommand(fileIsFileCmd, fileExistsCmd, fileRmCmd, fileMvCmd, fileCpCmd,
		fileOwnerCmd, fileChownCmd, fileModeCmd, fileChmodCmd)
	rootCmd.AddCommand(fileCmd)
}
