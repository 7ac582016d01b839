package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/danmuck/hostctl/internal/controller"
)

var execCmd = &cobra.Command{
	Use:   "exec <command> [args...]",
	Short: "Run a shell command on the host",
	Long: `Run a command line through /bin/sh on the selected host. Arguments are
joined with spaces. stdout and stderr are passed through and a non-zero exit
status fails the command.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		line := strings.Join(args, " ")
		return withSession(cmd, func(s *controller.Session) error {
			res, err := s.Target.Exec(line)
			if err != nil {
				return err
			}
			return renderResult(cmd, res)
		})
	},
}

func init() {
	rootCmd.AddCommand(execCmd)
}
