package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/danmuck/hostctl/internal/controller"
)

var serviceCmd = &cobra.Command{
	Use:   "service <name> <action>",
	Short: "Run a service action such as start, stop, enable or disable",
	Long: `Run a service action on the selected host. start, stop, enable and
disable check the current state first and do nothing when the service is
already there. Any other action is passed to the service manager as is.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, action := args[0], args[1]
		return withSession(cmd, func(s *controller.Session) error {
			res, err := s.Target.ServiceAction(name, action)
			if err != nil {
				return err
			}
			if res == nil {
				return render(cmd, map[string]bool{"changed": false}, func(w io.Writer) error {
					_, err := fmt.Fprintf(w, "%s: already %s\n", name, settledState(action))
					return err
				})
			}
			return renderResult(cmd, *res)
		})
	},
}

func settledState(action string) string {
	switch action {
	case "start":
		return "running"
	case "stop":
		return "stopped"
	case "enable":
		return "enabled"
	case "disable":
		return "disabled"
	default:
		return "done"
	}
}

func init() {
	rootCmd.AddCommand(serviceCmd)
}
