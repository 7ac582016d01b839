package cmd

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/danmuck/hostctl/internal/controller"
	"github.com/danmuck/hostctl/internal/protocol"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <local-path> <remote-path>",
	Short: "Copy a local file to the host",
	Long: `Copy a local file to the host. Remote hosts receive the file in chunks
and verify its hash before replacing remote-path. With --backup, an existing
file is kept as remote-path plus the given suffix.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		local, remote := args[0], args[1]
		info, err := os.Stat(local)
		if err != nil {
			return err
		}
		var opts []protocol.FileOption
		if suffix, _ := cmd.Flags().GetString("backup"); suffix != "" {
			opts = append(opts, protocol.BackupExistingFile(suffix))
		}
		return withSession(cmd, func(s *controller.Session) error {
			if err := s.Upload(local, remote, opts...); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "uploaded %s to %s:%s\n", humanize.IBytes(uint64(info.Size())), s.Name, remote)
			return nil
		})
	},
}

func init() {
	uploadCmd.Flags().String("backup", "", "Keep an existing remote file under this suffix, e.g. _old")
	rootCmd.AddCommand(uploadCmd)
}
