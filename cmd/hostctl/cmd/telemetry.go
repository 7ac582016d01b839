package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/danmuck/hostctl/internal/controller"
	"github.com/danmuck/hostctl/internal/telemetry"
)

var telemetryCmd = &cobra.Command{
	Use:   "telemetry",
	Short: "Show CPU, memory, filesystem, network and OS facts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(s *controller.Session) error {
			snap, err := s.Target.Telemetry()
			if err != nil {
				return err
			}
			return render(cmd, snap, func(w io.Writer) error {
				return writeTelemetry(w, snap)
			})
		})
	},
}

func writeTelemetry(w io.Writer, snap telemetry.Snapshot) error {
	osFacts := snap.OS()
	cpu := snap.CPU()
	fmt.Fprintf(w, "host:    %s\n", snap.Hostname())
	fmt.Fprintf(w, "os:      %s %s (%s, %s)\n", osFacts.Platform, osFacts.VersionStr, osFacts.Family, osFacts.Arch)
	fmt.Fprintf(w, "cpu:     %s, %d cores (%s)\n", cpu.Brand, cpu.Cores, cpu.Vendor)
	fmt.Fprintf(w, "memory:  %s\n", humanize.IBytes(snap.Memory()))

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "\nFILESYSTEM\tMOUNT\tSIZE\tUSED\tAVAIL\tUSE%")
	for _, m := range snap.FS() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%.0f%%\n", m.Filesystem, m.Mountpoint,
			humanize.IBytes(m.Size), humanize.IBytes(m.Used), humanize.IBytes(m.Available), m.Capacity*100)
	}
	fmt.Fprintln(tw, "\nINTERFACE\tSTATUS\tMAC\tINET\tINET6")
	for _, n := range snap.Net() {
		inet, inet6 := "-", "-"
		if n.Inet != nil {
			inet = n.Inet.Address
		}
		if n.Inet6 != nil {
			inet6 = fmt.Sprintf("%s/%d", n.Inet6.Address, n.Inet6.Prefixlen)
		}
		mac := n.MAC
		if mac == "" {
			mac = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", n.Interface, n.Status, mac, inet, inet6)
	}
	return tw.Flush()
}

func init() {
	rootCmd.AddCommand(telemetryCmd)
}
