// Command pppoe-discover runs the PPPoE Discovery (RFC 2516) handshake
// against an Access Concentrator and reports the resulting session, or
// probes a segment for visible ACs, or tears down an existing session
// with a PADT.
package main

import (
	"fmt"
	"os"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "pppoe-discover",
	Short: "PPPoE Discovery (RFC 2516) client",
	Long: `pppoe-discover drives the PPPoE Discovery state machine
(PADI/PADO/PADR/PADS) against Access Concentrators reachable on a
network interface, without bringing up a PPP session itself.`,
}

var verbose bool

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"enable debug-level logging")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(probeCmd)
	rootCmd.AddCommand(killCmd)
}

// newLogger builds the logfmt-to-stderr logger shared by every
// subcommand, filtered to info level unless -v raises it to debug.
func newLogger() log.Logger {
	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)
	if verbose {
		return level.NewFilter(logger, level.AllowDebug())
	}
	return level.NewFilter(logger, level.AllowInfo())
}
