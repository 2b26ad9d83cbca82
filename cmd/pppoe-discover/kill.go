package main

import (
	"fmt"
	"net"

	"github.com/go-kit/log/level"
	"github.com/spf13/cobra"

	"github.com/linklayer/pppoe-discover/pppoe"
)

var (
	killIface     string
	killSessionID uint16
	killPeer      string
)

var killCmd = &cobra.Command{
	Use:   "kill",
	Short: "Send a PADT to tear down an existing session, without running discovery",
	RunE:  runKill,
}

func init() {
	killCmd.Flags().StringVarP(&killIface, "iface", "i", "", "network interface the session is on (required)")
	killCmd.Flags().Uint16Var(&killSessionID, "session", 0, "session ID to tear down (required)")
	killCmd.Flags().StringVar(&killPeer, "peer", "", "Access Concentrator's hardware address (required)")
	killCmd.MarkFlagRequired("iface")
	killCmd.MarkFlagRequired("session")
	killCmd.MarkFlagRequired("peer")
}

func runKill(cmd *cobra.Command, args []string) error {
	peer, err := net.ParseMAC(killPeer)
	if err != nil {
		return fmt.Errorf("--peer: %w", err)
	}

	logger := newLogger()
	tr, err := pppoe.NewRawTransport(killIface)
	if err != nil {
		return fmt.Errorf("opening %s: %w", killIface, err)
	}
	defer tr.Close()

	if err := pppoe.SendPADT(tr, peer, killSessionID); err != nil {
		return fmt.Errorf("sending PADT: %w", err)
	}

	level.Info(logger).Log("msg", "sent PADT", "session_id", killSessionID, "peer", peer)
	fmt.Printf("sent PADT for session %d to %s\n", killSessionID, peer)
	return nil
}
