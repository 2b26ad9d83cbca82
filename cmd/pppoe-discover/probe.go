package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-kit/log/level"
	"github.com/spf13/cobra"

	"github.com/linklayer/pppoe-discover/pppoe"
)

var probeFlags commonFlags

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Enumerate Access Concentrators visible on the segment",
	RunE:  runProbe,
}

func init() {
	addCommonFlags(probeCmd, &probeFlags)
}

func runProbe(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, &probeFlags)
	if err != nil {
		return err
	}

	logger := newLogger()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	tr, err := pppoe.NewRawTransport(probeFlags.iface)
	if err != nil {
		return fmt.Errorf("opening %s: %w", probeFlags.iface, err)
	}
	defer tr.Close()

	seen, err := pppoe.Probe(ctx, tr, cfg, logger, func(offer pppoe.Offer) {
		fmt.Printf("AC %s: ac-name=%q service-name=%q\n", offer.PeerMAC, offer.ACName, offer.ServiceName)
	})
	if err != nil {
		return fmt.Errorf("probe failed: %w", err)
	}

	level.Info(logger).Log("msg", "probe complete", "acs_seen", seen)
	if seen == 0 {
		return fmt.Errorf("no Access Concentrators seen on %s", probeFlags.iface)
	}
	return nil
}
