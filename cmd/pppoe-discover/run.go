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

var runFlags commonFlags

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run PPPoE discovery to completion and hold the session open",
	RunE:  runDiscover,
}

func init() {
	addCommonFlags(runCmd, &runFlags)
}

func runDiscover(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, &runFlags)
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
		level.Info(logger).Log("msg", "received signal, shutting down")
		cancel()
	}()

	level.Info(logger).Log("msg", "starting discovery", "iface", runFlags.iface)

	conn, err := pppoe.New(ctx, runFlags.iface, cfg, logger)
	if err != nil {
		return fmt.Errorf("discovery failed: %w", err)
	}
	defer conn.Close()

	remote := conn.RemoteAddr().(*pppoe.Addr)
	fmt.Printf("session established: session-id=%d peer=%s mru=%d\n",
		remote.SessionID, remote.ConcentratorAddr, conn.NegotiatedMRU())
	level.Info(logger).Log(
		"msg", "session established",
		"session_id", remote.SessionID,
		"peer", remote.ConcentratorAddr,
		"mru", conn.NegotiatedMRU(),
	)

	<-ctx.Done()
	level.Info(logger).Log("msg", "closing session")
	return nil
}
