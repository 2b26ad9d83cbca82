package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/linklayer/pppoe-discover/internal/config"
	"github.com/linklayer/pppoe-discover/pppoe"
)

// commonFlags are the discovery-parameter overrides shared by every
// subcommand, layered on top of an optional --config file.
type commonFlags struct {
	configFile     string
	iface          string
	serviceName    string
	acName         string
	hostUniq       string
	timeout        time.Duration
	persist        bool
	mtuNegotiation bool
}

func addCommonFlags(cmd *cobra.Command, f *commonFlags) {
	cmd.Flags().StringVarP(&f.iface, "iface", "i", "", "network interface to run on (required)")
	cmd.Flags().StringVarP(&f.configFile, "config", "c", "", "TOML config file (optional)")
	cmd.Flags().StringVar(&f.serviceName, "service-name", "", "Service-Name to request and select on")
	cmd.Flags().StringVar(&f.acName, "ac-name", "", "restrict session setup to this Access Concentrator")
	cmd.Flags().StringVar(&f.hostUniq, "host-uniq", "", "Host-Uniq correlator, or \"auto\" for a generated one")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 3*time.Second, "initial PADO/PADS wait")
	cmd.Flags().BoolVar(&f.persist, "persist", false, "retry indefinitely instead of giving up")
	cmd.Flags().BoolVar(&f.mtuNegotiation, "mtu-negotiation", false, "negotiate RFC 4638 PPP-Max-Payload")
	cmd.MarkFlagRequired("iface")
}

// resolveConfig merges f.configFile's [interface.<iface>] table (if
// present) with the individual override flags, flags taking
// precedence whenever cmd.Flags().Changed reports they were set
// explicitly.
func resolveConfig(cmd *cobra.Command, f *commonFlags) (pppoe.Config, error) {
	cfg := pppoe.Config{
		DiscoveryTimeout: f.timeout,
		Persist:          f.persist,
		NegotiateMRU:     f.mtuNegotiation,
	}

	if f.configFile != "" {
		fileCfg, err := config.LoadFile(f.configFile)
		if err != nil {
			return cfg, fmt.Errorf("loading %s: %w", f.configFile, err)
		}
		found := false
		for _, ni := range fileCfg.Interfaces {
			if ni.Name == f.iface {
				cfg = ni.Config
				found = true
				break
			}
		}
		if !found {
			return cfg, fmt.Errorf("%s has no [interface.%s] table", f.configFile, f.iface)
		}
	}

	if cmd.Flags().Changed("service-name") {
		cfg.ServiceName = f.serviceName
	}
	if cmd.Flags().Changed("ac-name") {
		cfg.ACName = f.acName
	}
	if cmd.Flags().Changed("host-uniq") {
		hu, err := config.HostUniqBytes(f.hostUniq)
		if err != nil {
			return cfg, fmt.Errorf("--host-uniq: %w", err)
		}
		cfg.HostUniq = hu
	}
	if cmd.Flags().Changed("timeout") {
		cfg.DiscoveryTimeout = f.timeout
	}
	if cmd.Flags().Changed("persist") {
		cfg.Persist = f.persist
	}
	if cmd.Flags().Changed("mtu-negotiation") {
		cfg.NegotiateMRU = f.mtuNegotiation
	}

	return cfg, nil
}
