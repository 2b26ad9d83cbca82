/*
Package config implements a parser for PPPoE discovery configuration
represented in the TOML format: https://github.com/toml-lang/toml.

Each network interface PPPoE should run discovery on is called out in
the configuration file using a named TOML table, with discovery
parameters for that interface as key:value pairs.

	# This is the discovery configuration for interface "eth0".
	[interface.eth0]

	# service_name, if set, is both advertised in outgoing PADI/PADR
	# packets and used to select among offered Access Concentrators.
	# Unset (or the empty string) means any offered service is fine.
	service_name = "internet"

	# ac_name, if set, restricts session setup to the named Access
	# Concentrator.
	ac_name = "isp-gw01"

	# host_uniq, if set, is echoed by a well-behaved Access
	# Concentrator and used to correlate replies with this client's
	# own requests. The special value "auto" generates a random value
	# at startup.
	host_uniq = "auto"

	# discovery_timeout is the initial PADO/PADS wait, in milliseconds.
	# It doubles after every unanswered attempt.
	discovery_timeout = 3000

	# persist, if true, causes discovery to retry indefinitely instead
	# of giving up once its retry budget is exhausted.
	persist = false

	# mtu_negotiation, if true, advertises and honors the RFC 4638
	# PPP-Max-Payload tag.
	mtu_negotiation = false
*/
package config

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pelletier/go-toml"

	"github.com/linklayer/pppoe-discover/pppoe"
)

// wildcardHostUniq is the TOML sentinel meaning "generate a random
// Host-Uniq value at load time".
const wildcardHostUniq = "auto"

// defaultDiscoveryTimeoutMs is used when discovery_timeout is absent.
const defaultDiscoveryTimeoutMs = 3000

// Config holds the parsed discovery configuration for every interface
// named in a TOML file.
type Config struct {
	// Map is the entire configuration tree as parsed from TOML. Callers
	// may use it to access their own tables.
	Map map[string]interface{}
	// Interfaces are all the interface tables defined in the file.
	Interfaces []NamedInterface
}

// NamedInterface is one [interface.NAME] table, parsed into a
// pppoe.Config ready to pass to pppoe.Discover or pppoe.New.
type NamedInterface struct {
	// Name is the interface's name as specified in the config file
	// (and, not coincidentally, the network interface to run on).
	Name   string
	Config pppoe.Config
}

func toBool(v interface{}) (bool, error) {
	if b, ok := v.(bool); ok {
		return b, nil
	}
	return false, fmt.Errorf("supplied value could not be parsed as a bool")
}

func toString(v interface{}) (string, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}
	return "", fmt.Errorf("supplied value could not be parsed as a string")
}

// go-toml's ToMap function represents numbers as either uint64 or
// int64, so we have to check both to convert to a narrower type.
func toDurationMs(v interface{}) (int64, error) {
	if n, ok := v.(int64); ok {
		if n < 0 {
			return 0, fmt.Errorf("value %d out of range", n)
		}
		return n, nil
	} else if n, ok := v.(uint64); ok {
		return int64(n), nil
	}
	return 0, fmt.Errorf("unexpected %T value %v", v, v)
}

func toHostUniq(v interface{}) ([]byte, error) {
	s, err := toString(v)
	if err != nil {
		return nil, err
	}
	if s == wildcardHostUniq {
		id, err := uuid.NewRandom()
		if err != nil {
			return nil, fmt.Errorf("generating random host_uniq: %v", err)
		}
		return []byte(id.String()), nil
	}
	return []byte(s), nil
}

// HostUniqBytes converts a host_uniq string, exactly as it would
// appear on the right-hand side of the TOML key, into the byte slice
// pppoe.Config.HostUniq expects. It is exported so callers overriding
// a loaded configuration from the command line can reuse the same
// "auto" handling the TOML loader applies.
func HostUniqBytes(s string) ([]byte, error) {
	return toHostUniq(s)
}

func newInterfaceConfig(name string, icfg map[string]interface{}) (*NamedInterface, error) {
	ni := &NamedInterface{Name: name}
	timeoutMs := int64(defaultDiscoveryTimeoutMs)

	for k, v := range icfg {
		var err error
		switch k {
		case "service_name":
			ni.Config.ServiceName, err = toString(v)
		case "ac_name":
			ni.Config.ACName, err = toString(v)
		case "host_uniq":
			ni.Config.HostUniq, err = toHostUniq(v)
		case "discovery_timeout":
			timeoutMs, err = toDurationMs(v)
		case "persist":
			ni.Config.Persist, err = toBool(v)
		case "mtu_negotiation":
			ni.Config.NegotiateMRU, err = toBool(v)
		default:
			return nil, fmt.Errorf("unrecognised parameter '%v'", k)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to process %v: %v", k, err)
		}
	}

	ni.Config.DiscoveryTimeout = time.Duration(timeoutMs) * time.Millisecond
	return ni, nil
}

func (cfg *Config) loadInterfaces() error {
	var ifaces map[string]interface{}

	got, ok := cfg.Map["interface"]
	if !ok {
		return fmt.Errorf("no interface table present")
	}
	ifaces, ok = got.(map[string]interface{})
	if !ok {
		return fmt.Errorf("interface instances must be named, e.g. '[interface.eth0]'")
	}

	for name, got := range ifaces {
		imap, ok := got.(map[string]interface{})
		if !ok {
			return fmt.Errorf("interface instances must be named, e.g. '[interface.eth0]'")
		}
		icfg, err := newInterfaceConfig(name, imap)
		if err != nil {
			return fmt.Errorf("interface %v: %v", name, err)
		}
		cfg.Interfaces = append(cfg.Interfaces, *icfg)
	}
	return nil
}

func newConfig(tree *toml.Tree) (*Config, error) {
	cfg := &Config{Map: tree.ToMap()}
	if err := cfg.loadInterfaces(); err != nil {
		return nil, fmt.Errorf("failed to parse interfaces: %v", err)
	}
	return cfg, nil
}

// LoadFile loads configuration from the specified file.
func LoadFile(path string) (*Config, error) {
	tree, err := toml.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %v", err)
	}
	return newConfig(tree)
}

// LoadString loads configuration from the specified string.
func LoadString(content string) (*Config, error) {
	tree, err := toml.Load(content)
	if err != nil {
		return nil, fmt.Errorf("failed to load config string: %v", err)
	}
	return newConfig(tree)
}
