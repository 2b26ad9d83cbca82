package pppoe

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/linklayer/pppoe-discover/internal/lcp"
)

// Addr is a PPPoE peer address.
type Addr struct {
	// Interface is the name of the network interface over which the
	// PPPoE session is running.
	Interface string
	// SessionID is the session identifier for the PPPoE session.
	SessionID uint16
	// ConcentratorAddr is the Ethernet address of the remote PPPoE concentrator.
	ConcentratorAddr net.HardwareAddr
}

func (a *Addr) Network() string { return "pppoe" }
func (a *Addr) String() string  { return a.ConcentratorAddr.String() }

// Conn is a PPPoE session: the kernel AF_PPPOX framer/deframer socket
// produced by running Discover, bundled with what's needed to tear
// the session back down (the discovery Transport and the peer/session
// identifiers PADT requires).
type Conn struct {
	sessionFd int
	discovery Transport
	addr      Addr
	mru       *lcp.MRUNegotiator

	closed        bool
	readDeadline  time.Time
	writeDeadline time.Time
}

// New runs PPPoE discovery on ifName per cfg and, on success, binds a
// kernel PPPoE session socket to the resulting session. cfg.PrintACNames
// must be false; use Probe to enumerate Access Concentrators instead of
// connecting to one.
func New(ctx context.Context, ifName string, cfg Config, logger Logger) (*Conn, error) {
	disco, err := NewRawTransport(ifName)
	if err != nil {
		return nil, err
	}
	closeDisco := true
	defer func() {
		if closeDisco {
			disco.Close()
		}
	}()

	var negotiator *lcp.MRUNegotiator
	if cfg.NegotiateMRU {
		negotiator = lcp.NewMRUNegotiator(cfg.LocalMRUWant, cfg.LocalMRUAllow)
	}

	// Open the session socket before discovery finishes, so any PPP
	// traffic the concentrator sends immediately after PADS isn't lost
	// waiting for us to get around to connecting it.
	sessionFd, err := newSessionFd(ifName)
	if err != nil {
		return nil, err
	}
	closeSession := true
	defer func() {
		if closeSession {
			closeSessionFd(sessionFd)
		}
	}()

	var mru MRUNegotiator
	if negotiator != nil {
		mru = negotiator
	}
	result, err := Discover(ctx, disco, cfg, logger, mru)
	if err != nil {
		return nil, err
	}

	if err := connectSessionFd(sessionFd, ifName, result.PeerMAC, result.SessionID); err != nil {
		return nil, err
	}

	closeSession = false
	closeDisco = false
	return &Conn{
		sessionFd: sessionFd,
		discovery: disco,
		mru:       negotiator,
		addr: Addr{
			Interface:        ifName,
			SessionID:        result.SessionID,
			ConcentratorAddr: result.PeerMAC,
		},
	}, nil
}

// LocalAddr returns the local address of the PPPoE connection. PPPoE
// Conns don't have an interesting local address to share, so this
// returns nil for now.
func (c *Conn) LocalAddr() net.Addr {
	return nil
}

// RemoteAddr returns the address of the connected PPPoE concentrator,
// as an *Addr.
func (c *Conn) RemoteAddr() net.Addr {
	return &c.addr
}

// NegotiatedMRU returns the MRU settled on during discovery, or 0 if
// MRU negotiation wasn't enabled.
func (c *Conn) NegotiatedMRU() uint16 {
	if c.mru == nil {
		return 0
	}
	return c.mru.MRU()
}

// Close tears down the PPPoE session: it sends a PADT to the
// concentrator and releases both the kernel session socket and the
// discovery transport.
func (c *Conn) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true

	sessErr := closeSessionFd(c.sessionFd)
	padtErr := SendPADT(c.discovery, c.addr.ConcentratorAddr, c.addr.SessionID)
	discErr := c.discovery.Close()

	if sessErr != nil {
		return fmt.Errorf("pppoe: closing session socket: %w", sessErr)
	}
	if padtErr != nil {
		return fmt.Errorf("pppoe: sending PADT: %w", padtErr)
	}
	if discErr != nil {
		return fmt.Errorf("pppoe: closing discovery transport: %w", discErr)
	}
	return nil
}

func (c *Conn) Read(b []byte) (int, error) {
	n, err := readSessionPacket(c.sessionFd, b, c.readDeadline)
	return n, err
}

func (c *Conn) Write(b []byte) (int, error) {
	return sendSessionPacket(c.sessionFd, b, c.writeDeadline)
}

func (c *Conn) SetDeadline(deadline time.Time) error {
	c.readDeadline = deadline
	c.writeDeadline = deadline
	return nil
}

func (c *Conn) SetReadDeadline(deadline time.Time) error {
	c.readDeadline = deadline
	return nil
}

func (c *Conn) SetWriteDeadline(deadline time.Time) error {
	c.writeDeadline = deadline
	return nil
}
