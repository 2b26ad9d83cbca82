// Package pppoe implements the client side of PPPoE Discovery
// (RFC 2516): the PADI/PADO/PADR/PADS exchange that selects an Access
// Concentrator and yields a bound PPPoE session ID for a downstream
// PPP stack to use.
package pppoe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"time"
)

// DiscoveryState is one of the states spec.md §3.1 names.
type DiscoveryState int

const (
	StateInitial DiscoveryState = iota
	StateSentPADI
	StateReceivedPADO
	StateSentPADR
	StateSession
)

func (s DiscoveryState) String() string {
	switch s {
	case StateInitial:
		return "INITIAL"
	case StateSentPADI:
		return "SENT_PADI"
	case StateReceivedPADO:
		return "RECEIVED_PADO"
	case StateSentPADR:
		return "SENT_PADR"
	case StateSession:
		return "SESSION"
	default:
		return "UNKNOWN"
	}
}

// ErrGaveUp is returned by Discover when the retry policy is
// exhausted (non-persistent mode) without reaching StateSession. It
// is spec.md §7's second of the only two outcomes the driver
// surfaces to its caller.
var ErrGaveUp = errors.New("pppoe: gave up waiting for an Access Concentrator")

// Result is what a successful Discover call yields: enough to bind a
// PPPoE session socket and start exchanging session-phase frames.
type Result struct {
	SessionID uint16
	PeerMAC   net.HardwareAddr
}

// Offer describes one PADO seen during Probe.
type Offer struct {
	PeerMAC     net.HardwareAddr
	ACName      string
	ServiceName string
	Cookie      []byte
}

// MRUNegotiator is the optional PPP-LCP collaborator of spec.md §6:
// when RFC 4638 jumbo-frame negotiation is enabled, the driver reads
// the stack's desired MRU before sending PADI/PADR, and clamps it
// afterwards according to what the AC advertised (or didn't).
// internal/lcp provides the concrete implementation.
type MRUNegotiator interface {
	// WantMRU returns the smaller of the local stack's want/allow MRU
	// values, used to decide whether to advertise PPP-Max-Payload at
	// all (only when it exceeds the standard PPPoE MTU).
	WantMRU() uint16
	// ClampMRU lowers the stack's want/allow MRU to at most mru,
	// called when the AC advertised a PPP-Max-Payload tag.
	ClampMRU(mru uint16)
	// ClampToStandard lowers the stack's want/allow MRU to the
	// standard PPPoE MTU (1492), called when discovery completes
	// without ever seeing a PPP-Max-Payload tag from the AC —
	// RFC 4638 requires this even though it's easy to miss.
	ClampToStandard()
}

// discoverer holds the mutable state of a single discovery run:
// spec.md §3.1's Connection record, minus the caller-supplied options
// already captured in Config.
type discoverer struct {
	cfg       Config
	transport Transport
	logger    Logger
	mru       MRUNegotiator

	state     DiscoveryState
	peerMAC   net.HardwareAddr
	cookie    *Tag
	relayID   *Tag
	sessionID uint16
	numPADOs  int
	sawMRU    bool
}

func newDiscoverer(tr Transport, cfg Config, logger Logger, mru MRUNegotiator) *discoverer {
	return &discoverer{cfg: cfg, transport: tr, logger: logger, mru: mru, state: StateInitial}
}

func isBroadcast(mac net.HardwareAddr) bool {
	return bytes.Equal(mac, broadcastMAC)
}

// wantMRU returns the local stack's desired MRU, or 0 if MRU
// negotiation isn't enabled or there's no negotiator configured.
func (d *discoverer) wantMRU() uint16 {
	if !d.cfg.NegotiateMRU || d.mru == nil {
		return 0
	}
	return d.mru.WantMRU()
}

func (d *discoverer) sendPADI() error {
	tags := buildPADI(d.cfg, d.wantMRU())
	frame := encodePacket(CodePADI, 0, tags)
	logDebug(d.logger, "msg", "sending PADI")
	return d.transport.Send(broadcastMAC, frame)
}

func (d *discoverer) sendPADR() error {
	tags := buildPADR(d.cfg, d.cookie, d.relayID, d.wantMRU())
	frame := encodePacket(CodePADR, 0, tags)
	logDebug(d.logger, "msg", "sending PADR", "peer", d.peerMAC)
	return d.transport.Send(d.peerMAC, frame)
}

// SendPADT sends a PADT (session-terminate) frame. It's exposed
// directly so the kill-session shortcut (spec.md §4.5) and normal
// session teardown can both use it without going through Discover.
func SendPADT(tr Transport, peer net.HardwareAddr, sessionID uint16) error {
	frame := encodePacket(CodePADT, sessionID, nil)
	return tr.Send(peer, frame)
}

// receiveOne reads and decodes one frame within the given absolute
// deadline, filtering out anything not addressed to us. It returns
// ok=false (with no error) on a plain timeout; a non-nil error means
// a fatal transport failure (spec.md §7 item 4).
func (d *discoverer) receiveOne(ctx context.Context, deadline time.Time) (p *packet, src net.HardwareAddr, ok bool, err error) {
	remaining := time.Until(deadline)
	if remaining <= 0 {
		return nil, nil, false, nil
	}

	waitCtx, cancel := context.WithTimeout(ctx, remaining)
	defer cancel()

	frame, err := d.transport.Receive(waitCtx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, nil, false, nil
		}
		return nil, nil, false, fmt.Errorf("pppoe: receiving frame: %w", err)
	}

	decoded, err := decodePacket(frame.Data)
	if err != nil {
		logWarn(d.logger, "msg", "bogus PPPoE frame", "err", err)
		return nil, nil, true, nil
	}

	if !packetIsForMe(d.cfg, frame.Dst, d.transport.LocalAddr(), decoded) {
		return nil, nil, true, nil
	}

	return decoded, frame.Src, true, nil
}

// waitForPADO implements spec.md §4.4's wait loop specialized to
// PADO. probe selects probe-mode semantics: every acceptable PADO is
// reported via onOffer and the loop keeps draining until the
// deadline, instead of stopping at the first accepted offer.
//
// Returns accepted (an offer was latched; only meaningful outside
// probe mode), abort (an AC-reported error arrived in non-persist
// mode — stop retrying immediately), and err (a fatal transport
// failure).
func (d *discoverer) waitForPADO(ctx context.Context, timeout time.Duration, probe bool, onOffer func(Offer)) (accepted, abort bool, err error) {
	deadline := time.Now().Add(timeout)

	for {
		p, src, ok, rerr := d.receiveOne(ctx, deadline)
		if rerr != nil {
			return false, false, rerr
		}
		if !ok {
			return false, false, nil // deadline reached
		}
		if p == nil {
			continue // bogus or not-for-us frame, keep draining
		}
		if p.code != CodePADO {
			continue
		}
		if isBroadcast(src) {
			logWarn(d.logger, "msg", "ignoring PADO from broadcast source address")
			continue
		}
		if len(d.cfg.RequiredPeerMAC) > 0 && !bytes.Equal(src, d.cfg.RequiredPeerMAC) {
			logWarn(d.logger, "msg", "ignoring PADO from unexpected peer", "peer", src)
			continue
		}

		ev := interpretPADO(d.cfg, p)
		if ev.gotError {
			logError(d.logger, "msg", "error tag in PADO", "ac_name", ev.acName)
			if !d.cfg.Persist {
				return false, true, nil
			}
			continue
		}
		if !ev.seenACName {
			logWarn(d.logger, "msg", "ignoring PADO with no AC-Name tag")
			continue
		}
		if !ev.seenServiceName {
			logWarn(d.logger, "msg", "ignoring PADO with no Service-Name tag")
			continue
		}

		d.numPADOs++

		if probe {
			if onOffer != nil {
				onOffer(Offer{
					PeerMAC:     append(net.HardwareAddr(nil), src...),
					ACName:      ev.acName,
					ServiceName: ev.serviceName,
					Cookie:      cookieBytes(ev.cookie),
				})
			}
			continue
		}

		if ev.acNameOK && ev.serviceNameOK {
			d.peerMAC = append(net.HardwareAddr(nil), src...)
			d.cookie = ev.cookie
			d.relayID = ev.relayID
			if ev.sawMRU {
				d.sawMRU = true
				if d.mru != nil {
					d.mru.ClampMRU(ev.mru)
				}
			}
			return true, false, nil
		}
	}
}

func cookieBytes(t *Tag) []byte {
	if t == nil {
		return nil
	}
	return t.Value
}

// waitForPADS implements spec.md §4.4's wait loop specialized to
// PADS: it additionally requires the frame's source to be the
// already-latched peer.
func (d *discoverer) waitForPADS(ctx context.Context, timeout time.Duration) (established, abort bool, err error) {
	deadline := time.Now().Add(timeout)

	for {
		p, src, ok, rerr := d.receiveOne(ctx, deadline)
		if rerr != nil {
			return false, false, rerr
		}
		if !ok {
			return false, false, nil
		}
		if p == nil {
			continue
		}
		if !bytes.Equal(src, d.peerMAC) {
			continue
		}
		if p.code != CodePADS {
			continue
		}

		ev := interpretPADS(d.cfg, p)
		if ev.sawService {
			logDebug(d.logger, "msg", "PADS service name", "service_name", ev.serviceName)
		}
		if ev.relayID != nil {
			d.relayID = ev.relayID
		}
		if ev.sawMRU {
			d.sawMRU = true
			if d.mru != nil {
				d.mru.ClampMRU(ev.mru)
			}
		}
		if ev.hadError {
			// Unlike a PADO error tag, a PADS error tag never aborts
			// the cycle here: the original parsePADSTags just sets
			// PADSHadError and keeps draining frames until the
			// attempt's deadline, leaving padrPhase's own
			// attempt-exhaustion check to decide when to give up.
			logError(d.logger, "msg", "error tag in PADS")
			continue
		}

		d.sessionID = p.sessionID
		logInfo(d.logger, "msg", "PPP session established", "session_id", d.sessionID)
		if d.sessionID == 0 || d.sessionID == 0xFFFF {
			logWarn(d.logger, "msg", "Access Concentrator used a reserved session id, violating RFC 2516", "session_id", d.sessionID)
		}
		return true, false, nil
	}
}

// padiPhase runs the PADI/PADO retry cycle (spec.md §4.5): send,
// wait, double the timeout (except in probe mode), and give up or
// restart once MaxPADIAttempts is exceeded. It returns once a PADO is
// accepted, or the retry policy exhausts without persist.
func (d *discoverer) padiPhase(ctx context.Context, probe bool, onOffer func(Offer)) (accepted, giveUp bool, err error) {
	timeout := d.cfg.DiscoveryTimeout
	attempts := 0

	for {
		attempts++
		if attempts > MaxPADIAttempts {
			logWarn(d.logger, "msg", "timeout waiting for PADO packets")
			if !d.cfg.Persist {
				return false, true, nil
			}
			attempts = 0
			timeout = d.cfg.DiscoveryTimeout
		}

		if err := d.sendPADI(); err != nil {
			return false, false, fmt.Errorf("pppoe: sending PADI: %w", err)
		}
		d.state = StateSentPADI

		ok, abort, err := d.waitForPADO(ctx, timeout, probe, onOffer)
		if err != nil {
			return false, false, err
		}
		if abort {
			return false, true, nil
		}

		if !probe {
			timeout *= 2
		}

		if probe {
			if d.numPADOs > 0 {
				return true, false, nil
			}
			continue
		}

		if ok {
			d.state = StateReceivedPADO
			return true, false, nil
		}
	}
}

// padrPhase runs the PADR/PADS retry cycle (spec.md §4.5). It assumes
// a PADO has already been accepted (d.peerMAC/cookie/relayID latched).
func (d *discoverer) padrPhase(ctx context.Context) (established, restartFromPADI bool, err error) {
	timeout := d.cfg.DiscoveryTimeout
	attempts := 0

	for {
		attempts++
		if attempts > MaxPADIAttempts {
			logWarn(d.logger, "msg", "timeout waiting for PADS packets")
			if !d.cfg.Persist {
				return false, false, nil
			}
			return false, true, nil
		}

		if err := d.sendPADR(); err != nil {
			return false, false, fmt.Errorf("pppoe: sending PADR: %w", err)
		}
		d.state = StateSentPADR

		ok, abort, err := d.waitForPADS(ctx, timeout)
		if err != nil {
			return false, false, err
		}
		if abort {
			return false, false, nil
		}
		timeout *= 2

		if ok {
			d.state = StateSession
			return true, false, nil
		}
	}
}

// Discover runs the full PADI/PADO/PADR/PADS exchange and returns the
// resulting session once StateSession is reached, or ErrGaveUp if the
// retry policy is exhausted without persist. cfg.PrintACNames must be
// false; use Probe for that mode.
func Discover(ctx context.Context, tr Transport, cfg Config, logger Logger, mru MRUNegotiator) (*Result, error) {
	if cfg.PrintACNames {
		return nil, errors.New("pppoe: Discover does not support probe mode, use Probe")
	}

	d := newDiscoverer(tr, cfg, logger, mru)

	if cfg.SkipDiscovery {
		peer := net.HardwareAddr(cfg.ExistingPeerMAC)
		if cfg.KillSession {
			if err := SendPADT(tr, peer, cfg.ExistingSessionID); err != nil {
				return nil, fmt.Errorf("pppoe: sending PADT: %w", err)
			}
			return nil, nil
		}
		d.state = StateSession
		return &Result{SessionID: cfg.ExistingSessionID, PeerMAC: peer}, nil
	}

	for {
		_, giveUp, err := d.padiPhase(ctx, false, nil)
		if err != nil {
			return nil, err
		}
		if giveUp {
			return nil, ErrGaveUp
		}

		established, restart, err := d.padrPhase(ctx)
		if err != nil {
			return nil, err
		}
		if established {
			if cfg.NegotiateMRU && mru != nil && !d.sawMRU {
				mru.ClampToStandard()
			}
			return &Result{SessionID: d.sessionID, PeerMAC: d.peerMAC}, nil
		}
		if restart {
			continue
		}
		return nil, ErrGaveUp
	}
}

// Probe enumerates Access Concentrators visible on the segment: it
// sends PADI and reports every acceptable PADO it sees until the
// deadline, without ever sending a PADR. It returns the number of
// offers seen; per spec.md §4.5, a caller should treat zero as
// failure and anything else as success.
func Probe(ctx context.Context, tr Transport, cfg Config, logger Logger, onOffer func(Offer)) (int, error) {
	cfg.PrintACNames = true
	d := newDiscoverer(tr, cfg, logger, nil)
	_, _, err := d.padiPhase(ctx, true, onOffer)
	if err != nil {
		return d.numPADOs, err
	}
	return d.numPADOs, nil
}
