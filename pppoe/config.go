package pppoe

import "time"

// noServiceNameSentinel, when set as Config.ServiceName, means "omit
// the Service-Name tag entirely from PADI" — a workaround for Access
// Concentrators that reject the RFC-mandated (possibly zero-length)
// Service-Name tag.
const noServiceNameSentinel = "NO-SERVICE-NAME-NON-RFC-COMPLIANT"

// MaxPADIAttempts bounds both the PADI/PADO and PADR/PADS retry
// cycles. The attempt counter is incremented before each send and
// checked against MaxPADIAttempts, so a cycle sends MaxPADIAttempts
// times before giving up or, in persistent mode, restarting. A
// restarted PADI cycle resets the counter to zero and sends once
// before incrementing it again, so it sends MaxPADIAttempts+1 times
// (see discovery.go).
const MaxPADIAttempts = 3

// Config holds the caller-supplied discovery parameters: spec.md
// §3.1's Connection record, minus the fields the driver owns and
// mutates at runtime (those live on discoverer in discovery.go).
type Config struct {
	// ServiceName, if non-empty, is sent in the Service-Name tag and
	// used to select among offered ACs. The empty string means "any
	// service is fine" (an explicit, RFC-compliant zero-length tag).
	// The sentinel value noServiceNameSentinel omits the tag
	// entirely, for ACs that misbehave when it's present.
	ServiceName string

	// ACName, if non-empty, restricts PADO acceptance to offers whose
	// AC-Name tag matches exactly.
	ACName string

	// HostUniq, if non-empty, is sent in outgoing frames and required
	// to appear byte-for-byte in replies.
	HostUniq []byte

	// DiscoveryTimeout is the initial per-attempt wait for a PADO or
	// PADS reply. It doubles after each unsuccessful attempt (outside
	// probe mode, where it stays constant).
	DiscoveryTimeout time.Duration

	// Persist, if true, causes the driver to restart the PADI loop
	// indefinitely instead of giving up once MaxPADIAttempts is
	// exhausted, and to treat an AC-reported error tag as a rejected
	// offer rather than a fatal condition.
	Persist bool

	// PrintACNames puts the driver into probe mode: it enumerates
	// every PADO it sees until the deadline and never sends a PADR.
	PrintACNames bool

	// SkipDiscovery bypasses the PADI/PADR exchange entirely and
	// transitions straight to StateSession. Combined with KillSession
	// it instead sends a PADT and returns without ever reaching
	// StateSession.
	SkipDiscovery bool
	KillSession   bool

	// NegotiateMRU enables the RFC 4638 PPP-Max-Payload tag: if the
	// caller's PPP stack wants a larger-than-standard MRU, it is
	// advertised in PADI/PADR, and a smaller value offered by the AC
	// is used to clamp the stack's own MRU via MRUNegotiator.
	NegotiateMRU bool

	// LocalMRUWant and LocalMRUAllow bound the MRU New will ask
	// internal/lcp's negotiator to advertise when NegotiateMRU is set:
	// the smaller of the two is what actually goes on the wire. Both
	// default to the standard PPPoE MTU when zero.
	LocalMRUWant  uint16
	LocalMRUAllow uint16

	// RequiredPeerMAC, if non-empty, restricts PADO acceptance to
	// offers from this Access Concentrator's hardware address, on top
	// of the ACName/ServiceName criteria.
	RequiredPeerMAC []byte

	// ExistingPeerMAC and ExistingSessionID identify an
	// already-established session for the SkipDiscovery shortcut:
	// either adopted directly (SkipDiscovery alone) or torn down
	// (SkipDiscovery plus KillSession).
	ExistingPeerMAC   []byte
	ExistingSessionID uint16
}

// serviceNameTag returns the Service-Name tag to include in an
// outgoing PADI, and whether it should be included at all.
func (c Config) serviceNameTag() (Tag, bool) {
	if c.ServiceName == noServiceNameSentinel {
		return Tag{}, false
	}
	return newTag(TagServiceName, []byte(c.ServiceName)), true
}

// hostUniqTag returns the Host-Uniq tag to include in outgoing
// frames, and whether Host-Uniq is configured at all.
func (c Config) hostUniqTag() (Tag, bool) {
	if len(c.HostUniq) == 0 {
		return Tag{}, false
	}
	return newTag(TagHostUniq, c.HostUniq), true
}

// wantsAnyService reports whether the configured service name
// matches "any service offered is acceptable": either ServiceName is
// empty (unconfigured and explicitly empty are the same value), or it
// is noServiceNameSentinel, which omits the tag from PADI and places
// no restriction on offers. See DESIGN.md's note on spec.md's
// Service-Name Open Question.
func (c Config) wantsAnyService() bool {
	return c.ServiceName == "" || c.ServiceName == noServiceNameSentinel
}
