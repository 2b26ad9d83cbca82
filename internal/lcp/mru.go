package lcp

// standardPPPoEMTU is RFC 4638's fallback MRU for when the Access
// Concentrator never advertises a PPP-Max-Payload tag.
const standardPPPoEMTU = 1492

// MRUNegotiator tracks the local PPP stack's desired Maximum Receive
// Unit across an RFC 4638 PPPoE jumbo-frame negotiation. Its method
// set matches pppoe.MRUNegotiator structurally; this package doesn't
// import pppoe so it stays usable standalone.
type MRUNegotiator struct {
	want, allow uint16
}

// NewMRUNegotiator creates a negotiator wanting want and never
// exceeding allow, the local PPP stack's own ceiling. A zero value
// for either is replaced with the standard PPPoE MTU.
func NewMRUNegotiator(want, allow uint16) *MRUNegotiator {
	if want == 0 {
		want = standardPPPoEMTU
	}
	if allow == 0 {
		allow = standardPPPoEMTU
	}
	return &MRUNegotiator{want: want, allow: allow}
}

// WantMRU returns the smaller of the two configured bounds: the value
// to advertise in an outgoing PPP-Max-Payload tag.
func (n *MRUNegotiator) WantMRU() uint16 {
	if n.want < n.allow {
		return n.want
	}
	return n.allow
}

// ClampMRU lowers both bounds to at most mru, called when the peer
// advertised a smaller PPP-Max-Payload value than we wanted.
func (n *MRUNegotiator) ClampMRU(mru uint16) {
	if n.want > mru {
		n.want = mru
	}
	if n.allow > mru {
		n.allow = mru
	}
}

// ClampToStandard lowers both bounds to the standard PPPoE MTU, for
// when discovery completes without ever seeing a PPP-Max-Payload tag.
func (n *MRUNegotiator) ClampToStandard() {
	n.ClampMRU(standardPPPoEMTU)
}

// MRU returns the negotiator's final, possibly-clamped MRU for the
// PPP stack's own Configure-Request once discovery completes.
func (n *MRUNegotiator) MRU() uint16 {
	return n.WantMRU()
}
