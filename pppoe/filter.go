package pppoe

import "bytes"

// packetIsForMe reports whether an arriving frame is addressed to
// this client: the destination MAC must be ours, and — if Host-Uniq
// is configured — the payload must carry a Host-Uniq tag whose value
// matches byte-for-byte. This is applied before any code-specific tag
// interpretation, per spec invariant 5.
func packetIsForMe(cfg Config, dst, localMAC []byte, p *packet) bool {
	if !bytes.Equal(dst, localMAC) {
		return false
	}
	if len(cfg.HostUniq) == 0 {
		return true
	}
	tag, ok := p.tag(TagHostUniq)
	return ok && bytes.Equal(tag.Value, cfg.HostUniq)
}

// padoEvaluation accumulates the per-frame verdict fields the
// original implementation calls a "PacketCriteria": whether the
// PADO's AC-Name/Service-Name tags matched the configured selection,
// and whether any AC-reported error tag was present.
type padoEvaluation struct {
	seenACName      bool
	seenServiceName bool
	acNameOK        bool
	serviceNameOK   bool
	gotError        bool

	acName      string
	serviceName string
	cookie      *Tag
	relayID     *Tag
	mru         uint16
	sawMRU      bool
}

// interpretPADO walks a PADO's tags, filling in a fresh padoEvaluation.
// acNameOK/serviceNameOK start true iff the corresponding selection
// criterion is unconfigured ("accept anything"), per spec.md §4.3.
func interpretPADO(cfg Config, p *packet) padoEvaluation {
	ev := padoEvaluation{
		acNameOK:      cfg.ACName == "",
		serviceNameOK: cfg.wantsAnyService(),
	}

	for _, tag := range p.tags {
		switch tag.Type {
		case TagACName:
			ev.seenACName = true
			ev.acName = string(tag.Value)
			if cfg.ACName != "" && string(tag.Value) == cfg.ACName {
				ev.acNameOK = true
			}
		case TagServiceName:
			ev.seenServiceName = true
			ev.serviceName = string(tag.Value)
			if !cfg.wantsAnyService() && string(tag.Value) == cfg.ServiceName {
				ev.serviceNameOK = true
			}
		case TagACCookie:
			t := tag
			ev.cookie = &t
		case TagRelaySessionID:
			t := tag
			ev.relayID = &t
		case TagPPPMaxPayload:
			if cfg.NegotiateMRU && len(tag.Value) == 2 {
				mru := uint16(tag.Value[0])<<8 | uint16(tag.Value[1])
				if mru >= standardMTU {
					ev.mru = mru
					ev.sawMRU = true
				}
			}
		case TagServiceNameErr, TagACSystemErr, TagGenericErr:
			ev.gotError = true
		}
	}

	return ev
}

// accepted reports whether this PADO should be latched as the chosen
// offer: it carried both required tags, no error tag, and satisfied
// both selection criteria (spec.md §4.4 step 8).
func (ev padoEvaluation) accepted() bool {
	return ev.seenACName && ev.seenServiceName && !ev.gotError && ev.acNameOK && ev.serviceNameOK
}

// padsEvaluation is the PADS counterpart: much simpler, since a PADS
// only carries an echoed Relay-Session-Id and possibly an error tag.
type padsEvaluation struct {
	hadError    bool
	serviceName string
	sawService  bool
	relayID     *Tag
	mru         uint16
	sawMRU      bool
}

// interpretPADS walks a PADS's tags. Unlike PADO, there's no
// selection to perform: the AC has already committed to a session,
// so the only outcomes are "it's good" or "it carried an error tag".
func interpretPADS(cfg Config, p *packet) padsEvaluation {
	var ev padsEvaluation
	for _, tag := range p.tags {
		switch tag.Type {
		case TagServiceName:
			ev.sawService = true
			ev.serviceName = string(tag.Value)
		case TagRelaySessionID:
			t := tag
			ev.relayID = &t
		case TagPPPMaxPayload:
			if cfg.NegotiateMRU && len(tag.Value) == 2 {
				mru := uint16(tag.Value[0])<<8 | uint16(tag.Value[1])
				if mru >= standardMTU {
					ev.mru = mru
					ev.sawMRU = true
				}
			}
		case TagServiceNameErr, TagACSystemErr, TagGenericErr:
			ev.hadError = true
		}
	}
	return ev
}
