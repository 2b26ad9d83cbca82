package pppoe

import "encoding/binary"

// mruTag builds the optional RFC 4638 PPP-Max-Payload tag advertising
// the local PPP stack's desired MRU, shared by PADI and PADR.
func mruTag(mru uint16) Tag {
	v := make([]byte, 2)
	binary.BigEndian.PutUint16(v, mru)
	return newTag(TagPPPMaxPayload, v)
}

// buildPADI constructs the tag list for a PADI packet per spec.md
// §4.6: Service-Name (unless the sentinel omits it), then Host-Uniq
// if configured, then PPP-Max-Payload if the local stack wants a
// jumbo MRU.
func buildPADI(cfg Config, wantMRU uint16) []Tag {
	var tags []Tag
	if t, ok := cfg.serviceNameTag(); ok {
		tags = append(tags, t)
	}
	if t, ok := cfg.hostUniqTag(); ok {
		tags = append(tags, t)
	}
	if cfg.NegotiateMRU && wantMRU > standardMTU {
		tags = append(tags, mruTag(wantMRU))
	}
	return tags
}

// buildPADR constructs the tag list for a PADR packet per spec.md
// §4.6: Service-Name (always present, possibly zero-length), then
// Host-Uniq if configured, then the AC-Cookie and Relay-Session-Id
// tags captured verbatim from the accepted PADO, then the optional
// PPP-Max-Payload tag.
//
// cookie and relayID are echoed via their raw wire bytes (type,
// length and value exactly as received), not re-encoded from Value,
// so that a PADR is byte-identical to the AC's own PADO tag even if
// its declared length doesn't match some other internal accounting —
// see SPEC_FULL.md §12.
func buildPADR(cfg Config, cookie, relayID *Tag, wantMRU uint16) []Tag {
	// noServiceNameSentinel is a PADI-only convention (it omits the
	// tag there); a PADR always carries a Service-Name tag, so here
	// the sentinel just collapses to the empty string rather than
	// getting PADR-specific handling of its own.
	name := cfg.ServiceName
	if name == noServiceNameSentinel {
		name = ""
	}
	tags := []Tag{newTag(TagServiceName, []byte(name))}
	if t, ok := cfg.hostUniqTag(); ok {
		tags = append(tags, t)
	}
	if cookie != nil {
		tags = append(tags, *cookie)
	}
	if relayID != nil {
		tags = append(tags, *relayID)
	}
	if cfg.NegotiateMRU && wantMRU > standardMTU {
		tags = append(tags, mruTag(wantMRU))
	}
	return tags
}
