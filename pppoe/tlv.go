package pppoe

import (
	"encoding/binary"
	"fmt"
)

// Tag is a decoded PPPoE Discovery TLV. Value is the tag's payload
// only; raw additionally holds the 4-byte type+length header so that
// tags captured from one packet (AC-Cookie, Relay-Session-Id) can be
// echoed byte-for-byte into another without re-encoding them.
type Tag struct {
	Type  TagType
	Value []byte

	raw []byte
}

// newTag builds a Tag and precomputes its raw wire encoding.
func newTag(t TagType, value []byte) Tag {
	raw := make([]byte, 4+len(value))
	binary.BigEndian.PutUint16(raw[0:2], uint16(t))
	binary.BigEndian.PutUint16(raw[2:4], uint16(len(value)))
	copy(raw[4:], value)
	return Tag{Type: t, Value: value, raw: raw}
}

// bytes returns the tag's exact wire encoding: its type+length header
// followed by its value. For a Tag captured from a received packet via
// walkTags, this is byte-identical to the bytes it was decoded from.
func (t Tag) bytes() []byte {
	if t.raw != nil {
		return t.raw
	}
	return newTag(t.Type, t.Value).raw
}

// walkTags decodes the TLV stream in payload and calls fn for each
// tag in order. A tag whose declared length runs past the end of
// payload stops the walk silently (the remaining bytes are dropped,
// per spec invariant 2) rather than returning an error: a single
// malformed trailing tag must not prevent the caller from having
// already seen any well-formed tags that preceded it.
func walkTags(payload []byte, fn func(Tag)) {
	for len(payload) >= 4 {
		typ := TagType(binary.BigEndian.Uint16(payload[0:2]))
		length := int(binary.BigEndian.Uint16(payload[2:4]))
		if length > len(payload)-4 {
			return
		}
		value := payload[4 : 4+length]
		fn(newTag(typ, value))
		payload = payload[4+length:]
	}
}

// encodeTags concatenates the wire encoding of each tag in order.
func encodeTags(tags []Tag) []byte {
	size := 0
	for _, t := range tags {
		size += len(t.bytes())
	}
	out := make([]byte, 0, size)
	for _, t := range tags {
		out = append(out, t.bytes()...)
	}
	return out
}

// packet is a parsed PPPoE Discovery frame: header fields plus the
// decoded tag sequence of its payload, in arrival order.
type packet struct {
	code      Code
	sessionID uint16
	tags      []Tag
}

// decodePacket parses a raw PPPoE Discovery frame, starting at the
// vertype byte (i.e. with any Ethernet header already stripped). It
// enforces spec invariant 1: the declared payload length plus the
// fixed header must not exceed the number of bytes actually received.
func decodePacket(buf []byte) (*packet, error) {
	if len(buf) < headerSize {
		return nil, fmt.Errorf("pppoe: frame too short (%d bytes) to hold a Discovery header", len(buf))
	}
	if buf[0] != verType {
		return nil, fmt.Errorf("pppoe: unexpected version/type byte %#x", buf[0])
	}

	code := Code(buf[1])
	sessionID := binary.BigEndian.Uint16(buf[2:4])
	length := int(binary.BigEndian.Uint16(buf[4:6]))

	if headerSize+length > len(buf) {
		return nil, fmt.Errorf("pppoe: bogus length field %d (frame carries %d payload bytes)", length, len(buf)-headerSize)
	}

	p := &packet{code: code, sessionID: sessionID}
	walkTags(buf[headerSize:headerSize+length], func(t Tag) {
		p.tags = append(p.tags, t)
	})
	return p, nil
}

// encodePacket marshals a PPPoE Discovery frame (vertype through the
// tag payload; the caller is responsible for any Ethernet header).
func encodePacket(code Code, sessionID uint16, tags []Tag) []byte {
	payload := encodeTags(tags)
	// payload length must fit in a uint16 per the wire format; any
	// caller asking for more than that mis-sized its tag list, which
	// is a programming error, not a runtime condition (spec.md §7.5).
	if len(payload) > 0xffff {
		panic(fmt.Sprintf("pppoe: encoded payload (%d bytes) exceeds the 16-bit length field", len(payload)))
	}

	out := make([]byte, headerSize+len(payload))
	out[0] = verType
	out[1] = byte(code)
	binary.BigEndian.PutUint16(out[2:4], sessionID)
	binary.BigEndian.PutUint16(out[4:6], uint16(len(payload)))
	copy(out[headerSize:], payload)
	return out
}

// tag looks up the first tag of the given type, if any.
func (p *packet) tag(t TagType) (Tag, bool) {
	for _, tg := range p.tags {
		if tg.Type == t {
			return tg, true
		}
	}
	return Tag{}, false
}
