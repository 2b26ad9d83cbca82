package pppoe

// EtherTypes for the two PPPoE framing stages.
const (
	EtherTypeDiscovery = 0x8863
	EtherTypeSession   = 0x8864
)

// Code identifies the kind of PPPoE Discovery packet.
type Code uint8

// PPPoE Discovery codes, RFC 2516.
const (
	CodePADI Code = 0x09
	CodePADO Code = 0x07
	CodePADR Code = 0x19
	CodePADS Code = 0x65
	CodePADT Code = 0xa7
)

func (c Code) String() string {
	switch c {
	case CodePADI:
		return "PADI"
	case CodePADO:
		return "PADO"
	case CodePADR:
		return "PADR"
	case CodePADS:
		return "PADS"
	case CodePADT:
		return "PADT"
	default:
		return "unknown"
	}
}

// TagType identifies a PPPoE Discovery TLV tag, RFC 2516 plus the RFC
// 4638 PPP-Max-Payload extension.
type TagType uint16

const (
	TagEndOfList      TagType = 0x0000
	TagServiceName    TagType = 0x0101
	TagACName         TagType = 0x0102
	TagHostUniq       TagType = 0x0103
	TagACCookie       TagType = 0x0104
	TagRelaySessionID TagType = 0x0110
	TagPPPMaxPayload  TagType = 0x0120
	TagServiceNameErr TagType = 0x0201
	TagACSystemErr    TagType = 0x0202
	TagGenericErr     TagType = 0x0203
)

// verType is the fixed version+type nibble pair for PPPoE Discovery,
// RFC 2516 section 4: version 1, type 1.
const verType = 0x11

// headerSize is the size in bytes of the fixed PPPoE Discovery header
// that precedes the TLV payload (vertype, code, session, length).
const headerSize = 6

// standardMTU is the PPPoE-constrained Ethernet MTU, RFC 4638: 1492
// bytes, i.e. 1500 minus the 6 byte PPPoE header and 2 byte PPP
// protocol field.
const standardMTU = 1492

// maxFrameSize is a generous upper bound on an Ethernet frame carrying
// PPPoE Discovery, used to size read buffers. It is not a protocol
// constant, just a buffer budget.
const maxFrameSize = 1522
