package pppoe

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/mdlayher/raw"
)

// Frame is a received PPPoE Discovery frame: the source hardware
// address it arrived from, the destination it was addressed to, and
// the PPPoE header+payload bytes (no Ethernet header — the transport
// is responsible for stripping that).
type Frame struct {
	Src  net.HardwareAddr
	Dst  net.HardwareAddr
	Data []byte
}

// Transport is the frame send/receive collaborator of spec.md §6: an
// external component that knows how to get PPPoE Discovery frames on
// and off the wire. The core driver in discovery.go only ever calls
// LocalAddr, Send and Receive; Close is left to whoever opened the
// transport.
type Transport interface {
	// LocalAddr is this client's own hardware address, used to
	// populate the source address of outgoing frames and as the
	// destination address frames must carry to pass packetIsForMe.
	LocalAddr() net.HardwareAddr
	// Send transmits data (a PPPoE header + TLV payload) to dst. Use
	// a broadcast HardwareAddr to send to ff:ff:ff:ff:ff:ff.
	Send(dst net.HardwareAddr, data []byte) error
	// Receive blocks until a frame arrives or ctx is done, whichever
	// happens first. A context deadline exceeded error must satisfy
	// errors.Is(err, context.DeadlineExceeded); the wait loop in
	// discovery.go relies on that to distinguish a timeout (keep
	// retrying, per spec.md §4.4/§4.5) from any other I/O failure
	// (fatal, per spec.md §7 item 4).
	Receive(ctx context.Context) (Frame, error)
	// Close releases the underlying socket.
	Close() error
}

// broadcastMAC is the Ethernet broadcast address, the PADI
// destination per spec.md §4.6.
var broadcastMAC = net.HardwareAddr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}

// rawTransport is the production Transport, backed by a raw Ethernet
// socket listening for the PPPoE Discovery EtherType. Grounded on
// danderson-goppp's newDiscoveryConn/pppoeDiscovery: a
// github.com/mdlayher/raw.PacketConn bound to the interface in cooked
// (SOCK_DGRAM) mode, which has the kernel strip the Ethernet header
// and deliver only frames actually addressed to us or broadcast.
type rawTransport struct {
	conn      net.PacketConn
	localAddr net.HardwareAddr
}

// NewRawTransport opens a raw-socket Transport listening for PPPoE
// Discovery frames on ifName.
func NewRawTransport(ifName string) (Transport, error) {
	intf, err := net.InterfaceByName(ifName)
	if err != nil {
		return nil, fmt.Errorf("pppoe: getting interface %q: %w", ifName, err)
	}
	conn, err := raw.ListenPacket(intf, EtherTypeDiscovery, &raw.Config{LinuxSockDGRAM: true})
	if err != nil {
		return nil, fmt.Errorf("pppoe: opening Discovery listener on %q: %w", ifName, err)
	}
	return &rawTransport{conn: conn, localAddr: intf.HardwareAddr}, nil
}

func (t *rawTransport) LocalAddr() net.HardwareAddr { return t.localAddr }

func (t *rawTransport) Send(dst net.HardwareAddr, data []byte) error {
	_, err := t.conn.WriteTo(data, &raw.Addr{HardwareAddr: dst})
	return err
}

func (t *rawTransport) Receive(ctx context.Context) (Frame, error) {
	deadline, ok := ctx.Deadline()
	if ok {
		t.conn.SetReadDeadline(deadline)
	} else {
		t.conn.SetReadDeadline(time.Time{})
	}

	var buf [maxFrameSize]byte
	n, addr, err := t.conn.ReadFrom(buf[:])
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return Frame{}, context.DeadlineExceeded
		}
		return Frame{}, err
	}

	rawAddr, _ := addr.(*raw.Addr)
	var src net.HardwareAddr
	if rawAddr != nil {
		src = rawAddr.HardwareAddr
	}

	// A cooked (SOCK_DGRAM) raw socket only delivers frames the
	// kernel already accepted for this interface (unicast to our
	// address, or broadcast); there is no destination address left
	// to inspect once the Ethernet header is stripped, so we report
	// our own address as the destination.
	return Frame{Src: src, Dst: t.localAddr, Data: append([]byte(nil), buf[:n]...)}, nil
}

func (t *rawTransport) Close() error { return t.conn.Close() }
