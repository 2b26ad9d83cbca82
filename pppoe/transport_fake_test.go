package pppoe

import (
	"context"
	"errors"
	"net"
	"sync"
)

// fakeBus is an in-memory shared Ethernet segment: every fakeTransport
// attached to the same bus sees every other attachment's broadcasts,
// and unicasts addressed to its own MAC. It exists so discovery_test.go
// can drive multi-party scenarios (AC selection among several
// concentrators) deterministically, without a privileged raw socket.
type fakeBus struct {
	mu    sync.Mutex
	ports map[string]*fakeTransport
}

func newFakeBus() *fakeBus {
	return &fakeBus{ports: make(map[string]*fakeTransport)}
}

func (b *fakeBus) attach(mac net.HardwareAddr) *fakeTransport {
	t := &fakeTransport{
		bus:   b,
		mac:   append(net.HardwareAddr(nil), mac...),
		inbox: make(chan Frame, 64),
	}
	b.mu.Lock()
	b.ports[mac.String()] = t
	b.mu.Unlock()
	return t
}

func (b *fakeBus) deliver(src, dst net.HardwareAddr, data []byte) {
	frame := Frame{Src: src, Dst: dst, Data: append([]byte(nil), data...)}

	b.mu.Lock()
	defer b.mu.Unlock()

	if isBroadcast(dst) {
		for mac, port := range b.ports {
			if mac == src.String() {
				continue
			}
			port.enqueue(frame)
		}
		return
	}
	if port, ok := b.ports[dst.String()]; ok {
		port.enqueue(frame)
	}
}

// fakeTransport is a deterministic Transport backed by fakeBus,
// standing in for the teacher's raw-socket based transport in tests.
type fakeTransport struct {
	bus   *fakeBus
	mac   net.HardwareAddr
	inbox chan Frame

	mu     sync.Mutex
	closed bool
}

func (t *fakeTransport) enqueue(f Frame) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	select {
	case t.inbox <- f:
	default:
		// Drop on a full inbox rather than block the sender; no test
		// scenario needs more than 64 frames in flight.
	}
}

func (t *fakeTransport) LocalAddr() net.HardwareAddr { return t.mac }

func (t *fakeTransport) Send(dst net.HardwareAddr, data []byte) error {
	t.mu.Lock()
	closed := t.closed
	t.mu.Unlock()
	if closed {
		return errors.New("fakeTransport: send on closed transport")
	}
	t.bus.deliver(t.mac, dst, data)
	return nil
}

func (t *fakeTransport) Receive(ctx context.Context) (Frame, error) {
	select {
	case f := <-t.inbox:
		return f, nil
	case <-ctx.Done():
		return Frame{}, context.DeadlineExceeded
	}
}

func (t *fakeTransport) Close() error {
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()
	return nil
}
