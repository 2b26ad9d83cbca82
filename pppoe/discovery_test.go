package pppoe

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type acOptions struct {
	acName       string
	serviceName  string
	cookie       []byte
	relayID      []byte
	sessionID    uint16
	echoHostUniq bool
	onPADR       func(p *packet)

	// padsErrors, if non-zero, makes the first padsErrors PADR
	// receipts get back a PADS carrying a Generic-Error tag instead
	// of a session, before the responder starts granting sessions.
	padsErrors int
}

// startFakeAC attaches a PADI/PADR responder to bus under mac, running
// until the test ends. It stands in for a real Access Concentrator in
// the end-to-end scenarios below.
func startFakeAC(t *testing.T, bus *fakeBus, mac net.HardwareAddr, opts acOptions) {
	t.Helper()
	tr := bus.attach(mac)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	go func() {
		padrsSeen := 0
		for {
			frame, err := tr.Receive(ctx)
			if err != nil {
				return
			}
			p, err := decodePacket(frame.Data)
			if err != nil {
				continue
			}

			switch p.code {
			case CodePADI:
				tags := []Tag{
					newTag(TagACName, []byte(opts.acName)),
					newTag(TagServiceName, []byte(opts.serviceName)),
				}
				if opts.cookie != nil {
					tags = append(tags, newTag(TagACCookie, opts.cookie))
				}
				if opts.relayID != nil {
					tags = append(tags, newTag(TagRelaySessionID, opts.relayID))
				}
				if opts.echoHostUniq {
					if hu, ok := p.tag(TagHostUniq); ok {
						tags = append(tags, hu)
					}
				}
				tr.Send(frame.Src, encodePacket(CodePADO, 0, tags))

			case CodePADR:
				if opts.onPADR != nil {
					opts.onPADR(p)
				}
				padrsSeen++
				if padrsSeen <= opts.padsErrors {
					tr.Send(frame.Src, encodePacket(CodePADS, 0, []Tag{newTag(TagGenericErr, []byte("busy"))}))
					continue
				}
				tags := []Tag{newTag(TagServiceName, []byte(opts.serviceName))}
				if opts.echoHostUniq {
					if hu, ok := p.tag(TagHostUniq); ok {
						tags = append(tags, hu)
					}
				}
				tr.Send(frame.Src, encodePacket(CodePADS, opts.sessionID, tags))
			}
		}
	}()
}

func clientMAC() net.HardwareAddr { return net.HardwareAddr{0x02, 0, 0, 0, 0, 1} }

func testConfig() Config {
	return Config{DiscoveryTimeout: 20 * time.Millisecond}
}

func TestDiscoverHappyPath(t *testing.T) {
	bus := newFakeBus()
	ac := net.HardwareAddr{0x02, 0, 0, 0, 0, 0xac}
	startFakeAC(t, bus, ac, acOptions{acName: "ac1", serviceName: "internet", cookie: []byte("cookie1"), sessionID: 7})

	client := bus.attach(clientMAC())
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	res, err := Discover(ctx, client, testConfig(), nil, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 7, res.SessionID)
	assert.Equal(t, ac.String(), res.PeerMAC.String())
}

func TestDiscoverSelectsConfiguredAC(t *testing.T) {
	bus := newFakeBus()
	ac1 := net.HardwareAddr{0x02, 0, 0, 0, 0, 2}
	ac2 := net.HardwareAddr{0x02, 0, 0, 0, 0, 3}
	startFakeAC(t, bus, ac1, acOptions{acName: "wrong-ac", serviceName: "internet", sessionID: 1})
	startFakeAC(t, bus, ac2, acOptions{acName: "right-ac", serviceName: "internet", sessionID: 2})

	client := bus.attach(clientMAC())
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	cfg := testConfig()
	cfg.ACName = "right-ac"
	res, err := Discover(ctx, client, cfg, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, ac2.String(), res.PeerMAC.String())
	assert.EqualValues(t, 2, res.SessionID)
}

func TestDiscoverEchoesCookieAndRelayID(t *testing.T) {
	bus := newFakeBus()
	ac := net.HardwareAddr{0x02, 0, 0, 0, 0, 0xac}

	var gotCookie, gotRelayID []byte
	startFakeAC(t, bus, ac, acOptions{
		acName:      "ac1",
		serviceName: "internet",
		cookie:      []byte("a-cookie-value"),
		relayID:     []byte("relay-id-value"),
		sessionID:   42,
		onPADR: func(p *packet) {
			if tag, ok := p.tag(TagACCookie); ok {
				gotCookie = tag.Value
			}
			if tag, ok := p.tag(TagRelaySessionID); ok {
				gotRelayID = tag.Value
			}
		},
	})

	client := bus.attach(clientMAC())
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := Discover(ctx, client, testConfig(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "a-cookie-value", string(gotCookie))
	assert.Equal(t, "relay-id-value", string(gotRelayID))
}

func TestDiscoverIgnoresOffersMissingHostUniq(t *testing.T) {
	bus := newFakeBus()
	badAC := net.HardwareAddr{0x02, 0, 0, 0, 0, 0xb1}
	goodAC := net.HardwareAddr{0x02, 0, 0, 0, 0, 0x60}
	startFakeAC(t, bus, badAC, acOptions{acName: "bad", serviceName: "internet", sessionID: 1, echoHostUniq: false})
	startFakeAC(t, bus, goodAC, acOptions{acName: "good", serviceName: "internet", sessionID: 2, echoHostUniq: true})

	client := bus.attach(clientMAC())
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	cfg := testConfig()
	cfg.HostUniq = []byte("correlator-123")
	res, err := Discover(ctx, client, cfg, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, goodAC.String(), res.PeerMAC.String(), "should have connected to the AC that echoed Host-Uniq")
}

func TestDiscoverGivesUpWithoutPersist(t *testing.T) {
	bus := newFakeBus()
	client := bus.attach(clientMAC()) // no AC attached at all

	cfg := testConfig()
	cfg.DiscoveryTimeout = 5 * time.Millisecond
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := Discover(ctx, client, cfg, nil, nil)
	assert.Equal(t, ErrGaveUp, err)
}

func TestDiscoverRetriesPastPADSError(t *testing.T) {
	bus := newFakeBus()
	ac := net.HardwareAddr{0x02, 0, 0, 0, 0, 0xac}
	startFakeAC(t, bus, ac, acOptions{acName: "ac1", serviceName: "internet", sessionID: 11, padsErrors: 1})

	client := bus.attach(clientMAC())
	cfg := testConfig()
	cfg.DiscoveryTimeout = 20 * time.Millisecond
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	res, err := Discover(ctx, client, cfg, nil, nil)
	require.NoError(t, err, "discovery should retry past a PADS error tag instead of giving up")
	assert.EqualValues(t, 11, res.SessionID)
}

func TestDiscoverIgnoresBogusLengthFrame(t *testing.T) {
	bus := newFakeBus()
	ac := net.HardwareAddr{0x02, 0, 0, 0, 0, 0xac}
	startFakeAC(t, bus, ac, acOptions{acName: "ac1", serviceName: "internet", sessionID: 9})

	client := bus.attach(clientMAC())

	// Inject a frame with a length field that overflows the buffer
	// before the real AC's reply arrives; decodePacket must reject it
	// without wedging the wait loop.
	bogus := []byte{0x11, byte(CodePADO), 0, 0, 0xff, 0xff, 1, 1, 0, 0}
	bus.deliver(ac, clientMAC(), bogus)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	res, err := Discover(ctx, client, testConfig(), nil, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 9, res.SessionID)
}

func TestDiscoverSkipDiscoveryKillSession(t *testing.T) {
	bus := newFakeBus()
	ac := net.HardwareAddr{0x02, 0, 0, 0, 0, 0xac}

	padtReceived := make(chan uint16, 1)
	acTr := bus.attach(ac)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		frame, err := acTr.Receive(ctx)
		if err != nil {
			return
		}
		if p, err := decodePacket(frame.Data); err == nil && p.code == CodePADT {
			padtReceived <- p.sessionID
		}
	}()

	client := bus.attach(clientMAC())
	cfg := Config{
		SkipDiscovery:     true,
		KillSession:       true,
		ExistingPeerMAC:   ac,
		ExistingSessionID: 55,
	}

	_, err := Discover(context.Background(), client, cfg, nil, nil)
	require.NoError(t, err)

	select {
	case sid := <-padtReceived:
		assert.EqualValues(t, 55, sid)
	case <-time.After(time.Second):
		t.Fatal("AC never received a PADT")
	}
}
