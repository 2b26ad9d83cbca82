package pppoe

import "testing"

var localMAC = []byte{0x02, 0x00, 0x00, 0x00, 0x00, 0x01}

func TestPacketIsForMe(t *testing.T) {
	tests := []struct {
		desc     string
		cfg      Config
		dst      []byte
		hostUniq []byte
		want     bool
	}{
		{"matching dst, no Host-Uniq required", Config{}, localMAC, nil, true},
		{"wrong dst", Config{}, []byte{0, 0, 0, 0, 0, 9}, nil, false},
		{
			desc:     "Host-Uniq required and matches",
			cfg:      Config{HostUniq: []byte("abc")},
			dst:      localMAC,
			hostUniq: []byte("abc"),
			want:     true,
		},
		{
			desc:     "Host-Uniq required and missing",
			cfg:      Config{HostUniq: []byte("abc")},
			dst:      localMAC,
			hostUniq: nil,
			want:     false,
		},
		{
			desc:     "Host-Uniq required and mismatched",
			cfg:      Config{HostUniq: []byte("abc")},
			dst:      localMAC,
			hostUniq: []byte("xyz"),
			want:     false,
		},
	}

	for _, test := range tests {
		t.Run(test.desc, func(t *testing.T) {
			var tags []Tag
			if test.hostUniq != nil {
				tags = append(tags, newTag(TagHostUniq, test.hostUniq))
			}
			p := &packet{code: CodePADO, tags: tags}
			got := packetIsForMe(test.cfg, test.dst, localMAC, p)
			if got != test.want {
				t.Errorf("packetIsForMe() = %v, want %v", got, test.want)
			}
		})
	}
}

func TestInterpretPADOSelection(t *testing.T) {
	padoWith := func(tags ...Tag) *packet {
		return &packet{code: CodePADO, tags: tags}
	}

	tests := []struct {
		desc     string
		cfg      Config
		pkt      *packet
		accepted bool
	}{
		{
			desc: "unconfigured selection accepts any AC/service",
			cfg:  Config{},
			pkt: padoWith(
				newTag(TagACName, []byte("ac1")),
				newTag(TagServiceName, []byte("internet")),
			),
			accepted: true,
		},
		{
			desc: "configured AC name must match exactly",
			cfg:  Config{ACName: "ac1"},
			pkt: padoWith(
				newTag(TagACName, []byte("ac2")),
				newTag(TagServiceName, []byte{}),
			),
			accepted: false,
		},
		{
			desc: "configured AC name matches",
			cfg:  Config{ACName: "ac1"},
			pkt: padoWith(
				newTag(TagACName, []byte("ac1")),
				newTag(TagServiceName, []byte{}),
			),
			accepted: true,
		},
		{
			desc: "missing AC-Name tag is never accepted",
			cfg:  Config{},
			pkt:  padoWith(newTag(TagServiceName, []byte{})),

			accepted: false,
		},
		{
			desc: "error tag rejects the offer regardless of selection",
			cfg:  Config{},
			pkt: padoWith(
				newTag(TagACName, []byte("ac1")),
				newTag(TagServiceName, []byte{}),
				newTag(TagACSystemErr, []byte("overloaded")),
			),
			accepted: false,
		},
		{
			// The Open Question boundary: an empty Service-Name tag
			// matches when no service was configured...
			desc: "empty Service-Name matches unconfigured selection",
			cfg:  Config{},
			pkt: padoWith(
				newTag(TagACName, []byte("ac1")),
				newTag(TagServiceName, []byte{}),
			),
			accepted: true,
		},
		{
			// ...and also matches when the empty string was configured
			// explicitly, since Config.ServiceName == "" means "any
			// service is fine" either way (see DESIGN.md).
			desc: "empty Service-Name matches explicit empty-string configuration",
			cfg:  Config{ServiceName: ""},
			pkt: padoWith(
				newTag(TagACName, []byte("ac1")),
				newTag(TagServiceName, []byte{}),
			),
			accepted: true,
		},
		{
			desc: "empty Service-Name does not match a configured non-empty name",
			cfg:  Config{ServiceName: "gold"},
			pkt: padoWith(
				newTag(TagACName, []byte("ac1")),
				newTag(TagServiceName, []byte{}),
			),
			accepted: false,
		},
	}

	for _, test := range tests {
		t.Run(test.desc, func(t *testing.T) {
			ev := interpretPADO(test.cfg, test.pkt)
			if got := ev.accepted(); got != test.accepted {
				t.Errorf("accepted() = %v, want %v (%+v)", got, test.accepted, ev)
			}
		})
	}
}

func TestInterpretPADSError(t *testing.T) {
	pkt := &packet{
		code: CodePADS,
		tags: []Tag{newTag(TagGenericErr, []byte("no can do"))},
	}
	ev := interpretPADS(Config{}, pkt)
	if !ev.hadError {
		t.Error("expected hadError to be true")
	}
}
