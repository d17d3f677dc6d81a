package wireguard

import (
	"net"
	"strings"
	"testing"
	"time"

	"golang.zx2c4.com/wireguard/wgctrl/wgtypes"
)

func mustKey(t *testing.T) wgtypes.Key {
	t.Helper()
	k, err := wgtypes.GeneratePrivateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return k
}

func TestParseUAPI(t *testing.T) {
	priv := mustKey(t)
	peer := mustKey(t).PublicKey()
	psk := mustKey(t)

	text := strings.Join([]string{
		"private_key=" + hexKey(priv),
		"listen_port=51820",
		"public_key=" + hexKey(peer),
		"preshared_key=" + hexKey(psk),
		"protocol_version=1",
		"endpoint=[fd00::9]:51000",
		"last_handshake_time_sec=1700000000",
		"last_handshake_time_nsec=5",
		"tx_bytes=120",
		"rx_bytes=340",
		"persistent_keepalive_interval=25",
		"allowed_ip=10.0.0.2/32",
		"allowed_ip=fd00::2/128",
		"",
	}, "\n")

	d, err := parseUAPI(text)
	if err != nil {
		t.Fatalf("parseUAPI: %v", err)
	}
	if d.PrivateKey != priv || d.PublicKey != priv.PublicKey() || d.ListenPort != 51820 {
		t.Fatalf("unexpected device fields %+v", d)
	}
	if len(d.Peers) != 1 {
		t.Fatalf("expected 1 peer, got %d", len(d.Peers))
	}
	p := d.Peers[0]
	if p.PublicKey != peer || p.PresharedKey != psk {
		t.Fatal("peer keys not parsed")
	}
	if p.Endpoint == nil || p.Endpoint.String() != "[fd00::9]:51000" {
		t.Fatalf("unexpected endpoint %v", p.Endpoint)
	}
	if p.LastHandshakeTime.Unix() != 1700000000 || p.TransmitBytes != 120 || p.ReceiveBytes != 340 {
		t.Fatalf("unexpected stats %+v", p)
	}
	if p.PersistentKeepaliveInterval != 25*time.Second || len(p.AllowedIPs) != 2 {
		t.Fatalf("unexpected peer config %+v", p)
	}

	mp, err := peerFromWG(&p)
	if err != nil {
		t.Fatalf("peerFromWG: %v", err)
	}
	if mp.Endpoint != "[fd00::9]:51000" || mp.AllowedIPs[1] != "fd00::2/128" || mp.RX != 340 {
		t.Fatalf("unexpected domain peer %+v", mp)
	}
}

func TestParseUAPIRejectsBadKey(t *testing.T) {
	if _, err := parseUAPI("private_key=zz\n"); err == nil {
		t.Fatal("expected error for malformed key")
	}
	if _, err := parseUAPI("public_key=" + strings.Repeat("a", 10) + "\n"); err == nil {
		t.Fatal("expected error for short key")
	}
	if _, err := parseUAPI("garbage\n"); err == nil {
		t.Fatal("expected error for line without '='")
	}
}

func TestParseUAPIToleratesBadEndpoint(t *testing.T) {
	peer := mustKey(t).PublicKey()
	d, err := parseUAPI("public_key=" + hexKey(peer) + "\nendpoint=???\n")
	if err != nil {
		t.Fatalf("endpoint is informational, got %v", err)
	}
	if d.Peers[0].Endpoint != nil {
		t.Fatalf("unparsable endpoint must be dropped, got %v", d.Peers[0].Endpoint)
	}
}

func TestEncodeUAPI(t *testing.T) {
	priv := mustKey(t)
	port := 51820
	keep := 25 * time.Second
	keep0 := time.Duration(0)
	a, b := mustKey(t).PublicKey(), mustKey(t).PublicKey()
	_, ipn, _ := net.ParseCIDR("10.0.0.2/32")

	text := encodeUAPI(wgtypes.Config{
		PrivateKey: &priv,
		ListenPort: &port,
		Peers: []wgtypes.PeerConfig{
			{PublicKey: a, UpdateOnly: true, PersistentKeepaliveInterval: &keep0, ReplaceAllowedIPs: true, AllowedIPs: []net.IPNet{*ipn}},
			{PublicKey: b, Remove: true, PersistentKeepaliveInterval: &keep},
		},
	})
	want := strings.Join([]string{
		"private_key=" + hexKey(priv),
		"listen_port=51820",
		"public_key=" + hexKey(a),
		"update_only=true",
		"persistent_keepalive_interval=0",
		"replace_allowed_ips=true",
		"allowed_ip=10.0.0.2/32",
		"public_key=" + hexKey(b),
		"remove=true",
		"",
	}, "\n")
	if text != want {
		t.Fatalf("unexpected encoding:\n%s\nwant:\n%s", text, want)
	}
}
