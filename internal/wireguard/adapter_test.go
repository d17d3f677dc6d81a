package wireguard

import (
	"reflect"
	"testing"

	"golang.zx2c4.com/wireguard/wgctrl/wgtypes"

	"wghttp/internal/models"
)

func newTestAdapter() (*Adapter, *memDriver) {
	d := newMemDriver()
	return newAdapter(d, "test"), d
}

func assertBalanced(t *testing.T, d *memDriver) {
	t.Helper()
	if d.opens != d.closes {
		t.Fatalf("sessions opened %d, closed %d", d.opens, d.closes)
	}
}

func TestCreateGetRoundTrip(t *testing.T) {
	a, d := newTestAdapter()

	created, err := a.CreateDevice("wg0", 51820)
	if err != nil {
		t.Fatalf("CreateDevice: %v", err)
	}
	got, err := a.GetDevice("wg0")
	if err != nil {
		t.Fatalf("GetDevice: %v", err)
	}
	if got.Name != "wg0" || got.Port != 51820 || got.PeerCount != 0 {
		t.Fatalf("unexpected device %+v", got)
	}
	if got.PublicKey != created.PublicKey || got.PrivateKey != created.PrivateKey {
		t.Fatalf("keys differ between create and get")
	}

	priv, err := wgtypes.ParseKey(got.PrivateKey)
	if err != nil {
		t.Fatalf("private key does not parse: %v", err)
	}
	if priv.PublicKey().String() != got.PublicKey {
		t.Fatal("public key is not derived from private key")
	}
	assertBalanced(t, d)
}

func TestCreateExistingDevice(t *testing.T) {
	a, d := newTestAdapter()
	if _, err := a.CreateDevice("wg0", 51820); err != nil {
		t.Fatalf("CreateDevice: %v", err)
	}
	_, err := a.CreateDevice("wg0", 51821)
	if !models.IsKind(err, models.KindDeviceAddFailed) {
		t.Fatalf("expected device add failure, got %v", err)
	}
	assertBalanced(t, d)
}

func TestCreateDeviceSetFailureReturnsNoKeys(t *testing.T) {
	a, d := newTestAdapter()
	d.configureErr = errBoom

	dev, err := a.CreateDevice("wg0", 51820)
	if !models.IsKind(err, models.KindDeviceSetFailed) {
		t.Fatalf("expected device set failure, got %v", err)
	}
	if dev != (models.Device{}) {
		t.Fatalf("no device must be returned on failure, got %+v", dev)
	}
	// без автоматического отката
	if _, ok := d.devices["wg0"]; !ok {
		t.Fatal("device must stay created")
	}
	assertBalanced(t, d)
}

func TestDeleteNeverCreatedDevice(t *testing.T) {
	a, d := newTestAdapter()
	if err := a.DeleteDevice("wg9"); !models.IsKind(err, models.KindDeviceNotFound) {
		t.Fatalf("expected device not found, got %v", err)
	}
	if _, err := a.GetDevice("wg9"); !models.IsKind(err, models.KindDeviceNotFound) {
		t.Fatalf("expected device not found, got %v", err)
	}
	assertBalanced(t, d)
}

func TestOpenFailure(t *testing.T) {
	a, d := newTestAdapter()
	d.openErr = errBoom
	if _, err := a.ListDevices(); !models.IsKind(err, models.KindNotificationSocketFailed) {
		t.Fatalf("expected socket failure, got %v", err)
	}
}

func TestAddPeerRejectsBadPrefixBeforeSubmit(t *testing.T) {
	a, d := newTestAdapter()
	if _, err := a.CreateDevice("wg0", 51820); err != nil {
		t.Fatalf("CreateDevice: %v", err)
	}
	opens := d.opens
	submitted := len(d.configures)

	for _, bad := range []string{"10.0.0.2/33", "fd00::2/129"} {
		_, _, err := a.AddPeer("wg0", []string{"10.0.0.1/32", bad}, 0)
		if !models.IsKind(err, models.KindInvalidPrefix) {
			t.Fatalf("%s: expected invalid prefix, got %v", bad, err)
		}
	}
	if d.opens != opens || len(d.configures) != submitted {
		t.Fatal("nothing may be submitted for a rejected prefix")
	}
}

func TestAddPeerReturnsStoredForm(t *testing.T) {
	a, _ := newTestAdapter()
	if _, err := a.CreateDevice("wg0", 51820); err != nil {
		t.Fatalf("CreateDevice: %v", err)
	}
	peer, _, err := a.AddPeer("wg0", []string{"10.0.0.5/24", "10.0.0.9", "fd00::7/64"}, 0)
	if err != nil {
		t.Fatalf("AddPeer: %v", err)
	}
	want := []string{"10.0.0.0/24", "10.0.0.9/32", "fd00::/64"}
	if !reflect.DeepEqual(peer.AllowedIPs, want) {
		t.Fatalf("expected %v, got %v", want, peer.AllowedIPs)
	}
	peers, err := a.ListPeers("wg0")
	if err != nil {
		t.Fatalf("ListPeers: %v", err)
	}
	if len(peers) != 1 || !reflect.DeepEqual(peers[0].AllowedIPs, peer.AllowedIPs) {
		t.Fatalf("list_peers disagrees with add_peer: %+v", peers)
	}
}

func TestAddPeerListPeers(t *testing.T) {
	a, d := newTestAdapter()
	if _, err := a.CreateDevice("wg0", 51820); err != nil {
		t.Fatalf("CreateDevice: %v", err)
	}

	allowed := []string{"10.0.0.2/32", "fd00::2/128", "192.168.10.0/24"}
	peer, priv, err := a.AddPeer("wg0", allowed, 25)
	if err != nil {
		t.Fatalf("AddPeer: %v", err)
	}
	if !reflect.DeepEqual(peer.AllowedIPs, allowed) {
		t.Fatalf("allowed ips changed: %v", peer.AllowedIPs)
	}
	k, err := wgtypes.ParseKey(priv)
	if err != nil || k.PublicKey().String() != peer.PublicKey {
		t.Fatalf("returned private key does not match public key")
	}
	if peer.PresharedKey == "" || peer.PersistentKeepaliveInterval != 25 {
		t.Fatalf("unexpected peer %+v", peer)
	}

	peers, err := a.ListPeers("wg0")
	if err != nil {
		t.Fatalf("ListPeers: %v", err)
	}
	if len(peers) != 1 {
		t.Fatalf("expected 1 peer, got %d", len(peers))
	}
	if !reflect.DeepEqual(peers[0].AllowedIPs, allowed) {
		t.Fatalf("expected %v, got %v", allowed, peers[0].AllowedIPs)
	}
	if peers[0].PublicKey != peer.PublicKey || peers[0].PresharedKey != peer.PresharedKey {
		t.Fatal("listed peer does not match added peer")
	}
	if peers[0].Endpoint != "" || peers[0].LastHandshakeTime != 0 {
		t.Fatalf("fresh peer must have no endpoint or handshake: %+v", peers[0])
	}
	assertBalanced(t, d)
}

func TestAddPeerWithoutKeepalive(t *testing.T) {
	a, d := newTestAdapter()
	if _, err := a.CreateDevice("wg0", 51820); err != nil {
		t.Fatalf("CreateDevice: %v", err)
	}
	if _, _, err := a.AddPeer("wg0", []string{"10.0.0.2/32"}, 0); err != nil {
		t.Fatalf("AddPeer: %v", err)
	}
	last := d.configures[len(d.configures)-1]
	added := last.Peers[len(last.Peers)-1]
	if added.PersistentKeepaliveInterval != nil {
		t.Fatal("keepalive must not be set when zero")
	}
}

func TestAddPeerToMissingDevice(t *testing.T) {
	a, d := newTestAdapter()
	_, priv, err := a.AddPeer("wg9", []string{"10.0.0.2/32"}, 0)
	if !models.IsKind(err, models.KindDeviceNotFound) || priv != "" {
		t.Fatalf("expected device not found without key, got %v %q", err, priv)
	}
	assertBalanced(t, d)
}

func TestDeletePeerUnknownKeyIsNoop(t *testing.T) {
	a, d := newTestAdapter()
	if _, err := a.CreateDevice("wg0", 51820); err != nil {
		t.Fatalf("CreateDevice: %v", err)
	}
	peer, _, err := a.AddPeer("wg0", []string{"10.0.0.2/32"}, 0)
	if err != nil {
		t.Fatalf("AddPeer: %v", err)
	}

	other, _ := wgtypes.GeneratePrivateKey()
	if err := a.DeletePeer("wg0", other.PublicKey().String()); err != nil {
		t.Fatalf("DeletePeer unknown: %v", err)
	}
	if err := a.DeletePeer("wg0", "not-a-key"); err != nil {
		t.Fatalf("DeletePeer malformed: %v", err)
	}
	peers, _ := a.ListPeers("wg0")
	if len(peers) != 1 || peers[0].PublicKey != peer.PublicKey {
		t.Fatalf("peer list changed: %+v", peers)
	}
	assertBalanced(t, d)
}

// wg0: создать, добавить двух пиров, удалить первого, удалить устройство.
func TestDeviceLifecycleScenario(t *testing.T) {
	a, d := newTestAdapter()

	if _, err := a.CreateDevice("wg0", 51820); err != nil {
		t.Fatalf("CreateDevice: %v", err)
	}
	p1, _, err := a.AddPeer("wg0", []string{"10.0.0.2/32"}, 25)
	if err != nil {
		t.Fatalf("AddPeer p1: %v", err)
	}
	p2, _, err := a.AddPeer("wg0", []string{"10.0.0.3/32"}, 0)
	if err != nil {
		t.Fatalf("AddPeer p2: %v", err)
	}

	dev, _ := a.GetDevice("wg0")
	if dev.PeerCount != 2 {
		t.Fatalf("expected 2 peers, got %d", dev.PeerCount)
	}

	if err := a.DeletePeer("wg0", p1.PublicKey); err != nil {
		t.Fatalf("DeletePeer: %v", err)
	}
	peers, err := a.ListPeers("wg0")
	if err != nil {
		t.Fatalf("ListPeers: %v", err)
	}
	if len(peers) != 1 || peers[0].PublicKey != p2.PublicKey {
		t.Fatalf("expected only p2 to remain, got %+v", peers)
	}
	if !reflect.DeepEqual(peers[0].AllowedIPs, []string{"10.0.0.3/32"}) {
		t.Fatalf("p2 allowed ips changed: %v", peers[0].AllowedIPs)
	}

	devs, err := a.ListDevices()
	if err != nil || len(devs) != 1 || devs[0].PeerCount != 1 {
		t.Fatalf("unexpected list %+v, %v", devs, err)
	}

	if err := a.DeleteDevice("wg0"); err != nil {
		t.Fatalf("DeleteDevice: %v", err)
	}
	devs, err = a.ListDevices()
	if err != nil || len(devs) != 0 {
		t.Fatalf("expected no devices, got %+v, %v", devs, err)
	}
	assertBalanced(t, d)
}
