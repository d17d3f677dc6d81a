package wireguard

import (
	"net"
	"time"

	"golang.zx2c4.com/wireguard/wgctrl/wgtypes"

	"wghttp/internal/models"
)

// resubmission строит конфиг, повторяющий всех текущих пиров устройства.
// Изменения (новый пир, флаг удаления) вносятся в него перед записью.
// Endpoint не переносится: его ведёт ядро, UpdateOnly без endpoint его сохраняет.
func resubmission(d *wgtypes.Device) wgtypes.Config {
	cfg := wgtypes.Config{Peers: make([]wgtypes.PeerConfig, 0, len(d.Peers)+1)}
	for i := range d.Peers {
		p := &d.Peers[i]
		keepalive := p.PersistentKeepaliveInterval
		pc := wgtypes.PeerConfig{
			PublicKey:                   p.PublicKey,
			UpdateOnly:                  true,
			PersistentKeepaliveInterval: &keepalive,
			ReplaceAllowedIPs:           true,
			AllowedIPs:                  append([]net.IPNet(nil), p.AllowedIPs...),
		}
		if p.PresharedKey != (wgtypes.Key{}) {
			psk := p.PresharedKey
			pc.PresharedKey = &psk
		}
		cfg.Peers = append(cfg.Peers, pc)
	}
	return cfg
}

// markRemoved ставит флаг удаления пиру с данным ключом. false — совпадений нет.
func markRemoved(cfg *wgtypes.Config, publicKey string) bool {
	key, err := wgtypes.ParseKey(publicKey)
	if err != nil {
		return false
	}
	matched := false
	for i := range cfg.Peers {
		if cfg.Peers[i].PublicKey == key {
			cfg.Peers[i].Remove = true
			matched = true
		}
	}
	return matched
}

func newPeerConfig(keys peerKeys, allowed []models.AddrPrefix, keepalive uint16) wgtypes.PeerConfig {
	psk := keys.preshared
	pc := wgtypes.PeerConfig{
		PublicKey:         keys.public,
		PresharedKey:      &psk,
		ReplaceAllowedIPs: true,
		AllowedIPs:        make([]net.IPNet, 0, len(allowed)),
	}
	for _, p := range allowed {
		pc.AllowedIPs = append(pc.AllowedIPs, ipNet(p))
	}
	if keepalive > 0 {
		d := time.Duration(keepalive) * time.Second
		pc.PersistentKeepaliveInterval = &d
	}
	return pc
}
