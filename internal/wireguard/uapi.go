package wireguard

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"net"
	"net/netip"
	"strconv"
	"strings"
	"time"

	"golang.zx2c4.com/wireguard/wgctrl/wgtypes"
)

// Текстовый протокол настройки wireguard-go (IpcGet/IpcSet): строки key=value,
// ключи в hex, каждый пир начинается со строки public_key.

func hexKey(k wgtypes.Key) string { return hex.EncodeToString(k[:]) }

func parseHexKey(s string) (wgtypes.Key, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return wgtypes.Key{}, fmt.Errorf("malformed key: %w", err)
	}
	return wgtypes.NewKey(b)
}

// encodeUAPI сериализует конфиг для IpcSet.
func encodeUAPI(cfg wgtypes.Config) string {
	var b strings.Builder
	if cfg.PrivateKey != nil {
		fmt.Fprintf(&b, "private_key=%s\n", hexKey(*cfg.PrivateKey))
	}
	if cfg.ListenPort != nil {
		fmt.Fprintf(&b, "listen_port=%d\n", *cfg.ListenPort)
	}
	if cfg.FirewallMark != nil {
		fmt.Fprintf(&b, "fwmark=%d\n", *cfg.FirewallMark)
	}
	if cfg.ReplacePeers {
		b.WriteString("replace_peers=true\n")
	}
	for _, p := range cfg.Peers {
		fmt.Fprintf(&b, "public_key=%s\n", hexKey(p.PublicKey))
		if p.Remove {
			b.WriteString("remove=true\n")
			continue
		}
		if p.UpdateOnly {
			b.WriteString("update_only=true\n")
		}
		if p.PresharedKey != nil {
			fmt.Fprintf(&b, "preshared_key=%s\n", hexKey(*p.PresharedKey))
		}
		if p.Endpoint != nil {
			fmt.Fprintf(&b, "endpoint=%s\n", p.Endpoint.String())
		}
		if p.PersistentKeepaliveInterval != nil {
			fmt.Fprintf(&b, "persistent_keepalive_interval=%d\n", int(*p.PersistentKeepaliveInterval/time.Second))
		}
		if p.ReplaceAllowedIPs {
			b.WriteString("replace_allowed_ips=true\n")
		}
		for _, ipn := range p.AllowedIPs {
			fmt.Fprintf(&b, "allowed_ip=%s\n", ipn.String())
		}
	}
	return b.String()
}

// parseUAPI разбирает ответ IpcGet в запись устройства.
// Ключи и числа разбираются строго; endpoint — мягко, нераспознанный пропускается.
func parseUAPI(text string) (*wgtypes.Device, error) {
	d := &wgtypes.Device{Type: wgtypes.Userspace}
	var peer *wgtypes.Peer
	var hsSec, hsNsec int64

	flush := func() {
		if peer == nil {
			return
		}
		if hsSec != 0 || hsNsec != 0 {
			peer.LastHandshakeTime = time.Unix(hsSec, hsNsec)
		}
		d.Peers = append(d.Peers, *peer)
		peer, hsSec, hsNsec = nil, 0, 0
	}

	sc := bufio.NewScanner(strings.NewReader(text))
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("malformed line %q", line)
		}

		if key == "public_key" {
			flush()
			pk, err := parseHexKey(value)
			if err != nil {
				return nil, fmt.Errorf("public_key: %w", err)
			}
			peer = &wgtypes.Peer{PublicKey: pk}
			continue
		}

		if peer == nil {
			switch key {
			case "private_key":
				k, err := parseHexKey(value)
				if err != nil {
					return nil, fmt.Errorf("private_key: %w", err)
				}
				pub, err := publicFromPrivate(k)
				if err != nil {
					return nil, fmt.Errorf("derive public key: %w", err)
				}
				d.PrivateKey, d.PublicKey = k, pub
			case "listen_port":
				n, err := strconv.ParseUint(value, 10, 16)
				if err != nil {
					return nil, fmt.Errorf("listen_port: %w", err)
				}
				d.ListenPort = int(n)
			case "fwmark":
				n, err := strconv.ParseUint(value, 10, 32)
				if err != nil {
					return nil, fmt.Errorf("fwmark: %w", err)
				}
				d.FirewallMark = int(n)
			}
			continue
		}

		switch key {
		case "preshared_key":
			k, err := parseHexKey(value)
			if err != nil {
				return nil, fmt.Errorf("preshared_key: %w", err)
			}
			peer.PresharedKey = k
		case "endpoint":
			if ap, err := netip.ParseAddrPort(value); err == nil {
				peer.Endpoint = net.UDPAddrFromAddrPort(ap)
			}
		case "last_handshake_time_sec":
			n, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("last_handshake_time_sec: %w", err)
			}
			hsSec = n
		case "last_handshake_time_nsec":
			n, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("last_handshake_time_nsec: %w", err)
			}
			hsNsec = n
		case "tx_bytes":
			n, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("tx_bytes: %w", err)
			}
			peer.TransmitBytes = n
		case "rx_bytes":
			n, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("rx_bytes: %w", err)
			}
			peer.ReceiveBytes = n
		case "persistent_keepalive_interval":
			n, err := strconv.ParseUint(value, 10, 16)
			if err != nil {
				return nil, fmt.Errorf("persistent_keepalive_interval: %w", err)
			}
			peer.PersistentKeepaliveInterval = time.Duration(n) * time.Second
		case "allowed_ip":
			_, ipn, err := net.ParseCIDR(value)
			if err != nil {
				return nil, fmt.Errorf("allowed_ip: %w", err)
			}
			peer.AllowedIPs = append(peer.AllowedIPs, *ipn)
		case "protocol_version":
			n, err := strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("protocol_version: %w", err)
			}
			peer.ProtocolVersion = n
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	flush()
	return d, nil
}
