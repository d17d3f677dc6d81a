package wireguard

import (
	"net"
	"net/netip"
	"strconv"
	"time"

	"golang.zx2c4.com/wireguard/wgctrl/wgtypes"

	"wghttp/internal/models"
)

// Копирование записей библиотеки в доменные значения. Результат не ссылается
// на исходную запись: после закрытия сессии она может быть переиспользована.

func deviceFromWG(d *wgtypes.Device) models.Device {
	var peers uint64
	for range d.Peers {
		peers++
	}
	return models.Device{
		Name:       d.Name,
		PublicKey:  keyText(d.PublicKey),
		PrivateKey: keyText(d.PrivateKey),
		Port:       uint16(d.ListenPort),
		PeerCount:  peers,
	}
}

func peerFromWG(p *wgtypes.Peer) (models.Peer, error) {
	endpoint, err := endpointText(p.Endpoint)
	if err != nil {
		return models.Peer{}, err
	}
	allowed := make([]string, 0, len(p.AllowedIPs))
	for _, ipn := range p.AllowedIPs {
		s, err := allowedIPText(ipn)
		if err != nil {
			return models.Peer{}, err
		}
		allowed = append(allowed, s)
	}
	return models.Peer{
		PublicKey:                   keyText(p.PublicKey),
		PresharedKey:                keyText(p.PresharedKey),
		AllowedIPs:                  allowed,
		Endpoint:                    endpoint,
		PersistentKeepaliveInterval: uint16(p.PersistentKeepaliveInterval / time.Second),
		LastHandshakeTime:           handshakeUnix(p.LastHandshakeTime),
		RX:                          counter(p.ReceiveBytes),
		TX:                          counter(p.TransmitBytes),
	}, nil
}

func familyAddr(ip net.IP) (netip.Addr, error) {
	if v4 := ip.To4(); v4 != nil {
		return netip.AddrFrom4([4]byte(v4)), nil
	}
	if len(ip) == net.IPv6len {
		return netip.AddrFrom16([16]byte(ip)), nil
	}
	return netip.Addr{}, models.Errorf(models.KindUnsupportedAddressFamily, "unsupported address family (%d-byte address)", len(ip))
}

// endpointText — "ip:port" или "[ip6]:port"; пусто, пока рукопожатия не было.
func endpointText(ep *net.UDPAddr) (string, error) {
	if ep == nil || ep.IP == nil {
		return "", nil
	}
	addr, err := familyAddr(ep.IP)
	if err != nil {
		return "", err
	}
	return netip.AddrPortFrom(addr, uint16(ep.Port)).String(), nil
}

func allowedIPText(ipn net.IPNet) (string, error) {
	addr, err := familyAddr(ipn.IP)
	if err != nil {
		return "", err
	}
	ones, bits := ipn.Mask.Size()
	if bits != addr.BitLen() {
		return "", models.Errorf(models.KindUnsupportedAddressFamily, "allowed ip %s has a %d-bit mask", addr, bits)
	}
	return addr.String() + "/" + strconv.Itoa(ones), nil
}

func handshakeUnix(t time.Time) int64 {
	if t.IsZero() || t.Unix() <= 0 {
		return 0
	}
	return t.Unix()
}

func counter(v int64) uint64 {
	if v < 0 {
		return 0
	}
	return uint64(v)
}

// ipNet отдаёт сеть с обнулёнными битами хоста, как её хранит ядро.
func ipNet(p models.AddrPrefix) net.IPNet {
	return net.IPNet{
		IP:   p.Prefix().Masked().Addr().AsSlice(),
		Mask: net.CIDRMask(int(p.Bits), p.Addr.BitLen()),
	}
}
