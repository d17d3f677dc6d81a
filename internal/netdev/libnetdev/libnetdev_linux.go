//go:build linux

package libnetdev

import (
	"errors"
	"net"
	"net/netip"

	"github.com/vishvananda/netlink"
	"golang.org/x/sys/unix"

	"wghttp/internal/cstr"
	"wghttp/internal/netdev/ifreq"
)

// lookup открывает netlink-хендл и находит интерфейс. Хендл закрывает вызывающий.
func lookup(name string) (*netlink.Handle, netlink.Link, error) {
	h, err := netlink.NewHandle(unix.NETLINK_ROUTE)
	if err != nil {
		return nil, nil, CodeNetlinkSocketFailed
	}
	link, err := h.LinkByName(cstr.Clamp(name, unix.IFNAMSIZ))
	if err != nil {
		h.Close()
		var nf netlink.LinkNotFoundError
		if errors.As(err, &nf) {
			return nil, nil, CodeDevNotFound
		}
		return nil, nil, CodeNetlinkSendFailed
	}
	return h, link, nil
}

// GetIP заполняет ip первыми адресами интерфейса каждого семейства.
func GetIP(name string, ip *IP) error {
	h, link, err := lookup(name)
	if err != nil {
		return err
	}
	defer h.Close()

	addrs, err := h.AddrList(link, netlink.FAMILY_ALL)
	if err != nil {
		return CodeGetifaddrsFailed
	}
	*ip = IP{}
	var have4, have6 bool
	for _, a := range addrs {
		if a.IPNet == nil {
			continue
		}
		addr, ok := netip.AddrFromSlice(a.IP)
		if !ok {
			continue
		}
		addr = addr.Unmap()
		bits, _ := a.Mask.Size()
		switch {
		case addr.Is4() && !have4:
			ip.SetIPv4(format(addr, bits))
			have4 = true
		case addr.Is6() && !have6 && !addr.IsLinkLocalUnicast():
			ip.SetIPv6(format(addr, bits))
			have6 = true
		}
	}
	return nil
}

// SetIP назначает адреса из записи: IPv4 через ioctl, IPv6 через rtnetlink.
func SetIP(name string, ip *IP) error {
	addr4, bits4, has4, err := split(ip.IPv4[:], false)
	if err != nil {
		return err
	}
	addr6, bits6, has6, err := split(ip.IPv6[:], true)
	if err != nil {
		return err
	}

	h, link, err := lookup(name)
	if err != nil {
		return err
	}
	defer h.Close()

	if has4 {
		if err := setIPv4(name, addr4, bits4); err != nil {
			return err
		}
	}
	if has6 {
		nlAddr := &netlink.Addr{IPNet: &net.IPNet{
			IP:   addr6.AsSlice(),
			Mask: net.CIDRMask(bits6, 128),
		}}
		if err := h.AddrReplace(link, nlAddr); err != nil {
			return CodeNetlinkSendFailed
		}
	}
	return nil
}

func setIPv4(name string, addr netip.Addr, bits int) error {
	s, err := ifreq.Open()
	if err != nil {
		return CodeCtlSocketFailed
	}
	defer s.Close()

	if err := s.SetAddr(name, addr); err != nil {
		if ifreq.IsNoDevice(err) {
			return CodeDevNotFound
		}
		return CodeDevIPSetFailed
	}
	if err := s.SetNetmask(name, bits); err != nil {
		if ifreq.IsNoDevice(err) {
			return CodeDevNotFound
		}
		return CodeDevNetmaskSetFailed
	}
	return nil
}

// Up поднимает интерфейс: читает флаги и добавляет IFF_UP.
func Up(name string) error {
	s, err := ifreq.Open()
	if err != nil {
		return CodeCtlSocketFailed
	}
	defer s.Close()

	flags, err := s.Flags(name)
	if err != nil {
		if ifreq.IsNoDevice(err) {
			return CodeDevNotFound
		}
		return CodeGetDevFlagsFailed
	}
	if err := s.SetFlags(name, flags|unix.IFF_UP); err != nil {
		if ifreq.IsNoDevice(err) {
			return CodeDevNotFound
		}
		return CodeSetDevFlagsFailed
	}
	return nil
}
