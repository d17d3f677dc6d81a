//go:build linux

// Package ifreq — тонкая обёртка над управляющим сокетом AF_INET и запросами
// SIOC*IF* к ядру. Имя интерфейса укладывается в IFNAMSIZ (15 байт + ноль).
package ifreq

import (
	"errors"
	"net"
	"net/netip"

	"golang.org/x/sys/unix"

	"wghttp/internal/cstr"
)

// Socket — управляющий сокет. Открывается на один вызов, закрывается через Close.
type Socket struct {
	fd int
}

func Open() (*Socket, error) {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_DGRAM|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return nil, err
	}
	return &Socket{fd: fd}, nil
}

func (s *Socket) Close() error {
	if s.fd < 0 {
		return nil
	}
	err := unix.Close(s.fd)
	s.fd = -1
	return err
}

func request(name string) (*unix.Ifreq, error) {
	return unix.NewIfreq(cstr.Clamp(name, unix.IFNAMSIZ))
}

// Index — SIOCGIFINDEX; по ENODEV видно, что интерфейса нет.
func (s *Socket) Index(name string) (uint32, error) {
	ifr, err := request(name)
	if err != nil {
		return 0, err
	}
	if err := unix.IoctlIfreq(s.fd, unix.SIOCGIFINDEX, ifr); err != nil {
		return 0, err
	}
	return ifr.Uint32(), nil
}

func (s *Socket) SetAddr(name string, addr netip.Addr) error {
	ifr, err := request(name)
	if err != nil {
		return err
	}
	a4 := addr.As4()
	if err := ifr.SetInet4Addr(a4[:]); err != nil {
		return err
	}
	return unix.IoctlIfreq(s.fd, unix.SIOCSIFADDR, ifr)
}

func (s *Socket) SetNetmask(name string, bits int) error {
	ifr, err := request(name)
	if err != nil {
		return err
	}
	if err := ifr.SetInet4Addr(net.CIDRMask(bits, 32)); err != nil {
		return err
	}
	return unix.IoctlIfreq(s.fd, unix.SIOCSIFNETMASK, ifr)
}

// Addr — SIOCGIFADDR. Без IPv4-адреса ядро отвечает EADDRNOTAVAIL.
func (s *Socket) Addr(name string) (netip.Addr, error) {
	ifr, err := request(name)
	if err != nil {
		return netip.Addr{}, err
	}
	if err := unix.IoctlIfreq(s.fd, unix.SIOCGIFADDR, ifr); err != nil {
		return netip.Addr{}, err
	}
	raw, err := ifr.Inet4Addr()
	if err != nil {
		return netip.Addr{}, err
	}
	addr, _ := netip.AddrFromSlice(raw)
	return addr, nil
}

func (s *Socket) Netmask(name string) (int, error) {
	ifr, err := request(name)
	if err != nil {
		return 0, err
	}
	if err := unix.IoctlIfreq(s.fd, unix.SIOCGIFNETMASK, ifr); err != nil {
		return 0, err
	}
	raw, err := ifr.Inet4Addr()
	if err != nil {
		return 0, err
	}
	ones, _ := net.IPMask(raw).Size()
	return ones, nil
}

func (s *Socket) Flags(name string) (uint16, error) {
	ifr, err := request(name)
	if err != nil {
		return 0, err
	}
	if err := unix.IoctlIfreq(s.fd, unix.SIOCGIFFLAGS, ifr); err != nil {
		return 0, err
	}
	return ifr.Uint16(), nil
}

func (s *Socket) SetFlags(name string, flags uint16) error {
	ifr, err := request(name)
	if err != nil {
		return err
	}
	ifr.SetUint16(flags)
	return unix.IoctlIfreq(s.fd, unix.SIOCSIFFLAGS, ifr)
}

// IsNoDevice — ошибка ядра означает отсутствие интерфейса.
func IsNoDevice(err error) bool {
	return errors.Is(err, unix.ENODEV) || errors.Is(err, unix.ENXIO)
}

// IsNoAddress — у интерфейса нет адреса запрошенного семейства.
func IsNoAddress(err error) bool {
	return errors.Is(err, unix.EADDRNOTAVAIL)
}
