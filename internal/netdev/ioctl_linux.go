//go:build linux

package netdev

import (
	"net/netip"

	"golang.org/x/sys/unix"

	"wghttp/internal/models"
	"wghttp/internal/netdev/ifreq"
)

// IoctlAdapter настраивает интерфейс запросами SIOC*IF* к управляющему сокету.
// Сокет открывается на каждый вызов. Только IPv4.
type IoctlAdapter struct {
	open func() (ifreqSocket, error)
}

// ifreqSocket — то, что адаптеру нужно от ifreq.Socket.
type ifreqSocket interface {
	Index(name string) (uint32, error)
	SetAddr(name string, addr netip.Addr) error
	SetNetmask(name string, bits int) error
	Addr(name string) (netip.Addr, error)
	Netmask(name string) (int, error)
	Flags(name string) (uint16, error)
	SetFlags(name string, flags uint16) error
	Close() error
}

func NewIoctlAdapter() *IoctlAdapter {
	return &IoctlAdapter{open: func() (ifreqSocket, error) { return ifreq.Open() }}
}

func (a *IoctlAdapter) socket() (ifreqSocket, error) {
	s, err := a.open()
	if err != nil {
		return nil, models.Errorf(models.KindControlSocketFailed, "failed to open control socket: %v", err)
	}
	return s, nil
}

// stepError переводит ошибку ядра для шага step; ENODEV/ENXIO — устройства нет.
func stepError(name string, kind models.Kind, step string, err error) error {
	if ifreq.IsNoDevice(err) {
		return models.Errorf(models.KindDeviceNotFound, "device %s not found", name)
	}
	return models.Errorf(kind, "%s: %s: %v", name, step, err)
}

func (a *IoctlAdapter) GetAddress(name string) (models.NetworkAddress, error) {
	s, err := a.socket()
	if err != nil {
		return models.NetworkAddress{}, err
	}
	defer s.Close()

	addr, err := s.Addr(name)
	if err != nil {
		if ifreq.IsNoAddress(err) {
			return models.NetworkAddress{}, nil
		}
		return models.NetworkAddress{}, stepError(name, models.KindUnknown, "failed to get device ip", err)
	}
	bits, err := s.Netmask(name)
	if err != nil {
		return models.NetworkAddress{}, stepError(name, models.KindUnknown, "failed to get device netmask", err)
	}
	return models.NetworkAddress{IPv4: &models.AddrPrefix{Addr: addr, Bits: uint8(bits)}}, nil
}

// CheckAddress отклоняет то, что SetAddress не сможет назначить: управляющий
// сокет работает только с IPv4.
func (a *IoctlAdapter) CheckAddress(addr models.NetworkAddress) error {
	if err := addr.Validate(); err != nil {
		return err
	}
	if addr.IPv6 != nil {
		return models.NewError(models.KindUnsupportedAddressFamily, "ipv6 is not supported by the ioctl backend")
	}
	return nil
}

// SetAddress назначает адрес и маску двумя отдельными запросами.
// Между ними интерфейс может кратко иметь новый адрес со старой маской.
func (a *IoctlAdapter) SetAddress(name string, addr models.NetworkAddress) error {
	if err := a.CheckAddress(addr); err != nil {
		return err
	}

	s, err := a.socket()
	if err != nil {
		return err
	}
	defer s.Close()

	if _, err := s.Index(name); err != nil {
		return stepError(name, models.KindUnknown, "failed to look up device", err)
	}
	if addr.IPv4 == nil {
		return nil
	}
	if err := s.SetAddr(name, addr.IPv4.Addr); err != nil {
		return stepError(name, models.KindAddressSetFailed, "failed to set device ip", err)
	}
	if err := s.SetNetmask(name, int(addr.IPv4.Bits)); err != nil {
		return stepError(name, models.KindNetmaskSetFailed, "failed to set device netmask", err)
	}
	return nil
}

func (a *IoctlAdapter) Up(name string) error {
	s, err := a.socket()
	if err != nil {
		return err
	}
	defer s.Close()

	flags, err := s.Flags(name)
	if err != nil {
		return stepError(name, models.KindFlagsGetFailed, "failed to get interface flags", err)
	}
	if err := s.SetFlags(name, flags|unix.IFF_UP); err != nil {
		return stepError(name, models.KindFlagsSetFailed, "failed to set interface flags", err)
	}
	return nil
}
