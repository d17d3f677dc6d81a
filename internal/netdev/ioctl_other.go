//go:build !linux

package netdev

import "wghttp/internal/models"

type IoctlAdapter struct{}

func NewIoctlAdapter() *IoctlAdapter { return &IoctlAdapter{} }

func unsupported() error {
	return models.NewError(models.KindControlSocketFailed, "interface ioctl is only available on linux")
}

func (a *IoctlAdapter) GetAddress(string) (models.NetworkAddress, error) {
	return models.NetworkAddress{}, unsupported()
}

func (a *IoctlAdapter) CheckAddress(addr models.NetworkAddress) error {
	if err := addr.Validate(); err != nil {
		return err
	}
	if addr.IPv6 != nil {
		return models.NewError(models.KindUnsupportedAddressFamily, "ipv6 is not supported by the ioctl backend")
	}
	return nil
}

func (a *IoctlAdapter) SetAddress(_ string, addr models.NetworkAddress) error {
	if err := a.CheckAddress(addr); err != nil {
		return err
	}
	return unsupported()
}

func (a *IoctlAdapter) Up(string) error { return unsupported() }
