//go:build !linux

package wireguard

import "errors"

func NewKernel() *Adapter { return newAdapter(kernelDriver{}, "wireguard-kernel") }

type kernelDriver struct{}

func (kernelDriver) Open() (session, error) {
	return nil, errors.New("kernel wireguard backend is only available on linux")
}
