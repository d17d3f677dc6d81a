//go:build linux

package wireguard

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/vishvananda/netlink"
	"golang.org/x/sys/unix"
	"golang.zx2c4.com/wireguard/wgctrl"
	"golang.zx2c4.com/wireguard/wgctrl/wgtypes"

	"wghttp/internal/cstr"
)

const linkKind = "wireguard"

// NewKernel — адаптер поверх модуля ядра wireguard.
func NewKernel() *Adapter { return newAdapter(kernelDriver{}, "wireguard-kernel") }

type kernelDriver struct{}

func (kernelDriver) Open() (session, error) {
	wg, err := wgctrl.New()
	if err != nil {
		return nil, fmt.Errorf("wgctrl: %w", err)
	}
	nl, err := netlink.NewHandle(unix.NETLINK_ROUTE)
	if err != nil {
		_ = wg.Close()
		return nil, fmt.Errorf("rtnetlink: %w", err)
	}
	return &kernelSession{wg: wg, nl: nl}, nil
}

type kernelSession struct {
	wg     *wgctrl.Client
	nl     *netlink.Handle
	closed bool
}

func (s *kernelSession) AddDevice(name string) error {
	attrs := netlink.NewLinkAttrs()
	attrs.Name = cstr.Clamp(name, unix.IFNAMSIZ)
	err := s.nl.LinkAdd(&netlink.Wireguard{LinkAttrs: attrs})
	if errors.Is(err, unix.EEXIST) {
		return os.ErrExist
	}
	return err
}

func (s *kernelSession) link(name string) (netlink.Link, error) {
	link, err := s.nl.LinkByName(cstr.Clamp(name, unix.IFNAMSIZ))
	if err != nil {
		var nf netlink.LinkNotFoundError
		if errors.As(err, &nf) {
			return nil, os.ErrNotExist
		}
		return nil, err
	}
	if link.Type() != linkKind {
		return nil, os.ErrNotExist
	}
	return link, nil
}

func (s *kernelSession) DeleteDevice(name string) error {
	link, err := s.link(name)
	if err != nil {
		return err
	}
	return s.nl.LinkDel(link)
}

func (s *kernelSession) Device(name string) (*wgtypes.Device, error) {
	return s.wg.Device(cstr.Clamp(name, unix.IFNAMSIZ))
}

func (s *kernelSession) ConfigureDevice(name string, cfg wgtypes.Config) error {
	return s.wg.ConfigureDevice(cstr.Clamp(name, unix.IFNAMSIZ), cfg)
}

// DeviceNames — только имена интерфейсов типа wireguard, без чтения конфигурации.
func (s *kernelSession) DeviceNames() ([]string, error) {
	links, err := s.nl.LinkList()
	if err != nil {
		return nil, err
	}
	var names []string
	for _, l := range links {
		if l.Type() == linkKind {
			names = append(names, l.Attrs().Name)
		}
	}
	sort.Strings(names)
	return names, nil
}

func (s *kernelSession) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.nl.Close()
	return s.wg.Close()
}
