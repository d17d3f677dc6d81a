package wireguard

import (
	"errors"
	"net"
	"os"
	"sort"

	"golang.zx2c4.com/wireguard/wgctrl/wgtypes"
)

// memDriver — драйвер в памяти с семантикой записи как у wgctrl.
type memDriver struct {
	devices map[string]*wgtypes.Device

	opens, closes int
	openErr       error
	addErr        error
	configureErr  error
	configures    []wgtypes.Config
}

func newMemDriver() *memDriver {
	return &memDriver{devices: make(map[string]*wgtypes.Device)}
}

func (d *memDriver) Open() (session, error) {
	if d.openErr != nil {
		return nil, d.openErr
	}
	d.opens++
	return &memSession{d: d}, nil
}

type memSession struct{ d *memDriver }

func (s *memSession) Close() error { s.d.closes++; return nil }

func (s *memSession) AddDevice(name string) error {
	if s.d.addErr != nil {
		return s.d.addErr
	}
	if _, ok := s.d.devices[name]; ok {
		return os.ErrExist
	}
	s.d.devices[name] = &wgtypes.Device{Name: name, Type: wgtypes.LinuxKernel}
	return nil
}

func (s *memSession) DeleteDevice(name string) error {
	if _, ok := s.d.devices[name]; !ok {
		return os.ErrNotExist
	}
	delete(s.d.devices, name)
	return nil
}

func (s *memSession) Device(name string) (*wgtypes.Device, error) {
	d, ok := s.d.devices[name]
	if !ok {
		return nil, os.ErrNotExist
	}
	cp := *d
	cp.Peers = make([]wgtypes.Peer, len(d.Peers))
	for i, p := range d.Peers {
		p.AllowedIPs = append([]net.IPNet(nil), p.AllowedIPs...)
		cp.Peers[i] = p
	}
	return &cp, nil
}

func (s *memSession) ConfigureDevice(name string, cfg wgtypes.Config) error {
	s.d.configures = append(s.d.configures, cfg)
	if s.d.configureErr != nil {
		return s.d.configureErr
	}
	d, ok := s.d.devices[name]
	if !ok {
		return os.ErrNotExist
	}
	if cfg.PrivateKey != nil {
		d.PrivateKey = *cfg.PrivateKey
		d.PublicKey = cfg.PrivateKey.PublicKey()
	}
	if cfg.ListenPort != nil {
		d.ListenPort = *cfg.ListenPort
	}
	for _, pc := range cfg.Peers {
		idx := -1
		for i := range d.Peers {
			if d.Peers[i].PublicKey == pc.PublicKey {
				idx = i
			}
		}
		if pc.Remove {
			if idx >= 0 {
				d.Peers = append(d.Peers[:idx], d.Peers[idx+1:]...)
			}
			continue
		}
		if idx < 0 {
			if pc.UpdateOnly {
				continue
			}
			d.Peers = append(d.Peers, wgtypes.Peer{PublicKey: pc.PublicKey})
			idx = len(d.Peers) - 1
		}
		p := &d.Peers[idx]
		if pc.PresharedKey != nil {
			p.PresharedKey = *pc.PresharedKey
		}
		if pc.Endpoint != nil {
			p.Endpoint = pc.Endpoint
		}
		if pc.PersistentKeepaliveInterval != nil {
			p.PersistentKeepaliveInterval = *pc.PersistentKeepaliveInterval
		}
		if pc.ReplaceAllowedIPs {
			p.AllowedIPs = nil
		}
		for _, ipn := range pc.AllowedIPs {
			// ядро хранит сеть без битов хоста
			p.AllowedIPs = append(p.AllowedIPs, net.IPNet{IP: ipn.IP.Mask(ipn.Mask), Mask: ipn.Mask})
		}
	}
	return nil
}

func (s *memSession) DeviceNames() ([]string, error) {
	var names []string
	for n := range s.d.devices {
		names = append(names, n)
	}
	sort.Strings(names)
	return names, nil
}

var errBoom = errors.New("boom")
