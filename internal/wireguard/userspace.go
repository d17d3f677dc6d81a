package wireguard

import (
	"fmt"
	"os"
	"sort"
	"sync"

	"golang.zx2c4.com/wireguard/conn"
	"golang.zx2c4.com/wireguard/device"
	"golang.zx2c4.com/wireguard/tun"
	"golang.zx2c4.com/wireguard/tun/netstack"
	"golang.zx2c4.com/wireguard/wgctrl/wgtypes"

	"wghttp/internal/cstr"
)

const (
	DefaultMTU = 1420
	ifNameSize = 16
)

// TUNFactory создаёт TUN-устройство для userspace-интерфейса.
type TUNFactory func(name string, mtu int) (tun.Device, error)

// KernelTUN — настоящий TUN-интерфейс ядра (нужен CAP_NET_ADMIN).
func KernelTUN(name string, mtu int) (tun.Device, error) {
	return tun.CreateTUN(name, mtu)
}

// NetstackTUN — TUN на gVisor netstack, без обращения к ядру.
// Такой интерфейс не виден бэкендам настройки адресов.
func NetstackTUN(_ string, mtu int) (tun.Device, error) {
	t, _, err := netstack.CreateNetTUN(nil, nil, mtu)
	return t, err
}

type UserspaceOptions struct {
	MTU      int
	NewTUN   TUNFactory // nil — KernelTUN
	LogLevel int        // device.LogLevelSilent | LogLevelError | LogLevelVerbose
}

// NewUserspace — адаптер поверх wireguard-go, устройства живут в процессе.
func NewUserspace(opts UserspaceOptions) *Adapter {
	if opts.MTU <= 0 {
		opts.MTU = DefaultMTU
	}
	if opts.NewTUN == nil {
		opts.NewTUN = KernelTUN
	}
	return newAdapter(&userspaceDriver{
		opts:    opts,
		devices: make(map[string]*device.Device),
	}, "wireguard-userspace")
}

type userspaceDriver struct {
	mu      sync.Mutex
	opts    UserspaceOptions
	devices map[string]*device.Device
}

// Open захватывает реестр устройств до Close сессии.
func (d *userspaceDriver) Open() (session, error) {
	d.mu.Lock()
	return &userSession{d: d}, nil
}

// Close останавливает все устройства.
func (d *userspaceDriver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for name, dev := range d.devices {
		dev.Close()
		delete(d.devices, name)
	}
	return nil
}

type userSession struct {
	d      *userspaceDriver
	closed bool
}

func (s *userSession) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.d.mu.Unlock()
	return nil
}

func (s *userSession) lookup(name string) (*device.Device, error) {
	dev, ok := s.d.devices[cstr.Clamp(name, ifNameSize)]
	if !ok {
		return nil, os.ErrNotExist
	}
	return dev, nil
}

func (s *userSession) AddDevice(name string) error {
	name = cstr.Clamp(name, ifNameSize)
	if _, ok := s.d.devices[name]; ok {
		return os.ErrExist
	}
	t, err := s.d.opts.NewTUN(name, s.d.opts.MTU)
	if err != nil {
		return fmt.Errorf("create tun: %w", err)
	}
	logger := device.NewLogger(s.d.opts.LogLevel, fmt.Sprintf("(%s) ", name))
	s.d.devices[name] = device.NewDevice(t, conn.NewDefaultBind(), logger)
	return nil
}

func (s *userSession) DeleteDevice(name string) error {
	dev, err := s.lookup(name)
	if err != nil {
		return err
	}
	dev.Close()
	delete(s.d.devices, cstr.Clamp(name, ifNameSize))
	return nil
}

func (s *userSession) Device(name string) (*wgtypes.Device, error) {
	dev, err := s.lookup(name)
	if err != nil {
		return nil, err
	}
	text, err := dev.IpcGet()
	if err != nil {
		return nil, err
	}
	rec, err := parseUAPI(text)
	if err != nil {
		return nil, err
	}
	rec.Name = cstr.Clamp(name, ifNameSize)
	return rec, nil
}

func (s *userSession) ConfigureDevice(name string, cfg wgtypes.Config) error {
	dev, err := s.lookup(name)
	if err != nil {
		return err
	}
	return dev.IpcSet(encodeUAPI(cfg))
}

func (s *userSession) DeviceNames() ([]string, error) {
	names := make([]string, 0, len(s.d.devices))
	for name := range s.d.devices {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
