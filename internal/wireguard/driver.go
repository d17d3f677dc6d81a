package wireguard

import "golang.zx2c4.com/wireguard/wgctrl/wgtypes"

// driver открывает сессию работы с библиотекой настройки WireGuard.
type driver interface {
	Open() (session, error)
}

// session живёт одну операцию адаптера и закрывается ровно один раз.
// Отсутствующее устройство сообщается ошибкой, для которой
// errors.Is(err, os.ErrNotExist), уже существующее — os.ErrExist.
type session interface {
	AddDevice(name string) error
	DeleteDevice(name string) error
	Device(name string) (*wgtypes.Device, error)
	ConfigureDevice(name string, cfg wgtypes.Config) error
	DeviceNames() ([]string, error)
	Close() error
}
