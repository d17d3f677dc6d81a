// Package tunnel — контракты адаптеров и менеджер, который сериализует
// обращения к ним.
package tunnel

import "wghttp/internal/models"

// WireguardAdapter — управление WireGuard-устройствами и пирами.
// Реализации синхронны и не потокобезопасны.
type WireguardAdapter interface {
	GetDevice(name string) (models.Device, error)
	ListDevices() ([]models.Device, error)
	CreateDevice(name string, port uint16) (models.Device, error)
	DeleteDevice(name string) error
	ListPeers(device string) ([]models.Peer, error)
	// AddPeer возвращает пира и его приватный ключ (единственный раз).
	AddPeer(device string, allowedIPs []string, keepalive uint16) (models.Peer, string, error)
	// DeletePeer без совпадения по ключу ничего не делает.
	DeletePeer(device, publicKey string) error
}

// NetworkDeviceAdapter — адрес и состояние сетевого интерфейса.
type NetworkDeviceAdapter interface {
	GetAddress(name string) (models.NetworkAddress, error)
	SetAddress(name string, addr models.NetworkAddress) error
	Up(name string) error
}

// AddressChecker — необязательная проверка адреса бэкендом до любых изменений.
// Менеджер вызывает её перед созданием устройства.
type AddressChecker interface {
	CheckAddress(addr models.NetworkAddress) error
}
