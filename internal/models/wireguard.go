package models

// Device — WireGuard-устройство в том виде, в каком его видит сервис.
// PeerCount пересчитывается при каждом чтении.
type Device struct {
	Name       string
	PublicKey  string
	PrivateKey string
	Port       uint16
	PeerCount  uint64
}

// Peer — пир устройства. Endpoint, счётчики и время рукопожатия только читаются.
type Peer struct {
	PublicKey                   string
	PresharedKey                string
	AllowedIPs                  []string
	Endpoint                    string // "ip:port" или "[ip6]:port", пусто до рукопожатия
	PersistentKeepaliveInterval uint16 // секунды, 0 — выключено
	LastHandshakeTime           int64  // unix-секунды, 0 — не было
	RX                          uint64
	TX                          uint64
}

// MaxDeviceNameLen — IFNAMSIZ без завершающего нуля.
const MaxDeviceNameLen = 15

// KeyTextLen — длина base64-представления 32-байтового ключа.
const KeyTextLen = 44
