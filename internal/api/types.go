package api

import "wghttp/internal/models"

type ListDeviceResponse struct {
	DeviceName string `json:"device_name"`
	Port       uint16 `json:"port"`
	Peers      uint64 `json:"peers"`
}

// DeviceIPAddr — адреса интерфейса; отсутствующее семейство — null.
type DeviceIPAddr struct {
	IPv4 *string `json:"ipv4"`
	IPv6 *string `json:"ipv6"`
}

type CreateDeviceRequest struct {
	DeviceName  string       `json:"device_name"`
	Port        uint16       `json:"port"`
	IPAddresses DeviceIPAddr `json:"ip_addresses"`
}

type CreateDeviceResponse struct {
	DeviceName  string       `json:"device_name"`
	Port        uint16       `json:"port"`
	IPAddresses DeviceIPAddr `json:"ip_addresses"`
	PrivateKey  string       `json:"private_key"`
	PublicKey   string       `json:"public_key"`
}

type DetailDeviceResponse struct {
	DeviceName  string       `json:"device_name"`
	Port        uint16       `json:"port"`
	IPAddresses DeviceIPAddr `json:"ip_addresses"`
	PublicKey   string       `json:"public_key"`
	Peers       uint64       `json:"peers"`
}

type ListPeerResponse struct {
	PublicKey                   string   `json:"public_key"`
	Endpoint                    string   `json:"endpoint"`
	AllowedIPs                  []string `json:"allowed_ips"`
	LastHandshakeTime           int64    `json:"last_handshake_time"`
	PersistentKeepaliveInterval uint16   `json:"persistent_keepalive_interval"`
	RX                          uint64   `json:"rx"`
	TX                          uint64   `json:"tx"`
}

type CreatePeerRequest struct {
	AllowedIPs                  []string `json:"allowed_ips"`
	PersistentKeepaliveInterval uint16   `json:"persistent_keepalive_interval"`
}

type CreatePeerResponse struct {
	PublicKey                   string   `json:"public_key"`
	PrivateKey                  string   `json:"private_key"`
	PresharedKey                string   `json:"preshared_key"`
	AllowedIPs                  []string `json:"allowed_ips"`
	PersistentKeepaliveInterval uint16   `json:"persistent_keepalive_interval"`
}

func ipAddrFrom(n models.NetworkAddress) DeviceIPAddr {
	var out DeviceIPAddr
	if n.IPv4 != nil {
		s := n.IPv4.String()
		out.IPv4 = &s
	}
	if n.IPv6 != nil {
		s := n.IPv6.String()
		out.IPv6 = &s
	}
	return out
}

func listDeviceFrom(d models.Device) ListDeviceResponse {
	return ListDeviceResponse{DeviceName: d.Name, Port: d.Port, Peers: d.PeerCount}
}

func listPeerFrom(p models.Peer) ListPeerResponse {
	ips := p.AllowedIPs
	if ips == nil {
		ips = []string{}
	}
	return ListPeerResponse{
		PublicKey:                   p.PublicKey,
		Endpoint:                    p.Endpoint,
		AllowedIPs:                  ips,
		LastHandshakeTime:           p.LastHandshakeTime,
		PersistentKeepaliveInterval: p.PersistentKeepaliveInterval,
		RX:                          p.RX,
		TX:                          p.TX,
	}
}
