package server

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.zx2c4.com/wireguard/device"

	"wghttp/config"
	"wghttp/internal/logs"
	"wghttp/internal/netdev"
	"wghttp/internal/tunnel"
	"wghttp/internal/wireguard"
)

// wireguardBackend выбирает реализацию по backend.wireguard.
func wireguardBackend(cfg *config.Config) (*wireguard.Adapter, error) {
	switch cfg.Backend.WireGuard {
	case config.BackendKernel:
		return wireguard.NewKernel(), nil
	case config.BackendUserspace:
		level := device.LogLevelError
		if logs.Logger.IsLevelEnabled(logrus.DebugLevel) {
			level = device.LogLevelVerbose
		}
		return wireguard.NewUserspace(wireguard.UserspaceOptions{
			MTU:      cfg.Backend.MTU,
			LogLevel: level,
		}), nil
	default:
		return nil, fmt.Errorf("unknown wireguard backend %q", cfg.Backend.WireGuard)
	}
}

// netdevBackend выбирает реализацию по backend.netdev.
func netdevBackend(cfg *config.Config) (tunnel.NetworkDeviceAdapter, error) {
	switch cfg.Backend.NetDev {
	case config.NetDevIoctl:
		return netdev.NewIoctlAdapter(), nil
	case config.NetDevNetlink:
		return netdev.NewLibAdapter(), nil
	default:
		return nil, fmt.Errorf("unknown netdev backend %q", cfg.Backend.NetDev)
	}
}
