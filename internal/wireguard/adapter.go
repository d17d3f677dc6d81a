// Package wireguard — бэкенд управления WireGuard-устройствами и пирами.
//
// Алгоритмы одни для всех бэкендов: прочитать запись устройства, изменить её
// и записать устройство целиком. Чтение и запись делает драйвер: ядро
// (wgctrl + rtnetlink) или wireguard-go внутри процесса.
package wireguard

import (
	"errors"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"golang.zx2c4.com/wireguard/wgctrl/wgtypes"

	"wghttp/internal/logs"
	"wghttp/internal/models"
)

type Adapter struct {
	drv driver
	log *logrus.Entry
}

func newAdapter(drv driver, backend string) *Adapter {
	return &Adapter{drv: drv, log: logs.ForBackend(backend)}
}

// with открывает сессию, выполняет fn и закрывает сессию на любом пути.
func (a *Adapter) with(fn func(s session) error) error {
	s, err := a.drv.Open()
	if err != nil {
		return models.Errorf(models.KindNotificationSocketFailed, "failed to open wireguard control channel: %v", err)
	}
	defer func() {
		if cerr := s.Close(); cerr != nil {
			a.log.WithError(cerr).Warn("wireguard session close failed")
		}
	}()
	return fn(s)
}

func readDevice(s session, name string) (*wgtypes.Device, error) {
	d, err := s.Device(name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, models.Errorf(models.KindDeviceNotFound, "device %s not found", name)
		}
		return nil, models.Errorf(models.KindUnknown, "failed to read device %s: %v", name, err)
	}
	return d, nil
}

func (a *Adapter) GetDevice(name string) (models.Device, error) {
	var out models.Device
	err := a.with(func(s session) error {
		d, err := readDevice(s, name)
		if err != nil {
			return err
		}
		out = deviceFromWG(d)
		return nil
	})
	return out, err
}

// ListDevices прерывается на первой ошибке чтения.
func (a *Adapter) ListDevices() ([]models.Device, error) {
	var out []models.Device
	err := a.with(func(s session) error {
		names, err := s.DeviceNames()
		if err != nil {
			return models.Errorf(models.KindUnknown, "failed to list devices: %v", err)
		}
		out = make([]models.Device, 0, len(names))
		for _, name := range names {
			d, err := readDevice(s, name)
			if err != nil {
				return err
			}
			out = append(out, deviceFromWG(d))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CreateDevice создаёт устройство, генерирует ключи и записывает их вместе с портом.
// При ошибке записи устройство остаётся созданным, ключи не возвращаются.
func (a *Adapter) CreateDevice(name string, port uint16) (models.Device, error) {
	var out models.Device
	err := a.with(func(s session) error {
		if err := s.AddDevice(name); err != nil {
			if errors.Is(err, os.ErrExist) {
				return models.Errorf(models.KindDeviceAddFailed, "device %s already exists", name)
			}
			return models.Errorf(models.KindDeviceAddFailed, "failed to add device %s: %v", name, err)
		}
		d, err := readDevice(s, name)
		if err != nil {
			return err
		}

		priv, err := wgtypes.GeneratePrivateKey()
		if err != nil {
			return models.Errorf(models.KindUnknown, "failed to generate key: %v", err)
		}
		listen := int(port)
		if err := s.ConfigureDevice(name, wgtypes.Config{PrivateKey: &priv, ListenPort: &listen}); err != nil {
			return models.Errorf(models.KindDeviceSetFailed, "failed to configure device %s: %v", name, err)
		}

		out = deviceFromWG(d)
		out.Name = name
		out.Port = port
		out.PrivateKey = priv.String()
		out.PublicKey = priv.PublicKey().String()
		return nil
	})
	if err != nil {
		return models.Device{}, err
	}
	a.log.WithField("device", name).Infof("device created, port %d", port)
	return out, nil
}

func (a *Adapter) DeleteDevice(name string) error {
	err := a.with(func(s session) error {
		if err := s.DeleteDevice(name); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return models.Errorf(models.KindDeviceNotFound, "device %s not found", name)
			}
			return models.Errorf(models.KindUnknown, "failed to delete device %s: %v", name, err)
		}
		return nil
	})
	if err == nil {
		a.log.WithField("device", name).Info("device deleted")
	}
	return err
}

func (a *Adapter) ListPeers(device string) ([]models.Peer, error) {
	var out []models.Peer
	err := a.with(func(s session) error {
		d, err := readDevice(s, device)
		if err != nil {
			return err
		}
		out = make([]models.Peer, 0, len(d.Peers))
		for i := range d.Peers {
			p, err := peerFromWG(&d.Peers[i])
			if err != nil {
				return err
			}
			out = append(out, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// AddPeer добавляет пира с новыми ключами. Второе значение — приватный ключ
// пира; он нигде не хранится и возвращается только здесь.
func (a *Adapter) AddPeer(device string, allowedIPs []string, keepalive uint16) (models.Peer, string, error) {
	prefixes, err := models.ValidateAllowedIPs(allowedIPs)
	if err != nil {
		return models.Peer{}, "", err
	}

	var (
		out  models.Peer
		priv string
	)
	err = a.with(func(s session) error {
		d, err := readDevice(s, device)
		if err != nil {
			return err
		}
		keys, err := generatePeerKeys()
		if err != nil {
			return models.Errorf(models.KindUnknown, "%v", err)
		}
		cfg := resubmission(d)
		cfg.Peers = append(cfg.Peers, newPeerConfig(keys, prefixes, keepalive))
		if err := s.ConfigureDevice(device, cfg); err != nil {
			return models.Errorf(models.KindDeviceSetFailed, "failed to add peer to %s: %v", device, err)
		}

		out = models.Peer{
			PublicKey:                   keys.public.String(),
			PresharedKey:                keys.preshared.String(),
			AllowedIPs:                  canonicalAllowedIPs(prefixes),
			PersistentKeepaliveInterval: keepalive,
		}
		priv = keys.private.String()
		return nil
	})
	if err != nil {
		return models.Peer{}, "", err
	}
	a.log.WithField("device", device).Infof("peer %s added", out.PublicKey)
	return out, priv, nil
}

// canonicalAllowedIPs — allowed_ips в том виде, в каком их вернёт ListPeers:
// биты хоста обнулены, префикс указан явно. Порядок сохраняется.
func canonicalAllowedIPs(prefixes []models.AddrPrefix) []string {
	out := make([]string, 0, len(prefixes))
	for _, p := range prefixes {
		out = append(out, p.Prefix().Masked().String())
	}
	return out
}

// DeletePeer помечает пира на удаление и записывает устройство.
// Если пира с таким ключом нет, операция ничего не меняет и ошибки не возвращает.
func (a *Adapter) DeletePeer(device, publicKey string) error {
	return a.with(func(s session) error {
		d, err := readDevice(s, device)
		if err != nil {
			return err
		}
		cfg := resubmission(d)
		if !markRemoved(&cfg, publicKey) {
			a.log.WithField("device", device).Debugf("peer %s not present, nothing to remove", publicKey)
		}
		if err := s.ConfigureDevice(device, cfg); err != nil {
			return models.Errorf(models.KindDeviceSetFailed, "failed to update device %s: %v", device, err)
		}
		return nil
	})
}

// Close освобождает ресурсы драйвера (userspace-устройства).
func (a *Adapter) Close() error {
	if c, ok := a.drv.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
