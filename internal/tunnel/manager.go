package tunnel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"
	"gorm.io/datatypes"

	"wghttp/internal/logs"
	"wghttp/internal/metrics"
	"wghttp/internal/models"
)

// ErrBusy — очередь ожидающих запросов заполнена.
var ErrBusy = errors.New("too many pending requests")

// Journal — куда пишутся изменения (repo.EventStore / repo.MemEventStore).
type Journal interface {
	Record(ctx context.Context, ev *models.Event) error
}

type Options struct {
	MaxPending int // 0 — 64
	Metrics    *metrics.Metrics
	Journal    Journal
	RequestID  func(context.Context) string
}

// DeviceDetail — устройство вместе с адресами интерфейса.
type DeviceDetail struct {
	Device  models.Device
	Address models.NetworkAddress
}

// Manager держит оба адаптера. В каждый момент выполняется не больше одного
// вызова адаптера на процесс; ожидающих — не больше MaxPending.
type Manager struct {
	wg WireguardAdapter
	nd NetworkDeviceAdapter

	lock  *semaphore.Weighted
	queue *semaphore.Weighted

	metrics   *metrics.Metrics
	journal   Journal
	requestID func(context.Context) string
	log       *logrus.Entry
}

func NewManager(wg WireguardAdapter, nd NetworkDeviceAdapter, opts Options) *Manager {
	if opts.MaxPending <= 0 {
		opts.MaxPending = 64
	}
	return &Manager{
		wg:        wg,
		nd:        nd,
		lock:      semaphore.NewWeighted(1),
		queue:     semaphore.NewWeighted(int64(opts.MaxPending)),
		metrics:   opts.Metrics,
		journal:   opts.Journal,
		requestID: opts.RequestID,
		log:       logs.Logger.WithField("component", "tunnel"),
	}
}

// run занимает место в очереди, ждёт блокировку (с учётом ctx) и выполняет fn.
// Контекст ограничивает только ожидание: начатый вызов адаптера не прерывается.
func (m *Manager) run(ctx context.Context, op string, fn func() error) error {
	if !m.queue.TryAcquire(1) {
		if m.metrics != nil {
			m.metrics.QueueRejected.Inc()
		}
		return ErrBusy
	}
	defer m.queue.Release(1)

	if err := m.lock.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("waiting for backend: %w", err)
	}
	defer m.lock.Release(1)

	start := time.Now()
	err := fn()
	kind := ""
	if err != nil {
		kind = models.KindOf(err).String()
	}
	m.metrics.ObserveBackend(op, start, kind)
	return err
}

func (m *Manager) record(ctx context.Context, op, device, peer string, err error, detail map[string]any) {
	if m.journal == nil {
		return
	}
	ev := &models.Event{
		Operation: op,
		Device:    device,
		Peer:      peer,
		Status:    models.EventStatusOK,
	}
	if m.requestID != nil {
		ev.RequestID = m.requestID(ctx)
	}
	if err != nil {
		ev.Status = models.EventStatusFailed
		ev.Message = err.Error()
	}
	if len(detail) > 0 {
		if b, jerr := json.Marshal(detail); jerr == nil {
			ev.Detail = datatypes.JSON(b)
		}
	}
	// журнал вторичен: ошибка записи не отменяет выполненную операцию
	if jerr := m.journal.Record(context.WithoutCancel(ctx), ev); jerr != nil {
		m.log.WithError(jerr).WithField("op", op).Warn("journal write failed")
	}
}

func (m *Manager) ListDevices(ctx context.Context) ([]models.Device, error) {
	var out []models.Device
	err := m.run(ctx, "list_devices", func() (err error) {
		out, err = m.wg.ListDevices()
		return err
	})
	return out, err
}

func (m *Manager) GetDevice(ctx context.Context, name string) (DeviceDetail, error) {
	var out DeviceDetail
	err := m.run(ctx, "get_device", func() error {
		dev, err := m.wg.GetDevice(name)
		if err != nil {
			return err
		}
		addr, err := m.nd.GetAddress(name)
		if err != nil {
			return models.WithStep(err, "read address of "+name)
		}
		out = DeviceDetail{Device: dev, Address: addr}
		return nil
	})
	return out, err
}

// CreateDevice: создать устройство, назначить адрес, поднять интерфейс.
// Сбой на втором или третьем шаге не откатывает предыдущие.
func (m *Manager) CreateDevice(ctx context.Context, name string, port uint16, addr models.NetworkAddress) (models.Device, error) {
	if err := addr.Validate(); err != nil {
		return models.Device{}, err
	}
	if c, ok := m.nd.(AddressChecker); ok && !addr.Empty() {
		if err := c.CheckAddress(addr); err != nil {
			return models.Device{}, err
		}
	}
	var out models.Device
	err := m.run(ctx, "create_device", func() error {
		dev, err := m.wg.CreateDevice(name, port)
		if err != nil {
			return err
		}
		if !addr.Empty() {
			if err := m.nd.SetAddress(name, addr); err != nil {
				return models.WithStep(err, "set address on "+name)
			}
		}
		if err := m.nd.Up(name); err != nil {
			return models.WithStep(err, "bring up "+name)
		}
		out = dev
		return nil
	})
	detail := map[string]any{"port": port}
	if addr.IPv4 != nil {
		detail["ipv4"] = addr.IPv4.String()
	}
	if addr.IPv6 != nil {
		detail["ipv6"] = addr.IPv6.String()
	}
	m.record(ctx, "create_device", name, "", err, detail)
	return out, err
}

func (m *Manager) DeleteDevice(ctx context.Context, name string) error {
	err := m.run(ctx, "delete_device", func() error {
		return m.wg.DeleteDevice(name)
	})
	m.record(ctx, "delete_device", name, "", err, nil)
	return err
}

func (m *Manager) ListPeers(ctx context.Context, device string) ([]models.Peer, error) {
	var out []models.Peer
	err := m.run(ctx, "list_peers", func() (err error) {
		out, err = m.wg.ListPeers(device)
		return err
	})
	return out, err
}

func (m *Manager) AddPeer(ctx context.Context, device string, allowedIPs []string, keepalive uint16) (models.Peer, string, error) {
	var (
		peer models.Peer
		priv string
	)
	err := m.run(ctx, "add_peer", func() (err error) {
		peer, priv, err = m.wg.AddPeer(device, allowedIPs, keepalive)
		return err
	})
	m.record(ctx, "add_peer", device, peer.PublicKey, err, map[string]any{
		"allowed_ips": allowedIPs,
		"keepalive":   keepalive,
	})
	return peer, priv, err
}

func (m *Manager) DeletePeer(ctx context.Context, device, publicKey string) error {
	err := m.run(ctx, "delete_peer", func() error {
		return m.wg.DeletePeer(device, publicKey)
	})
	m.record(ctx, "delete_peer", device, publicKey, err, nil)
	return err
}
