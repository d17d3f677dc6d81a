// Package api — HTTP-обработчики управления устройствами и пирами.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"wghttp/internal/logs"
	"wghttp/internal/middleware"
	"wghttp/internal/models"
	"wghttp/internal/tunnel"
)

// Service — операции, которые обработчики вызывают у tunnel.Manager.
type Service interface {
	ListDevices(ctx context.Context) ([]models.Device, error)
	GetDevice(ctx context.Context, name string) (tunnel.DeviceDetail, error)
	CreateDevice(ctx context.Context, name string, port uint16, addr models.NetworkAddress) (models.Device, error)
	DeleteDevice(ctx context.Context, name string) error
	ListPeers(ctx context.Context, device string) ([]models.Peer, error)
	AddPeer(ctx context.Context, device string, allowedIPs []string, keepalive uint16) (models.Peer, string, error)
	DeletePeer(ctx context.Context, device, publicKey string) error
}

// EventLister — чтение журнала изменений.
type EventLister interface {
	List(ctx context.Context, device string, limit int) ([]models.Event, error)
}

type Handler struct {
	svc    Service
	events EventLister
}

func NewHandler(svc Service, events EventLister) *Handler {
	return &Handler{svc: svc, events: events}
}

// statusFor переводит ошибку в HTTP-статус.
func statusFor(err error) int {
	switch {
	case isBadRequest(err):
		return http.StatusBadRequest
	case errors.Is(err, tunnel.ErrBusy),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	}
	switch models.KindOf(err) {
	case models.KindDeviceNotFound, models.KindPeerNotFound:
		return http.StatusNotFound
	case models.KindDeviceAddFailed:
		return http.StatusConflict
	case models.KindInvalidAddressString, models.KindInvalidAddress,
		models.KindInvalidPrefix, models.KindUnsupportedAddressFamily:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logs.Logger.WithFields(logrus.Fields{
			"reqid": middleware.GetRequestID(r),
			"uri":   r.RequestURI,
			"kind":  models.KindOf(err).String(),
		}).WithError(err).Error("request failed")
	}
	models.WriteError(w, status, err.Error())
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return badRequest("invalid request body: " + err.Error())
	}
	return nil
}

func (h *Handler) ListDevices(w http.ResponseWriter, r *http.Request) {
	devs, err := h.svc.ListDevices(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out := make([]ListDeviceResponse, 0, len(devs))
	for _, d := range devs {
		out = append(out, listDeviceFrom(d))
	}
	models.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) CreateDevice(w http.ResponseWriter, r *http.Request) {
	var req CreateDeviceRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	addr, err := req.validate()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	dev, err := h.svc.CreateDevice(r.Context(), req.DeviceName, req.Port, addr)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	models.WriteJSON(w, http.StatusCreated, CreateDeviceResponse{
		DeviceName:  dev.Name,
		Port:        dev.Port,
		IPAddresses: ipAddrFrom(addr),
		PrivateKey:  dev.PrivateKey,
		PublicKey:   dev.PublicKey,
	})
}

func (h *Handler) GetDevice(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["dev"]
	if err := validateDeviceName(name); err != nil {
		h.fail(w, r, err)
		return
	}
	d, err := h.svc.GetDevice(r.Context(), name)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, DetailDeviceResponse{
		DeviceName:  d.Device.Name,
		Port:        d.Device.Port,
		IPAddresses: ipAddrFrom(d.Address),
		PublicKey:   d.Device.PublicKey,
		Peers:       d.Device.PeerCount,
	})
}

func (h *Handler) DeleteDevice(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["dev"]
	if err := validateDeviceName(name); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.svc.DeleteDevice(r.Context(), name); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListPeers(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["dev"]
	if err := validateDeviceName(name); err != nil {
		h.fail(w, r, err)
		return
	}
	peers, err := h.svc.ListPeers(r.Context(), name)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out := make([]ListPeerResponse, 0, len(peers))
	for _, p := range peers {
		out = append(out, listPeerFrom(p))
	}
	models.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) CreatePeer(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["dev"]
	if err := validateDeviceName(name); err != nil {
		h.fail(w, r, err)
		return
	}
	var req CreatePeerRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := req.validate(); err != nil {
		h.fail(w, r, err)
		return
	}
	peer, priv, err := h.svc.AddPeer(r.Context(), name, req.AllowedIPs, req.PersistentKeepaliveInterval)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	ips := peer.AllowedIPs
	if ips == nil {
		ips = []string{}
	}
	models.WriteJSON(w, http.StatusCreated, CreatePeerResponse{
		PublicKey:                   peer.PublicKey,
		PrivateKey:                  priv,
		PresharedKey:                peer.PresharedKey,
		AllowedIPs:                  ips,
		PersistentKeepaliveInterval: peer.PersistentKeepaliveInterval,
	})
}

func (h *Handler) DeletePeer(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	name, key := vars["dev"], vars["public_key"]
	if err := validateDeviceName(name); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := validatePublicKey(key); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.svc.DeletePeer(r.Context(), name, key); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListEvents — журнал изменений, новые сверху. ?device= фильтрует, ?limit= ограничивает.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := 0
	if s := q.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			h.fail(w, r, badRequest("limit must be a non-negative integer"))
			return
		}
		limit = n
	}
	evs, err := h.events.List(r.Context(), q.Get("device"), limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if evs == nil {
		evs = []models.Event{}
	}
	models.WriteJSON(w, http.StatusOK, evs)
}
