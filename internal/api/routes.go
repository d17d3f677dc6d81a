package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterRoutes вешает API на r. mw применяется только к API-маршрутам
// (например, проверка токена), health и /metrics остаются открытыми.
func RegisterRoutes(r *mux.Router, h *Handler, mw ...mux.MiddlewareFunc) {
	api := r.NewRoute().Subrouter()
	api.Use(mw...)

	api.HandleFunc("/devices", h.ListDevices).Methods(http.MethodGet)
	api.HandleFunc("/devices", h.CreateDevice).Methods(http.MethodPost)
	api.HandleFunc("/devices/{dev}", h.GetDevice).Methods(http.MethodGet)
	api.HandleFunc("/devices/{dev}", h.DeleteDevice).Methods(http.MethodDelete)
	api.HandleFunc("/devices/{dev}/peers", h.ListPeers).Methods(http.MethodGet)
	api.HandleFunc("/devices/{dev}/peers", h.CreatePeer).Methods(http.MethodPost)
	// base64 ключа может содержать '/'
	api.HandleFunc("/devices/{dev}/peers/{public_key:.+}", h.DeletePeer).Methods(http.MethodDelete)

	if h.events != nil {
		api.HandleFunc("/events", h.ListEvents).Methods(http.MethodGet)
	}
}
