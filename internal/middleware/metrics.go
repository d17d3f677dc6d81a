package middleware

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"wghttp/internal/metrics"
)

// Metrics считает запросы по шаблону маршрута, а не по пути:
// имена устройств и ключи не раздувают кардинальность.
func Metrics(m *metrics.Metrics) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := &statusWriter{ResponseWriter: w}
			next.ServeHTTP(sw, r)
			if m == nil {
				return
			}
			route := "unmatched"
			if cur := mux.CurrentRoute(r); cur != nil {
				if tpl, err := cur.GetPathTemplate(); err == nil {
					route = tpl
				}
			}
			m.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(sw.code())).Inc()
		})
	}
}
