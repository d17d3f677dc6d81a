package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/sirupsen/logrus"

	"wghttp/internal/logs"
	"wghttp/internal/models"
)

// Recoverer перехватывает панику в обработчике, пишет лог со стеком
// и возвращает 500 с {"message"}.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				reqid := GetRequestID(r)
				logs.Logger.WithFields(logrus.Fields{
					"reqid":  reqid,
					"uri":    r.RequestURI,
					"method": r.Method,
				}).Errorf("panic: %v\nstack:\n%s", rec, debug.Stack())
				models.WriteError(w, http.StatusInternalServerError,
					"unexpected server error (reqid "+reqid+")")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
