package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

// Check — проверка готовности; nil — готов.
type Check func(ctx context.Context) error

// LivenessPaths — адреса liveness; /_health оставлен для старых проверок.
var LivenessPaths = []string{"/", "/_health", "/healthz"}

// RegisterRoutes — liveness на LivenessPaths, readiness на /readyz.
func RegisterRoutes(r *mux.Router, checks ...Check) {
	for _, p := range LivenessPaths {
		r.HandleFunc(p, liveness).Methods(http.MethodGet)
	}
	r.HandleFunc("/readyz", func(w http.ResponseWriter, req *http.Request) {
		ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
		defer cancel()
		for _, c := range checks {
			if err := c(ctx); err != nil {
				http.Error(w, err.Error(), http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	}).Methods(http.MethodGet)
}

// RegisterRoutesWithDB — то же плюс ping БД в readiness.
func RegisterRoutesWithDB(r *mux.Router, db *gorm.DB, checks ...Check) {
	RegisterRoutes(r, append(checks, DBCheck(db))...)
}

func DBCheck(db *gorm.DB) Check {
	return func(ctx context.Context) error {
		if db == nil {
			return errDBNotConfigured
		}
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}

type healthError string

func (e healthError) Error() string { return string(e) }

const errDBNotConfigured = healthError("db not configured")

func liveness(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}
