package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"wghttp/config"
	"wghttp/internal/api"
	"wghttp/internal/db"
	"wghttp/internal/health"
	"wghttp/internal/logs"
	"wghttp/internal/metrics"
	"wghttp/internal/middleware"
	"wghttp/internal/models"
	"wghttp/internal/repo"
	"wghttp/internal/tunnel"
)

// Journal — журнал изменений: пишется менеджером, читается через /events.
type Journal interface {
	tunnel.Journal
	api.EventLister
}

type App struct {
	cfg        *config.Config
	db         *gorm.DB
	Router     *mux.Router
	httpServer *http.Server

	metrics *metrics.Metrics
	manager *tunnel.Manager
	closers []io.Closer

	ctx    context.Context
	cancel context.CancelFunc
}

func (a *App) Initialize(cfg *config.Config) error {
	a.cfg = cfg

	/* 1) Логи */
	logs.Init(logs.Options{
		Level:  a.cfg.Logging.Level,
		Format: a.cfg.Logging.Format,
		File:   a.cfg.Logging.File,
	})

	/* 2) DB (опционально) — только под журнал */
	var journal Journal
	if drv := a.cfg.Database.Driver; drv != "" {
		d, err := db.Open(drv, a.cfg.Database.DSN)
		if err != nil {
			return fmt.Errorf("db open failed: %w", err)
		}
		a.db = d
		if err := a.db.AutoMigrate(&models.Event{}); err != nil {
			return fmt.Errorf("db migrate failed: %w", err)
		}
		journal = repo.NewEventStore(a.db)
	} else {
		journal = repo.NewMemEventStore(1024)
	}

	/* 3) Бэкенды */
	wg, err := wireguardBackend(a.cfg)
	if err != nil {
		return err
	}
	a.closers = append(a.closers, wg)
	nd, err := netdevBackend(a.cfg)
	if err != nil {
		return err
	}
	logs.Logger.WithFields(logrus.Fields{
		"wireguard": a.cfg.Backend.WireGuard,
		"netdev":    a.cfg.Backend.NetDev,
	}).Info("backends selected")

	/* 4) Метрики и менеджер */
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	a.metrics = metrics.New(reg)
	a.manager = tunnel.NewManager(wg, nd, tunnel.Options{
		MaxPending: a.cfg.Limits.MaxPending,
		Metrics:    a.metrics,
		Journal:    journal,
		RequestID:  middleware.RequestIDFromContext,
	})

	/* 5) Router + middleware */
	a.Router = mux.NewRouter().StrictSlash(true)
	// ключ пира в пути может содержать "//"
	a.Router.SkipClean(true)
	a.Router.Use(
		middleware.RequestID,
		middleware.Recoverer,
		middleware.LoggerMW,
		middleware.Metrics(a.metrics),
	)

	/* 6) Health и метрики — без токена */
	if a.db != nil {
		health.RegisterRoutesWithDB(a.Router, a.db)
	} else {
		health.RegisterRoutes(a.Router)
	}
	a.Router.Handle("/metrics", a.metrics.Handler()).Methods(http.MethodGet)

	/* 7) API */
	api.RegisterRoutes(a.Router, api.NewHandler(a.manager, journal),
		middleware.BearerAuth(a.cfg.API.Token),
		middleware.Timeout(a.cfg.Limits.RequestTimeout),
	)

	_ = a.Router.Walk(func(rt *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		path, err := rt.GetPathTemplate()
		if err != nil {
			return nil
		}
		methods, _ := rt.GetMethods()
		if len(methods) == 0 {
			methods = []string{"ANY"}
		}
		logs.Logger.Debugf("route: %-6v %s", methods, path)
		return nil
	})
	return nil
}

// listen — unix-сокет, если задан server.socket, иначе TCP.
func (a *App) listen() (net.Listener, string, error) {
	if sock := a.cfg.Server.Socket; sock != "" {
		if err := os.Remove(sock); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, "", fmt.Errorf("remove stale socket: %w", err)
		}
		ln, err := net.Listen("unix", sock)
		return ln, "unix:" + sock, err
	}
	bind := net.JoinHostPort(a.cfg.Server.Address, a.cfg.Server.HTTPPort)
	ln, err := net.Listen("tcp", bind)
	return ln, bind, err
}

func (a *App) Run() error {
	if a.Router == nil || a.cfg == nil {
		return fmt.Errorf("server not initialized")
	}
	defer a.close()

	ln, bind, err := a.listen()
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	a.ctx, a.cancel = context.WithCancel(context.Background())
	defer a.cancel()
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)
	go func() {
		select {
		case s := <-sigs:
			logs.Logger.Infof("shutdown signal: %s", s)
			a.cancel()
		case <-a.ctx.Done():
		}
	}()

	a.httpServer = &http.Server{
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      a.cfg.Limits.RequestTimeout + 15*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logs.Logger.Infof("HTTP listening on %s", bind)
		if err := a.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-a.ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server error: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.httpServer.Shutdown(ctx); err != nil {
		logs.Logger.Errorf("http shutdown: %v", err)
	}
	return nil
}

// close освобождает бэкенды (userspace-устройства живут в процессе).
func (a *App) close() {
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			logs.Logger.WithError(err).Warn("backend close")
		}
	}
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if sock := a.cfg.Server.Socket; sock != "" {
		_ = os.Remove(sock)
	}
}
