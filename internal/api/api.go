// Package api provides the HTTP surface the presentation layer talks to.
//
// It exposes dispatch endpoints that enqueue request events for the workflow
// engine, and read endpoints over the session, the processing flag, the
// result slots and the notification feed. The API integrates the bus, flow,
// gateway, store, notify and scheduler modules.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gremialdev/memberflow/internal/bus"
	"github.com/gremialdev/memberflow/internal/flow"
	"github.com/gremialdev/memberflow/internal/gateway"
	"github.com/gremialdev/memberflow/internal/notify"
	"github.com/gremialdev/memberflow/internal/scheduler"
	"github.com/gremialdev/memberflow/internal/store"
)

// Default configuration constants
const (
	// DefaultAddr is the default listen address for the API server.
	DefaultAddr = ":8080"
)

// Opts holds configuration options for the API server.
type Opts struct {
	Addr        string
	RefreshCron string
	SMSEnabled  bool
}

// Option defines a configuration option for the API server.
type Option func(*Opts)

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	return func(o *Opts) { o.Addr = addr }
}

// WithRefreshCron enables periodic background refresh on the given cron
// expression.
func WithRefreshCron(expr string) Option {
	return func(o *Opts) { o.RefreshCron = expr }
}

// WithSMS enables the Twilio SMS sink for the feedback channel.
func WithSMS(enabled bool) Option {
	return func(o *Opts) { o.SMSEnabled = enabled }
}

// Server holds the wired collaborators the handlers need.
type Server struct {
	bus      *bus.Bus
	store    store.Store
	app      *flow.AppContext
	toaster  *notify.Toaster
	recorder *notify.Recorder
}

// NewServer creates a server over already-wired collaborators.
func NewServer(b *bus.Bus, st store.Store, app *flow.AppContext, toaster *notify.Toaster, recorder *notify.Recorder) *Server {
	return &Server{bus: b, store: st, app: app, toaster: toaster, recorder: recorder}
}

// routes registers all handlers on a fresh mux.
func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/login", s.loginHandler)
	mux.HandleFunc("/logout", s.logoutHandler)
	mux.HandleFunc("/user", s.userHandler)
	mux.HandleFunc("/user/refresh", s.userRefreshHandler)
	mux.HandleFunc("/password/change", s.changePassHandler)
	mux.HandleFunc("/password/reset", s.resetPassHandler)
	mux.HandleFunc("/enrollment", s.enrollmentHandler)
	mux.HandleFunc("/complaints", s.complaintsHandler)
	mux.HandleFunc("/complaints/submitted", s.submittedComplaintsHandler)
	mux.HandleFunc("/complaints/refresh", s.complaintsRefreshHandler)
	mux.HandleFunc("/password/new", s.newPasswordHandler)
	mux.HandleFunc("/documents", s.documentsHandler)
	mux.HandleFunc("/document", s.documentHandler)
	mux.HandleFunc("/complaints/images", s.complaintImagesHandler)
	mux.HandleFunc("/news", s.newsHandler)
	mux.HandleFunc("/alerts", s.alertsHandler)
	mux.HandleFunc("/information", s.informationHandler)
	mux.HandleFunc("/device-token", s.deviceTokenHandler)
	mux.HandleFunc("/state", s.stateHandler)
	mux.HandleFunc("/notifications", s.notificationsHandler)
	return mux
}

// Run wires every module together and serves the API until the listener
// fails. It mirrors the lifetime of the process: the engine's watchers stop
// when Run returns.
func Run(gwOpts []gateway.Option, storeOpts []store.Option, notifyOpts []notify.Option, apiOpts []Option) error {
	var cfg Opts
	for _, opt := range apiOpts {
		opt(&cfg)
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}

	st, err := buildStore(storeOpts)
	if err != nil {
		return fmt.Errorf("failed to build store: %w", err)
	}
	defer st.Close()

	app := flow.NewAppContext()
	gw, err := gateway.NewClient(append(gwOpts, gateway.WithSessionProvider(app.Session))...)
	if err != nil {
		return fmt.Errorf("failed to build gateway client: %w", err)
	}

	toaster := notify.NewToaster()
	var notifier notify.Notifier = toaster
	if cfg.SMSEnabled {
		sms, err := notify.NewSMSNotifier(toaster, notifyOpts...)
		if err != nil {
			slog.Warn("api.Run: SMS sink disabled", "error", err)
		} else {
			notifier = sms
			slog.Info("api.Run: SMS sink enabled")
		}
	}
	recorder := notify.NewRecorder()

	b := bus.New()
	defer b.Close()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	engine := flow.NewEngine(b, gw, st, app, notifier, recorder)
	engine.Start(ctx)

	if cfg.RefreshCron != "" {
		sched := scheduler.NewScheduler()
		defer sched.Stop()
		if err := sched.ScheduleRefresh(cfg.RefreshCron, b); err != nil {
			return fmt.Errorf("failed to schedule background refresh: %w", err)
		}
	}

	srv := NewServer(b, st, app, toaster, recorder)
	slog.Info("MemberFlow API running", "addr", cfg.Addr)
	return http.ListenAndServe(cfg.Addr, srv.routes())
}

// buildStore selects a backend from the configured DSN: Postgres for
// postgres DSNs, SQLite for file paths, in-memory when no DSN is set.
func buildStore(storeOpts []store.Option) (store.Store, error) {
	var cfg store.Opts
	for _, opt := range storeOpts {
		opt(&cfg)
	}
	if cfg.DSN == "" {
		slog.Debug("api.buildStore: no DSN configured, using in-memory store")
		return store.NewInMemoryStore(), nil
	}
	if store.DetectDSNType(cfg.DSN) == "postgres" {
		slog.Debug("api.buildStore: using Postgres store", "dsn_set", true)
		return store.NewPostgresStore(storeOpts...)
	}
	slog.Debug("api.buildStore: using SQLite store", "db_path", cfg.DSN)
	return store.NewSQLiteStore(storeOpts...)
}
