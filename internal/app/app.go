// Package app assembles the stores, services and HTTP handlers of the
// console backend from one fixture dataset.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/hms/hms/internal/console"
	"github.com/hms/hms/internal/domain/appointment"
	"github.com/hms/hms/internal/domain/billing"
	"github.com/hms/hms/internal/domain/directory"
	"github.com/hms/hms/internal/domain/doctor"
	"github.com/hms/hms/internal/domain/inventory"
	"github.com/hms/hms/internal/domain/notification"
	"github.com/hms/hms/internal/domain/patient"
	"github.com/hms/hms/internal/domain/profile"
	"github.com/hms/hms/internal/domain/reports"
	"github.com/hms/hms/internal/fixtures"
	"github.com/hms/hms/internal/platform/alerts"
	"github.com/hms/hms/internal/platform/store"
	"github.com/hms/hms/internal/platform/telemetry"
	"github.com/hms/hms/internal/platform/websocket"
)

// Options controls how the stores are instrumented.
type Options struct {
	Logger zerolog.Logger
	// LatencyScale multiplies every simulated delay; zero disables them.
	LatencyScale    float64
	ProfilePassword string
	// Hub, when set, receives every committed change.
	Hub *websocket.Hub
	// Metrics, when set, records store operations and changes.
	Metrics *telemetry.Metrics
	// Alerts turns record changes into notifications. Run must be called
	// for them to be delivered.
	Alerts bool
}

// Repository owns one store per entity type. It is built once and passed
// by reference to everything that reads or writes records.
type Repository struct {
	Patients      *store.Store[patient.Patient]
	Doctors       *store.Store[doctor.Doctor]
	Appointments  *store.Store[appointment.Appointment]
	Bills         *store.Store[billing.Bill]
	Medicines     *store.Store[inventory.Medicine]
	Notifications *store.Store[notification.Notification]
}

// App holds the repository and every service built on it.
type App struct {
	Repo *Repository

	Patients      *patient.Service
	Doctors       *doctor.Service
	Appointments  *appointment.Service
	Bills         *billing.Service
	Medicines     *inventory.Service
	Notifications *notification.Service
	Profile       *profile.Service
	Directory     *directory.Service
	Reports       *reports.Service

	Alerter *alerts.Alerter

	hub     *websocket.Hub
	metrics *telemetry.Metrics
	logger  zerolog.Logger
	started time.Time
}

// storeOptions returns the instrumentation shared by every store.
func storeOptions[T store.Record[T]](o Options, observers ...store.Observer[T]) []store.Option[T] {
	opts := []store.Option[T]{store.WithLatencyScale[T](o.LatencyScale)}
	if o.Metrics != nil {
		opts = append(opts,
			store.WithRecorder[T](o.Metrics),
			store.WithObserver(telemetry.ChangeObserver[T](o.Metrics)),
		)
	}
	if o.Hub != nil {
		opts = append(opts, store.WithObserver(websocket.Observer[T](o.Hub)))
	}
	for _, fn := range observers {
		opts = append(opts, store.WithObserver(fn))
	}
	return opts
}

// New seeds a store per collection of ds and builds the services.
func New(ds *fixtures.Dataset, o Options) (*App, error) {
	a := &App{
		Repo:    &Repository{},
		hub:     o.Hub,
		metrics: o.Metrics,
		logger:  o.Logger,
		started: time.Now(),
	}
	var err error

	// Notifications come first so the alerter can write to them.
	if a.Repo.Notifications, err = notification.NewStore(ds.Notifications, storeOptions[notification.Notification](o)...); err != nil {
		return nil, err
	}
	a.Notifications = notification.NewService(a.Repo.Notifications)

	var (
		patientObs     []store.Observer[patient.Patient]
		appointmentObs []store.Observer[appointment.Appointment]
		medicineObs    []store.Observer[inventory.Medicine]
		billObs        []store.Observer[billing.Bill]
	)
	if o.Alerts {
		a.Alerter = alerts.NewAlerter(a.Notifications, alerts.NewTemplateEngine(), o.Logger, alerts.DefaultBuffer)
		patientObs = append(patientObs, a.Alerter.Patients())
		appointmentObs = append(appointmentObs, a.Alerter.Appointments())
		medicineObs = append(medicineObs, a.Alerter.Medicines())
		billObs = append(billObs, a.Alerter.Bills())
	}

	if a.Repo.Patients, err = patient.NewStore(ds.Patients, storeOptions(o, patientObs...)...); err != nil {
		return nil, err
	}
	if a.Repo.Doctors, err = doctor.NewStore(ds.Doctors, storeOptions[doctor.Doctor](o)...); err != nil {
		return nil, err
	}
	if a.Repo.Appointments, err = appointment.NewStore(ds.Appointments, storeOptions(o, appointmentObs...)...); err != nil {
		return nil, err
	}
	if a.Repo.Bills, err = billing.NewStore(ds.Bills, storeOptions(o, billObs...)...); err != nil {
		return nil, err
	}
	if a.Repo.Medicines, err = inventory.NewStore(ds.Medicines, storeOptions(o, medicineObs...)...); err != nil {
		return nil, err
	}

	a.Patients = patient.NewService(a.Repo.Patients)
	a.Doctors = doctor.NewService(a.Repo.Doctors)
	a.Appointments = appointment.NewService(a.Repo.Appointments)
	a.Bills = billing.NewService(a.Repo.Bills)
	a.Medicines = inventory.NewService(a.Repo.Medicines)

	latency := store.Latency{Get: profile.DefaultLatency}.Scale(o.LatencyScale).Get
	if a.Profile, err = profile.NewService(ds.User, o.ProfilePassword, latency); err != nil {
		return nil, err
	}
	if o.Hub != nil {
		publish := websocket.Observer[profile.User](o.Hub)
		a.Profile.OnChange(func(ctx context.Context, u profile.User) {
			publish(ctx, store.Change[profile.User]{Entity: "profile", Action: store.ActionUpdated, ID: u.ID, Record: u})
		})
	}

	a.Directory = directory.NewService(a.Patients, a.Doctors, a.Appointments, a.Bills)
	a.Reports = reports.NewService(a.Directory, a.Medicines)

	if o.Metrics != nil && o.Hub != nil {
		hub := o.Hub
		if err := o.Metrics.RegisterGaugeFunc("websocket_clients", "Connected change-feed clients.", func() float64 {
			return float64(hub.ClientCount())
		}); err != nil {
			return nil, fmt.Errorf("register websocket gauge: %w", err)
		}
	}
	return a, nil
}

// ConsoleServices returns the services the console pages read from.
func (a *App) ConsoleServices() console.Services {
	return console.Services{
		Patients:      a.Patients,
		Doctors:       a.Doctors,
		Appointments:  a.Appointments,
		Bills:         a.Bills,
		Medicines:     a.Medicines,
		Notifications: a.Notifications,
		Profile:       a.Profile,
		Reports:       a.Reports,
	}
}

// Run delivers alerts until ctx is done. With alerts disabled it only waits
// for ctx.
func (a *App) Run(ctx context.Context) error {
	if a.Alerter == nil {
		<-ctx.Done()
		return nil
	}
	a.logger.Info().Msg("alert worker started")
	err := a.Alerter.Run(ctx)
	a.logger.Info().Int64("dropped", a.Alerter.Dropped()).Msg("alert worker stopped")
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// RegisterRoutes mounts the JSON API under /api/v1, the change feed at /ws,
// metrics at /metrics and the health check at /health.
func (a *App) RegisterRoutes(e *echo.Echo, wsOrigins []string) {
	e.GET("/health", a.Health)

	api := e.Group("/api/v1")
	patient.NewHandler(a.Patients).RegisterRoutes(api)
	doctor.NewHandler(a.Doctors).RegisterRoutes(api)
	appointment.NewHandler(a.Appointments).RegisterRoutes(api)
	billing.NewHandler(a.Bills).RegisterRoutes(api)
	inventory.NewHandler(a.Medicines).RegisterRoutes(api)
	notification.NewHandler(a.Notifications).RegisterRoutes(api)
	profile.NewHandler(a.Profile).RegisterRoutes(api)
	directory.NewHandler(a.Directory).RegisterRoutes(api)
	reports.NewHandler(a.Reports).RegisterRoutes(api)
	console.NewHandler(a.ConsoleServices()).RegisterRoutes(api)

	if a.hub != nil {
		websocket.NewHandler(a.hub, wsOrigins).RegisterRoutes(e.Group(""))
	}
	if a.metrics != nil {
		a.metrics.RegisterRoutes(e)
	}
}

type healthResponse struct {
	Status      string         `json:"status"`
	Uptime      string         `json:"uptime"`
	Collections map[string]int `json:"collections"`
}

// Health reports the record count of every collection. Counting goes
// through the stores, so it also pays their simulated latency.
func (a *App) Health(c echo.Context) error {
	counters := []struct {
		name  string
		count func(context.Context) (int, error)
	}{
		{"patients", func(ctx context.Context) (int, error) { return a.Repo.Patients.Count(ctx, nil) }},
		{"doctors", func(ctx context.Context) (int, error) { return a.Repo.Doctors.Count(ctx, nil) }},
		{"appointments", func(ctx context.Context) (int, error) { return a.Repo.Appointments.Count(ctx, nil) }},
		{"bills", func(ctx context.Context) (int, error) { return a.Repo.Bills.Count(ctx, nil) }},
		{"medicines", func(ctx context.Context) (int, error) { return a.Repo.Medicines.Count(ctx, nil) }},
		{"notifications", func(ctx context.Context) (int, error) { return a.Repo.Notifications.Count(ctx, nil) }},
	}

	results := make([]int, len(counters))
	g, gctx := errgroup.WithContext(c.Request().Context())
	for i, ct := range counters {
		g.Go(func() (err error) {
			results[i], err = ct.count(gctx)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
	}

	counts := make(map[string]int, len(counters))
	for i, ct := range counters {
		counts[ct.name] = results[i]
	}
	return c.JSON(http.StatusOK, healthResponse{
		Status:      "ok",
		Uptime:      time.Since(a.started).Round(time.Second).String(),
		Collections: counts,
	})
}
