package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/hms/hms/internal/app"
	"github.com/hms/hms/internal/config"
	"github.com/hms/hms/internal/console"
	"github.com/hms/hms/internal/fixtures"
	"github.com/hms/hms/internal/platform/middleware"
	"github.com/hms/hms/internal/platform/telemetry"
	"github.com/hms/hms/internal/platform/websocket"
)

var version = "dev"

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "hms-server",
		Short:        "Hospital management console backend",
		Version:      version,
		SilenceUsage: true,
	}
	root.AddCommand(serveCmd())
	root.AddCommand(fixturesCmd())
	root.AddCommand(consoleCmd())
	return root
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, cfg, newLogger(cfg, os.Stdout))
		},
	}
}

func newLogger(cfg *config.Config, out io.Writer) zerolog.Logger {
	if cfg.IsDev() {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}
	return zerolog.New(out).Level(cfg.Level()).With().Timestamp().Logger()
}

// server is the assembled HTTP stack.
type server struct {
	echo *echo.Echo
	app  *app.App
}

func newServer(cfg *config.Config, logger zerolog.Logger, ds *fixtures.Dataset) (*server, error) {
	metrics := telemetry.New(telemetry.Config{
		ServiceVersion: version,
		Environment:    cfg.Env,
		RuntimeMetrics: cfg.RuntimeMetrics,
	})
	hub := websocket.NewHub(logger)

	a, err := app.New(ds, app.Options{
		Logger:          logger,
		LatencyScale:    cfg.LatencyScale,
		ProfilePassword: cfg.ProfilePassword,
		Hub:             hub,
		Metrics:         metrics,
		Alerts:          true,
	})
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(metrics.Middleware("/metrics", "/ws"))
	if cfg.RateLimitRPS > 0 {
		rl := middleware.DefaultRateLimitConfig()
		rl.RequestsPerSecond = cfg.RateLimitRPS
		rl.BurstSize = cfg.RateLimitBurst
		e.Use(middleware.RateLimit(rl))
	}
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.Sanitize(logger))
	e.Use(middleware.BodyLimit(cfg.BodyLimit))
	if cfg.RequestTimeout > 0 {
		e.Use(middleware.RequestTimeout(cfg.RequestTimeout, "/ws"))
	}
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderXRequestID},
	}))

	a.RegisterRoutes(e, cfg.CORSOrigins)
	return &server{echo: e, app: a}, nil
}

func runServer(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	ds, err := fixtures.Load(cfg.FixturesDir)
	if err != nil {
		return fmt.Errorf("load fixtures: %w", err)
	}
	for _, p := range ds.Check() {
		logger.Warn().Str("collection", p.Collection).Int("id", p.ID).Msg(p.Message)
	}

	srv, err := newServer(cfg, logger, ds)
	if err != nil {
		return err
	}

	workerCtx, cancelWorker := context.WithCancel(context.Background())
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		if err := srv.app.Run(workerCtx); err != nil {
			logger.Error().Err(err).Msg("alert worker failed")
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("env", cfg.Env).Float64("latency_scale", cfg.LatencyScale).Msg("starting server")
		if err := srv.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err = <-errCh:
		logger.Error().Err(err).Msg("server error")
	case <-ctx.Done():
		logger.Info().Msg("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if serr := srv.echo.Shutdown(shutdownCtx); serr != nil {
		logger.Error().Err(serr).Msg("server shutdown failed")
		err = errors.Join(err, serr)
	}
	cancelWorker()
	<-workerDone
	logger.Info().Msg("server stopped")
	return err
}

func fixturesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fixtures",
		Short: "Inspect and generate fixture datasets",
	}

	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Report duplicate identifiers and dangling references",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			return checkFixtures(cmd.OutOrStdout(), dir)
		},
	}
	checkCmd.Flags().String("dir", "", "Fixture directory (embedded dataset when empty)")

	defaults := fixtures.DefaultGenerateConfig()
	genCmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a synthetic dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, _ := cmd.Flags().GetString("out")
			gc := fixtures.DefaultGenerateConfig()
			gc.Patients, _ = cmd.Flags().GetInt("patients")
			gc.Doctors, _ = cmd.Flags().GetInt("doctors")
			gc.AppointmentsPerPatient, _ = cmd.Flags().GetInt("appointments-per-patient")
			gc.Medicines, _ = cmd.Flags().GetInt("medicines")
			gc.Notifications, _ = cmd.Flags().GetInt("notifications")
			gc.Seed, _ = cmd.Flags().GetInt64("seed")
			return generateFixtures(cmd.OutOrStdout(), out, gc)
		},
	}
	genCmd.Flags().String("out", "./fixtures", "Output directory")
	genCmd.Flags().Int("patients", defaults.Patients, "Number of patients")
	genCmd.Flags().Int("doctors", defaults.Doctors, "Number of doctors")
	genCmd.Flags().Int("appointments-per-patient", defaults.AppointmentsPerPatient, "Appointments booked per patient")
	genCmd.Flags().Int("medicines", defaults.Medicines, "Number of medicines")
	genCmd.Flags().Int("notifications", defaults.Notifications, "Number of notifications")
	genCmd.Flags().Int64("seed", 0, "Random seed (time based when zero)")

	cmd.AddCommand(checkCmd, genCmd)
	return cmd
}

func checkFixtures(w io.Writer, dir string) error {
	ds, err := fixtures.Load(dir)
	if err != nil {
		return err
	}
	problems := ds.Check()
	for _, p := range problems {
		fmt.Fprintln(w, p.String())
	}
	if fixtures.HasFatal(problems) {
		return fmt.Errorf("%d fixture problems, seeding would fail", len(problems))
	}
	fmt.Fprintf(w, "ok: %d patients, %d doctors, %d appointments, %d bills, %d medicines, %d notifications\n",
		len(ds.Patients), len(ds.Doctors), len(ds.Appointments), len(ds.Bills), len(ds.Medicines), len(ds.Notifications))
	return nil
}

func generateFixtures(w io.Writer, out string, gc fixtures.GenerateConfig) error {
	if gc.Patients <= 0 || gc.Doctors <= 0 {
		return errors.New("at least one patient and one doctor are required")
	}
	ds := fixtures.NewGenerator(gc).Generate()
	if err := ds.Write(out); err != nil {
		return err
	}
	fmt.Fprintf(w, "wrote %d patients, %d doctors, %d appointments to %s\n",
		len(ds.Patients), len(ds.Doctors), len(ds.Appointments), out)
	return nil
}

func consoleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "console <page>",
		Short: "Render a console page as a text table",
		Long:  "Render one console page (dashboard, patients, appointments, doctors, billing, inventory, reports, notifications, profile) against a fixture dataset.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			search, _ := cmd.Flags().GetString("search")
			return renderPage(cmd.Context(), cmd.OutOrStdout(), dir, args[0], search)
		},
	}
	cmd.Flags().String("dir", "", "Fixture directory (embedded dataset when empty)")
	cmd.Flags().StringP("search", "s", "", "Header search text")
	return cmd
}

func renderPage(ctx context.Context, w io.Writer, dir, key, search string) error {
	ds, err := fixtures.Load(dir)
	if err != nil {
		return err
	}
	// Rendering is read-only, so the profile password is never checked.
	a, err := app.New(ds, app.Options{Logger: zerolog.Nop()})
	if err != nil {
		return err
	}
	shell := console.NewShell(a.ConsoleServices())
	if _, err := shell.Page(key); err != nil {
		return err
	}
	shell.SetSearch(search)
	page, loadErr := shell.Open(ctx, key)
	if err := page.Render(w); err != nil {
		return err
	}
	return loadErr
}
