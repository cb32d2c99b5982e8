package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/hms/hms/internal/config"
	"github.com/hms/hms/internal/fixtures"
)

func testConfig() *config.Config {
	return &config.Config{
		Port:            "0",
		Env:             "test",
		LogLevel:        "info",
		CORSOrigins:     []string{"http://localhost:3000"},
		RateLimitRPS:    100,
		RateLimitBurst:  200,
		BodyLimit:       "1K",
		RequestTimeout:  5 * time.Second,
		ShutdownTimeout: time.Second,
		ProfilePassword: "admin123",
	}
}

func TestRootCmd_Commands(t *testing.T) {
	root := rootCmd()
	want := map[string]bool{"serve": false, "fixtures": false, "console": false}
	for _, c := range root.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("missing command %s", name)
		}
	}
}

func TestNewServer_Middleware(t *testing.T) {
	ds, err := fixtures.Default()
	if err != nil {
		t.Fatalf("fixtures: %v", err)
	}
	srv, err := newServer(testConfig(), zerolog.Nop(), ds)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/doctors/1", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Dr. Sarah Smith") {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected a request id header")
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("expected security headers")
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("expected CORS origin echo, got %q", got)
	}

	rec = httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "hms_http_request_duration_seconds") {
		t.Fatalf("expected request metrics, got %d", rec.Code)
	}
}

func TestNewServer_RejectsOversizedAndUnsafeRequests(t *testing.T) {
	ds, err := fixtures.Default()
	if err != nil {
		t.Fatalf("fixtures: %v", err)
	}
	cfg := testConfig()
	cfg.LatencyScale = 0
	srv, err := newServer(cfg, zerolog.Nop(), ds)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}

	body := `{"name":"Liam Green","phone":"555-0109","address":"` + strings.Repeat("x", 2048) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/patients", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPut, "/api/v1/patients/1", strings.NewReader(body))
	req.ContentLength = -1
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec = httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413 for a streamed patch, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/console/patients?q=%3Cscript%3E", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestRunServer_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runServer(ctx, testConfig(), zerolog.Nop()) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestCheckFixtures(t *testing.T) {
	var buf bytes.Buffer
	if err := checkFixtures(&buf, ""); err != nil {
		t.Fatalf("check: %v", err)
	}
	if !strings.Contains(buf.String(), "ok: 8 patients, 5 doctors, 10 appointments") {
		t.Fatalf("unexpected output %q", buf.String())
	}

	dir := t.TempDir()
	dup := `[{"Id":1,"name":"A"},{"Id":1,"name":"B"}]`
	if err := os.WriteFile(filepath.Join(dir, fixtures.DoctorsFile), []byte(dup), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	buf.Reset()
	if err := checkFixtures(&buf, dir); err == nil {
		t.Fatal("expected duplicate doctor id to fail the check")
	}
	if !strings.Contains(buf.String(), "duplicate identifier") {
		t.Fatalf("expected the problem to be printed, got %q", buf.String())
	}
}

func TestGenerateFixtures(t *testing.T) {
	dir := t.TempDir()
	gc := fixtures.DefaultGenerateConfig()
	gc.Patients, gc.Doctors, gc.Seed = 5, 2, 42

	var buf bytes.Buffer
	if err := generateFixtures(&buf, dir, gc); err != nil {
		t.Fatalf("generate: %v", err)
	}
	ds, err := fixtures.Load(dir)
	if err != nil {
		t.Fatalf("load generated: %v", err)
	}
	if len(ds.Patients) != 5 || len(ds.Doctors) != 2 {
		t.Fatalf("unexpected sizes %d %d", len(ds.Patients), len(ds.Doctors))
	}
	if fixtures.HasFatal(ds.Check()) {
		t.Fatal("generated data should seed cleanly")
	}

	gc.Patients = 0
	if err := generateFixtures(&buf, dir, gc); err == nil {
		t.Fatal("expected an error for an empty dataset")
	}
}

func TestRenderPage(t *testing.T) {
	var buf bytes.Buffer
	if err := renderPage(context.Background(), &buf, "", "billing", "wilson"); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(buf.String(), "Jane Wilson") || strings.Contains(buf.String(), "John Doe") {
		t.Fatalf("unexpected page %q", buf.String())
	}

	if err := renderPage(context.Background(), &buf, "", "settings", ""); err == nil {
		t.Fatal("expected unknown page error")
	}
}

func TestConsoleCmd(t *testing.T) {
	root := rootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"console", "inventory", "--search", "insulin"})
	if err := root.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out.String(), "Insulin") {
		t.Fatalf("unexpected output %q", out.String())
	}
}
