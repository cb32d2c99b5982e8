// Package fixtures loads the static mock dataset the stores are seeded from.
// The default dataset is embedded in the binary; a directory holding the same
// file names can replace it.
package fixtures

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/hms/hms/internal/domain/appointment"
	"github.com/hms/hms/internal/domain/billing"
	"github.com/hms/hms/internal/domain/doctor"
	"github.com/hms/hms/internal/domain/inventory"
	"github.com/hms/hms/internal/domain/notification"
	"github.com/hms/hms/internal/domain/patient"
	"github.com/hms/hms/internal/domain/profile"
)

//go:embed data/*.json
var embedded embed.FS

const (
	PatientsFile      = "patients.json"
	DoctorsFile       = "doctors.json"
	AppointmentsFile  = "appointments.json"
	BillsFile         = "bills.json"
	MedicinesFile     = "medicines.json"
	NotificationsFile = "notifications.json"
	UserFile          = "user.json"
)

// Dataset is one complete set of fixture collections.
type Dataset struct {
	Patients      []patient.Patient
	Doctors       []doctor.Doctor
	Appointments  []appointment.Appointment
	Bills         []billing.Bill
	Medicines     []inventory.Medicine
	Notifications []notification.Notification
	User          profile.User
}

// Default returns the embedded dataset.
func Default() (*Dataset, error) {
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		return nil, err
	}
	return LoadFS(sub)
}

// Load reads the dataset from dir. Files missing from dir fall back to the
// embedded defaults. An empty dir selects the embedded dataset.
func Load(dir string) (*Dataset, error) {
	if dir == "" {
		return Default()
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("fixtures dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("fixtures dir %s is not a directory", dir)
	}
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		return nil, err
	}
	return LoadFS(overlay{primary: os.DirFS(dir), fallback: sub})
}

// LoadFS decodes every fixture file from fsys.
func LoadFS(fsys fs.FS) (*Dataset, error) {
	ds := &Dataset{}
	files := []struct {
		name string
		dst  any
	}{
		{PatientsFile, &ds.Patients},
		{DoctorsFile, &ds.Doctors},
		{AppointmentsFile, &ds.Appointments},
		{BillsFile, &ds.Bills},
		{MedicinesFile, &ds.Medicines},
		{NotificationsFile, &ds.Notifications},
		{UserFile, &ds.User},
	}
	for _, f := range files {
		raw, err := fs.ReadFile(fsys, f.name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f.name, err)
		}
		if err := json.Unmarshal(raw, f.dst); err != nil {
			return nil, fmt.Errorf("decode %s: %w", f.name, err)
		}
	}
	return ds, nil
}

// Write stores the dataset in dir as indented JSON, one file per collection.
func (ds *Dataset) Write(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	files := []struct {
		name string
		src  any
	}{
		{PatientsFile, ds.Patients},
		{DoctorsFile, ds.Doctors},
		{AppointmentsFile, ds.Appointments},
		{BillsFile, ds.Bills},
		{MedicinesFile, ds.Medicines},
		{NotificationsFile, ds.Notifications},
		{UserFile, ds.User},
	}
	for _, f := range files {
		raw, err := json.MarshalIndent(f.src, "", "  ")
		if err != nil {
			return fmt.Errorf("encode %s: %w", f.name, err)
		}
		if err := os.WriteFile(filepath.Join(dir, f.name), append(raw, '\n'), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", f.name, err)
		}
	}
	return nil
}

// overlay serves files from primary and falls back to fallback when a file
// does not exist there.
type overlay struct {
	primary  fs.FS
	fallback fs.FS
}

func (o overlay) Open(name string) (fs.File, error) {
	f, err := o.primary.Open(name)
	if errors.Is(err, fs.ErrNotExist) {
		return o.fallback.Open(name)
	}
	return f, err
}
