// Package store persists drivers, devices, duty timelines and compliance
// records. Two implementations: Memory for tests and single-node use,
// Postgres for durable deployments.
package store

import (
	"context"
	"errors"
	"math"
	"time"

	"fleetcomp/internal/model"
)

var (
	// ErrNotFound is returned when a referenced entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a create collides with an existing id.
	ErrConflict = errors.New("already exists")
	// ErrNoOpenInterval is returned when a close finds no open duty interval.
	ErrNoOpenInterval = errors.New("no open duty interval")
)

// Store is the persistence boundary for the compliance engines. Duty interval
// mutations for a driver are serialized by the implementation so that at most
// one open interval exists per driver.
type Store interface {
	// Devices.
	CreateDevice(ctx context.Context, d model.Device) (model.Device, error)
	GetDevice(ctx context.Context, id string) (model.Device, error)
	ListDevices(ctx context.Context) ([]model.Device, error)

	// Drivers.
	CreateDriver(ctx context.Context, d model.Driver) (model.Driver, error)
	GetDriver(ctx context.Context, id string) (model.Driver, error)
	ListDrivers(ctx context.Context) ([]model.Driver, error)
	AssignDevice(ctx context.Context, driverID, deviceID string) (model.Driver, error)

	// Duty timeline. StartInterval atomically closes any open interval at
	// iv.StartTime and opens iv; the closed interval (if any) is returned.
	StartInterval(ctx context.Context, iv model.DutyStatusInterval) (*model.DutyStatusInterval, error)
	CloseOpenInterval(ctx context.Context, driverID string, end time.Time, loc model.GeoPoint) (*model.DutyStatusInterval, error)
	OpenInterval(ctx context.Context, driverID string) (*model.DutyStatusInterval, error)
	ListIntervals(ctx context.Context, driverID string, start, end time.Time) ([]model.DutyStatusInterval, error)

	// ELD event log.
	AppendLogEntry(ctx context.Context, e model.LogEntry) error
	ListLogEntries(ctx context.Context, driverID string, start, end time.Time) ([]model.LogEntry, error)

	// Violation records.
	CreateViolation(ctx context.Context, v model.ComplianceViolation) (model.ComplianceViolation, error)
	GetViolation(ctx context.Context, id string) (model.ComplianceViolation, error)
	UpdateViolation(ctx context.Context, v model.ComplianceViolation) error
	ListViolations(ctx context.Context, driverID string) ([]model.ComplianceViolation, error)

	// Weight compliance logs. MarkWeightLogsExported stamps ExportedAt on the
	// identified logs after a successful export.
	AppendWeightLog(ctx context.Context, l model.WeightComplianceLog) error
	ListWeightLogs(ctx context.Context, driverID string, start, end time.Time) ([]model.WeightComplianceLog, error)
	MarkWeightLogsExported(ctx context.Context, driverID string, ids []string, at time.Time) error

	// Weigh-station inspections.
	CreateInspection(ctx context.Context, i model.WeightInspection) (model.WeightInspection, error)
	ListInspections(ctx context.Context, driverID string) ([]model.WeightInspection, error)

	// Webhook subscriptions.
	CreateSubscription(ctx context.Context, s model.Subscription) (model.Subscription, error)
	DeleteSubscription(ctx context.Context, id string) error
	ListSubscriptions(ctx context.Context) ([]model.Subscription, error)

	Ping(ctx context.Context) error
	Close() error
}

// closeInterval stamps the end of an interval. Durations are stored rounded
// to two decimals; live elapsed time on open intervals is never rounded. The
// opening location snapshot is kept; the closing position lands in EndLocation.
func closeInterval(iv *model.DutyStatusInterval, end time.Time, loc model.GeoPoint) {
	e := end
	iv.EndTime = &e
	iv.DurationHours = round2(end.Sub(iv.StartTime).Hours())
	if loc.Lat != 0 || loc.Lng != 0 {
		l := loc
		iv.EndLocation = &l
	}
}

func round2(h float64) float64 { return math.Round(h*100) / 100 }

// inRange reports whether t falls in [start, end]; zero bounds are open.
func inRange(t, start, end time.Time) bool {
	if !start.IsZero() && t.Before(start) {
		return false
	}
	if !end.IsZero() && t.After(end) {
		return false
	}
	return true
}
