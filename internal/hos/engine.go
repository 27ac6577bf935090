// Package hos maintains driver duty timelines and evaluates hours-of-service
// rules over a rolling 7-day window.
package hos

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"fleetcomp/internal/model"
	"fleetcomp/internal/store"
)

// FMCSA property-carrying limits.
const (
	WindowDays        = 7
	MaxDrivingHours   = 11.0
	MaxCycleHours     = 70.0
	BreakAfterDriving = 8.0
	MinBreakHours     = 0.5
)

// ErrInvalidDutyStatus is returned for unrecognized duty statuses.
var ErrInvalidDutyStatus = errors.New("invalid duty status")

// Engine owns duty timelines, violation records, weight compliance logs and
// inspections for all drivers.
type Engine struct {
	st  store.Store
	log *zap.Logger
	now func() time.Time
}

// NewEngine builds an HOS engine over the given store.
func NewEngine(st store.Store, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{st: st, log: log, now: time.Now}
}

// eventCodes are the ELD event codes recorded per duty status.
var eventCodes = map[model.DutyStatus]string{
	model.StatusOffDuty:            "DS_OFF",
	model.StatusSleeperBerth:       "DS_SB",
	model.StatusDriving:            "DS_D",
	model.StatusOnDuty:             "DS_ON",
	model.StatusYardMove:           "DS_YM",
	model.StatusPersonalConveyance: "DS_PC",
}

// StartDutyStatus closes any open interval at the new start time and opens a
// new one. Transition legality is never checked here: the timeline records
// what happened and CheckCompliance judges it afterwards. Returns the new
// interval and the one it closed, if any.
func (e *Engine) StartDutyStatus(ctx context.Context, driverID string, status model.DutyStatus, loc model.GeoPoint) (model.DutyStatusInterval, *model.DutyStatusInterval, error) {
	if !status.IsValid() {
		return model.DutyStatusInterval{}, nil, fmt.Errorf("%w: %s", ErrInvalidDutyStatus, status)
	}
	drv, err := e.st.GetDriver(ctx, driverID)
	if err != nil {
		return model.DutyStatusInterval{}, nil, err
	}
	iv := model.DutyStatusInterval{
		ID:         uuid.NewString(),
		DriverID:   driverID,
		DeviceID:   drv.DeviceID,
		Status:     status,
		StartTime:  e.now().UTC(),
		Location:   loc,
		DataSource: model.SourceAutomatic,
	}
	closed, err := e.st.StartInterval(ctx, iv)
	if err != nil {
		return model.DutyStatusInterval{}, nil, err
	}
	e.appendStatusLog(ctx, iv)
	e.log.Info("duty status started",
		zap.String("driverId", driverID),
		zap.String("status", string(status)),
		zap.String("intervalId", iv.ID))
	return iv, closed, nil
}

// EndDutyStatus closes the open interval without opening a new one.
func (e *Engine) EndDutyStatus(ctx context.Context, driverID string, loc model.GeoPoint) (*model.DutyStatusInterval, error) {
	closed, err := e.st.CloseOpenInterval(ctx, driverID, e.now().UTC(), loc)
	if err != nil {
		return nil, err
	}
	entry := model.LogEntry{
		ID:          uuid.NewString(),
		DriverID:    driverID,
		DeviceID:    closed.DeviceID,
		Timestamp:   e.now().UTC(),
		EventType:   "duty_status_end",
		EventCode:   eventCodes[closed.Status],
		Description: fmt.Sprintf("ended %s after %.2f hours", closed.Status, closed.DurationHours),
		Location:    loc,
		DataSource:  model.SourceAutomatic,
	}
	if err := e.st.AppendLogEntry(ctx, entry); err != nil {
		e.log.Warn("log entry append failed", zap.String("driverId", driverID), zap.Error(err))
	}
	return closed, nil
}

// CurrentDutyStatus returns the open interval, or nil when the driver is
// between intervals.
func (e *Engine) CurrentDutyStatus(ctx context.Context, driverID string) (*model.DutyStatusInterval, error) {
	return e.st.OpenInterval(ctx, driverID)
}

// DutyLogs lists a driver's intervals whose start falls in [start, end].
func (e *Engine) DutyLogs(ctx context.Context, driverID string, start, end time.Time) ([]model.DutyStatusInterval, error) {
	if _, err := e.st.GetDriver(ctx, driverID); err != nil {
		return nil, err
	}
	return e.st.ListIntervals(ctx, driverID, start, end)
}

func (e *Engine) appendStatusLog(ctx context.Context, iv model.DutyStatusInterval) {
	entry := model.LogEntry{
		ID:          uuid.NewString(),
		DriverID:    iv.DriverID,
		DeviceID:    iv.DeviceID,
		Timestamp:   iv.StartTime,
		EventType:   "duty_status_change",
		EventCode:   eventCodes[iv.Status],
		Description: fmt.Sprintf("duty status changed to %s", iv.Status),
		Location:    iv.Location,
		DataSource:  iv.DataSource,
	}
	if err := e.st.AppendLogEntry(ctx, entry); err != nil {
		e.log.Warn("log entry append failed", zap.String("driverId", iv.DriverID), zap.Error(err))
	}
}

// CheckCompliance evaluates the 11-hour, 70-hour and 30-minute-break rules
// over the trailing 7 days. Intervals are selected by start time; open
// intervals count at their live elapsed duration. The check is side-effect
// free and never creates violation records.
func (e *Engine) CheckCompliance(ctx context.Context, driverID string) (model.ComplianceReport, error) {
	if _, err := e.st.GetDriver(ctx, driverID); err != nil {
		return model.ComplianceReport{}, err
	}
	now := e.now().UTC()
	windowStart := now.AddDate(0, 0, -WindowDays)
	intervals, err := e.st.ListIntervals(ctx, driverID, windowStart, now)
	if err != nil {
		return model.ComplianceReport{}, err
	}

	// Every interval counts toward the cycle total. The per-status buckets
	// are exact: yard moves and personal conveyance land in the total only.
	var total, driving, onDuty, offDuty, sleeper float64
	hadBreak := false
	for _, iv := range intervals {
		h := iv.ElapsedHours(now)
		total += h
		switch iv.Status {
		case model.StatusDriving:
			driving += h
		case model.StatusOnDuty:
			onDuty += h
		case model.StatusOffDuty:
			offDuty += h
			if h >= MinBreakHours {
				hadBreak = true
			}
		case model.StatusSleeperBerth:
			sleeper += h
		}
	}

	rep := model.ComplianceReport{
		DriverID:          driverID,
		ReportDate:        now,
		Cycle:             "7_day",
		TotalHours:        round2(total),
		DrivingHours:      round2(driving),
		OnDutyHours:       round2(onDuty),
		OffDutyHours:      round2(offDuty),
		SleeperBerthHours: round2(sleeper),
		Issues:            []string{},
		Recommendations:   []string{},
	}

	if driving > MaxDrivingHours {
		rep.Issues = append(rep.Issues, "11-hour driving limit exceeded")
		rep.Recommendations = append(rep.Recommendations, "Driver must take 10 consecutive hours off duty")
	}
	if total > MaxCycleHours {
		rep.Issues = append(rep.Issues, "70-hour cycle limit exceeded")
		rep.Recommendations = append(rep.Recommendations, "Driver must take 34 consecutive hours off duty to restart the cycle")
	}
	if driving > BreakAfterDriving && !hadBreak {
		rep.Issues = append(rep.Issues, "30-minute break requirement not met")
		rep.Recommendations = append(rep.Recommendations, "Driver must take 30 consecutive minutes off duty")
	}
	rep.Compliant = len(rep.Issues) == 0

	active, err := e.st.ListViolations(ctx, driverID)
	if err != nil {
		return model.ComplianceReport{}, err
	}
	rep.Violations = []model.ComplianceViolation{}
	for _, v := range active {
		if v.Status == model.ViolationActive {
			rep.Violations = append(rep.Violations, v)
		}
	}
	return rep, nil
}

func round2(h float64) float64 { return math.Round(h*100) / 100 }
