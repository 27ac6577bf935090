package hos

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"fleetcomp/internal/model"
	"fleetcomp/internal/store"
)

var testNow = time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)

func newTestEngine(t *testing.T) (*Engine, *store.Memory) {
	t.Helper()
	m := store.NewMemory()
	e := NewEngine(m, nil)
	e.now = func() time.Time { return testNow }
	return e, m
}

func seedDriver(t *testing.T, e *Engine) model.Driver {
	t.Helper()
	d, err := e.RegisterDriver(context.Background(), model.Driver{LicenseNumber: "T1234567", LicenseState: "TX", LicenseClass: "A"})
	if err != nil {
		t.Fatalf("register driver: %v", err)
	}
	return d
}

// timeline seeds a sequence of closed intervals ending with one open interval
// when openStatus is non-empty.
func timeline(t *testing.T, m *store.Memory, driverID string, segments []struct {
	status model.DutyStatus
	start  time.Time
	hours  float64
}, openStatus model.DutyStatus, openStart time.Time) {
	t.Helper()
	ctx := context.Background()
	for i, s := range segments {
		iv := model.DutyStatusInterval{ID: driverID + "-seg-" + string(rune('a'+i)), DriverID: driverID, Status: s.status, StartTime: s.start}
		if _, err := m.StartInterval(ctx, iv); err != nil {
			t.Fatalf("seed interval %d: %v", i, err)
		}
		if _, err := m.CloseOpenInterval(ctx, driverID, s.start.Add(time.Duration(s.hours*float64(time.Hour))), model.GeoPoint{}); err != nil {
			t.Fatalf("close interval %d: %v", i, err)
		}
	}
	if openStatus != "" {
		iv := model.DutyStatusInterval{ID: driverID + "-open", DriverID: driverID, Status: openStatus, StartTime: openStart}
		if _, err := m.StartInterval(ctx, iv); err != nil {
			t.Fatalf("seed open interval: %v", err)
		}
	}
}

func TestStartDutyStatusClosesPrevious(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()
	d := seedDriver(t, e)

	e.now = func() time.Time { return testNow.Add(time.Hour) }
	first, closed, err := e.StartDutyStatus(ctx, d.ID, model.StatusOnDuty, model.GeoPoint{Lat: 30})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if closed != nil {
		t.Fatalf("no prior interval expected, got %+v", closed)
	}

	e.now = func() time.Time { return testNow.Add(3 * time.Hour) }
	_, closed, err = e.StartDutyStatus(ctx, d.ID, model.StatusDriving, model.GeoPoint{Lat: 31})
	if err != nil {
		t.Fatalf("second start: %v", err)
	}
	if closed == nil || closed.ID != first.ID {
		t.Fatalf("expected first interval closed, got %+v", closed)
	}
	if closed.DurationHours != 2 {
		t.Fatalf("duration = %v, want 2", closed.DurationHours)
	}

	cur, err := e.CurrentDutyStatus(ctx, d.ID)
	if err != nil || cur == nil || cur.Status != model.StatusDriving {
		t.Fatalf("current = %+v err = %v", cur, err)
	}

	entries, err := e.LogEntries(ctx, d.ID, time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("log entries: %v", err)
	}
	// ELD_LOGIN plus two duty status changes.
	if len(entries) != 3 {
		t.Fatalf("entries = %d, want 3", len(entries))
	}
	if entries[1].EventCode != "DS_ON" || entries[2].EventCode != "DS_D" {
		t.Fatalf("event codes = %s, %s", entries[1].EventCode, entries[2].EventCode)
	}
}

func TestStartDutyStatusValidation(t *testing.T) {
	e, _ := newTestEngine(t)
	d := seedDriver(t, e)
	if _, _, err := e.StartDutyStatus(context.Background(), d.ID, "napping", model.GeoPoint{}); !errors.Is(err, ErrInvalidDutyStatus) {
		t.Fatalf("expected ErrInvalidDutyStatus, got %v", err)
	}
	if _, _, err := e.StartDutyStatus(context.Background(), "ghost", model.StatusDriving, model.GeoPoint{}); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestEndDutyStatus(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()
	d := seedDriver(t, e)
	if _, err := e.EndDutyStatus(ctx, d.ID, model.GeoPoint{}); !errors.Is(err, store.ErrNoOpenInterval) {
		t.Fatalf("expected ErrNoOpenInterval, got %v", err)
	}
	if _, _, err := e.StartDutyStatus(ctx, d.ID, model.StatusDriving, model.GeoPoint{}); err != nil {
		t.Fatalf("start: %v", err)
	}
	e.now = func() time.Time { return testNow.Add(30 * time.Minute) }
	closed, err := e.EndDutyStatus(ctx, d.ID, model.GeoPoint{})
	if err != nil || closed.DurationHours != 0.5 {
		t.Fatalf("closed = %+v err = %v", closed, err)
	}
	cur, err := e.CurrentDutyStatus(ctx, d.ID)
	if err != nil || cur != nil {
		t.Fatalf("current = %+v err = %v", cur, err)
	}
}

func TestCheckComplianceCleanWeek(t *testing.T) {
	e, m := newTestEngine(t)
	d := seedDriver(t, e)
	timeline(t, m, d.ID, []struct {
		status model.DutyStatus
		start  time.Time
		hours  float64
	}{
		{model.StatusDriving, testNow.Add(-30 * time.Hour), 6},
		{model.StatusOffDuty, testNow.Add(-24 * time.Hour), 10},
		{model.StatusOnDuty, testNow.Add(-14 * time.Hour), 2},
	}, "", time.Time{})

	rep, err := e.CheckCompliance(context.Background(), d.ID)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !rep.Compliant || len(rep.Issues) != 0 {
		t.Fatalf("expected compliant, got %+v", rep.Issues)
	}
	if rep.DrivingHours != 6 || rep.OnDutyHours != 2 || rep.OffDutyHours != 10 {
		t.Fatalf("hours = %+v", rep)
	}
	if rep.TotalHours != 18 {
		t.Fatalf("total = %v, want all 18 logged hours", rep.TotalHours)
	}
	if rep.Cycle != "7_day" {
		t.Fatalf("cycle = %q", rep.Cycle)
	}
}

func TestCheckComplianceCycleCountsEveryStatus(t *testing.T) {
	e, m := newTestEngine(t)
	d := seedDriver(t, e)
	// 30 working hours plus 45 off duty: the cycle total counts all of it.
	timeline(t, m, d.ID, []struct {
		status model.DutyStatus
		start  time.Time
		hours  float64
	}{
		{model.StatusDriving, testNow.Add(-80 * time.Hour), 10},
		{model.StatusOnDuty, testNow.Add(-70 * time.Hour), 20},
		{model.StatusOffDuty, testNow.Add(-50 * time.Hour), 45},
	}, "", time.Time{})

	rep, err := e.CheckCompliance(context.Background(), d.ID)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if rep.TotalHours != 75 {
		t.Fatalf("total = %v, want 75", rep.TotalHours)
	}
	if rep.Compliant {
		t.Fatal("75 logged hours must trip the cycle limit")
	}
	if len(rep.Issues) != 1 || rep.Issues[0] != "70-hour cycle limit exceeded" {
		t.Fatalf("issues = %v", rep.Issues)
	}
}

func TestCheckComplianceBucketsAreExactStatuses(t *testing.T) {
	e, m := newTestEngine(t)
	d := seedDriver(t, e)
	timeline(t, m, d.ID, []struct {
		status model.DutyStatus
		start  time.Time
		hours  float64
	}{
		{model.StatusYardMove, testNow.Add(-10 * time.Hour), 2},
		{model.StatusPersonalConveyance, testNow.Add(-8 * time.Hour), 1},
		{model.StatusOnDuty, testNow.Add(-7 * time.Hour), 3},
	}, "", time.Time{})

	rep, err := e.CheckCompliance(context.Background(), d.ID)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	// Yard moves and personal conveyance count toward the total only.
	if rep.OnDutyHours != 3 || rep.OffDutyHours != 0 {
		t.Fatalf("buckets = %+v", rep)
	}
	if rep.TotalHours != 6 {
		t.Fatalf("total = %v, want 6", rep.TotalHours)
	}
}

func TestCheckComplianceElevenHourRule(t *testing.T) {
	e, m := newTestEngine(t)
	d := seedDriver(t, e)
	timeline(t, m, d.ID, []struct {
		status model.DutyStatus
		start  time.Time
		hours  float64
	}{
		{model.StatusDriving, testNow.Add(-14 * time.Hour), 12},
	}, model.StatusOffDuty, testNow.Add(-2*time.Hour))

	rep, err := e.CheckCompliance(context.Background(), d.ID)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if rep.Compliant {
		t.Fatal("12 driving hours must not be compliant")
	}
	if len(rep.Issues) != 1 || rep.Issues[0] != "11-hour driving limit exceeded" {
		t.Fatalf("issues = %v", rep.Issues)
	}
	if rep.Recommendations[0] != "Driver must take 10 consecutive hours off duty" {
		t.Fatalf("recommendations = %v", rep.Recommendations)
	}
}

func TestCheckComplianceSeventyHourRule(t *testing.T) {
	e, m := newTestEngine(t)
	d := seedDriver(t, e)
	var segs []struct {
		status model.DutyStatus
		start  time.Time
		hours  float64
	}
	// 6 days of 12 on-duty hours: 72 total, no single driving stretch.
	for i := 0; i < 6; i++ {
		segs = append(segs, struct {
			status model.DutyStatus
			start  time.Time
			hours  float64
		}{model.StatusOnDuty, testNow.Add(time.Duration(-24*(i+1)) * time.Hour), 12})
	}
	timeline(t, m, d.ID, segs, "", time.Time{})

	rep, err := e.CheckCompliance(context.Background(), d.ID)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if rep.Compliant {
		t.Fatal("72 on-duty hours must not be compliant")
	}
	if len(rep.Issues) != 1 || rep.Issues[0] != "70-hour cycle limit exceeded" {
		t.Fatalf("issues = %v", rep.Issues)
	}
}

func TestCheckComplianceBreakRule(t *testing.T) {
	e, m := newTestEngine(t)
	d := seedDriver(t, e)
	timeline(t, m, d.ID, []struct {
		status model.DutyStatus
		start  time.Time
		hours  float64
	}{
		{model.StatusDriving, testNow.Add(-10 * time.Hour), 9},
	}, "", time.Time{})

	rep, err := e.CheckCompliance(context.Background(), d.ID)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	var found bool
	for _, i := range rep.Issues {
		if i == "30-minute break requirement not met" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected break issue, got %v", rep.Issues)
	}

	// A half-hour off-duty interval satisfies the rule.
	e2, m2 := newTestEngine(t)
	d2 := seedDriver(t, e2)
	timeline(t, m2, d2.ID, []struct {
		status model.DutyStatus
		start  time.Time
		hours  float64
	}{
		{model.StatusDriving, testNow.Add(-12 * time.Hour), 5},
		{model.StatusOffDuty, testNow.Add(-7 * time.Hour), 0.5},
		{model.StatusDriving, testNow.Add(-6 * time.Hour), 4},
	}, "", time.Time{})
	rep, err = e2.CheckCompliance(context.Background(), d2.ID)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !rep.Compliant {
		t.Fatalf("9 driving hours with a break should pass, issues = %v", rep.Issues)
	}
}

func TestCheckComplianceCountsOpenIntervalLive(t *testing.T) {
	e, m := newTestEngine(t)
	d := seedDriver(t, e)
	// Open driving interval started 11.5 hours ago, never closed.
	timeline(t, m, d.ID, nil, model.StatusDriving, testNow.Add(-11*time.Hour-30*time.Minute))

	rep, err := e.CheckCompliance(context.Background(), d.ID)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if rep.DrivingHours != 11.5 {
		t.Fatalf("driving = %v, want live 11.5", rep.DrivingHours)
	}
	if rep.Compliant {
		t.Fatal("open interval must count against the 11-hour rule")
	}
}

func TestCheckComplianceWindowExcludesOldIntervals(t *testing.T) {
	e, m := newTestEngine(t)
	d := seedDriver(t, e)
	timeline(t, m, d.ID, []struct {
		status model.DutyStatus
		start  time.Time
		hours  float64
	}{
		// Started 8 days ago: outside the 7-day window even though huge.
		{model.StatusDriving, testNow.AddDate(0, 0, -8), 20},
		{model.StatusDriving, testNow.Add(-5 * time.Hour), 3},
	}, "", time.Time{})

	rep, err := e.CheckCompliance(context.Background(), d.ID)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if rep.DrivingHours != 3 {
		t.Fatalf("driving = %v, want only the in-window interval", rep.DrivingHours)
	}
	if !rep.Compliant {
		t.Fatalf("issues = %v", rep.Issues)
	}
}

func TestViolationLifecycle(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()
	d := seedDriver(t, e)

	v, err := e.RecordViolation(ctx, model.ComplianceViolation{
		DriverID: d.ID, Type: model.HOSHoursExceeded, Severity: model.HOSViolated, Description: "drove 12 hours",
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if v.Status != model.ViolationActive {
		t.Fatalf("status = %s", v.Status)
	}

	v, err = e.AcknowledgeViolation(ctx, v.ID)
	if err != nil || v.Status != model.ViolationAcknowledged {
		t.Fatalf("acknowledge = %+v err = %v", v, err)
	}
	if _, err := e.AcknowledgeViolation(ctx, v.ID); !errors.Is(err, ErrBadTransition) {
		t.Fatalf("double acknowledge: %v", err)
	}

	v, err = e.ResolveViolation(ctx, v.ID, "coached driver")
	if err != nil || v.Status != model.ViolationResolved {
		t.Fatalf("resolve = %+v err = %v", v, err)
	}
	if v.ResolutionDate == nil || v.ResolutionNotes != "coached driver" {
		t.Fatalf("resolution not stamped: %+v", v)
	}
	if _, err := e.ResolveViolation(ctx, v.ID, "again"); !errors.Is(err, ErrBadTransition) {
		t.Fatalf("resolve resolved: %v", err)
	}
}

func TestRecordInspectionOpensCriticalViolation(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()
	d := seedDriver(t, e)

	insp, v, err := e.RecordInspection(ctx, model.WeightInspection{
		DriverID:    d.ID,
		StationName: "I-35 NB Scale",
		StateCode:   "TX",
		GrossWeight: 86000,
		Violations:  []model.InspectionViolation{{Code: "392.2W", Description: "overweight gross", Severity: "critical", Fine: 2500}},
		Outcome:     "out_of_service",
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if insp.ID == "" {
		t.Fatal("inspection id not assigned")
	}
	if v == nil || v.Type != model.HOSWeightViolation || v.Severity != model.HOSCritical || v.Status != model.ViolationActive {
		t.Fatalf("violation = %+v", v)
	}

	// Clean inspection opens nothing.
	_, v, err = e.RecordInspection(ctx, model.WeightInspection{DriverID: d.ID, StationName: "US-290 Scale", StateCode: "TX"})
	if err != nil || v != nil {
		t.Fatalf("clean inspection: v = %+v err = %v", v, err)
	}
}

func TestComplianceSummaryRiskLevels(t *testing.T) {
	e, m := newTestEngine(t)
	ctx := context.Background()
	d := seedDriver(t, e)

	s, err := e.ComplianceSummary(ctx, d.ID, 30)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if s.RiskLevel != "LOW" || s.ComplianceRate != 100 {
		t.Fatalf("empty summary = %+v", s)
	}

	for i := 0; i < 4; i++ {
		l := model.WeightComplianceLog{ID: string(rune('a' + i)), DriverID: d.ID, Timestamp: testNow.AddDate(0, 0, -i), IsCompliant: true}
		if err := m.AppendWeightLog(ctx, l); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	if err := m.AppendWeightLog(ctx, model.WeightComplianceLog{
		ID: "bad", DriverID: d.ID, Timestamp: testNow.AddDate(0, 0, -1),
		Violations: []model.WeightViolation{{Type: model.ViolationGrossWeight, Severity: model.SeverityCritical}},
	}); err != nil {
		t.Fatalf("append: %v", err)
	}

	s, err = e.ComplianceSummary(ctx, d.ID, 30)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if s.TotalLoads != 5 || s.CompliantLoads != 4 {
		t.Fatalf("counts = %+v", s)
	}
	if s.CriticalViolations != 1 || s.RiskLevel != "HIGH" {
		t.Fatalf("risk = %+v", s)
	}
}

func TestComplianceSummaryMediumNeedsSixViolations(t *testing.T) {
	e, m := newTestEngine(t)
	ctx := context.Background()
	d := seedDriver(t, e)

	lowViolations := func(n int) []model.WeightViolation {
		out := make([]model.WeightViolation, n)
		for i := range out {
			out[i] = model.WeightViolation{Type: model.ViolationGrossWeight, Severity: model.SeverityLow}
		}
		return out
	}
	for i := 0; i < 24; i++ {
		l := model.WeightComplianceLog{ID: fmt.Sprintf("ok-%d", i), DriverID: d.ID, Timestamp: testNow.Add(-time.Duration(i) * time.Hour), IsCompliant: true}
		if err := m.AppendWeightLog(ctx, l); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	if err := m.AppendWeightLog(ctx, model.WeightComplianceLog{
		ID: "five", DriverID: d.ID, Timestamp: testNow.Add(-30 * time.Hour), Violations: lowViolations(5),
	}); err != nil {
		t.Fatalf("append: %v", err)
	}

	// 24/25 compliant is a 96% rate; five minor violations stay LOW.
	s, err := e.ComplianceSummary(ctx, d.ID, 30)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if s.ViolationsCount != 5 || s.RiskLevel != "LOW" {
		t.Fatalf("summary = %+v", s)
	}

	e2, m2 := newTestEngine(t)
	d2 := seedDriver(t, e2)
	for i := 0; i < 24; i++ {
		l := model.WeightComplianceLog{ID: fmt.Sprintf("ok-%d", i), DriverID: d2.ID, Timestamp: testNow.Add(-time.Duration(i) * time.Hour), IsCompliant: true}
		if err := m2.AppendWeightLog(ctx, l); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	if err := m2.AppendWeightLog(ctx, model.WeightComplianceLog{
		ID: "six", DriverID: d2.ID, Timestamp: testNow.Add(-30 * time.Hour), Violations: lowViolations(6),
	}); err != nil {
		t.Fatalf("append: %v", err)
	}
	s, err = e2.ComplianceSummary(ctx, d2.ID, 30)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if s.ViolationsCount != 6 || s.RiskLevel != "MEDIUM" {
		t.Fatalf("summary = %+v", s)
	}
}

func TestComplianceSummarySumsPermitCounts(t *testing.T) {
	e, m := newTestEngine(t)
	ctx := context.Background()
	d := seedDriver(t, e)
	if err := m.AppendWeightLog(ctx, model.WeightComplianceLog{
		ID: "p1", DriverID: d.ID, Timestamp: testNow.Add(-time.Hour), IsCompliant: true,
		RequiredPermits: []string{"TX overweight permit", "OK overweight permit"},
	}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := m.AppendWeightLog(ctx, model.WeightComplianceLog{
		ID: "p2", DriverID: d.ID, Timestamp: testNow.Add(-2 * time.Hour), IsCompliant: true,
		RequiredPermits: []string{"MI overweight permit"},
	}); err != nil {
		t.Fatalf("append: %v", err)
	}

	s, err := e.ComplianceSummary(ctx, d.ID, 30)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if s.PermitsRequired != 3 {
		t.Fatalf("permits = %d, want the per-log counts summed", s.PermitsRequired)
	}
}

func TestExportWeightLogsCSV(t *testing.T) {
	e, m := newTestEngine(t)
	ctx := context.Background()
	d := seedDriver(t, e)
	if err := m.AppendWeightLog(ctx, model.WeightComplianceLog{
		ID: "w1", DriverID: d.ID, LoadID: "load-9", Timestamp: testNow.Add(-time.Hour),
		ConfigurationName: "5-Axle Tractor-Semitrailer", RouteStates: []string{"TX", "OK"},
		CargoWeight: 34000, TotalWeight: 63000, IsCompliant: true, SafetyRating: model.RatingSafe,
		RequiredPermits: []string{"TX overweight permit", "OK overweight permit"},
	}); err != nil {
		t.Fatalf("append: %v", err)
	}

	csvBytes, sum, err := e.ExportWeightLogsCSV(ctx, d.ID, time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if sum.TotalLoads != 1 || sum.CompliantLoads != 1 {
		t.Fatalf("summary = %+v", sum)
	}
	if sum.PermitsRequired != 2 {
		t.Fatalf("permits = %d, want both counted", sum.PermitsRequired)
	}
	lines := strings.Split(strings.TrimSpace(string(csvBytes)), "\n")
	if len(lines) != 2 {
		t.Fatalf("csv lines = %d", len(lines))
	}
	if !strings.Contains(lines[1], "load-9") || !strings.Contains(lines[1], "TX|OK") {
		t.Fatalf("csv row = %s", lines[1])
	}

	// Exported logs carry the export timestamp afterwards.
	logs, err := m.ListWeightLogs(ctx, d.ID, time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(logs) != 1 || logs[0].ExportedAt == nil || !logs[0].ExportedAt.Equal(testNow) {
		t.Fatalf("exportedAt not stamped: %+v", logs[0].ExportedAt)
	}
}

func TestExportBundle(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()
	dev, err := e.RegisterDevice(ctx, model.Device{SerialNumber: "SN-100", Manufacturer: "Geotab"})
	if err != nil {
		t.Fatalf("device: %v", err)
	}
	d := seedDriver(t, e)
	if _, err := e.AssignDeviceToDriver(ctx, d.ID, dev.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if _, _, err := e.StartDutyStatus(ctx, d.ID, model.StatusOnDuty, model.GeoPoint{}); err != nil {
		t.Fatalf("start: %v", err)
	}

	out, err := e.Export(ctx, d.ID, testNow.AddDate(0, 0, -7), testNow.Add(time.Hour))
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if out.Device == nil || out.Device.ID != dev.ID {
		t.Fatalf("device = %+v", out.Device)
	}
	if len(out.DutyLogs) != 1 || len(out.LogEntries) == 0 {
		t.Fatalf("logs = %d entries = %d", len(out.DutyLogs), len(out.LogEntries))
	}
	if out.Compliance.DriverID != d.ID {
		t.Fatalf("compliance = %+v", out.Compliance)
	}
}
