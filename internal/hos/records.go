package hos

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"fleetcomp/internal/model"
)

// LogWeightCompliance appends a weight verdict to the driver's duty record.
func (e *Engine) LogWeightCompliance(ctx context.Context, driverID string, a *model.LoadWeightAssessment, configID, configName string, loc model.GeoPoint) (model.WeightComplianceLog, error) {
	drv, err := e.st.GetDriver(ctx, driverID)
	if err != nil {
		return model.WeightComplianceLog{}, err
	}
	l := model.WeightComplianceLog{
		ID:                uuid.NewString(),
		DriverID:          driverID,
		DeviceID:          drv.DeviceID,
		LoadID:            a.LoadID,
		Timestamp:         e.now().UTC(),
		CargoWeight:       a.CargoWeight,
		TotalWeight:       a.Distribution.TotalWeight,
		ConfigurationID:   configID,
		ConfigurationName: configName,
		RouteStates:       a.RouteStates,
		IsCompliant:       a.Compliance.IsCompliant,
		SafetyRating:      a.Compliance.SafetyRating,
		Violations:        a.Compliance.Violations,
		RequiredPermits:   a.Compliance.RequiredPermits,
		Recommendations:   a.Compliance.Recommendations,
		Location:          loc,
		DataSource:        model.SourceAutomatic,
	}
	if err := e.st.AppendWeightLog(ctx, l); err != nil {
		return model.WeightComplianceLog{}, err
	}
	e.log.Info("weight compliance logged",
		zap.String("driverId", driverID),
		zap.String("loadId", a.LoadID),
		zap.String("rating", string(l.SafetyRating)))
	return l, nil
}

// WeightLogs lists a driver's weight compliance logs in [start, end].
func (e *Engine) WeightLogs(ctx context.Context, driverID string, start, end time.Time) ([]model.WeightComplianceLog, error) {
	if _, err := e.st.GetDriver(ctx, driverID); err != nil {
		return nil, err
	}
	return e.st.ListWeightLogs(ctx, driverID, start, end)
}

// ExportWeightLogsCSV renders a driver's weight logs for a date range as CSV
// plus an aggregate summary.
func (e *Engine) ExportWeightLogsCSV(ctx context.Context, driverID string, start, end time.Time) ([]byte, model.WeightLogSummary, error) {
	logs, err := e.WeightLogs(ctx, driverID, start, end)
	if err != nil {
		return nil, model.WeightLogSummary{}, err
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	header := []string{"timestamp", "loadId", "configuration", "routeStates", "cargoWeight", "totalWeight", "compliant", "safetyRating", "violations", "permits"}
	if err := w.Write(header); err != nil {
		return nil, model.WeightLogSummary{}, err
	}
	sum := model.WeightLogSummary{}
	for _, l := range logs {
		sum.TotalLoads++
		if l.IsCompliant {
			sum.CompliantLoads++
		}
		sum.ViolationsCount += len(l.Violations)
		sum.PermitsRequired += len(l.RequiredPermits)
		descs := make([]string, 0, len(l.Violations))
		for _, v := range l.Violations {
			descs = append(descs, fmt.Sprintf("%s(%s)", v.Type, v.Severity))
		}
		rec := []string{
			l.Timestamp.UTC().Format(time.RFC3339),
			l.LoadID,
			l.ConfigurationName,
			strings.Join(l.RouteStates, "|"),
			strconv.FormatFloat(l.CargoWeight, 'f', 0, 64),
			strconv.FormatFloat(l.TotalWeight, 'f', 0, 64),
			strconv.FormatBool(l.IsCompliant),
			string(l.SafetyRating),
			strings.Join(descs, "|"),
			strings.Join(l.RequiredPermits, "|"),
		}
		if err := w.Write(rec); err != nil {
			return nil, model.WeightLogSummary{}, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, model.WeightLogSummary{}, err
	}
	if len(logs) > 0 {
		ids := make([]string, len(logs))
		for i, l := range logs {
			ids[i] = l.ID
		}
		if err := e.st.MarkWeightLogsExported(ctx, driverID, ids, e.now().UTC()); err != nil {
			e.log.Warn("export stamp failed", zap.String("driverId", driverID), zap.Error(err))
		}
	}
	return buf.Bytes(), sum, nil
}

// ComplianceSummary aggregates a driver's weight compliance posture over the
// trailing N days (default 30).
func (e *Engine) ComplianceSummary(ctx context.Context, driverID string, days int) (model.ComplianceSummary, error) {
	if days <= 0 {
		days = 30
	}
	now := e.now().UTC()
	since := now.AddDate(0, 0, -days)
	logs, err := e.WeightLogs(ctx, driverID, since, now)
	if err != nil {
		return model.ComplianceSummary{}, err
	}
	inspections, err := e.st.ListInspections(ctx, driverID)
	if err != nil {
		return model.ComplianceSummary{}, err
	}

	s := model.ComplianceSummary{DriverID: driverID, PeriodDays: days, ComplianceRate: 100}
	for _, l := range logs {
		s.TotalLoads++
		if l.IsCompliant {
			s.CompliantLoads++
		}
		s.ViolationsCount += len(l.Violations)
		for _, v := range l.Violations {
			if v.Severity == model.SeverityCritical {
				s.CriticalViolations++
			}
		}
		s.PermitsRequired += len(l.RequiredPermits)
	}
	if s.TotalLoads > 0 {
		s.ComplianceRate = round2(float64(s.CompliantLoads) / float64(s.TotalLoads) * 100)
	}
	for _, insp := range inspections {
		if insp.InspectionDate.Before(since) {
			continue
		}
		s.Inspections++
		d := insp.InspectionDate
		if s.LastInspection == nil || d.After(*s.LastInspection) {
			t := d
			s.LastInspection = &t
		}
	}
	switch {
	case s.CriticalViolations > 0 || s.ComplianceRate < 80:
		s.RiskLevel = "HIGH"
	case s.ViolationsCount > 5 || s.ComplianceRate < 95:
		s.RiskLevel = "MEDIUM"
	default:
		s.RiskLevel = "LOW"
	}
	return s, nil
}

// Export assembles the FMCSA-style data bundle for a driver and date range.
func (e *Engine) Export(ctx context.Context, driverID string, start, end time.Time) (model.ELDExport, error) {
	drv, err := e.st.GetDriver(ctx, driverID)
	if err != nil {
		return model.ELDExport{}, err
	}
	out := model.ELDExport{
		Driver:     drv,
		ExportedAt: e.now().UTC(),
		RangeStart: start,
		RangeEnd:   end,
	}
	if drv.DeviceID != "" {
		dev, err := e.st.GetDevice(ctx, drv.DeviceID)
		if err == nil {
			out.Device = &dev
		}
	}
	if out.DutyLogs, err = e.st.ListIntervals(ctx, driverID, start, end); err != nil {
		return model.ELDExport{}, err
	}
	if out.LogEntries, err = e.st.ListLogEntries(ctx, driverID, start, end); err != nil {
		return model.ELDExport{}, err
	}
	if out.Violations, err = e.st.ListViolations(ctx, driverID); err != nil {
		return model.ELDExport{}, err
	}
	if out.Compliance, err = e.CheckCompliance(ctx, driverID); err != nil {
		return model.ELDExport{}, err
	}
	return out, nil
}
