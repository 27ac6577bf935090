package api

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"fleetcomp/internal/buildinfo"
	"fleetcomp/internal/model"
	"fleetcomp/internal/webhooks"
)

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": buildinfo.Version})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if err := s.st.Ping(r.Context()); err != nil {
		writeProblem(w, http.StatusServiceUnavailable, "not ready", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleListConfigurations(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.cat.Configurations())
}

func (s *Server) handleGetConfiguration(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.cat.Configuration(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) handleListStates(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.cat.States())
}

type assessRequest struct {
	LoadID        string   `json:"loadId"`
	CargoWeight   float64  `json:"cargoWeight"`
	States        []string `json:"states"`
	TractorWeight float64  `json:"tractorWeight"`
	TrailerWeight float64  `json:"trailerWeight"`
}

func (s *Server) handleAssessLoad(w http.ResponseWriter, r *http.Request) {
	var req assessRequest
	if err := decode(r, &req); err != nil {
		writeProblem(w, http.StatusBadRequest, "invalid body", err.Error())
		return
	}
	a, err := s.weights.AssessLoadWeight(req.LoadID, req.CargoWeight, req.States, req.TractorWeight, req.TrailerWeight)
	if err != nil {
		writeError(w, err)
		return
	}
	if s.met != nil {
		s.met.WeightEvaluations.WithLabelValues(string(a.Compliance.SafetyRating)).Inc()
	}
	writeJSON(w, http.StatusOK, a)
}

type validateRequest struct {
	LoadWeight      float64  `json:"loadWeight"`
	ConfigurationID string   `json:"configurationId"`
	States          []string `json:"states"`
}

func (s *Server) handleValidateLoad(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := decode(r, &req); err != nil {
		writeProblem(w, http.StatusBadRequest, "invalid body", err.Error())
		return
	}
	res, err := s.weights.ValidateLoadAssignment(req.LoadWeight, req.ConfigurationID, req.States)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleAssignment(w http.ResponseWriter, r *http.Request) {
	var load model.LoadAssignment
	if err := decode(r, &load); err != nil {
		writeProblem(w, http.StatusBadRequest, "invalid body", err.Error())
		return
	}
	res, err := s.gate.IntegrateLoadAssignment(r.Context(), load)
	if err != nil {
		writeError(w, err)
		return
	}
	outcome := "allowed"
	if !res.Success {
		outcome = "blocked"
	}
	if s.met != nil {
		s.met.AssignmentsTotal.WithLabelValues(outcome).Inc()
		if res.WeightCompliance != nil {
			s.met.WeightEvaluations.WithLabelValues(string(res.WeightCompliance.Compliance.SafetyRating)).Inc()
		}
	}
	if s.hooks != nil {
		evType := webhooks.EventAssignmentCompleted
		if !res.Success {
			evType = webhooks.EventAssignmentBlocked
		}
		s.hooks.Publish(r.Context(), evType, res)
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleCreateDevice(w http.ResponseWriter, r *http.Request) {
	var d model.Device
	if err := decode(r, &d); err != nil {
		writeProblem(w, http.StatusBadRequest, "invalid body", err.Error())
		return
	}
	dev, err := s.hos.RegisterDevice(r.Context(), d)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, dev)
}

func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	devs, err := s.hos.Devices(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, devs)
}

func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	dev, err := s.hos.Device(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dev)
}

func (s *Server) handleCreateDriver(w http.ResponseWriter, r *http.Request) {
	var d model.Driver
	if err := decode(r, &d); err != nil {
		writeProblem(w, http.StatusBadRequest, "invalid body", err.Error())
		return
	}
	drv, err := s.hos.RegisterDriver(r.Context(), d)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, drv)
}

func (s *Server) handleListDrivers(w http.ResponseWriter, r *http.Request) {
	drvs, err := s.hos.Drivers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, drvs)
}

func (s *Server) handleGetDriver(w http.ResponseWriter, r *http.Request) {
	drv, err := s.hos.Driver(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, drv)
}

type assignDeviceRequest struct {
	DeviceID string `json:"deviceId"`
}

func (s *Server) handleAssignDevice(w http.ResponseWriter, r *http.Request) {
	var req assignDeviceRequest
	if err := decode(r, &req); err != nil {
		writeProblem(w, http.StatusBadRequest, "invalid body", err.Error())
		return
	}
	drv, err := s.hos.AssignDeviceToDriver(r.Context(), r.PathValue("id"), req.DeviceID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, drv)
}

type dutyStatusRequest struct {
	Status   model.DutyStatus `json:"status"`
	Location model.GeoPoint   `json:"location"`
}

type dutyStatusResponse struct {
	Current model.DutyStatusInterval  `json:"current"`
	Closed  *model.DutyStatusInterval `json:"closed,omitempty"`
}

func (s *Server) handleStartDutyStatus(w http.ResponseWriter, r *http.Request) {
	var req dutyStatusRequest
	if err := decode(r, &req); err != nil {
		writeProblem(w, http.StatusBadRequest, "invalid body", err.Error())
		return
	}
	driverID := r.PathValue("id")
	iv, closed, err := s.hos.StartDutyStatus(r.Context(), driverID, req.Status, req.Location)
	if err != nil {
		writeError(w, err)
		return
	}
	if s.met != nil {
		s.met.DutyChanges.WithLabelValues(string(req.Status)).Inc()
	}
	s.publishDutyEvent(r, driverID, dutyStatusResponse{Current: iv, Closed: closed})
	writeJSON(w, http.StatusCreated, dutyStatusResponse{Current: iv, Closed: closed})
}

func (s *Server) handleEndDutyStatus(w http.ResponseWriter, r *http.Request) {
	var req dutyStatusRequest
	if err := decode(r, &req); err != nil {
		writeProblem(w, http.StatusBadRequest, "invalid body", err.Error())
		return
	}
	driverID := r.PathValue("id")
	closed, err := s.hos.EndDutyStatus(r.Context(), driverID, req.Location)
	if err != nil {
		writeError(w, err)
		return
	}
	s.publishDutyEvent(r, driverID, dutyStatusResponse{Closed: closed})
	writeJSON(w, http.StatusOK, closed)
}

func (s *Server) publishDutyEvent(r *http.Request, driverID string, payload any) {
	ev := Event{Type: webhooks.EventDutyStatusChanged, DriverID: driverID, At: time.Now().UTC(), Payload: payload}
	if s.broker != nil {
		if err := s.broker.Publish(r.Context(), ev); err != nil {
			s.log.Warn("duty event publish failed")
		}
	}
	if s.hooks != nil {
		s.hooks.Publish(r.Context(), webhooks.EventDutyStatusChanged, ev)
	}
}

type currentStatusResponse struct {
	Active   bool                      `json:"active"`
	Interval *model.DutyStatusInterval `json:"interval,omitempty"`
}

func (s *Server) handleCurrentDutyStatus(w http.ResponseWriter, r *http.Request) {
	iv, err := s.hos.CurrentDutyStatus(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, currentStatusResponse{Active: iv != nil, Interval: iv})
}

func (s *Server) handleDutyLogs(w http.ResponseWriter, r *http.Request) {
	start, end, err := timeRange(r.URL.Query())
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "invalid time range", err.Error())
		return
	}
	logs, err := s.hos.DutyLogs(r.Context(), r.PathValue("id"), start, end)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

func (s *Server) handleCheckCompliance(w http.ResponseWriter, r *http.Request) {
	rep, err := s.hos.CheckCompliance(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if s.met != nil {
		s.met.HOSChecks.Inc()
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleComplianceSummary(w http.ResponseWriter, r *http.Request) {
	days := 30
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeProblem(w, http.StatusBadRequest, "invalid days", "days must be a positive integer")
			return
		}
		days = n
	}
	sum, err := s.hos.ComplianceSummary(r.Context(), r.PathValue("id"), days)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (s *Server) handleWeightLogs(w http.ResponseWriter, r *http.Request) {
	start, end, err := timeRange(r.URL.Query())
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "invalid time range", err.Error())
		return
	}
	logs, err := s.hos.WeightLogs(r.Context(), r.PathValue("id"), start, end)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

type weightLogExportResponse struct {
	Summary model.WeightLogSummary `json:"summary"`
	CSV     string                 `json:"csv"`
}

func (s *Server) handleWeightLogsExport(w http.ResponseWriter, r *http.Request) {
	start, end, err := timeRange(r.URL.Query())
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "invalid time range", err.Error())
		return
	}
	csvBytes, sum, err := s.hos.ExportWeightLogsCSV(r.Context(), r.PathValue("id"), start, end)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, weightLogExportResponse{Summary: sum, CSV: string(csvBytes)})
}

func (s *Server) handleListViolations(w http.ResponseWriter, r *http.Request) {
	vs, err := s.hos.Violations(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, vs)
}

func (s *Server) handleAcknowledgeViolation(w http.ResponseWriter, r *http.Request) {
	v, err := s.hos.AcknowledgeViolation(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

type resolveRequest struct {
	Notes string `json:"notes"`
}

func (s *Server) handleResolveViolation(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := decode(r, &req); err != nil {
		writeProblem(w, http.StatusBadRequest, "invalid body", err.Error())
		return
	}
	v, err := s.hos.ResolveViolation(r.Context(), r.PathValue("id"), req.Notes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

type inspectionResponse struct {
	Inspection model.WeightInspection     `json:"inspection"`
	Violation  *model.ComplianceViolation `json:"violation,omitempty"`
}

func (s *Server) handleCreateInspection(w http.ResponseWriter, r *http.Request) {
	var insp model.WeightInspection
	if err := decode(r, &insp); err != nil {
		writeProblem(w, http.StatusBadRequest, "invalid body", err.Error())
		return
	}
	created, v, err := s.hos.RecordInspection(r.Context(), insp)
	if err != nil {
		writeError(w, err)
		return
	}
	if v != nil {
		if s.met != nil {
			s.met.ViolationsRecorded.WithLabelValues(string(v.Type), string(v.Severity)).Inc()
		}
		if s.hooks != nil {
			s.hooks.Publish(r.Context(), webhooks.EventViolationRecorded, v)
		}
	}
	writeJSON(w, http.StatusCreated, inspectionResponse{Inspection: created, Violation: v})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	start, end, err := timeRange(r.URL.Query())
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "invalid time range", err.Error())
		return
	}
	out, err := s.hos.Export(r.Context(), r.PathValue("id"), start, end)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleListSubscriptions(w http.ResponseWriter, r *http.Request) {
	subs, err := s.st.ListSubscriptions(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	// Secrets never leave the service.
	for i := range subs {
		subs[i].Secret = ""
	}
	writeJSON(w, http.StatusOK, subs)
}

func (s *Server) handleCreateSubscription(w http.ResponseWriter, r *http.Request) {
	var req model.SubscriptionRequest
	if err := decode(r, &req); err != nil {
		writeProblem(w, http.StatusBadRequest, "invalid body", err.Error())
		return
	}
	u, err := url.Parse(req.URL)
	if err != nil || !strings.HasPrefix(u.Scheme, "http") {
		writeProblem(w, http.StatusBadRequest, "invalid url", "subscription url must be http(s)")
		return
	}
	sub, err := s.st.CreateSubscription(r.Context(), model.Subscription{
		ID:     uuid.NewString(),
		URL:    req.URL,
		Events: req.Events,
		Secret: req.Secret,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	sub.Secret = ""
	writeJSON(w, http.StatusCreated, sub)
}

func (s *Server) handleDeleteSubscription(w http.ResponseWriter, r *http.Request) {
	if err := s.st.DeleteSubscription(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func timeRange(q url.Values) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error
	if v := q.Get("start"); v != "" {
		if start, err = time.Parse(time.RFC3339, v); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if v := q.Get("end"); v != "" {
		if end, err = time.Parse(time.RFC3339, v); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	return start, end, nil
}
