package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"fleetcomp/internal/assignment"
	"fleetcomp/internal/catalog"
	"fleetcomp/internal/hos"
	"fleetcomp/internal/model"
	"fleetcomp/internal/store"
	"fleetcomp/internal/weight"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	cat, err := catalog.Load()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	st := store.NewMemory()
	we := weight.NewEngine(cat, nil)
	he := hos.NewEngine(st, nil)
	s := NewServer(Deps{
		Store:   st,
		Catalog: cat,
		Weights: we,
		HOS:     he,
		Gate:    assignment.NewGate(we, he, cat, nil),
		Broker:  NewMemoryBroker(),
	})
	srv := httptest.NewServer(s.Routes())
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, body any, out any) *http.Response {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, rd)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode: %v", err)
		}
	}
	return resp
}

func createDriver(t *testing.T, base string) model.Driver {
	t.Helper()
	var d model.Driver
	resp := doJSON(t, http.MethodPost, base+"/v1/drivers", model.Driver{LicenseNumber: "X1111111", LicenseState: "TX"}, &d)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create driver status = %d", resp.StatusCode)
	}
	return d
}

func TestHealthAndCatalogEndpoints(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, http.MethodGet, srv.URL+"/healthz", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz = %d", resp.StatusCode)
	}

	var configs []model.TruckAxleConfiguration
	resp = doJSON(t, http.MethodGet, srv.URL+"/v1/configurations", nil, &configs)
	if resp.StatusCode != http.StatusOK || len(configs) < 5 {
		t.Fatalf("configurations = %d, n = %d", resp.StatusCode, len(configs))
	}

	resp = doJSON(t, http.MethodGet, srv.URL+"/v1/configurations/hovercraft", nil, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown config = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/problem+json" {
		t.Fatalf("content type = %s", ct)
	}

	var states []model.StateWeightLimits
	resp = doJSON(t, http.MethodGet, srv.URL+"/v1/states", nil, &states)
	if resp.StatusCode != http.StatusOK || len(states) == 0 {
		t.Fatalf("states = %d, n = %d", resp.StatusCode, len(states))
	}
}

func TestAssessLoadEndpoint(t *testing.T) {
	srv := newTestServer(t)

	var a model.LoadWeightAssessment
	resp := doJSON(t, http.MethodPost, srv.URL+"/v1/loads/assess", map[string]any{
		"loadId": "l1", "cargoWeight": 34000, "states": []string{"FEDERAL"},
	}, &a)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("assess = %d", resp.StatusCode)
	}
	if a.Compliance.SafetyRating != model.RatingSafe {
		t.Fatalf("rating = %s", a.Compliance.SafetyRating)
	}

	resp = doJSON(t, http.MethodPost, srv.URL+"/v1/loads/assess", map[string]any{
		"loadId": "l2", "cargoWeight": -1, "states": []string{"TX"},
	}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("invalid cargo = %d", resp.StatusCode)
	}
}

func TestValidateLoadEndpoint(t *testing.T) {
	srv := newTestServer(t)
	var res model.ValidationResult
	resp := doJSON(t, http.MethodPost, srv.URL+"/v1/loads/validate", map[string]any{
		"loadWeight": 34000, "configurationId": catalog.ReferenceConfigurationID, "states": []string{"CA"},
	}, &res)
	if resp.StatusCode != http.StatusOK || !res.CanAccept {
		t.Fatalf("validate = %d, %+v", resp.StatusCode, res)
	}
}

func TestDutyStatusFlow(t *testing.T) {
	srv := newTestServer(t)
	d := createDriver(t, srv.URL)

	var started dutyStatusResponse
	resp := doJSON(t, http.MethodPost, srv.URL+"/v1/drivers/"+d.ID+"/duty-status", map[string]any{
		"status": "driving", "location": map[string]float64{"lat": 30.2, "lng": -97.7},
	}, &started)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("start = %d", resp.StatusCode)
	}
	if started.Current.Status != model.StatusDriving || started.Closed != nil {
		t.Fatalf("started = %+v", started)
	}

	var cur currentStatusResponse
	doJSON(t, http.MethodGet, srv.URL+"/v1/drivers/"+d.ID+"/duty-status", nil, &cur)
	if !cur.Active || cur.Interval.Status != model.StatusDriving {
		t.Fatalf("current = %+v", cur)
	}

	resp = doJSON(t, http.MethodPost, srv.URL+"/v1/drivers/"+d.ID+"/duty-status/end", map[string]any{}, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("end = %d", resp.StatusCode)
	}
	resp = doJSON(t, http.MethodPost, srv.URL+"/v1/drivers/"+d.ID+"/duty-status/end", map[string]any{}, nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("double end = %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodPost, srv.URL+"/v1/drivers/"+d.ID+"/duty-status", map[string]any{"status": "napping"}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad status = %d", resp.StatusCode)
	}

	var rep model.ComplianceReport
	resp = doJSON(t, http.MethodGet, srv.URL+"/v1/drivers/"+d.ID+"/compliance", nil, &rep)
	if resp.StatusCode != http.StatusOK || !rep.Compliant {
		t.Fatalf("compliance = %d, %+v", resp.StatusCode, rep)
	}
}

func TestAssignmentEndpoint(t *testing.T) {
	srv := newTestServer(t)
	d := createDriver(t, srv.URL)

	var res model.AssignmentResult
	resp := doJSON(t, http.MethodPost, srv.URL+"/v1/assignments", model.LoadAssignment{
		LoadID: "l1", DriverID: d.ID, CargoWeight: 34000,
		ConfigurationID: catalog.ReferenceConfigurationID, RouteStates: []string{"CA"},
	}, &res)
	if resp.StatusCode != http.StatusOK || !res.Success {
		t.Fatalf("assignment = %d, %+v", resp.StatusCode, res)
	}

	resp = doJSON(t, http.MethodPost, srv.URL+"/v1/assignments", model.LoadAssignment{
		LoadID: "l2", DriverID: d.ID, CargoWeight: 52000, RouteStates: []string{"TX"},
	}, &res)
	if resp.StatusCode != http.StatusOK || res.Success {
		t.Fatalf("blocked assignment = %d, %+v", resp.StatusCode, res)
	}
	if !strings.Contains(res.Error, "blocked") {
		t.Fatalf("error = %q", res.Error)
	}

	resp = doJSON(t, http.MethodPost, srv.URL+"/v1/assignments", model.LoadAssignment{
		LoadID: "l3", DriverID: "ghost", CargoWeight: 1000, RouteStates: []string{"CA"},
	}, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown driver = %d", resp.StatusCode)
	}
}

func TestInspectionAndViolationLifecycle(t *testing.T) {
	srv := newTestServer(t)
	d := createDriver(t, srv.URL)

	var created inspectionResponse
	resp := doJSON(t, http.MethodPost, srv.URL+"/v1/inspections", model.WeightInspection{
		DriverID:    d.ID,
		StationName: "I-10 EB Scale",
		StateCode:   "AZ",
		GrossWeight: 91000,
		Violations:  []model.InspectionViolation{{Code: "OW-1", Description: "gross overweight", Severity: "critical"}},
	}, &created)
	if resp.StatusCode != http.StatusCreated || created.Violation == nil {
		t.Fatalf("inspection = %d, %+v", resp.StatusCode, created)
	}

	vid := created.Violation.ID
	var v model.ComplianceViolation
	resp = doJSON(t, http.MethodPost, srv.URL+"/v1/violations/"+vid+"/acknowledge", nil, &v)
	if resp.StatusCode != http.StatusOK || v.Status != model.ViolationAcknowledged {
		t.Fatalf("acknowledge = %d, %+v", resp.StatusCode, v)
	}
	resp = doJSON(t, http.MethodPost, srv.URL+"/v1/violations/"+vid+"/acknowledge", nil, nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("double acknowledge = %d", resp.StatusCode)
	}
	resp = doJSON(t, http.MethodPost, srv.URL+"/v1/violations/"+vid+"/resolve", map[string]string{"notes": "permit obtained"}, &v)
	if resp.StatusCode != http.StatusOK || v.Status != model.ViolationResolved {
		t.Fatalf("resolve = %d, %+v", resp.StatusCode, v)
	}

	var list []model.ComplianceViolation
	doJSON(t, http.MethodGet, srv.URL+"/v1/drivers/"+d.ID+"/violations", nil, &list)
	if len(list) != 1 {
		t.Fatalf("violations = %d", len(list))
	}
}

func TestSubscriptionEndpoints(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/v1/subscriptions", model.SubscriptionRequest{URL: "not a url"}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad url = %d", resp.StatusCode)
	}

	var sub model.Subscription
	resp = doJSON(t, http.MethodPost, srv.URL+"/v1/subscriptions", model.SubscriptionRequest{
		URL: "https://hooks.example.com/compliance", Events: []string{"violation.recorded"}, Secret: "hush",
	}, &sub)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create = %d", resp.StatusCode)
	}
	if sub.Secret != "" {
		t.Fatal("secret must be redacted in responses")
	}

	resp = doJSON(t, http.MethodDelete, srv.URL+"/v1/subscriptions/"+sub.ID, nil, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete = %d", resp.StatusCode)
	}
}

func TestDutyEventsWebsocket(t *testing.T) {
	srv := newTestServer(t)
	d := createDriver(t, srv.URL)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/duty-events/ws?driverId=" + d.ID
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	doJSON(t, http.MethodPost, srv.URL+"/v1/drivers/"+d.ID+"/duty-status", map[string]any{"status": "on_duty"}, nil)

	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	var ev Event
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("read event: %v", err)
	}
	if ev.Type != "dutystatus.changed" || ev.DriverID != d.ID {
		t.Fatalf("event = %+v", ev)
	}
}

func TestRouteLabel(t *testing.T) {
	cases := map[string]string{
		"/v1/drivers/abc-123/compliance": "/v1/drivers/:id/compliance",
		"/v1/configurations/x":           "/v1/configurations/:id",
		"/v1/loads/assess":               "/v1/loads/assess",
		"/healthz":                       "/healthz",
	}
	for in, want := range cases {
		if got := routeLabel(in); got != want {
			t.Errorf("routeLabel(%s) = %s, want %s", in, got, want)
		}
	}
}
