package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"fleetcomp/internal/model"
)

// Memory is the in-process store. Duty timeline mutations take a per-driver
// lock so concurrent status changes for one driver serialize while different
// drivers proceed in parallel.
type Memory struct {
	mu          sync.RWMutex
	devices     map[string]model.Device
	drivers     map[string]model.Driver
	intervals   map[string][]model.DutyStatusInterval
	logEntries  map[string][]model.LogEntry
	violations  map[string]model.ComplianceViolation
	weightLogs  map[string][]model.WeightComplianceLog
	inspections map[string][]model.WeightInspection
	subs        map[string]model.Subscription

	lockMu      sync.Mutex
	driverLocks map[string]*sync.Mutex
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		devices:     map[string]model.Device{},
		drivers:     map[string]model.Driver{},
		intervals:   map[string][]model.DutyStatusInterval{},
		logEntries:  map[string][]model.LogEntry{},
		violations:  map[string]model.ComplianceViolation{},
		weightLogs:  map[string][]model.WeightComplianceLog{},
		inspections: map[string][]model.WeightInspection{},
		subs:        map[string]model.Subscription{},
		driverLocks: map[string]*sync.Mutex{},
	}
}

func (m *Memory) driverLock(driverID string) *sync.Mutex {
	m.lockMu.Lock()
	defer m.lockMu.Unlock()
	l, ok := m.driverLocks[driverID]
	if !ok {
		l = &sync.Mutex{}
		m.driverLocks[driverID] = l
	}
	return l
}

func (m *Memory) CreateDevice(_ context.Context, d model.Device) (model.Device, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.devices[d.ID]; ok {
		return model.Device{}, ErrConflict
	}
	m.devices[d.ID] = d
	return d, nil
}

func (m *Memory) GetDevice(_ context.Context, id string) (model.Device, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.devices[id]
	if !ok {
		return model.Device{}, ErrNotFound
	}
	return d, nil
}

func (m *Memory) ListDevices(_ context.Context) ([]model.Device, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Device, 0, len(m.devices))
	for _, d := range m.devices {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) CreateDriver(_ context.Context, d model.Driver) (model.Driver, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.drivers[d.ID]; ok {
		return model.Driver{}, ErrConflict
	}
	m.drivers[d.ID] = d
	return d, nil
}

func (m *Memory) GetDriver(_ context.Context, id string) (model.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.drivers[id]
	if !ok {
		return model.Driver{}, ErrNotFound
	}
	return d, nil
}

func (m *Memory) ListDrivers(_ context.Context) ([]model.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Driver, 0, len(m.drivers))
	for _, d := range m.drivers {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) AssignDevice(_ context.Context, driverID, deviceID string) (model.Driver, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.drivers[driverID]
	if !ok {
		return model.Driver{}, ErrNotFound
	}
	if _, ok := m.devices[deviceID]; !ok {
		return model.Driver{}, ErrNotFound
	}
	d.DeviceID = deviceID
	m.drivers[driverID] = d
	return d, nil
}

func (m *Memory) StartInterval(_ context.Context, iv model.DutyStatusInterval) (*model.DutyStatusInterval, error) {
	l := m.driverLock(iv.DriverID)
	l.Lock()
	defer l.Unlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.drivers[iv.DriverID]; !ok {
		return nil, ErrNotFound
	}
	var closed *model.DutyStatusInterval
	ivs := m.intervals[iv.DriverID]
	for i := range ivs {
		if ivs[i].Open() {
			closeInterval(&ivs[i], iv.StartTime, iv.Location)
			c := ivs[i]
			closed = &c
			break
		}
	}
	m.intervals[iv.DriverID] = append(ivs, iv)
	return closed, nil
}

func (m *Memory) CloseOpenInterval(_ context.Context, driverID string, end time.Time, loc model.GeoPoint) (*model.DutyStatusInterval, error) {
	l := m.driverLock(driverID)
	l.Lock()
	defer l.Unlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.drivers[driverID]; !ok {
		return nil, ErrNotFound
	}
	ivs := m.intervals[driverID]
	for i := range ivs {
		if ivs[i].Open() {
			closeInterval(&ivs[i], end, loc)
			c := ivs[i]
			return &c, nil
		}
	}
	return nil, ErrNoOpenInterval
}

func (m *Memory) OpenInterval(_ context.Context, driverID string) (*model.DutyStatusInterval, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.drivers[driverID]; !ok {
		return nil, ErrNotFound
	}
	for _, iv := range m.intervals[driverID] {
		if iv.Open() {
			c := iv
			return &c, nil
		}
	}
	return nil, nil
}

func (m *Memory) ListIntervals(_ context.Context, driverID string, start, end time.Time) ([]model.DutyStatusInterval, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []model.DutyStatusInterval{}
	for _, iv := range m.intervals[driverID] {
		if inRange(iv.StartTime, start, end) {
			out = append(out, iv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (m *Memory) AppendLogEntry(_ context.Context, e model.LogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logEntries[e.DriverID] = append(m.logEntries[e.DriverID], e)
	return nil
}

func (m *Memory) ListLogEntries(_ context.Context, driverID string, start, end time.Time) ([]model.LogEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []model.LogEntry{}
	for _, e := range m.logEntries[driverID] {
		if inRange(e.Timestamp, start, end) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

func (m *Memory) CreateViolation(_ context.Context, v model.ComplianceViolation) (model.ComplianceViolation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.violations[v.ID]; ok {
		return model.ComplianceViolation{}, ErrConflict
	}
	m.violations[v.ID] = v
	return v, nil
}

func (m *Memory) GetViolation(_ context.Context, id string) (model.ComplianceViolation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.violations[id]
	if !ok {
		return model.ComplianceViolation{}, ErrNotFound
	}
	return v, nil
}

func (m *Memory) UpdateViolation(_ context.Context, v model.ComplianceViolation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.violations[v.ID]; !ok {
		return ErrNotFound
	}
	m.violations[v.ID] = v
	return nil
}

func (m *Memory) ListViolations(_ context.Context, driverID string) ([]model.ComplianceViolation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []model.ComplianceViolation{}
	for _, v := range m.violations {
		if v.DriverID == driverID {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

func (m *Memory) AppendWeightLog(_ context.Context, l model.WeightComplianceLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.weightLogs[l.DriverID] = append(m.weightLogs[l.DriverID], l)
	return nil
}

func (m *Memory) ListWeightLogs(_ context.Context, driverID string, start, end time.Time) ([]model.WeightComplianceLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []model.WeightComplianceLog{}
	for _, l := range m.weightLogs[driverID] {
		if inRange(l.Timestamp, start, end) {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

func (m *Memory) MarkWeightLogsExported(_ context.Context, driverID string, ids []string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	logs := m.weightLogs[driverID]
	for i := range logs {
		if want[logs[i].ID] {
			ts := at
			logs[i].ExportedAt = &ts
		}
	}
	return nil
}

func (m *Memory) CreateInspection(_ context.Context, i model.WeightInspection) (model.WeightInspection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inspections[i.DriverID] = append(m.inspections[i.DriverID], i)
	return i, nil
}

func (m *Memory) ListInspections(_ context.Context, driverID string) ([]model.WeightInspection, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []model.WeightInspection{}
	out = append(out, m.inspections[driverID]...)
	sort.Slice(out, func(i, j int) bool { return out[i].InspectionDate.Before(out[j].InspectionDate) })
	return out, nil
}

func (m *Memory) CreateSubscription(_ context.Context, s model.Subscription) (model.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.subs[s.ID]; ok {
		return model.Subscription{}, ErrConflict
	}
	m.subs[s.ID] = s
	return s, nil
}

func (m *Memory) DeleteSubscription(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.subs[id]; !ok {
		return ErrNotFound
	}
	delete(m.subs, id)
	return nil
}

func (m *Memory) ListSubscriptions(_ context.Context) ([]model.Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Subscription, 0, len(m.subs))
	for _, s := range m.subs {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) Ping(context.Context) error { return nil }
func (m *Memory) Close() error               { return nil }
