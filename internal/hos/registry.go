package hos

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"fleetcomp/internal/model"
)

// Registry validation sentinels.
var (
	ErrMissingSerial  = errors.New("device serial number is required")
	ErrMissingLicense = errors.New("driver license number is required")
)

// RegisterDevice enrolls an ELD unit. Telemetry fields come from the caller.
func (e *Engine) RegisterDevice(ctx context.Context, d model.Device) (model.Device, error) {
	if strings.TrimSpace(d.SerialNumber) == "" {
		return model.Device{}, ErrMissingSerial
	}
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.Status == "" {
		d.Status = "active"
	}
	if d.LastSync.IsZero() {
		d.LastSync = e.now().UTC()
	}
	dev, err := e.st.CreateDevice(ctx, d)
	if err != nil {
		return model.Device{}, err
	}
	e.log.Info("device registered", zap.String("deviceId", dev.ID), zap.String("serial", dev.SerialNumber))
	return dev, nil
}

// Device returns a device by id.
func (e *Engine) Device(ctx context.Context, id string) (model.Device, error) {
	return e.st.GetDevice(ctx, id)
}

// Devices lists all registered devices.
func (e *Engine) Devices(ctx context.Context) ([]model.Device, error) {
	return e.st.ListDevices(ctx)
}

// RegisterDriver enrolls a driver and appends an ELD_LOGIN event.
func (e *Engine) RegisterDriver(ctx context.Context, d model.Driver) (model.Driver, error) {
	if strings.TrimSpace(d.LicenseNumber) == "" {
		return model.Driver{}, ErrMissingLicense
	}
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.ELDStatus == "" {
		d.ELDStatus = "active"
	}
	d.LastLogin = e.now().UTC()
	drv, err := e.st.CreateDriver(ctx, d)
	if err != nil {
		return model.Driver{}, err
	}
	entry := model.LogEntry{
		ID:          uuid.NewString(),
		DriverID:    drv.ID,
		DeviceID:    drv.DeviceID,
		Timestamp:   drv.LastLogin,
		EventType:   "login",
		EventCode:   "ELD_LOGIN",
		Description: "driver enrolled",
		DataSource:  model.SourceAutomatic,
	}
	if err := e.st.AppendLogEntry(ctx, entry); err != nil {
		e.log.Warn("log entry append failed", zap.String("driverId", drv.ID), zap.Error(err))
	}
	e.log.Info("driver registered", zap.String("driverId", drv.ID))
	return drv, nil
}

// Driver returns a driver by id.
func (e *Engine) Driver(ctx context.Context, id string) (model.Driver, error) {
	return e.st.GetDriver(ctx, id)
}

// Drivers lists all enrolled drivers.
func (e *Engine) Drivers(ctx context.Context) ([]model.Driver, error) {
	return e.st.ListDrivers(ctx)
}

// AssignDeviceToDriver pairs a registered device with a driver.
func (e *Engine) AssignDeviceToDriver(ctx context.Context, driverID, deviceID string) (model.Driver, error) {
	drv, err := e.st.AssignDevice(ctx, driverID, deviceID)
	if err != nil {
		return model.Driver{}, err
	}
	e.log.Info("device assigned", zap.String("driverId", driverID), zap.String("deviceId", deviceID))
	return drv, nil
}

// LogEntries lists ELD event records for a driver in [start, end].
func (e *Engine) LogEntries(ctx context.Context, driverID string, start, end time.Time) ([]model.LogEntry, error) {
	if _, err := e.st.GetDriver(ctx, driverID); err != nil {
		return nil, err
	}
	return e.st.ListLogEntries(ctx, driverID, start, end)
}
