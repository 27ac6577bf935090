package hos

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/looplab/fsm"
	"go.uber.org/zap"

	"fleetcomp/internal/model"
)

// ErrBadTransition is returned for illegal violation lifecycle moves.
var ErrBadTransition = errors.New("illegal violation state transition")

const (
	eventAcknowledge = "acknowledge"
	eventResolve     = "resolve"
)

// lifecycle builds the violation state machine positioned at the current
// status: active -> acknowledged -> resolved, with resolve allowed straight
// from active.
func lifecycle(current model.ViolationStatus) *fsm.FSM {
	return fsm.NewFSM(string(current), fsm.Events{
		{Name: eventAcknowledge, Src: []string{string(model.ViolationActive)}, Dst: string(model.ViolationAcknowledged)},
		{Name: eventResolve, Src: []string{string(model.ViolationActive), string(model.ViolationAcknowledged)}, Dst: string(model.ViolationResolved)},
	}, fsm.Callbacks{})
}

// RecordViolation persists a new active violation record.
func (e *Engine) RecordViolation(ctx context.Context, v model.ComplianceViolation) (model.ComplianceViolation, error) {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	if v.Timestamp.IsZero() {
		v.Timestamp = e.now().UTC()
	}
	v.Status = model.ViolationActive
	created, err := e.st.CreateViolation(ctx, v)
	if err != nil {
		return model.ComplianceViolation{}, err
	}
	e.log.Warn("violation recorded",
		zap.String("driverId", v.DriverID),
		zap.String("type", string(v.Type)),
		zap.String("severity", string(v.Severity)))
	return created, nil
}

// Violations lists all violation records for a driver.
func (e *Engine) Violations(ctx context.Context, driverID string) ([]model.ComplianceViolation, error) {
	if _, err := e.st.GetDriver(ctx, driverID); err != nil {
		return nil, err
	}
	return e.st.ListViolations(ctx, driverID)
}

// AcknowledgeViolation moves an active violation to acknowledged.
func (e *Engine) AcknowledgeViolation(ctx context.Context, id string) (model.ComplianceViolation, error) {
	return e.transition(ctx, id, eventAcknowledge, "")
}

// ResolveViolation closes a violation, stamping resolution time and notes.
func (e *Engine) ResolveViolation(ctx context.Context, id, notes string) (model.ComplianceViolation, error) {
	return e.transition(ctx, id, eventResolve, notes)
}

func (e *Engine) transition(ctx context.Context, id, event, notes string) (model.ComplianceViolation, error) {
	v, err := e.st.GetViolation(ctx, id)
	if err != nil {
		return model.ComplianceViolation{}, err
	}
	lc := lifecycle(v.Status)
	if err := lc.Event(ctx, event); err != nil {
		return model.ComplianceViolation{}, fmt.Errorf("%w: %s from %s", ErrBadTransition, event, v.Status)
	}
	v.Status = model.ViolationStatus(lc.Current())
	if v.Status == model.ViolationResolved {
		t := e.now().UTC()
		v.ResolutionDate = &t
		v.ResolutionNotes = notes
	}
	if err := e.st.UpdateViolation(ctx, v); err != nil {
		return model.ComplianceViolation{}, err
	}
	return v, nil
}

// RecordInspection stores a weigh-station inspection. Any cited violation
// opens an active critical weight_violation record requiring safety review.
func (e *Engine) RecordInspection(ctx context.Context, insp model.WeightInspection) (model.WeightInspection, *model.ComplianceViolation, error) {
	if _, err := e.st.GetDriver(ctx, insp.DriverID); err != nil {
		return model.WeightInspection{}, nil, err
	}
	if insp.ID == "" {
		insp.ID = uuid.NewString()
	}
	if insp.InspectionDate.IsZero() {
		insp.InspectionDate = e.now().UTC()
	}
	created, err := e.st.CreateInspection(ctx, insp)
	if err != nil {
		return model.WeightInspection{}, nil, err
	}
	if len(insp.Violations) == 0 {
		return created, nil, nil
	}
	v, err := e.RecordViolation(ctx, model.ComplianceViolation{
		DriverID:       insp.DriverID,
		DeviceID:       insp.DeviceID,
		Type:           model.HOSWeightViolation,
		Severity:       model.HOSCritical,
		Description:    fmt.Sprintf("weigh station inspection at %s (%s) cited %d violation(s)", insp.StationName, insp.StateCode, len(insp.Violations)),
		Timestamp:      insp.InspectionDate,
		RequiredAction: "Safety review required before next dispatch",
	})
	if err != nil {
		return model.WeightInspection{}, nil, err
	}
	return created, &v, nil
}

// Inspections lists a driver's weigh-station inspections.
func (e *Engine) Inspections(ctx context.Context, driverID string) ([]model.WeightInspection, error) {
	if _, err := e.st.GetDriver(ctx, driverID); err != nil {
		return nil, err
	}
	return e.st.ListInspections(ctx, driverID)
}
