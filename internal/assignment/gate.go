// Package assignment gates load assignments on weight compliance and records
// the verdict on the driver's duty record.
package assignment

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"fleetcomp/internal/catalog"
	"fleetcomp/internal/hos"
	"fleetcomp/internal/model"
	"fleetcomp/internal/weight"
)

// Gate is the integration point the scheduler calls before committing a load.
type Gate struct {
	weights *weight.Engine
	hos     *hos.Engine
	cat     *catalog.Catalog
	log     *zap.Logger
}

// NewGate wires the gate over the two engines.
func NewGate(w *weight.Engine, h *hos.Engine, cat *catalog.Catalog, log *zap.Logger) *Gate {
	if log == nil {
		log = zap.NewNop()
	}
	return &Gate{weights: w, hos: h, cat: cat, log: log}
}

// IntegrateLoadAssignment decides block or allow. A blocked load is a normal
// result with Success=false; only fatal problems (unknown driver, unknown
// configuration, invalid input) surface as errors.
func (g *Gate) IntegrateLoadAssignment(ctx context.Context, load model.LoadAssignment) (model.AssignmentResult, error) {
	if _, err := g.hos.Driver(ctx, load.DriverID); err != nil {
		return model.AssignmentResult{}, fmt.Errorf("driver %s: %w", load.DriverID, err)
	}
	res := model.AssignmentResult{Success: true, LoadID: load.LoadID, Warnings: []string{}}

	if load.CargoWeight <= 0 {
		// Nothing to evaluate; the scheduler sent no weight data.
		return res, nil
	}

	assessment, err := g.weights.AssessLoadWeight(load.LoadID, load.CargoWeight, load.RouteStates, load.TractorWeight, load.TrailerWeight)
	if err != nil {
		return model.AssignmentResult{}, err
	}
	res.WeightCompliance = assessment

	var blockingDescs []string
	for _, v := range assessment.Compliance.Violations {
		if v.Severity.Blocking() {
			blockingDescs = append(blockingDescs, v.Description)
		} else {
			res.Warnings = append(res.Warnings, v.Description)
		}
	}
	res.Warnings = append(res.Warnings, assessment.Compliance.RequiredPermits...)

	if len(blockingDescs) > 0 {
		res.Success = false
		res.Warnings = append(blockingDescs, res.Warnings...)
		res.Error = "load blocked by weight compliance: " + strings.Join(blockingDescs, "; ")
		g.log.Warn("assignment blocked",
			zap.String("loadId", load.LoadID),
			zap.String("driverId", load.DriverID),
			zap.Strings("violations", blockingDescs))
		return res, nil
	}

	configName := ""
	if load.ConfigurationID != "" {
		cfg, err := g.cat.Configuration(load.ConfigurationID)
		if err != nil {
			return model.AssignmentResult{}, err
		}
		configName = cfg.Name
		verdict, err := g.weights.ValidateLoadAssignment(load.CargoWeight, load.ConfigurationID, load.RouteStates)
		if err != nil {
			return model.AssignmentResult{}, err
		}
		res.Warnings = append(res.Warnings, verdict.Warnings...)
		if !verdict.CanAccept {
			res.Success = false
			res.Error = "configuration rejected: " + strings.Join(verdict.RequiredActions, "; ")
			g.log.Warn("assignment blocked",
				zap.String("loadId", load.LoadID),
				zap.String("configurationId", load.ConfigurationID),
				zap.Strings("requiredActions", verdict.RequiredActions))
			return res, nil
		}
	}

	// Best effort: a failed log write never blocks a compliant load.
	if _, err := g.hos.LogWeightCompliance(ctx, load.DriverID, assessment, load.ConfigurationID, configName, model.GeoPoint{}); err != nil {
		res.Warnings = append(res.Warnings, fmt.Sprintf("compliance log write failed: %v", err))
		g.log.Warn("compliance log write failed",
			zap.String("loadId", load.LoadID),
			zap.String("driverId", load.DriverID),
			zap.Error(err))
	}
	return res, nil
}
