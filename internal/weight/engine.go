// Package weight evaluates load weights against truck axle configurations,
// the Federal Bridge Formula, and per-state gross limits. All evaluation is
// side-effect free; the engine only reads catalog data.
package weight

import (
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"fleetcomp/internal/catalog"
	"fleetcomp/internal/model"
)

// Default curb weights used when the caller supplies none.
const (
	DefaultTractorWeight = 15000.0
	DefaultTrailerWeight = 14000.0
)

// Validation sentinels. These are caller errors, never compliance verdicts.
var (
	ErrInvalidCargoWeight = errors.New("cargo weight must be positive")
	ErrNoRouteStates      = errors.New("at least one route state is required")
)

// Engine evaluates weight compliance against the loaded catalog.
type Engine struct {
	cat *catalog.Catalog
	log *zap.Logger
	now func() time.Time
}

// NewEngine builds a weight engine over the given catalog.
func NewEngine(cat *catalog.Catalog, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{cat: cat, log: log, now: time.Now}
}

// BridgeFormulaMax returns the maximum gross weight in lbs allowed by the
// Federal Bridge Formula for n axles spread over l feet:
//
//	W = 500 * (l*n/(n-1) + 12n + 36)
func BridgeFormulaMax(l float64, n int) float64 {
	if n < 2 {
		return 0
	}
	return 500 * ((l*float64(n))/float64(n-1) + 12*float64(n) + 36)
}

// EstimateDistribution apportions cargo and vehicle weight across axle groups
// using the standard heuristic: the steer axle carries 80% of the tractor,
// drive axles carry the rest of the tractor plus 40% of the cargo, and trailer
// axles carry the trailer plus 60% of the cargo. Axle weights are per axle.
// The split is deliberately conservative; do not tune it per load.
func EstimateDistribution(cfg model.TruckAxleConfiguration, cargo, tractor, trailer float64) model.WeightDistribution {
	steer := 0.8 * tractor
	driveCargo := 0.4 * cargo
	trailerGroup := trailer + 0.6*cargo
	if cfg.TrailerAxles == 0 {
		// Straight truck: all cargo rides the drive axles.
		driveCargo = cargo
		trailerGroup = 0
		trailer = 0
	}
	return model.WeightDistribution{
		SteerAxleWeight:   steer / float64(cfg.SteerAxles),
		DriveAxleWeight:   ((tractor - steer) + driveCargo) / float64(cfg.DriveAxles),
		TrailerAxleWeight: perAxle(trailerGroup, cfg.TrailerAxles),
		TotalWeight:       cargo + tractor + trailer,
		CargoWeight:       cargo,
		TractorWeight:     tractor,
		TrailerWeight:     trailer,
	}
}

func perAxle(group float64, axles int) float64 {
	if axles == 0 {
		return 0
	}
	return group / float64(axles)
}

// EvaluateDistribution checks a distribution against a configuration's limits,
// the bridge formula when the configuration requires it, and the gross limits
// of each route state present in the catalog.
func (e *Engine) EvaluateDistribution(cfg model.TruckAxleConfiguration, dist model.WeightDistribution, states []string) model.WeightEvaluationResult {
	res := model.WeightEvaluationResult{
		IsCompliant:            true,
		SafetyRating:           model.RatingSafe,
		Violations:             []model.WeightViolation{},
		RequiredPermits:        []string{},
		Recommendations:        []string{},
		BridgeFormulaCompliant: true,
	}

	if dist.TotalWeight > cfg.MaxGrossWeight {
		excess := dist.TotalWeight - cfg.MaxGrossWeight
		sev := severityFor(excess, cfg.MaxGrossWeight)
		res.Violations = append(res.Violations, model.WeightViolation{
			Type:          model.ViolationGrossWeight,
			Description:   fmt.Sprintf("gross weight %.0f lbs exceeds the %.0f lbs limit for %s", dist.TotalWeight, cfg.MaxGrossWeight, cfg.Name),
			CurrentWeight: dist.TotalWeight,
			MaxAllowed:    cfg.MaxGrossWeight,
			ExcessWeight:  excess,
			Severity:      sev,
			FineRange:     fineRange(sev),
		})
		res.Recommendations = append(res.Recommendations, fmt.Sprintf("Reduce cargo weight by at least %.0f lbs", excess))
	}

	if dist.SteerAxleWeight > cfg.SteerAxleMaxWeight {
		excess := dist.SteerAxleWeight - cfg.SteerAxleMaxWeight
		// Steer overloads degrade steering and braking; always treated as HIGH.
		res.Violations = append(res.Violations, model.WeightViolation{
			Type:          model.ViolationAxleWeight,
			Description:   fmt.Sprintf("steer axle weight %.0f lbs exceeds the %.0f lbs limit", dist.SteerAxleWeight, cfg.SteerAxleMaxWeight),
			CurrentWeight: dist.SteerAxleWeight,
			MaxAllowed:    cfg.SteerAxleMaxWeight,
			ExcessWeight:  excess,
			Severity:      model.SeverityHigh,
			FineRange:     fineRange(model.SeverityHigh),
		})
		res.Recommendations = append(res.Recommendations, "Redistribute cargo rearward to unload the steer axle")
	}

	if dist.DriveAxleWeight > cfg.DriveAxleMaxWeight {
		excess := dist.DriveAxleWeight - cfg.DriveAxleMaxWeight
		sev := severityFor(excess, cfg.DriveAxleMaxWeight)
		res.Violations = append(res.Violations, model.WeightViolation{
			Type:          model.ViolationAxleWeight,
			Description:   fmt.Sprintf("drive axle weight %.0f lbs exceeds the %.0f lbs per-axle limit", dist.DriveAxleWeight, cfg.DriveAxleMaxWeight),
			CurrentWeight: dist.DriveAxleWeight,
			MaxAllowed:    cfg.DriveAxleMaxWeight,
			ExcessWeight:  excess,
			Severity:      sev,
			FineRange:     fineRange(sev),
		})
		res.Recommendations = append(res.Recommendations, "Slide the fifth wheel or trailer tandems to shift weight off the drive axles")
	}

	if cfg.TrailerAxles > 0 && dist.TrailerAxleWeight > cfg.TrailerAxleMaxWeight {
		excess := dist.TrailerAxleWeight - cfg.TrailerAxleMaxWeight
		sev := severityFor(excess, cfg.TrailerAxleMaxWeight)
		res.Violations = append(res.Violations, model.WeightViolation{
			Type:          model.ViolationAxleWeight,
			Description:   fmt.Sprintf("trailer axle weight %.0f lbs exceeds the %.0f lbs per-axle limit", dist.TrailerAxleWeight, cfg.TrailerAxleMaxWeight),
			CurrentWeight: dist.TrailerAxleWeight,
			MaxAllowed:    cfg.TrailerAxleMaxWeight,
			ExcessWeight:  excess,
			Severity:      sev,
			FineRange:     fineRange(sev),
		})
		res.Recommendations = append(res.Recommendations, "Shift cargo forward in the trailer to unload the trailer axles")
	}

	if cfg.BridgeFormulaRequired {
		maxW := BridgeFormulaMax(cfg.TypicalAxleSpreadFt, cfg.TotalAxles)
		if dist.TotalWeight > maxW {
			res.BridgeFormulaCompliant = false
			res.Violations = append(res.Violations, model.WeightViolation{
				Type:          model.ViolationBridgeFormula,
				Description:   fmt.Sprintf("gross weight %.0f lbs exceeds the bridge formula limit of %.0f lbs (%d axles over %.0f ft)", dist.TotalWeight, maxW, cfg.TotalAxles, cfg.TypicalAxleSpreadFt),
				CurrentWeight: dist.TotalWeight,
				MaxAllowed:    maxW,
				ExcessWeight:  dist.TotalWeight - maxW,
				Severity:      model.SeverityHigh,
				FineRange:     fineRange(model.SeverityHigh),
			})
			res.Recommendations = append(res.Recommendations, "Increase axle spacing or reduce gross weight to satisfy the bridge formula")
		}
	}

	for _, code := range states {
		st, ok := e.cat.StateLimits(code)
		if !ok {
			continue
		}
		res.ApplicableStateLimits = append(res.ApplicableStateLimits, st)
		if dist.TotalWeight > st.MaxGrossWeight {
			excess := dist.TotalWeight - st.MaxGrossWeight
			res.Violations = append(res.Violations, model.WeightViolation{
				Type:          model.ViolationStateLimit,
				Description:   fmt.Sprintf("gross weight %.0f lbs exceeds the %.0f lbs limit in %s", dist.TotalWeight, st.MaxGrossWeight, st.StateCode),
				CurrentWeight: dist.TotalWeight,
				MaxAllowed:    st.MaxGrossWeight,
				ExcessWeight:  excess,
				Severity:      model.SeverityHigh,
				FineRange:     fineRange(model.SeverityHigh),
			})
			res.Recommendations = append(res.Recommendations, fmt.Sprintf("Reduce gross weight by %.0f lbs before entering %s or reroute", excess, st.StateCode))
		}
		if st.MaxGrossWeight > catalog.FederalGrossBaseline && dist.TotalWeight > catalog.FederalGrossBaseline {
			res.RequiredPermits = append(res.RequiredPermits, fmt.Sprintf("Overweight permit required in %s for loads above %.0f lbs", st.StateCode, catalog.FederalGrossBaseline))
		}
	}

	res.IsCompliant = len(res.Violations) == 0
	res.SafetyRating = ratingFor(res.Violations)
	if res.IsCompliant {
		res.Recommendations = append(res.Recommendations, "Load is within all applicable weight limits")
	}
	return res
}

// FindSuitableConfigurations partitions the catalog by gross-weight
// utilization for the given load: under 85% suitable, 85-100% marginal,
// over 100% unsuitable.
func (e *Engine) FindSuitableConfigurations(cargo, tractor, trailer float64) model.ConfigurationPartition {
	total := cargo + tractor + trailer
	part := model.ConfigurationPartition{
		Suitable:   []model.ConfigurationMatch{},
		Marginal:   []model.ConfigurationMatch{},
		Unsuitable: []model.ConfigurationMatch{},
	}
	for _, cfg := range e.cat.Configurations() {
		util := total / cfg.MaxGrossWeight * 100
		m := model.ConfigurationMatch{Configuration: cfg, UtilizationPct: math.Round(util*10) / 10}
		switch {
		case util < 85:
			part.Suitable = append(part.Suitable, m)
		case util <= 100:
			part.Marginal = append(part.Marginal, m)
		default:
			part.Unsuitable = append(part.Unsuitable, m)
		}
	}
	return part
}

// AssessLoadWeight runs the full evaluation for a load: the heuristic
// distribution on the reference 5-axle configuration, the compliance verdict
// for the route states, and the catalog-wide suitability partition.
func (e *Engine) AssessLoadWeight(loadID string, cargo float64, states []string, tractor, trailer float64) (*model.LoadWeightAssessment, error) {
	if cargo <= 0 {
		return nil, ErrInvalidCargoWeight
	}
	if len(states) == 0 {
		return nil, ErrNoRouteStates
	}
	if tractor <= 0 {
		tractor = DefaultTractorWeight
	}
	if trailer <= 0 {
		trailer = DefaultTrailerWeight
	}
	ref := e.cat.Reference()
	dist := EstimateDistribution(ref, cargo, tractor, trailer)
	compliance := e.EvaluateDistribution(ref, dist, states)
	a := &model.LoadWeightAssessment{
		LoadID:         loadID,
		CargoWeight:    cargo,
		Distribution:   dist,
		Compliance:     compliance,
		Configurations: e.FindSuitableConfigurations(cargo, tractor, trailer),
		RouteStates:    states,
		EvaluatedAt:    e.now().UTC(),
	}
	e.log.Debug("load weight assessed",
		zap.String("loadId", loadID),
		zap.Float64("totalWeight", dist.TotalWeight),
		zap.String("safetyRating", string(compliance.SafetyRating)),
		zap.Int("violations", len(compliance.Violations)))
	return a, nil
}

// ValidateLoadAssignment answers whether the named configuration can legally
// take the load across the route states. The load is accepted only when the
// assessment is fully compliant, no permits are outstanding, and the
// configuration lands in the suitable partition.
func (e *Engine) ValidateLoadAssignment(cargo float64, configurationID string, states []string) (model.ValidationResult, error) {
	cfg, err := e.cat.Configuration(configurationID)
	if err != nil {
		return model.ValidationResult{}, err
	}
	assessment, err := e.AssessLoadWeight("validation", cargo, states, 0, 0)
	if err != nil {
		return model.ValidationResult{}, err
	}
	res := model.ValidationResult{CanAccept: true, Warnings: []string{}, RequiredActions: []string{}}

	if !assessment.Compliance.IsCompliant {
		res.CanAccept = false
		for _, v := range assessment.Compliance.Violations {
			res.RequiredActions = append(res.RequiredActions, v.Description)
		}
	}
	for _, p := range assessment.Compliance.RequiredPermits {
		res.CanAccept = false
		res.RequiredActions = append(res.RequiredActions, p)
	}

	switch {
	case inPartition(assessment.Configurations.Suitable, configurationID):
		// configuration has comfortable headroom
	case inPartition(assessment.Configurations.Marginal, configurationID):
		res.CanAccept = false
		res.Warnings = append(res.Warnings, fmt.Sprintf("%s is near its gross weight capacity for this load", cfg.Name))
		res.RequiredActions = append(res.RequiredActions, "Verify actual scale weights or select a higher-capacity configuration")
	default:
		res.CanAccept = false
		res.RequiredActions = append(res.RequiredActions, fmt.Sprintf("%s cannot legally carry this load; select a higher-capacity configuration", cfg.Name))
	}
	return res, nil
}

func inPartition(matches []model.ConfigurationMatch, id string) bool {
	for _, m := range matches {
		if m.Configuration.ID == id {
			return true
		}
	}
	return false
}

// ratingFor summarizes violations: OVERWEIGHT when any blocks, CAUTION when
// only minor overages exist, SAFE when clean.
func ratingFor(violations []model.WeightViolation) model.SafetyRating {
	if len(violations) == 0 {
		return model.RatingSafe
	}
	for _, v := range violations {
		if v.Severity.Blocking() {
			return model.RatingOverweight
		}
	}
	return model.RatingCaution
}

// severityFor grades an overage by its percentage over the limit.
func severityFor(excess, limit float64) model.WeightSeverity {
	pct := excess / limit * 100
	switch {
	case pct <= 5:
		return model.SeverityLow
	case pct <= 10:
		return model.SeverityMedium
	case pct <= 20:
		return model.SeverityHigh
	default:
		return model.SeverityCritical
	}
}

// fineRange is an advisory estimate shown to dispatchers; actual fines vary
// by jurisdiction.
func fineRange(sev model.WeightSeverity) string {
	switch sev {
	case model.SeverityLow:
		return "$100 - $500"
	case model.SeverityMedium:
		return "$500 - $2,000"
	case model.SeverityHigh:
		return "$2,000 - $10,000"
	default:
		return "$10,000+ and possible out-of-service order"
	}
}
