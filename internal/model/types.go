package model

import "time"

// Core domain types for the weight and HOS compliance engines.

// GeoPoint is a location snapshot supplied by the ELD client.
type GeoPoint struct {
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	Accuracy float64 `json:"accuracy,omitempty"`
}

// DutyStatus is one of the six FMCSA duty states.
type DutyStatus string

const (
	StatusOffDuty            DutyStatus = "off_duty"
	StatusSleeperBerth       DutyStatus = "sleeper_berth"
	StatusDriving            DutyStatus = "driving"
	StatusOnDuty             DutyStatus = "on_duty"
	StatusYardMove           DutyStatus = "yard_move"
	StatusPersonalConveyance DutyStatus = "personal_conveyance"
)

// IsValid reports whether s is a recognized duty status.
func (s DutyStatus) IsValid() bool {
	switch s {
	case StatusOffDuty, StatusSleeperBerth, StatusDriving, StatusOnDuty, StatusYardMove, StatusPersonalConveyance:
		return true
	}
	return false
}

// TruckAxleConfiguration is immutable reference data loaded from the catalog.
// Per-axle maximums are legal limits for a single axle in that group.
type TruckAxleConfiguration struct {
	ID                    string   `json:"id" yaml:"id"`
	Name                  string   `json:"name" yaml:"name"`
	TotalAxles            int      `json:"totalAxles" yaml:"totalAxles"`
	SteerAxles            int      `json:"steerAxles" yaml:"steerAxles"`
	DriveAxles            int      `json:"driveAxles" yaml:"driveAxles"`
	TrailerAxles          int      `json:"trailerAxles" yaml:"trailerAxles"`
	SteerAxleMaxWeight    float64  `json:"steerAxleMaxWeight" yaml:"steerAxleMaxWeight"`
	DriveAxleMaxWeight    float64  `json:"driveAxleMaxWeight" yaml:"driveAxleMaxWeight"`
	TrailerAxleMaxWeight  float64  `json:"trailerAxleMaxWeight" yaml:"trailerAxleMaxWeight"`
	MaxGrossWeight        float64  `json:"maxGrossWeight" yaml:"maxGrossWeight"`
	BridgeFormulaRequired bool     `json:"bridgeFormulaRequired" yaml:"bridgeFormulaRequired"`
	TypicalAxleSpreadFt   float64  `json:"typicalAxleSpreadFt" yaml:"typicalAxleSpreadFt"`
	CommonTrailerTypes    []string `json:"commonTrailerTypes,omitempty" yaml:"commonTrailerTypes"`
}

// StateWeightLimits is the per-jurisdiction overlay keyed by state code.
type StateWeightLimits struct {
	StateCode            string   `json:"stateCode" yaml:"stateCode"`
	MaxGrossWeight       float64  `json:"maxGrossWeight" yaml:"maxGrossWeight"`
	MaxSteerAxleWeight   float64  `json:"maxSteerAxleWeight" yaml:"maxSteerAxleWeight"`
	MaxDriveAxleWeight   float64  `json:"maxDriveAxleWeight" yaml:"maxDriveAxleWeight"`
	MaxTrailerAxleWeight float64  `json:"maxTrailerAxleWeight" yaml:"maxTrailerAxleWeight"`
	SpecialRestrictions  []string `json:"specialRestrictions,omitempty" yaml:"specialRestrictions"`
}

// WeightDistribution is the estimated per-axle apportionment of a load.
// Axle weights are per single axle within the group.
type WeightDistribution struct {
	SteerAxleWeight   float64 `json:"steerAxleWeight"`
	DriveAxleWeight   float64 `json:"driveAxleWeight"`
	TrailerAxleWeight float64 `json:"trailerAxleWeight"`
	TotalWeight       float64 `json:"totalWeight"`
	CargoWeight       float64 `json:"cargoWeight"`
	TractorWeight     float64 `json:"tractorWeight"`
	TrailerWeight     float64 `json:"trailerWeight"`
}

// WeightViolationType classifies a weight violation.
type WeightViolationType string

const (
	ViolationGrossWeight   WeightViolationType = "GROSS_WEIGHT"
	ViolationAxleWeight    WeightViolationType = "AXLE_WEIGHT"
	ViolationBridgeFormula WeightViolationType = "BRIDGE_FORMULA"
	ViolationStateLimit    WeightViolationType = "STATE_LIMIT"
)

// WeightSeverity grades a weight violation by percentage over the limit.
type WeightSeverity string

const (
	SeverityLow      WeightSeverity = "LOW"
	SeverityMedium   WeightSeverity = "MEDIUM"
	SeverityHigh     WeightSeverity = "HIGH"
	SeverityCritical WeightSeverity = "CRITICAL"
)

// Blocking reports whether the severity blocks a load assignment.
func (s WeightSeverity) Blocking() bool { return s == SeverityHigh || s == SeverityCritical }

// WeightViolation is a single overage found during evaluation.
type WeightViolation struct {
	Type          WeightViolationType `json:"type"`
	Description   string              `json:"description"`
	CurrentWeight float64             `json:"currentWeight"`
	MaxAllowed    float64             `json:"maxAllowed"`
	ExcessWeight  float64             `json:"excessWeight"`
	Severity      WeightSeverity      `json:"severity"`
	FineRange     string              `json:"fineRange,omitempty"`
}

// SafetyRating summarizes a weight evaluation.
type SafetyRating string

const (
	RatingSafe       SafetyRating = "SAFE"
	RatingCaution    SafetyRating = "CAUTION"
	RatingOverweight SafetyRating = "OVERWEIGHT"
)

// WeightEvaluationResult is the full verdict for one distribution.
type WeightEvaluationResult struct {
	IsCompliant            bool                `json:"isCompliant"`
	SafetyRating           SafetyRating        `json:"safetyRating"`
	Violations             []WeightViolation   `json:"violations"`
	RequiredPermits        []string            `json:"requiredPermits"`
	Recommendations        []string            `json:"recommendations"`
	BridgeFormulaCompliant bool                `json:"bridgeFormulaCompliant"`
	ApplicableStateLimits  []StateWeightLimits `json:"applicableStateLimits,omitempty"`
}

// ConfigurationMatch pairs a configuration with its gross-weight utilization.
type ConfigurationMatch struct {
	Configuration  TruckAxleConfiguration `json:"configuration"`
	UtilizationPct float64                `json:"utilizationPct"`
}

// ConfigurationPartition buckets the catalog by gross-weight utilization.
type ConfigurationPartition struct {
	Suitable   []ConfigurationMatch `json:"suitable"`
	Marginal   []ConfigurationMatch `json:"marginal"`
	Unsuitable []ConfigurationMatch `json:"unsuitable"`
}

// LoadWeightAssessment is the weight engine's output aggregate for a load.
type LoadWeightAssessment struct {
	LoadID         string                 `json:"loadId"`
	CargoWeight    float64                `json:"cargoWeight"`
	Distribution   WeightDistribution     `json:"distribution"`
	Compliance     WeightEvaluationResult `json:"compliance"`
	Configurations ConfigurationPartition `json:"configurations"`
	RouteStates    []string               `json:"routeStates"`
	EvaluatedAt    time.Time              `json:"evaluatedAt"`
}

// ValidationResult is the answer to "can this truck take this load".
type ValidationResult struct {
	CanAccept       bool     `json:"canAccept"`
	Warnings        []string `json:"warnings"`
	RequiredActions []string `json:"requiredActions"`
}

// DataSource tags how a record entered the system.
type DataSource string

const (
	SourceAutomatic    DataSource = "automatic"
	SourceManual       DataSource = "manual"
	SourceEdited       DataSource = "edited"
	SourceWeighStation DataSource = "weigh_station"
)

// DutyStatusInterval is one segment of a driver's duty timeline. The interval
// is open while EndTime is nil; closed intervals are immutable except for
// annotation edits.
type DutyStatusInterval struct {
	ID                   string     `json:"id"`
	DriverID             string     `json:"driverId"`
	DeviceID             string     `json:"deviceId"`
	Status               DutyStatus `json:"status"`
	StartTime            time.Time  `json:"startTime"`
	EndTime              *time.Time `json:"endTime,omitempty"`
	DurationHours        float64    `json:"durationHours"`
	Location             GeoPoint   `json:"location"`
	EndLocation          *GeoPoint  `json:"endLocation,omitempty"`
	Odometer             float64    `json:"odometer"`
	EngineHours          float64    `json:"engineHours"`
	DataSource           DataSource `json:"dataSource"`
	Annotation           string     `json:"annotation,omitempty"`
	CertifyingDriverID   string     `json:"certifyingDriverId,omitempty"`
	CertifyingDriverName string     `json:"certifyingDriverName,omitempty"`
	CertifiedAt          *time.Time `json:"certifiedAt,omitempty"`
}

// Open reports whether the interval is still running.
func (iv DutyStatusInterval) Open() bool { return iv.EndTime == nil }

// ElapsedHours returns the stored duration for closed intervals and the live
// elapsed time for open ones.
func (iv DutyStatusInterval) ElapsedHours(now time.Time) float64 {
	if iv.EndTime != nil {
		return iv.DurationHours
	}
	return now.Sub(iv.StartTime).Hours()
}

// LogEntry is an ELD event record appended alongside the duty timeline.
type LogEntry struct {
	ID          string     `json:"id"`
	DriverID    string     `json:"driverId"`
	DeviceID    string     `json:"deviceId"`
	Timestamp   time.Time  `json:"timestamp"`
	EventType   string     `json:"eventType"`
	EventCode   string     `json:"eventCode"`
	Description string     `json:"description"`
	Location    GeoPoint   `json:"location"`
	Odometer    float64    `json:"odometer"`
	EngineHours float64    `json:"engineHours"`
	DataSource  DataSource `json:"dataSource"`
}

// HOSViolationType classifies an hours-of-service violation record.
type HOSViolationType string

const (
	HOSHoursExceeded   HOSViolationType = "hours_exceeded"
	HOSMissingLog      HOSViolationType = "missing_log"
	HOSFormManner      HOSViolationType = "form_manner"
	HOSBreakRequired   HOSViolationType = "break_required"
	HOSCycleViolation  HOSViolationType = "cycle_violation"
	HOSWeightViolation HOSViolationType = "weight_violation"
)

// HOSSeverity grades a violation record.
type HOSSeverity string

const (
	HOSWarning  HOSSeverity = "warning"
	HOSViolated HOSSeverity = "violation"
	HOSCritical HOSSeverity = "critical"
)

// ViolationStatus is the lifecycle state of a violation record.
type ViolationStatus string

const (
	ViolationActive       ViolationStatus = "active"
	ViolationAcknowledged ViolationStatus = "acknowledged"
	ViolationResolved     ViolationStatus = "resolved"
)

// ComplianceViolation is a recorded HOS or weight violation with lifecycle.
type ComplianceViolation struct {
	ID              string           `json:"id"`
	DriverID        string           `json:"driverId"`
	DeviceID        string           `json:"deviceId"`
	Type            HOSViolationType `json:"violationType"`
	Severity        HOSSeverity      `json:"severity"`
	Description     string           `json:"description"`
	Timestamp       time.Time        `json:"timestamp"`
	Status          ViolationStatus  `json:"status"`
	RequiredAction  string           `json:"requiredAction,omitempty"`
	ResolutionDate  *time.Time       `json:"resolutionDate,omitempty"`
	ResolutionNotes string           `json:"resolutionNotes,omitempty"`
}

// ComplianceReport is the on-demand HOS evaluation over a rolling window.
type ComplianceReport struct {
	DriverID          string                `json:"driverId"`
	ReportDate        time.Time             `json:"reportDate"`
	Cycle             string                `json:"cycle"`
	TotalHours        float64               `json:"totalHours"`
	DrivingHours      float64               `json:"drivingHours"`
	OnDutyHours       float64               `json:"onDutyHours"`
	OffDutyHours      float64               `json:"offDutyHours"`
	SleeperBerthHours float64               `json:"sleeperBerthHours"`
	Violations        []ComplianceViolation `json:"violations"`
	Compliant         bool                  `json:"compliant"`
	Issues            []string              `json:"issues"`
	Recommendations   []string              `json:"recommendations"`
}

// Device is an ELD unit. Telemetry is supplied by the caller, never simulated.
type Device struct {
	ID              string    `json:"deviceId"`
	SerialNumber    string    `json:"serialNumber"`
	Manufacturer    string    `json:"manufacturer"`
	Model           string    `json:"model"`
	FirmwareVersion string    `json:"firmwareVersion"`
	Status          string    `json:"status"`
	Location        GeoPoint  `json:"location"`
	LastSync        time.Time `json:"lastSync"`
}

// Driver is an ELD-enrolled driver.
type Driver struct {
	ID                string    `json:"driverId"`
	LicenseNumber     string    `json:"licenseNumber"`
	LicenseState      string    `json:"licenseState"`
	LicenseClass      string    `json:"licenseClass"`
	MedicalCardExpiry string    `json:"medicalCardExpiry,omitempty"`
	ELDStatus         string    `json:"eldStatus"`
	DeviceID          string    `json:"deviceId,omitempty"`
	LastLogin         time.Time `json:"lastLogin"`
}

// WeightComplianceLog correlates a load assignment with its weight verdict on
// the driver's duty record.
type WeightComplianceLog struct {
	ID                string            `json:"id"`
	DriverID          string            `json:"driverId"`
	DeviceID          string            `json:"deviceId"`
	LoadID            string            `json:"loadId"`
	Timestamp         time.Time         `json:"timestamp"`
	CargoWeight       float64           `json:"cargoWeight"`
	TotalWeight       float64           `json:"totalWeight"`
	ConfigurationID   string            `json:"configurationId"`
	ConfigurationName string            `json:"configurationName"`
	RouteStates       []string          `json:"routeStates"`
	IsCompliant       bool              `json:"isCompliant"`
	SafetyRating      SafetyRating      `json:"safetyRating"`
	Violations        []WeightViolation `json:"violations"`
	RequiredPermits   []string          `json:"requiredPermits"`
	Recommendations   []string          `json:"recommendations"`
	Location          GeoPoint          `json:"location"`
	DataSource        DataSource        `json:"dataSource"`
	ExportedAt        *time.Time        `json:"exportedAt,omitempty"`
}

// InspectionViolation is a citation issued during a weigh-station inspection.
type InspectionViolation struct {
	Code        string  `json:"code"`
	Description string  `json:"description"`
	Severity    string  `json:"severity"`
	Fine        float64 `json:"fine,omitempty"`
}

// WeightInspection records an official weighing of the vehicle.
type WeightInspection struct {
	ID                string                `json:"id"`
	DriverID          string                `json:"driverId"`
	DeviceID          string                `json:"deviceId"`
	InspectionDate    time.Time             `json:"inspectionDate"`
	StationName       string                `json:"stationName"`
	StateCode         string                `json:"stateCode"`
	Location          GeoPoint              `json:"location"`
	InspectorName     string                `json:"inspectorName"`
	InspectorBadge    string                `json:"inspectorBadge"`
	Agency            string                `json:"agency"`
	InspectionType    string                `json:"inspectionType"`
	SteerAxleWeight   float64               `json:"steerAxleWeight"`
	DriveAxleWeight   float64               `json:"driveAxleWeight"`
	TrailerAxleWeight float64               `json:"trailerAxleWeight"`
	GrossWeight       float64               `json:"grossWeight"`
	Violations        []InspectionViolation `json:"violations"`
	Permits           []string              `json:"permits"`
	Outcome           string                `json:"outcome"`
	FollowUpRequired  bool                  `json:"followUpRequired"`
	Notes             string                `json:"notes,omitempty"`
}

// WeightLogSummary aggregates weight compliance logs for export.
type WeightLogSummary struct {
	TotalLoads      int `json:"totalLoads"`
	CompliantLoads  int `json:"compliantLoads"`
	ViolationsCount int `json:"violationsCount"`
	PermitsRequired int `json:"permitsRequired"`
}

// ComplianceSummary is the N-day weight compliance posture of a driver.
type ComplianceSummary struct {
	DriverID           string     `json:"driverId"`
	PeriodDays         int        `json:"periodDays"`
	TotalLoads         int        `json:"totalLoads"`
	CompliantLoads     int        `json:"compliantLoads"`
	ComplianceRate     float64    `json:"complianceRate"`
	ViolationsCount    int        `json:"violationsCount"`
	CriticalViolations int        `json:"criticalViolations"`
	PermitsRequired    int        `json:"permitsRequired"`
	Inspections        int        `json:"inspections"`
	LastInspection     *time.Time `json:"lastInspection,omitempty"`
	RiskLevel          string     `json:"riskLevel"`
}

// ELDExport is the FMCSA-style data bundle for a driver and date range.
type ELDExport struct {
	Driver     Driver                `json:"driver"`
	Device     *Device               `json:"device,omitempty"`
	ExportedAt time.Time             `json:"exportedAt"`
	RangeStart time.Time             `json:"rangeStart"`
	RangeEnd   time.Time             `json:"rangeEnd"`
	DutyLogs   []DutyStatusInterval  `json:"dutyLogs"`
	LogEntries []LogEntry            `json:"logEntries"`
	Violations []ComplianceViolation `json:"violations"`
	Compliance ComplianceReport      `json:"compliance"`
}

// LoadAssignment is the gate's input from the scheduling subsystem.
type LoadAssignment struct {
	LoadID          string   `json:"loadId"`
	DriverID        string   `json:"driverId"`
	CargoWeight     float64  `json:"cargoWeight,omitempty"`
	ConfigurationID string   `json:"configurationId,omitempty"`
	RouteStates     []string `json:"routeStates,omitempty"`
	TractorWeight   float64  `json:"tractorWeight,omitempty"`
	TrailerWeight   float64  `json:"trailerWeight,omitempty"`
}

// AssignmentResult is the gate's block/allow decision.
type AssignmentResult struct {
	Success          bool                  `json:"success"`
	LoadID           string                `json:"loadId"`
	Warnings         []string              `json:"warnings,omitempty"`
	Error            string                `json:"error,omitempty"`
	WeightCompliance *LoadWeightAssessment `json:"weightCompliance,omitempty"`
}

// Subscription is a registered webhook receiver for compliance events.
type Subscription struct {
	ID     string   `json:"id"`
	URL    string   `json:"url"`
	Events []string `json:"events"`
	Secret string   `json:"secret,omitempty"`
}

// SubscriptionRequest creates a Subscription.
type SubscriptionRequest struct {
	URL    string   `json:"url"`
	Events []string `json:"events"`
	Secret string   `json:"secret"`
}
