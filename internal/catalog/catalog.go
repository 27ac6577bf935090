// Package catalog holds the process-wide read-only reference data: standard
// truck axle configurations and per-state weight limit overlays.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"

	yaml "gopkg.in/yaml.v3"

	"fleetcomp/internal/model"
)

//go:embed catalog.yaml
var rawCatalog []byte

// ReferenceConfigurationID is the standard rig used for detailed distribution
// evaluation when the caller does not name a configuration.
const ReferenceConfigurationID = "tractor-semitrailer-5axle"

// FederalState is the sentinel state code meaning "no state overlay applies".
const FederalState = "FEDERAL"

// FederalGrossBaseline is the interstate gross weight baseline in lbs.
const FederalGrossBaseline = 80000.0

// ErrUnknownConfiguration is returned for configuration ids not in the catalog.
// Callers must not mistake it for a clean (zero-violation) evaluation.
var ErrUnknownConfiguration = errors.New("unknown truck configuration")

type catalogFile struct {
	Configurations []model.TruckAxleConfiguration `yaml:"configurations"`
	StateLimits    []model.StateWeightLimits      `yaml:"stateLimits"`
}

// Catalog is the loaded, immutable reference data set.
type Catalog struct {
	configs []model.TruckAxleConfiguration
	byID    map[string]model.TruckAxleConfiguration
	states  map[string]model.StateWeightLimits
	codes   []string
}

// Load parses the embedded catalog. Safe for concurrent use after return.
func Load() (*Catalog, error) {
	return Parse(rawCatalog)
}

// Parse builds a Catalog from YAML bytes.
func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(f.Configurations) == 0 {
		return nil, errors.New("catalog has no truck configurations")
	}
	c := &Catalog{
		configs: f.Configurations,
		byID:    make(map[string]model.TruckAxleConfiguration, len(f.Configurations)),
		states:  make(map[string]model.StateWeightLimits, len(f.StateLimits)),
	}
	for _, cfg := range f.Configurations {
		if cfg.ID == "" {
			return nil, errors.New("catalog configuration missing id")
		}
		if _, dup := c.byID[cfg.ID]; dup {
			return nil, fmt.Errorf("duplicate configuration id %q", cfg.ID)
		}
		if cfg.SteerAxles+cfg.DriveAxles+cfg.TrailerAxles != cfg.TotalAxles {
			return nil, fmt.Errorf("configuration %q: axle counts do not sum to totalAxles", cfg.ID)
		}
		if cfg.MaxGrossWeight <= 0 {
			return nil, fmt.Errorf("configuration %q: maxGrossWeight must be positive", cfg.ID)
		}
		if cfg.BridgeFormulaRequired && cfg.TypicalAxleSpreadFt <= 0 {
			return nil, fmt.Errorf("configuration %q: bridge formula requires an axle spread", cfg.ID)
		}
		c.byID[cfg.ID] = cfg
	}
	for _, st := range f.StateLimits {
		if st.StateCode == "" || st.MaxGrossWeight <= 0 {
			return nil, fmt.Errorf("invalid state limits entry %q", st.StateCode)
		}
		c.states[st.StateCode] = st
		c.codes = append(c.codes, st.StateCode)
	}
	if _, ok := c.byID[ReferenceConfigurationID]; !ok {
		return nil, fmt.Errorf("catalog missing reference configuration %q", ReferenceConfigurationID)
	}
	return c, nil
}

// Configurations returns all configurations in catalog order.
func (c *Catalog) Configurations() []model.TruckAxleConfiguration {
	out := make([]model.TruckAxleConfiguration, len(c.configs))
	copy(out, c.configs)
	return out
}

// Configuration looks up a configuration by id.
func (c *Catalog) Configuration(id string) (model.TruckAxleConfiguration, error) {
	cfg, ok := c.byID[id]
	if !ok {
		return model.TruckAxleConfiguration{}, fmt.Errorf("%w: %s", ErrUnknownConfiguration, id)
	}
	return cfg, nil
}

// Reference returns the standard 5-axle tractor-semitrailer configuration.
func (c *Catalog) Reference() model.TruckAxleConfiguration {
	return c.byID[ReferenceConfigurationID]
}

// StateLimits returns the overlay for a state code, if one exists. The
// FEDERAL sentinel never has an overlay.
func (c *Catalog) StateLimits(code string) (model.StateWeightLimits, bool) {
	st, ok := c.states[code]
	return st, ok
}

// States returns all state overlays in catalog order.
func (c *Catalog) States() []model.StateWeightLimits {
	out := make([]model.StateWeightLimits, 0, len(c.codes))
	for _, code := range c.codes {
		out = append(out, c.states[code])
	}
	return out
}
