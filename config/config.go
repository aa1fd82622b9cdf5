// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

var (
	// ErrInvalid reports a configuration value outside its domain.
	ErrInvalid = errors.New("config: invalid value")

	// ErrRead wraps failures to read or decode a configuration file.
	ErrRead = errors.New("config: cannot read configuration")
)

// Layouts accepted by Likelihood.Layout.
const (
	LayoutFixed        = "fixed"
	LayoutFree         = "free"
	LayoutProportional = "proportional"
)

// Log configures the logger.
type Log struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Optimizer holds the bounded quasi-Newton settings.
type Optimizer struct {
	MaxIter   int     `yaml:"max_iter"`
	FTol      float64 `yaml:"f_tol"`      // |Δf| convergence threshold
	GTol      float64 `yaml:"g_tol"`      // free-gradient norm threshold
	Radius    float64 `yaml:"radius"`     // initial trust radius
	RadiusMin float64 `yaml:"radius_min"`
	RadiusMax float64 `yaml:"radius_max"`

	BoundaryEps  float64 `yaml:"boundary_eps"`  // distance counted as "on the bound"
	TrimMargin   float64 `yaml:"trim_margin"`   // subtracted from the trim factor
	CurvatureMin float64 `yaml:"curvature_min"` // BFGS update needs yᵀs above this
}

// Likelihood configures the tree engine and its objective.
type Likelihood struct {
	RescaleEvery int    `yaml:"rescale_every"`
	Layout       string `yaml:"layout"` // fixed | free | proportional
}

// Sitewise configures the per-site selection scan.
type Sitewise struct {
	Workers    int     `yaml:"workers"` // 0 means GOMAXPROCS
	OmegaMin   float64 `yaml:"omega_min"`
	OmegaMax   float64 `yaml:"omega_max"`
	Confidence bool    `yaml:"confidence"` // compute 95% bounds on ω
}

// Config is the whole run configuration.
type Config struct {
	Log        Log        `yaml:"log"`
	Optimizer  Optimizer  `yaml:"optimizer"`
	Likelihood Likelihood `yaml:"likelihood"`
	Sitewise   Sitewise   `yaml:"sitewise"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Log: Log{Level: "info", Format: "text"},
		Optimizer: Optimizer{
			MaxIter:      500,
			FTol:         1e-8,
			GTol:         1e-5,
			Radius:       1,
			RadiusMin:    1e-5,
			RadiusMax:    10,
			BoundaryEps:  1e-6,
			TrimMargin:   1e-8,
			CurvatureMin: 1e-10,
		},
		Likelihood: Likelihood{RescaleEvery: 4, Layout: LayoutFixed},
		Sitewise: Sitewise{
			OmegaMin:   1e-4,
			OmegaMax:   100,
			Confidence: true,
		},
	}
}

// Parse decodes YAML over Default, so omitted keys keep their defaults, and
// validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse: %w", errors.Join(ErrRead, err))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Load reads and parses the YAML file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: load %s: %w", path, errors.Join(ErrRead, err))
	}

	return Parse(data)
}

// Marshal encodes cfg as YAML.
func Marshal(cfg Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}

func invalid(field string, v any) error {
	return fmt.Errorf("config: %s=%v: %w", field, v, ErrInvalid)
}

// Validate checks every section.
func (c Config) Validate() error {
	if _, err := parseLevel(c.Log.Level); err != nil {
		return invalid("log.level", c.Log.Level)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return invalid("log.format", c.Log.Format)
	}

	o := c.Optimizer
	switch {
	case o.MaxIter < 1:
		return invalid("optimizer.max_iter", o.MaxIter)
	case !(o.FTol > 0):
		return invalid("optimizer.f_tol", o.FTol)
	case !(o.GTol > 0):
		return invalid("optimizer.g_tol", o.GTol)
	case !(o.RadiusMin > 0) || o.RadiusMax < o.RadiusMin:
		return invalid("optimizer.radius_min/radius_max", fmt.Sprintf("[%g,%g]", o.RadiusMin, o.RadiusMax))
	case o.Radius < o.RadiusMin || o.Radius > o.RadiusMax:
		return invalid("optimizer.radius", o.Radius)
	case !(o.BoundaryEps > 0):
		return invalid("optimizer.boundary_eps", o.BoundaryEps)
	case o.TrimMargin < 0 || o.TrimMargin >= 1:
		return invalid("optimizer.trim_margin", o.TrimMargin)
	case !(o.CurvatureMin >= 0):
		return invalid("optimizer.curvature_min", o.CurvatureMin)
	}

	if c.Likelihood.RescaleEvery < 1 {
		return invalid("likelihood.rescale_every", c.Likelihood.RescaleEvery)
	}
	switch c.Likelihood.Layout {
	case LayoutFixed, LayoutFree, LayoutProportional:
	default:
		return invalid("likelihood.layout", c.Likelihood.Layout)
	}

	s := c.Sitewise
	if s.Workers < 0 {
		return invalid("sitewise.workers", s.Workers)
	}
	if !(s.OmegaMin > 0) || s.OmegaMax <= 1 || s.OmegaMin >= 1 {
		return invalid("sitewise.omega_min/omega_max", fmt.Sprintf("[%g,%g]", s.OmegaMin, s.OmegaMax))
	}

	return nil
}
