// SPDX-License-Identifier: MIT

package sitewise

import (
	"errors"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/etetoolkit/ete-sub002/config"
	"github.com/etetoolkit/ete-sub002/likelihood"
	"github.com/etetoolkit/ete-sub002/metrics"
	"github.com/etetoolkit/ete-sub002/model"
)

var (
	// ErrNotSelective indicates a model family without a selection ratio.
	ErrNotSelective = errors.New("sitewise: model has no omega parameter")

	// ErrOmegaRange indicates an ω search range that does not contain 1.
	ErrOmegaRange = errors.New("sitewise: omega range must contain 1")
)

// ChiSquareHalf95 is half the 95% quantile of χ²₁: the log-likelihood drop
// that bounds a 95% confidence interval.
const ChiSquareHalf95 = 1.920729

// Site is the outcome for one pattern.
type Site struct {
	Pattern     int
	Weight      float64
	Informative bool // at least two observed (non-gap) entries

	Omega       float64 // maximum-likelihood ω
	LogL        float64 // ℓ(Omega)
	NeutralLogL float64 // ℓ(1)
	LRT         float64 // 2·(LogL − NeutralLogL), never negative
	PValue      float64 // P(χ²₁ > LRT)

	// 95% confidence bounds on ω; NaN when not computed. A bound equal to
	// the search limit means the interval is open on that side.
	Lower, Upper float64

	Positive bool // Omega > 1 and PValue < Alpha
}

// Options configures Analyze.
type Options struct {
	Workers    int // ≤ 0 means GOMAXPROCS
	OmegaMin   float64
	OmegaMax   float64
	Confidence bool
	Alpha      float64

	Cache    *model.ScaleCache
	Engine   []likelihood.Option
	Logger   logrus.FieldLogger
	Recorder *metrics.Recorder
}

// Option mutates Options.
type Option func(*Options)

// DefaultOptions mirrors config.Default().Sitewise with Alpha = 0.05.
func DefaultOptions() Options {
	c := config.Default().Sitewise

	return Options{
		Workers:    c.Workers,
		OmegaMin:   c.OmegaMin,
		OmegaMax:   c.OmegaMax,
		Confidence: c.Confidence,
		Alpha:      0.05,
		Logger:     config.Discard(),
	}
}

// FromConfig turns a validated config section into Options.
func FromConfig(c config.Sitewise) []Option {
	return []Option{
		WithWorkers(c.Workers),
		WithOmegaRange(c.OmegaMin, c.OmegaMax),
		WithConfidence(c.Confidence),
	}
}

// WithWorkers bounds the goroutines; n ≤ 0 means GOMAXPROCS.
func WithWorkers(n int) Option { return func(o *Options) { o.Workers = n } }

// WithOmegaRange sets the ω search interval.
func WithOmegaRange(lo, hi float64) Option {
	return func(o *Options) { o.OmegaMin, o.OmegaMax = lo, hi }
}

// WithConfidence enables or disables the confidence bounds.
func WithConfidence(on bool) Option { return func(o *Options) { o.Confidence = on } }

// WithAlpha sets the significance level of Site.Positive.
func WithAlpha(a float64) Option {
	return func(o *Options) {
		if a > 0 && a < 1 {
			o.Alpha = a
		}
	}
}

// WithScaleCache shares a neutral-scale cache across calls.
func WithScaleCache(c *model.ScaleCache) Option { return func(o *Options) { o.Cache = c } }

// WithEngineOptions forwards options to every likelihood engine.
func WithEngineOptions(opts ...likelihood.Option) Option {
	return func(o *Options) { o.Engine = append(o.Engine, opts...) }
}

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}

// WithRecorder counts analysed sites; it is also passed to the engines.
func WithRecorder(r *metrics.Recorder) Option { return func(o *Options) { o.Recorder = r } }

func (o Options) validate() error {
	if !(o.OmegaMin > 0) || !(o.OmegaMin < 1) || !(o.OmegaMax > 1) || math.IsInf(o.OmegaMax, 0) {
		return ErrOmegaRange
	}

	return nil
}

func sitewiseErrorf(tag string, err error) error {
	return fmt.Errorf("sitewise.%s: %w", tag, err)
}
