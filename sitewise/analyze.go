// SPDX-License-Identifier: MIT

package sitewise

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/etetoolkit/ete-sub002/alignment"
	"github.com/etetoolkit/ete-sub002/likelihood"
	"github.com/etetoolkit/ete-sub002/linesearch"
	"github.com/etetoolkit/ete-sub002/model"
	"github.com/etetoolkit/ete-sub002/tree"
)

// floorDrop bounds how far below the threshold the interval search looks,
// keeping Ridders away from −Inf.
const floorDrop = -1e6

// Analyze fits ω per pattern of pats on t under m. m is cloned per worker
// and left untouched; t is only read.
//
// Implementation:
//   - Stage 1: validate options, find ω, compute the neutral scale once
//     (through the cache when one is given).
//   - Stage 2: start min(Workers, patterns) goroutines; worker w owns a clone
//     of m fixed to the neutral scale and one engine, and takes patterns
//     w, w+W, w+2W, ...
//   - Stage 3: per pattern, Brent on log ω over [OmegaMin, OmegaMax], the
//     neutral ℓ(1), the LRT, and Ridders for the ℓ̂ − 1.920729 crossings.
//
// The first worker error cancels the others.
//
// Errors: ErrNotSelective, ErrOmegaRange, likelihood errors, ctx.Err().
func Analyze(ctx context.Context, t *tree.Tree, m *model.Model, pats *alignment.Patterns, opts ...Option) ([]Site, error) {
	const tag = "Analyze"
	o := DefaultOptions()
	for _, fn := range opts {
		fn(&o)
	}
	if err := o.validate(); err != nil {
		return nil, sitewiseErrorf(tag, err)
	}
	sel, ok := m.Family().(model.Selective)
	if !ok {
		return nil, sitewiseErrorf(tag, ErrNotSelective)
	}
	scale, err := model.NeutralScale(m, o.Cache)
	if err != nil {
		return nil, sitewiseErrorf(tag, err)
	}

	n := pats.Len()
	if n == 0 {
		return nil, nil
	}
	workers := o.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	workers = min(workers, n)

	engOpts := append([]likelihood.Option{likelihood.WithRecorder(o.Recorder)}, o.Engine...)
	sites := make([]Site, n)
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		w := w // per-iteration copy (go directive lowered to 1.21 for the local toolchain)
		g.Go(func() error {
			mc := m.Clone()
			mc.FixScale(scale)
			first, err := pats.Subset(w)
			if err != nil {
				return err
			}
			eng, err := likelihood.New(t, mc, first, engOpts...)
			if err != nil {
				return err
			}
			sc := &scanner{eng: eng, m: mc, omega: sel.OmegaIndex(), opts: o}
			for i := w; i < n; i += workers {
				if err := gctx.Err(); err != nil {
					return err
				}
				sub, err := pats.Subset(i)
				if err != nil {
					return err
				}
				if err = eng.SetPatterns(sub); err != nil {
					return err
				}
				class, _ := pats.Classify(i)
				if sites[i], err = sc.site(i, class, pats.Weights[i]); err != nil {
					return fmt.Errorf("pattern %d: %w", i, err)
				}
				o.Recorder.SitesAnalysed(1)
			}
			return nil
		})
	}
	if err = g.Wait(); err != nil {
		return nil, sitewiseErrorf(tag, err)
	}

	sum := Summarize(sites, o.Alpha)
	o.Logger.WithFields(logrus.Fields{
		"patterns":    n,
		"informative": sum.Informative,
		"positive":    sum.Positive,
		"workers":     workers,
	}).Info("sitewise: scan finished")

	return sites, nil
}

// scanner evaluates one pattern at a time on a private model and engine.
type scanner struct {
	eng   *likelihood.Engine
	m     *model.Model
	omega int
	opts  Options
	err   error
}

// logL returns ℓ(ω) for the bound pattern. Errors are kept in s.err and
// reported as −Inf.
func (s *scanner) logL(w float64) float64 {
	if s.err != nil {
		return math.Inf(-1)
	}
	if s.err = s.m.Update(s.omega, w); s.err != nil {
		return math.Inf(-1)
	}
	site, err := s.eng.SiteLogLikelihoods()
	if err != nil {
		s.err = err
		return math.Inf(-1)
	}

	return site[0]
}

func (s *scanner) site(i int, class alignment.Class, weight float64) (Site, error) {
	o := s.opts
	out := Site{
		Pattern:     i,
		Weight:      weight,
		Informative: class == alignment.Full,
		Omega:       1,
		PValue:      1,
		Lower:       math.NaN(),
		Upper:       math.NaN(),
	}
	s.err = nil
	out.NeutralLogL = s.logL(1)
	out.LogL = out.NeutralLogL
	if s.err != nil {
		return out, s.err
	}
	if !out.Informative {
		return out, nil
	}

	lo, hi := math.Log(o.OmegaMin), math.Log(o.OmegaMax)
	res, err := linesearch.Minimize(func(u float64) float64 { return -s.logL(math.Exp(u)) }, lo, hi)
	if err != nil && !errors.Is(err, linesearch.ErrMaxIter) {
		return out, err
	}
	if s.err != nil {
		return out, s.err
	}
	if -res.F > out.LogL {
		out.Omega, out.LogL = math.Exp(res.X), -res.F
	}
	// Brent never evaluates the ends of its bracket.
	for _, w := range []float64{o.OmegaMin, o.OmegaMax} {
		if l := s.logL(w); l > out.LogL {
			out.Omega, out.LogL = w, l
		}
	}
	if s.err != nil {
		return out, s.err
	}
	if math.IsInf(out.LogL, -1) {
		return out, nil
	}

	out.LRT = math.Max(0, 2*(out.LogL-out.NeutralLogL))
	out.PValue = math.Erfc(math.Sqrt(out.LRT / 2))
	out.Positive = out.Omega > 1 && out.PValue < o.Alpha
	if o.Confidence {
		out.Lower, out.Upper, err = s.bounds(out.Omega, out.LogL)
	}
	o.Logger.WithFields(logrus.Fields{
		"pattern": i,
		"omega":   out.Omega,
		"lrt":     out.LRT,
		"p":       out.PValue,
	}).Debug("sitewise: site")

	return out, err
}

// bounds returns the ω where ℓ drops ChiSquareHalf95 below its maximum on
// each side of best, or the search limit when it never does.
func (s *scanner) bounds(best, top float64) (float64, float64, error) {
	o := s.opts
	c := top - ChiSquareHalf95
	g := func(u float64) float64 { return math.Max(s.logL(math.Exp(u))-c, floorDrop) }

	side := func(limit float64) (float64, error) {
		if limit == best || g(math.Log(limit)) >= 0 {
			return limit, s.err
		}
		u, err := linesearch.Root(g, math.Log(limit), math.Log(best))
		if err != nil && !errors.Is(err, linesearch.ErrMaxIter) {
			return math.NaN(), err
		}
		return math.Exp(u), s.err
	}

	lower, err := side(o.OmegaMin)
	if err != nil {
		return math.NaN(), math.NaN(), err
	}
	upper, err := side(o.OmegaMax)
	if err != nil {
		return math.NaN(), math.NaN(), err
	}

	return lower, upper, nil
}
