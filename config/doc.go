// SPDX-License-Identifier: MIT

// Package config holds the YAML configuration of a fitting run and builds the
// logrus logger the numeric packages log through.
//
// The tuned optimizer constants (trust radius schedule, boundary epsilon,
// trim margin, curvature threshold) live here as defaults; the consuming
// packages turn a section into their own Options with FromConfig.
//
//	cfg, err := config.Load("run.yaml")
//	if err != nil { ... }
//	log, err := config.NewLogger(cfg.Log)
//	opt := optim.New(append(optim.FromConfig(cfg.Optimizer), optim.WithLogger(log))...)
package config
