// SPDX-License-Identifier: MIT

package config

import (
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

func parseLevel(s string) (logrus.Level, error) {
	switch strings.ToLower(s) {
	case "", "info":
		return logrus.InfoLevel, nil
	case "debug":
		return logrus.DebugLevel, nil
	case "warn", "warning":
		return logrus.WarnLevel, nil
	case "error":
		return logrus.ErrorLevel, nil
	}

	return logrus.InfoLevel, ErrInvalid
}

// NewLogger builds a logrus logger from cfg.
//
// Errors: ErrInvalid for an unknown level.
func NewLogger(cfg Log) (*logrus.Logger, error) {
	logger := logrus.New()
	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, invalid("log.level", cfg.Level)
	}
	logger.SetLevel(level)

	return logger, nil
}

// Discard returns a logger that drops everything below warn and writes the
// rest nowhere. Numeric packages use it when no logger is configured.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	logger.SetLevel(logrus.WarnLevel)

	return logger
}
