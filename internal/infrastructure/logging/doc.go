// Package logging provides structured logging using uber/zap.
//
// Two modes:
//   - Production: JSON output for machine parsing
//   - Development: colored console output for human readability
//
// Example Usage:
//
//	logger := logging.NewDefault()
//	logger.Info("launcher booting", zap.String("resolution", res.String()))
//	logger.Error("commit failed", zap.Error(err))
package logging
