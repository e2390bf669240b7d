// Package logging provides structured logging configuration for imposter.
//
// This package wraps log/slog so that every component logs in the same shape.
// The logger is built once by the composition root and passed explicitly to
// plugins, resolvers and the HTTP server.
//
// # Usage
//
//	logger := logging.New(logging.Config{
//	    Level:  logging.LevelInfo,
//	    Format: logging.FormatText,
//	})
//
//	logger.Info("server started", "port", 8080)
//
// Plugins receive a child logger scoped to their identifier:
//
//	log := logging.ForPlugin(logger, "rest")
//
// # Output Formats
//
//   - Text: Human-readable format for development
//   - JSON: Structured format for log aggregation systems
//
// If no logger is provided, use logging.Nop().
package logging
