// Package logger provides typed slog attribute helpers for consistent
// structured logging across the module.
//
// All helpers return slog.Attr values with stable keys, so log output stays
// uniform regardless of the call site:
//
//	log.Info("request served",
//		logger.Method(r.Method),
//		logger.Path(r.URL.Path),
//		logger.StatusCode(status),
//		logger.Elapsed(start),
//	)
//
// Helpers that wrap optional values (Error, RequestID, Query) return the zero
// Attr when the value is absent, which slog drops from output.
package logger
