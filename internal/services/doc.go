// Package services defines shared utilities consumed by the classification
// pipeline, batch runner, and file organizer.
//
// Key responsibilities:
//   - Context helpers that stamp image paths, stage names, and batch run
//     identifiers for logging and tracing.
//   - Structured error markers plus the Wrap helper that translate per-image
//     failures into consistent skip reasons at the batch boundary.
//
// Use these helpers when wiring new pipeline logic so operational behaviour
// (error handling, observability) stays uniform across stages.
package services
