// Package runlog persists a durable journal of batch runs and per-image
// outcomes in SQLite. The journal is strictly observational: batch processing
// treats every journal write as best-effort and never fails a run over it.
package runlog
