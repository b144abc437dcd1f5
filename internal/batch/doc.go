// Package batch walks an image folder through the classification pipeline
// with fixed pacing, periodic JSON checkpoints, and whole-batch resume: a
// folder whose checkpoint file already exists is never re-scored.
package batch
