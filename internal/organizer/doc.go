// Package organizer relocates classified images into a directory tree keyed
// by subfamily, tribe, and genus, carrying sidecar files along and reporting
// moved/skipped tallies back to the caller.
package organizer
