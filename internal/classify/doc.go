// Package classify turns a single image into a classification Result by
// scoring it against the vision model, selecting the best candidate, and
// resolving the candidate's taxonomic lineage.
package classify
