// Package inat wraps the iNaturalist REST API: computer-vision image scoring,
// taxon lookups, and access-token verification. All requests carry a Bearer
// token and honour the caller's context.
package inat
