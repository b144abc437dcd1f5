// Package taxonomy derives the subfamily/tribe/genus classification key from a
// resolved taxonomic lineage.
//
// Extraction is a pure linear scan over the ancestor chain with last-write-wins
// semantics per rank; the rankSlots table is the single place to extend when
// additional ranks need slots.
package taxonomy
