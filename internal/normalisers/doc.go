// Package normalisers provides the normalisation stages of the sync
// pipeline: parsing heterogeneous date strings into canonical instants
// and mapping arbitrary external field names onto the canonical record
// schema. Nothing loosely typed crosses past this package.
package normalisers
