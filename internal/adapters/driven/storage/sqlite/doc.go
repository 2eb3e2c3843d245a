// Package sqlite provides SQLite-backed persistence for local records
// and the per-collection sync guards. Schema changes ship as embedded
// migrations applied at open time.
package sqlite
